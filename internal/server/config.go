package server

import (
	"time"

	"github.com/synthpref/gpref/pkg/constants"
)

// Config contains server configuration
type Config struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	MetricsPort     int           `yaml:"metrics_port" json:"metrics_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	EnableMetrics   bool          `yaml:"enable_metrics" json:"enable_metrics"`
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:            constants.DefaultServerHost,
		Port:            constants.DefaultServerPort,
		MetricsPort:     constants.DefaultMetricsPort,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		EnableMetrics:   true,
	}
}
