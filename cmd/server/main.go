package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/synthpref/gpref/internal/server"
	"github.com/synthpref/gpref/pkg/constants"
)

func main() {
	var (
		host        = flag.String("host", constants.DefaultServerHost, "bind address")
		port        = flag.Int("port", constants.DefaultServerPort, "HTTP port")
		metricsPort = flag.Int("metrics-port", constants.DefaultMetricsPort, "prometheus metrics port")
		logLevel    = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		logFormat   = flag.String("log-format", "text", "log format (text, json)")
	)
	flag.Parse()

	logger := setupLogger(*logLevel, *logFormat)

	logger.WithFields(logrus.Fields{
		"version": constants.AppVersion,
	}).Info("Starting G-Pref dataset server")

	config := server.DefaultConfig()
	config.Host = *host
	config.Port = *port
	config.MetricsPort = *metricsPort

	srv, err := server.NewServer(config, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	sig := <-sigChan
	logger.WithField("signal", sig.String()).Info("Shutting down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.WithError(err).Error("Shutdown failed")
	}
}

func setupLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
