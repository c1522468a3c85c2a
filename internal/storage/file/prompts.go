package file

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/synthpref/gpref/pkg/errors"
)

// PromptEntry is one element of a prompt input file: a JSON object carrying
// at least a "prompt" field. Entries lacking the field are skipped.
type PromptEntry struct {
	Prompt string `json:"prompt"`
}

// PromptLoader reads prompt input files.
type PromptLoader struct {
	logger *logrus.Logger
}

// NewPromptLoader creates a new prompt loader.
func NewPromptLoader(logger *logrus.Logger) *PromptLoader {
	if logger == nil {
		logger = logrus.New()
	}

	return &PromptLoader{logger: logger}
}

// Load reads a JSON array of prompt entries and returns the prompt texts in
// file order, skipping entries without a prompt field.
func (l *PromptLoader) Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
			fmt.Sprintf("failed to read prompt file: %s", path))
	}

	var entries []PromptEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodePromptFileMalformed,
			fmt.Sprintf("prompt file is not a JSON array of objects: %s", path))
	}

	prompts := make([]string, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		if entry.Prompt == "" {
			skipped++
			continue
		}
		prompts = append(prompts, entry.Prompt)
	}

	l.logger.WithFields(logrus.Fields{
		"path":    path,
		"prompts": len(prompts),
		"skipped": skipped,
	}).Info("Loaded prompts")

	return prompts, nil
}
