package file

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/synthpref/gpref/pkg/errors"
	"github.com/synthpref/gpref/pkg/models"
)

// DatasetStore persists generated datasets as newline-delimited GKPO
// envelopes, one per line, in generation order.
type DatasetStore struct {
	logger *logrus.Logger
}

// NewDatasetStore creates a new dataset store.
func NewDatasetStore(logger *logrus.Logger) *DatasetStore {
	if logger == nil {
		logger = logrus.New()
	}

	return &DatasetStore{logger: logger}
}

// Write serializes the dataset to the given path. Path "-" writes to stdout.
func (s *DatasetStore) Write(path string, dataset []*models.PreferenceRecord) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
				fmt.Sprintf("failed to create dataset file: %s", path))
		}
		defer f.Close()
		out = f
	}

	if err := s.writeTo(out, dataset); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"path":    path,
		"records": len(dataset),
	}).Info("Wrote dataset")

	return nil
}

func (s *DatasetStore) writeTo(out io.Writer, dataset []*models.PreferenceRecord) error {
	w := bufio.NewWriter(out)
	encoder := json.NewEncoder(w)

	for _, record := range dataset {
		// Encode appends the newline that delimits records.
		if err := encoder.Encode(record.ToGKPO()); err != nil {
			return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
				"failed to encode record").WithContext("record_id", record.ID)
		}
	}

	return w.Flush()
}

// Read loads a newline-delimited GKPO dataset back into preference records,
// preserving file order. Blank lines are ignored.
func (s *DatasetStore) Read(path string) ([]*models.PreferenceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
			fmt.Sprintf("failed to open dataset file: %s", path))
	}
	defer f.Close()

	var dataset []*models.PreferenceRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var envelope models.GKPOEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
				fmt.Sprintf("malformed record at line %d: %s", line, path))
		}
		dataset = append(dataset, envelope.ToRecord())
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
			fmt.Sprintf("failed to scan dataset file: %s", path))
	}

	s.logger.WithFields(logrus.Fields{
		"path":    path,
		"records": len(dataset),
	}).Info("Read dataset")

	return dataset, nil
}
