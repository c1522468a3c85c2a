package validation

import (
	"github.com/sirupsen/logrus"

	"github.com/synthpref/gpref/pkg/errors"
	"github.com/synthpref/gpref/pkg/models"
)

// RecordValidator gates candidate records before they are admitted to a
// dataset. It checks required-field presence and that the preferred and
// rejected responses differ.
//
// Known gaps, kept deliberately: the validator does not check that the
// response list is nonempty, that epsilon is in range, or that the method
// belongs to the closed set. Callers owning those concerns must enforce
// them upstream.
type RecordValidator struct {
	logger *logrus.Logger
}

// NewRecordValidator creates a new record validator.
func NewRecordValidator(logger *logrus.Logger) *RecordValidator {
	if logger == nil {
		logger = logrus.New()
	}

	return &RecordValidator{logger: logger}
}

// Validate returns nil when the record is well formed and a validation-class
// error naming the first failing field otherwise.
func (v *RecordValidator) Validate(record *models.PreferenceRecord) error {
	if record == nil {
		return errors.NewValidationError(errors.CodeInvalidInput, "record is nil")
	}

	if field, ok := v.missingField(record); !ok {
		v.logger.WithFields(logrus.Fields{
			"record_id": record.ID,
			"prompt_id": record.PromptID,
			"field":     field,
		}).Debug("Record rejected: missing required field")

		return errors.NewValidationError(errors.CodeMissingField, "record is missing a required field").
			WithContext("field", field)
	}

	if record.Preferred == record.Rejected {
		v.logger.WithFields(logrus.Fields{
			"record_id": record.ID,
			"prompt_id": record.PromptID,
		}).Debug("Record rejected: preferred equals rejected")

		return errors.NewValidationError(errors.CodeIdenticalPair, "preferred and rejected responses are identical")
	}

	return nil
}

// missingField returns the name of the first absent required field, or
// ok=true when all are present. Absence means the zero value: empty string,
// nil response list, unset epsilon.
func (v *RecordValidator) missingField(record *models.PreferenceRecord) (string, bool) {
	switch {
	case record.ID == "":
		return "id", false
	case record.Prompt == "":
		return "prompt", false
	case record.Responses == nil:
		return "responses", false
	case record.Preferred == "":
		return "preferred", false
	case record.Rejected == "":
		return "rejected", false
	case record.Method == "":
		return "method", false
	case record.Identity == "":
		return "identity", false
	case !record.Epsilon.IsSet():
		return "epsilon", false
	case record.TransformedFrom == "":
		return "transformed_from", false
	}
	return "", true
}
