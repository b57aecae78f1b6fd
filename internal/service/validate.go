package service

import (
	"errors"

	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// fieldMessages maps struct field names to the message shown on failure.
var fieldMessages = map[string]string{
	"Username":     "Username is required (max 80 characters)",
	"Password":     "Password is required",
	"TrainingName": "Training name is required (max 200 characters)",
	"Category":     "Category is too long (max 100 characters)",
	"Link":         "Link is too long (max 500 characters)",
}

// validateStruct runs validator tags on v and converts the first failure
// into a common.ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := fieldMessages[verrs[0].Field()]; ok {
			return common.NewValidationError(msg)
		}
		return common.NewValidationError("Invalid " + verrs[0].Field())
	}
	return err
}
