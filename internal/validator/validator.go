package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/learning-service/internal/errors"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the service's custom tags and
// converts failures into ValidationErrors keyed by JSON field name.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// Validate returns nil or ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	err := v.structValidator.Struct(s)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("learning_level", validateLearningLevel)
	validate.RegisterValidation("option_label", validateOptionLabel)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateUserRole accepts only self-service roles. Admin accounts are created
// through the privileged constructor.
func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleStudent, models.RoleClient:
		return true
	}
	return false
}

func validateLearningLevel(fl validator.FieldLevel) bool {
	return models.LearningLevel(fl.Field().String()).Valid()
}

func validateOptionLabel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, label := range models.OptionLabels {
		if label == value {
			return true
		}
	}
	return false
}
