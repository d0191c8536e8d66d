package validator

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

// MaxTimeLimitMinutes caps a session time limit.
const MaxTimeLimitMinutes = 600

// Validator combines struct tag validation with the session rules
type Validator struct {
	structValidator  *validator.Validate
	sessionValidator *SessionValidator
}

func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:  structValidator,
		sessionValidator: NewSessionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures to ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Session returns the session rule validator
func (v *Validator) Session() *SessionValidator {
	return v.sessionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_id", validateQuestionID)
	validate.RegisterValidation("sort_direction", validateSortDirection)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("time_limit", validateTimeLimit)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateQuestionID accepts non-empty ids of at most 64 characters without
// whitespace.
func validateQuestionID(fl validator.FieldLevel) bool {
	return IsValidID(fl.Field().String())
}

func IsValidID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	return strings.IndexFunc(id, unicode.IsSpace) < 0
}

func validateSortDirection(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "asc", "desc":
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleGuest, models.RoleLearner, models.RoleAdmin:
		return true
	}
	return false
}

func validateTimeLimit(fl validator.FieldLevel) bool {
	minutes := fl.Field().Int()
	return minutes >= 0 && minutes <= MaxTimeLimitMinutes
}
