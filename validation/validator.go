// Package validation provides input validation utilities.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()

		// Use JSON tag names for error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register custom validations
		registerCustomValidations(validate)
	})

	return validate
}

func registerCustomValidations(v *validator.Validate) {
	// Latitude validation
	v.RegisterValidation("latitude", validateLatitude)

	// Longitude validation
	v.RegisterValidation("longitude", validateLongitude)

	// Calculation method validation
	v.RegisterValidation("calculation_method", validateCalculationMethod)

	// Zone range validation (struct level tag on max distance)
	v.RegisterValidation("zone_range", validateZoneRange)
}

// Latitude validates latitude values (-90 to 90).
func validateLatitude(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90 && lat <= 90
}

// Longitude validates longitude values (-180 to 180).
func validateLongitude(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= -180 && lng <= 180
}

// Calculation methods, by degradation tier.
var validCalculationMethods = map[string]bool{
	"distance_zone_match":     true,
	"distance_fallback_table": true,
	"zone_fallback":           true,
	"static_default":          true,
}

func validateCalculationMethod(fl validator.FieldLevel) bool {
	return validCalculationMethods[fl.Field().String()]
}

// validateZoneRange checks MaxDistanceKm > MinDistanceKm on zone structs.
// Tag the max field with `validate:"zone_range=MinDistanceKm"`.
func validateZoneRange(fl validator.FieldLevel) bool {
	maxVal := fl.Field().Float()
	minField := fl.Parent().FieldByName(fl.Param())
	if !minField.IsValid() {
		return false
	}
	return maxVal > minField.Float()
}

// Validate validates a struct and returns validation errors.
func Validate(s interface{}) error {
	return GetValidator().Struct(s)
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Field)
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}

// ParseValidationErrors converts validator.ValidationErrors to our format.
func ParseValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var validationErrors ValidationErrors

	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, e := range ve {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return validationErrors
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "latitude":
		return "must be a valid latitude (-90 to 90)"
	case "longitude":
		return "must be a valid longitude (-180 to 180)"
	case "calculation_method":
		return "must be a valid calculation method"
	case "zone_range":
		return "must be greater than the zone minimum distance"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}

// ValidateVar validates a single variable.
func ValidateVar(field interface{}, tag string) error {
	return GetValidator().Var(field, tag)
}

// Validator wraps the go-playground validator for easier use.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	return &Validator{v: GetValidator()}
}

// Struct validates a struct.
func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

// Var validates a single variable.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.v.Var(field, tag)
}
