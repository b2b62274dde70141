// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
)

var validate *validator.Validate

// Offer strings carry the amount and an ISO currency code, e.g. "5000 USD".
var salaryPattern = regexp.MustCompile(`^\d+(\.\d+)? [A-Z]{3}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("stage", validateStage)
	validate.RegisterValidation("offer_salary", validateOfferSalary)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStage(fl validator.FieldLevel) bool {
	_, err := pipeline.ParseStage(fl.Field().String())
	return err == nil
}

func validateOfferSalary(fl validator.FieldLevel) bool {
	return salaryPattern.MatchString(fl.Field().String())
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "stage":
		return e.Field() + " is not a valid pipeline stage"
	case "offer_salary":
		return "Offered salary must be an amount followed by a currency code, e.g. \"5000 USD\""
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	default:
		return e.Field() + " is invalid"
	}
}
