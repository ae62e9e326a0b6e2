package dto

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/anamaak-service/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report field names from JSON tags so error payloads match the wire
	// shape rather than Go struct fields.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a request struct and converts failures into the
// field-level French messages of the API envelope.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]util.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, util.FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return util.NewValidationError("Données invalides", fields)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Champ requis"
	case "email":
		return "Email invalide"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Doit contenir au moins %s caractères", fe.Param())
		}
		return fmt.Sprintf("Doit être au moins %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ne peut pas dépasser %s caractères", fe.Param())
		}
		return fmt.Sprintf("Ne peut pas dépasser %s", fe.Param())
	case "latitude":
		return "Latitude invalide"
	case "longitude":
		return "Longitude invalide"
	case "oneof":
		return fmt.Sprintf("Valeurs autorisées: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "Valeur invalide"
	}
}
