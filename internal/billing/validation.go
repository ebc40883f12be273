package billing

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperr "github.com/example/asaas-gateway/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check runs struct validation and turns the first failure into a 400.
func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return apperr.New(apperr.CodeInvalidInput, http.StatusBadRequest, "invalid request")
	}
	fe := ve[0]
	return apperr.New(apperr.CodeInvalidInput, http.StatusBadRequest, messageFor(fe.Field(), fe.Tag(), fe.Param()))
}

func messageFor(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "datetime":
		return field + " must be formatted as " + param
	case "max":
		return field + " must be at most " + param + " characters"
	default:
		return field + " is invalid"
	}
}
