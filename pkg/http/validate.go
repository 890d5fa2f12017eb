package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ReadAndValidateRequest binds the request body, fills defaults, and runs
// struct validation. A non-nil return is a slice of ValidationError suitable
// for a 400 response.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return validationErrors(err)
	}

	if err := defaults.Set(req); err != nil {
		return validationErrors(err)
	}

	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return validationErrors(err)
	}

	return nil
}

func validationErrors(err error) interface{} {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		errs := make([]ValidationError, 0, len(ve))
		for _, e := range ve {
			errs = append(errs, ValidationError{
				Code:    "ERR_" + strings.ToUpper(e.Tag()),
				Field:   e.Field(),
				Message: fieldErrorMessage(e),
				Params:  fieldErrorParams(e),
			})
		}
		return errs
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{
			Code:    "ERR_UNKNOWN",
			Message: fmt.Sprintf("%v", he.Message),
		}}
	}

	return []ValidationError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Type().Kind() == reflect.String || fe.Type().Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s elements", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func fieldErrorParams(fe validator.FieldError) map[string]interface{} {
	params := make(map[string]interface{})

	switch fe.Tag() {
	case "min", "gte":
		params["min"] = fe.Param()
	case "max", "lte":
		params["max"] = fe.Param()
	case "oneof":
		params["options"] = strings.Split(fe.Param(), " ")
	}

	return params
}
