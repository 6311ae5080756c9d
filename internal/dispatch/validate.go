package dispatch

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Amounts are compared as numbers by gte/lte.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Counts are stored as int; anything past MaxInt32 would not survive the conversion.
	if err := v.RegisterValidation("wholenum", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n := fl.Field().Int()
			return n >= math.MinInt32 && n <= math.MaxInt32
		default:
			return false
		}
	}); err != nil {
		panic(err)
	}
	return v
}

// messages maps field and tag to the wording shown to station staff.
var messages = map[string]string{
	"transportOrderCode.required_if": "transport order code required for approved permit",
	"permitStatus.oneof":             "permit status must be approved or rejected",
	"paymentAmount.gte":              "payment amount must not be negative",
	"paymentAmount.required":         "payment amount is required",
	"paymentMethod.oneof":            "payment method must be cash, transfer, bank_transfer or card",
}

// validateInput checks the struct tags of a transition input and returns
// the first violation as a ValidationError.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be an ISO-8601 date time"
	case "gte":
		return "must be " + fe.Param() + " or more"
	case "wholenum":
		return fmt.Sprintf("must be a whole number up to %d", math.MaxInt32)
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
