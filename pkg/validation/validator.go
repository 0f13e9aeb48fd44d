package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// kept in sync with entity.MeasurementUnits and entity.OrderStatus; the
// validation package does not import the domain.
var (
	units         = []string{"kg", "g", "l", "ml", "unit", "tbsp", "tsp", "cup"}
	orderStatuses = []string{"pending", "confirmed", "in_progress", "completed", "cancelled"}
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
// - Validates decimal.Decimal fields through their float value.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the project tags to v. Split from Init so tests can use a
// private validator instance.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool { return numberAtLeast(fl, false) })
	_ = v.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool { return numberAtLeast(fl, true) })

	v.RegisterAlias("pwd", "min=8,max=128")
	v.RegisterAlias("unit", "oneof="+strings.Join(units, " "))
	v.RegisterAlias("lang", "oneof=en es")
	v.RegisterAlias("orderstatus", "oneof="+strings.Join(orderStatuses, " "))
	v.RegisterAlias("currency", "len=3,alpha")
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func numberAtLeast(fl validator.FieldLevel, strict bool) bool {
	f := fl.Field()
	var x float64
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		x = f.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		x = float64(f.Int())
	default:
		return false
	}
	if strict {
		return x > 0
	}
	return x >= 0
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid or truncated JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "alpha":
		return "must contain alphabetic characters only"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min", "max":
		bound := "at least "
		if tag == "max" {
			bound = "at most "
		}
		switch {
		case isNumberKind(fe.Kind()):
			return "must be " + bound + param
		case fe.Kind() == reflect.Slice:
			return "must contain " + bound + param + " item(s)"
		default:
			return "must be " + bound + param + " characters long"
		}
	case "lt":
		return "must be less than " + param
	case "lte":
		return "must be less than or equal to " + param
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")

	// project aliases
	case "pwd":
		return "must be between 8 and 128 characters long"
	case "unit":
		return "must be one of: " + strings.Join(units, ", ")
	case "lang":
		return "must be one of: en, es"
	case "orderstatus":
		return "must be one of: " + strings.Join(orderStatuses, ", ")
	case "currency":
		return "must be a 3-letter currency code"
	case "decimal_gte0":
		return "must be zero or greater"
	case "decimal_gt0":
		return "must be greater than zero"
	}
	if param != "" {
		return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
	}
	return fmt.Sprintf("validation failed for '%s'", tag)
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
