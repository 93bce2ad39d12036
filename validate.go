package receivables

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "yaml"} {
			name, _, _ := strings.Cut(f.Tag.Get(key), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// checkStruct validates s and reports the first failure as a ValidationError.
func (l *Ledger) checkStruct(s any) error {
	return validationError("", l.validate.Struct(s))
}

// checkVar validates a single value against tag.
func (l *Ledger) checkVar(field string, v any, tag string) error {
	return validationError(field, l.validate.Var(v, tag))
}

func validationError(field string, err error) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err
	}
	fe := ves[0]
	if field == "" {
		field = fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
	}
	return ValidationError{Field: field, Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "oneof":
		return "must be one of " + fe.Param()
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return "failed the " + fe.Tag() + " check"
	}
}
