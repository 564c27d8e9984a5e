package snapshot

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ludo-technologies/credaudit/domain"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
			if d, ok := v.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// Validate checks a decoded snapshot for values no bureau can report,
// such as negative balances or limits
func Validate(s *domain.ReportSnapshot) error {
	if s == nil {
		return domain.NewInvalidInputError("snapshot is nil", nil)
	}
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return domain.NewValidationError("snapshot validation failed", err)
	}

	problems := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		problems = append(problems, describe(ve))
	}
	return domain.NewValidationError(strings.Join(problems, "; "), err)
}

func describe(ve validator.FieldError) string {
	field := strings.TrimPrefix(ve.Namespace(), "ReportSnapshot.")
	switch ve.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, ve.Param())
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s failed %s", field, ve.Tag())
	}
}
