package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	autherror "github.com/IslamMhareeq/sha-256/internal/errors"
	"github.com/go-playground/validator/v10"
)

var (
	digitsRe     = regexp.MustCompile(`^[0-9]+$`)
	cardNumberRe = regexp.MustCompile(`^\d{4} \d{4} \d{4} \d{4}$`)
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

var reasons = map[string]string{
	"required":   "is required",
	"max":        "is too long",
	"len":        "has the wrong length",
	"oneof":      "must be one of: user, admin",
	"alpha":      "must contain letters only",
	"digits":     "must contain digits only",
	"username":   "must not contain whitespace",
	"cardnumber": "must look like 1234 5678 9012 3456",
	"cardexpiry": "must be MM/YY",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
		return digitsRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "cardnumber", func(fl validator.FieldLevel) bool {
		return cardNumberRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "cardexpiry", func(fl validator.FieldLevel) bool {
		return cardExpiryRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsControl(r)
		})
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validateInput converts the first validator failure into a ValidationError.
func validateInput(v *validator.Validate, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &autherror.ValidationError{Field: "body", Reason: err.Error()}
	}

	fe := fieldErrs[0]
	reason, ok := reasons[fe.Tag()]
	if !ok {
		reason = "is invalid"
	}
	return &autherror.ValidationError{Field: fe.Field(), Reason: reason}
}
