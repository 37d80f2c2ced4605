package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	// Validate is the app-wide validator instance; InitValidators must be
	// called once at startup before use.
	Validate   = validator.New()
	Translator ut.Translator

	// custom validation tags & texts
	alphaNumTag    = "alphanum_"
	alphaNumText   = "{0} may only contain letters, numbers and underscores"
	alphaNumRegex  = regexp.MustCompile(`^\w+$`)
	yearMonthTag   = "yyyymm"
	yearMonthText  = "{0} must be a month in YYYY-MM format"
	yearMonthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
)

// InitValidators sets up the app-wide validator: english translations,
// json tag names for field errors and the custom tags used across the app.
func InitValidators() error {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	Translator, _ = uni.GetTranslator(enLocale.Locale())

	if err := entrans.RegisterDefaultTranslations(Validate, Translator); err != nil {
		return errors.Wrap(err, "registering default translations")
	}

	// report struct fields by their json names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := RegisterCustomValidation(alphaNumTag, alphaNumText, func(fl validator.FieldLevel) bool {
		return alphaNumRegex.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := RegisterCustomValidation(yearMonthTag, yearMonthText, func(fl validator.FieldLevel) bool {
		return yearMonthRegex.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return nil
}

// RegisterCustomValidation registers a custom validation tag along with its
// error text on the app-wide validator.
func RegisterCustomValidation(tag, text string, fn validator.Func) error {
	if err := Validate.RegisterValidation(tag, fn); err != nil {
		return errors.Wrapf(err, "registering %q validation", tag)
	}
	return RegisterCustomTranslation(tag, text)
}

// RegisterCustomTranslation registers the error text for a validation tag.
func RegisterCustomTranslation(tag, text string) error {
	err := Validate.RegisterTranslation(
		tag,
		Translator,
		func(ut ut.Translator) error { return ut.Add(tag, text, true) },
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
	return errors.Wrapf(err, "registering %q translation", tag)
}

// TranslateValidationErrors renders a validator error into field errors
// suitable for an API response.
func TranslateValidationErrors(err error) []FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	flds := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		flds = append(flds, FieldError{Field: fe.Field(), Error: fe.Translate(Translator)})
	}
	return flds
}
