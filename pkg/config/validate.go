package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("config: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

type FieldError struct {
	Field string
	Err   string
}

type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return ErrInvalid
}

// Validate checks cfg against its struct tags and a few rules tags
// cannot express.
func Validate(cfg *Config) error {
	var fields FieldErrors

	if err := validate.Struct(cfg); err != nil {
		var verrors validator.ValidationErrors
		if !errors.As(err, &verrors) {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		for _, verror := range verrors {
			fields = append(fields, FieldError{
				Field: strings.TrimPrefix(verror.Namespace(), "Config."),
				Err:   verror.Translate(translator),
			})
		}
	}

	if strings.ContainsAny(cfg.ProbePath, `\`) ||
		strings.HasPrefix(cfg.ProbePath, "/") {
		fields = append(fields, FieldError{
			Field: "probe_path",
			Err:   "must be a slash-separated relative path",
		})
	}

	if len(fields) > 0 {
		return fields
	}
	return nil
}
