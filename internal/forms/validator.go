package forms

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator wraps a lazily initialized validator engine with English
// field error translations. Field names are reported by their json tag.
type Validator struct {
	once     sync.Once
	validate *validator.Validate
	trans    ut.Translator
}

// Default is the shared validator used by handlers.
var Default = &Validator{}

// ValidationError carries one translated message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// Validate checks obj against its validate tags. Constraint failures are
// returned as *ValidationError; anything else is returned unchanged.
func (v *Validator) Validate(obj any) error {
	v.lazyinit()

	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fe.Translate(v.trans)
		}
	}
	return &ValidationError{Fields: fields}
}

func (v *Validator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.RegisterTagNameFunc(jsonName)

		locale := en.New()
		v.trans, _ = ut.New(locale, locale).GetTranslator(locale.Locale())
		if err := en_translations.RegisterDefaultTranslations(v.validate, v.trans); err != nil {
			panic("forms: register translations: " + err.Error())
		}
	})
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Fields extracts the per-field messages from err, or nil.
func Fields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
