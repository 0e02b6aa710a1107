// Package validation wires go-playground/validator into gin's binding and
// turns binding failures into field-level application errors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/lshigami/examroom/internal/apperror"
)

var (
	translator ut.Translator
	once       sync.Once
	initErr    error

	requiredText = "this field is required"
)

// Init configures gin's validator engine. Safe to call more than once.
func Init() error {
	once.Do(func() {
		validate, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			initErr = errors.New("gin binding engine is not go-playground/validator")
			return
		}

		_en := en.New()
		uni := ut.New(_en, _en)
		translator, _ = uni.GetTranslator("en")
		if initErr = en_translations.RegisterDefaultTranslations(validate, translator); initErr != nil {
			return
		}

		// Use JSON tag names for errors instead of Go struct names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		for _, tag := range []string{"required", "required_if"} {
			registerTranslation(validate, tag, requiredText)
		}
		binding.EnableDecoderDisallowUnknownFields = true
	})
	return initErr
}

func registerTranslation(validate *validator.Validate, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// fieldPath drops the root struct name: "SubmitExamRequest.answers[0].answer"
// becomes "answers[0].answer".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Translate converts an error returned by gin's ShouldBind* into an
// *apperror.Error of kind Validation.
func Translate(err error) error {
	var (
		vErrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &vErrs):
		fields := make([]apperror.FieldError, 0, len(vErrs))
		for _, fe := range vErrs {
			msg := fe.Error()
			if translator != nil {
				msg = fe.Translate(translator)
			}
			fields = append(fields, apperror.FieldError{Field: fieldPath(fe), Error: msg})
		}
		return apperror.Validation("request validation failed", fields...)
	case errors.As(err, &typeErr):
		return apperror.Validation("request validation failed", apperror.FieldError{
			Field: typeErr.Field,
			Error: fmt.Sprintf("must be a %s", typeErr.Type.String()),
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperror.Validation("request body is not valid JSON")
	case errors.Is(err, io.EOF):
		return apperror.Validation("request body is empty")
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return apperror.Validation("request validation failed",
			apperror.FieldError{Field: field, Error: "unknown field"})
	default:
		return apperror.Validation(err.Error())
	}
}
