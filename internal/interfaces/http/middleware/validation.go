package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/heoquay/backend/internal/interfaces/http/dto"
)

// SetupValidator configures the validator with custom tags
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Use JSON tag names for field names in errors
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
	}
}

// ValidationMessage turns a binding error into the message shown to the
// desk. Only the first failing field is reported.
func ValidationMessage(err error) string {
	var (
		fieldErrs validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		return fieldMessage(fieldErrs[0])
	case errors.As(err, &sizeErr):
		return dto.MsgBodyTooLarge
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return typeErr.Field + " không hợp lệ"
		}
		return dto.MsgInvalidJSON
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return dto.MsgInvalidJSON
	default:
		return dto.MsgInvalidJSON
	}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Thiếu " + e.Field()
	case "oneof":
		return e.Field() + " phải là một trong: " + e.Param()
	case "min", "gte":
		return e.Field() + " tối thiểu " + e.Param()
	case "max", "lte":
		return e.Field() + " tối đa " + e.Param()
	default:
		return e.Field() + " không hợp lệ"
	}
}
