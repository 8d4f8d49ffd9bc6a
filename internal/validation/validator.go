package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// VideoLinkRegex matches the video hosts lessons may link to.
var VideoLinkRegex = regexp.MustCompile(`^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/`)

const VideoLinkMessage = "Invalid URL! Only YouTube links are allowed."

// FieldErrors maps a JSON field name to a human readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("videolink", func(fl validator.FieldLevel) bool {
		return IsVideoLink(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates s and returns FieldErrors on failure.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, e := range verrs {
		out[e.Field()] = message(e)
	}
	return out
}

func IsVideoLink(link string) bool {
	return VideoLinkRegex.MatchString(link)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "videolink":
		return VideoLinkMessage
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", e.Param())
	case "lt":
		return fmt.Sprintf("Ensure this value is less than %s.", e.Param())
	case "uuid":
		return "Must be a valid UUID."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", e.Param())
	default:
		return "Invalid value."
	}
}
