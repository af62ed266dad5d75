// Package validation checks decoded request bodies and path parameters and
// reports problems field by field.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// IsUUID reports whether s is a hyphenated 8-4-4-4-12 hex identifier.
// Letter case is ignored.
func IsUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// ParseUUID parses a path parameter, returning an *Error naming field when
// the value is not a canonical UUID.
func ParseUUID(field, s string) (uuid.UUID, error) {
	if !IsUUID(s) {
		return uuid.Nil, &Error{
			Message: "invalid " + field,
			Fields:  []FieldError{{Field: field, Message: "must be a valid UUID"}},
		}
	}
	return uuid.Parse(s)
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// Malformed wraps a body that could not be decoded at all.
func Malformed(err error) *Error {
	return &Error{Message: "invalid request body", Fields: []FieldError{{Field: "body", Message: err.Error()}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &Error{Message: "request validation failed"}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "failed the " + fe.Tag() + " check"
}
