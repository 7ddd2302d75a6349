// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the data model (gorm BeforeSave
// hooks) and by gin's request binding, so both layers understand the same
// custom tags:
//
//   - name_chars: letters, digits and the characters . @ + - _ only
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	namePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		Register(validate)
	})
	return validate
}

// Register installs the json field naming and the custom tags on v. It is
// used for gin's binding engine so request DTOs share the model rules.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("name_chars", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Error is returned when a struct fails validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(messages, "; ")
}

// Details renders the field errors for an API error payload.
func (e *Error) Details() map[string]interface{} {
	fields := make(map[string]interface{}, len(e.Fields))
	for _, f := range e.Fields {
		fields[f.Field] = f.Message
	}
	return fields
}

// NewError builds an *Error for a single field rejected outside the validator.
func NewError(field, tag, msg string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Tag: tag, Message: msg}}}
}

// ValidateStruct validates s and returns *Error when any field is rejected.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	return Translate(err)
}

// Translate converts validator errors into *Error. Other errors pass through.
func Translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min", "gte":
		if isNumeric(fe.Kind()) {
			return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
		}
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "max", "lte":
		if isNumeric(fe.Kind()) {
			return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
		}
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "email":
		return "enter a valid email address"
	case "hexcolor":
		return "enter a valid hex color, e.g. #FF0000"
	case "name_chars":
		return "may contain only letters, digits and . @ + - _"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
