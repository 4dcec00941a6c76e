// Package validation registers the request rules used by gin binding and
// turns binding failures into field-level messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/storerate/storerate-backend/internal/app/model"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
)

// SpecialCharacters is the set a password must draw at least one rune from.
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

var registerOnce sync.Once
var registerErr error

// Register installs the custom tags on gin's validator engine. Safe to call
// more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("validation: unexpected validator engine")
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	rules := map[string]validator.Func{
		"password_strength": passwordStrength,
		"user_role":         userRole,
		"trimmed_min":       trimmedMin,
		"trimmed_max":       trimmedMax,
		"trimmed_email":     trimmedEmail(v),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validation: register %s: %w", tag, err)
		}
	}
	return nil
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// HasUppercase reports whether s contains an upper-case letter.
func HasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// HasSpecial reports whether s contains one of SpecialCharacters.
func HasSpecial(s string) bool {
	return strings.ContainsAny(s, SpecialCharacters)
}

func passwordStrength(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return HasUppercase(s) && HasSpecial(s)
}

// userRole accepts an empty value so the tag can sit behind omitempty.
func userRole(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, ok := model.ParseRole(s)
	return ok
}

func trimmedLen(fl validator.FieldLevel) (int, int, bool) {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return 0, 0, false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())), limit, true
}

// trimmedEmail applies the built-in email rule to the value without
// surrounding whitespace. Services normalize the address the same way.
func trimmedEmail(v *validator.Validate) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return v.Var(strings.TrimSpace(fl.Field().String()), "email") == nil
	}
}

func trimmedMin(fl validator.FieldLevel) bool {
	n, limit, ok := trimmedLen(fl)
	return ok && n >= limit
}

func trimmedMax(fl validator.FieldLevel) bool {
	n, limit, ok := trimmedLen(fl)
	return ok && n <= limit
}

// field-specific messages win over tag messages
var fieldMessages = map[string]string{
	"name":     "Name must be between 20 and 60 characters",
	"email":    "Please provide a valid email",
	"address":  "Address must not exceed 400 characters",
	"role":     "Invalid role",
	"rating":   "Rating must be between 1 and 5",
	"store_id": "Valid store ID is required",
	"owner_id": "Owner ID must be a positive integer",
}

func passwordMessage(tag string) string {
	switch tag {
	case "password_strength":
		return "Password must contain at least one uppercase letter and one special character"
	case "required":
		return "Password is required"
	}
	return "Password must be between 8 and 16 characters"
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	if field == "password" {
		return passwordMessage(fe.Tag())
	}
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min", "trimmed_min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "trimmed_max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

// Translate converts a binding error into field-level messages.
func Translate(err error) []apperrors.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]apperrors.FieldError, 0, len(verrs))
		seen := make(map[string]bool, len(verrs))
		for _, fe := range verrs {
			if seen[fe.Field()] {
				continue
			}
			seen[fe.Field()] = true
			out = append(out, apperrors.FieldError{Field: fe.Field(), Message: messageFor(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if msg, ok := fieldMessages[field]; ok {
			return []apperrors.FieldError{{Field: field, Message: msg}}
		}
		return []apperrors.FieldError{{Field: field, Message: fmt.Sprintf("%s has the wrong type", field)}}
	}

	return []apperrors.FieldError{{Field: "body", Message: "Request body must be valid JSON"}}
}

// Struct validates v against its binding tags using gin's engine, so
// callers outside an HTTP request apply the same rules.
func Struct(v interface{}) error {
	if err := Register(); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(v)
}
