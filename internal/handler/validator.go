package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator checks request structs against their validate tags
type Validator struct {
	validate *validator.Validate
}

var (
	sharedValidator *Validator
	validatorOnce   sync.Once
)

// roomIDPattern accepts room ids (!opaque:server) and aliases (#name:server)
var roomIDPattern = regexp.MustCompile(`^[!#][^:\s]+:[^\s]+$`)

// fieldMessages maps a failed tag to the message shown for that field
var fieldMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"url":      "Invalid URL",
	"roomid":   "Invalid chat room id",
}

// GetValidator returns the process-wide validator
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		if err := v.RegisterValidation("roomid", validateRoomID); err != nil {
			panic(err)
		}
		sharedValidator = &Validator{validate: v}
	})
	return sharedValidator
}

// ValidateStruct validates s using its tags
func (v *Validator) ValidateStruct(s any) error {
	return v.validate.Struct(s)
}

// FormatValidationError turns validator errors into a field → message map keyed by JSON name
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"error": "Invalid request format"}
	}

	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Field()] = messageFor(e)
	}
	return out
}

func messageFor(e validator.FieldError) string {
	if msg, ok := fieldMessages[e.Tag()]; ok {
		return msg
	}
	switch e.Tag() {
	case "max":
		return fmt.Sprintf("Must be at most %s", e.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s", e.Param())
	}
	return "Invalid value"
}

// jsonFieldName reports fields under the name clients send
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func validateRoomID(fl validator.FieldLevel) bool {
	return roomIDPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}
