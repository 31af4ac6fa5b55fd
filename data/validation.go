package data

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages line up with request bodies.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	return v
}

// ValidateBook checks the invariants every stored book must hold and returns a
// map of field names to messages. An empty map means the book is valid.
func ValidateBook(book *Book) map[string]string {
	errs := make(map[string]string)
	err := validate.Struct(book)
	if err == nil {
		return errs
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["book"] = err.Error()
		return errs
	}
	for _, fe := range validationErrors {
		// Namespace is "Book.notes[0].content"; drop the struct name.
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if _, exists := errs[field]; !exists {
			errs[field] = message(fe)
		}
	}
	return errs
}

// ValidateFilters checks the optional listing filters.
func ValidateFilters(filters Filters) map[string]string {
	errs := make(map[string]string)
	if filters.Status != "" && !filters.Status.Valid() {
		errs["status"] = statusMessage
	}
	return errs
}

const statusMessage = "must be one of to-read, reading, completed"

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be provided"
	case "status":
		return statusMessage
	default:
		return "is invalid"
	}
}
