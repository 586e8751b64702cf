package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/geocoder89/taskmanager/internal/apperr"
	"github.com/geocoder89/taskmanager/internal/domain/task"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// report json names so clients can match errors to their payload
		v.RegisterTagNameFunc(jsonName)

		if err := v.RegisterValidation("notblank", notBlank); err != nil {
			panic(fmt.Sprintf("validation: register notblank: %v", err))
		}
		if err := v.RegisterValidation("taskstatus", taskStatus); err != nil {
			panic(fmt.Sprintf("validation: register taskstatus: %v", err))
		}

		validate = v
	})

	return validate
}

// Struct validates v and aggregates every violation into one
// apperr.KindValidation error keyed by json field name.
func Struct(v any) error {
	return collect(engine().Struct(v))
}

// StructExcept is Struct with the named struct fields skipped. Field names
// are Go field names, not json names.
func StructExcept(v any, fields ...string) error {
	return collect(engine().StructExcept(v, fields...))
}

func collect(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperr.Wrap(apperr.KindGeneral, "", err)
	}

	fields := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		name := fieldPath(fe)
		// first violation per field wins, validator reports tags in order
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = Message(fe.Tag(), fe.Param())
	}

	return apperr.Validation(fields)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return !f.IsZero()
	}
	return strings.TrimFunc(f.String(), unicode.IsSpace) != ""
}

func taskStatus(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	return task.Status(f.String()).IsValid()
}

// Message renders a client facing message for a validator rule.
func Message(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "taskstatus":
		names := make([]string, 0, 3)
		for _, s := range task.Statuses() {
			names = append(names, string(s))
		}
		return "must be one of " + strings.Join(names, ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
