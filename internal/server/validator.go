package server

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"sysmon/internal/monitor"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(procStatsValidation, monitor.ProcStats{})
	return v
}

// procStatsValidation enforces the classification invariant: the counted
// subsets can never exceed the total process count.
func procStatsValidation(sl validator.StructLevel) {
	p := sl.Current().Interface().(monitor.ProcStats)
	if p.Running+p.Sleeping+p.Zombie > p.Total {
		sl.ReportError(p.Total, "Total", "total", "procsum", "")
	}
}

// validationErrors flattens validator output into a field->message map
// keyed by JSON field names.
func validationErrors(data any, err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_error": "invalid payload"}
	}

	errors := make(map[string]string, len(verrs))
	for _, e := range verrs {
		errors[resolveFieldName(data, e.Field())] = messageFor(e)
	}
	return errors
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", e.Field())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", e.Field(), e.Param())
	case "procsum":
		return "running+sleeping+zombie must not exceed total"
	}
	return fmt.Sprintf("%s is invalid", e.Field())
}

func resolveFieldName(data any, field string) string {
	t := reflect.TypeOf(data)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if f, ok := t.FieldByName(field); ok {
		tag := f.Tag.Get("json")
		if tag != "" && tag != "-" {
			return strings.Split(tag, ",")[0]
		}
	}

	return strings.ToLower(field)
}
