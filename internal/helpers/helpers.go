package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// StringTrim normalizes ids coming in as path params: trims spaces and
// surrounding quotes which may occur when clients pass values as JSON
// strings or templates.
func StringTrim(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'")
	return s
}

// eventDateLayouts are tried in order when parsing the date string on event
// creation. Timestamps without a zone are taken as UTC.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseEventDate converts a client-supplied date string into an absolute
// instant in UTC.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %q", s)
}

// ValidationFields flattens validator errors into field -> message form for
// form-level rendering on the client.
func ValidationFields(err error) map[string]string {
	fields := map[string]string{}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["input"] = err.Error()
		return fields
	}

	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = "is required"
		case "min":
			fields[field] = fmt.Sprintf("must be at least %s", minMessage(fe))
		case "email":
			fields[field] = "must be a valid email address"
		default:
			fields[field] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}
	return fields
}

func minMessage(fe validator.FieldError) string {
	if fe.Kind().String() == "string" {
		return fe.Param() + " characters"
	}
	return fe.Param()
}
