package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one field-level problem, addressed by its json path
// (for example "workExperience[0].startDate").
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldLabels maps json field names to user-facing labels
var FieldLabels = map[string]string{
	"fullName":     "Full name",
	"email":        "Email",
	"phone":        "Phone number",
	"location":     "Location",
	"title":        "Professional title",
	"summary":      "Summary",
	"linkedin":     "LinkedIn URL",
	"github":       "GitHub URL",
	"website":      "Website",
	"language":     "Language",
	"level":        "Level",
	"institution":  "Institution",
	"degree":       "Degree",
	"fieldOfStudy": "Field of study",
	"startYear":    "Start year",
	"endYear":      "End year",
	"issuer":       "Issuer",
	"issueDate":    "Issue date",
	"provider":     "Provider",
	"category":     "Category",
	"skills":       "Skills",
	"proficiency":  "Proficiency",
	"company":      "Company",
	"position":     "Position",
	"startDate":    "Start date",
	"endDate":      "End date",
	"name":         "Name",
	"description":  "Description",
	"categoryName": "Category name",
}

// FormatFieldErrors converts validator errors into FieldErrors. The leading
// struct name of each namespace is replaced by prefix ("" drops it).
func FormatFieldErrors(err error, prefix string) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: prefix, Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{
			Field:   fieldPath(e.Namespace(), prefix),
			Message: formatSingleError(e),
		})
	}
	return out
}

// FormatValidationErrors returns plain messages, for request bodies that do
// not need per-field placement.
func FormatValidationErrors(err error) []string {
	fieldErrors := FormatFieldErrors(err, "")
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fe.Message)
	}
	return messages
}

func fieldPath(namespace, prefix string) string {
	path := namespace
	if i := strings.Index(namespace, "."); i >= 0 {
		path = namespace[i+1:]
	}
	if prefix == "" {
		return path
	}
	return prefix + "." + path
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%s is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s needs at least %s entries", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(param), ", "))

	case "email":
		return fmt.Sprintf("%s is not a valid email address", label)

	case "url":
		return fmt.Sprintf("%s is not a valid URL", label)

	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, digits, spaces and . ' - / & ( ) ,", label)

	case "valid_phone":
		return fmt.Sprintf("%s is not a valid phone number (7-15 digits, optional +)", label)

	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or symbols", label)

	case "max_current_year":
		return fmt.Sprintf("%s cannot be later than the current year", label)

	case "calendar_date":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", label)

	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", label, getFieldLabel(lowerFirst(param)))

	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts camelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
			r += 'a' - 'A'
		}
		if i == 0 && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		result.WriteRune(r)
	}
	return result.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
