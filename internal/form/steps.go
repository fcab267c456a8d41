package form

import (
	"fmt"
	"reflect"
	"strings"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type Step int

const (
	StepPersonalInfo Step = iota + 1
	StepEducation
	StepSkillsExperience
	StepProjects
)

// StepCount is the number of form steps; steps are numbered from 1.
const StepCount = 4

var stepNames = map[Step]string{
	StepPersonalInfo:     "Personal Info",
	StepEducation:        "Education",
	StepSkillsExperience: "Skills & Experience",
	StepProjects:         "Projects",
}

func (s Step) Valid() bool {
	return s >= StepPersonalInfo && s <= StepProjects
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// StepResult is the outcome of validating one step against the draft.
type StepResult struct {
	Step    Step                    `json:"step"`
	IsValid bool                    `json:"isValid"`
	Errors  []validation.FieldError `json:"errors"`
}

// ============================================================================
// Step schemas
// ============================================================================

type personalInfoStep struct {
	FullName string `json:"fullName" validate:"required,not_blank,max=100,valid_name"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"valid_phone"`
	Location string `json:"location" validate:"max=100,no_emoji"`
	Title    string `json:"title" validate:"required,not_blank,max=100"`
	Summary  string `json:"summary" validate:"max=2000"`
	LinkedIn string `json:"linkedin" validate:"omitempty,url"`
	GitHub   string `json:"github" validate:"omitempty,url"`
	Website  string `json:"website" validate:"omitempty,url"`
}

type educationStep struct {
	Education []domain.Education `json:"education" validate:"min=1,dive"`
}

type skillsExperienceStep struct {
	TechnicalSkills []domain.TechnicalSkill `json:"technicalSkills" validate:"min=1,dive"`
	WorkExperience  []domain.WorkExperience `json:"workExperience" validate:"min=1,dive"`
}

type projectsStep struct {
	Projects []domain.Project `json:"projects" validate:"min=1,dive"`
}

// ValidateStep checks one step of d. It never mutates d.
func ValidateStep(v *validator.Validate, step Step, d domain.PortfolioFormData) (StepResult, error) {
	var errs []validation.FieldError

	switch step {
	case StepPersonalInfo:
		errs = structErrors(v, personalInfoStep{
			FullName: d.FullName,
			Email:    d.Email,
			Phone:    d.Phone,
			Location: d.Location,
			Title:    d.Title,
			Summary:  d.Summary,
			LinkedIn: d.LinkedIn,
			GitHub:   d.GitHub,
			Website:  d.Website,
		})
		errs = append(errs, optionalEntries(v, "languageProficiency", d.LanguageProficiency)...)
		errs = append(errs, optionalEntries(v, "references", d.References)...)

	case StepEducation:
		errs = structErrors(v, educationStep{Education: d.Education})
		errs = append(errs, optionalEntries(v, "certifications", d.Certifications)...)
		errs = append(errs, optionalEntries(v, "courses", d.Courses)...)

	case StepSkillsExperience:
		errs = structErrors(v, skillsExperienceStep{
			TechnicalSkills: d.TechnicalSkills,
			WorkExperience:  d.WorkExperience,
		})
		errs = append(errs, skillListErrors(d.TechnicalSkills)...)
		errs = append(errs, workDateErrors(d.WorkExperience)...)

	case StepProjects:
		errs = structErrors(v, projectsStep{Projects: d.Projects})

	default:
		return StepResult{}, fmt.Errorf("unknown step %d", int(step))
	}

	if errs == nil {
		errs = []validation.FieldError{}
	}
	return StepResult{Step: step, IsValid: len(errs) == 0, Errors: errs}, nil
}

func structErrors(v *validator.Validate, s interface{}) []validation.FieldError {
	if err := v.Struct(s); err != nil {
		return validation.FormatFieldErrors(err, "")
	}
	return nil
}

// optionalEntries validates the entries of a list the user may leave empty.
// Untouched placeholder entries are skipped.
func optionalEntries[T any](v *validator.Validate, field string, entries []T) []validation.FieldError {
	var errs []validation.FieldError
	for i, entry := range entries {
		if isBlank(reflect.ValueOf(entry)) {
			continue
		}
		if err := v.Struct(entry); err != nil {
			errs = append(errs, validation.FormatFieldErrors(err, fmt.Sprintf("%s[%d]", field, i))...)
		}
	}
	return errs
}

func skillListErrors(skills []domain.TechnicalSkill) []validation.FieldError {
	var errs []validation.FieldError
	for i, ts := range skills {
		if len(ts.Skills) == 0 {
			continue // reported by min=1
		}
		if isBlank(reflect.ValueOf(ts.Skills)) {
			errs = append(errs, validation.FieldError{
				Field:   fmt.Sprintf("technicalSkills[%d].skills", i),
				Message: "Add at least one skill",
			})
		}
	}
	return errs
}

// workDateErrors relies on YYYY-MM-DD comparing correctly as text. A current
// role must leave endDate empty.
func workDateErrors(jobs []domain.WorkExperience) []validation.FieldError {
	var errs []validation.FieldError
	for i, job := range jobs {
		if job.IsCurrentRole && strings.TrimSpace(job.EndDate) != "" {
			errs = append(errs, validation.FieldError{
				Field:   fmt.Sprintf("workExperience[%d].endDate", i),
				Message: "A current role has no end date",
			})
			continue
		}
		if job.IsCurrentRole || job.EndDate == "" || job.StartDate == "" {
			continue
		}
		if job.EndDate < job.StartDate {
			errs = append(errs, validation.FieldError{
				Field:   fmt.Sprintf("workExperience[%d].endDate", i),
				Message: "End date must not be before start date",
			})
		}
	}
	return errs
}

// isBlank reports whether v holds nothing a user typed: empty or whitespace
// strings, zero numbers, false, and lists of blanks.
func isBlank(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !isBlank(v.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !isBlank(v.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Pointer, reflect.Interface:
		return v.IsNil() || isBlank(v.Elem())
	default:
		return v.IsZero()
	}
}
