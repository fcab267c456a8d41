package form_test

import (
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/form"
	"portfolio-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeDraft passes every step.
func completeDraft() domain.PortfolioFormData {
	d := form.NewEmptyDraft()
	d.FullName = "Jane Doe"
	d.Email = "jane@example.com"
	d.Title = "Backend Engineer"
	d.Phone = "+62 812-3456-789"
	d.Education = []domain.Education{{Institution: "ITB", Degree: "BSc", StartYear: 2012, EndYear: 2016}}
	d.TechnicalSkills = []domain.TechnicalSkill{{Category: "Languages", Skills: []string{"Go", "SQL"}, Proficiency: "Advanced"}}
	d.WorkExperience = []domain.WorkExperience{{
		Company: "Acme", Position: "Engineer", StartDate: "2020-01-01", IsCurrentRole: true,
		Responsibilities: []string{"Built APIs"}, Technologies: []string{"TypeScript"},
	}}
	d.Projects = []domain.Project{{Name: "Portfolio", Description: "This site", Technologies: []string{"Go"}}}
	return d
}

func fields(errs []validation.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateStep(t *testing.T) {
	v := validation.New()

	t.Run("Complete draft passes every step", func(t *testing.T) {
		for step := form.StepPersonalInfo; step <= form.StepProjects; step++ {
			result, err := form.ValidateStep(v, step, completeDraft())
			require.NoError(t, err)
			assert.True(t, result.IsValid, "%s: %v", step, result.Errors)
			assert.NotNil(t, result.Errors)
		}
	})

	t.Run("Empty draft fails the required personal fields", func(t *testing.T) {
		result, err := form.ValidateStep(v, form.StepPersonalInfo, form.NewEmptyDraft())
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.ElementsMatch(t, []string{"fullName", "email", "title"}, fields(result.Errors))
	})

	t.Run("Placeholder optional entries are skipped but touched ones are checked", func(t *testing.T) {
		d := completeDraft()
		d.References = []domain.Reference{{}, {Company: "Acme", Email: "not-an-email"}}

		result, err := form.ValidateStep(v, form.StepPersonalInfo, d)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"references[1].name", "references[1].email"}, fields(result.Errors))
	})

	t.Run("Education needs a real entry", func(t *testing.T) {
		d := completeDraft()
		d.Education = []domain.Education{{}}

		result, err := form.ValidateStep(v, form.StepEducation, d)
		require.NoError(t, err)
		assert.Contains(t, fields(result.Errors), "education[0].institution")
		assert.Contains(t, fields(result.Errors), "education[0].startYear")
	})

	t.Run("End year before start year", func(t *testing.T) {
		d := completeDraft()
		d.Education[0].EndYear = 2010

		result, err := form.ValidateStep(v, form.StepEducation, d)
		require.NoError(t, err)
		assert.Equal(t, []string{"education[0].endYear"}, fields(result.Errors))
	})

	t.Run("Skill categories need a non-blank skill", func(t *testing.T) {
		d := completeDraft()
		d.TechnicalSkills[0].Skills = []string{"", " "}

		result, err := form.ValidateStep(v, form.StepSkillsExperience, d)
		require.NoError(t, err)
		assert.Equal(t, []validation.FieldError{{Field: "technicalSkills[0].skills", Message: "Add at least one skill"}}, result.Errors)
	})

	t.Run("Past roles need an end date not before the start", func(t *testing.T) {
		d := completeDraft()
		d.WorkExperience[0].IsCurrentRole = false

		result, err := form.ValidateStep(v, form.StepSkillsExperience, d)
		require.NoError(t, err)
		assert.Equal(t, []string{"workExperience[0].endDate"}, fields(result.Errors))

		d.WorkExperience[0].EndDate = "2019-12-31"
		result, err = form.ValidateStep(v, form.StepSkillsExperience, d)
		require.NoError(t, err)
		assert.Equal(t, "End date must not be before start date", result.Errors[0].Message)

		d.WorkExperience[0].EndDate = "2021-13-01"
		result, err = form.ValidateStep(v, form.StepSkillsExperience, d)
		require.NoError(t, err)
		assert.Equal(t, []string{"workExperience[0].endDate"}, fields(result.Errors))
	})

	t.Run("Current roles cannot carry an end date", func(t *testing.T) {
		d := completeDraft()
		d.WorkExperience[0].EndDate = "2024-06-30"

		result, err := form.ValidateStep(v, form.StepSkillsExperience, d)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, []validation.FieldError{{
			Field:   "workExperience[0].endDate",
			Message: "A current role has no end date",
		}}, result.Errors)
	})

	t.Run("Projects need name and description", func(t *testing.T) {
		d := completeDraft()
		d.Projects = []domain.Project{{URL: "not a url", Technologies: []string{""}}}

		result, err := form.ValidateStep(v, form.StepProjects, d)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"projects[0].name", "projects[0].description", "projects[0].url"}, fields(result.Errors))
	})

	t.Run("Validation does not change the draft", func(t *testing.T) {
		d := form.NewEmptyDraft()
		before := form.NewEmptyDraft()
		for step := form.StepPersonalInfo; step <= form.StepProjects; step++ {
			_, err := form.ValidateStep(v, step, d)
			require.NoError(t, err)
		}
		assert.Equal(t, before, d)
	})

	t.Run("Unknown step", func(t *testing.T) {
		_, err := form.ValidateStep(v, form.Step(9), completeDraft())
		assert.Error(t, err)
		assert.False(t, form.Step(0).Valid())
		assert.Equal(t, "Step(9)", form.Step(9).String())
		assert.Equal(t, "Skills & Experience", form.StepSkillsExperience.String())
	})
}
