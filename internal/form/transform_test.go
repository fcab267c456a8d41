package form_test

import (
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/form"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmptyDraft(t *testing.T) {
	d := form.NewEmptyDraft()

	assert.Len(t, d.LanguageProficiency, 1)
	assert.Len(t, d.References, 1)
	assert.Len(t, d.Education, 1)
	assert.Len(t, d.Certifications, 1)
	assert.Len(t, d.Courses, 1)
	require.Len(t, d.TechnicalSkills, 1)
	assert.Equal(t, []string{""}, d.TechnicalSkills[0].Skills)
	require.Len(t, d.WorkExperience, 1)
	assert.Equal(t, []string{""}, d.WorkExperience[0].Responsibilities)
	require.Len(t, d.Projects, 1)
	assert.Equal(t, []string{""}, d.Projects[0].Highlights)
}

func TestToPortfolioContent(t *testing.T) {
	d := form.NewEmptyDraft()
	d.FullName = "Jane"
	d.Email = "jane@example.com"
	d.LinkedIn = "https://linkedin.com/in/jane"
	d.LanguageProficiency = []domain.LanguageProficiency{
		{Language: "English", Level: "Native"},
		{Language: "  ", Level: "Basic"},
		{},
	}

	c := form.ToPortfolioContent(d)

	t.Run("Personal fields are nested", func(t *testing.T) {
		assert.Equal(t, "Jane", c.PersonalInfo.FullName)
		assert.Equal(t, "jane@example.com", c.PersonalInfo.Email)
		assert.Equal(t, "https://linkedin.com/in/jane", c.PersonalInfo.LinkedIn)
	})

	t.Run("Blank languages are dropped", func(t *testing.T) {
		assert.Equal(t, []domain.LanguageProficiency{{Language: "English", Level: "Native"}}, c.PersonalInfo.LanguageProficiency)
	})

	t.Run("Other lists are kept as entered", func(t *testing.T) {
		assert.Len(t, c.References, 1)
		assert.Len(t, c.Projects, 1)
	})

	t.Run("The draft is not shared", func(t *testing.T) {
		c.WorkExperience[0].Responsibilities[0] = "changed"
		assert.Equal(t, "", d.WorkExperience[0].Responsibilities[0])
	})
}

func TestToFormDataRoundTrip(t *testing.T) {
	d := form.NewEmptyDraft()
	d.FullName = "Jane"
	d.Title = "Engineer"
	d.LanguageProficiency = []domain.LanguageProficiency{{Language: "Indonesian", Level: "Native"}}
	d.WorkExperience = []domain.WorkExperience{
		{Company: "Acme", Position: "Engineer", StartDate: "2020-01-01", IsCurrentRole: true,
			Responsibilities: []string{"Built APIs"}, Technologies: []string{"TypeScript"}},
		{Company: "Initech", Position: "Intern", StartDate: "2018-01-01", EndDate: "2019-06-30",
			Responsibilities: []string{"Tests"}, Technologies: []string{"Python"}},
	}

	back := form.ToFormData(form.ToPortfolioContent(d))
	assert.Equal(t, d, back)
}

func TestToFormDataRestoresPlaceholders(t *testing.T) {
	d := form.ToFormData(domain.PortfolioContent{
		PersonalInfo: domain.PersonalInfo{FullName: "Jane"},
	})

	assert.Equal(t, "Jane", d.FullName)
	assert.Equal(t, form.NewEmptyDraft().Projects, d.Projects)
	assert.Len(t, d.LanguageProficiency, 1)
}

func TestToFormDataRestoresNestedPlaceholders(t *testing.T) {
	d := form.ToFormData(domain.PortfolioContent{
		TechnicalSkills: []domain.TechnicalSkill{{Category: "Go"}},
		WorkExperience:  []domain.WorkExperience{{Company: "Acme", Technologies: []string{}}},
		Projects:        []domain.Project{{Name: "Site", Technologies: []string{"Go"}}},
	})

	assert.Equal(t, []string{""}, d.TechnicalSkills[0].Skills)
	assert.Equal(t, []string{""}, d.WorkExperience[0].Responsibilities)
	assert.Equal(t, []string{""}, d.WorkExperience[0].Technologies)
	assert.Equal(t, []string{"Go"}, d.Projects[0].Technologies)
	assert.Equal(t, []string{""}, d.Projects[0].Highlights)
}
