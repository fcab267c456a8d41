package form

import (
	"strings"

	"portfolio-backend/internal/domain"
)

// NewEmptyDraft returns the draft a user starts from: every list holds one
// empty entry.
func NewEmptyDraft() domain.PortfolioFormData {
	return withPlaceholders(domain.PortfolioFormData{})
}

// ToPortfolioContent maps the flat draft to the stored shape. Only blank
// language entries are dropped; every other list is kept as entered.
func ToPortfolioContent(d domain.PortfolioFormData) domain.PortfolioContent {
	d = cloneDraft(d)

	languages := make([]domain.LanguageProficiency, 0, len(d.LanguageProficiency))
	for _, l := range d.LanguageProficiency {
		if strings.TrimSpace(l.Language) == "" {
			continue
		}
		languages = append(languages, l)
	}

	return domain.PortfolioContent{
		PersonalInfo: domain.PersonalInfo{
			FullName:            d.FullName,
			Email:               d.Email,
			Phone:               d.Phone,
			Location:            d.Location,
			Title:               d.Title,
			Summary:             d.Summary,
			LinkedIn:            d.LinkedIn,
			GitHub:              d.GitHub,
			Website:             d.Website,
			LanguageProficiency: languages,
		},
		References:      d.References,
		Education:       d.Education,
		Certifications:  d.Certifications,
		Courses:         d.Courses,
		TechnicalSkills: d.TechnicalSkills,
		WorkExperience:  d.WorkExperience,
		Projects:        d.Projects,
	}
}

// ToFormData flattens stored content back into a draft. Lists left empty in
// storage come back with a single placeholder entry.
func ToFormData(c domain.PortfolioContent) domain.PortfolioFormData {
	p := c.PersonalInfo
	d := domain.PortfolioFormData{
		FullName:            p.FullName,
		Email:               p.Email,
		Phone:               p.Phone,
		Location:            p.Location,
		Title:               p.Title,
		Summary:             p.Summary,
		LinkedIn:            p.LinkedIn,
		GitHub:              p.GitHub,
		Website:             p.Website,
		LanguageProficiency: p.LanguageProficiency,
		References:          c.References,
		Education:           c.Education,
		Certifications:      c.Certifications,
		Courses:             c.Courses,
		TechnicalSkills:     c.TechnicalSkills,
		WorkExperience:      c.WorkExperience,
		Projects:            c.Projects,
	}
	return withPlaceholders(cloneDraft(d))
}

// withPlaceholders gives every list, nested ones included, its floor of one
// entry.
func withPlaceholders(d domain.PortfolioFormData) domain.PortfolioFormData {
	if len(d.LanguageProficiency) == 0 {
		d.LanguageProficiency = []domain.LanguageProficiency{{}}
	}
	if len(d.References) == 0 {
		d.References = []domain.Reference{{}}
	}
	if len(d.Education) == 0 {
		d.Education = []domain.Education{{}}
	}
	if len(d.Certifications) == 0 {
		d.Certifications = []domain.Certification{{}}
	}
	if len(d.Courses) == 0 {
		d.Courses = []domain.Course{{}}
	}
	if len(d.TechnicalSkills) == 0 {
		d.TechnicalSkills = []domain.TechnicalSkill{emptyTechnicalSkill()}
	}
	if len(d.WorkExperience) == 0 {
		d.WorkExperience = []domain.WorkExperience{emptyWorkExperience()}
	}
	if len(d.Projects) == 0 {
		d.Projects = []domain.Project{emptyProject()}
	}

	for i := range d.TechnicalSkills {
		d.TechnicalSkills[i].Skills = atLeastOne(d.TechnicalSkills[i].Skills)
	}
	for i := range d.WorkExperience {
		d.WorkExperience[i].Responsibilities = atLeastOne(d.WorkExperience[i].Responsibilities)
		d.WorkExperience[i].Technologies = atLeastOne(d.WorkExperience[i].Technologies)
	}
	for i := range d.Projects {
		d.Projects[i].Technologies = atLeastOne(d.Projects[i].Technologies)
		d.Projects[i].Highlights = atLeastOne(d.Projects[i].Highlights)
	}
	return d
}

func atLeastOne(l []string) []string {
	if len(l) == 0 {
		return []string{""}
	}
	return l
}

func emptyTechnicalSkill() domain.TechnicalSkill {
	return domain.TechnicalSkill{Skills: []string{""}}
}

func emptyWorkExperience() domain.WorkExperience {
	return domain.WorkExperience{
		Responsibilities: []string{""},
		Technologies:     []string{""},
	}
}

func emptyProject() domain.Project {
	return domain.Project{
		Technologies: []string{""},
		Highlights:   []string{""},
	}
}
