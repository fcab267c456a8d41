package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"
)

var (
	// ErrMinimumLength is returned by Remove when the list would become empty.
	ErrMinimumLength   = errors.New("list must keep at least one entry")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownField    = errors.New("unknown list field")
)

func minimumLengthError(field string) error {
	return apperror.New(http.StatusUnprocessableEntity,
		fmt.Sprintf("%s must keep at least one entry", field), ErrMinimumLength)
}

func indexError(field string, index int) error {
	return apperror.New(http.StatusBadRequest,
		fmt.Sprintf("%s has no entry at index %d", field, index), ErrIndexOutOfRange)
}

// ============================================================================
// Top-level lists
// ============================================================================

// FieldArray edits one list of the draft held by a Session. Lists never drop
// below one entry; insertion order is kept.
type FieldArray[T any] struct {
	session  *Session
	name     string
	list     func(d *domain.PortfolioFormData) *[]T
	template func() T
}

func (a *FieldArray[T]) Name() string { return a.name }

func (a *FieldArray[T]) Len() int {
	d := a.session.Draft()
	return len(*a.list(&d))
}

// Append adds item at the end.
func (a *FieldArray[T]) Append(item T) error {
	return a.session.UpdateDraft(func(d *domain.PortfolioFormData) error {
		l := a.list(d)
		*l = append(*l, item)
		return nil
	})
}

// AppendEmpty adds the empty entry a new row starts from.
func (a *FieldArray[T]) AppendEmpty() error {
	return a.Append(a.template())
}

func (a *FieldArray[T]) Remove(index int) error {
	return a.session.UpdateDraft(func(d *domain.PortfolioFormData) error {
		l := a.list(d)
		if index < 0 || index >= len(*l) {
			return indexError(a.name, index)
		}
		if len(*l) <= 1 {
			return minimumLengthError(a.name)
		}
		*l = append((*l)[:index], (*l)[index+1:]...)
		return nil
	})
}

// Move takes the entry at from and reinserts it at to.
func (a *FieldArray[T]) Move(from, to int) error {
	return a.session.UpdateDraft(func(d *domain.PortfolioFormData) error {
		l := a.list(d)
		if from < 0 || from >= len(*l) {
			return indexError(a.name, from)
		}
		if to < 0 || to >= len(*l) {
			return indexError(a.name, to)
		}
		*l = move(*l, from, to)
		return nil
	})
}

func (a *FieldArray[T]) appendJSON(raw []byte) error {
	item := a.template()
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &item); err != nil {
			return apperror.BadRequest(fmt.Sprintf("Invalid %s entry: %v", a.name, err))
		}
	}
	return a.Append(item)
}

// ============================================================================
// Lists inside list entries
// ============================================================================

// NestedFieldArray edits a list held by each entry of an outer list, such as
// the skills of one technical skill category.
type NestedFieldArray[O any, T any] struct {
	session *Session
	outer   string
	name    string
	list    func(d *domain.PortfolioFormData) *[]O
	inner   func(o *O) *[]T
}

func (a *NestedFieldArray[O, T]) path(outer int) string {
	return fmt.Sprintf("%s[%d].%s", a.outer, outer, a.name)
}

func (a *NestedFieldArray[O, T]) entry(d *domain.PortfolioFormData, outer int) (*[]T, error) {
	l := a.list(d)
	if outer < 0 || outer >= len(*l) {
		return nil, indexError(a.outer, outer)
	}
	return a.inner(&(*l)[outer]), nil
}

func (a *NestedFieldArray[O, T]) Len(outer int) (int, error) {
	d := a.session.Draft()
	l, err := a.entry(&d, outer)
	if err != nil {
		return 0, err
	}
	return len(*l), nil
}

func (a *NestedFieldArray[O, T]) Append(outer int, item T) error {
	return a.session.UpdateDraft(func(d *domain.PortfolioFormData) error {
		l, err := a.entry(d, outer)
		if err != nil {
			return err
		}
		*l = append(*l, item)
		return nil
	})
}

func (a *NestedFieldArray[O, T]) Remove(outer, index int) error {
	return a.session.UpdateDraft(func(d *domain.PortfolioFormData) error {
		l, err := a.entry(d, outer)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(*l) {
			return indexError(a.path(outer), index)
		}
		if len(*l) <= 1 {
			return minimumLengthError(a.path(outer))
		}
		*l = append((*l)[:index], (*l)[index+1:]...)
		return nil
	})
}

func (a *NestedFieldArray[O, T]) Move(outer, from, to int) error {
	return a.session.UpdateDraft(func(d *domain.PortfolioFormData) error {
		l, err := a.entry(d, outer)
		if err != nil {
			return err
		}
		if from < 0 || from >= len(*l) {
			return indexError(a.path(outer), from)
		}
		if to < 0 || to >= len(*l) {
			return indexError(a.path(outer), to)
		}
		*l = move(*l, from, to)
		return nil
	})
}

func (a *NestedFieldArray[O, T]) appendJSON(outer int, raw []byte) error {
	var item T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &item); err != nil {
			return apperror.BadRequest(fmt.Sprintf("Invalid %s entry: %v", a.path(outer), err))
		}
	}
	return a.Append(outer, item)
}

func move[T any](l []T, from, to int) []T {
	item := l[from]
	l = append(l[:from], l[from+1:]...)
	l = append(l[:to], append([]T{item}, l[to:]...)...)
	return l
}

// ============================================================================
// Named lists
// ============================================================================

func LanguageProficiency(s *Session) *FieldArray[domain.LanguageProficiency] {
	return &FieldArray[domain.LanguageProficiency]{
		session:  s,
		name:     "languageProficiency",
		list:     func(d *domain.PortfolioFormData) *[]domain.LanguageProficiency { return &d.LanguageProficiency },
		template: func() domain.LanguageProficiency { return domain.LanguageProficiency{} },
	}
}

func References(s *Session) *FieldArray[domain.Reference] {
	return &FieldArray[domain.Reference]{
		session:  s,
		name:     "references",
		list:     func(d *domain.PortfolioFormData) *[]domain.Reference { return &d.References },
		template: func() domain.Reference { return domain.Reference{} },
	}
}

func Education(s *Session) *FieldArray[domain.Education] {
	return &FieldArray[domain.Education]{
		session:  s,
		name:     "education",
		list:     func(d *domain.PortfolioFormData) *[]domain.Education { return &d.Education },
		template: func() domain.Education { return domain.Education{} },
	}
}

func Certifications(s *Session) *FieldArray[domain.Certification] {
	return &FieldArray[domain.Certification]{
		session:  s,
		name:     "certifications",
		list:     func(d *domain.PortfolioFormData) *[]domain.Certification { return &d.Certifications },
		template: func() domain.Certification { return domain.Certification{} },
	}
}

func Courses(s *Session) *FieldArray[domain.Course] {
	return &FieldArray[domain.Course]{
		session:  s,
		name:     "courses",
		list:     func(d *domain.PortfolioFormData) *[]domain.Course { return &d.Courses },
		template: func() domain.Course { return domain.Course{} },
	}
}

func TechnicalSkills(s *Session) *FieldArray[domain.TechnicalSkill] {
	return &FieldArray[domain.TechnicalSkill]{
		session:  s,
		name:     "technicalSkills",
		list:     func(d *domain.PortfolioFormData) *[]domain.TechnicalSkill { return &d.TechnicalSkills },
		template: emptyTechnicalSkill,
	}
}

func WorkExperience(s *Session) *FieldArray[domain.WorkExperience] {
	return &FieldArray[domain.WorkExperience]{
		session:  s,
		name:     "workExperience",
		list:     func(d *domain.PortfolioFormData) *[]domain.WorkExperience { return &d.WorkExperience },
		template: emptyWorkExperience,
	}
}

func Projects(s *Session) *FieldArray[domain.Project] {
	return &FieldArray[domain.Project]{
		session:  s,
		name:     "projects",
		list:     func(d *domain.PortfolioFormData) *[]domain.Project { return &d.Projects },
		template: emptyProject,
	}
}

func CategorySkills(s *Session) *NestedFieldArray[domain.TechnicalSkill, string] {
	return &NestedFieldArray[domain.TechnicalSkill, string]{
		session: s,
		outer:   "technicalSkills",
		name:    "skills",
		list:    func(d *domain.PortfolioFormData) *[]domain.TechnicalSkill { return &d.TechnicalSkills },
		inner:   func(o *domain.TechnicalSkill) *[]string { return &o.Skills },
	}
}

func Responsibilities(s *Session) *NestedFieldArray[domain.WorkExperience, string] {
	return &NestedFieldArray[domain.WorkExperience, string]{
		session: s,
		outer:   "workExperience",
		name:    "responsibilities",
		list:    func(d *domain.PortfolioFormData) *[]domain.WorkExperience { return &d.WorkExperience },
		inner:   func(o *domain.WorkExperience) *[]string { return &o.Responsibilities },
	}
}

func WorkTechnologies(s *Session) *NestedFieldArray[domain.WorkExperience, string] {
	return &NestedFieldArray[domain.WorkExperience, string]{
		session: s,
		outer:   "workExperience",
		name:    "technologies",
		list:    func(d *domain.PortfolioFormData) *[]domain.WorkExperience { return &d.WorkExperience },
		inner:   func(o *domain.WorkExperience) *[]string { return &o.Technologies },
	}
}

func ProjectTechnologies(s *Session) *NestedFieldArray[domain.Project, string] {
	return &NestedFieldArray[domain.Project, string]{
		session: s,
		outer:   "projects",
		name:    "technologies",
		list:    func(d *domain.PortfolioFormData) *[]domain.Project { return &d.Projects },
		inner:   func(o *domain.Project) *[]string { return &o.Technologies },
	}
}

func ProjectHighlights(s *Session) *NestedFieldArray[domain.Project, string] {
	return &NestedFieldArray[domain.Project, string]{
		session: s,
		outer:   "projects",
		name:    "highlights",
		list:    func(d *domain.PortfolioFormData) *[]domain.Project { return &d.Projects },
		inner:   func(o *domain.Project) *[]string { return &o.Highlights },
	}
}

// AddSkillToCategory appends an empty skill slot to technicalSkills[category].
func AddSkillToCategory(s *Session, category int) error {
	return CategorySkills(s).Append(category, "")
}

func RemoveSkillFromCategory(s *Session, category, skill int) error {
	return CategorySkills(s).Remove(category, skill)
}

// ============================================================================
// Lookup by field name
// ============================================================================

type namedArray interface {
	Remove(index int) error
	Move(from, to int) error
	appendJSON(raw []byte) error
}

type namedNestedArray interface {
	Len(outer int) (int, error)
	Remove(outer, index int) error
	Move(outer, from, to int) error
	appendJSON(outer int, raw []byte) error
}

// Arrays resolves list fields of a session by their json names.
type Arrays struct {
	session *Session
}

func NewArrays(s *Session) *Arrays {
	return &Arrays{session: s}
}

func (a *Arrays) array(field string) (namedArray, error) {
	switch field {
	case "languageProficiency":
		return LanguageProficiency(a.session), nil
	case "references":
		return References(a.session), nil
	case "education":
		return Education(a.session), nil
	case "certifications":
		return Certifications(a.session), nil
	case "courses":
		return Courses(a.session), nil
	case "technicalSkills":
		return TechnicalSkills(a.session), nil
	case "workExperience":
		return WorkExperience(a.session), nil
	case "projects":
		return Projects(a.session), nil
	}
	return nil, apperror.New(http.StatusBadRequest, fmt.Sprintf("Unknown list field: %s", field), ErrUnknownField)
}

func (a *Arrays) nested(field, nested string) (namedNestedArray, error) {
	switch field + "." + nested {
	case "technicalSkills.skills":
		return CategorySkills(a.session), nil
	case "workExperience.responsibilities":
		return Responsibilities(a.session), nil
	case "workExperience.technologies":
		return WorkTechnologies(a.session), nil
	case "projects.technologies":
		return ProjectTechnologies(a.session), nil
	case "projects.highlights":
		return ProjectHighlights(a.session), nil
	}
	return nil, apperror.New(http.StatusBadRequest,
		fmt.Sprintf("Unknown list field: %s[].%s", field, nested), ErrUnknownField)
}

// Append adds an entry decoded from raw, or the empty entry when raw is empty.
func (a *Arrays) Append(field string, raw []byte) error {
	arr, err := a.array(field)
	if err != nil {
		return err
	}
	return arr.appendJSON(raw)
}

func (a *Arrays) Remove(field string, index int) error {
	arr, err := a.array(field)
	if err != nil {
		return err
	}
	return arr.Remove(index)
}

func (a *Arrays) Move(field string, from, to int) error {
	arr, err := a.array(field)
	if err != nil {
		return err
	}
	return arr.Move(from, to)
}

func (a *Arrays) AppendNested(field string, outer int, nested string, raw []byte) error {
	arr, err := a.nested(field, nested)
	if err != nil {
		return err
	}
	return arr.appendJSON(outer, raw)
}

func (a *Arrays) RemoveNested(field string, outer int, nested string, index int) error {
	arr, err := a.nested(field, nested)
	if err != nil {
		return err
	}
	return arr.Remove(outer, index)
}

func (a *Arrays) MoveNested(field string, outer int, nested string, from, to int) error {
	arr, err := a.nested(field, nested)
	if err != nil {
		return err
	}
	return arr.Move(outer, from, to)
}
