package domain

import (
	"context"
	"time"
)

// Portfolio status constants
const (
	PortfolioStatusDraft     = "draft"
	PortfolioStatusPublished = "published"
)

// ============================================================================
// Entries shared by the draft and the stored portfolio
// ============================================================================

type LanguageProficiency struct {
	Language string `json:"language" validate:"required,max=50"`
	Level    string `json:"level" validate:"required,oneof=Basic Conversational Professional Native"`
}

type Reference struct {
	Name         string `json:"name" validate:"required,max=100,valid_name"`
	Position     string `json:"position" validate:"max=100"`
	Company      string `json:"company" validate:"max=100"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"valid_phone"`
	Relationship string `json:"relationship" validate:"max=100"`
}

type Education struct {
	Institution  string `json:"institution" validate:"required,max=150"`
	Degree       string `json:"degree" validate:"required,max=100"`
	FieldOfStudy string `json:"fieldOfStudy" validate:"max=100"`
	StartYear    int    `json:"startYear" validate:"required,min=1950,max_current_year"`
	EndYear      int    `json:"endYear" validate:"omitempty,min=1950,max=2100,gtefield=StartYear"`
	Grade        string `json:"grade" validate:"max=20"`
	Description  string `json:"description" validate:"max=1000"`
}

type Certification struct {
	Name         string `json:"name" validate:"required,max=150"`
	Issuer       string `json:"issuer" validate:"required,max=150"`
	IssueDate    string `json:"issueDate" validate:"required,calendar_date"`
	ExpiryDate   string `json:"expiryDate" validate:"calendar_date"`
	CredentialID string `json:"credentialId" validate:"max=100"`
	URL          string `json:"url" validate:"omitempty,url"`
}

type Course struct {
	Name           string `json:"name" validate:"required,max=150"`
	Provider       string `json:"provider" validate:"required,max=150"`
	CompletionDate string `json:"completionDate" validate:"calendar_date"`
	Description    string `json:"description" validate:"max=1000"`
}

type TechnicalSkill struct {
	Category    string   `json:"category" validate:"required,not_blank,max=80"`
	Skills      []string `json:"skills" validate:"min=1,dive,max=50"`
	Proficiency string   `json:"proficiency" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
}

type WorkExperience struct {
	Company          string   `json:"company" validate:"required,max=150"`
	Position         string   `json:"position" validate:"required,max=150"`
	StartDate        string   `json:"startDate" validate:"required,calendar_date"`
	EndDate          string   `json:"endDate,omitempty" validate:"required_if=IsCurrentRole false,calendar_date"`
	IsCurrentRole    bool     `json:"isCurrentRole"`
	Responsibilities []string `json:"responsibilities" validate:"min=1,dive,max=500"`
	Technologies     []string `json:"technologies" validate:"dive,max=50"`
}

type Project struct {
	Name          string   `json:"name" validate:"required,max=150"`
	Description   string   `json:"description" validate:"required,max=2000"`
	Technologies  []string `json:"technologies" validate:"dive,max=50"`
	URL           string   `json:"url" validate:"omitempty,url"`
	RepositoryURL string   `json:"repositoryUrl" validate:"omitempty,url"`
	StartDate     string   `json:"startDate" validate:"calendar_date"`
	EndDate       string   `json:"endDate" validate:"calendar_date"`
	Highlights    []string `json:"highlights" validate:"dive,max=500"`
}

// ============================================================================
// Draft (flat personal fields, one editing session per user)
// ============================================================================

type PortfolioFormData struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website"`

	LanguageProficiency []LanguageProficiency `json:"languageProficiency"`
	References          []Reference           `json:"references"`
	Education           []Education           `json:"education"`
	Certifications      []Certification       `json:"certifications"`
	Courses             []Course              `json:"courses"`
	TechnicalSkills     []TechnicalSkill      `json:"technicalSkills"`
	WorkExperience      []WorkExperience      `json:"workExperience"`
	Projects            []Project             `json:"projects"`
}

// ============================================================================
// Stored portfolio
// ============================================================================

type PersonalInfo struct {
	FullName            string                `json:"fullName"`
	Email               string                `json:"email"`
	Phone               string                `json:"phone"`
	Location            string                `json:"location"`
	Title               string                `json:"title"`
	Summary             string                `json:"summary"`
	LinkedIn            string                `json:"linkedin"`
	GitHub              string                `json:"github"`
	Website             string                `json:"website"`
	LanguageProficiency []LanguageProficiency `json:"languageProficiency"`
}

// PortfolioContent is the user-authored part of a portfolio.
type PortfolioContent struct {
	PersonalInfo    PersonalInfo     `json:"personalInfo"`
	References      []Reference      `json:"references"`
	Education       []Education      `json:"education"`
	Certifications  []Certification  `json:"certifications"`
	Courses         []Course         `json:"courses"`
	TechnicalSkills []TechnicalSkill `json:"technicalSkills"`
	WorkExperience  []WorkExperience `json:"workExperience"`
	Projects        []Project        `json:"projects"`
}

type Portfolio struct {
	UserID string `json:"userId"`
	PortfolioContent
	Status     string    `json:"status"`
	IsPublic   bool      `json:"isPublic"`
	VisitCount int64     `json:"visitCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PortfolioSummary is the listing shape for public browsing
type PortfolioSummary struct {
	UserID     string    `json:"userId"`
	FullName   string    `json:"fullName"`
	Title      string    `json:"title"`
	Location   string    `json:"location"`
	VisitCount int64     `json:"visitCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ============================================================================
// Repository Interface
// ============================================================================

type PortfolioRepository interface {
	// GetByUserID returns nil, nil when the user has no portfolio.
	GetByUserID(ctx context.Context, userID string) (*Portfolio, error)
	ListPublic(ctx context.Context) ([]Portfolio, error)
	Create(ctx context.Context, portfolio *Portfolio) error
	// UpdateContent overwrites content, status and visibility; visitCount and
	// createdAt are left alone.
	UpdateContent(ctx context.Context, userID string, content PortfolioContent, status string, isPublic bool) error
	IncrementVisitCount(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

// ============================================================================
// Usecase Interface
// ============================================================================

type PortfolioUsecase interface {
	SaveDraft(ctx context.Context, userID string, content PortfolioContent) (*Portfolio, error)
	Publish(ctx context.Context, userID string, content PortfolioContent) (*Portfolio, error)
	GetOwn(ctx context.Context, userID string) (*Portfolio, error)
	// View returns a public portfolio (or the caller's own) and counts the
	// visit when the viewer is not the owner.
	View(ctx context.Context, ownerID string) (*Portfolio, error)
	ListPublished(ctx context.Context) ([]PortfolioSummary, error)
	Delete(ctx context.Context, userID string) error
}
