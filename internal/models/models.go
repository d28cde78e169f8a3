package models

import "time"

type FAQ struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

type Step struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

type County struct {
	Name               string   `json:"name" yaml:"name"`
	Slug               string   `json:"slug" yaml:"slug"`
	Province           string   `json:"province" yaml:"province"`
	EducationProviders []string `json:"education_providers" yaml:"education_providers"`
}

type Grant struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Category       string   `json:"category" yaml:"category"`
	Provider       string   `json:"provider" yaml:"provider"`
	Amount         string   `json:"amount" yaml:"amount"`
	MaxAmount      int      `json:"max_amount,omitempty" yaml:"max_amount"`
	ProcessingTime string   `json:"processing_time" yaml:"processing_time"`
	Summary        string   `json:"summary" yaml:"summary"`
	OfficialURL    string   `json:"official_url" yaml:"official_url"`
	Path           string   `json:"path" yaml:"path"`
	Eligibility    []string `json:"eligibility" yaml:"eligibility"`
	Steps          []Step   `json:"steps" yaml:"steps"`
	FAQs           []FAQ    `json:"faqs,omitempty" yaml:"faqs"`

	LinkVerified   bool   `json:"link_verified" yaml:"-"`
	LinkCheckedAt  string `json:"link_checked_at,omitempty" yaml:"-"`
	ArchivedURL    string `json:"archived_url,omitempty" yaml:"-"`
	SourceVerified bool   `json:"source_verified" yaml:"-"`
	SourceNote     string `json:"source_note,omitempty" yaml:"-"`
}

const (
	StatusOpen     = "Open"
	StatusClosed   = "Closed"
	StatusUpcoming = "Upcoming"
)

// Ongoing marks a deadline with no closing date.
const Ongoing = "Ongoing"

type Deadline struct {
	Grant               string `json:"grant" yaml:"grant"`
	GrantID             string `json:"grant_id" yaml:"grant_id"`
	ApplicationDeadline string `json:"application_deadline" yaml:"application_deadline"`
	NextIntake          string `json:"next_intake" yaml:"next_intake"`
	Status              string `json:"status" yaml:"status"`
	LastUpdated         string `json:"last_updated" yaml:"last_updated"`

	ClosingSoon bool      `json:"closing_soon" yaml:"-"`
	DaysLeft    int       `json:"days_left,omitempty" yaml:"-"`
	Reason      string    `json:"reason,omitempty" yaml:"-"`
	CheckedAt   time.Time `json:"checked_at,omitempty" yaml:"-"`
}

type EVExample struct {
	Make        string `json:"make" yaml:"make"`
	Model       string `json:"model" yaml:"model"`
	Price       int    `json:"price" yaml:"price"`
	LastUpdated string `json:"last_updated" yaml:"last_updated"`
}

type Course struct {
	Name                string   `json:"name" yaml:"name"`
	Institution         string   `json:"institution" yaml:"institution"`
	Duration            string   `json:"duration" yaml:"duration"`
	Level               string   `json:"level" yaml:"level"`
	SalaryRange         string   `json:"salary_range" yaml:"salary_range"`
	EmploymentProspects []string `json:"employment_prospects" yaml:"employment_prospects"`
	LastUpdated         string   `json:"last_updated" yaml:"last_updated"`
}

type ContentMetadata struct {
	LastFullUpdate      string   `json:"last_full_update" yaml:"last_full_update"`
	NextScheduledUpdate string   `json:"next_scheduled_update" yaml:"next_scheduled_update"`
	VerifiedBy          string   `json:"verified_by" yaml:"verified_by"`
	Sources             []string `json:"sources" yaml:"sources"`
	CalculatorFAQs      []FAQ    `json:"calculator_faqs,omitempty" yaml:"calculator_faqs"`
}
