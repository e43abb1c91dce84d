package types

import "time"

// Job represents a posting owned by exactly one recruiter.
// Postings are never hard-deleted: retiring a job clears IsActive so
// existing applications and interviews keep their references.
type Job struct {
	// ID is the unique identifier of the job.
	ID int `json:"job_id" db:"id"`

	// RecruiterID identifies the recruiter who owns the posting.
	RecruiterID int `json:"recruiter_id" db:"recruiter_id"`

	// Title is the human-readable name of the position.
	Title string `json:"title" db:"title"`

	// Company is the hiring company name.
	Company string `json:"company" db:"company"`

	Location    string `json:"location" db:"location"`
	Description string `json:"description" db:"description"`

	// Requirements is free-form requirement text.
	Requirements string `json:"requirements,omitempty" db:"requirements"`

	Industry string `json:"industry,omitempty" db:"industry"`

	// EmploymentType is e.g. "full_time", "part_time", "contract".
	EmploymentType string `json:"employment_type,omitempty" db:"employment_type"`

	// SalaryRangeStart and SalaryRangeEnd bound the advertised salary.
	// Zero means unspecified.
	SalaryRangeStart int64 `json:"salary_range_start,omitempty" db:"salary_range_start"`
	SalaryRangeEnd   int64 `json:"salary_range_end,omitempty" db:"salary_range_end"`

	Benefits string `json:"benefits,omitempty" db:"benefits"`

	// RequiredSkills is the ordered skill sequence the posting asks for,
	// stored as a JSON column.
	RequiredSkills []string `json:"required_skills" db:"required_skills"`

	// PreferredSkills are nice-to-have skills.
	PreferredSkills []string `json:"preferred_skills,omitempty" db:"preferred_skills"`

	ExperienceLevel      string `json:"experience_level,omitempty" db:"experience_level"`
	EducationRequirement string `json:"education_requirement,omitempty" db:"education_requirement"`

	// RemoteAllowed indicates whether remote work is permitted.
	RemoteAllowed bool `json:"remote_work_allowed" db:"remote_allowed"`

	// IsActive is the visibility/activity flag. Retired postings keep
	// their rows with IsActive=false.
	IsActive bool `json:"is_active" db:"is_active"`

	// ViewsCount counts detail views. At-least-once increments are
	// acceptable; this is not a correctness-critical metric.
	ViewsCount int `json:"views_count" db:"views_count"`

	// ApplicationsCount counts submitted applications.
	ApplicationsCount int `json:"applications_count" db:"applications_count"`

	// CreatedAt is the timestamp when the posting was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// JobFilter narrows ListActive results. Zero values mean "no constraint".
type JobFilter struct {
	// Keyword matches title, description, or company,
	// case-insensitive substring.
	Keyword string

	// Location matches the job location, case-insensitive substring.
	Location string

	// EmploymentType matches exactly.
	EmploymentType string

	// RemoteOnly restricts to remote-allowed postings when set.
	RemoteOnly bool

	// SalaryMin/SalaryMax bound the advertised range.
	SalaryMin int64
	SalaryMax int64
}
