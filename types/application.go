package types

import "time"

// ApplicationStatus enumerates the application lifecycle states.
// Transitions between states are validated by the application service;
// the store persists the string form.
type ApplicationStatus string

// Application lifecycle states.
const (
	// ApplicationPending is the initial state after apply.
	ApplicationPending ApplicationStatus = "pending"

	// ApplicationShortlisted marks a candidate selected for further review.
	ApplicationShortlisted ApplicationStatus = "shortlisted"

	// ApplicationInterviewed marks a candidate who completed interviews.
	ApplicationInterviewed ApplicationStatus = "interviewed"

	// ApplicationHired is terminal: the candidate was hired.
	ApplicationHired ApplicationStatus = "hired"

	// ApplicationRejected is terminal: the candidate was rejected.
	ApplicationRejected ApplicationStatus = "rejected"

	// ApplicationWithdrawn is terminal: the applicant withdrew. A
	// withdrawn application no longer blocks re-applying to the job.
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationShortlisted, ApplicationInterviewed,
		ApplicationHired, ApplicationRejected, ApplicationWithdrawn:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is permitted from s.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationHired, ApplicationRejected, ApplicationWithdrawn:
		return true
	default:
		return false
	}
}

// Application records one applicant's submission to one job.
// It is jointly referenced by Job and applicant but owned by neither;
// authorized mutators are derived through job.recruiter and applicant.
type Application struct {
	// ID is the unique identifier of the application.
	ID int `json:"application_id" db:"id"`

	// JobID identifies the job applied to.
	JobID int `json:"job_id" db:"job_id"`

	// ApplicantID identifies the jobseeker who applied.
	ApplicantID int `json:"applicant_id" db:"applicant_id"`

	// CoverLetter is optional free-form text supplied at apply time.
	CoverLetter string `json:"cover_letter,omitempty" db:"cover_letter"`

	// DocumentKey is the object-storage key of an attached document.
	DocumentKey string `json:"document_key,omitempty" db:"document_key"`

	// Status is the current lifecycle state.
	Status ApplicationStatus `json:"status" db:"status"`

	// Feedback is the recruiter feedback recorded with the most recent
	// status change.
	Feedback string `json:"feedback,omitempty" db:"feedback"`

	// StatusChangedAt is when Status last changed; StatusChangedBy is
	// the user who performed the change (zero when unchanged).
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty" db:"status_changed_at"`
	StatusChangedBy int        `json:"status_changed_by,omitempty" db:"status_changed_by"`

	// AppliedAt is the submission timestamp.
	AppliedAt time.Time `json:"applied_at" db:"applied_at"`

	// Job and Applicant are populated by relation-loading queries;
	// nil when the row was loaded without joins.
	Job       *Job  `json:"job,omitempty" db:"-"`
	Applicant *User `json:"applicant,omitempty" db:"-"`
}
