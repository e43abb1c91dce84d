package types

import "time"

// InterviewStatus enumerates interview states. Unlike application
// statuses there is no transition graph: the recorded interviewer may
// overwrite the status freely among the known values.
type InterviewStatus string

// Interview states.
const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewRescheduled InterviewStatus = "rescheduled"
	InterviewNoShow      InterviewStatus = "no_show"
)

// Valid reports whether s is a known interview status.
func (s InterviewStatus) Valid() bool {
	switch s {
	case InterviewScheduled, InterviewCompleted, InterviewCancelled,
		InterviewRescheduled, InterviewNoShow:
		return true
	default:
		return false
	}
}

// Interview modes.
const (
	InterviewModeOnline   = "online"
	InterviewModeInPerson = "in_person"
	InterviewModePhone    = "phone"
)

// InterviewFeedback is the structured feedback payload an interviewer
// may attach after the interview. Stored as a JSON column.
type InterviewFeedback struct {
	TechnicalSkills int      `json:"technical_skills"`
	Communication   int      `json:"communication"`
	OverallRating   int      `json:"overall_rating"`
	Strengths       []string `json:"strengths,omitempty"`
	Improvements    []string `json:"areas_for_improvement,omitempty"`
	Recommendation  string   `json:"recommendation,omitempty"`
	Comments        string   `json:"comments,omitempty"`
}

// Interview is scheduled against exactly one application; an
// application may accumulate several interviews (rounds).
type Interview struct {
	// ID is the unique identifier of the interview.
	ID int `json:"interview_id" db:"id"`

	// ApplicationID identifies the application being interviewed.
	ApplicationID int `json:"application_id" db:"application_id"`

	// InterviewerID identifies the user authorized to record the
	// outcome. Defaults to the recruiter who scheduled the interview.
	InterviewerID int `json:"interviewer_id" db:"interviewer_id"`

	// ScheduledAt is the interview start time.
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`

	// DurationMinutes is the planned duration.
	DurationMinutes int `json:"duration_minutes" db:"duration_minutes"`

	// Mode is "online", "in_person", or "phone".
	Mode string `json:"mode" db:"mode"`

	// Location is the physical location for in-person interviews.
	Location string `json:"location,omitempty" db:"location"`

	// MeetingLink is the call link for online interviews.
	MeetingLink string `json:"meeting_link,omitempty" db:"meeting_link"`

	// Notes are instructions or follow-up notes.
	Notes string `json:"notes,omitempty" db:"notes"`

	// Status is the current interview state.
	Status InterviewStatus `json:"status" db:"status"`

	// Feedback is the structured outcome, when recorded.
	Feedback *InterviewFeedback `json:"feedback,omitempty" db:"feedback"`

	// CreatedAt is the timestamp when the interview was scheduled.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Application is populated by relation-loading queries.
	Application *Application `json:"application,omitempty" db:"-"`
}
