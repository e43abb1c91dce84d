package types

import "time"

// Notification kinds published on the broker and persisted per recipient.
const (
	NotifyApplicationReceived = "application_received"
	NotifyStatusChanged       = "application_status_changed"
	NotifyInterviewScheduled  = "interview_scheduled"
	NotifyInterviewUpdated    = "interview_updated"
	NotifyAssessmentAssigned  = "assessment_assigned"
	NotifyEmailVerification   = "email_verification"
	NotifyPasswordReset       = "password_reset"
)

// Notification is a per-user message produced as a best-effort side
// effect of domain operations. Dispatch failures never roll back the
// operation that produced them.
type Notification struct {
	// ID is the unique identifier of the notification.
	ID int `json:"notification_id" db:"id"`

	// RecipientID identifies the user the notification is for.
	RecipientID int `json:"recipient_id" db:"recipient_id"`

	// Type is one of the Notify* kinds.
	Type string `json:"type" db:"type"`

	// Message is the human-readable text.
	Message string `json:"message" db:"message"`

	// Related record references, zero when not applicable.
	RelatedJobID         int `json:"related_job_id,omitempty" db:"related_job_id"`
	RelatedApplicationID int `json:"related_application_id,omitempty" db:"related_application_id"`
	RelatedInterviewID   int `json:"related_interview_id,omitempty" db:"related_interview_id"`

	// Priority is "low", "normal", or "high".
	Priority string `json:"priority,omitempty" db:"priority"`

	// ActionURL is an optional deep link for the client.
	ActionURL string `json:"action_url,omitempty" db:"action_url"`

	// IsRead tracks whether the recipient has seen the notification.
	IsRead bool `json:"is_read" db:"is_read"`

	// IsActive is false for soft-deleted notifications.
	IsActive bool `json:"is_active" db:"is_active"`

	// CreatedAt is the timestamp when the notification was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
