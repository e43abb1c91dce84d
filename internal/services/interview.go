package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skillsmatch/apiserver/types"
)

const defaultInterviewMinutes = 60

// InterviewRepository defines persistence operations for interviews.
type InterviewRepository interface {
	Get(ctx context.Context, id int) (types.Interview, error)
	ListByRecruiter(ctx context.Context, recruiterID int) ([]types.Interview, error)
	ListByApplicant(ctx context.Context, applicantID int) ([]types.Interview, error)
	Create(ctx context.Context, iv types.Interview) (types.Interview, error)
	Update(ctx context.Context, iv types.Interview) (types.Interview, error)
	DeleteScheduledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InterviewService encapsulates interview scheduling use-cases.
type InterviewService struct {
	repo     InterviewRepository
	apps     ApplicationRepository
	notifier Notifier
}

func NewInterviewService(repo InterviewRepository, apps ApplicationRepository, notifier Notifier) *InterviewService {
	return &InterviewService{repo: repo, apps: apps, notifier: notifier}
}

// ScheduleInput carries the fields accepted when scheduling a round.
type ScheduleInput struct {
	ApplicationID   int
	InterviewerID   int
	ScheduledAt     time.Time
	DurationMinutes int
	Mode            string
	Location        string
	MeetingLink     string
	Notes           string
}

// Schedule books an interview round for an application. Only the
// recruiter owning the job may schedule; the interviewer defaults to
// the caller. An application may accumulate several rounds.
func (s *InterviewService) Schedule(ctx context.Context, actor types.User, in ScheduleInput) (types.Interview, error) {
	applicantID, recruiterID, jobID, err := s.apps.GetAuthorization(ctx, in.ApplicationID)
	if err != nil {
		return types.Interview{}, err
	}
	if recruiterID != actor.ID && actor.RoleName != types.RoleAdmin {
		return types.Interview{}, fmt.Errorf("application %d belongs to another recruiter's job: %w", in.ApplicationID, ErrForbidden)
	}

	if in.ScheduledAt.IsZero() {
		return types.Interview{}, fmt.Errorf("scheduled time is required: %w", ErrValidation)
	}
	switch in.Mode {
	case types.InterviewModeOnline, types.InterviewModeInPerson, types.InterviewModePhone:
	default:
		return types.Interview{}, fmt.Errorf("unknown interview mode %q: %w", in.Mode, ErrValidation)
	}
	if in.DurationMinutes <= 0 {
		in.DurationMinutes = defaultInterviewMinutes
	}
	if in.InterviewerID == 0 {
		in.InterviewerID = actor.ID
	}

	iv, err := s.repo.Create(ctx, types.Interview{
		ApplicationID:   in.ApplicationID,
		InterviewerID:   in.InterviewerID,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		Mode:            in.Mode,
		Location:        in.Location,
		MeetingLink:     in.MeetingLink,
		Notes:           in.Notes,
		Status:          types.InterviewScheduled,
	})
	if err != nil {
		return types.Interview{}, err
	}

	s.notifier.Send(ctx, types.Notification{
		RecipientID:          applicantID,
		Type:                 types.NotifyInterviewScheduled,
		Message:              fmt.Sprintf("An interview has been scheduled for %s.", in.ScheduledAt.Format(time.RFC1123)),
		RelatedJobID:         jobID,
		RelatedApplicationID: in.ApplicationID,
		RelatedInterviewID:   iv.ID,
		Priority:             "high",
	})

	return iv, nil
}

// UpdateStatus records the interview outcome. Only the recorded
// interviewer may write it; any known status may overwrite any other,
// there is no transition graph here. New notes are appended, feedback
// overwrites.
func (s *InterviewService) UpdateStatus(ctx context.Context, actor types.User, id int, status types.InterviewStatus, notes string, feedback *types.InterviewFeedback) (types.Interview, error) {
	if !status.Valid() {
		return types.Interview{}, fmt.Errorf("unknown interview status %q: %w", status, ErrValidation)
	}

	iv, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Interview{}, err
	}
	if iv.InterviewerID != actor.ID {
		return types.Interview{}, fmt.Errorf("only the recorded interviewer may update interview %d: %w", id, ErrForbidden)
	}

	iv.Status = status
	if notes = strings.TrimSpace(notes); notes != "" {
		if iv.Notes == "" {
			iv.Notes = notes
		} else {
			iv.Notes += "\n" + notes
		}
	}
	if feedback != nil {
		iv.Feedback = feedback
	}

	updated, err := s.repo.Update(ctx, iv)
	if err != nil {
		return types.Interview{}, err
	}
	s.notifyUpdate(ctx, updated, fmt.Sprintf("Your interview was marked %s.", status))
	return updated, nil
}

// RescheduleInput carries the editable logistics of a booked round.
type RescheduleInput struct {
	ScheduledAt     time.Time
	DurationMinutes int
	Mode            string
	Location        string
	MeetingLink     string
}

// Reschedule updates the logistics of an interview. Only the recruiter
// owning the job may reschedule; moving the start time flips the status
// to rescheduled.
func (s *InterviewService) Reschedule(ctx context.Context, actor types.User, id int, in RescheduleInput) (types.Interview, error) {
	iv, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Interview{}, err
	}
	_, recruiterID, _, err := s.apps.GetAuthorization(ctx, iv.ApplicationID)
	if err != nil {
		return types.Interview{}, err
	}
	if recruiterID != actor.ID && actor.RoleName != types.RoleAdmin {
		return types.Interview{}, fmt.Errorf("interview %d belongs to another recruiter's job: %w", id, ErrForbidden)
	}

	if !in.ScheduledAt.IsZero() && !in.ScheduledAt.Equal(iv.ScheduledAt) {
		iv.ScheduledAt = in.ScheduledAt
		iv.Status = types.InterviewRescheduled
	}
	if in.DurationMinutes > 0 {
		iv.DurationMinutes = in.DurationMinutes
	}
	if in.Mode != "" {
		switch in.Mode {
		case types.InterviewModeOnline, types.InterviewModeInPerson, types.InterviewModePhone:
			iv.Mode = in.Mode
		default:
			return types.Interview{}, fmt.Errorf("unknown interview mode %q: %w", in.Mode, ErrValidation)
		}
	}
	if in.Location != "" {
		iv.Location = in.Location
	}
	if in.MeetingLink != "" {
		iv.MeetingLink = in.MeetingLink
	}

	updated, err := s.repo.Update(ctx, iv)
	if err != nil {
		return types.Interview{}, err
	}
	s.notifyUpdate(ctx, updated, fmt.Sprintf("Your interview was rescheduled to %s.", updated.ScheduledAt.Format(time.RFC1123)))
	return updated, nil
}

// Get returns an interview to its interviewer, the applicant, the
// owning recruiter, or an admin.
func (s *InterviewService) Get(ctx context.Context, actor types.User, id int) (types.Interview, error) {
	iv, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Interview{}, err
	}
	applicantID, recruiterID, _, err := s.apps.GetAuthorization(ctx, iv.ApplicationID)
	if err != nil {
		return types.Interview{}, err
	}
	if actor.ID != iv.InterviewerID && actor.ID != applicantID && actor.ID != recruiterID && actor.RoleName != types.RoleAdmin {
		return types.Interview{}, fmt.Errorf("interview %d is not visible to user %d: %w", id, actor.ID, ErrForbidden)
	}
	return iv, nil
}

// ListForRecruiter returns interviews across the caller's jobs.
func (s *InterviewService) ListForRecruiter(ctx context.Context, actor types.User) ([]types.Interview, error) {
	if actor.RoleName != types.RoleRecruiter && actor.RoleName != types.RoleAdmin {
		return nil, fmt.Errorf("listing interviews requires recruiter: %w", ErrForbidden)
	}
	return s.repo.ListByRecruiter(ctx, actor.ID)
}

// ListForApplicant returns the caller's own interviews.
func (s *InterviewService) ListForApplicant(ctx context.Context, actor types.User) ([]types.Interview, error) {
	return s.repo.ListByApplicant(ctx, actor.ID)
}

// PurgeStale deletes interview records scheduled before the cutoff and
// reports how many were removed. Admin only.
func (s *InterviewService) PurgeStale(ctx context.Context, actor types.User, cutoff time.Time) (int64, error) {
	if actor.RoleName != types.RoleAdmin {
		return 0, fmt.Errorf("purging interviews requires admin: %w", ErrForbidden)
	}
	return s.repo.DeleteScheduledBefore(ctx, cutoff)
}

func (s *InterviewService) notifyUpdate(ctx context.Context, iv types.Interview, message string) {
	applicantID, _, jobID, err := s.apps.GetAuthorization(ctx, iv.ApplicationID)
	if err != nil {
		return
	}
	s.notifier.Send(ctx, types.Notification{
		RecipientID:          applicantID,
		Type:                 types.NotifyInterviewUpdated,
		Message:              message,
		RelatedJobID:         jobID,
		RelatedApplicationID: iv.ApplicationID,
		RelatedInterviewID:   iv.ID,
	})
}
