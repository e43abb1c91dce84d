package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skillsmatch/apiserver/internal/store"
	"github.com/skillsmatch/apiserver/types"
)

// transitions is the application lifecycle graph. Absent keys are
// terminal states.
var transitions = map[types.ApplicationStatus][]types.ApplicationStatus{
	types.ApplicationPending:     {types.ApplicationShortlisted, types.ApplicationRejected, types.ApplicationInterviewed, types.ApplicationHired, types.ApplicationWithdrawn},
	types.ApplicationShortlisted: {types.ApplicationInterviewed, types.ApplicationRejected, types.ApplicationWithdrawn},
	types.ApplicationInterviewed: {types.ApplicationHired, types.ApplicationRejected, types.ApplicationWithdrawn},
}

func allowedTransition(from, to types.ApplicationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	Get(ctx context.Context, id int) (types.Application, error)
	GetAuthorization(ctx context.Context, id int) (applicantID, recruiterID, jobID int, err error)
	FindLive(ctx context.Context, jobID, applicantID int) (types.Application, error)
	ListByApplicant(ctx context.Context, applicantID int) ([]types.Application, error)
	ListByJob(ctx context.Context, jobID int, status types.ApplicationStatus) ([]types.Application, error)
	Create(ctx context.Context, app types.Application) (types.Application, error)
	UpdateStatus(ctx context.Context, id int, status types.ApplicationStatus, feedback string, actorID int) (types.Application, error)
}

// ApplicationService encapsulates the application lifecycle.
type ApplicationService struct {
	repo     ApplicationRepository
	jobs     JobRepository
	notifier Notifier
	log      *zap.Logger
}

func NewApplicationService(repo ApplicationRepository, jobs JobRepository, notifier Notifier, log *zap.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, notifier: notifier, log: log}
}

// Apply submits an application to an active job. One live application
// per (job, applicant) pair; a withdrawn application does not block
// re-applying. The partial unique index backs the read check under
// concurrency.
func (s *ApplicationService) Apply(ctx context.Context, actor types.User, jobID int, coverLetter, documentKey string) (types.Application, error) {
	if actor.RoleName != types.RoleJobseeker {
		return types.Application{}, fmt.Errorf("applying requires jobseeker: %w", ErrForbidden)
	}

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return types.Application{}, err
	}
	// Inactive postings are invisible to applicants.
	if !job.IsActive {
		return types.Application{}, store.ErrNotFound
	}

	if _, err := s.repo.FindLive(ctx, jobID, actor.ID); err == nil {
		return types.Application{}, fmt.Errorf("already applied to job %d: %w", jobID, ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Application{}, err
	}

	app, err := s.repo.Create(ctx, types.Application{
		JobID:       jobID,
		ApplicantID: actor.ID,
		CoverLetter: coverLetter,
		DocumentKey: documentKey,
		Status:      types.ApplicationPending,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.Application{}, fmt.Errorf("already applied to job %d: %w", jobID, ErrConflict)
		}
		return types.Application{}, err
	}

	if err := s.jobs.IncrementApplications(ctx, jobID); err != nil {
		s.log.Warn("application counter increment failed", zap.Int("job_id", jobID), zap.Error(err))
	}

	s.notifier.Send(ctx, types.Notification{
		RecipientID:          job.RecruiterID,
		Type:                 types.NotifyApplicationReceived,
		Message:              fmt.Sprintf("%s applied to %q.", actor.FullName, job.Title),
		RelatedJobID:         jobID,
		RelatedApplicationID: app.ID,
	})

	return app, nil
}

// Withdraw moves the caller's own application to withdrawn. Withdrawal
// is refused once the job is retired or the application reached a
// terminal state.
func (s *ApplicationService) Withdraw(ctx context.Context, actor types.User, id int) (types.Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Application{}, err
	}
	if app.ApplicantID != actor.ID {
		return types.Application{}, fmt.Errorf("application %d belongs to another user: %w", id, ErrForbidden)
	}

	job, err := s.jobs.Get(ctx, app.JobID)
	if err != nil {
		return types.Application{}, err
	}
	if !job.IsActive {
		return types.Application{}, fmt.Errorf("job is no longer active: %w", ErrInvalidTransition)
	}
	if !allowedTransition(app.Status, types.ApplicationWithdrawn) {
		return types.Application{}, fmt.Errorf("cannot withdraw from %s: %w", app.Status, ErrInvalidTransition)
	}

	return s.repo.UpdateStatus(ctx, id, types.ApplicationWithdrawn, "", actor.ID)
}

// UpdateStatus moves an application along the lifecycle graph. Only the
// recruiter owning the job may change status, and never to withdrawn;
// that path belongs to the applicant.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor types.User, id int, to types.ApplicationStatus, feedback string) (types.Application, error) {
	if !to.Valid() {
		return types.Application{}, fmt.Errorf("unknown status %q: %w", to, ErrValidation)
	}
	if to == types.ApplicationWithdrawn {
		return types.Application{}, fmt.Errorf("withdrawal is applicant-initiated: %w", ErrValidation)
	}

	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Application{}, err
	}
	_, recruiterID, jobID, err := s.repo.GetAuthorization(ctx, id)
	if err != nil {
		return types.Application{}, err
	}
	if recruiterID != actor.ID && actor.RoleName != types.RoleAdmin {
		return types.Application{}, fmt.Errorf("application %d belongs to another recruiter's job: %w", id, ErrForbidden)
	}
	if !allowedTransition(app.Status, to) {
		return types.Application{}, fmt.Errorf("%s -> %s not allowed: %w", app.Status, to, ErrInvalidTransition)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, to, feedback, actor.ID)
	if err != nil {
		return types.Application{}, err
	}

	s.notifier.Send(ctx, types.Notification{
		RecipientID:          app.ApplicantID,
		Type:                 types.NotifyStatusChanged,
		Message:              fmt.Sprintf("Your application status changed to %s.", to),
		RelatedJobID:         jobID,
		RelatedApplicationID: id,
	})

	return updated, nil
}

// Get returns an application to its applicant, the owning recruiter, or
// an admin.
func (s *ApplicationService) Get(ctx context.Context, actor types.User, id int) (types.Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Application{}, err
	}
	applicantID, recruiterID, _, err := s.repo.GetAuthorization(ctx, id)
	if err != nil {
		return types.Application{}, err
	}
	if actor.ID != applicantID && actor.ID != recruiterID && actor.RoleName != types.RoleAdmin {
		return types.Application{}, fmt.Errorf("application %d is not visible to user %d: %w", id, actor.ID, ErrForbidden)
	}
	return app, nil
}

// ListMine returns the caller's applications, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, actor types.User) ([]types.Application, error) {
	return s.repo.ListByApplicant(ctx, actor.ID)
}

// ListForJob returns a job's applications to its owning recruiter,
// optionally filtered by status.
func (s *ApplicationService) ListForJob(ctx context.Context, actor types.User, jobID int, status types.ApplicationStatus) ([]types.Application, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != actor.ID && actor.RoleName != types.RoleAdmin {
		return nil, fmt.Errorf("job %d belongs to another recruiter: %w", jobID, ErrForbidden)
	}
	return s.repo.ListByJob(ctx, jobID, status)
}
