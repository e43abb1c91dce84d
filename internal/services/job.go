package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillsmatch/apiserver/types"
)

// JobRepository defines persistence operations for job postings.
type JobRepository interface {
	Get(ctx context.Context, id int) (types.Job, error)
	ListActive(ctx context.Context, filter types.JobFilter, offset, limit int) ([]types.Job, int, error)
	ListByRecruiter(ctx context.Context, recruiterID int) ([]types.Job, error)
	Create(ctx context.Context, job types.Job) (types.Job, error)
	Update(ctx context.Context, job types.Job) (types.Job, error)
	IncrementViews(ctx context.Context, id int) error
	IncrementApplications(ctx context.Context, id int) error
}

// JobService encapsulates job-posting use-cases.
type JobService struct {
	repo JobRepository
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo}
}

// Create publishes a new posting owned by the calling recruiter.
// Counters start at zero and the posting is active immediately.
func (s *JobService) Create(ctx context.Context, actor types.User, job types.Job) (types.Job, error) {
	if actor.RoleName != types.RoleRecruiter && actor.RoleName != types.RoleAdmin {
		return types.Job{}, fmt.Errorf("posting jobs requires recruiter: %w", ErrForbidden)
	}
	job.Title = strings.TrimSpace(job.Title)
	job.Description = strings.TrimSpace(job.Description)
	if job.Title == "" || job.Description == "" {
		return types.Job{}, fmt.Errorf("title and description are required: %w", ErrValidation)
	}
	if job.SalaryRangeStart < 0 || job.SalaryRangeEnd < 0 || (job.SalaryRangeEnd > 0 && job.SalaryRangeEnd < job.SalaryRangeStart) {
		return types.Job{}, fmt.Errorf("invalid salary range: %w", ErrValidation)
	}

	job.RecruiterID = actor.ID
	job.IsActive = true
	job.ViewsCount = 0
	job.ApplicationsCount = 0
	return s.repo.Create(ctx, job)
}

// JobUpdate carries the editable posting fields. Nil pointers leave the
// current value unchanged.
type JobUpdate struct {
	Title                *string
	Company              *string
	Location             *string
	Description          *string
	Requirements         *string
	Industry             *string
	EmploymentType       *string
	SalaryRangeStart     *int64
	SalaryRangeEnd       *int64
	Benefits             *string
	RequiredSkills       *[]string
	PreferredSkills      *[]string
	ExperienceLevel      *string
	EducationRequirement *string
	RemoteAllowed        *bool
	IsActive             *bool
}

// Update applies a partial edit to a posting owned by the caller.
func (s *JobService) Update(ctx context.Context, actor types.User, id int, in JobUpdate) (types.Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Job{}, err
	}
	if job.RecruiterID != actor.ID && actor.RoleName != types.RoleAdmin {
		return types.Job{}, fmt.Errorf("job %d belongs to another recruiter: %w", id, ErrForbidden)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return types.Job{}, fmt.Errorf("title cannot be empty: %w", ErrValidation)
		}
		job.Title = title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return types.Job{}, fmt.Errorf("description cannot be empty: %w", ErrValidation)
		}
		job.Description = desc
	}
	if in.Company != nil {
		job.Company = strings.TrimSpace(*in.Company)
	}
	if in.Location != nil {
		job.Location = strings.TrimSpace(*in.Location)
	}
	if in.Requirements != nil {
		job.Requirements = *in.Requirements
	}
	if in.Industry != nil {
		job.Industry = *in.Industry
	}
	if in.EmploymentType != nil {
		job.EmploymentType = *in.EmploymentType
	}
	if in.SalaryRangeStart != nil {
		job.SalaryRangeStart = *in.SalaryRangeStart
	}
	if in.SalaryRangeEnd != nil {
		job.SalaryRangeEnd = *in.SalaryRangeEnd
	}
	if job.SalaryRangeStart < 0 || job.SalaryRangeEnd < 0 || (job.SalaryRangeEnd > 0 && job.SalaryRangeEnd < job.SalaryRangeStart) {
		return types.Job{}, fmt.Errorf("invalid salary range: %w", ErrValidation)
	}
	if in.Benefits != nil {
		job.Benefits = *in.Benefits
	}
	if in.RequiredSkills != nil {
		job.RequiredSkills = *in.RequiredSkills
	}
	if in.PreferredSkills != nil {
		job.PreferredSkills = *in.PreferredSkills
	}
	if in.ExperienceLevel != nil {
		job.ExperienceLevel = *in.ExperienceLevel
	}
	if in.EducationRequirement != nil {
		job.EducationRequirement = *in.EducationRequirement
	}
	if in.RemoteAllowed != nil {
		job.RemoteAllowed = *in.RemoteAllowed
	}
	if in.IsActive != nil {
		job.IsActive = *in.IsActive
	}

	return s.repo.Update(ctx, job)
}

// Retire deactivates a posting. The record and its applications remain.
func (s *JobService) Retire(ctx context.Context, actor types.User, id int) error {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.RecruiterID != actor.ID && actor.RoleName != types.RoleAdmin {
		return fmt.Errorf("job %d belongs to another recruiter: %w", id, ErrForbidden)
	}
	job.IsActive = false
	_, err = s.repo.Update(ctx, job)
	return err
}

// Get returns a posting and counts the view. The increment is a single
// atomic UPDATE; a failed increment does not fail the read.
func (s *JobService) Get(ctx context.Context, id int) (types.Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Job{}, err
	}
	if err := s.repo.IncrementViews(ctx, id); err == nil {
		job.ViewsCount++
	}
	return job, nil
}

// ListActive returns a page of active postings matching the filter.
func (s *JobService) ListActive(ctx context.Context, filter types.JobFilter, offset, limit int) ([]types.Job, int, error) {
	return s.repo.ListActive(ctx, filter, offset, limit)
}

// ListMine returns the caller's own postings, active or not.
func (s *JobService) ListMine(ctx context.Context, actor types.User) ([]types.Job, error) {
	if actor.RoleName != types.RoleRecruiter && actor.RoleName != types.RoleAdmin {
		return nil, fmt.Errorf("listing own jobs requires recruiter: %w", ErrForbidden)
	}
	return s.repo.ListByRecruiter(ctx, actor.ID)
}
