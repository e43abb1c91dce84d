package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillsmatch/apiserver/types"
)

// ApplicationRepository handles persistence for job applications.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `
	id, job_id, applicant_id, cover_letter, document_key, status,
	feedback, status_changed_at, status_changed_by, applied_at`

func scanApplication(row interface{ Scan(...any) error }) (types.Application, error) {
	var app types.Application
	err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.ApplicantID,
		&app.CoverLetter,
		&app.DocumentKey,
		&app.Status,
		&app.Feedback,
		&app.StatusChangedAt,
		&app.StatusChangedBy,
		&app.AppliedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id int) (types.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, query, id))
}

// GetAuthorization loads the minimal ownership projection for an
// application: the applicant and the recruiter owning the job. Used by
// authorization checks so they never fetch full nested records.
func (r *ApplicationRepository) GetAuthorization(ctx context.Context, id int) (applicantID, recruiterID, jobID int, err error) {
	const query = `
		SELECT a.applicant_id, j.recruiter_id, a.job_id
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.id = $1`
	err = r.db.QueryRowContext(ctx, query, id).Scan(&applicantID, &recruiterID, &jobID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return applicantID, recruiterID, jobID, err
}

// FindLive returns the non-withdrawn application for a (job, applicant)
// pair, if one exists.
func (r *ApplicationRepository) FindLive(ctx context.Context, jobID, applicantID int) (types.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE job_id = $1 AND applicant_id = $2 AND status <> 'withdrawn'`
	return scanApplication(r.db.QueryRowContext(ctx, query, jobID, applicantID))
}

// ListByApplicant returns the applicant's applications, newest first,
// with the job relation loaded.
func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID int) ([]types.Application, error) {
	const query = `
		SELECT a.id, a.job_id, a.applicant_id, a.cover_letter, a.document_key,
		       a.status, a.feedback, a.status_changed_at, a.status_changed_by,
		       a.applied_at,
		       j.title, j.company, j.recruiter_id, j.is_active
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.applicant_id = $1
		ORDER BY a.applied_at DESC`
	rows, err := r.db.QueryContext(ctx, query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []types.Application
	for rows.Next() {
		var app types.Application
		var job types.Job
		if err := rows.Scan(
			&app.ID,
			&app.JobID,
			&app.ApplicantID,
			&app.CoverLetter,
			&app.DocumentKey,
			&app.Status,
			&app.Feedback,
			&app.StatusChangedAt,
			&app.StatusChangedBy,
			&app.AppliedAt,
			&job.Title,
			&job.Company,
			&job.RecruiterID,
			&job.IsActive,
		); err != nil {
			return nil, err
		}
		job.ID = app.JobID
		app.Job = &job
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// ListByJob returns a job's applications with the applicant relation
// loaded, optionally narrowed to one status.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID int, status types.ApplicationStatus) ([]types.Application, error) {
	where := []string{"a.job_id = $1"}
	args := []any{jobID}
	if status != "" {
		args = append(args, status)
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)))
	}

	query := `
		SELECT a.id, a.job_id, a.applicant_id, a.cover_letter, a.document_key,
		       a.status, a.feedback, a.status_changed_at, a.status_changed_by,
		       a.applied_at,
		       u.full_name, u.email, u.mobile_number, u.resume_key
		FROM applications a
		JOIN users u ON u.id = a.applicant_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY a.applied_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []types.Application
	for rows.Next() {
		var app types.Application
		var applicant types.User
		if err := rows.Scan(
			&app.ID,
			&app.JobID,
			&app.ApplicantID,
			&app.CoverLetter,
			&app.DocumentKey,
			&app.Status,
			&app.Feedback,
			&app.StatusChangedAt,
			&app.StatusChangedBy,
			&app.AppliedAt,
			&applicant.FullName,
			&applicant.Email,
			&applicant.MobileNumber,
			&applicant.ResumeKey,
		); err != nil {
			return nil, err
		}
		applicant.ID = app.ApplicantID
		app.Applicant = &applicant
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	app.AppliedAt = time.Now()

	const query = `
		INSERT INTO applications (
			job_id, applicant_id, cover_letter, document_key, status, applied_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		app.JobID,
		app.ApplicantID,
		app.CoverLetter,
		app.DocumentKey,
		app.Status,
		app.AppliedAt,
	).Scan(&app.ID); err != nil {
		return types.Application{}, translate(err)
	}
	return app, nil
}

// UpdateStatus records a status change with its actor and feedback.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int, status types.ApplicationStatus, feedback string, actorID int) (types.Application, error) {
	now := time.Now()

	const query = `
		UPDATE applications
		SET status = $1,
			feedback = $2,
			status_changed_at = $3,
			status_changed_by = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, status, feedback, now, actorID, id)
	if err != nil {
		return types.Application{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Application{}, err
	}
	if affected == 0 {
		return types.Application{}, ErrNotFound
	}
	return r.Get(ctx, id)
}
