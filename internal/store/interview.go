package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/skillsmatch/apiserver/types"
)

// InterviewRepository handles persistence for interviews.
type InterviewRepository struct {
	db *sql.DB
}

func NewInterviewRepository(db *sql.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

const interviewColumns = `
	id, application_id, interviewer_id, scheduled_at, duration_minutes,
	mode, location, meeting_link, notes, status, feedback, created_at,
	updated_at`

func scanInterview(row interface{ Scan(...any) error }) (types.Interview, error) {
	var iv types.Interview
	var feedbackJSON []byte
	err := row.Scan(
		&iv.ID,
		&iv.ApplicationID,
		&iv.InterviewerID,
		&iv.ScheduledAt,
		&iv.DurationMinutes,
		&iv.Mode,
		&iv.Location,
		&iv.MeetingLink,
		&iv.Notes,
		&iv.Status,
		&feedbackJSON,
		&iv.CreatedAt,
		&iv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Interview{}, ErrNotFound
		}
		return types.Interview{}, err
	}
	if len(feedbackJSON) > 0 {
		var feedback types.InterviewFeedback
		if json.Unmarshal(feedbackJSON, &feedback) == nil {
			iv.Feedback = &feedback
		}
	}
	return iv, nil
}

func (r *InterviewRepository) Get(ctx context.Context, id int) (types.Interview, error) {
	const query = `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`
	return scanInterview(r.db.QueryRowContext(ctx, query, id))
}

// ListByRecruiter returns interviews for applications on the
// recruiter's jobs, soonest first.
func (r *InterviewRepository) ListByRecruiter(ctx context.Context, recruiterID int) ([]types.Interview, error) {
	const query = `
		SELECT i.id, i.application_id, i.interviewer_id, i.scheduled_at,
		       i.duration_minutes, i.mode, i.location, i.meeting_link,
		       i.notes, i.status, i.feedback, i.created_at, i.updated_at
		FROM interviews i
		JOIN applications a ON a.id = i.application_id
		JOIN jobs j ON j.id = a.job_id
		WHERE j.recruiter_id = $1
		ORDER BY i.scheduled_at`
	return r.queryList(ctx, query, recruiterID)
}

// ListByApplicant returns the jobseeker's interviews, soonest first.
func (r *InterviewRepository) ListByApplicant(ctx context.Context, applicantID int) ([]types.Interview, error) {
	const query = `
		SELECT i.id, i.application_id, i.interviewer_id, i.scheduled_at,
		       i.duration_minutes, i.mode, i.location, i.meeting_link,
		       i.notes, i.status, i.feedback, i.created_at, i.updated_at
		FROM interviews i
		JOIN applications a ON a.id = i.application_id
		WHERE a.applicant_id = $1
		ORDER BY i.scheduled_at`
	return r.queryList(ctx, query, applicantID)
}

func (r *InterviewRepository) queryList(ctx context.Context, query string, args ...any) ([]types.Interview, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interviews []types.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, iv)
	}
	return interviews, rows.Err()
}

func (r *InterviewRepository) Create(ctx context.Context, iv types.Interview) (types.Interview, error) {
	now := time.Now()
	iv.CreatedAt = now
	iv.UpdatedAt = now

	feedbackJSON, err := marshalFeedback(iv.Feedback)
	if err != nil {
		return types.Interview{}, err
	}

	const query = `
		INSERT INTO interviews (
			application_id, interviewer_id, scheduled_at, duration_minutes,
			mode, location, meeting_link, notes, status, feedback,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		iv.ApplicationID,
		iv.InterviewerID,
		iv.ScheduledAt,
		iv.DurationMinutes,
		iv.Mode,
		iv.Location,
		iv.MeetingLink,
		iv.Notes,
		iv.Status,
		feedbackJSON,
		iv.CreatedAt,
		iv.UpdatedAt,
	).Scan(&iv.ID); err != nil {
		return types.Interview{}, err
	}
	return iv, nil
}

func (r *InterviewRepository) Update(ctx context.Context, iv types.Interview) (types.Interview, error) {
	iv.UpdatedAt = time.Now()

	feedbackJSON, err := marshalFeedback(iv.Feedback)
	if err != nil {
		return types.Interview{}, err
	}

	const query = `
		UPDATE interviews
		SET scheduled_at = $1,
			duration_minutes = $2,
			mode = $3,
			location = $4,
			meeting_link = $5,
			notes = $6,
			status = $7,
			feedback = $8,
			updated_at = $9
		WHERE id = $10`
	result, err := r.db.ExecContext(
		ctx,
		query,
		iv.ScheduledAt,
		iv.DurationMinutes,
		iv.Mode,
		iv.Location,
		iv.MeetingLink,
		iv.Notes,
		iv.Status,
		feedbackJSON,
		iv.UpdatedAt,
		iv.ID,
	)
	if err != nil {
		return types.Interview{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Interview{}, err
	}
	if affected == 0 {
		return types.Interview{}, ErrNotFound
	}
	return iv, nil
}

// DeleteScheduledBefore removes interviews scheduled before the cutoff
// and reports the affected count. Irreversible.
func (r *InterviewRepository) DeleteScheduledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM interviews WHERE scheduled_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func marshalFeedback(feedback *types.InterviewFeedback) ([]byte, error) {
	if feedback == nil {
		return nil, nil
	}
	return json.Marshal(feedback)
}
