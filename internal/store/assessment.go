package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/skillsmatch/apiserver/types"
)

// AssessmentRepository handles persistence for skill assessments.
type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `
	id, application_id, created_by, test_type, questions, skills_tested,
	time_limit_minutes, passing_score, instructions, status, answers,
	score, passed, time_taken, completed_at, created_at, updated_at`

func scanAssessment(row interface{ Scan(...any) error }) (types.Assessment, error) {
	var a types.Assessment
	var questionsJSON, skillsJSON, answersJSON []byte
	err := row.Scan(
		&a.ID,
		&a.ApplicationID,
		&a.CreatedBy,
		&a.TestType,
		&questionsJSON,
		&skillsJSON,
		&a.TimeLimitMinutes,
		&a.PassingScore,
		&a.Instructions,
		&a.Status,
		&answersJSON,
		&a.Score,
		&a.Passed,
		&a.TimeTakenMinutes,
		&a.CompletedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Assessment{}, ErrNotFound
		}
		return types.Assessment{}, err
	}
	_ = json.Unmarshal(questionsJSON, &a.Questions)
	_ = json.Unmarshal(skillsJSON, &a.SkillsTested)
	_ = json.Unmarshal(answersJSON, &a.Answers)
	return a, nil
}

func (r *AssessmentRepository) Get(ctx context.Context, id int) (types.Assessment, error) {
	const query = `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`
	return scanAssessment(r.db.QueryRowContext(ctx, query, id))
}

// ListByApplication returns an application's assessments, newest first.
func (r *AssessmentRepository) ListByApplication(ctx context.Context, applicationID int) ([]types.Assessment, error) {
	const query = `
		SELECT ` + assessmentColumns + `
		FROM assessments
		WHERE application_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []types.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

func (r *AssessmentRepository) Create(ctx context.Context, a types.Assessment) (types.Assessment, error) {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	questionsJSON, err := json.Marshal(a.Questions)
	if err != nil {
		return types.Assessment{}, err
	}
	skillsJSON, err := json.Marshal(skillsOrEmpty(a.SkillsTested))
	if err != nil {
		return types.Assessment{}, err
	}

	const query = `
		INSERT INTO assessments (
			application_id, created_by, test_type, questions, skills_tested,
			time_limit_minutes, passing_score, instructions, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		a.ApplicationID,
		a.CreatedBy,
		a.TestType,
		questionsJSON,
		skillsJSON,
		a.TimeLimitMinutes,
		a.PassingScore,
		a.Instructions,
		a.Status,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&a.ID); err != nil {
		return types.Assessment{}, err
	}
	return a, nil
}

// RecordSubmission persists the submitted answers and computed result.
func (r *AssessmentRepository) RecordSubmission(ctx context.Context, a types.Assessment) (types.Assessment, error) {
	a.UpdatedAt = time.Now()

	answersJSON, err := json.Marshal(skillsOrEmpty(a.Answers))
	if err != nil {
		return types.Assessment{}, err
	}

	const query = `
		UPDATE assessments
		SET answers = $1,
			score = $2,
			passed = $3,
			time_taken = $4,
			status = $5,
			completed_at = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		answersJSON,
		a.Score,
		a.Passed,
		a.TimeTakenMinutes,
		a.Status,
		a.CompletedAt,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return types.Assessment{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Assessment{}, err
	}
	if affected == 0 {
		return types.Assessment{}, ErrNotFound
	}
	return a, nil
}
