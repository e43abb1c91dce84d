package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillsmatch/apiserver/types"
)

// JobRepository handles persistence for job postings.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `
	id, recruiter_id, title, company, location, description, requirements,
	industry, employment_type, salary_range_start, salary_range_end,
	benefits, required_skills, preferred_skills, experience_level,
	education_requirement, remote_allowed, is_active, views_count,
	applications_count, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (types.Job, error) {
	var job types.Job
	var requiredJSON, preferredJSON []byte
	err := row.Scan(
		&job.ID,
		&job.RecruiterID,
		&job.Title,
		&job.Company,
		&job.Location,
		&job.Description,
		&job.Requirements,
		&job.Industry,
		&job.EmploymentType,
		&job.SalaryRangeStart,
		&job.SalaryRangeEnd,
		&job.Benefits,
		&requiredJSON,
		&preferredJSON,
		&job.ExperienceLevel,
		&job.EducationRequirement,
		&job.RemoteAllowed,
		&job.IsActive,
		&job.ViewsCount,
		&job.ApplicationsCount,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}
	_ = json.Unmarshal(requiredJSON, &job.RequiredSkills)
	_ = json.Unmarshal(preferredJSON, &job.PreferredSkills)
	return job, nil
}

func (r *JobRepository) Get(ctx context.Context, id int) (types.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return scanJob(r.db.QueryRowContext(ctx, query, id))
}

// ListActive returns active postings matching the filter, newest first.
func (r *JobRepository) ListActive(ctx context.Context, filter types.JobFilter, offset, limit int) ([]types.Job, int, error) {
	where := []string{"is_active = TRUE"}
	args := []any{}

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		p := arg("%" + keyword + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR company ILIKE %s)", p, p, p))
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		where = append(where, fmt.Sprintf("location ILIKE %s", arg("%"+location+"%")))
	}
	if filter.EmploymentType != "" {
		where = append(where, fmt.Sprintf("employment_type = %s", arg(filter.EmploymentType)))
	}
	if filter.RemoteOnly {
		where = append(where, "remote_allowed = TRUE")
	}
	if filter.SalaryMin > 0 {
		where = append(where, fmt.Sprintf("salary_range_start >= %s", arg(filter.SalaryMin)))
	}
	if filter.SalaryMax > 0 {
		where = append(where, fmt.Sprintf("salary_range_end <= %s", arg(filter.SalaryMax)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(1) FROM jobs WHERE " + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(
		"SELECT %s FROM jobs WHERE %s ORDER BY created_at DESC OFFSET %s LIMIT %s",
		jobColumns, whereClause, arg(offset), arg(limit),
	)
	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := make([]types.Job, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListByRecruiter returns a recruiter's own postings, newest first.
func (r *JobRepository) ListByRecruiter(ctx context.Context, recruiterID int) ([]types.Job, error) {
	const query = `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE recruiter_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	requiredJSON, err := json.Marshal(skillsOrEmpty(job.RequiredSkills))
	if err != nil {
		return types.Job{}, err
	}
	preferredJSON, err := json.Marshal(skillsOrEmpty(job.PreferredSkills))
	if err != nil {
		return types.Job{}, err
	}

	const query = `
		INSERT INTO jobs (
			recruiter_id, title, company, location, description,
			requirements, industry, employment_type, salary_range_start,
			salary_range_end, benefits, required_skills, preferred_skills,
			experience_level, education_requirement, remote_allowed,
			is_active, views_count, applications_count, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		job.RecruiterID,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		job.Requirements,
		job.Industry,
		job.EmploymentType,
		job.SalaryRangeStart,
		job.SalaryRangeEnd,
		job.Benefits,
		requiredJSON,
		preferredJSON,
		job.ExperienceLevel,
		job.EducationRequirement,
		job.RemoteAllowed,
		job.IsActive,
		job.ViewsCount,
		job.ApplicationsCount,
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&job.ID); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, job types.Job) (types.Job, error) {
	job.UpdatedAt = time.Now()

	requiredJSON, err := json.Marshal(skillsOrEmpty(job.RequiredSkills))
	if err != nil {
		return types.Job{}, err
	}
	preferredJSON, err := json.Marshal(skillsOrEmpty(job.PreferredSkills))
	if err != nil {
		return types.Job{}, err
	}

	const query = `
		UPDATE jobs
		SET title = $1,
			company = $2,
			location = $3,
			description = $4,
			requirements = $5,
			industry = $6,
			employment_type = $7,
			salary_range_start = $8,
			salary_range_end = $9,
			benefits = $10,
			required_skills = $11,
			preferred_skills = $12,
			experience_level = $13,
			education_requirement = $14,
			remote_allowed = $15,
			is_active = $16,
			updated_at = $17
		WHERE id = $18`
	result, err := r.db.ExecContext(
		ctx,
		query,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		job.Requirements,
		job.Industry,
		job.EmploymentType,
		job.SalaryRangeStart,
		job.SalaryRangeEnd,
		job.Benefits,
		requiredJSON,
		preferredJSON,
		job.ExperienceLevel,
		job.EducationRequirement,
		job.RemoteAllowed,
		job.IsActive,
		job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return types.Job{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Job{}, err
	}
	if affected == 0 {
		return types.Job{}, ErrNotFound
	}
	return job, nil
}

// IncrementViews bumps the view counter with a single atomic update.
func (r *JobRepository) IncrementViews(ctx context.Context, id int) error {
	const query = `UPDATE jobs SET views_count = views_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// IncrementApplications bumps the application counter atomically.
func (r *JobRepository) IncrementApplications(ctx context.Context, id int) error {
	const query = `UPDATE jobs SET applications_count = applications_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
