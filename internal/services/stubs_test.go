package services

import (
	"context"
	"time"

	"github.com/skillsmatch/apiserver/internal/store"
	"github.com/skillsmatch/apiserver/types"
)

// recordingNotifier captures notifications sent by services under test.
type recordingNotifier struct {
	sent []types.Notification
}

func (n *recordingNotifier) Send(_ context.Context, notification types.Notification) {
	n.sent = append(n.sent, notification)
}

// stubUserRepo is an in-memory UserRepository.
type stubUserRepo struct {
	users  map[int]types.User
	roles  map[string]types.Role
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users: map[int]types.User{},
		roles: map[string]types.Role{
			types.RoleAdmin:     {ID: 1, Name: types.RoleAdmin},
			types.RoleRecruiter: {ID: 2, Name: types.RoleRecruiter},
			types.RoleJobseeker: {ID: 3, Name: types.RoleJobseeker},
		},
		nextID: 1,
	}
}

func (r *stubUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *stubUserRepo) GetByVerificationToken(_ context.Context, token string) (types.User, error) {
	for _, user := range r.users {
		if user.VerificationToken != "" && user.VerificationToken == token {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *stubUserRepo) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (types.User, error) {
	for _, user := range r.users {
		if user.ResetTokenHash == tokenHash && user.ResetTokenExpires != nil && user.ResetTokenExpires.After(now) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *stubUserRepo) GetRoleByName(_ context.Context, name string) (types.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return types.Role{}, store.ErrNotFound
	}
	return role, nil
}

func (r *stubUserRepo) List(_ context.Context, offset, limit int) ([]types.User, int, error) {
	all := make([]types.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	return all, len(all), nil
}

func (r *stubUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

// stubJobRepo is an in-memory JobRepository.
type stubJobRepo struct {
	jobs       map[int]types.Job
	nextID     int
	viewIncs   int
	applyIncs  int
	lastJobInc int
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{jobs: map[int]types.Job{}, nextID: 1}
}

func (r *stubJobRepo) Get(_ context.Context, id int) (types.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return job, nil
}

func (r *stubJobRepo) ListActive(_ context.Context, filter types.JobFilter, offset, limit int) ([]types.Job, int, error) {
	var active []types.Job
	for _, job := range r.jobs {
		if job.IsActive {
			active = append(active, job)
		}
	}
	return active, len(active), nil
}

func (r *stubJobRepo) ListByRecruiter(_ context.Context, recruiterID int) ([]types.Job, error) {
	var mine []types.Job
	for _, job := range r.jobs {
		if job.RecruiterID == recruiterID {
			mine = append(mine, job)
		}
	}
	return mine, nil
}

func (r *stubJobRepo) Create(_ context.Context, job types.Job) (types.Job, error) {
	job.ID = r.nextID
	r.nextID++
	r.jobs[job.ID] = job
	return job, nil
}

func (r *stubJobRepo) Update(_ context.Context, job types.Job) (types.Job, error) {
	if _, ok := r.jobs[job.ID]; !ok {
		return types.Job{}, store.ErrNotFound
	}
	r.jobs[job.ID] = job
	return job, nil
}

func (r *stubJobRepo) IncrementViews(_ context.Context, id int) error {
	job, ok := r.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.ViewsCount++
	r.jobs[id] = job
	r.viewIncs++
	return nil
}

func (r *stubJobRepo) IncrementApplications(_ context.Context, id int) error {
	job, ok := r.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.ApplicationsCount++
	r.jobs[id] = job
	r.applyIncs++
	r.lastJobInc = id
	return nil
}

// stubAppRepo is an in-memory ApplicationRepository. Authorization
// lookups resolve the recruiter through the paired job repo.
type stubAppRepo struct {
	apps   map[int]types.Application
	jobs   *stubJobRepo
	nextID int
}

func newStubAppRepo(jobs *stubJobRepo) *stubAppRepo {
	return &stubAppRepo{apps: map[int]types.Application{}, jobs: jobs, nextID: 1}
}

func (r *stubAppRepo) Get(_ context.Context, id int) (types.Application, error) {
	app, ok := r.apps[id]
	if !ok {
		return types.Application{}, store.ErrNotFound
	}
	return app, nil
}

func (r *stubAppRepo) GetAuthorization(_ context.Context, id int) (int, int, int, error) {
	app, ok := r.apps[id]
	if !ok {
		return 0, 0, 0, store.ErrNotFound
	}
	job, ok := r.jobs.jobs[app.JobID]
	if !ok {
		return 0, 0, 0, store.ErrNotFound
	}
	return app.ApplicantID, job.RecruiterID, app.JobID, nil
}

func (r *stubAppRepo) FindLive(_ context.Context, jobID, applicantID int) (types.Application, error) {
	for _, app := range r.apps {
		if app.JobID == jobID && app.ApplicantID == applicantID && app.Status != types.ApplicationWithdrawn {
			return app, nil
		}
	}
	return types.Application{}, store.ErrNotFound
}

func (r *stubAppRepo) ListByApplicant(_ context.Context, applicantID int) ([]types.Application, error) {
	var mine []types.Application
	for _, app := range r.apps {
		if app.ApplicantID == applicantID {
			mine = append(mine, app)
		}
	}
	return mine, nil
}

func (r *stubAppRepo) ListByJob(_ context.Context, jobID int, status types.ApplicationStatus) ([]types.Application, error) {
	var out []types.Application
	for _, app := range r.apps {
		if app.JobID != jobID {
			continue
		}
		if status != "" && app.Status != status {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (r *stubAppRepo) Create(_ context.Context, app types.Application) (types.Application, error) {
	if _, err := r.FindLive(context.Background(), app.JobID, app.ApplicantID); err == nil {
		return types.Application{}, store.ErrDuplicate
	}
	app.ID = r.nextID
	r.nextID++
	app.AppliedAt = time.Now()
	r.apps[app.ID] = app
	return app, nil
}

func (r *stubAppRepo) UpdateStatus(_ context.Context, id int, status types.ApplicationStatus, feedback string, actorID int) (types.Application, error) {
	app, ok := r.apps[id]
	if !ok {
		return types.Application{}, store.ErrNotFound
	}
	now := time.Now()
	app.Status = status
	app.Feedback = feedback
	app.StatusChangedAt = &now
	app.StatusChangedBy = actorID
	r.apps[id] = app
	return app, nil
}

// stubInterviewRepo is an in-memory InterviewRepository.
type stubInterviewRepo struct {
	interviews map[int]types.Interview
	nextID     int
	purged     int64
}

func newStubInterviewRepo() *stubInterviewRepo {
	return &stubInterviewRepo{interviews: map[int]types.Interview{}, nextID: 1}
}

func (r *stubInterviewRepo) Get(_ context.Context, id int) (types.Interview, error) {
	iv, ok := r.interviews[id]
	if !ok {
		return types.Interview{}, store.ErrNotFound
	}
	return iv, nil
}

func (r *stubInterviewRepo) ListByRecruiter(_ context.Context, recruiterID int) ([]types.Interview, error) {
	return nil, nil
}

func (r *stubInterviewRepo) ListByApplicant(_ context.Context, applicantID int) ([]types.Interview, error) {
	return nil, nil
}

func (r *stubInterviewRepo) Create(_ context.Context, iv types.Interview) (types.Interview, error) {
	iv.ID = r.nextID
	r.nextID++
	r.interviews[iv.ID] = iv
	return iv, nil
}

func (r *stubInterviewRepo) Update(_ context.Context, iv types.Interview) (types.Interview, error) {
	if _, ok := r.interviews[iv.ID]; !ok {
		return types.Interview{}, store.ErrNotFound
	}
	r.interviews[iv.ID] = iv
	return iv, nil
}

func (r *stubInterviewRepo) DeleteScheduledBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, iv := range r.interviews {
		if iv.ScheduledAt.Before(cutoff) {
			delete(r.interviews, id)
			deleted++
		}
	}
	r.purged += deleted
	return deleted, nil
}

// stubAssessmentRepo is an in-memory AssessmentRepository.
type stubAssessmentRepo struct {
	assessments map[int]types.Assessment
	nextID      int
}

func newStubAssessmentRepo() *stubAssessmentRepo {
	return &stubAssessmentRepo{assessments: map[int]types.Assessment{}, nextID: 1}
}

func (r *stubAssessmentRepo) Get(_ context.Context, id int) (types.Assessment, error) {
	a, ok := r.assessments[id]
	if !ok {
		return types.Assessment{}, store.ErrNotFound
	}
	return a, nil
}

func (r *stubAssessmentRepo) ListByApplication(_ context.Context, applicationID int) ([]types.Assessment, error) {
	var out []types.Assessment
	for _, a := range r.assessments {
		if a.ApplicationID == applicationID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAssessmentRepo) Create(_ context.Context, a types.Assessment) (types.Assessment, error) {
	a.ID = r.nextID
	r.nextID++
	r.assessments[a.ID] = a
	return a, nil
}

func (r *stubAssessmentRepo) RecordSubmission(_ context.Context, a types.Assessment) (types.Assessment, error) {
	if _, ok := r.assessments[a.ID]; !ok {
		return types.Assessment{}, store.ErrNotFound
	}
	r.assessments[a.ID] = a
	return a, nil
}
