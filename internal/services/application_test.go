package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/skillsmatch/apiserver/internal/store"
	"github.com/skillsmatch/apiserver/types"
)

func newApplicationFixture() (*ApplicationService, *stubJobRepo, *stubAppRepo, *recordingNotifier) {
	jobs := newStubJobRepo()
	apps := newStubAppRepo(jobs)
	notifier := &recordingNotifier{}
	svc := NewApplicationService(apps, jobs, notifier, zap.NewNop())
	return svc, jobs, apps, notifier
}

var (
	testRecruiter = types.User{ID: 10, FullName: "Rita Recruiter", RoleName: types.RoleRecruiter}
	testApplicant = types.User{ID: 20, FullName: "Ada Applicant", RoleName: types.RoleJobseeker}
	testAdmin     = types.User{ID: 1, FullName: "Root", RoleName: types.RoleAdmin}
)

func seedJob(jobs *stubJobRepo, active bool) types.Job {
	job, _ := jobs.Create(context.Background(), types.Job{
		RecruiterID: testRecruiter.ID,
		Title:       "Backend Engineer",
		Company:     "Acme",
		IsActive:    active,
	})
	return job
}

func TestAllowedTransitions(t *testing.T) {
	cases := []struct {
		from, to types.ApplicationStatus
		want     bool
	}{
		{types.ApplicationPending, types.ApplicationShortlisted, true},
		{types.ApplicationPending, types.ApplicationHired, true},
		{types.ApplicationShortlisted, types.ApplicationInterviewed, true},
		{types.ApplicationShortlisted, types.ApplicationHired, false},
		{types.ApplicationInterviewed, types.ApplicationHired, true},
		{types.ApplicationInterviewed, types.ApplicationShortlisted, false},
		{types.ApplicationHired, types.ApplicationRejected, false},
		{types.ApplicationRejected, types.ApplicationPending, false},
		{types.ApplicationWithdrawn, types.ApplicationPending, false},
	}

	for _, tc := range cases {
		if got := allowedTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("allowedTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestApply(t *testing.T) {
	svc, jobs, _, notifier := newApplicationFixture()
	job := seedJob(jobs, true)

	app, err := svc.Apply(context.Background(), testApplicant, job.ID, "cover", "")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if app.Status != types.ApplicationPending {
		t.Fatalf("expected pending, got %s", app.Status)
	}
	if jobs.applyIncs != 1 || jobs.lastJobInc != job.ID {
		t.Fatalf("expected applications counter increment for job %d", job.ID)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Type != types.NotifyApplicationReceived {
		t.Fatalf("expected application_received notification, got %+v", notifier.sent)
	}
	if notifier.sent[0].RecipientID != testRecruiter.ID {
		t.Fatalf("notification went to user %d, want recruiter", notifier.sent[0].RecipientID)
	}
}

func TestApplyDuplicate(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)

	if _, err := svc.Apply(context.Background(), testApplicant, job.ID, "", ""); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	_, err := svc.Apply(context.Background(), testApplicant, job.ID, "", "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestApplyAfterWithdrawAllowed(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)

	first, err := svc.Apply(context.Background(), testApplicant, job.ID, "", "")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.Withdraw(context.Background(), testApplicant, first.ID); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if _, err := svc.Apply(context.Background(), testApplicant, job.ID, "", ""); err != nil {
		t.Fatalf("re-apply after withdraw failed: %v", err)
	}
}

func TestApplyInactiveJob(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, false)

	_, err := svc.Apply(context.Background(), testApplicant, job.ID, "", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for inactive job, got %v", err)
	}
}

func TestApplyRequiresJobseeker(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)

	_, err := svc.Apply(context.Background(), testRecruiter, job.ID, "", "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestWithdrawOwnerOnly(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)
	app, _ := svc.Apply(context.Background(), testApplicant, job.ID, "", "")

	other := types.User{ID: 99, RoleName: types.RoleJobseeker}
	_, err := svc.Withdraw(context.Background(), other, app.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestWithdrawBlockedOnRetiredJob(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)
	app, _ := svc.Apply(context.Background(), testApplicant, job.ID, "", "")

	job.IsActive = false
	jobs.jobs[job.ID] = job

	_, err := svc.Withdraw(context.Background(), testApplicant, app.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestWithdrawTerminalState(t *testing.T) {
	svc, jobs, apps, _ := newApplicationFixture()
	job := seedJob(jobs, true)
	app, _ := svc.Apply(context.Background(), testApplicant, job.ID, "", "")

	if _, err := apps.UpdateStatus(context.Background(), app.ID, types.ApplicationHired, "", testRecruiter.ID); err != nil {
		t.Fatalf("seed status failed: %v", err)
	}

	_, err := svc.Withdraw(context.Background(), testApplicant, app.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from hired, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, jobs, _, notifier := newApplicationFixture()
	job := seedJob(jobs, true)
	app, _ := svc.Apply(context.Background(), testApplicant, job.ID, "", "")
	notifier.sent = nil

	updated, err := svc.UpdateStatus(context.Background(), testRecruiter, app.ID, types.ApplicationShortlisted, "strong resume")
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if updated.Status != types.ApplicationShortlisted {
		t.Fatalf("expected shortlisted, got %s", updated.Status)
	}
	if updated.Feedback != "strong resume" {
		t.Fatalf("feedback not recorded: %q", updated.Feedback)
	}
	if updated.StatusChangedBy != testRecruiter.ID || updated.StatusChangedAt == nil {
		t.Fatalf("actor/timestamp not recorded: %+v", updated)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].RecipientID != testApplicant.ID {
		t.Fatalf("expected status notification to applicant, got %+v", notifier.sent)
	}
}

func TestUpdateStatusForbiddenForOtherRecruiter(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)
	app, _ := svc.Apply(context.Background(), testApplicant, job.ID, "", "")

	other := types.User{ID: 55, RoleName: types.RoleRecruiter}
	_, err := svc.UpdateStatus(context.Background(), other, app.ID, types.ApplicationShortlisted, "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)
	app, _ := svc.Apply(context.Background(), testApplicant, job.ID, "", "")

	if _, err := svc.UpdateStatus(context.Background(), testRecruiter, app.ID, types.ApplicationShortlisted, ""); err != nil {
		t.Fatalf("shortlist failed: %v", err)
	}
	_, err := svc.UpdateStatus(context.Background(), testRecruiter, app.ID, types.ApplicationHired, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition shortlisted->hired, got %v", err)
	}
}

func TestUpdateStatusRejectsWithdrawnTarget(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)
	app, _ := svc.Apply(context.Background(), testApplicant, job.ID, "", "")

	_, err := svc.UpdateStatus(context.Background(), testRecruiter, app.ID, types.ApplicationWithdrawn, "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetApplicationVisibility(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)
	app, _ := svc.Apply(context.Background(), testApplicant, job.ID, "", "")

	for _, actor := range []types.User{testApplicant, testRecruiter, testAdmin} {
		if _, err := svc.Get(context.Background(), actor, app.ID); err != nil {
			t.Fatalf("expected %s to see application: %v", actor.RoleName, err)
		}
	}

	stranger := types.User{ID: 77, RoleName: types.RoleJobseeker}
	if _, err := svc.Get(context.Background(), stranger, app.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
}

func TestListForJobOwnerOnly(t *testing.T) {
	svc, jobs, _, _ := newApplicationFixture()
	job := seedJob(jobs, true)
	if _, err := svc.Apply(context.Background(), testApplicant, job.ID, "", ""); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	apps, err := svc.ListForJob(context.Background(), testRecruiter, job.ID, "")
	if err != nil || len(apps) != 1 {
		t.Fatalf("owner list failed: %v (%d apps)", err, len(apps))
	}

	other := types.User{ID: 55, RoleName: types.RoleRecruiter}
	if _, err := svc.ListForJob(context.Background(), other, job.ID, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := svc.ListForJob(context.Background(), testRecruiter, job.ID, "bogus"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for bad status, got %v", err)
	}
}
