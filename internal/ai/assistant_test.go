package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/internal/store"
	"github.com/skillsmatch/apiserver/types"
)

// stubGenerator returns a canned response or error and records whether
// it was called.
type stubGenerator struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (g *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type stubJobReader struct {
	jobs  map[int]types.Job
	total int
}

func (r *stubJobReader) Get(_ context.Context, id int) (types.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return job, nil
}

func (r *stubJobReader) ListActive(_ context.Context, _ types.JobFilter, _, _ int) ([]types.Job, int, error) {
	var out []types.Job
	for _, job := range r.jobs {
		if job.IsActive {
			out = append(out, job)
		}
	}
	return out, r.total, nil
}

type stubAppReader struct {
	apps []types.Application
}

func (r *stubAppReader) ListByJob(_ context.Context, jobID int, _ types.ApplicationStatus) ([]types.Application, error) {
	var out []types.Application
	for _, app := range r.apps {
		if app.JobID == jobID {
			out = append(out, app)
		}
	}
	return out, nil
}

type stubUserReader struct {
	users map[int]types.User
}

func (r *stubUserReader) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

var (
	aiRecruiter = types.User{ID: 10, RoleName: types.RoleRecruiter}
	aiAdmin     = types.User{ID: 1, RoleName: types.RoleAdmin}
	aiJobseeker = types.User{ID: 20, RoleName: types.RoleJobseeker, Skills: []string{"go", "sql"}, ExperienceYears: 3}
)

func newAssistantFixture(gen *stubGenerator) (*Assistant, *stubJobReader, *stubAppReader, *stubUserReader) {
	jobs := &stubJobReader{jobs: map[int]types.Job{
		3: {ID: 3, RecruiterID: aiRecruiter.ID, Title: "Backend Engineer", Company: "Acme", Location: "Berlin", IsActive: true},
	}, total: 1}
	apps := &stubAppReader{apps: []types.Application{
		{ID: 1, JobID: 3, Status: types.ApplicationPending},
		{ID: 2, JobID: 3, Status: types.ApplicationPending},
		{ID: 3, JobID: 3, Status: types.ApplicationShortlisted},
	}}
	users := &stubUserReader{users: map[int]types.User{
		aiJobseeker.ID: aiJobseeker,
	}}
	var cg ContentGenerator
	if gen != nil {
		cg = gen
	}
	return NewAssistant(cg, jobs, apps, users, zap.NewNop()), jobs, apps, users
}

func TestChatEmptyMessage(t *testing.T) {
	assistant, _, _, _ := newAssistantFixture(nil)

	if _, err := assistant.Chat(context.Background(), aiJobseeker, "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChatRefusesMutations(t *testing.T) {
	gen := &stubGenerator{response: `{"answer": "should not be used"}`}
	assistant, _, _, _ := newAssistantFixture(gen)

	for _, message := range []string{
		"Delete job #3",
		"please update my application status",
		"can you hire this candidate?",
		"reset the password for user 20",
	} {
		reply, err := assistant.Chat(context.Background(), aiAdmin, message)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", message, err)
		}
		if reply.Source != SourceAssistant || !strings.Contains(reply.Answer, "only answer questions") {
			t.Fatalf("%q: expected refusal, got %+v", message, reply)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("model called %d times for mutation requests", gen.calls)
	}
}

func TestChatSmallTalk(t *testing.T) {
	assistant, _, _, _ := newAssistantFixture(nil)

	cases := []struct {
		message string
		want    string
	}{
		{"Hello there", "Hello!"},
		{"thanks a lot", "welcome"},
		{"bye for now", "Goodbye"},
	}
	for _, tc := range cases {
		reply, err := assistant.Chat(context.Background(), aiJobseeker, tc.message)
		if err != nil {
			t.Fatalf("%q: %v", tc.message, err)
		}
		if reply.Source != SourceAssistant || !strings.Contains(reply.Answer, tc.want) {
			t.Fatalf("%q: got %+v", tc.message, reply)
		}
	}
}

func TestChatListJobs(t *testing.T) {
	assistant, _, _, _ := newAssistantFixture(nil)

	reply, err := assistant.Chat(context.Background(), aiJobseeker, "show me open jobs")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if reply.Source != SourceStore {
		t.Fatalf("expected store answer, got %+v", reply)
	}
	if !strings.Contains(reply.Answer, "Backend Engineer") || !strings.Contains(reply.Answer, "1 active") {
		t.Fatalf("unexpected answer: %q", reply.Answer)
	}
}

func TestChatListJobsEmpty(t *testing.T) {
	assistant, jobs, _, _ := newAssistantFixture(nil)
	jobs.jobs = map[int]types.Job{}
	jobs.total = 0

	reply, err := assistant.Chat(context.Background(), aiJobseeker, "any jobs for me?")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if !strings.Contains(reply.Answer, "no active job postings") {
		t.Fatalf("unexpected answer: %q", reply.Answer)
	}
}

func TestChatJobApplications(t *testing.T) {
	assistant, _, _, _ := newAssistantFixture(nil)

	reply, err := assistant.Chat(context.Background(), aiRecruiter, "how many applications for job #3?")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if reply.Source != SourceStore {
		t.Fatalf("expected store answer, got %+v", reply)
	}
	if !strings.Contains(reply.Answer, "3 applications") ||
		!strings.Contains(reply.Answer, "2 pending") ||
		!strings.Contains(reply.Answer, "1 shortlisted") {
		t.Fatalf("unexpected summary: %q", reply.Answer)
	}

	// Another recruiter's job is off limits; jobseekers have no access.
	other := types.User{ID: 99, RoleName: types.RoleRecruiter}
	if _, err := assistant.Chat(context.Background(), other, "applications for job 3"); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := assistant.Chat(context.Background(), aiAdmin, "applications for job 3"); err != nil {
		t.Fatalf("admin lookup failed: %v", err)
	}
}

func TestChatUserLookup(t *testing.T) {
	assistant, _, _, _ := newAssistantFixture(nil)

	reply, err := assistant.Chat(context.Background(), aiAdmin, "who is user #20?")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if reply.Source != SourceStore || !strings.Contains(reply.Answer, "go, sql") {
		t.Fatalf("unexpected answer: %+v", reply)
	}

	// Users may look themselves up, nobody else.
	if _, err := assistant.Chat(context.Background(), aiJobseeker, "tell me about user 20"); err != nil {
		t.Fatalf("self lookup failed: %v", err)
	}
	if _, err := assistant.Chat(context.Background(), aiRecruiter, "tell me about user 20"); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestChatModelFallback(t *testing.T) {
	gen := &stubGenerator{response: "```json\n{\"answer\": \"Practice system design.\"}\n```"}
	assistant, _, _, _ := newAssistantFixture(gen)

	reply, err := assistant.Chat(context.Background(), aiJobseeker, "what should I practice for interviews?")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if reply.Source != SourceModel || reply.Answer != "Practice system design." {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if gen.calls != 1 {
		t.Fatalf("model called %d times, want 1", gen.calls)
	}
	if !strings.Contains(gen.prompt, "what should I practice for interviews?") {
		t.Fatalf("question missing from prompt: %q", gen.prompt)
	}
}

func TestChatModelErrors(t *testing.T) {
	// No generator configured.
	assistant, _, _, _ := newAssistantFixture(nil)
	if _, err := assistant.Chat(context.Background(), aiJobseeker, "how is the market?"); !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("nil generator: expected upstream error, got %v", err)
	}

	// Generator fails outright.
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	assistant, _, _, _ = newAssistantFixture(gen)
	if _, err := assistant.Chat(context.Background(), aiJobseeker, "how is the market?"); !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("generator error: expected upstream error, got %v", err)
	}

	// Unparseable and empty payloads are upstream failures too.
	for _, response := range []string{"not json at all", `{"answer": "  "}`} {
		gen := &stubGenerator{response: response}
		assistant, _, _, _ = newAssistantFixture(gen)
		if _, err := assistant.Chat(context.Background(), aiJobseeker, "how is the market?"); !errors.Is(err, services.ErrUpstream) {
			t.Fatalf("%q: expected upstream error, got %v", response, err)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"answer": "x"}`, `{"answer": "x"}`},
		{"```json\n{\"answer\": \"x\"}\n```", `{"answer": "x"}`},
		{"```\n{\"answer\": \"x\"}\n```", `{"answer": "x"}`},
		{"  `{\"answer\": \"x\"}`  ", `{"answer": "x"}`},
	}
	for _, tc := range cases {
		if got := extractJSON(tc.in); got != tc.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLearningPath(t *testing.T) {
	gen := &stubGenerator{response: `{
		"target_role": "Staff Engineer",
		"summary": "Deepen distributed systems knowledge.",
		"steps": [
			{"skill": "distributed systems", "description": "Study consensus.", "estimated_weeks": 6}
		]
	}`}
	assistant, _, _, _ := newAssistantFixture(gen)

	path, err := assistant.LearningPath(context.Background(), aiJobseeker, "Staff Engineer")
	if err != nil {
		t.Fatalf("learning path failed: %v", err)
	}
	if path.TargetRole != "Staff Engineer" || len(path.Steps) != 1 {
		t.Fatalf("unexpected path: %+v", path)
	}
	if !strings.Contains(gen.prompt, "go, sql") || !strings.Contains(gen.prompt, "Staff Engineer") {
		t.Fatalf("prompt missing profile: %q", gen.prompt)
	}
}

func TestLearningPathBackfillsRole(t *testing.T) {
	gen := &stubGenerator{response: `{"steps": [{"skill": "k8s", "description": "Learn it."}]}`}
	assistant, _, _, _ := newAssistantFixture(gen)

	path, err := assistant.LearningPath(context.Background(), aiJobseeker, "Platform Engineer")
	if err != nil {
		t.Fatalf("learning path failed: %v", err)
	}
	if path.TargetRole != "Platform Engineer" {
		t.Fatalf("role not backfilled: %q", path.TargetRole)
	}
}

func TestLearningPathErrors(t *testing.T) {
	gen := &stubGenerator{response: `{"steps": []}`}
	assistant, _, _, _ := newAssistantFixture(gen)

	noSkills := types.User{ID: 5, RoleName: types.RoleJobseeker}
	if _, err := assistant.LearningPath(context.Background(), noSkills, "Engineer"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("no skills: expected validation error, got %v", err)
	}
	if _, err := assistant.LearningPath(context.Background(), aiJobseeker, "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("no role: expected validation error, got %v", err)
	}
	if _, err := assistant.LearningPath(context.Background(), aiJobseeker, "Engineer"); !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("zero steps: expected upstream error, got %v", err)
	}

	bare, _, _, _ := newAssistantFixture(nil)
	if _, err := bare.LearningPath(context.Background(), aiJobseeker, "Engineer"); !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("nil generator: expected upstream error, got %v", err)
	}
}
