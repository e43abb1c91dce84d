// Package ai hosts the recruiting assistant: a read-only chat surface
// that answers simple questions from the store directly and delegates
// open-ended ones to a generative model.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/types"
)

const maxLogPreview = 200

// ContentGenerator produces text for a prompt. Implemented by the
// gemini client and by test stubs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// JobReader is the read-only job access the assistant needs.
type JobReader interface {
	Get(ctx context.Context, id int) (types.Job, error)
	ListActive(ctx context.Context, filter types.JobFilter, offset, limit int) ([]types.Job, int, error)
}

// ApplicationReader is the read-only application access the assistant
// needs.
type ApplicationReader interface {
	ListByJob(ctx context.Context, jobID int, status types.ApplicationStatus) ([]types.Application, error)
}

// UserReader is the read-only user access the assistant needs.
type UserReader interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

// Assistant answers chat questions. It never mutates state: requests
// that sound like writes are refused before any lookup or model call.
type Assistant struct {
	gen   ContentGenerator
	jobs  JobReader
	apps  ApplicationReader
	users UserReader
	log   *zap.Logger
}

func NewAssistant(gen ContentGenerator, jobs JobReader, apps ApplicationReader, users UserReader, log *zap.Logger) *Assistant {
	return &Assistant{gen: gen, jobs: jobs, apps: apps, users: users, log: log}
}

// ChatReply is one assistant answer. Source records whether the answer
// came from a canned pattern, a store lookup, or the model.
type ChatReply struct {
	Answer string `json:"answer"`
	Source string `json:"source"`
}

// Reply sources.
const (
	SourceAssistant = "assistant"
	SourceStore     = "store"
	SourceModel     = "model"
)

const refusalMessage = "I can only answer questions. I cannot create, change, or delete anything on your behalf."

var (
	mutationPattern = regexp.MustCompile(`(?i)\b(create|add|insert|update|modify|change|edit|delete|remove|drop|truncate|deactivate|cancel|withdraw|reset|approve|reject|hire)\b`)

	greetingPattern = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|good (morning|afternoon|evening))\b`)
	thanksPattern   = regexp.MustCompile(`(?i)\b(thank you|thanks|thx)\b`)
	farewellPattern = regexp.MustCompile(`(?i)^\s*(bye|goodbye|see you)\b`)

	listJobsPattern   = regexp.MustCompile(`(?i)\b(list|show|find|any)\b.*\bjobs?\b`)
	jobAppsPattern    = regexp.MustCompile(`(?i)\bapplications?\b.*\bjob\s+#?(\d+)`)
	userLookupPattern = regexp.MustCompile(`(?i)\buser\s+#?(\d+)`)
)

// Chat answers one message for the given caller.
func (a *Assistant) Chat(ctx context.Context, actor types.User, message string) (ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatReply{}, fmt.Errorf("message is required: %w", services.ErrValidation)
	}

	if mutationPattern.MatchString(message) {
		return ChatReply{Answer: refusalMessage, Source: SourceAssistant}, nil
	}

	switch {
	case greetingPattern.MatchString(message):
		return ChatReply{Answer: "Hello! Ask me about open jobs, applications, or candidates.", Source: SourceAssistant}, nil
	case thanksPattern.MatchString(message):
		return ChatReply{Answer: "You're welcome!", Source: SourceAssistant}, nil
	case farewellPattern.MatchString(message):
		return ChatReply{Answer: "Goodbye! Come back any time.", Source: SourceAssistant}, nil
	}

	if m := jobAppsPattern.FindStringSubmatch(message); m != nil {
		return a.answerJobApplications(ctx, actor, m[1])
	}
	if m := userLookupPattern.FindStringSubmatch(message); m != nil {
		return a.answerUserLookup(ctx, actor, m[1])
	}
	if listJobsPattern.MatchString(message) {
		return a.answerJobList(ctx)
	}

	return a.answerFromModel(ctx, message)
}

func (a *Assistant) answerJobList(ctx context.Context) (ChatReply, error) {
	jobs, total, err := a.jobs.ListActive(ctx, types.JobFilter{}, 0, 10)
	if err != nil {
		return ChatReply{}, err
	}
	if total == 0 {
		return ChatReply{Answer: "There are no active job postings right now.", Source: SourceStore}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "There are %d active postings. Most recent:\n", total)
	for _, job := range jobs {
		fmt.Fprintf(&b, "- #%d %s at %s (%s)\n", job.ID, job.Title, job.Company, job.Location)
	}
	return ChatReply{Answer: strings.TrimSpace(b.String()), Source: SourceStore}, nil
}

func (a *Assistant) answerJobApplications(ctx context.Context, actor types.User, rawID string) (ChatReply, error) {
	jobID, err := strconv.Atoi(rawID)
	if err != nil {
		return ChatReply{}, fmt.Errorf("invalid job id %q: %w", rawID, services.ErrValidation)
	}
	job, err := a.jobs.Get(ctx, jobID)
	if err != nil {
		return ChatReply{}, err
	}
	if job.RecruiterID != actor.ID && actor.RoleName != types.RoleAdmin {
		return ChatReply{}, fmt.Errorf("job %d belongs to another recruiter: %w", jobID, services.ErrForbidden)
	}

	apps, err := a.apps.ListByJob(ctx, jobID, "")
	if err != nil {
		return ChatReply{}, err
	}
	if len(apps) == 0 {
		return ChatReply{Answer: fmt.Sprintf("Job #%d (%s) has no applications yet.", jobID, job.Title), Source: SourceStore}, nil
	}

	counts := map[types.ApplicationStatus]int{}
	for _, app := range apps {
		counts[app.Status]++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Job #%d (%s) has %d applications:", jobID, job.Title, len(apps))
	for _, status := range []types.ApplicationStatus{
		types.ApplicationPending, types.ApplicationShortlisted, types.ApplicationInterviewed,
		types.ApplicationHired, types.ApplicationRejected, types.ApplicationWithdrawn,
	} {
		if counts[status] > 0 {
			fmt.Fprintf(&b, " %d %s,", counts[status], status)
		}
	}
	return ChatReply{Answer: strings.TrimSuffix(b.String(), ","), Source: SourceStore}, nil
}

func (a *Assistant) answerUserLookup(ctx context.Context, actor types.User, rawID string) (ChatReply, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return ChatReply{}, fmt.Errorf("invalid user id %q: %w", rawID, services.ErrValidation)
	}
	if id != actor.ID && actor.RoleName != types.RoleAdmin {
		return ChatReply{}, fmt.Errorf("user lookups are restricted to admins: %w", services.ErrForbidden)
	}

	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		return ChatReply{}, err
	}
	answer := fmt.Sprintf("User #%d: %s (%s), role %s", user.ID, user.FullName, user.Email, user.RoleName)
	if len(user.Skills) > 0 {
		answer += ", skills: " + strings.Join(user.Skills, ", ")
	}
	return ChatReply{Answer: answer, Source: SourceStore}, nil
}

const chatPromptTemplate = `You are a helpful assistant for a recruiting platform.
Answer the user's question concisely. You have no access to platform data
and must not pretend to; answer from general knowledge only.

Respond with a single JSON object, no markdown, in the form:
{"answer": "<your answer>"}

Question: %s`

func (a *Assistant) answerFromModel(ctx context.Context, message string) (ChatReply, error) {
	if a.gen == nil {
		return ChatReply{}, fmt.Errorf("assistant model is not configured: %w", services.ErrUpstream)
	}

	prompt := fmt.Sprintf(chatPromptTemplate, message)
	raw, err := a.gen.GenerateContent(ctx, prompt)
	if err != nil {
		a.log.Warn("assistant generation failed", zap.Error(err))
		return ChatReply{}, fmt.Errorf("%v: %w", err, services.ErrUpstream)
	}

	a.log.Debug("assistant model response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", truncateForLog(raw, maxLogPreview)))

	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return ChatReply{}, fmt.Errorf("unparseable model response: %w", services.ErrUpstream)
	}
	if strings.TrimSpace(parsed.Answer) == "" {
		return ChatReply{}, fmt.Errorf("empty model answer: %w", services.ErrUpstream)
	}

	return ChatReply{Answer: strings.TrimSpace(parsed.Answer), Source: SourceModel}, nil
}

// extractJSON strips markdown code fences that models wrap around JSON
// payloads.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func truncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
