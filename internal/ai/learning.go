package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/types"
)

// LearningStep is one stage of a generated learning path.
type LearningStep struct {
	Skill          string   `json:"skill"`
	Description    string   `json:"description"`
	Resources      []string `json:"resources,omitempty"`
	EstimatedWeeks int      `json:"estimated_weeks,omitempty"`
}

// LearningPath is a model-generated upskilling plan built from the
// user's current skill profile.
type LearningPath struct {
	TargetRole string         `json:"target_role"`
	Summary    string         `json:"summary"`
	Steps      []LearningStep `json:"steps"`
}

const learningPromptTemplate = `You are a career coach for a recruiting platform.
The user currently has these skills: %s.
Their stated experience: %d years%s.
They want to progress toward the role: %s.

Produce an upskilling plan. Respond with a single JSON object, no
markdown, in exactly this form:
{
  "target_role": "<role>",
  "summary": "<one paragraph overview>",
  "steps": [
    {"skill": "<skill>", "description": "<what to learn and why>", "resources": ["<resource>"], "estimated_weeks": <number>}
  ]
}`

// LearningPath generates an upskilling plan for the user. The user must
// have a non-empty skills profile; an unparseable model response is an
// upstream failure, never a partial result.
func (a *Assistant) LearningPath(ctx context.Context, user types.User, targetRole string) (LearningPath, error) {
	if len(user.Skills) == 0 {
		return LearningPath{}, fmt.Errorf("a skills profile is required before generating a path: %w", services.ErrValidation)
	}
	targetRole = strings.TrimSpace(targetRole)
	if targetRole == "" {
		return LearningPath{}, fmt.Errorf("target role is required: %w", services.ErrValidation)
	}
	if a.gen == nil {
		return LearningPath{}, fmt.Errorf("assistant model is not configured: %w", services.ErrUpstream)
	}

	var position string
	if user.CurrentPosition != "" {
		position = " as " + user.CurrentPosition
	}
	prompt := fmt.Sprintf(learningPromptTemplate,
		strings.Join(user.Skills, ", "), user.ExperienceYears, position, targetRole)

	raw, err := a.gen.GenerateContent(ctx, prompt)
	if err != nil {
		a.log.Warn("learning path generation failed", zap.Int("user_id", user.ID), zap.Error(err))
		return LearningPath{}, fmt.Errorf("%v: %w", err, services.ErrUpstream)
	}

	var path LearningPath
	if err := json.Unmarshal([]byte(extractJSON(raw)), &path); err != nil {
		return LearningPath{}, fmt.Errorf("unparseable learning path: %w", services.ErrUpstream)
	}
	if len(path.Steps) == 0 {
		return LearningPath{}, fmt.Errorf("learning path has no steps: %w", services.ErrUpstream)
	}
	if path.TargetRole == "" {
		path.TargetRole = targetRole
	}

	return path, nil
}
