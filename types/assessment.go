package types

import "time"

// AssessmentStatus enumerates skill-assessment states.
type AssessmentStatus string

// Assessment states. An assessment is created pending and becomes
// completed exactly once, when the applicant submits answers.
const (
	AssessmentPending   AssessmentStatus = "pending"
	AssessmentCompleted AssessmentStatus = "completed"
)

// Question types.
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionCoding         = "coding"
)

// QuestionTestCase is one expected-output check for a coding question.
// Scoring is a substring-containment heuristic against the answer, not
// real code execution.
type QuestionTestCase struct {
	Input          string `json:"input,omitempty"`
	ExpectedOutput string `json:"expected_output"`
}

// Question is one entry in an assessment's question set, stored as a
// JSON column.
type Question struct {
	// Type is "multiple_choice" or "coding".
	Type string `json:"type"`

	// Prompt is the question text shown to the candidate.
	Prompt string `json:"prompt"`

	// Options holds the multiple-choice answers, when applicable.
	Options []string `json:"options,omitempty"`

	// CorrectAnswer is the expected exact answer for multiple choice.
	// Hidden from candidate-facing responses by the handlers.
	CorrectAnswer string `json:"correct_answer,omitempty"`

	// TestCases drive fractional scoring for coding questions.
	TestCases []QuestionTestCase `json:"test_cases,omitempty"`
}

// Assessment attaches a skills test to an application.
type Assessment struct {
	// ID is the unique identifier of the assessment.
	ID int `json:"assessment_id" db:"id"`

	// ApplicationID identifies the application under assessment.
	ApplicationID int `json:"application_id" db:"application_id"`

	// CreatedBy identifies the recruiter who created the test.
	CreatedBy int `json:"created_by" db:"created_by"`

	// TestType is a free-form label ("technical", "aptitude", ...).
	TestType string `json:"test_type,omitempty" db:"test_type"`

	// Questions is the ordered question set.
	Questions []Question `json:"questions" db:"questions"`

	// SkillsTested labels the skills the test covers.
	SkillsTested []string `json:"skills_tested,omitempty" db:"skills_tested"`

	// TimeLimitMinutes bounds the expected completion time.
	TimeLimitMinutes int `json:"time_limit_minutes,omitempty" db:"time_limit_minutes"`

	// PassingScore is the pass threshold on the 0-100 scale.
	PassingScore float64 `json:"passing_score" db:"passing_score"`

	Instructions string `json:"instructions,omitempty" db:"instructions"`

	// Status is pending until answers are submitted.
	Status AssessmentStatus `json:"status" db:"status"`

	// Answers are the submitted answers, index-aligned with Questions.
	Answers []string `json:"answers,omitempty" db:"answers"`

	// Score is the computed 0-100 score; Passed is score >= PassingScore.
	Score  float64 `json:"score" db:"score"`
	Passed bool    `json:"passed" db:"passed"`

	// TimeTakenMinutes is self-reported completion time.
	TimeTakenMinutes int `json:"time_taken,omitempty" db:"time_taken"`

	// CompletedAt is set when the submission is recorded.
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// CreatedAt is the timestamp when the assessment was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
