package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skillsmatch/apiserver/types"
)

// AssessmentRepository defines persistence operations for assessments.
type AssessmentRepository interface {
	Get(ctx context.Context, id int) (types.Assessment, error)
	ListByApplication(ctx context.Context, applicationID int) ([]types.Assessment, error)
	Create(ctx context.Context, a types.Assessment) (types.Assessment, error)
	RecordSubmission(ctx context.Context, a types.Assessment) (types.Assessment, error)
}

// AssessmentService encapsulates skill-assessment use-cases.
type AssessmentService struct {
	repo     AssessmentRepository
	apps     ApplicationRepository
	notifier Notifier
}

func NewAssessmentService(repo AssessmentRepository, apps ApplicationRepository, notifier Notifier) *AssessmentService {
	return &AssessmentService{repo: repo, apps: apps, notifier: notifier}
}

// CreateInput carries the fields accepted when assigning a test.
type CreateInput struct {
	ApplicationID    int
	TestType         string
	Questions        []types.Question
	SkillsTested     []string
	TimeLimitMinutes int
	PassingScore     float64
	Instructions     string
}

// Create assigns an assessment to an application. Only the recruiter
// owning the job may assign one; the assessment starts pending.
func (s *AssessmentService) Create(ctx context.Context, actor types.User, in CreateInput) (types.Assessment, error) {
	applicantID, recruiterID, jobID, err := s.apps.GetAuthorization(ctx, in.ApplicationID)
	if err != nil {
		return types.Assessment{}, err
	}
	if recruiterID != actor.ID && actor.RoleName != types.RoleAdmin {
		return types.Assessment{}, fmt.Errorf("application %d belongs to another recruiter's job: %w", in.ApplicationID, ErrForbidden)
	}

	if len(in.Questions) == 0 {
		return types.Assessment{}, fmt.Errorf("at least one question is required: %w", ErrValidation)
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return types.Assessment{}, fmt.Errorf("question %d has no prompt: %w", i+1, ErrValidation)
		}
		switch q.Type {
		case types.QuestionMultipleChoice, types.QuestionCoding:
		default:
			return types.Assessment{}, fmt.Errorf("question %d has unknown type %q: %w", i+1, q.Type, ErrValidation)
		}
	}
	if in.PassingScore < 0 || in.PassingScore > 100 {
		return types.Assessment{}, fmt.Errorf("passing score must be within 0-100: %w", ErrValidation)
	}

	a, err := s.repo.Create(ctx, types.Assessment{
		ApplicationID:    in.ApplicationID,
		CreatedBy:        actor.ID,
		TestType:         in.TestType,
		Questions:        in.Questions,
		SkillsTested:     in.SkillsTested,
		TimeLimitMinutes: in.TimeLimitMinutes,
		PassingScore:     in.PassingScore,
		Instructions:     in.Instructions,
		Status:           types.AssessmentPending,
	})
	if err != nil {
		return types.Assessment{}, err
	}

	s.notifier.Send(ctx, types.Notification{
		RecipientID:          applicantID,
		Type:                 types.NotifyAssessmentAssigned,
		Message:              "You have been assigned a skills assessment.",
		RelatedJobID:         jobID,
		RelatedApplicationID: in.ApplicationID,
		Priority:             "high",
	})

	return a, nil
}

// Submit records the applicant's answers and scores them. An assessment
// accepts exactly one submission; scoring is deterministic for
// identical questions and answers.
func (s *AssessmentService) Submit(ctx context.Context, actor types.User, id int, answers []string, timeTakenMinutes int) (types.Assessment, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Assessment{}, err
	}
	applicantID, _, _, err := s.apps.GetAuthorization(ctx, a.ApplicationID)
	if err != nil {
		return types.Assessment{}, err
	}
	if applicantID != actor.ID {
		return types.Assessment{}, fmt.Errorf("assessment %d belongs to another applicant: %w", id, ErrForbidden)
	}
	if a.Status != types.AssessmentPending {
		return types.Assessment{}, fmt.Errorf("assessment already completed: %w", ErrConflict)
	}

	a.Answers = answers
	a.Score = Score(a.Questions, answers)
	a.Passed = a.Score >= a.PassingScore
	a.TimeTakenMinutes = timeTakenMinutes
	a.Status = types.AssessmentCompleted
	now := time.Now()
	a.CompletedAt = &now

	return s.repo.RecordSubmission(ctx, a)
}

// Get returns an assessment to the applicant, the owning recruiter, or
// an admin. Correct answers are stripped from candidate-facing
// responses by the handler, not here.
func (s *AssessmentService) Get(ctx context.Context, actor types.User, id int) (types.Assessment, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Assessment{}, err
	}
	if err := s.authorize(ctx, actor, a.ApplicationID); err != nil {
		return types.Assessment{}, err
	}
	return a, nil
}

// ListForApplication returns an application's assessments to the same
// audience as Get.
func (s *AssessmentService) ListForApplication(ctx context.Context, actor types.User, applicationID int) ([]types.Assessment, error) {
	if err := s.authorize(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	return s.repo.ListByApplication(ctx, applicationID)
}

func (s *AssessmentService) authorize(ctx context.Context, actor types.User, applicationID int) error {
	applicantID, recruiterID, _, err := s.apps.GetAuthorization(ctx, applicationID)
	if err != nil {
		return err
	}
	if actor.ID != applicantID && actor.ID != recruiterID && actor.RoleName != types.RoleAdmin {
		return fmt.Errorf("application %d is not visible to user %d: %w", applicationID, actor.ID, ErrForbidden)
	}
	return nil
}

// Score grades answers against questions on a 0-100 scale. A
// multiple-choice question is worth one point for an exact
// (whitespace-trimmed) match. A coding question is worth the fraction
// of its test cases whose expected output appears verbatim in the
// answer; with no test cases it scores zero. Missing answers score
// zero.
func Score(questions []types.Question, answers []string) float64 {
	if len(questions) == 0 {
		return 0
	}

	var points float64
	for i, q := range questions {
		var answer string
		if i < len(answers) {
			answer = answers[i]
		}
		switch q.Type {
		case types.QuestionMultipleChoice:
			if strings.TrimSpace(answer) == strings.TrimSpace(q.CorrectAnswer) && strings.TrimSpace(answer) != "" {
				points++
			}
		case types.QuestionCoding:
			if len(q.TestCases) == 0 {
				continue
			}
			passed := 0
			for _, tc := range q.TestCases {
				if tc.ExpectedOutput != "" && strings.Contains(answer, tc.ExpectedOutput) {
					passed++
				}
			}
			points += float64(passed) / float64(len(q.TestCases))
		}
	}

	return points / float64(len(questions)) * 100
}
