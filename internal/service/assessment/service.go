package assessment

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/models"
	"LearnSphere/internal/notify"
	"LearnSphere/pkg/logger"
	"context"

	"github.com/google/uuid"
)

// PassThresholdPercent is the minimum percentage that counts as a pass.
const PassThresholdPercent = 50

const (
	passMessage = "quiz passed"
	failMessage = "quiz failed, try again"
)

type classroomRepo interface {
	ClassroomByID(ctx context.Context, id uuid.UUID) (*models.Classroom, error)
}

type progressRepo interface {
	ProgressByPair(ctx context.Context, learnerID, classroomID uuid.UUID) (*models.Progress, error)
	IncrementAttempts(ctx context.Context, learnerID, classroomID uuid.UUID, moduleIndex int) error
	RecordPass(ctx context.Context, learnerID, classroomID uuid.UUID, moduleIndex int, score int) (bool, error)
}

// Service scores quiz submissions and drives the progress ledger.
type Service struct {
	log           logger.Log
	classroomRepo classroomRepo
	progressRepo  progressRepo
	notifier      notify.Publisher
}

func NewService(log logger.Log, classroomRepo classroomRepo, progressRepo progressRepo, notifier notify.Publisher) *Service {
	return &Service{
		log:           log,
		classroomRepo: classroomRepo,
		progressRepo:  progressRepo,
		notifier:      notifier,
	}
}

// LearnerQuizView returns the module quiz with correct answers stripped.
// The redaction is a fairness invariant: the unredacted quiz never leaves
// this package except through a passing SubmissionResult.
func (s *Service) LearnerQuizView(ctx context.Context, classroomID uuid.UUID, moduleIndex int) (*models.QuizView, error) {
	c, err := s.classroomRepo.ClassroomByID(ctx, classroomID)
	if err != nil {
		return nil, err
	}
	quiz := c.QuizFor(moduleIndex)
	if quiz == nil {
		return nil, app_errors.ErrQuizNotFound
	}
	view := quiz.View()
	return &view, nil
}

// Submit scores the answers positionally against the module quiz. Every
// submission counts an attempt, pass or fail. A pass records the score and
// reveals the correct answers; a fail reveals nothing but the verdict, so
// repeated probing cannot extract partial credit.
func (s *Service) Submit(ctx context.Context, learnerID, classroomID uuid.UUID, moduleIndex int, answers []string) (*models.SubmissionResult, error) {
	c, err := s.classroomRepo.ClassroomByID(ctx, classroomID)
	if err != nil {
		return nil, err
	}
	quiz := c.QuizFor(moduleIndex)
	if quiz == nil {
		return nil, app_errors.ErrQuizNotFound
	}
	progress, err := s.progressRepo.ProgressByPair(ctx, learnerID, classroomID)
	if err != nil {
		return nil, err
	}
	if progress.ModuleAt(moduleIndex) == nil {
		return nil, app_errors.ErrModuleNotFound
	}
	if len(answers) != len(quiz.Questions) {
		return nil, app_errors.ErrAnswerCountMismatch
	}

	if err := s.progressRepo.IncrementAttempts(ctx, learnerID, classroomID, moduleIndex); err != nil {
		return nil, err
	}

	score := 0
	for i, q := range quiz.Questions {
		if answers[i] == q.CorrectAnswer {
			score++
		}
	}
	percentage := 100 * score / len(quiz.Questions)
	passed := percentage >= PassThresholdPercent

	go s.notifier.Publish(context.WithoutCancel(ctx), classroomID,
		notify.Event{Type: notify.EventQuizSubmitted, LearnerID: learnerID})

	if !passed {
		return &models.SubmissionResult{
			Passed:  false,
			Message: failMessage,
		}, nil
	}

	courseCompleted, err := s.progressRepo.RecordPass(ctx, learnerID, classroomID, moduleIndex, score)
	if err != nil {
		return nil, err
	}
	if courseCompleted {
		s.log.Info("course completed",
			"learner_id", learnerID.String(), "classroom_id", classroomID.String())
	}

	correct := make([]string, len(quiz.Questions))
	for i, q := range quiz.Questions {
		correct[i] = q.CorrectAnswer
	}
	return &models.SubmissionResult{
		Passed:            true,
		Score:             score,
		Percentage:        percentage,
		CorrectAnswers:    correct,
		IsCourseCompleted: courseCompleted,
		Message:           passMessage,
	}, nil
}

// LearnerProgress reads one learner's ledger for a classroom.
func (s *Service) LearnerProgress(ctx context.Context, learnerID, classroomID uuid.UUID) (*models.Progress, error) {
	return s.progressRepo.ProgressByPair(ctx, learnerID, classroomID)
}
