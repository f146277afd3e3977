package assessment

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/models"
	"LearnSphere/internal/notify"
	"LearnSphere/internal/storage/memory"
	"LearnSphere/pkg/logger"
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memory.Store
	svc       *Service
	room      *models.Classroom
	learnerID uuid.UUID
}

// quiz builds a four-question quiz whose correct answers are all "a".
func quiz(moduleIndex int) models.ModuleQuiz {
	questions := make([]models.Question, 4)
	for i := range questions {
		questions[i] = models.Question{
			Text:          "pick a",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
		}
	}
	return models.ModuleQuiz{ModuleIndex: moduleIndex, Questions: questions}
}

// newFixture seeds an active two-module classroom with one enrolled learner.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	log := logger.Discard()

	room := &models.Classroom{
		ID:       uuid.New(),
		CourseID: uuid.New(),
		MentorID: uuid.New(),
		Syllabus: []models.Module{
			{ID: uuid.New(), Title: "first"},
			{ID: uuid.New(), Title: "second"},
		},
		QuizBank:       []models.ModuleQuiz{quiz(0), quiz(1)},
		SyllabusViewed: true,
		IsActive:       true,
	}
	require.NoError(t, store.CreateClassroom(ctx, room))

	learnerID := uuid.New()
	p := models.NewProgress(learnerID, room.ID, room.CourseID, len(room.Syllabus))
	require.NoError(t, store.EnrollStudent(ctx, room.ID, p))

	return &fixture{
		store:     store,
		svc:       NewService(log, store, store, notify.NewLogPublisher(log)),
		room:      room,
		learnerID: learnerID,
	}
}

func TestLearnerQuizView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown classroom", func(t *testing.T) {
		_, err := f.svc.LearnerQuizView(ctx, uuid.New(), 0)
		assert.ErrorIs(t, err, app_errors.ErrClassroomNotFound)
	})

	t.Run("module without a quiz", func(t *testing.T) {
		_, err := f.svc.LearnerQuizView(ctx, f.room.ID, 7)
		assert.ErrorIs(t, err, app_errors.ErrQuizNotFound)
	})

	t.Run("strips correct answers", func(t *testing.T) {
		view, err := f.svc.LearnerQuizView(ctx, f.room.ID, 0)
		require.NoError(t, err)
		require.Len(t, view.Questions, 4)
		for _, q := range view.Questions {
			assert.Equal(t, "pick a", q.Text)
			assert.Len(t, q.Options, 4)
		}
	})
}

func TestSubmitScoring(t *testing.T) {
	ctx := context.Background()

	t.Run("all correct passes at 100", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 0, []string{"a", "a", "a", "a"})
		require.NoError(t, err)
		assert.True(t, result.Passed)
		assert.Equal(t, 4, result.Score)
		assert.Equal(t, 100, result.Percentage)
		assert.Equal(t, []string{"a", "a", "a", "a"}, result.CorrectAnswers)
		assert.False(t, result.IsCourseCompleted)

		p, err := f.store.ProgressByPair(ctx, f.learnerID, f.room.ID)
		require.NoError(t, err)
		assert.True(t, p.Modules[0].Completed)
		assert.True(t, p.Modules[0].PassStatus)
		assert.Equal(t, 4, p.Modules[0].QuizScore)
		assert.Equal(t, 1, p.Modules[0].Attempts)
		assert.False(t, p.IsCourseCompleted)
	})

	t.Run("half correct is the pass boundary and completes the course", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 0, []string{"a", "a", "a", "a"})
		require.NoError(t, err)

		result, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 1, []string{"a", "a", "b", "b"})
		require.NoError(t, err)
		assert.True(t, result.Passed)
		assert.Equal(t, 2, result.Score)
		assert.Equal(t, 50, result.Percentage)
		assert.True(t, result.IsCourseCompleted)

		p, err := f.store.ProgressByPair(ctx, f.learnerID, f.room.ID)
		require.NoError(t, err)
		assert.True(t, p.IsCourseCompleted)
	})

	t.Run("failure reveals nothing beyond the verdict", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 0, []string{"a", "b", "b", "b"})
		require.NoError(t, err)
		assert.False(t, result.Passed)
		assert.Empty(t, result.CorrectAnswers)
		assert.Zero(t, result.Score)
		assert.Zero(t, result.Percentage)
		assert.NotEmpty(t, result.Message)

		p, err := f.store.ProgressByPair(ctx, f.learnerID, f.room.ID)
		require.NoError(t, err)
		assert.False(t, p.Modules[0].Completed)
		assert.False(t, p.Modules[0].PassStatus)
		assert.Zero(t, p.Modules[0].QuizScore)
		assert.Equal(t, 1, p.Modules[0].Attempts)
	})

	t.Run("failed retry never downgrades a pass", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 0, []string{"a", "a", "a", "a"})
		require.NoError(t, err)

		result, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 0, []string{"b", "b", "b", "b"})
		require.NoError(t, err)
		assert.False(t, result.Passed)

		p, err := f.store.ProgressByPair(ctx, f.learnerID, f.room.ID)
		require.NoError(t, err)
		assert.True(t, p.Modules[0].Completed)
		assert.Equal(t, 4, p.Modules[0].QuizScore)
		assert.Equal(t, 2, p.Modules[0].Attempts)
	})

	t.Run("duplicate pass is idempotent but still counts the attempt", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 0, []string{"a", "a", "a", "a"})
		require.NoError(t, err)

		result, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 0, []string{"a", "a", "a", "a"})
		require.NoError(t, err)
		assert.True(t, result.Passed)

		p, err := f.store.ProgressByPair(ctx, f.learnerID, f.room.ID)
		require.NoError(t, err)
		assert.True(t, p.Modules[0].Completed)
		assert.True(t, p.Modules[0].PassStatus)
		assert.Equal(t, 4, p.Modules[0].QuizScore)
		assert.Equal(t, 2, p.Modules[0].Attempts)
	})
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("no progress record", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, uuid.New(), f.room.ID, 0, []string{"a", "a", "a", "a"})
		assert.ErrorIs(t, err, app_errors.ErrProgressNotFound)
	})

	t.Run("no quiz for module", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 9, []string{"a"})
		assert.ErrorIs(t, err, app_errors.ErrQuizNotFound)
	})

	t.Run("answer count mismatch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 0, []string{"a", "a"})
		assert.ErrorIs(t, err, app_errors.ErrAnswerCountMismatch)

		p, err := f.store.ProgressByPair(ctx, f.learnerID, f.room.ID)
		require.NoError(t, err)
		assert.Zero(t, p.Modules[0].Attempts)
	})
}

func TestConcurrentSubmissionsCountEveryAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const submissions = 16
	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		answers := []string{"b", "b", "b", "b"}
		if i%2 == 0 {
			answers = []string{"a", "a", "a", "a"}
		}
		wg.Add(1)
		go func(answers []string) {
			defer wg.Done()
			_, err := f.svc.Submit(ctx, f.learnerID, f.room.ID, 0, answers)
			assert.NoError(t, err)
		}(answers)
	}
	wg.Wait()

	p, err := f.store.ProgressByPair(ctx, f.learnerID, f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, submissions, p.Modules[0].Attempts)
	assert.True(t, p.Modules[0].Completed)
	assert.Equal(t, 4, p.Modules[0].QuizScore)
}

func TestLearnerProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.svc.LearnerProgress(ctx, f.learnerID, f.room.ID)
	require.NoError(t, err)
	assert.Len(t, p.Modules, 2)

	_, err = f.svc.LearnerProgress(ctx, uuid.New(), f.room.ID)
	assert.ErrorIs(t, err, app_errors.ErrProgressNotFound)
}
