package enrollment

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/models"
	"LearnSphere/internal/notify"
	"LearnSphere/internal/service/classroom"
	"LearnSphere/internal/storage/memory"
	"LearnSphere/pkg/logger"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memory.Store
	allocator *classroom.AllocatorService
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.Discard()
	publisher := notify.NewLogPublisher(log)
	alloc := classroom.NewAllocatorService(log, store, store, publisher)
	return &fixture{
		store:     store,
		allocator: alloc,
		svc:       NewService(log, store, store, alloc, store, publisher, 0),
	}
}

func (f *fixture) addCourse(t *testing.T, moduleCount int) uuid.UUID {
	t.Helper()
	course := &models.Course{ID: uuid.New(), Title: "course"}
	for i := 0; i < moduleCount; i++ {
		course.Modules = append(course.Modules, models.Module{
			ID:     uuid.New(),
			Title:  "module",
			Topics: []models.Topic{{ID: uuid.New(), Title: "topic", Content: "text"}},
		})
	}
	f.store.AddCourse(course)
	return course.ID
}

// openClassroom opens and activates a classroom ready to take enrollments.
func (f *fixture) openClassroom(t *testing.T, courseID uuid.UUID) *models.Classroom {
	t.Helper()
	ctx := context.Background()
	mentorID := uuid.New()
	room, err := f.allocator.CreateClassroom(ctx, courseID, mentorID)
	require.NoError(t, err)
	_, err = f.allocator.MarkSyllabusViewed(ctx, room.ID, mentorID)
	require.NoError(t, err)
	questions := make([]models.Question, 4)
	for i := range questions {
		questions[i] = models.Question{Text: "q", Options: []string{"a", "b"}, CorrectAnswer: "a"}
	}
	_, err = f.allocator.UpsertQuiz(ctx, room.ID, mentorID, 0, questions)
	require.NoError(t, err)
	room, err = f.allocator.Activate(ctx, room.ID, mentorID)
	require.NoError(t, err)
	return room
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()

	t.Run("lands in the open classroom and seeds progress", func(t *testing.T) {
		f := newFixture(t)
		courseID := f.addCourse(t, 2)
		room := f.openClassroom(t, courseID)
		learnerID := uuid.New()

		ticket, err := f.svc.Enroll(ctx, learnerID, courseID)
		require.NoError(t, err)
		assert.Equal(t, room.ID, ticket.ClassroomID)
		assert.Equal(t, room.MentorID, ticket.MentorID)

		p, err := f.store.ProgressByPair(ctx, learnerID, room.ID)
		require.NoError(t, err)
		require.Len(t, p.Modules, 2)
		assert.False(t, p.IsCourseCompleted)
		for _, m := range p.Modules {
			assert.False(t, m.Completed)
			assert.Zero(t, m.Attempts)
		}
	})

	t.Run("no active classroom", func(t *testing.T) {
		f := newFixture(t)
		courseID := f.addCourse(t, 1)
		_, err := f.svc.Enroll(ctx, uuid.New(), courseID)
		assert.ErrorIs(t, err, app_errors.ErrNoOpenClassroom)
	})

	t.Run("one course at a time", func(t *testing.T) {
		f := newFixture(t)
		courseX := f.addCourse(t, 1)
		courseY := f.addCourse(t, 1)
		f.openClassroom(t, courseX)
		f.openClassroom(t, courseY)
		learnerID := uuid.New()

		_, err := f.svc.Enroll(ctx, learnerID, courseX)
		require.NoError(t, err)
		_, err = f.svc.Enroll(ctx, learnerID, courseY)
		assert.ErrorIs(t, err, app_errors.ErrActiveEnrollmentExists)
	})

	t.Run("completed course cannot be re-entered", func(t *testing.T) {
		f := newFixture(t)
		courseID := f.addCourse(t, 1)
		room := f.openClassroom(t, courseID)
		learnerID := uuid.New()

		_, err := f.svc.Enroll(ctx, learnerID, courseID)
		require.NoError(t, err)
		_, err = f.store.RecordPass(ctx, learnerID, room.ID, 0, 4)
		require.NoError(t, err)

		_, err = f.svc.Enroll(ctx, learnerID, courseID)
		assert.ErrorIs(t, err, app_errors.ErrAlreadyEnrolled)
	})

	t.Run("fills the oldest classroom first", func(t *testing.T) {
		f := newFixture(t)
		courseID := f.addCourse(t, 1)
		first := f.openClassroom(t, courseID)
		time.Sleep(2 * time.Millisecond)
		f.openClassroom(t, courseID)

		ticket, err := f.svc.Enroll(ctx, uuid.New(), courseID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, ticket.ClassroomID)
	})

	t.Run("inconsistent join surfaces as fatal", func(t *testing.T) {
		f := newFixture(t)
		courseID := f.addCourse(t, 1)
		f.openClassroom(t, courseID)
		f.store.OnEnrollCommit = func() error { return assert.AnError }

		_, err := f.svc.Enroll(ctx, uuid.New(), courseID)
		assert.ErrorIs(t, err, app_errors.ErrEnrollmentInconsistent)
	})
}

func TestEnrollCapacityRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	courseID := f.addCourse(t, 1)
	room := f.openClassroom(t, courseID)

	const competitors = models.ClassroomCapacity + 10
	var wg sync.WaitGroup
	results := make(chan error, competitors)
	for i := 0; i < competitors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Enroll(ctx, uuid.New(), courseID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var joined, rejected int
	for err := range results {
		switch {
		case err == nil:
			joined++
		default:
			assert.ErrorIs(t, err, app_errors.ErrNoOpenClassroom)
			rejected++
		}
	}
	assert.Equal(t, models.ClassroomCapacity, joined)
	assert.Equal(t, competitors-models.ClassroomCapacity, rejected)

	final, err := f.store.ClassroomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, final.Students, models.ClassroomCapacity)
}

func TestEnrollSingleCourseRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	courseX := f.addCourse(t, 1)
	courseY := f.addCourse(t, 1)
	f.openClassroom(t, courseX)
	f.openClassroom(t, courseY)
	learnerID := uuid.New()

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, courseID := range []uuid.UUID{courseX, courseY} {
		wg.Add(1)
		go func(courseID uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.Enroll(ctx, learnerID, courseID)
			results <- err
		}(courseID)
	}
	wg.Wait()
	close(results)

	var ok, conflict int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, app_errors.ErrActiveEnrollmentExists)
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)
}

func TestUnenroll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	courseID := f.addCourse(t, 1)
	room := f.openClassroom(t, courseID)
	learnerID := uuid.New()
	_, err := f.svc.Enroll(ctx, learnerID, courseID)
	require.NoError(t, err)

	t.Run("unknown classroom", func(t *testing.T) {
		err := f.svc.Unenroll(ctx, learnerID, uuid.New())
		assert.ErrorIs(t, err, app_errors.ErrClassroomNotFound)
	})

	t.Run("not a member", func(t *testing.T) {
		err := f.svc.Unenroll(ctx, uuid.New(), room.ID)
		assert.ErrorIs(t, err, app_errors.ErrNotClassMember)
	})

	t.Run("frees the slot, keeps the ledger", func(t *testing.T) {
		require.NoError(t, f.svc.Unenroll(ctx, learnerID, room.ID))

		final, err := f.store.ClassroomByID(ctx, room.ID)
		require.NoError(t, err)
		assert.False(t, final.HasStudent(learnerID))

		// The incomplete record still blocks new enrollments.
		_, err = f.store.ProgressByPair(ctx, learnerID, room.ID)
		require.NoError(t, err)
		otherCourse := f.addCourse(t, 1)
		f.openClassroom(t, otherCourse)
		_, err = f.svc.Enroll(ctx, learnerID, otherCourse)
		assert.ErrorIs(t, err, app_errors.ErrActiveEnrollmentExists)
	})
}

func TestReassign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	courseID := f.addCourse(t, 1)
	source := f.openClassroom(t, courseID)
	target := f.openClassroom(t, courseID)
	learnerID := uuid.New()
	_, err := f.svc.Enroll(ctx, learnerID, courseID)
	require.NoError(t, err)

	t.Run("course mismatch", func(t *testing.T) {
		otherCourse := f.addCourse(t, 1)
		foreign := f.openClassroom(t, otherCourse)
		err := f.svc.Reassign(ctx, learnerID, source.ID, foreign.ID)
		assert.ErrorIs(t, err, app_errors.ErrCourseMismatch)
	})

	t.Run("target at capacity", func(t *testing.T) {
		for i := 0; i < models.ClassroomCapacity; i++ {
			p := models.NewProgress(uuid.New(), target.ID, courseID, 1)
			require.NoError(t, f.store.EnrollStudent(ctx, target.ID, p))
		}
		err := f.svc.Reassign(ctx, learnerID, source.ID, target.ID)
		assert.ErrorIs(t, err, app_errors.ErrClassroomFull)
	})

	t.Run("moves membership and re-keys progress", func(t *testing.T) {
		fresh := f.openClassroom(t, courseID)
		require.NoError(t, f.svc.Reassign(ctx, learnerID, source.ID, fresh.ID))

		src, err := f.store.ClassroomByID(ctx, source.ID)
		require.NoError(t, err)
		assert.False(t, src.HasStudent(learnerID))
		dst, err := f.store.ClassroomByID(ctx, fresh.ID)
		require.NoError(t, err)
		assert.True(t, dst.HasStudent(learnerID))

		_, err = f.store.ProgressByPair(ctx, learnerID, source.ID)
		assert.ErrorIs(t, err, app_errors.ErrProgressNotFound)
		moved, err := f.store.ProgressByPair(ctx, learnerID, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, fresh.ID, moved.ClassroomID)
	})
}

func TestDeleteClassroom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	courseID := f.addCourse(t, 1)
	room := f.openClassroom(t, courseID)
	learnerID := uuid.New()
	_, err := f.svc.Enroll(ctx, learnerID, courseID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteClassroom(ctx, room.ID))
	assert.ErrorIs(t, f.svc.DeleteClassroom(ctx, room.ID), app_errors.ErrClassroomNotFound)

	// The slot is gone but the ledger record is orphaned, not deleted.
	_, err = f.store.ClassroomByID(ctx, room.ID)
	assert.ErrorIs(t, err, app_errors.ErrClassroomNotFound)
	p, err := f.store.ProgressByPair(ctx, learnerID, room.ID)
	require.NoError(t, err)
	assert.False(t, p.IsCourseCompleted)
}
