package enrollment

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/models"
	"LearnSphere/internal/notify"
	"LearnSphere/pkg/logger"
	"context"
	"errors"

	"github.com/google/uuid"
)

// DefaultSelectRetries bounds how often Enroll re-runs classroom selection
// after losing a capacity race.
const DefaultSelectRetries = 3

type classroomRepo interface {
	ClassroomByID(ctx context.Context, id uuid.UUID) (*models.Classroom, error)
	IsEnrolledInCourse(ctx context.Context, courseID, learnerID uuid.UUID) (bool, error)
	DeleteClassroom(ctx context.Context, id uuid.UUID) error
}

type progressRepo interface {
	HasActiveEnrollment(ctx context.Context, learnerID uuid.UUID) (bool, error)
}

type allocator interface {
	SelectEnrollmentTarget(ctx context.Context, courseID uuid.UUID) (*models.Classroom, error)
}

type enrollmentRepo interface {
	WithLearnerLock(ctx context.Context, learnerID uuid.UUID, fn func(ctx context.Context) error) error
	EnrollStudent(ctx context.Context, classroomID uuid.UUID, p *models.Progress) error
	Withdraw(ctx context.Context, classroomID, learnerID uuid.UUID) error
	Reassign(ctx context.Context, learnerID, fromClassroomID, toClassroomID uuid.UUID) error
}

// Service coordinates the one-active-course-at-a-time rule and the
// capacity-bounded classroom join.
type Service struct {
	log           logger.Log
	classroomRepo classroomRepo
	progressRepo  progressRepo
	allocator     allocator
	enrollRepo    enrollmentRepo
	notifier      notify.Publisher
	selectRetries int
}

func NewService(log logger.Log, classroomRepo classroomRepo, progressRepo progressRepo,
	alloc allocator, enrollRepo enrollmentRepo, notifier notify.Publisher, selectRetries int,
) *Service {
	if selectRetries <= 0 {
		selectRetries = DefaultSelectRetries
	}
	return &Service{
		log:           log,
		classroomRepo: classroomRepo,
		progressRepo:  progressRepo,
		allocator:     alloc,
		enrollRepo:    enrollRepo,
		notifier:      notifier,
		selectRetries: selectRetries,
	}
}

// EnrollmentTicket names where a learner landed.
type EnrollmentTicket struct {
	ClassroomID uuid.UUID `json:"classroom_id"`
	MentorID    uuid.UUID `json:"mentor_id"`
}

// Enroll places the learner into the oldest open classroom of the course.
// The whole flow runs under a per-learner lock so two concurrent enrolls for
// one learner cannot both pass the one-active-course gate. Losing a capacity
// race to another learner triggers a bounded re-selection.
func (s *Service) Enroll(ctx context.Context, learnerID, courseID uuid.UUID) (*EnrollmentTicket, error) {
	var ticket *EnrollmentTicket

	err := s.enrollRepo.WithLearnerLock(ctx, learnerID, func(ctx context.Context) error {
		active, err := s.progressRepo.HasActiveEnrollment(ctx, learnerID)
		if err != nil {
			return err
		}
		if active {
			return app_errors.ErrActiveEnrollmentExists
		}

		// One progress record per (learner, course), not just per
		// (learner, classroom): a completed course cannot be re-entered.
		enrolled, err := s.classroomRepo.IsEnrolledInCourse(ctx, courseID, learnerID)
		if err != nil {
			return err
		}
		if enrolled {
			return app_errors.ErrAlreadyEnrolled
		}

		for attempt := 0; attempt < s.selectRetries; attempt++ {
			target, err := s.allocator.SelectEnrollmentTarget(ctx, courseID)
			if err != nil {
				return err
			}
			if target == nil {
				return app_errors.ErrNoOpenClassroom
			}

			p := models.NewProgress(learnerID, target.ID, courseID, len(target.Syllabus))
			err = s.enrollRepo.EnrollStudent(ctx, target.ID, p)
			if errors.Is(err, app_errors.ErrClassroomFull) {
				s.log.Info("lost capacity race, reselecting classroom",
					"classroom_id", target.ID.String(), "learner_id", learnerID.String())
				continue
			}
			if err != nil {
				return err
			}

			ticket = &EnrollmentTicket{ClassroomID: target.ID, MentorID: target.MentorID}
			return nil
		}
		return app_errors.ErrNoOpenClassroom
	})
	if err != nil {
		if errors.Is(err, app_errors.ErrEnrollmentInconsistent) {
			s.log.ErrorErr("enrollment needs reconciliation", err,
				"learner_id", learnerID.String(), "course_id", courseID.String())
		}
		return nil, err
	}

	go s.notifier.Publish(context.WithoutCancel(ctx), ticket.ClassroomID,
		notify.Event{Type: notify.EventLearnerJoined, LearnerID: learnerID})
	return ticket, nil
}

// Unenroll frees the learner's slot. The progress record stays behind as the
// paper trail for the one-active-course gate.
func (s *Service) Unenroll(ctx context.Context, learnerID, classroomID uuid.UUID) error {
	if err := s.enrollRepo.Withdraw(ctx, classroomID, learnerID); err != nil {
		return err
	}
	go s.notifier.Publish(context.WithoutCancel(ctx), classroomID,
		notify.Event{Type: notify.EventLearnerLeft, LearnerID: learnerID})
	return nil
}

// Reassign moves a learner between two classrooms of the same course,
// re-keying the progress record to the target.
func (s *Service) Reassign(ctx context.Context, learnerID, fromClassroomID, toClassroomID uuid.UUID) error {
	from, err := s.classroomRepo.ClassroomByID(ctx, fromClassroomID)
	if err != nil {
		return err
	}
	to, err := s.classroomRepo.ClassroomByID(ctx, toClassroomID)
	if err != nil {
		return err
	}
	if from.CourseID != to.CourseID {
		return app_errors.ErrCourseMismatch
	}
	if !to.HasCapacity() {
		return app_errors.ErrClassroomFull
	}
	return s.enrollRepo.Reassign(ctx, learnerID, fromClassroomID, toClassroomID)
}

// DeleteClassroom drops the classroom outright. Members lose their slot;
// their progress records become orphans and are kept.
func (s *Service) DeleteClassroom(ctx context.Context, classroomID uuid.UUID) error {
	if err := s.classroomRepo.DeleteClassroom(ctx, classroomID); err != nil {
		return err
	}
	s.log.Info("classroom deleted", "classroom_id", classroomID.String())
	return nil
}
