package classroom

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/models"
	"LearnSphere/internal/notify"
	"LearnSphere/pkg/logger"
	"context"

	"github.com/google/uuid"
)

// MinQuizQuestions is the smallest quiz a mentor may attach to a module.
const MinQuizQuestions = 4

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type classroomRepo interface {
	CreateClassroom(ctx context.Context, c *models.Classroom) error
	ClassroomByID(ctx context.Context, id uuid.UUID) (*models.Classroom, error)
	ListByMentor(ctx context.Context, mentorID uuid.UUID) ([]models.Classroom, error)
	OpenClassrooms(ctx context.Context, courseID uuid.UUID) ([]models.Classroom, error)
	SetSyllabusViewed(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID) error
	SaveQuizBank(ctx context.Context, id uuid.UUID, bank []models.ModuleQuiz) error
	SaveSyllabus(ctx context.Context, id uuid.UUID, syllabus []models.Module) error
}

// AllocatorService owns the classroom lifecycle on the mentor side: opening a
// classroom from a course snapshot, the activation gates, quiz bank upkeep
// and the enrollment-target choice.
type AllocatorService struct {
	log           logger.Log
	courseRepo    courseRepo
	classroomRepo classroomRepo
	notifier      notify.Publisher
}

func NewAllocatorService(log logger.Log, courseRepo courseRepo, classroomRepo classroomRepo, notifier notify.Publisher) *AllocatorService {
	return &AllocatorService{
		log:           log,
		courseRepo:    courseRepo,
		classroomRepo: classroomRepo,
		notifier:      notifier,
	}
}

// CreateClassroom opens a fresh, inactive classroom holding a deep copy of
// the course syllabus. A mentor may open any number of classrooms for the
// same course.
func (s *AllocatorService) CreateClassroom(ctx context.Context, courseID, mentorID uuid.UUID) (*models.Classroom, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	c := &models.Classroom{
		ID:       uuid.New(),
		CourseID: course.ID,
		MentorID: mentorID,
		Syllabus: models.CloneModules(course.Modules),
		Students: []uuid.UUID{},
		QuizBank: []models.ModuleQuiz{},
	}
	if err := s.classroomRepo.CreateClassroom(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("classroom created", "classroom_id", c.ID.String(), "course_id", courseID.String())
	return c, nil
}

// ownedClassroom loads a classroom and checks mentor ownership. A mismatch
// reads as not-found so mentors cannot probe for other mentors' classrooms.
func (s *AllocatorService) ownedClassroom(ctx context.Context, classroomID, mentorID uuid.UUID) (*models.Classroom, error) {
	c, err := s.classroomRepo.ClassroomByID(ctx, classroomID)
	if err != nil {
		return nil, err
	}
	if c.MentorID != mentorID {
		return nil, app_errors.ErrClassroomNotFound
	}
	return c, nil
}

func (s *AllocatorService) ClassroomForMentor(ctx context.Context, classroomID, mentorID uuid.UUID) (*models.Classroom, error) {
	return s.ownedClassroom(ctx, classroomID, mentorID)
}

func (s *AllocatorService) MentorClassrooms(ctx context.Context, mentorID uuid.UUID) ([]models.Classroom, error) {
	return s.classroomRepo.ListByMentor(ctx, mentorID)
}

// MarkSyllabusViewed records the mentor's acknowledgment. Idempotent.
func (s *AllocatorService) MarkSyllabusViewed(ctx context.Context, classroomID, mentorID uuid.UUID) (*models.Classroom, error) {
	c, err := s.ownedClassroom(ctx, classroomID, mentorID)
	if err != nil {
		return nil, err
	}
	if c.SyllabusViewed {
		return c, nil
	}
	if err := s.classroomRepo.SetSyllabusViewed(ctx, c.ID); err != nil {
		return nil, err
	}
	c.SyllabusViewed = true
	return c, nil
}

// UpsertQuiz replaces the question list for moduleIndex, or appends a new
// bank entry when none exists.
func (s *AllocatorService) UpsertQuiz(ctx context.Context, classroomID, mentorID uuid.UUID, moduleIndex int, questions []models.Question) (*models.Classroom, error) {
	if len(questions) < MinQuizQuestions {
		return nil, app_errors.ErrTooFewQuestions
	}
	if moduleIndex < 0 {
		return nil, app_errors.ErrModuleNotFound
	}
	c, err := s.ownedClassroom(ctx, classroomID, mentorID)
	if err != nil {
		return nil, err
	}

	if existing := c.QuizFor(moduleIndex); existing != nil {
		existing.Questions = questions
	} else {
		c.QuizBank = append(c.QuizBank, models.ModuleQuiz{ModuleIndex: moduleIndex, Questions: questions})
	}
	if err := s.classroomRepo.SaveQuizBank(ctx, c.ID, c.QuizBank); err != nil {
		return nil, err
	}
	return c, nil
}

// Activate flips the classroom into its teachable state. One-way: there is
// no deactivation. Gated on syllabus acknowledgment and a first-module quiz.
func (s *AllocatorService) Activate(ctx context.Context, classroomID, mentorID uuid.UUID) (*models.Classroom, error) {
	c, err := s.ownedClassroom(ctx, classroomID, mentorID)
	if err != nil {
		return nil, err
	}
	if c.IsActive {
		return c, nil
	}
	if !c.SyllabusViewed {
		return nil, app_errors.ErrSyllabusNotViewed
	}
	if c.QuizFor(0) == nil {
		return nil, app_errors.ErrFirstModuleQuizMissing
	}

	if err := s.classroomRepo.SetActive(ctx, c.ID); err != nil {
		return nil, err
	}
	c.IsActive = true
	s.log.Info("classroom activated", "classroom_id", c.ID.String())
	go s.notifier.Publish(context.WithoutCancel(ctx), c.ID, notify.Event{Type: notify.EventClassroomActivated})
	return c, nil
}

// SelectEnrollmentTarget picks the classroom a new enrollment should land in:
// the oldest active classroom of the course with a free slot. Returns nil
// when no classroom qualifies.
func (s *AllocatorService) SelectEnrollmentTarget(ctx context.Context, courseID uuid.UUID) (*models.Classroom, error) {
	open, err := s.classroomRepo.OpenClassrooms(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	return &open[0], nil
}

// UpdateTopicContent edits one topic's content inside the classroom's own
// snapshot. Modules and topics are addressed by id, not title. Titles are
// immutable here; the delivery layer additionally rejects requests that
// carry one.
func (s *AllocatorService) UpdateTopicContent(ctx context.Context, classroomID, mentorID, moduleID, topicID uuid.UUID, content string) (*models.Classroom, error) {
	c, err := s.ownedClassroom(ctx, classroomID, mentorID)
	if err != nil {
		return nil, err
	}

	var module *models.Module
	for i := range c.Syllabus {
		if c.Syllabus[i].ID == moduleID {
			module = &c.Syllabus[i]
			break
		}
	}
	if module == nil {
		return nil, app_errors.ErrModuleNotFound
	}

	var topic *models.Topic
	for i := range module.Topics {
		if module.Topics[i].ID == topicID {
			topic = &module.Topics[i]
			break
		}
	}
	if topic == nil {
		return nil, app_errors.ErrTopicNotFound
	}

	topic.Content = content
	if err := s.classroomRepo.SaveSyllabus(ctx, c.ID, c.Syllabus); err != nil {
		return nil, err
	}
	return c, nil
}
