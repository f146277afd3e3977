package memory

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/models"
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type progressKey struct {
	learnerID   uuid.UUID
	classroomID uuid.UUID
}

// Store is an in-memory implementation of the postgres repositories. It backs
// the service tests and mirrors the storage-level atomicity contracts: the
// capacity-guarded append, the enroll unit of work and the attempt counter
// all happen under a single lock hold.
type Store struct {
	mu         sync.Mutex
	courses    map[uuid.UUID]*models.Course
	classrooms map[uuid.UUID]*models.Classroom
	progress   map[progressKey]*models.Progress

	lockMu       sync.Mutex
	learnerLocks map[uuid.UUID]*sync.Mutex

	// OnEnrollCommit, when set, runs after the membership append and before
	// the progress insert inside EnrollStudent. A returned error leaves the
	// store half-written, standing in for an ambiguous commit.
	OnEnrollCommit func() error
}

func NewStore() *Store {
	return &Store{
		courses:      make(map[uuid.UUID]*models.Course),
		classrooms:   make(map[uuid.UUID]*models.Classroom),
		progress:     make(map[progressKey]*models.Progress),
		learnerLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// --- catalog ---

func (s *Store) AddCourse(course *models.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.ID] = course
}

func (s *Store) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	clone := *course
	clone.Modules = models.CloneModules(course.Modules)
	return &clone, nil
}

// --- classrooms ---

func cloneClassroom(c *models.Classroom) *models.Classroom {
	clone := *c
	clone.Syllabus = models.CloneModules(c.Syllabus)
	clone.Students = append([]uuid.UUID(nil), c.Students...)
	clone.QuizBank = make([]models.ModuleQuiz, len(c.QuizBank))
	for i, q := range c.QuizBank {
		clone.QuizBank[i] = models.ModuleQuiz{
			ModuleIndex: q.ModuleIndex,
			Questions:   append([]models.Question(nil), q.Questions...),
		}
	}
	if clone.Students == nil {
		clone.Students = []uuid.UUID{}
	}
	return &clone
}

func (s *Store) CreateClassroom(_ context.Context, c *models.Classroom) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt
	s.classrooms[c.ID] = cloneClassroom(c)
	return nil
}

func (s *Store) ClassroomByID(_ context.Context, id uuid.UUID) (*models.Classroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classrooms[id]
	if !ok {
		return nil, app_errors.ErrClassroomNotFound
	}
	return cloneClassroom(c), nil
}

func (s *Store) ListByMentor(_ context.Context, mentorID uuid.UUID) ([]models.Classroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Classroom
	for _, c := range s.classrooms {
		if c.MentorID == mentorID {
			out = append(out, *cloneClassroom(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) OpenClassrooms(_ context.Context, courseID uuid.UUID) ([]models.Classroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Classroom
	for _, c := range s.classrooms {
		if c.CourseID == courseID && c.IsActive && len(c.Students) < models.ClassroomCapacity {
			out = append(out, *cloneClassroom(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) IsEnrolledInCourse(_ context.Context, courseID, learnerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.classrooms {
		if c.CourseID == courseID && c.HasStudent(learnerID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SetSyllabusViewed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classrooms[id]
	if !ok {
		return app_errors.ErrClassroomNotFound
	}
	c.SyllabusViewed = true
	return nil
}

func (s *Store) SetActive(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classrooms[id]
	if !ok {
		return app_errors.ErrClassroomNotFound
	}
	c.IsActive = true
	return nil
}

func (s *Store) SaveQuizBank(_ context.Context, id uuid.UUID, bank []models.ModuleQuiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classrooms[id]
	if !ok {
		return app_errors.ErrClassroomNotFound
	}
	c.QuizBank = bank
	return nil
}

func (s *Store) SaveSyllabus(_ context.Context, id uuid.UUID, syllabus []models.Module) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classrooms[id]
	if !ok {
		return app_errors.ErrClassroomNotFound
	}
	c.Syllabus = syllabus
	return nil
}

func (s *Store) DeleteClassroom(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classrooms[id]; !ok {
		return app_errors.ErrClassroomNotFound
	}
	delete(s.classrooms, id)
	return nil
}

// --- progress ---

func cloneProgress(p *models.Progress) *models.Progress {
	clone := *p
	clone.Modules = append([]models.ModuleProgress(nil), p.Modules...)
	return &clone
}

func (s *Store) ProgressByPair(_ context.Context, learnerID, classroomID uuid.UUID) (*models.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[progressKey{learnerID, classroomID}]
	if !ok {
		return nil, app_errors.ErrProgressNotFound
	}
	return cloneProgress(p), nil
}

func (s *Store) HasActiveEnrollment(_ context.Context, learnerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, p := range s.progress {
		if key.learnerID == learnerID && !p.IsCourseCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) IncrementAttempts(_ context.Context, learnerID, classroomID uuid.UUID, moduleIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[progressKey{learnerID, classroomID}]
	if !ok {
		return app_errors.ErrModuleNotFound
	}
	m := p.ModuleAt(moduleIndex)
	if m == nil {
		return app_errors.ErrModuleNotFound
	}
	m.Attempts++
	return nil
}

func (s *Store) RecordPass(_ context.Context, learnerID, classroomID uuid.UUID, moduleIndex int, score int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[progressKey{learnerID, classroomID}]
	if !ok {
		return false, app_errors.ErrModuleNotFound
	}
	m := p.ModuleAt(moduleIndex)
	if m == nil {
		return false, app_errors.ErrModuleNotFound
	}
	m.Completed = true
	m.PassStatus = true
	m.QuizScore = score
	p.IsCourseCompleted = p.AllModulesCompleted()
	return p.IsCourseCompleted, nil
}

// --- enrollment unit of work ---

func (s *Store) WithLearnerLock(_ context.Context, learnerID uuid.UUID, fn func(ctx context.Context) error) error {
	s.lockMu.Lock()
	lock, ok := s.learnerLocks[learnerID]
	if !ok {
		lock = &sync.Mutex{}
		s.learnerLocks[learnerID] = lock
	}
	s.lockMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(context.Background())
}

func (s *Store) EnrollStudent(_ context.Context, classroomID uuid.UUID, p *models.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classrooms[classroomID]
	if !ok {
		return app_errors.ErrClassroomNotFound
	}
	if !c.HasCapacity() || c.HasStudent(p.LearnerID) {
		return app_errors.ErrClassroomFull
	}
	c.Students = append(c.Students, p.LearnerID)

	if s.OnEnrollCommit != nil {
		if err := s.OnEnrollCommit(); err != nil {
			return app_errors.ErrEnrollmentInconsistent
		}
	}

	s.progress[progressKey{p.LearnerID, classroomID}] = cloneProgress(p)
	return nil
}

func (s *Store) Withdraw(_ context.Context, classroomID, learnerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classrooms[classroomID]
	if !ok {
		return app_errors.ErrClassroomNotFound
	}
	for i, id := range c.Students {
		if id == learnerID {
			c.Students = append(c.Students[:i], c.Students[i+1:]...)
			return nil
		}
	}
	return app_errors.ErrNotClassMember
}

func (s *Store) Reassign(_ context.Context, learnerID, fromClassroomID, toClassroomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.classrooms[fromClassroomID]
	if !ok {
		return app_errors.ErrClassroomNotFound
	}
	to, ok := s.classrooms[toClassroomID]
	if !ok {
		return app_errors.ErrClassroomNotFound
	}
	if !from.HasStudent(learnerID) {
		return app_errors.ErrNotClassMember
	}
	if !to.HasCapacity() || to.HasStudent(learnerID) {
		return app_errors.ErrClassroomFull
	}

	for i, id := range from.Students {
		if id == learnerID {
			from.Students = append(from.Students[:i], from.Students[i+1:]...)
			break
		}
	}
	to.Students = append(to.Students, learnerID)

	key := progressKey{learnerID, fromClassroomID}
	if p, ok := s.progress[key]; ok {
		delete(s.progress, key)
		p.ClassroomID = toClassroomID
		s.progress[progressKey{learnerID, toClassroomID}] = p
	}
	return nil
}
