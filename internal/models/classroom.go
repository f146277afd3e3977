package models

import (
	"time"

	"github.com/google/uuid"
)

// ClassroomCapacity bounds the students set of every classroom.
const ClassroomCapacity = 20

// Classroom is a mentor-owned instance of a course. It carries its own deep
// copy of the course syllabus, so mentor edits stay local to the classroom.
//
// IsActive is one-way: once a classroom is activated there is no path back,
// and activation requires SyllabusViewed plus a quiz for module 0.
type Classroom struct {
	ID             uuid.UUID   `json:"id"`
	CourseID       uuid.UUID   `json:"course_id"`
	MentorID       uuid.UUID   `json:"mentor_id"`
	Syllabus       []Module    `json:"syllabus"`
	Students       []uuid.UUID `json:"students"`
	QuizBank       []ModuleQuiz `json:"quiz_bank"`
	SyllabusViewed bool        `json:"syllabus_viewed"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ModuleQuiz binds an ordered question list to one syllabus module index.
// Module indexes are unique within a quiz bank.
type ModuleQuiz struct {
	ModuleIndex int        `json:"module_index"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

func (c *Classroom) HasCapacity() bool {
	return len(c.Students) < ClassroomCapacity
}

func (c *Classroom) HasStudent(learnerID uuid.UUID) bool {
	for _, id := range c.Students {
		if id == learnerID {
			return true
		}
	}
	return false
}

// QuizFor returns the quiz bank entry for moduleIndex, or nil.
func (c *Classroom) QuizFor(moduleIndex int) *ModuleQuiz {
	for i := range c.QuizBank {
		if c.QuizBank[i].ModuleIndex == moduleIndex {
			return &c.QuizBank[i]
		}
	}
	return nil
}
