package models

import (
	"time"

	"github.com/google/uuid"
)

// Progress tracks one learner inside one classroom. There is at most one
// record per (learner, classroom) pair, sized to the classroom's syllabus at
// enrollment time; the Modules slice never grows afterwards.
type Progress struct {
	LearnerID         uuid.UUID        `json:"learner_id"`
	ClassroomID       uuid.UUID        `json:"classroom_id"`
	CourseID          uuid.UUID        `json:"course_id"`
	Modules           []ModuleProgress `json:"modules"`
	IsCourseCompleted bool             `json:"is_course_completed"`
	CreatedAt         time.Time        `json:"created_at"`
}

type ModuleProgress struct {
	ModuleIndex int  `json:"module_index"`
	Completed   bool `json:"completed"`
	QuizScore   int  `json:"quiz_score"`
	Attempts    int  `json:"attempts"`
	PassStatus  bool `json:"pass_status"`
}

// NewProgress builds a zeroed record with one slot per syllabus module.
func NewProgress(learnerID, classroomID, courseID uuid.UUID, moduleCount int) *Progress {
	modules := make([]ModuleProgress, moduleCount)
	for i := range modules {
		modules[i].ModuleIndex = i
	}
	return &Progress{
		LearnerID:   learnerID,
		ClassroomID: classroomID,
		CourseID:    courseID,
		Modules:     modules,
		CreatedAt:   time.Now().UTC(),
	}
}

func (p *Progress) ModuleAt(moduleIndex int) *ModuleProgress {
	for i := range p.Modules {
		if p.Modules[i].ModuleIndex == moduleIndex {
			return &p.Modules[i]
		}
	}
	return nil
}

// AllModulesCompleted derives the course-completion flag.
func (p *Progress) AllModulesCompleted() bool {
	for i := range p.Modules {
		if !p.Modules[i].Completed {
			return false
		}
	}
	return len(p.Modules) > 0
}
