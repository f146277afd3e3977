package notify

import (
	"LearnSphere/pkg/logger"
	"context"

	"github.com/google/uuid"
)

const (
	EventClassroomActivated = "classroom.activated"
	EventLearnerJoined      = "enrollment.joined"
	EventLearnerLeft        = "enrollment.left"
	EventQuizSubmitted      = "quiz.submitted"
)

type Event struct {
	Type      string    `json:"type"`
	LearnerID uuid.UUID `json:"learner_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Publisher hands classroom events to the broadcast layer. Delivery is
// fire-and-forget: no ordering, no acknowledgment, and callers never block
// on it.
type Publisher interface {
	Publish(ctx context.Context, classroomID uuid.UUID, event Event) error
}

// LogPublisher writes events to the application log. It stands in for the
// real-time broadcast collaborator, which lives outside this service.
type LogPublisher struct {
	log logger.Log
}

func NewLogPublisher(log logger.Log) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, classroomID uuid.UUID, event Event) error {
	p.log.Info("classroom event",
		"classroom_id", classroomID.String(),
		"type", event.Type,
		"learner_id", event.LearnerID.String(),
		"detail", event.Detail,
	)
	return nil
}
