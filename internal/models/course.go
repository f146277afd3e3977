package models

import (
	"time"

	"github.com/google/uuid"
)

// Course is the admin-authored syllabus template. The core reads it when a
// mentor opens a classroom and never writes it back.
type Course struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Modules     []Module  `json:"modules"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Module struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Topics []Topic   `json:"topics"`
}

type Topic struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

// CloneModules deep-copies the syllabus so a classroom owns its snapshot
// outright. Mentor edits must never reach back into the course template.
func CloneModules(modules []Module) []Module {
	out := make([]Module, len(modules))
	for i, m := range modules {
		topics := make([]Topic, len(m.Topics))
		copy(topics, m.Topics)
		out[i] = Module{ID: m.ID, Title: m.Title, Topics: topics}
	}
	return out
}
