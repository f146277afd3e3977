package postgres

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/models"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CoursePostgres reads the admin-authored catalog. The core never writes it.
type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	const courseQuery = `
        SELECT id, title, description, created_at, updated_at
          FROM courses
         WHERE id = $1
    `
	course := &models.Course{}
	row := r.db.QueryRow(ctx, courseQuery, id)
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}

	modules, err := r.modulesByCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Modules = modules
	return course, nil
}

func (r *CoursePostgres) modulesByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Module, error) {
	const moduleQuery = `
        SELECT id, title
          FROM course_modules
         WHERE course_id = $1
         ORDER BY module_order
    `
	rows, err := r.db.Query(ctx, moduleQuery, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course modules: %w", err)
	}
	defer rows.Close()

	var modules []models.Module
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.ID, &m.Title); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range modules {
		topics, err := r.topicsByModule(ctx, modules[i].ID)
		if err != nil {
			return nil, err
		}
		modules[i].Topics = topics
	}
	return modules, nil
}

func (r *CoursePostgres) topicsByModule(ctx context.Context, moduleID uuid.UUID) ([]models.Topic, error) {
	const topicQuery = `
        SELECT id, title, content
          FROM course_topics
         WHERE module_id = $1
         ORDER BY topic_order
    `
	rows, err := r.db.Query(ctx, topicQuery, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Title, &t.Content); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}
