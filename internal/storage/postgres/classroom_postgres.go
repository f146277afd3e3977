package postgres

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClassroomPostgres persists the classroom aggregate. The syllabus snapshot
// and the quiz bank are document-shaped and live as jsonb; membership lives
// as a uuid array so joins can be guarded by a single conditional UPDATE.
type ClassroomPostgres struct {
	db *pgxpool.Pool
}

func NewClassroomPostgres(db *pgxpool.Pool) *ClassroomPostgres {
	return &ClassroomPostgres{db: db}
}

const classroomColumns = `
            id, course_id, mentor_id, syllabus, quiz_bank, students,
            syllabus_viewed, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClassroom(row rowScanner) (*models.Classroom, error) {
	c := &models.Classroom{}
	var syllabusJSON, quizBankJSON []byte
	err := row.Scan(
		&c.ID,
		&c.CourseID,
		&c.MentorID,
		&syllabusJSON,
		&quizBankJSON,
		&c.Students,
		&c.SyllabusViewed,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(syllabusJSON, &c.Syllabus); err != nil {
		return nil, fmt.Errorf("failed to decode syllabus snapshot: %w", err)
	}
	if err := json.Unmarshal(quizBankJSON, &c.QuizBank); err != nil {
		return nil, fmt.Errorf("failed to decode quiz bank: %w", err)
	}
	if c.Students == nil {
		c.Students = []uuid.UUID{}
	}
	return c, nil
}

func (r *ClassroomPostgres) CreateClassroom(ctx context.Context, c *models.Classroom) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	syllabusJSON, err := json.Marshal(c.Syllabus)
	if err != nil {
		return fmt.Errorf("failed to encode syllabus snapshot: %w", err)
	}
	quizBankJSON, err := json.Marshal(c.QuizBank)
	if err != nil {
		return fmt.Errorf("failed to encode quiz bank: %w", err)
	}

	const query = `
        INSERT INTO classrooms (
            id, course_id, mentor_id, syllabus, quiz_bank, students,
            syllabus_viewed, is_active, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err = r.db.Exec(ctx, query,
		c.ID, c.CourseID, c.MentorID, syllabusJSON, quizBankJSON, c.Students,
		c.SyllabusViewed, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert classroom: %w", err)
	}
	return nil
}

func (r *ClassroomPostgres) ClassroomByID(ctx context.Context, id uuid.UUID) (*models.Classroom, error) {
	query := `SELECT` + classroomColumns + ` FROM classrooms WHERE id = $1`
	c, err := scanClassroom(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrClassroomNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *ClassroomPostgres) ListByMentor(ctx context.Context, mentorID uuid.UUID) ([]models.Classroom, error) {
	query := `SELECT` + classroomColumns + `
          FROM classrooms
         WHERE mentor_id = $1
         ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentor classrooms: %w", err)
	}
	defer rows.Close()

	var classrooms []models.Classroom
	for rows.Next() {
		c, err := scanClassroom(rows)
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, *c)
	}
	return classrooms, rows.Err()
}

// OpenClassrooms lists the enrollment candidates for a course: active, below
// capacity, oldest first with the id as a deterministic tiebreak.
func (r *ClassroomPostgres) OpenClassrooms(ctx context.Context, courseID uuid.UUID) ([]models.Classroom, error) {
	query := `SELECT` + classroomColumns + `
          FROM classrooms
         WHERE course_id = $1
           AND is_active
           AND cardinality(students) < $2
         ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, courseID, models.ClassroomCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to query open classrooms: %w", err)
	}
	defer rows.Close()

	var classrooms []models.Classroom
	for rows.Next() {
		c, err := scanClassroom(rows)
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, *c)
	}
	return classrooms, rows.Err()
}

// IsEnrolledInCourse reports whether the learner holds a slot in any
// classroom of the course, regardless of that classroom's state.
func (r *ClassroomPostgres) IsEnrolledInCourse(ctx context.Context, courseID, learnerID uuid.UUID) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM classrooms
             WHERE course_id = $1 AND students @> ARRAY[$2]::uuid[]
        )
    `
	var enrolled bool
	if err := r.db.QueryRow(ctx, query, courseID, learnerID).Scan(&enrolled); err != nil {
		return false, fmt.Errorf("failed to check course membership: %w", err)
	}
	return enrolled, nil
}

func (r *ClassroomPostgres) SetSyllabusViewed(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE classrooms
           SET syllabus_viewed = TRUE,
               updated_at = NOW()
         WHERE id = $1
    `
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrClassroomNotFound
	}
	return nil
}

func (r *ClassroomPostgres) SetActive(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE classrooms
           SET is_active = TRUE,
               updated_at = NOW()
         WHERE id = $1
    `
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrClassroomNotFound
	}
	return nil
}

func (r *ClassroomPostgres) SaveQuizBank(ctx context.Context, id uuid.UUID, bank []models.ModuleQuiz) error {
	quizBankJSON, err := json.Marshal(bank)
	if err != nil {
		return fmt.Errorf("failed to encode quiz bank: %w", err)
	}
	const query = `
        UPDATE classrooms
           SET quiz_bank = $2,
               updated_at = NOW()
         WHERE id = $1
    `
	cmdTag, err := r.db.Exec(ctx, query, id, quizBankJSON)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrClassroomNotFound
	}
	return nil
}

func (r *ClassroomPostgres) SaveSyllabus(ctx context.Context, id uuid.UUID, syllabus []models.Module) error {
	syllabusJSON, err := json.Marshal(syllabus)
	if err != nil {
		return fmt.Errorf("failed to encode syllabus snapshot: %w", err)
	}
	const query = `
        UPDATE classrooms
           SET syllabus = $2,
               updated_at = NOW()
         WHERE id = $1
    `
	cmdTag, err := r.db.Exec(ctx, query, id, syllabusJSON)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrClassroomNotFound
	}
	return nil
}

// DeleteClassroom removes the aggregate. Enrolled learners simply lose their
// slot; progress records are left behind as orphans.
func (r *ClassroomPostgres) DeleteClassroom(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM classrooms WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrClassroomNotFound
	}
	return nil
}
