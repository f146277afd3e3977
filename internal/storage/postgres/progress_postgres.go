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

type ProgressPostgres struct {
	db *pgxpool.Pool
}

func NewProgressPostgres(db *pgxpool.Pool) *ProgressPostgres {
	return &ProgressPostgres{db: db}
}

func (r *ProgressPostgres) ProgressByPair(ctx context.Context, learnerID, classroomID uuid.UUID) (*models.Progress, error) {
	const progressQuery = `
        SELECT learner_id, classroom_id, course_id, is_course_completed, created_at
          FROM progress
         WHERE learner_id = $1 AND classroom_id = $2
    `
	p := &models.Progress{}
	row := r.db.QueryRow(ctx, progressQuery, learnerID, classroomID)
	err := row.Scan(&p.LearnerID, &p.ClassroomID, &p.CourseID, &p.IsCourseCompleted, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrProgressNotFound
		}
		return nil, err
	}

	const moduleQuery = `
        SELECT module_index, completed, quiz_score, attempts, pass_status
          FROM progress_modules
         WHERE learner_id = $1 AND classroom_id = $2
         ORDER BY module_index
    `
	rows, err := r.db.Query(ctx, moduleQuery, learnerID, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query module progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.ModuleProgress
		if err := rows.Scan(&m.ModuleIndex, &m.Completed, &m.QuizScore, &m.Attempts, &m.PassStatus); err != nil {
			return nil, err
		}
		p.Modules = append(p.Modules, m)
	}
	return p, rows.Err()
}

// HasActiveEnrollment reports whether any progress record for the learner is
// still incomplete, in any course.
func (r *ProgressPostgres) HasActiveEnrollment(ctx context.Context, learnerID uuid.UUID) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM progress
             WHERE learner_id = $1 AND NOT is_course_completed
        )
    `
	var active bool
	if err := r.db.QueryRow(ctx, query, learnerID).Scan(&active); err != nil {
		return false, fmt.Errorf("failed to check active enrollment: %w", err)
	}
	return active, nil
}

// IncrementAttempts bumps the attempt counter for one module. Unconditional
// and atomic: every submission counts, whatever its outcome.
func (r *ProgressPostgres) IncrementAttempts(ctx context.Context, learnerID, classroomID uuid.UUID, moduleIndex int) error {
	const query = `
        UPDATE progress_modules
           SET attempts = attempts + 1
         WHERE learner_id = $1 AND classroom_id = $2 AND module_index = $3
    `
	cmdTag, err := r.db.Exec(ctx, query, learnerID, classroomID, moduleIndex)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrModuleNotFound
	}
	return nil
}

// RecordPass marks the module passed and refreshes the derived course
// completion flag. Re-recording an already-passed module writes the same
// fields again, so a duplicate passing submission stays idempotent.
func (r *ProgressPostgres) RecordPass(ctx context.Context, learnerID, classroomID uuid.UUID, moduleIndex int, score int) (courseCompleted bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin pass transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const passQuery = `
        UPDATE progress_modules
           SET completed = TRUE,
               pass_status = TRUE,
               quiz_score = $4
         WHERE learner_id = $1 AND classroom_id = $2 AND module_index = $3
    `
	cmdTag, err := tx.Exec(ctx, passQuery, learnerID, classroomID, moduleIndex, score)
	if err != nil {
		return false, err
	}
	if cmdTag.RowsAffected() == 0 {
		return false, app_errors.ErrModuleNotFound
	}

	const completeQuery = `
        UPDATE progress
           SET is_course_completed = NOT EXISTS (
                   SELECT 1 FROM progress_modules
                    WHERE learner_id = $1 AND classroom_id = $2 AND NOT completed
               )
         WHERE learner_id = $1 AND classroom_id = $2
        RETURNING is_course_completed
    `
	if err := tx.QueryRow(ctx, completeQuery, learnerID, classroomID).Scan(&courseCompleted); err != nil {
		return false, err
	}

	return courseCompleted, tx.Commit(ctx)
}
