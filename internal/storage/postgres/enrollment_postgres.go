package postgres

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/models"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentPostgres owns the writes that span classroom membership and the
// progress ledger. Joining and reassigning must commit as one unit, so both
// live here rather than on the single-aggregate repositories.
type EnrollmentPostgres struct {
	db *pgxpool.Pool
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

// WithLearnerLock serializes enroll flows for one learner via a session-level
// advisory lock, closing the check-then-act window of the one-active-course
// rule across concurrent requests.
func (r *EnrollmentPostgres) WithLearnerLock(ctx context.Context, learnerID uuid.UUID, fn func(ctx context.Context) error) error {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for learner lock: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1::text, 0))`, learnerID); err != nil {
		return fmt.Errorf("failed to take learner lock: %w", err)
	}
	defer conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtextextended($1::text, 0))`, learnerID)

	return fn(ctx)
}

// appendStudentTx adds the learner to the classroom only while a slot is free
// and the learner is not already present. Zero rows affected means the slot
// was lost to a concurrent join.
func appendStudentTx(ctx context.Context, tx pgx.Tx, classroomID, learnerID uuid.UUID) error {
	const query = `
        UPDATE classrooms
           SET students = array_append(students, $2),
               updated_at = NOW()
         WHERE id = $1
           AND cardinality(students) < $3
           AND NOT students @> ARRAY[$2]::uuid[]
    `
	cmdTag, err := tx.Exec(ctx, query, classroomID, learnerID, models.ClassroomCapacity)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrClassroomFull
	}
	return nil
}

// EnrollStudent appends the learner to the classroom and creates the zeroed
// progress record in one transaction. A lost capacity race surfaces as
// ErrClassroomFull so the coordinator can pick another classroom; a broken
// commit surfaces as ErrEnrollmentInconsistent and must not be retried.
func (r *EnrollmentPostgres) EnrollStudent(ctx context.Context, classroomID uuid.UUID, p *models.Progress) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin enroll transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := appendStudentTx(ctx, tx, classroomID, p.LearnerID); err != nil {
		return err
	}

	const progressQuery = `
        INSERT INTO progress (learner_id, classroom_id, course_id, is_course_completed, created_at)
        VALUES ($1, $2, $3, FALSE, $4)
    `
	_, err = tx.Exec(ctx, progressQuery, p.LearnerID, p.ClassroomID, p.CourseID, p.CreatedAt)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23505" {
			// Unique backstops: the (learner, classroom) key or the partial
			// one-active-course index fired under us.
			return app_errors.ErrActiveEnrollmentExists
		}
		return fmt.Errorf("failed to create progress record: %w", err)
	}

	const moduleQuery = `
        INSERT INTO progress_modules (learner_id, classroom_id, module_index, completed, quiz_score, attempts, pass_status)
        VALUES ($1, $2, $3, FALSE, 0, 0, FALSE)
    `
	for _, m := range p.Modules {
		if _, err := tx.Exec(ctx, moduleQuery, p.LearnerID, p.ClassroomID, m.ModuleIndex); err != nil {
			return fmt.Errorf("failed to create module progress: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		// The commit outcome is unknown here: the learner may hold a slot
		// with or without a ledger record.
		return fmt.Errorf("%w: %v", app_errors.ErrEnrollmentInconsistent, err)
	}
	return nil
}

// Withdraw frees the learner's slot. The progress record is deliberately
// kept: it is the audit trail behind the one-active-course gate.
func (r *EnrollmentPostgres) Withdraw(ctx context.Context, classroomID, learnerID uuid.UUID) error {
	const query = `
        UPDATE classrooms
           SET students = array_remove(students, $2),
               updated_at = NOW()
         WHERE id = $1
           AND students @> ARRAY[$2]::uuid[]
    `
	cmdTag, err := r.db.Exec(ctx, query, classroomID, learnerID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM classrooms WHERE id = $1)`, classroomID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return app_errors.ErrClassroomNotFound
		}
		return app_errors.ErrNotClassMember
	}
	return nil
}

// Reassign moves the learner between two classrooms of the same course and
// re-keys the progress record to the target, all in one transaction.
func (r *EnrollmentPostgres) Reassign(ctx context.Context, learnerID, fromClassroomID, toClassroomID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reassign transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const removeQuery = `
        UPDATE classrooms
           SET students = array_remove(students, $2),
               updated_at = NOW()
         WHERE id = $1
           AND students @> ARRAY[$2]::uuid[]
    `
	cmdTag, err := tx.Exec(ctx, removeQuery, fromClassroomID, learnerID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrNotClassMember
	}

	if err := appendStudentTx(ctx, tx, toClassroomID, learnerID); err != nil {
		return err
	}

	// progress_modules follows via ON UPDATE CASCADE.
	const rekeyProgress = `
        UPDATE progress SET classroom_id = $3
         WHERE learner_id = $1 AND classroom_id = $2
    `
	if _, err := tx.Exec(ctx, rekeyProgress, learnerID, fromClassroomID, toClassroomID); err != nil {
		return fmt.Errorf("failed to re-key progress: %w", err)
	}

	return tx.Commit(ctx)
}
