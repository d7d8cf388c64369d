package repo

import (
	"context"

	dom "github.com/umutakksy/task-floww/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentRepo manages the task-to-user assignment relation. The
// (task_id, user_id) unique constraint is the concurrency guard: InsertUnique
// and DeleteByPair report whether a row was actually written so that two
// concurrent toggles for the same pair can never both apply the same
// transition.
type AssignmentRepo interface {
	ListByTask(ctx context.Context, taskID int64) ([]dom.Assignment, error)
	ListByUser(ctx context.Context, userID int64) ([]dom.Assignment, error)
	// InsertUnique inserts the pair unless it already exists. Returns false
	// when the pair was already present.
	InsertUnique(ctx context.Context, taskID, userID int64) (bool, error)
	// DeleteByPair removes the pair row. Returns false when no row existed.
	DeleteByPair(ctx context.Context, taskID, userID int64) (bool, error)
}

type PGAssignmentRepo struct {
	db *pgxpool.Pool
}

func NewPGAssignmentRepo(db *pgxpool.Pool) *PGAssignmentRepo {
	return &PGAssignmentRepo{db: db}
}

func (r *PGAssignmentRepo) ListByTask(ctx context.Context, taskID int64) ([]dom.Assignment, error) {
	return r.list(ctx, `SELECT id, task_id, user_id FROM task_assignees WHERE task_id = $1 ORDER BY id`, taskID)
}

func (r *PGAssignmentRepo) ListByUser(ctx context.Context, userID int64) ([]dom.Assignment, error) {
	return r.list(ctx, `SELECT id, task_id, user_id FROM task_assignees WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *PGAssignmentRepo) list(ctx context.Context, query string, arg int64) ([]dom.Assignment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Assignment
	for rows.Next() {
		var a dom.Assignment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UserID); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *PGAssignmentRepo) InsertUnique(ctx context.Context, taskID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2)
		 ON CONFLICT ON CONSTRAINT task_assignees_pair_uniq DO NOTHING`,
		taskID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGAssignmentRepo) DeleteByPair(ctx context.Context, taskID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM task_assignees WHERE task_id = $1 AND user_id = $2`,
		taskID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
