package repo

import (
	"context"
	"time"

	dom "github.com/umutakksy/task-floww/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepo provides task persistence. Update is a compare-and-swap on the
// version column: it matches the version read by the caller and bumps it,
// returning pgx.ErrNoRows when another writer got there first.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id int64) (dom.Task, error)
	ListByFolder(ctx context.Context, folderID int64) ([]dom.Task, error)
	Update(ctx context.Context, t dom.Task) (dom.Task, error)
	SoftDelete(ctx context.Context, id int64) error
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `id, title, description, status, priority, folder_id, parent_task_id,
	creator_id, start_date, end_date, progress, version, created_at, updated_at, deleted_at`

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.FolderID, &t.ParentTaskID, &t.CreatorID, &t.StartDate, &t.EndDate,
		&t.Progress, &t.Version, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	return t, err
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (title, description, status, priority, folder_id,
			parent_task_id, creator_id, start_date, end_date, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		t.Title, t.Description, t.Status, t.Priority, t.FolderID,
		t.ParentTaskID, t.CreatorID, t.StartDate, t.EndDate, t.Progress))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND deleted_at IS NULL`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

func (r *PGTaskRepo) ListByFolder(ctx context.Context, folderID int64) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks WHERE folder_id = $1 AND deleted_at IS NULL
		ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks SET title = $3, description = $4, status = $5, priority = $6,
			start_date = $7, end_date = $8, progress = $9,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		t.ID, t.Version, t.Title, t.Description, t.Status, t.Priority,
		t.StartDate, t.EndDate, t.Progress))
}

func (r *PGTaskRepo) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`UPDATE tasks SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, now)
	return err
}
