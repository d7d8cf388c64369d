package repo

import (
	"context"
	"time"

	dom "github.com/umutakksy/task-floww/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FolderRepo provides folder persistence.
type FolderRepo interface {
	Create(ctx context.Context, f dom.Folder) (dom.Folder, error)
	GetByID(ctx context.Context, id int64) (dom.Folder, error)
	// ListByOwner returns all live folders of the owner, parents before
	// children is not guaranteed; ordering is created_at, id.
	ListByOwner(ctx context.Context, ownerID int64) ([]dom.Folder, error)
	Update(ctx context.Context, id int64, name string, parentID *int64) (dom.Folder, error)
	SoftDelete(ctx context.Context, id int64) error
	// HasLiveChildren reports whether any live folder references id as parent.
	HasLiveChildren(ctx context.Context, id int64) (bool, error)
}

type PGFolderRepo struct {
	db *pgxpool.Pool
}

func NewPGFolderRepo(db *pgxpool.Pool) *PGFolderRepo {
	return &PGFolderRepo{db: db}
}

const folderColumns = `id, name, owner_id, parent_id, created_at, updated_at, deleted_at`

func scanFolder(row pgx.Row) (dom.Folder, error) {
	var f dom.Folder
	err := row.Scan(&f.ID, &f.Name, &f.OwnerID, &f.ParentID,
		&f.CreatedAt, &f.UpdatedAt, &f.DeletedAt)
	return f, err
}

func (r *PGFolderRepo) Create(ctx context.Context, f dom.Folder) (dom.Folder, error) {
	query := `
		INSERT INTO folders (name, owner_id, parent_id)
		VALUES ($1, $2, $3)
		RETURNING ` + folderColumns
	return scanFolder(r.db.QueryRow(ctx, query, f.Name, f.OwnerID, f.ParentID))
}

func (r *PGFolderRepo) GetByID(ctx context.Context, id int64) (dom.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1 AND deleted_at IS NULL`
	return scanFolder(r.db.QueryRow(ctx, query, id))
}

func (r *PGFolderRepo) ListByOwner(ctx context.Context, ownerID int64) ([]dom.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

func (r *PGFolderRepo) Update(ctx context.Context, id int64, name string, parentID *int64) (dom.Folder, error) {
	query := `
		UPDATE folders SET name = $2, parent_id = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + folderColumns
	return scanFolder(r.db.QueryRow(ctx, query, id, name, parentID))
}

func (r *PGFolderRepo) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`UPDATE folders SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, now)
	return err
}

func (r *PGFolderRepo) HasLiveChildren(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM folders WHERE parent_id = $1 AND deleted_at IS NULL)`,
		id).Scan(&exists)
	return exists, err
}
