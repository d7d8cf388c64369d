package service

import (
	"context"
	"testing"
	"time"

	dom "github.com/umutakksy/task-floww/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFolderRepo struct {
	seq     int64
	folders map[int64]dom.Folder
	order   []int64
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[int64]dom.Folder)}
}

func (r *fakeFolderRepo) Create(_ context.Context, f dom.Folder) (dom.Folder, error) {
	r.seq++
	f.ID = r.seq
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	r.folders[f.ID] = f
	r.order = append(r.order, f.ID)
	return f, nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, id int64) (dom.Folder, error) {
	f, ok := r.folders[id]
	if !ok || f.DeletedAt != nil {
		return dom.Folder{}, pgx.ErrNoRows
	}
	return f, nil
}

func (r *fakeFolderRepo) ListByOwner(_ context.Context, ownerID int64) ([]dom.Folder, error) {
	var list []dom.Folder
	for _, id := range r.order {
		f := r.folders[id]
		if f.OwnerID == ownerID && f.DeletedAt == nil {
			list = append(list, f)
		}
	}
	return list, nil
}

func (r *fakeFolderRepo) Update(_ context.Context, id int64, name string, parentID *int64) (dom.Folder, error) {
	f, ok := r.folders[id]
	if !ok || f.DeletedAt != nil {
		return dom.Folder{}, pgx.ErrNoRows
	}
	f.Name = name
	f.ParentID = parentID
	f.UpdatedAt = time.Now().UTC()
	r.folders[id] = f
	return f, nil
}

func (r *fakeFolderRepo) SoftDelete(_ context.Context, id int64) error {
	f, ok := r.folders[id]
	if !ok || f.DeletedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	f.DeletedAt = &now
	r.folders[id] = f
	return nil
}

func (r *fakeFolderRepo) HasLiveChildren(_ context.Context, id int64) (bool, error) {
	for _, f := range r.folders {
		if f.ParentID != nil && *f.ParentID == id && f.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func newFolderService(r *fakeFolderRepo) *FolderService {
	return NewFolderService(r, nil, zap.NewNop())
}

type fakeTreeCache struct {
	entries       map[int64][]dom.FolderNode
	sets          int
	invalidations int
}

func newFakeTreeCache() *fakeTreeCache {
	return &fakeTreeCache{entries: make(map[int64][]dom.FolderNode)}
}

func (c *fakeTreeCache) Get(_ context.Context, ownerID int64) ([]dom.FolderNode, error) {
	return c.entries[ownerID], nil
}

func (c *fakeTreeCache) Set(_ context.Context, ownerID int64, tree []dom.FolderNode) error {
	c.sets++
	c.entries[ownerID] = tree
	return nil
}

func (c *fakeTreeCache) Invalidate(_ context.Context, ownerID int64) error {
	c.invalidations++
	delete(c.entries, ownerID)
	return nil
}

func TestFolderTree_NestsChildrenByParent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeFolderRepo()
	svc := newFolderService(repo)

	a, err := svc.Create(ctx, 1, "A", nil)
	require.NoError(t, err)
	b, err := svc.Create(ctx, 1, "B", &a.ID)
	require.NoError(t, err)

	tree, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, a.ID, tree[0].ID)
	require.Len(t, tree[0].Children, 1)
	require.Equal(t, b.ID, tree[0].Children[0].ID)
	require.Empty(t, tree[0].Children[0].Children)
}

func TestFolderTree_MultipleRootsAndDepth(t *testing.T) {
	ctx := context.Background()
	repo := newFakeFolderRepo()
	svc := newFolderService(repo)

	a, _ := svc.Create(ctx, 1, "A", nil)
	b, _ := svc.Create(ctx, 1, "B", &a.ID)
	c, _ := svc.Create(ctx, 1, "C", &b.ID)
	d, _ := svc.Create(ctx, 1, "D", nil)

	tree, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, a.ID, tree[0].ID)
	require.Equal(t, d.ID, tree[1].ID)
	require.Equal(t, c.ID, tree[0].Children[0].Children[0].ID)
}

func TestFolderTree_DropsOrphans(t *testing.T) {
	ctx := context.Background()
	repo := newFakeFolderRepo()
	svc := newFolderService(repo)

	missing := int64(999)
	_, err := svc.Create(ctx, 1, "orphan", &missing)
	require.NoError(t, err)
	root, _ := svc.Create(ctx, 1, "root", nil)

	tree, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, root.ID, tree[0].ID)
}

func TestFolderTree_DeletedParentHidesSubtree(t *testing.T) {
	ctx := context.Background()
	repo := newFakeFolderRepo()
	svc := newFolderService(repo)

	a, _ := svc.Create(ctx, 1, "A", nil)
	b, _ := svc.Create(ctx, 1, "B", &a.ID)
	_, _ = svc.Create(ctx, 1, "C", &b.ID)

	// Bypass the children check: mark B deleted directly in the store.
	require.NoError(t, repo.SoftDelete(ctx, b.ID))

	tree, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Empty(t, tree[0].Children)
}

func TestFolderTree_EmptyScope(t *testing.T) {
	svc := newFolderService(newFakeFolderRepo())
	tree, err := svc.Tree(context.Background(), 42)
	require.NoError(t, err)
	require.Empty(t, tree)
}

func TestFolderTree_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc := newFolderService(newFakeFolderRepo())

	mine, _ := svc.Create(ctx, 1, "mine", nil)
	_, _ = svc.Create(ctx, 2, "theirs", nil)

	tree, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, mine.ID, tree[0].ID)
}

func TestFolderDelete_WithLiveChildren(t *testing.T) {
	ctx := context.Background()
	repo := newFakeFolderRepo()
	svc := newFolderService(repo)

	a, _ := svc.Create(ctx, 1, "A", nil)
	b, _ := svc.Create(ctx, 1, "B", &a.ID)

	err := svc.Delete(ctx, a.ID)
	require.ErrorIs(t, err, ErrFolderHasChildren)
	require.Nil(t, repo.folders[a.ID].DeletedAt)

	// Children first, then the parent.
	require.NoError(t, svc.Delete(ctx, b.ID))
	require.NoError(t, svc.Delete(ctx, a.ID))
}

func TestFolderDelete_NotFound(t *testing.T) {
	svc := newFolderService(newFakeFolderRepo())
	err := svc.Delete(context.Background(), 123)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFolderUpdate_Rename(t *testing.T) {
	ctx := context.Background()
	svc := newFolderService(newFakeFolderRepo())

	f, _ := svc.Create(ctx, 1, "old", nil)
	name := "  new  "
	out, err := svc.Update(ctx, f.ID, &name, false, nil)
	require.NoError(t, err)
	require.Equal(t, "new", out.Name)
	require.Nil(t, out.ParentID)
}

func TestFolderUpdate_RejectsCycle(t *testing.T) {
	ctx := context.Background()
	svc := newFolderService(newFakeFolderRepo())

	a, _ := svc.Create(ctx, 1, "A", nil)
	b, _ := svc.Create(ctx, 1, "B", &a.ID)
	c, _ := svc.Create(ctx, 1, "C", &b.ID)

	// A under its grandchild C.
	_, err := svc.Update(ctx, a.ID, nil, true, &c.ID)
	require.ErrorIs(t, err, ErrFolderCycle)

	// Self-parenting.
	_, err = svc.Update(ctx, a.ID, nil, true, &a.ID)
	require.ErrorIs(t, err, ErrFolderCycle)
}

func TestFolderTree_SecondReadServedFromCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeFolderRepo()
	tc := newFakeTreeCache()
	svc := NewFolderService(repo, tc, zap.NewNop())

	a, _ := svc.Create(ctx, 1, "A", nil)

	first, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, tc.sets)

	// Mutate the store behind the cache; the cached tree must still be served.
	_, _ = repo.Update(ctx, a.ID, "renamed", nil)

	second, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "A", second[0].Name)
	require.Equal(t, 1, tc.sets)
}

func TestFolderWrites_InvalidateOwnerCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeFolderRepo()
	tc := newFakeTreeCache()
	svc := NewFolderService(repo, tc, zap.NewNop())

	a, _ := svc.Create(ctx, 1, "A", nil)
	require.Equal(t, 1, tc.invalidations)

	_, err := svc.Tree(ctx, 1)
	require.NoError(t, err)

	name := "B"
	_, err = svc.Update(ctx, a.ID, &name, false, nil)
	require.NoError(t, err)
	require.Equal(t, 2, tc.invalidations)
	require.Empty(t, tc.entries)

	// The next read rebuilds and sees the rename.
	tree, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "B", tree[0].Name)

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.Equal(t, 3, tc.invalidations)
	require.Empty(t, tc.entries)
}

func TestFolderUpdate_ReparentToRoot(t *testing.T) {
	ctx := context.Background()
	svc := newFolderService(newFakeFolderRepo())

	a, _ := svc.Create(ctx, 1, "A", nil)
	b, _ := svc.Create(ctx, 1, "B", &a.ID)

	out, err := svc.Update(ctx, b.ID, nil, true, nil)
	require.NoError(t, err)
	require.Nil(t, out.ParentID)

	tree, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tree, 2)
}
