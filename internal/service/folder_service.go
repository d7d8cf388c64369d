package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	dom "github.com/umutakksy/task-floww/internal/domain"
	"github.com/umutakksy/task-floww/internal/repo"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TreeCache stores built folder trees per owner. Get returns (nil, nil) on a
// miss.
type TreeCache interface {
	Get(ctx context.Context, ownerID int64) ([]dom.FolderNode, error)
	Set(ctx context.Context, ownerID int64, tree []dom.FolderNode) error
	Invalidate(ctx context.Context, ownerID int64) error
}

// FolderService builds per-owner folder trees and manages the folder lifecycle.
type FolderService struct {
	repo  repo.FolderRepo
	cache TreeCache
	log   *zap.Logger
	sf    singleflight.Group
}

// NewFolderService creates a FolderService. If c is nil, caching is disabled.
func NewFolderService(r repo.FolderRepo, c TreeCache, log *zap.Logger) *FolderService {
	return &FolderService{repo: r, cache: c, log: log}
}

// Tree returns the owner's folder forest: all live folders nested by parent_id.
// A folder whose parent is missing from the owner's live set (deleted, foreign
// owner, dangling reference) is dropped from the output entirely.
func (s *FolderService) Tree(ctx context.Context, ownerID int64) ([]dom.FolderNode, error) {
	if s.cache != nil {
		key := "tree:" + strconv.FormatInt(ownerID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if tree, err := s.cache.Get(ctx, ownerID); err == nil && tree != nil {
				return tree, nil
			}
			tree, err := s.buildTree(ctx, ownerID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.Set(ctx, ownerID, tree)
			return tree, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.FolderNode), nil
	}
	return s.buildTree(ctx, ownerID)
}

func (s *FolderService) buildTree(ctx context.Context, ownerID int64) ([]dom.FolderNode, error) {
	folders, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// Adjacency map keyed by parent id; roots carry no parent. Groups keep
	// fetch order (created_at, id).
	children := make(map[int64][]dom.Folder)
	var roots []dom.Folder
	for _, f := range folders {
		if f.ParentID == nil {
			roots = append(roots, f)
		} else {
			children[*f.ParentID] = append(children[*f.ParentID], f)
		}
	}
	return attachChildren(roots, children), nil
}

func attachChildren(parents []dom.Folder, children map[int64][]dom.Folder) []dom.FolderNode {
	nodes := make([]dom.FolderNode, 0, len(parents))
	for _, f := range parents {
		nodes = append(nodes, dom.FolderNode{
			Folder:   f,
			Children: attachChildren(children[f.ID], children),
		})
	}
	return nodes
}

// Create inserts a live folder for the owner. The parent reference is trusted;
// a dangling parent just keeps the folder out of the tree.
func (s *FolderService) Create(ctx context.Context, ownerID int64, name string, parentID *int64) (dom.Folder, error) {
	f, err := s.repo.Create(ctx, dom.Folder{
		Name:     strings.TrimSpace(name),
		OwnerID:  ownerID,
		ParentID: parentID,
	})
	if err != nil {
		return dom.Folder{}, err
	}
	s.invalidate(ctx, ownerID)
	return f, nil
}

// Update renames and/or reparents a folder. Reparenting onto itself or any of
// its descendants is rejected with ErrFolderCycle so that tree reads never
// recurse into a parent loop.
func (s *FolderService) Update(ctx context.Context, folderID int64, name *string, setParent bool, parentID *int64) (dom.Folder, error) {
	f, err := s.repo.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Folder{}, ErrNotFound
		}
		return dom.Folder{}, err
	}

	newName := f.Name
	if name != nil {
		newName = strings.TrimSpace(*name)
	}
	newParent := f.ParentID
	if setParent {
		if parentID != nil {
			if err := s.checkCycle(ctx, folderID, *parentID); err != nil {
				return dom.Folder{}, err
			}
		}
		newParent = parentID
	}

	out, err := s.repo.Update(ctx, folderID, newName, newParent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Folder{}, ErrNotFound
		}
		return dom.Folder{}, err
	}
	s.invalidate(ctx, f.OwnerID)
	return out, nil
}

// checkCycle walks the ancestor chain of the proposed parent. Hitting folderID
// means folderID would become its own ancestor.
func (s *FolderService) checkCycle(ctx context.Context, folderID, parentID int64) error {
	seen := make(map[int64]bool)
	cur := parentID
	for {
		if cur == folderID {
			return ErrFolderCycle
		}
		if seen[cur] {
			// Pre-existing loop among ancestors; refuse to attach to it.
			return ErrFolderCycle
		}
		seen[cur] = true
		p, err := s.repo.GetByID(ctx, cur)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if p.ParentID == nil {
			return nil
		}
		cur = *p.ParentID
	}
}

// Delete soft-deletes a folder. A folder that still has live subfolders cannot
// be deleted; callers must delete the children first.
func (s *FolderService) Delete(ctx context.Context, folderID int64) error {
	hasChildren, err := s.repo.HasLiveChildren(ctx, folderID)
	if err != nil {
		return err
	}
	if hasChildren {
		return ErrFolderHasChildren
	}
	f, err := s.repo.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if err := s.repo.SoftDelete(ctx, folderID); err != nil {
		return err
	}
	s.invalidate(ctx, f.OwnerID)
	return nil
}

func (s *FolderService) invalidate(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.log.Warn("folder tree cache invalidation failed",
			zap.Int64("owner_id", ownerID), zap.Error(err))
	}
}
