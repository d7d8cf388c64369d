package domain

import "time"

// Folder is a node of a per-owner folder forest. ParentID nil means root.
type Folder struct {
	ID       int64
	Name     string
	OwnerID  int64
	ParentID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// FolderNode is a folder with its subtree attached, as returned by the tree build.
type FolderNode struct {
	Folder
	Children []FolderNode
}
