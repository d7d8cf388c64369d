package service

import "errors"

var (
	// ErrNotFound means the referenced record does not exist or is soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrFolderHasChildren rejects deletion of a folder with live subfolders.
	ErrFolderHasChildren = errors.New("folder has subfolders")
	// ErrFolderCycle rejects a reparent that would make a folder its own ancestor.
	ErrFolderCycle = errors.New("folder parent cycle")
	// ErrForbidden means the caller is not allowed to perform the mutation.
	ErrForbidden = errors.New("forbidden")
	// ErrVersionConflict means a concurrent writer updated the task first.
	ErrVersionConflict = errors.New("task version conflict")
)
