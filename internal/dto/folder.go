package dto

import (
	"encoding/json"
	"time"
)

// OptionalParent distinguishes "parent_id absent" (don't change) from
// "parent_id": null (move to root) in PATCH bodies.
type OptionalParent struct {
	Set bool
	ID  *int64
}

func (p *OptionalParent) UnmarshalJSON(data []byte) error {
	p.Set = true
	return json.Unmarshal(data, &p.ID)
}

type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=120"`
	ParentID *int64 `json:"parent_id"` // nil = root folder
}

type UpdateFolderRequest struct {
	Name     *string        `json:"name" binding:"omitempty,min=1,max=120"`
	ParentID OptionalParent `json:"parent_id"`
}

type FolderNodeResponse struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	OwnerID   int64                `json:"owner_id"`
	ParentID  *int64               `json:"parent_id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Children  []FolderNodeResponse `json:"children"`
}

type FolderTreeResponse struct {
	Items []FolderNodeResponse `json:"items"`
}

type FolderResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
