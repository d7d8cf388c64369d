package handlers

import (
	"errors"
	"net/http"

	"github.com/umutakksy/task-floww/internal/auth"
	dom "github.com/umutakksy/task-floww/internal/domain"
	"github.com/umutakksy/task-floww/internal/dto"
	"github.com/umutakksy/task-floww/internal/service"

	"github.com/gin-gonic/gin"
)

type FolderHandler struct {
	svc *service.FolderService
}

func NewFolderHandler(svc *service.FolderService) *FolderHandler {
	return &FolderHandler{svc: svc}
}

// Create godoc
// @Summary      Create a folder
// @Tags         folders
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateFolderRequest  true  "Folder body"
// @Success      201   {object}  dto.FolderResponse
// @Failure      400   {object}  map[string]string
// @Router       /folders [post]
func (h *FolderHandler) Create(c *gin.Context) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Name, req.ParentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, folderToResponse(f))
}

// Tree godoc
// @Summary      Get the current user's folder tree
// @Tags         folders
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.FolderTreeResponse
// @Failure      500  {object}  map[string]string
// @Router       /folders/tree [get]
func (h *FolderHandler) Tree(c *gin.Context) {
	tree, err := h.svc.Tree(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FolderTreeResponse{Items: nodesToResponses(tree)})
}

// Update godoc
// @Summary      Rename or move a folder
// @Tags         folders
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Folder ID"
// @Param        body  body      dto.UpdateFolderRequest  true  "Partial update"
// @Success      200   {object}  dto.FolderResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /folders/{id} [patch]
func (h *FolderHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := h.svc.Update(c.Request.Context(), id, req.Name, req.ParentID.Set, req.ParentID.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, service.ErrFolderCycle):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, folderToResponse(f))
}

// Delete godoc
// @Summary      Delete a folder (must have no subfolders)
// @Tags         folders
// @Security     CookieAuth
// @Param        id   path  int  true  "Folder ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /folders/{id} [delete]
func (h *FolderHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, service.ErrFolderHasChildren):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func folderToResponse(f dom.Folder) dto.FolderResponse {
	return dto.FolderResponse{
		ID:        f.ID,
		Name:      f.Name,
		OwnerID:   f.OwnerID,
		ParentID:  f.ParentID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func nodesToResponses(nodes []dom.FolderNode) []dto.FolderNodeResponse {
	out := make([]dto.FolderNodeResponse, len(nodes))
	for i, n := range nodes {
		out[i] = dto.FolderNodeResponse{
			ID:        n.ID,
			Name:      n.Name,
			OwnerID:   n.OwnerID,
			ParentID:  n.ParentID,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
			Children:  nodesToResponses(n.Children),
		}
	}
	return out
}
