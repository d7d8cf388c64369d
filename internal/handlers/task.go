package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/umutakksy/task-floww/internal/auth"
	dom "github.com/umutakksy/task-floww/internal/domain"
	"github.com/umutakksy/task-floww/internal/dto"
	"github.com/umutakksy/task-floww/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), service.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       dom.Status(req.Status),
		Priority:     dom.Priority(req.Priority),
		FolderID:     req.FolderID,
		ParentTaskID: req.ParentTaskID,
		StartDate:    req.StartDate.Ptr(),
		EndDate:      req.EndDate.Ptr(),
		Progress:     req.Progress,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(v))
}

// ListByFolder godoc
// @Summary      List tasks in a folder
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        folderId  path      int  true  "Folder ID"
// @Success      200       {object}  dto.ListTasksResponse
// @Failure      500       {object}  map[string]string
// @Router       /tasks/folder/{folderId} [get]
func (h *TaskHandler) ListByFolder(c *gin.Context) {
	folderID, ok := parseID(c, "folderId")
	if !ok {
		return
	}
	list, err := h.svc.ListByFolder(c.Request.Context(), folderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: tasksToResponses(list)})
}

// Assigned godoc
// @Summary      List tasks assigned to the current user
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListTasksResponse
// @Failure      500  {object}  map[string]string
// @Router       /tasks/assigned [get]
func (h *TaskHandler) Assigned(c *gin.Context) {
	list, err := h.svc.ListForUser(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: tasksToResponses(list)})
}

// ToggleAssignee godoc
// @Summary      Toggle a user's assignment on a task
// @Tags         tasks
// @Security     CookieAuth
// @Param        id      path  int  true  "Task ID"
// @Param        userId  path  int  true  "User ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/{id}/assign/{userId} [post]
func (h *TaskHandler) ToggleAssignee(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	if err := h.svc.ToggleAssignee(c.Request.Context(), taskID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatus godoc
// @Summary      Update task status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Task ID"
// @Param        body  body      dto.UpdateStatusRequest  true  "New status"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.svc.UpdateStatus(c.Request.Context(), id, dom.Status(req.Status))
	if err != nil {
		h.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(v))
}

// UpdateProgress godoc
// @Summary      Update task progress (creator only)
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Task ID"
// @Param        body  body      dto.UpdateProgressRequest  true  "Progress 0-100"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /tasks/{id}/progress [patch]
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.svc.UpdateProgress(c.Request.Context(), id, *req.Progress, auth.UserIDFromContext(c))
	if err != nil {
		h.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(v))
}

// Update godoc
// @Summary      Update task title/description
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.svc.Update(c.Request.Context(), id, req.Title, req.Description)
	if err != nil {
		h.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(v))
}

// UpdatePriority godoc
// @Summary      Update task priority
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Task ID"
// @Param        body  body      dto.UpdatePriorityRequest  true  "New priority"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /tasks/{id}/priority [patch]
func (h *TaskHandler) UpdatePriority(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.svc.UpdatePriority(c.Request.Context(), id, dom.Priority(req.Priority))
	if err != nil {
		h.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(v))
}

// Delete godoc
// @Summary      Delete a task (creator only)
// @Tags         tasks
// @Security     CookieAuth
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, auth.UserIDFromContext(c)); err != nil {
		h.writeTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) writeTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func taskToResponse(v service.TaskView) dto.TaskResponse {
	return dto.TaskResponse{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		Status:       string(v.Status),
		Priority:     string(v.Priority),
		FolderID:     v.FolderID,
		ParentTaskID: v.ParentTaskID,
		CreatorID:    v.CreatorID,
		StartDate:    v.StartDate,
		EndDate:      v.EndDate,
		Progress:     v.Progress,
		Version:      v.Version,
		AssigneeIDs:  v.AssigneeIDs,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func tasksToResponses(list []service.TaskView) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(list))
	for i := range list {
		out[i] = taskToResponse(list[i])
	}
	return out
}
