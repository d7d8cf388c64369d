package handlers

import (
	"net/http"

	"github.com/umutakksy/task-floww/internal/dto"
	"github.com/umutakksy/task-floww/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the user directory used by assignment pickers.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List godoc
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListUsersResponse
// @Failure      500  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]dto.UserResponse, len(users))
	for i, u := range users {
		items[i] = dto.UserResponse{ID: u.ID, Username: u.Username}
	}
	c.JSON(http.StatusOK, dto.ListUsersResponse{Items: items})
}
