package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"oclock-api/internal/domain"
	"oclock-api/internal/service"
)

type userRequest struct {
	FullName           string  `json:"full_name" binding:"required"`
	Email              string  `json:"email" binding:"required,email"`
	Password           string  `json:"password"`
	CPF                string  `json:"cpf" binding:"required"`
	Role               string  `json:"role" binding:"required"`
	Active             bool    `json:"active"`
	HourlyRate         float64 `json:"hourly_rate"`
	ExpectedDailyHours float64 `json:"expected_daily_hours" binding:"required"`
}

type userResponse struct {
	ID                 int64   `json:"id"`
	FullName           string  `json:"full_name"`
	Email              string  `json:"email"`
	CPF                string  `json:"cpf"`
	Role               string  `json:"role"`
	Active             bool    `json:"active"`
	HourlyRate         float64 `json:"hourly_rate"`
	ExpectedDailyHours float64 `json:"expected_daily_hours"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Create(c.Request.Context(), requestToUserInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]userResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !canAccessUser(c, id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, requestToUserInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func requestToUserInput(req userRequest) service.UserInput {
	return service.UserInput{
		FullName:           req.FullName,
		Email:              req.Email,
		Password:           req.Password,
		CPF:                req.CPF,
		Role:               domain.Role(req.Role),
		Active:             req.Active,
		HourlyRate:         req.HourlyRate,
		ExpectedDailyHours: req.ExpectedDailyHours,
	}
}

func userToResponse(user *domain.User) userResponse {
	return userResponse{
		ID:                 user.ID,
		FullName:           user.FullName,
		Email:              user.Email,
		CPF:                user.CPF,
		Role:               string(user.Role),
		Active:             user.Active,
		HourlyRate:         user.HourlyRate,
		ExpectedDailyHours: user.ExpectedDailyHours,
		CreatedAt:          user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          user.UpdatedAt.Format(time.RFC3339),
	}
}
