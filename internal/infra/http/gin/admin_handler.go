package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	adminapp "travelnest/internal/app/handlers/admin"
	contactapp "travelnest/internal/app/handlers/contact"
	"travelnest/internal/app/queries"
)

type AdminHTTP interface {
	Dashboard(c *gin.Context)
	ListUsers(c *gin.Context)
	ListContact(c *gin.Context)
	UpdateContact(c *gin.Context)
}

type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AdminHandler) Dashboard(c *gin.Context) {
	if _, ok := requireRole(c, roleAdmin); !ok || !h.ready(c) {
		return
	}
	query := adminapp.DashboardQuery{Months: parseInt(c.Query("months"))}
	result, err := queries.Ask[adminapp.DashboardQuery, dto.Dashboard](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "admin dashboard", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ListUsers(c *gin.Context) {
	if _, ok := requireRole(c, roleAdmin); !ok || !h.ready(c) {
		return
	}
	query := adminapp.ListUsersQuery{
		Query:  c.Query("query"),
		Role:   strings.ToLower(strings.TrimSpace(c.Query("role"))),
		Limit:  parseIntWithDefault(c.Query("limit"), 50),
		Offset: parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[adminapp.ListUsersQuery, dto.UserList](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "list users", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ListContact(c *gin.Context) {
	if _, ok := requireRole(c, roleAdmin); !ok || !h.ready(c) {
		return
	}
	query := contactapp.ListContactMessagesQuery{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Limit:  parseIntWithDefault(c.Query("limit"), 50),
		Offset: parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[contactapp.ListContactMessagesQuery, dto.ContactMessageList](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "list contact messages", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type contactStatusRequest struct {
	Status string `json:"status"`
}

func (h AdminHandler) UpdateContact(c *gin.Context) {
	if _, ok := requireRole(c, roleAdmin); !ok || !h.ready(c) {
		return
	}
	var req contactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := contactapp.UpdateContactStatusCommand{
		MessageID: c.Param("id"),
		Status:    strings.ToLower(strings.TrimSpace(req.Status)),
	}
	result, err := commands.Dispatch[contactapp.UpdateContactStatusCommand, *dto.ContactMessage](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "update contact message", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ready(c *gin.Context) bool {
	if h.Commands == nil || h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin handler unavailable"})
		return false
	}
	return true
}

var _ AdminHTTP = (*AdminHandler)(nil)

type ContactHTTP interface {
	Submit(c *gin.Context)
}

// ContactHandler accepts messages from the public contact form.
type ContactHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h ContactHandler) Submit(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := contactapp.SubmitContactMessageCommand{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	result, err := commands.Dispatch[contactapp.SubmitContactMessageCommand, *dto.ContactMessage](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "contact submit", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ContactHTTP = ContactHandler{}
