package handlers

import (
	"errors"
	"log"
	"net/http"

	"minibbs/internal/config"
	"minibbs/internal/db"
	"minibbs/internal/middleware"
	"minibbs/internal/services"
	"minibbs/internal/utils"

	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	cfg *config.Config
}

func NewNoteHandler(cfg *config.Config) *NoteHandler {
	return &NoteHandler{cfg: cfg}
}

// List renders the board, newest first. The retention trim runs inline with
// every listing read; there is no background task for it.
func (h *NoteHandler) List(c *gin.Context) {
	if err := services.TrimNotes(db.DB); err != nil {
		log.Printf("Retention trim failed: %v", err)
	}

	notes, err := services.ListNotes(db.DB)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load notes")
		return
	}

	emojis, err := services.ListEmojis(db.DB)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load emoji catalog")
		return
	}

	Render(c, http.StatusOK, "notes/list.html", gin.H{
		"Notes":  notes,
		"Emojis": emojis,
	})
}

func (h *NoteHandler) Create(c *gin.Context) {
	text := c.PostForm("note")
	ip := middleware.ClientIP(c.Request, h.cfg.TrustProxyHead)
	author := middleware.CurrentUser(c)

	var replyTo *uint
	if v := c.PostForm("reply_to"); v != "" {
		id := utils.StringToUint(v)
		replyTo = &id
	}

	_, err := services.CreateNote(db.DB, text, ip, author, replyTo)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, services.ErrBlocked):
		c.String(http.StatusForbidden, "blocked")
	case errors.Is(err, services.ErrEmptyText):
		RenderError(c, http.StatusBadRequest, "Note text must not be empty")
	case errors.Is(err, services.ErrTextTooLong):
		RenderError(c, http.StatusBadRequest, "Note text must be 200 characters or less")
	default:
		RenderError(c, http.StatusInternalServerError, "Failed to save note")
	}
}

func (h *NoteHandler) Renote(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))
	ip := middleware.ClientIP(c.Request, h.cfg.TrustProxyHead)
	author := middleware.CurrentUser(c)

	_, err := services.CreateRenote(db.DB, id, ip, author)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, "Note not found")
	case errors.Is(err, services.ErrNotRenotable):
		RenderError(c, http.StatusBadRequest, "This note cannot be renoted")
	case errors.Is(err, services.ErrBlocked):
		c.String(http.StatusForbidden, "blocked")
	default:
		RenderError(c, http.StatusInternalServerError, "Failed to save renote")
	}
}
