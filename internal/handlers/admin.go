package handlers

import (
	"errors"
	"net/http"
	"strings"

	"minibbs/internal/config"
	"minibbs/internal/db"
	"minibbs/internal/services"
	"minibbs/internal/utils"

	"github.com/gin-gonic/gin"
)

const consoleNoteLimit = 50

type AdminHandler struct {
	cfg *config.Config
}

func NewAdminHandler(cfg *config.Config) *AdminHandler {
	return &AdminHandler{cfg: cfg}
}

// Console shows recent notes, the IP blocklist and the emoji catalog.
// Admin gating happens in the router group middleware.
func (h *AdminHandler) Console(c *gin.Context) {
	notes, err := services.RecentNotes(db.DB, consoleNoteLimit)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load notes")
		return
	}

	blocked, err := services.ListBlockedIPs(db.DB)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load blocklist")
		return
	}

	emojis, err := services.ListEmojis(db.DB)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load emoji catalog")
		return
	}

	Render(c, http.StatusOK, "admin/console.html", gin.H{
		"Notes":      notes,
		"BlockedIPs": blocked,
		"Emojis":     emojis,
	})
}

func (h *AdminHandler) DeleteNote(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	err := services.DeleteNote(db.DB, id)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/admin")
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, "Note not found")
	default:
		RenderError(c, http.StatusInternalServerError, "Failed to delete note")
	}
}

// Block adds the posted IP to the blocklist; blocking twice is a no-op.
func (h *AdminHandler) Block(c *gin.Context) {
	ip := strings.TrimSpace(c.PostForm("ip"))
	if ip == "" {
		RenderError(c, http.StatusBadRequest, "IP must not be empty")
		return
	}

	if err := services.Block(db.DB, ip); err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to block IP")
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

// Unblock removes the posted IP from the blocklist; unblocking an IP that is
// not blocked is a no-op.
func (h *AdminHandler) Unblock(c *gin.Context) {
	ip := strings.TrimSpace(c.PostForm("ip"))
	if ip == "" {
		RenderError(c, http.StatusBadRequest, "IP must not be empty")
		return
	}

	if err := services.Unblock(db.DB, ip); err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to unblock IP")
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (h *AdminHandler) AddEmoji(c *gin.Context) {
	name := c.PostForm("name")

	file, err := c.FormFile("image")
	if err != nil {
		RenderError(c, http.StatusBadRequest, "An image file is required")
		return
	}

	_, err = services.AddEmoji(db.DB, name, file, h.cfg.UploadDir)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/admin")
	case errors.Is(err, services.ErrEmptyName):
		RenderError(c, http.StatusBadRequest, "Emoji name must not be empty")
	case errors.Is(err, services.ErrNoFile):
		RenderError(c, http.StatusBadRequest, "An image file is required")
	default:
		RenderError(c, http.StatusInternalServerError, "Failed to save emoji")
	}
}

func (h *AdminHandler) DeleteEmoji(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	err := services.DeleteEmoji(db.DB, id)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/admin")
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, "Emoji not found")
	default:
		RenderError(c, http.StatusInternalServerError, "Failed to delete emoji")
	}
}
