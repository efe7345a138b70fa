package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"minibbs/internal/db"
	"minibbs/internal/services"
	"minibbs/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type ReactionHandler struct{}

func NewReactionHandler() *ReactionHandler {
	return &ReactionHandler{}
}

// React toggles the caller's emoji for a note. The browser's prior choice
// lives in the signed session cookie under one key per note; the service only
// ever sees it as an explicit value. The cookie is client-held and spoofable,
// which is the accepted contract of this mechanism.
func (h *ReactionHandler) React(c *gin.Context) {
	noteID := utils.StringToUint(c.PostForm("post_id"))
	emojiID := utils.StringToUint(c.PostForm("emoji_id"))
	if noteID == 0 || emojiID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post_id and emoji_id are required"})
		return
	}

	session := sessions.Default(c)
	key := fmt.Sprintf("react_%d", noteID)

	var prev *uint
	if v, ok := session.Get(key).(uint); ok {
		prev = &v
	}

	result, err := services.React(db.DB, noteID, emojiID, prev)
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown note or emoji"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save reaction"})
		return
	}

	if result.Success {
		session.Set(key, emojiID)
		session.Save()
	}

	c.JSON(http.StatusOK, result)
}
