package router

import (
	"minibbs/internal/config"
	"minibbs/internal/handlers"
	"minibbs/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	// Handlers
	noteHandler := handlers.NewNoteHandler(cfg)
	reactionHandler := handlers.NewReactionHandler()
	authHandler := handlers.NewAuthHandler()
	adminHandler := handlers.NewAdminHandler(cfg)

	// Public Routes
	r.GET("/", noteHandler.List)               // board, newest first
	r.POST("/", noteHandler.Create)            // post a note or reply
	r.POST("/renote/:id", noteHandler.Renote)  // repost an existing note
	r.POST("/react", reactionHandler.React)    // emoji reaction (JSON)
	r.GET("/login", authHandler.ShowLogin)     // login form
	r.POST("/login", authHandler.Login)        // submit login

	// Authenticated Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/logout", authHandler.Logout)
	}

	// Admin Routes
	admin := r.Group("/")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/admin", adminHandler.Console)                          // console: notes, blocklist, emoji catalog
		admin.POST("/delete/:id", adminHandler.DeleteNote)                 // delete any note
		admin.POST("/block", adminHandler.Block)                           // idempotent
		admin.POST("/unblock", adminHandler.Unblock)                       // idempotent, admin-gated
		admin.POST("/admin/emojis", adminHandler.AddEmoji)                 // multipart: name + image
		admin.POST("/admin/emojis/delete/:id", adminHandler.DeleteEmoji)   // remove catalog entry
	}
}
