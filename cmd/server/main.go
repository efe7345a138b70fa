package main

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"minibbs/internal/config"
	"minibbs/internal/db"
	"minibbs/internal/middleware"
	"minibbs/internal/router"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	csrf "github.com/utrack/gin-csrf"
)

func main() {
	cfg := config.Load()

	// Initialize Database
	db.Init(cfg)

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions (admin login and per-browser reaction memory share the
	// same signed cookie)
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("minibbs_session", store))

	// CSRF protection for all form POSTs
	r.Use(csrf.Middleware(csrf.Options{
		Secret: cfg.SessionSecret,
		ErrorFunc: func(c *gin.Context) {
			c.String(http.StatusBadRequest, "CSRF token mismatch")
			c.Abort()
		},
	}))

	// Load Templates
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets (uploaded emoji images live under /static/emojis)
	r.Static("/static", "./web/static")

	// Middleware
	r.Use(middleware.LoadUser())

	// Routes
	router.RegisterRoutes(r, cfg)

	log.Printf("minibbs server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layout := templatesDir + "/layouts/base.html"

	// User text is plain; strip anything that parses as markup before display.
	policy := bluemonday.StrictPolicy()

	funcMap := template.FuncMap{
		"clean": func(s string) string {
			return policy.Sanitize(s)
		},
		"timeAgo": func(t time.Time) string {
			seconds := int(time.Since(t).Seconds())
			switch {
			case seconds < 60:
				return fmt.Sprintf("%ds ago", seconds)
			case seconds < 3600:
				return fmt.Sprintf("%dm ago", seconds/60)
			case seconds < 86400:
				return fmt.Sprintf("%dh ago", seconds/3600)
			default:
				return fmt.Sprintf("%dd ago", seconds/86400)
			}
		},
	}

	r.AddFromFilesFuncs("notes/list.html", funcMap, layout, templatesDir+"/views/notes/list.html")
	r.AddFromFilesFuncs("auth/login.html", funcMap, layout, templatesDir+"/views/auth/login.html")
	r.AddFromFilesFuncs("admin/console.html", funcMap, layout, templatesDir+"/views/admin/console.html")
	r.AddFromFilesFuncs("error.html", funcMap, layout, templatesDir+"/views/error.html")

	return r
}
