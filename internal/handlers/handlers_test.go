package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"minibbs/internal/config"
	"minibbs/internal/db"
	"minibbs/internal/middleware"
	"minibbs/internal/models"
	"minibbs/internal/router"
	"minibbs/internal/services"
	"minibbs/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	csrf "github.com/utrack/gin-csrf"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the real middleware stack and routes around a fresh sqlite
// store. CSRF checks are switched off (IgnoreMethods) so form posts stay
// simple; the middleware itself stays in place because Render asks it for a
// token.
func newTestApp(t *testing.T) (*httptest.Server, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	db.DB = gdb

	cfg := &config.Config{
		SessionSecret: "test-secret",
		UploadDir:     t.TempDir(),
	}

	r := gin.New()
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("minibbs_session", store))
	r.Use(csrf.Middleware(csrf.Options{
		Secret:        cfg.SessionSecret,
		IgnoreMethods: []string{"GET", "POST"},
	}))
	r.HTMLRender = stubTemplates()
	r.Use(middleware.LoadUser())
	router.RegisterRoutes(r, cfg)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, cfg
}

func stubTemplates() multitemplate.Renderer {
	render := multitemplate.NewRenderer()
	for _, name := range []string{"notes/list.html", "auth/login.html", "admin/console.html", "error.html"} {
		render.AddFromString(name, name)
	}
	return render
}

// newClient keeps cookies and does not follow redirects, so handlers'
// status codes and Location headers stay observable.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func seedUser(t *testing.T, username, password string, admin bool) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user := models.User{Username: username, Password: hash, IsAdmin: admin}
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func login(t *testing.T, client *http.Client, baseURL, username, password string) {
	t.Helper()
	resp, err := client.PostForm(baseURL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))
}

func TestAdminRequiresLogin(t *testing.T) {
	srv, _ := newTestApp(t)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/admin")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestAdminForbiddenForNonAdmin(t *testing.T) {
	srv, _ := newTestApp(t)
	seedUser(t, "bob", "password1", false)

	client := newClient(t)
	resp, err := client.PostForm(srv.URL+"/login", url.Values{
		"username": {"bob"}, "password": {"password1"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	for _, probe := range []struct{ method, path string }{
		{"GET", "/admin"},
		{"POST", "/delete/1"},
		{"POST", "/block"},
		{"POST", "/unblock"},
		{"POST", "/admin/emojis"},
		{"POST", "/admin/emojis/delete/1"},
	} {
		req, err := http.NewRequest(probe.method, srv.URL+probe.path, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", probe.method, probe.path)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestApp(t)
	seedUser(t, "admin", "correct", true)

	client := newClient(t)
	resp, err := client.PostForm(srv.URL+"/login", url.Values{
		"username": {"admin"}, "password": {"wrong"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPostingAndBlockedIP(t *testing.T) {
	srv, _ := newTestApp(t)
	client := newClient(t)

	resp, err := client.PostForm(srv.URL+"/", url.Values{"note": {"hello"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var count int64
	db.DB.Model(&models.Note{}).Count(&count)
	require.EqualValues(t, 1, count)

	// httptest connects over loopback; block that and the next post bounces
	require.NoError(t, services.Block(db.DB, "127.0.0.1"))

	resp, err = client.PostForm(srv.URL+"/", url.Values{"note": {"world"}})
	require.NoError(t, err)
	body := make([]byte, 16)
	n, _ := resp.Body.Read(body)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "blocked", string(body[:n]))

	db.DB.Model(&models.Note{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestEmptyNoteRejected(t *testing.T) {
	srv, _ := newTestApp(t)
	client := newClient(t)

	resp, err := client.PostForm(srv.URL+"/", url.Values{"note": {"   "}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReactEndpoint(t *testing.T) {
	srv, _ := newTestApp(t)
	client := newClient(t)

	note := models.Note{Text: "hello", IP: "1.1.1.1"}
	require.NoError(t, db.DB.Create(&note).Error)
	a := models.Emoji{Name: "up", ImagePath: "emojis/up.png"}
	b := models.Emoji{Name: "heart", ImagePath: "emojis/heart.png"}
	require.NoError(t, db.DB.Create(&a).Error)
	require.NoError(t, db.DB.Create(&b).Error)

	react := func(emojiID uint) services.ReactionResult {
		resp, err := client.PostForm(srv.URL+"/react", url.Values{
			"post_id":  {utils.UintToString(note.ID)},
			"emoji_id": {utils.UintToString(emojiID)},
		})
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result services.ReactionResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		return result
	}

	res := react(a.ID)
	require.True(t, res.Success)
	require.Equal(t, 1, res.Count)

	// Same browser (cookie jar) repeating the same emoji: no-op
	res = react(a.ID)
	require.False(t, res.Success)
	require.Equal(t, 1, res.Count)

	// Switching emoji moves the count
	res = react(b.ID)
	require.True(t, res.Success)
	require.Equal(t, 1, res.Count)

	var gone int64
	db.DB.Model(&models.Reaction{}).Where("note_id = ? AND emoji_id = ?", note.ID, a.ID).Count(&gone)
	require.EqualValues(t, 0, gone)
}

func TestAdminDeleteNote(t *testing.T) {
	srv, _ := newTestApp(t)
	seedUser(t, "admin", "secret123", true)

	note := models.Note{Text: "spam", IP: "1.1.1.1"}
	require.NoError(t, db.DB.Create(&note).Error)

	client := newClient(t)
	login(t, client, srv.URL, "admin", "secret123")

	resp, err := client.PostForm(srv.URL+"/delete/"+utils.UintToString(note.ID), nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var count int64
	db.DB.Model(&models.Note{}).Count(&count)
	require.EqualValues(t, 0, count)

	// Deleting again reports not found
	resp, err = client.PostForm(srv.URL+"/delete/"+utils.UintToString(note.ID), nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminBlockUnblockEndpoints(t *testing.T) {
	srv, _ := newTestApp(t)
	seedUser(t, "admin", "secret123", true)

	client := newClient(t)
	login(t, client, srv.URL, "admin", "secret123")

	for i := 0; i < 2; i++ {
		resp, err := client.PostForm(srv.URL+"/block", url.Values{"ip": {"5.5.5.5"}})
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
	}

	var count int64
	db.DB.Model(&models.BlockedIP{}).Count(&count)
	require.EqualValues(t, 1, count)

	resp, err := client.PostForm(srv.URL+"/unblock", url.Values{"ip": {"5.5.5.5"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	db.DB.Model(&models.BlockedIP{}).Count(&count)
	require.EqualValues(t, 0, count)
}

func TestEmojiUploadEndpoint(t *testing.T) {
	srv, cfg := newTestApp(t)
	seedUser(t, "admin", "secret123", true)

	client := newClient(t)
	login(t, client, srv.URL, "admin", "secret123")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "party"))
	fw, err := w.CreateFormFile("image", "party.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest("POST", srv.URL+"/admin/emojis", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var emoji models.Emoji
	require.NoError(t, db.DB.First(&emoji).Error)
	require.Equal(t, "party", emoji.Name)

	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRenoteEndpoint(t *testing.T) {
	srv, _ := newTestApp(t)
	client := newClient(t)

	note := models.Note{Text: "original", IP: "1.1.1.1"}
	require.NoError(t, db.DB.Create(&note).Error)

	resp, err := client.PostForm(srv.URL+"/renote/"+utils.UintToString(note.ID), nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var renote models.Note
	require.NoError(t, db.DB.Where("renote_from = ?", note.ID).First(&renote).Error)
	require.Empty(t, renote.Text)

	// Renoting the renote is a domain-rule violation
	resp, err = client.PostForm(srv.URL+"/renote/"+utils.UintToString(renote.ID), nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Renoting a missing note is not found
	resp, err = client.PostForm(srv.URL+"/renote/99999", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
