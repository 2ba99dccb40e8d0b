package web

import (
	"encoding/json"
	"html/template"
	"net/http"

	"session-gatekeeper/internal/auth"
	"session-gatekeeper/internal/logger"
	"session-gatekeeper/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterPublic mounts pages that need no session.
func RegisterPublic(r gin.IRoutes) {
	r.GET("/", home)
}

// RegisterProtected mounts pages that must sit behind the access guard.
func RegisterProtected(r gin.IRoutes) {
	r.GET("/dashboard", dashboard)
	r.GET("/settings", settings)
}

func home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title": "Home",
	})
}

func dashboard(c *gin.Context) {
	user := currentUser(c)

	pretty, err := json.MarshalIndent(user, "", "    ")
	if err != nil {
		logger.Error("dashboard: marshal token", map[string]any{
			"error": err.Error(),
		})
		RenderError(c, http.StatusInternalServerError, "Could not display the session.")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":  "Dashboard",
		"User":   user,
		"Pretty": string(pretty),
	})
}

func settings(c *gin.Context) {
	user := currentUser(c)

	c.HTML(http.StatusOK, "settings.html", gin.H{
		"Title":    "Settings",
		"User":     user,
		"Nickname": user.Nickname(),
	})
}

// currentUser returns the token stored on the guarded session; nil is
// tolerated by every caller.
func currentUser(c *gin.Context) *auth.Token {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return nil
	}
	return sess.User
}

func errorPage(status int, message string) gin.H {
	return gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	}
}

// RenderError writes an HTML error page and stops the handler chain.
func RenderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", errorPage(status, message))
	c.Abort()
}

// WriteError renders the error page outside a gin handler, for the
// net/http side of the access guard.
func WriteError(w http.ResponseWriter, tmpl *template.Template, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "error.html", errorPage(status, message)); err != nil {
		logger.Error("render error page", map[string]any{
			"error": err.Error(),
		})
	}
}
