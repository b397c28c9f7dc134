package birdblog

import (
	"crypto/subtle"
	"encoding/gob"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/rhit-weinrea/moms-bird-blog/views"
)

const (
	sessionName      = "gallery_session"
	editorSessionKey = "editor_logged_in"

	rememberMaxAge = 30 * 24 * 60 * 60
)

func init() {
	// Flashes travel through the gorilla session cookie as gob.
	gob.Register(views.Flash{})
}

// isEditor reports whether the current session carries the editor flag.
func isEditor(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	v, ok := sess.Values[editorSessionKey].(bool)
	return ok && v
}

// setEditorSession marks the session as editor-authenticated. With remember
// the cookie survives for 30 days instead of the default 12 hours.
func (a *App) setEditorSession(c echo.Context, remember bool) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[editorSessionKey] = true
	if remember {
		sess.Options.MaxAge = rememberMaxAge
		sess.Options.Secure = a.Config.RememberCookieSecure
	}
	return sess.Save(c.Request(), c.Response())
}

func clearEditorSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, editorSessionKey)
	return sess.Save(c.Request(), c.Response())
}

// checkEditorCredentials compares both halves in constant time.
func (a *App) checkEditorCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Config.EditorUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.Config.EditorPass)) == 1
	return userOK && passOK
}

// requireEditor guards mutation routes. Unauthenticated requests are bounced
// to the login page with the original path preserved for the post-login
// redirect.
func (a *App) requireEditor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if isEditor(c) {
			return next(c)
		}
		addFlash(c, "warning", "Please log in as editor to access that page.")
		return c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(c.Request().URL.Path))
	}
}

// addFlash queues a one-shot message for the next rendered page. A failed
// save only means the notice is lost.
func addFlash(c echo.Context, category, message string) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return
	}
	sess.AddFlash(views.Flash{Category: category, Message: message})
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Warnf("save flash: %v", err)
	}
}

// takeFlashes drains queued messages for rendering.
func takeFlashes(c echo.Context) []views.Flash {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) > 0 {
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			c.Logger().Warnf("clear flashes: %v", err)
		}
	}
	var out []views.Flash
	for _, v := range raw {
		if f, ok := v.(views.Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

// safeNext keeps post-login redirects on-site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
