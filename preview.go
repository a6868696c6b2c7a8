package spacetraveling

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName   = "prismic_preview"
	previewRefKey = "ref"
)

func (a *App) previewEnabled() bool {
	return a.Config.SessionSecret != ""
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// previewRef returns the preview ref stored in the session, or "" when the
// visitor is not previewing.
func (a *App) previewRef(c echo.Context) string {
	if !a.previewEnabled() {
		return ""
	}
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	ref, _ := sess.Values[previewRefKey].(string)
	return ref
}

func setPreviewRef(c echo.Context, ref string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[previewRefKey] = ref
	return sess.Save(c.Request(), c.Response())
}

func clearPreviewRef(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, previewRefKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// handlePreview starts a preview session. Prismic's preview button calls it
// with the preview ref as token and the previewed document's id.
func (a *App) handlePreview(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing preview token")
	}
	if u, err := url.Parse(token); err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid preview token")
	}
	if err := setPreviewRef(c, token); err != nil {
		return err
	}

	dest := "/"
	if id := c.QueryParam("documentId"); id != "" {
		uid, err := a.Source.PostUIDByID(c.Request().Context(), id, token)
		switch {
		case err == nil:
			dest = "/post/" + url.PathEscape(uid) + "/"
		case errors.Is(err, ErrNotFound):
			a.Logger.Warn("preview document not found", "document_id", id)
		default:
			return err
		}
	}
	return c.Redirect(http.StatusTemporaryRedirect, dest)
}

func handleExitPreview(c echo.Context) error {
	if err := clearPreviewRef(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}
