package showreel

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/showreel/auth"
	"github.com/eringen/showreel/views"
)

// loginFailed is shown for every rejected login so accounts cannot be probed.
const loginFailed = "Invalid email or password"

// requireSession sends requests without an admin session to the login page.
func requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.Redirect(http.StatusSeeOther, "/login/")
		}
		return next(c)
	}
}

func (a *App) handleLoginPage(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.Login(views.LoginData{Site: a.siteMeta(), CSRF: CsrfToken(c)}))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	email := c.FormValue("email")
	sess, err := a.Auth.SignIn(c.Request().Context(), email, c.FormValue("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			a.Logger.Error("sign in failed", "error", err)
		}
		a.loginLimiter.Record(ip)
		return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(views.LoginData{
			Site:  a.siteMeta(),
			CSRF:  CsrfToken(c),
			Email: email,
			Error: loginFailed,
		}))
	}
	if err := setAdminSession(c, sess.Email); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleLogout(c echo.Context) error {
	if email := SessionEmail(c); email != "" {
		if err := a.Auth.SignOut(c.Request().Context(), auth.Session{Email: email}); err != nil {
			a.Logger.Warn("sign out failed", "email", email, "error", err)
		}
	}
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login/")
}
