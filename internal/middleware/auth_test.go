package middleware

import (
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"covidrisk/internal/models"
)

func newAuthApp(enabled bool) *fiber.App {
	app := fiber.New()
	sessionMiddleware, _ := session.NewWithStore(session.Config{CookieHTTPOnly: true})
	app.Use(sessionMiddleware)

	auth := NewAuthMiddleware(enabled)

	app.Get("/login-as", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		sess.Set(SessionUserSub, "sub-1")
		sess.Set(SessionUserName, "Ada")
		return c.SendString("ok")
	})
	app.Get("/private", auth.RequireAuth, func(c fiber.Ctx) error {
		user, _ := c.Locals("user").(*models.User)
		return c.SendString("hello " + user.DisplayName())
	})
	return app
}

func TestRequireAuth_Disabled(t *testing.T) {
	app := newAuthApp(false)
	req, _ := http.NewRequest(http.MethodGet, "/private", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "hello " {
		t.Errorf("got %d %q, want anonymous pass-through", resp.StatusCode, body)
	}
}

func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	app := newAuthApp(true)
	req, _ := http.NewRequest(http.MethodGet, "/private", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusSeeOther && resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want redirect", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/auth/login" {
		t.Errorf("Location = %q, want /auth/login", loc)
	}
}

func TestRequireAuth_HTMXGetsHeader(t *testing.T) {
	app := newAuthApp(true)
	req, _ := http.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("HX-Request", "true")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if got := resp.Header.Get("HX-Redirect"); got != "/auth/login" {
		t.Errorf("HX-Redirect = %q", got)
	}
}

func TestRequireAuth_LoggedIn(t *testing.T) {
	app := newAuthApp(true)

	req, _ := http.NewRequest(http.MethodGet, "/login-as", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}

	req, _ = http.NewRequest(http.MethodGet, "/private", nil)
	for _, c := range resp.Cookies() {
		req.AddCookie(c)
	}
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "hello Ada" {
		t.Errorf("body = %q, want %q", body, "hello Ada")
	}
}
