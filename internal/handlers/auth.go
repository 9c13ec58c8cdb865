package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"golang.org/x/oauth2"

	"covidrisk/internal/config"
	"covidrisk/internal/middleware"
	"covidrisk/internal/models"
	"covidrisk/internal/sessions"
)

const sessionOAuthState = "oauth_state"

// AuthHandler handles OIDC authentication flows.
type AuthHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	manager      *sessions.Manager
}

// NewAuthHandler creates a new auth handler with OIDC configuration.
func NewAuthHandler(ctx context.Context, cfg *config.Config, manager *sessions.Manager) (*AuthHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	return &AuthHandler{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
		manager:      manager,
	}, nil
}

// Login initiates the OIDC login flow.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	state := generateState()

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	sess.Set(sessionOAuthState, state)

	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback completes the login: it checks the state, resolves the user
// from the returned tokens and stores the identity in the session.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	state, _ := sess.Get(sessionOAuthState).(string)
	sess.Delete(sessionOAuthState)
	if state == "" || state != c.Query("state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}

	user, err := h.resolveUser(c.Context(), c.Query("code"))
	if err != nil {
		return err
	}

	sess.Set(middleware.SessionUserSub, user.Sub)
	sess.Set(middleware.SessionUserEmail, user.Email)
	sess.Set(middleware.SessionUserName, user.Name)
	slog.Info("user signed in", "sub", user.Sub)

	target, _ := sess.Get(middleware.SessionRedirect).(string)
	sess.Delete(middleware.SessionRedirect)
	if target == "" {
		target = "/"
	}
	return c.Redirect().To(target)
}

// resolveUser exchanges the authorization code and builds the user from the
// ID token, topped up with userinfo when the provider offers it.
func (h *AuthHandler) resolveUser(ctx context.Context, code string) (*models.User, error) {
	token, err := h.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "missing id_token")
	}
	idToken, err := h.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id_token")
	}

	var user models.User
	if err := idToken.Claims(&user); err != nil {
		return nil, err
	}
	if user.Email == "" || user.Name == "" {
		h.fillFromUserInfo(ctx, token, &user)
	}
	if user.Sub == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "missing subject claim")
	}
	return &user, nil
}

// fillFromUserInfo sets the fields the ID token left empty.
func (h *AuthHandler) fillFromUserInfo(ctx context.Context, token *oauth2.Token, user *models.User) {
	info, err := h.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		slog.Warn("failed to fetch userinfo", "error", err)
		return
	}
	var extra models.User
	if err := info.Claims(&extra); err != nil {
		return
	}
	if user.Email == "" {
		user.Email = extra.Email
	}
	if user.Name == "" {
		user.Name = extra.Name
	}
}

// Logout ends the session. Its prediction history goes with it.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if sess := session.FromContext(c); sess != nil {
		h.manager.Drop(sess.ID())
		if err := sess.Destroy(); err != nil {
			slog.Warn("failed to destroy session", "error", err)
		}
	}
	return c.Redirect().To("/")
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
