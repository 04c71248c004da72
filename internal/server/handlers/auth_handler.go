package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/service/auth"
	"github.com/mamadbah2/barnmonitor/internal/service/guard"
)

// Authenticator is the auth gateway surface used over HTTP.
type Authenticator interface {
	Current() (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Signup(ctx context.Context, form models.SignupForm) (*models.Session, error)
	Logout(ctx context.Context) error
}

// AuthHandler exposes login, signup, logout and the current session.
type AuthHandler struct {
	gateway Authenticator
	logger  *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(gateway Authenticator, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{gateway: gateway, logger: logger}
}

// sessionView is the session as shown to the presentation layer; the token never leaves the process.
type sessionView struct {
	Authenticated bool           `json:"authenticated"`
	User          *models.Farmer `json:"user,omitempty"`
	Expiry        *time.Time     `json:"expiry,omitempty"`
	Redirect      string         `json:"redirect,omitempty"`
}

func viewOf(s *models.Session, redirect string) sessionView {
	if s == nil {
		return sessionView{Redirect: redirect}
	}
	user := s.User
	return sessionView{
		Authenticated: guard.CanEnter(s),
		User:          &user,
		Expiry:        s.Expiry,
		Redirect:      redirect,
	}
}

// Login authenticates with email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondError(c, h.logger, "invalid login payload", fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}

	sess, err := h.gateway.Login(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		respondError(c, h.logger, "login failed", err)
		return
	}

	c.JSON(http.StatusOK, viewOf(sess, auth.HomePath))
}

// Signup registers a new farmer.
func (h *AuthHandler) Signup(c *gin.Context) {
	var form models.SignupForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, h.logger, "invalid signup payload", fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}

	sess, err := h.gateway.Signup(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.logger, "signup failed", err)
		return
	}

	c.JSON(http.StatusCreated, viewOf(sess, auth.HomePath))
}

// Logout ends the session. It succeeds whether or not anybody was logged in.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.gateway.Logout(c.Request.Context()); err != nil {
		respondError(c, h.logger, "logout failed", err)
		return
	}
	c.JSON(http.StatusOK, viewOf(nil, guard.LoginPath))
}

// Session reports the current session without contacting the API.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, err := h.gateway.Current()
	if err != nil {
		respondError(c, h.logger, "read session failed", err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess, ""))
}
