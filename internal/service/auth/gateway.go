package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/session"
)

// HomePath is where a freshly authenticated farmer lands.
const HomePath = "/dashboard"

// API is the subset of the remote API the gateway talks to.
type API interface {
	Login(ctx context.Context, creds models.Credentials) (models.Farmer, string, error)
	Signup(ctx context.Context, form models.SignupForm) (models.Farmer, string, error)
	CheckSession(ctx context.Context) (models.Farmer, error)
	Logout(ctx context.Context) error
}

// Gateway performs login, signup, session restore and logout, and keeps the session store in step.
type Gateway struct {
	api    API
	store  session.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewGateway wires a new gateway instance.
func NewGateway(api API, store session.Store, logger *zap.Logger) *Gateway {
	g := &Gateway{
		api:    api,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

// Current returns the stored session, nil when logged out.
func (g *Gateway) Current() (*models.Session, error) {
	return g.store.Get()
}

// Login authenticates with email and password and stores the resulting session.
func (g *Gateway) Login(ctx context.Context, email, password string) (*models.Session, error) {
	switch {
	case strings.TrimSpace(email) == "":
		return nil, apperrors.Required("email")
	case password == "":
		return nil, apperrors.Required("password")
	}

	farmer, token, err := g.api.Login(ctx, models.Credentials{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		g.logger.Info("login rejected", zap.String("email", email), zap.Error(err))
		return nil, authError(err)
	}

	return g.establish(farmer, token)
}

// Signup registers a new farmer and stores the resulting session.
func (g *Gateway) Signup(ctx context.Context, form models.SignupForm) (*models.Session, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	farmer, token, err := g.api.Signup(ctx, form)
	if err != nil {
		g.logger.Info("signup rejected", zap.String("email", form.Email), zap.Error(err))
		return nil, authError(err)
	}

	return g.establish(farmer, token)
}

// RestoreSession revalidates the persisted session against the server.
//
// A rejected or expired session is cleared and (nil, nil) is returned. A network failure
// leaves the store untouched and returns an AuthError of kind NetworkFailure.
func (g *Gateway) RestoreSession(ctx context.Context) (*models.Session, error) {
	stored, err := g.store.Get()
	if err != nil {
		return nil, fmt.Errorf("read stored session: %w", err)
	}

	if stored != nil && stored.Expired(g.now()) {
		g.logger.Info("stored session token expired", zap.Int("farmer_id", stored.UserID()))
		return nil, g.drop()
	}

	farmer, err := g.api.CheckSession(ctx)
	if err != nil {
		var transportErr *apperrors.TransportError
		if errors.As(err, &transportErr) {
			return nil, &apperrors.AuthError{Kind: apperrors.NetworkFailure, Err: err}
		}
		g.logger.Info("server rejected stored session", zap.Error(err))
		return nil, g.drop()
	}

	if stored == nil || stored.Token == "" {
		// Cookie-only session: usable for this run, nothing to persist.
		return &models.Session{User: farmer}, nil
	}

	refreshed := *stored
	refreshed.User = farmer
	if err := g.store.Set(refreshed); err != nil {
		return nil, fmt.Errorf("refresh stored session: %w", err)
	}

	g.logger.Debug("session restored", zap.Int("farmer_id", farmer.ID))
	return &refreshed, nil
}

// Logout clears the local session, then tells the server on a best-effort basis.
func (g *Gateway) Logout(ctx context.Context) error {
	if err := g.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	if err := g.api.Logout(ctx); err != nil {
		g.logger.Warn("server logout failed", zap.Error(err))
	}
	return nil
}

func (g *Gateway) establish(farmer models.Farmer, token string) (*models.Session, error) {
	sess := models.Session{
		User:   farmer,
		Token:  token,
		Expiry: tokenExpiry(token),
	}

	if err := g.store.Set(sess); err != nil {
		if errors.Is(err, session.ErrIncompleteSession) {
			return nil, &apperrors.AuthError{Kind: apperrors.InvalidCredentials, Err: err}
		}
		return nil, fmt.Errorf("store session: %w", err)
	}

	g.logger.Info("farmer authenticated", zap.Int("farmer_id", farmer.ID))
	return &sess, nil
}

func (g *Gateway) drop() error {
	if err := g.store.Clear(); err != nil {
		return fmt.Errorf("clear rejected session: %w", err)
	}
	return nil
}

func authError(err error) error {
	var transportErr *apperrors.TransportError
	if errors.As(err, &transportErr) {
		return &apperrors.AuthError{Kind: apperrors.NetworkFailure, Err: err}
	}
	return &apperrors.AuthError{Kind: apperrors.InvalidCredentials, Err: err}
}

// tokenExpiry reads the exp claim of a JWT token without verifying it. Opaque tokens have no expiry.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	expiry := exp.Time
	return &expiry
}
