package barnapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
)

type loginResponse struct {
	Token string `json:"token"`
	Data  *struct {
		User *models.Farmer `json:"user"`
	} `json:"data"`
}

type signupResponse struct {
	Token  string         `json:"token"`
	Farmer *models.Farmer `json:"farmer"`
}

// Login exchanges credentials for the farmer profile and a session token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.Farmer, string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login", creds)
	if err != nil {
		return models.Farmer{}, "", err
	}

	var payload loginResponse
	if err := decode(resp.Body(), "", &payload); err != nil {
		return models.Farmer{}, "", fmt.Errorf("decode login response: %w", err)
	}
	if payload.Data == nil || payload.Data.User == nil || payload.Token == "" {
		return models.Farmer{}, "", fmt.Errorf("login: %w", ErrIncompleteResponse)
	}
	return *payload.Data.User, payload.Token, nil
}

// Signup registers a new farmer and returns the created profile with its session token.
func (c *Client) Signup(ctx context.Context, form models.SignupForm) (models.Farmer, string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/signup", form)
	if err != nil {
		return models.Farmer{}, "", err
	}

	var payload signupResponse
	if err := decode(resp.Body(), "", &payload); err != nil {
		return models.Farmer{}, "", fmt.Errorf("decode signup response: %w", err)
	}
	if payload.Farmer == nil || payload.Token == "" {
		return models.Farmer{}, "", fmt.Errorf("signup: %w", ErrIncompleteResponse)
	}
	return *payload.Farmer, payload.Token, nil
}

// CheckSession asks the server whether the current credential is still valid.
// The server answers either {"user": {...}} or the bare farmer object; an empty
// or null body means no server-side session.
func (c *Client) CheckSession(ctx context.Context) (models.Farmer, error) {
	resp, err := c.do(ctx, http.MethodGet, "/check_session", nil)
	if err != nil {
		return models.Farmer{}, err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return models.Farmer{}, fmt.Errorf("check session: %w", ErrIncompleteResponse)
	}

	var wrapped struct {
		User *models.Farmer `json:"user"`
	}
	if err := decode(body, "", &wrapped); err != nil {
		return models.Farmer{}, fmt.Errorf("decode check_session response: %w", err)
	}
	if wrapped.User != nil && wrapped.User.ID != 0 {
		return *wrapped.User, nil
	}

	var bare models.Farmer
	if err := decode(body, "", &bare); err != nil {
		return models.Farmer{}, fmt.Errorf("decode check_session response: %w", err)
	}
	if bare.ID == 0 {
		return models.Farmer{}, fmt.Errorf("check session: %w", ErrIncompleteResponse)
	}
	return bare, nil
}

// Logout tells the server to drop its side of the session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/logout", nil)
	return err
}

// Farmer fetches a farmer profile with the herd and its nested records.
func (c *Client) Farmer(ctx context.Context, id int) (*models.FarmerProfile, error) {
	path := entityPath("/farmers", id)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var profile models.FarmerProfile
	if err := decode(resp.Body(), "", &profile); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &profile, nil
}
