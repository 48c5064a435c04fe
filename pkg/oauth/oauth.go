package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config identifies this application to the university OAuth provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenURL     string
	BasicInfoURL string
}

// BasicInfo is the account payload the provider returns for a valid token.
type BasicInfo struct {
	Account        string `json:"cmuitaccount"`
	AccountName    string `json:"cmuitaccount_name"`
	FirstnameEN    string `json:"firstname_EN"`
	LastnameEN     string `json:"lastname_EN"`
	StudentID      string `json:"student_id"`
	OrganizationEN string `json:"organization_name_EN"`
	AccountTypeID  string `json:"itaccounttype_id"`
	AccountTypeEN  string `json:"itaccounttype_EN"`
}

// Client talks to the OAuth token and basic-info endpoints.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

// New constructs an OAuth client instance.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.TokenURL == "" || cfg.BasicInfoURL == "" {
		return nil, fmt.Errorf("oauth configuration must be provided")
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger.With().Str("component", "oauth").Logger(),
	}, nil
}

// Exchange trades an authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURL)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed with status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("invalid token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access token")
	}

	return payload.AccessToken, nil
}

// FetchBasicInfo resolves the account behind the access token.
func (c *Client) FetchBasicInfo(ctx context.Context, accessToken string) (BasicInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BasicInfoURL, nil)
	if err != nil {
		return BasicInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return BasicInfo{}, fmt.Errorf("basic info fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BasicInfo{}, fmt.Errorf("basic info fetch failed with status %d", resp.StatusCode)
	}

	var info BasicInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return BasicInfo{}, fmt.Errorf("invalid basic info response: %w", err)
	}

	return info, nil
}
