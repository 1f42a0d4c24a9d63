package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// storedToken mirrors the on-disk OAuth token file layout.
type storedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

func (t storedToken) valid(now time.Time) bool {
	if strings.TrimSpace(t.AccessToken) == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return false
	}
	return now.Add(expirySkew).Before(t.Expiry)
}

// accessToken returns a usable bearer token, refreshing and persisting it
// when the stored one has expired.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	token, err := c.readToken()
	if err != nil {
		return "", err
	}
	if token.valid(c.now()) {
		return token.AccessToken, nil
	}
	refreshed, err := c.refreshToken(ctx, token)
	if err != nil {
		return "", err
	}
	if err := c.writeToken(refreshed); err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

func (c *Client) readToken() (storedToken, error) {
	var token storedToken
	path := strings.TrimSpace(c.cfg.TokenFile)
	if path == "" {
		return token, errors.New("catalog: token file not configured")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return token, fmt.Errorf("catalog: read token file: %w", err)
	}
	if err := json.Unmarshal(raw, &token); err != nil {
		return token, fmt.Errorf("catalog: parse token file %s: %w", path, err)
	}
	if strings.TrimSpace(token.RefreshToken) == "" {
		return token, fmt.Errorf("catalog: token file %s has no refresh token", path)
	}
	return token, nil
}

func (c *Client) writeToken(token storedToken) error {
	encoded, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode token: %w", err)
	}
	if err := os.WriteFile(c.cfg.TokenFile, encoded, 0o600); err != nil {
		return fmt.Errorf("catalog: persist token: %w", err)
	}
	return nil
}

func (c *Client) refreshToken(ctx context.Context, token storedToken) (storedToken, error) {
	if strings.TrimSpace(c.cfg.ClientID) == "" || strings.TrimSpace(c.cfg.ClientSecret) == "" {
		return storedToken{}, errors.New("catalog: client credentials required to refresh token")
	}
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("refresh_token", token.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return storedToken{}, fmt.Errorf("catalog: new refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return storedToken{}, fmt.Errorf("catalog: refresh token: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return storedToken{}, fmt.Errorf("catalog: decode refresh response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices || parsed.Error != "" {
		detail := parsed.Error
		if parsed.Description != "" {
			detail += ": " + parsed.Description
		}
		return storedToken{}, fmt.Errorf("catalog: refresh rejected (http %d): %s", resp.StatusCode, detail)
	}
	if strings.TrimSpace(parsed.AccessToken) == "" {
		return storedToken{}, errors.New("catalog: refresh response missing access token")
	}

	refreshed := storedToken{
		AccessToken:  parsed.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    parsed.TokenType,
	}
	if parsed.ExpiresIn > 0 {
		refreshed.Expiry = c.now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	}
	return refreshed, nil
}
