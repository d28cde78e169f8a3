package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"irishgrants/internal/config"

	json "github.com/goccy/go-json"
)

// turnstileVerifyURL is a variable so tests can point it at a local server.
var turnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type turnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// verifyTurnstile validates a Cloudflare Turnstile token.
// Returns true if verification passes or if no secret key is configured (dev mode).
func verifyTurnstile(ctx context.Context, token, remoteIP string) bool {
	secret := config.Cfg.TurnstileSecretKey
	if secret == "" {
		return true
	}
	if token == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	form := url.Values{"secret": {secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, turnstileVerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var result turnstileResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}
	return result.Success
}

// getTurnstileToken reads the token from the header, or from the widget's form field.
func getTurnstileToken(r *http.Request, body string) string {
	if t := strings.TrimSpace(r.Header.Get("X-Turnstile-Token")); t != "" {
		return t
	}
	return strings.TrimSpace(body)
}
