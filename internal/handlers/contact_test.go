package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"irishgrants/internal/config"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

func postContact(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ContactHandler(w, req)
	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON: %v (%s)", err, w.Body.String())
	}
	return w, result
}

func TestContactHandler_Valid(t *testing.T) {
	body := `{"name":"Aoife","email":"aoife@example.ie","grant_type":"SEAI EV Grant","subject":"Second-hand EVs","message":"Does the grant apply to used cars?"}`
	w, result := postContact(t, body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if result["ok"] != true {
		t.Fatalf("Expected ok, got %v", result)
	}
	if _, err := uuid.Parse(result["reference"].(string)); err != nil {
		t.Errorf("reference is not a uuid: %v", result["reference"])
	}
}

func TestContactHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"email":"a@b.ie","subject":"Hi","message":"A long enough message"}`, "Please enter your name"},
		{"bad email", `{"name":"A","email":"not-an-email","subject":"Hi","message":"A long enough message"}`, "Please enter a valid email address"},
		{"unknown grant type", `{"name":"A","email":"a@b.ie","grant_type":"Lottery","subject":"Hi","message":"A long enough message"}`, "Please choose a grant type from the list"},
		{"short message", `{"name":"A","email":"a@b.ie","subject":"Hi","message":"   short  "}`, "Please enter a message of at least 10 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, result := postContact(t, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", w.Code)
			}
			if result["error"] != tt.want {
				t.Errorf("error = %v, want %q", result["error"], tt.want)
			}
		})
	}
}

func TestContactHandler_Honeypot(t *testing.T) {
	body := `{"name":"Bot","email":"bot","subject":"x","message":"x","botcheck":"1"}`
	w, result := postContact(t, body)
	if w.Code != http.StatusOK || result["ok"] != true {
		t.Errorf("bots should get a normal-looking reply, got %d %v", w.Code, result)
	}
}

func TestContactHandler_Form(t *testing.T) {
	form := url.Values{
		"name":    {"Seán"},
		"email":   {"sean@example.ie"},
		"subject": {"Springboard"},
		"message": {"When does the next intake open?"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	ContactHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestContactHandler_Turnstile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		success := r.PostForm.Get("response") == "good-token"
		json.NewEncoder(w).Encode(map[string]interface{}{"success": success})
	}))
	defer ts.Close()

	oldURL, oldSecret := turnstileVerifyURL, config.Cfg.TurnstileSecretKey
	turnstileVerifyURL = ts.URL
	config.Cfg.TurnstileSecretKey = "secret"
	defer func() {
		turnstileVerifyURL = oldURL
		config.Cfg.TurnstileSecretKey = oldSecret
	}()

	valid := `"name":"A","email":"a@b.ie","subject":"Hi","message":"A long enough message"`
	w, _ := postContact(t, `{`+valid+`}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("missing token: expected 403, got %d", w.Code)
	}
	w, _ = postContact(t, `{`+valid+`,"cf-turnstile-response":"bad-token"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("bad token: expected 403, got %d", w.Code)
	}
	w, _ = postContact(t, `{`+valid+`,"cf-turnstile-response":"good-token"}`)
	if w.Code != http.StatusOK {
		t.Errorf("good token: expected 200, got %d", w.Code)
	}
}

func TestContactPageHandler(t *testing.T) {
	w := get(t, ContactPageHandler, "/contact")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `name="botcheck"`) {
		t.Error("contact form should carry the honeypot field")
	}
	if strings.Contains(body, "cf-turnstile") {
		t.Error("turnstile widget should be hidden without a site key")
	}
}

func TestRateLimiter_AllowAt(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Second)
	defer rl.Stop()

	now := time.Now()
	if !rl.allowAt("1.2.3.4", now) || !rl.allowAt("1.2.3.4", now) {
		t.Fatal("burst of 2 should be allowed")
	}
	if rl.allowAt("1.2.3.4", now) {
		t.Error("third request in the same instant should be limited")
	}
	if !rl.allowAt("5.6.7.8", now) {
		t.Error("other clients have their own bucket")
	}
	if rl.allowAt("1.2.3.4", now.Add(500*time.Millisecond)) {
		t.Error("half an interval should not refill a token")
	}
	if !rl.allowAt("1.2.3.4", now.Add(time.Second)) {
		t.Error("a full interval should refill one token")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	defer rl.Stop()
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}
	if code := call("/api/health"); code != http.StatusOK {
		t.Fatalf("first API call: got %d", code)
	}
	if code := call("/api/health"); code != http.StatusTooManyRequests {
		t.Errorf("second API call: expected 429, got %d", code)
	}
	if code := call("/grants/ev"); code != http.StatusOK {
		t.Errorf("pages are not limited, got %d", code)
	}
}
