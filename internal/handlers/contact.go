package handlers

import (
	"errors"
	"net/http"
	"strings"

	"irishgrants/internal/config"
	"irishgrants/internal/jsonld"
	"irishgrants/internal/logger"
	"irishgrants/internal/metrics"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

var grantTypes = []string{
	"SEAI EV Grant",
	"SEAI Home Charger Grant",
	"Springboard+ Funding",
	"Human Capital Initiative",
	"Other EV Grants",
	"Other Education Grants",
	"General Question",
}

var validate = newContactValidator()

func newContactValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("grant_type", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		for _, t := range grantTypes {
			if s == t {
				return true
			}
		}
		return false
	})
	return v
}

type contactRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	GrantType string `json:"grant_type" validate:"grant_type"`
	Subject   string `json:"subject" validate:"required,max=200"`
	Message   string `json:"message" validate:"required,min=10,max=5000"`
	Botcheck  string `json:"botcheck"`
	Turnstile string `json:"cf-turnstile-response"`
}

var contactFieldMessages = map[string]string{
	"Name":      "Please enter your name",
	"Email":     "Please enter a valid email address",
	"GrantType": "Please choose a grant type from the list",
	"Subject":   "Please enter a subject",
	"Message":   "Please enter a message of at least 10 characters",
}

// contactError turns the first validation failure into a message for the form.
func contactError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := contactFieldMessages[verrs[0].Field()]; ok {
			return msg
		}
	}
	return "Please check the form and try again"
}

func decodeContact(r *http.Request) (contactRequest, error) {
	var req contactRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Name = r.PostForm.Get("name")
	req.Email = r.PostForm.Get("email")
	req.GrantType = r.PostForm.Get("grant_type")
	req.Subject = r.PostForm.Get("subject")
	req.Message = r.PostForm.Get("message")
	req.Botcheck = r.PostForm.Get("botcheck")
	req.Turnstile = r.PostForm.Get("cf-turnstile-response")
	return req, nil
}

// ContactHandler handles POST /api/contact. Messages are acknowledged with a
// reference number; only non-identifying fields are logged.
func ContactHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	req, err := decodeContact(r)
	if err != nil {
		metrics.IncreaseContactSubmissions("invalid")
		writeJSONStatus(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "Invalid request"})
		return
	}

	// bots fill the hidden field; pretend it worked
	if req.Botcheck != "" {
		metrics.IncreaseContactSubmissions("spam")
		writeJSON(w, map[string]interface{}{"ok": true, "reference": uuid.NewString()})
		return
	}

	if !verifyTurnstile(r.Context(), getTurnstileToken(r, req.Turnstile), clientIP(r)) {
		metrics.IncreaseContactSubmissions("captcha")
		writeJSONStatus(w, http.StatusForbidden, map[string]interface{}{"ok": false, "error": "Security check failed, please try again"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if err := validate.Struct(req); err != nil {
		metrics.IncreaseContactSubmissions("invalid")
		writeJSONStatus(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": contactError(err)})
		return
	}

	ref := uuid.NewString()
	logger.Info("contact: message received", map[string]interface{}{
		"reference":  ref,
		"grant_type": req.GrantType,
		"subject":    req.Subject,
		"length":     len(req.Message),
	})
	metrics.IncreaseContactSubmissions("ok")
	writeJSON(w, map[string]interface{}{"ok": true, "reference": ref})
}

// ContactPageHandler serves GET /contact.
func ContactPageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	head := ""
	tsWidget := ""
	if config.Cfg.TurnstileSiteKey != "" {
		head = `<script src="https://challenges.cloudflare.com/turnstile/v0/api.js" async defer></script>`
		tsWidget = `<div style="margin:16px 0"><div class="cf-turnstile" data-sitekey="` + htmlEscape(config.Cfg.TurnstileSiteKey) + `" data-theme="light"></div></div>`
	}
	trail := []jsonld.Link{{Name: "Home", Path: "/"}, {Name: "Contact", Path: "/contact"}}

	var sb strings.Builder
	sb.WriteString(`<div class="page-content">` + breadcrumbHTML(trail))
	sb.WriteString(`<section class="hero" style="padding-top:16px"><h1>Contact us</h1>`)
	sb.WriteString(`<p>Questions about a grant, or spotted something out of date? Send us a message and we will reply within 24 hours.</p></section>`)
	sb.WriteString(`<form id="contactForm" class="card contact-form" method="post" action="/api/contact">`)
	sb.WriteString(`<div class="field"><label for="ct-name">Name *</label><input id="ct-name" name="name" type="text" required maxlength="100"></div>`)
	sb.WriteString(`<div class="field"><label for="ct-email">Email *</label><input id="ct-email" name="email" type="email" required maxlength="254"></div>`)
	sb.WriteString(`<div class="field"><label for="ct-grant">Grant type</label><select id="ct-grant" name="grant_type"><option value="">Select a grant type (optional)</option>`)
	for _, t := range grantTypes {
		sb.WriteString(`<option value="` + htmlEscape(t) + `">` + htmlEscape(t) + `</option>`)
	}
	sb.WriteString(`</select></div>`)
	sb.WriteString(`<div class="field"><label for="ct-subject">Subject *</label><input id="ct-subject" name="subject" type="text" required maxlength="200"></div>`)
	sb.WriteString(`<div class="field"><label for="ct-message">Message *</label><textarea id="ct-message" name="message" required minlength="10" maxlength="5000"></textarea></div>`)
	sb.WriteString(`<input type="checkbox" name="botcheck" value="1" style="display:none" tabindex="-1" autocomplete="off">`)
	sb.WriteString(tsWidget)
	sb.WriteString(`<button class="btn" type="submit" id="contactSubmit">Send message</button>`)
	sb.WriteString(`<p id="contactResult" role="status" style="margin-top:14px;font-weight:600"></p>`)
	sb.WriteString(`</form>`)
	sb.WriteString(`<p class="notice">We are an information service and cannot process grant applications. For your application status contact SEAI or the HEA directly.</p>`)
	sb.WriteString(`</div>`)
	sb.WriteString(`<script>
document.getElementById('contactForm').addEventListener('submit',function(e){
e.preventDefault();var f=e.target,btn=document.getElementById('contactSubmit'),out=document.getElementById('contactResult');
btn.disabled=true;out.textContent='Sending...';
fetch('/api/contact',{method:'POST',body:new URLSearchParams(new FormData(f))})
.then(function(r){return r.json()})
.then(function(res){if(res.ok){out.textContent='Thank you. Your reference is '+res.reference+'.';f.reset();if(window.dataLayer)window.dataLayer.push({event:'form_submit',form_name:'contact'})}else{out.textContent=res.error||'Something went wrong, please try again.'}})
.catch(function(){out.textContent='Connection problem, please try again.'})
.finally(function(){btn.disabled=false});
});
</script>`)

	writePage(w, page{
		Title:       "Contact Us | " + siteName(),
		Description: "Get in touch with " + siteName() + " about EV and education grants in Ireland.",
		Path:        "/contact",
		CSS:         contactCSS,
		Head:        head,
		Body:        sb.String(),
		JSONLD:      []interface{}{jsonld.NewBreadcrumbs(site(), trail)},
	})
}

const contactCSS = `
.contact-form{margin-bottom:24px}
.field{margin-bottom:14px}
.field label{display:block;font-size:.82rem;font-weight:600;margin-bottom:4px;color:var(--ink-75)}
.field input,.field select,.field textarea{width:100%;padding:10px 14px;border:1px solid var(--ink-15);border-radius:var(--radius);font:inherit;background:#fff}
.field textarea{min-height:140px;resize:vertical}
.field input:focus,.field select:focus,.field textarea:focus{outline:none;border-color:var(--green-mid)}
`
