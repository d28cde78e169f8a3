package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"irishgrants/internal/catalog"
	"irishgrants/internal/estimator"
	"irishgrants/internal/jsonld"
	"irishgrants/internal/logger"
	"irishgrants/internal/metrics"
	"irishgrants/internal/report"
	sentryutil "irishgrants/internal/sentry"

	json "github.com/goccy/go-json"
)

const calculatorPath = "/tools/ev-grant-calculator"

// maxBodyBytes caps JSON request bodies on the estimator APIs.
const maxBodyBytes = 16 * 1024

// stateFromQuery replays the calculator form through the reducer. The county
// is applied first, then the slider, then the typed price, so a valid typed
// value wins over the slider when a form without JavaScript sends both.
func stateFromQuery(q map[string][]string) estimator.State {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	st := estimator.New(get("county"))
	if raw := strings.TrimSpace(get("price")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			st = estimator.Reduce(st, estimator.Event{Kind: estimator.SlidePrice, Price: v})
		} else {
			st = estimator.Reduce(st, estimator.Event{Kind: estimator.EnterPriceText, Text: raw})
		}
	}
	if _, ok := q["price_text"]; ok {
		st = estimator.Reduce(st, estimator.Event{Kind: estimator.EnterPriceText, Text: get("price_text")})
	}
	return st
}

func recordEstimate(r *http.Request, price float64) {
	t, _ := estimator.TierFor(price)
	metrics.IncreaseEstimates(t.MinPrice)
	countEstimate(r.Context())
}

// CalculatorPageHandler serves GET /tools/ev-grant-calculator. Query parameters
// county, price and price_text drive the same reducer the API uses.
func CalculatorPageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	st := stateFromQuery(q)
	if q.Get("price") != "" || q.Get("price_text") != "" {
		recordEstimate(r, st.VehiclePrice)
	}

	md := catalog.Metadata()
	minGrant := estimator.EstimateGrant(estimator.MinPrice)

	var sb strings.Builder
	sb.WriteString(`<div class="container">`)
	sb.WriteString(breadcrumbHTML(calculatorTrail()))
	sb.WriteString(`</div>`)
	sb.WriteString(`<section class="hero"><div class="container"><h1>EV Grant Calculator Ireland</h1>`)
	sb.WriteString(`<p>Work out how much the SEAI grant takes off the price of a new electric car. ` +
		`Grants run from ` + estimator.FormatEuro(float64(minGrant)) + ` up to <strong>` +
		estimator.FormatEuro(float64(estimator.MaxGrant())) + `</strong> depending on the vehicle price.</p>`)
	sb.WriteString(`</div></section>`)

	sb.WriteString(`<section class="section"><div class="page-content">`)
	sb.WriteString(estimatorWidget(st))
	sb.WriteString(`</div></section>`)

	sb.WriteString(`<section class="section"><div class="page-content"><h2>How the grant is worked out</h2>`)
	sb.WriteString(`<p>The grant depends on the price band the vehicle falls into. Only the highest band you reach applies; bands are not added together.</p>`)
	sb.WriteString(tierTableHTML(st.VehiclePrice))
	sb.WriteString(evExamplesHTML())
	sb.WriteString(`<div class="notice">This calculator gives an estimate only. The final amount depends on SEAI approval of the vehicle and the rules in force on the day you buy. ` +
		`Always check with <a href="https://www.seai.ie/grants/electric-vehicle-grants/" rel="noopener">SEAI</a> before you commit.</div>`)
	sb.WriteString(`</div></section>`)

	sb.WriteString(`<div class="page-content">`)
	sb.WriteString(faqHTML("EV Grant Calculator: Frequently Asked Questions", md.CalculatorFAQs))
	sb.WriteString(`<section class="section" style="text-align:center"><h2>Ready to apply?</h2>` +
		`<p>Read the step-by-step guide before you visit the dealer.</p><p style="margin-top:14px">` +
		`<a class="btn" href="/grants/ev/seai-ev-grant">Complete EV grant guide</a></p></section>`)
	sb.WriteString(`</div>`)

	// The calculator repeats the SEAI grant page, so search engines are
	// pointed there.
	writePage(w, page{
		Title:       "EV Grant Calculator Ireland - Calculate Your SEAI Grant | " + siteName(),
		Description: "Free EV grant calculator for Ireland. Estimate your SEAI electric vehicle grant, up to " + estimator.FormatEuro(float64(estimator.MaxGrant())) + ", and the price you pay after it.",
		Path:        calculatorPath,
		Canonical:   "/grants/ev/seai-ev-grant",
		NoIndex:     true,
		CSS:         estimatorCSS(),
		Body:        sb.String(),
		JSONLD: []interface{}{
			jsonld.NewCalculator(site(), calculatorPath, minGrant, estimator.MaxGrant()),
			jsonld.NewFAQPage(md.CalculatorFAQs),
			jsonld.NewBreadcrumbs(site(), calculatorTrail()),
		},
	})
}

func calculatorTrail() []jsonld.Link {
	return []jsonld.Link{
		{Name: "Home", Path: "/"},
		{Name: "EV Grants", Path: "/grants/ev"},
		{Name: "EV Grant Calculator", Path: calculatorPath},
	}
}

func estimatorCSS() string {
	return `
.estimator label{display:block;font-size:.85rem;font-weight:600;margin:14px 0 4px;color:var(--ink-75)}
.estimator select,.estimator input[type=text]{width:100%;padding:10px 14px;border:1px solid var(--ink-15);border-radius:var(--radius);font:inherit;background:#fff}
.estimator input[type=range]{width:100%;margin-top:10px;accent-color:var(--green)}
.est-range{display:flex;justify-content:space-between;font-size:.75rem;color:var(--ink-50)}
.est-error{color:var(--red);font-size:.82rem;min-height:1.2em;margin-top:4px}
.est-results{display:grid;grid-template-columns:1fr 1fr;gap:14px;margin:18px 0}
.est-figure{background:var(--green-light);border-radius:var(--radius);padding:14px}
.est-figure span{display:block;font-size:.8rem;color:var(--ink-50)}
.est-figure strong{font-size:1.6rem;color:var(--green)}
.est-message{font-weight:600}
.est-actions{display:flex;gap:10px;flex-wrap:wrap;margin-top:16px}
tr.tier-hit td{background:var(--green-light);font-weight:700}
`
}

// estimatorWidget renders the calculator for st. The form works without
// JavaScript; the inline script mirrors the tier table for live updates.
func estimatorWidget(st estimator.State) string {
	var sb strings.Builder
	priceValue := strconv.FormatFloat(st.VehiclePrice, 'f', -1, 64)

	sb.WriteString(`<form id="estimator" class="estimator card" method="get" action="` + calculatorPath + `">`)
	sb.WriteString(`<label for="est-county">Your county</label><select id="est-county" name="county">`)
	for _, c := range estimator.Counties() {
		sel := ""
		if c == st.SelectedCounty {
			sel = " selected"
		}
		sb.WriteString(`<option value="` + c + `"` + sel + `>` + c + `</option>`)
	}
	sb.WriteString(`</select>`)

	sb.WriteString(`<label for="est-price">Vehicle price (€)</label>`)
	sb.WriteString(`<input id="est-price" name="price_text" type="text" inputmode="decimal" autocomplete="off" value="` + priceValue + `">`)
	sb.WriteString(`<input id="est-slider" name="price" type="range" aria-label="Vehicle price" min="` + strconv.Itoa(estimator.MinPrice) +
		`" max="` + strconv.Itoa(estimator.MaxPrice) + `" step="` + strconv.Itoa(estimator.PriceStep) + `" value="` + priceValue + `">`)
	sb.WriteString(`<div class="est-range"><span>` + estimator.FormatEuro(estimator.MinPrice) + `</span><span>` + estimator.FormatEuro(estimator.MaxPrice) + `</span></div>`)
	sb.WriteString(`<p id="est-error" class="est-error" role="alert">` + htmlEscape(st.InputError) + `</p>`)

	sb.WriteString(`<div class="est-results">`)
	sb.WriteString(`<div class="est-figure"><span>Estimated grant</span><strong id="est-grant">` + estimator.FormatEuro(float64(st.GrantAmount)) + `</strong></div>`)
	sb.WriteString(`<div class="est-figure"><span>Price after grant</span><strong id="est-final">` + estimator.FormatEuro(st.FinalPrice) + `</strong></div>`)
	sb.WriteString(`</div>`)
	sb.WriteString(`<p id="est-message" class="est-message">` + htmlEscape(st.Message()) + `</p>`)
	sb.WriteString(`<p><a id="est-installers" href="` + st.InstallerPath() + `">EV grants and charger installers in <span id="est-county-name">` + st.SelectedCounty + `</span></a></p>`)
	sb.WriteString(`<div class="est-actions"><noscript><button class="btn" type="submit">Calculate</button></noscript>`)
	sb.WriteString(`<button class="btn btn-outline" type="submit" formmethod="post" formaction="/api/estimate/report">Download PDF estimate</button></div>`)
	sb.WriteString(`</form>`)

	sb.WriteString(`<script>` + estimatorScript(st) + `</script>`)
	return sb.String()
}

func estimatorScript(st estimator.State) string {
	tiers, _ := json.Marshal(estimator.Tiers())
	msgs, _ := json.Marshal(map[string]string{
		"empty":   estimator.ErrEmptyPrice.Error(),
		"invalid": estimator.ErrInvalidPrice.Error(),
	})
	return `(function(){
var TIERS=` + string(tiers) + `,MSG=` + string(msgs) + `,MIN=` + strconv.Itoa(estimator.MinPrice) + `,MAX=` + strconv.Itoa(estimator.MaxPrice) + `;
var price=` + strconv.FormatFloat(st.VehiclePrice, 'f', -1, 64) + `;
var field=document.getElementById('est-price'),slider=document.getElementById('est-slider'),county=document.getElementById('est-county');
function grant(p){for(var i=0;i<TIERS.length;i++){if(p>=TIERS[i].min_price)return TIERS[i].grant}return 0}
function clamp(p){return Math.min(MAX,Math.max(MIN,p))}
function euro(n){return '€'+n.toLocaleString('en-IE',{maximumFractionDigits:2})}
function parse(t){t=t.trim().replace(/^€/,'').replace(/^eur/i,'').replace(/[\s,_]/g,'');if(t==='')return{err:MSG.empty};if(!/^[+-]?(\d+\.?\d*|\.\d+)$/.test(t))return{err:MSG.invalid};return{v:parseFloat(t)}}
function render(err){
var g=grant(price),fin=Math.max(0,price-g);
document.getElementById('est-grant').textContent=euro(g);
document.getElementById('est-final').textContent=euro(fin);
document.getElementById('est-message').textContent=g>0?'You qualify for the maximum grant of '+euro(g):'Your vehicle may qualify for a smaller grant amount';
document.getElementById('est-error').textContent=err||'';
var c=county.value;
document.getElementById('est-installers').href='/ireland/county-'+c.toLowerCase()+'/ev-grants/';
document.getElementById('est-county-name').textContent=c;
if(window.dataLayer)window.dataLayer.push({event:'ev_estimate',price:price,grant:g,county:c});
}
field.addEventListener('change',function(){var r=parse(field.value);if(r.err){render(r.err);return}price=clamp(r.v);field.value=price;slider.value=price;render('')});
slider.addEventListener('input',function(){price=clamp(parseFloat(slider.value));field.value=price;render('')});
county.addEventListener('change',function(){render(document.getElementById('est-error').textContent)});
})();`
}

// tierTableHTML renders the grant ladder with the band for price highlighted.
func tierTableHTML(price float64) string {
	applied, ok := estimator.TierFor(price)
	var sb strings.Builder
	sb.WriteString(`<table class="data"><thead><tr><th>Vehicle price from</th><th>Grant</th></tr></thead><tbody>`)
	for _, t := range estimator.Tiers() {
		cls := ""
		if ok && t == applied {
			cls = ` class="tier-hit"`
		}
		sb.WriteString(`<tr` + cls + `><td>` + estimator.FormatEuro(float64(t.MinPrice)) + `</td><td>` + estimator.FormatEuro(float64(t.Grant)) + `</td></tr>`)
	}
	sb.WriteString(`<tr><td>Below ` + estimator.FormatEuro(estimator.MinPrice) + `</td><td>` + estimator.FormatEuro(0) + `</td></tr>`)
	sb.WriteString(`</tbody></table>`)
	return sb.String()
}

func evExamplesHTML() string {
	examples := catalog.EVExamples()
	if len(examples) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<h3 style="margin-top:24px">Popular EVs and their estimated grant</h3>`)
	sb.WriteString(`<table class="data"><thead><tr><th>Vehicle</th><th>Price</th><th>Grant</th><th>After grant</th></tr></thead><tbody>`)
	for _, e := range examples {
		p := float64(e.Price)
		sb.WriteString(`<tr><td>` + htmlEscape(e.Make+" "+e.Model) + `</td><td>` + estimator.FormatEuro(p) + `</td><td>` +
			estimator.FormatEuro(float64(estimator.EstimateGrant(p))) + `</td><td>` + estimator.FormatEuro(estimator.FinalPrice(p)) + `</td></tr>`)
	}
	sb.WriteString(`</tbody></table>`)
	return sb.String()
}

// ---------- APIs ----------

type estimateRequest struct {
	Price          *float64 `json:"price"`
	VehiclePrice   *float64 `json:"vehicle_price"`
	County         string   `json:"county"`
	SelectedCounty string   `json:"selected_county"`
}

type estimateResponse struct {
	VehiclePrice   float64 `json:"vehicle_price"`
	GrantAmount    int     `json:"grant_amount"`
	FinalPrice     float64 `json:"final_price"`
	Eligible       bool    `json:"eligible"`
	Message        string  `json:"message"`
	SelectedCounty string  `json:"selected_county,omitempty"`
	InstallerPath  string  `json:"installer_path,omitempty"`
}

// EstimateHandler serves GET /api/estimate?price=... and POST /api/estimate.
// The price is evaluated as given, without the calculator's range clamp.
func EstimateHandler(w http.ResponseWriter, r *http.Request) {
	var (
		price  float64
		county string
	)
	switch r.Method {
	case http.MethodGet:
		raw := r.URL.Query().Get("price")
		v, err := estimator.ParsePrice(raw)
		if err != nil {
			writeJSONStatus(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": err.Error()})
			return
		}
		price = v
		county = r.URL.Query().Get("county")
	case http.MethodPost:
		var req estimateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeJSONStatus(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid request body"})
			return
		}
		switch {
		case req.VehiclePrice != nil:
			price = *req.VehiclePrice
		case req.Price != nil:
			price = *req.Price
		default:
			writeJSONStatus(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": estimator.ErrEmptyPrice.Error()})
			return
		}
		county = req.SelectedCounty
		if county == "" {
			county = req.County
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := estimator.CheckPrice(price); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": err.Error()})
		return
	}

	grant := estimator.EstimateGrant(price)
	res := estimateResponse{
		VehiclePrice: price,
		GrantAmount:  grant,
		FinalPrice:   estimator.FinalPrice(price),
		Eligible:     grant > 0,
	}
	st := estimator.State{GrantAmount: grant}
	res.Message = st.Message()
	if c, ok := estimator.CanonicalCounty(county); ok {
		res.SelectedCounty = c
		res.InstallerPath = estimator.InstallerPath(c)
	}
	recordEstimate(r, price)

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, res)
}

type reduceRequest struct {
	State *estimator.State `json:"state"`
	Event estimator.Event  `json:"event"`
}

type reduceResponse struct {
	State         estimator.State `json:"state"`
	Eligible      bool            `json:"eligible"`
	Message       string          `json:"message"`
	InstallerPath string          `json:"installer_path"`
}

func newReduceResponse(st estimator.State) reduceResponse {
	return reduceResponse{State: st, Eligible: st.Eligible(), Message: st.Message(), InstallerPath: st.InstallerPath()}
}

// ReduceHandler serves POST /api/estimator/reduce: {state, event} in, next state out.
// A missing state starts a new session.
func ReduceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req reduceRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid request body"})
		return
	}
	switch req.Event.Kind {
	case estimator.SelectCounty, estimator.SetPrice, estimator.SlidePrice, estimator.EnterPriceText:
	default:
		writeJSONStatus(w, http.StatusBadRequest, map[string]interface{}{
			"ok": false, "error": fmt.Sprintf("%s: %q", estimator.ErrUnknownKind, req.Event.Kind),
		})
		return
	}

	st := estimator.New("")
	if req.State != nil {
		st = estimator.Normalize(*req.State)
	}
	next := estimator.Reduce(st, req.Event)
	if req.Event.Kind != estimator.SelectCounty && next.InputError == "" {
		recordEstimate(r, next.VehiclePrice)
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, newReduceResponse(next))
}

// TiersHandler serves GET /api/estimator/tiers.
func TiersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, map[string]interface{}{
		"tiers":         estimator.Tiers(),
		"min_price":     estimator.MinPrice,
		"max_price":     estimator.MaxPrice,
		"price_step":    estimator.PriceStep,
		"default_price": estimator.DefaultPrice,
		"max_grant":     estimator.MaxGrant(),
		"counties":      estimator.Counties(),
	})
}

// ReportHandler serves POST /api/estimate/report as a PDF. It accepts the
// calculator form or a JSON {county, price} body.
func ReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var st estimator.State
	ct := r.Header.Get("Content-Type")
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		st = stateFromQuery(r.PostForm)
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		st = stateFromQuery(r.PostForm)
	default:
		var req estimateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		county := req.SelectedCounty
		if county == "" {
			county = req.County
		}
		st = estimator.New(county)
		switch {
		case req.VehiclePrice != nil:
			st = estimator.Reduce(st, estimator.Event{Kind: estimator.SetPrice, Price: *req.VehiclePrice})
		case req.Price != nil:
			st = estimator.Reduce(st, estimator.Event{Kind: estimator.SetPrice, Price: *req.Price})
		}
	}

	now := time.Now()
	var buf bytes.Buffer
	err := report.Render(&buf, report.Quote{
		SiteName:    siteName(),
		SiteURL:     siteHost(),
		State:       st,
		GeneratedAt: now,
	})
	if err != nil {
		sentryutil.CaptureError(err, map[string]string{"handler": "report", "phase": "pdf-output"})
		logger.Error("report: render failed", map[string]interface{}{"error": err.Error()})
		http.Error(w, "Could not generate the PDF", http.StatusInternalServerError)
		return
	}

	disposition := "attachment"
	if r.URL.Query().Get("mode") == "inline" {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`%s; filename="ev-grant-estimate-%s.pdf"`, disposition, now.Format("2006-01-02")))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
