package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"irishgrants/internal/counter"
	"irishgrants/internal/estimator"
	"irishgrants/internal/sourcecheck"

	json "github.com/goccy/go-json"
)

func decodeEstimate(t *testing.T, w *httptest.ResponseRecorder) estimateResponse {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res estimateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	return res
}

func TestEstimateHandler_GET(t *testing.T) {
	tests := []struct {
		price    string
		grant    int
		final    float64
		eligible bool
	}{
		{"42000", 4000, 38000, true},
		{"29995", 3000, 26995, true},
		{"€50,000", 5000, 45000, true},
		{"9999", 0, 9999, false},
		{"100000", 5000, 95000, true},
	}
	for _, tt := range tests {
		w := get(t, EstimateHandler, "/api/estimate?price="+url.QueryEscape(tt.price))
		res := decodeEstimate(t, w)
		if res.GrantAmount != tt.grant || res.FinalPrice != tt.final || res.Eligible != tt.eligible {
			t.Errorf("price %s: got grant=%d final=%v eligible=%v, want %d %v %v",
				tt.price, res.GrantAmount, res.FinalPrice, res.Eligible, tt.grant, tt.final, tt.eligible)
		}
	}
}

func TestEstimateHandler_Message(t *testing.T) {
	res := decodeEstimate(t, get(t, EstimateHandler, "/api/estimate?price=9999"))
	if res.Message != "Your vehicle may qualify for a smaller grant amount" {
		t.Errorf("message = %q", res.Message)
	}
	res = decodeEstimate(t, get(t, EstimateHandler, "/api/estimate?price=60000"))
	if res.Message != "You qualify for the maximum grant of €5,000" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestEstimateHandler_BadInput(t *testing.T) {
	for _, target := range []string{"/api/estimate?price=abc", "/api/estimate", "/api/estimate?price=-5000"} {
		w := get(t, EstimateHandler, target)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestEstimateHandler_POST(t *testing.T) {
	body := `{"price":29995,"county":"cork"}`
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	EstimateHandler(w, req)

	res := decodeEstimate(t, w)
	if res.GrantAmount != 3000 || res.FinalPrice != 26995 {
		t.Errorf("got grant=%d final=%v, want 3000 26995", res.GrantAmount, res.FinalPrice)
	}
	if res.SelectedCounty != "Cork" || res.InstallerPath != "/ireland/county-cork/ev-grants/" {
		t.Errorf("county = %q, installer = %q", res.SelectedCounty, res.InstallerPath)
	}
}

func TestEstimateHandler_NegativePOST(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(`{"price":-5000}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	EstimateHandler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), estimator.ErrNegativePrice.Error()) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestEstimateHandler_CountsEstimates(t *testing.T) {
	store := counter.NewFileStore(filepath.Join(t.TempDir(), "counter.json"))
	SetCounter(store)
	defer func() {
		SetCounter(nil)
		store.Close()
	}()

	before, _ := store.Get(context.Background())
	get(t, EstimateHandler, "/api/estimate?price=35000")
	get(t, EstimateHandler, "/api/estimate?price=abc")
	after, _ := store.Get(context.Background())
	if after-before != 1 {
		t.Errorf("Expected 1 counted estimate, got %d", after-before)
	}
}

func postReduce(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/estimator/reduce", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ReduceHandler(w, req)
	return w
}

func TestReduceHandler_NewSessionClamps(t *testing.T) {
	w := postReduce(t, `{"event":{"kind":"set_price","price":250000}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res reduceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if res.State.VehiclePrice != 100000 || res.State.GrantAmount != 5000 || res.State.FinalPrice != 95000 {
		t.Errorf("state = %+v", res.State)
	}
	if res.State.SelectedCounty != "Dublin" {
		t.Errorf("county = %q, want Dublin", res.State.SelectedCounty)
	}
	if !res.Eligible {
		t.Error("a €100,000 vehicle should be eligible")
	}
}

func TestReduceHandler_InvalidTextKeepsPrice(t *testing.T) {
	body := `{"state":{"selected_county":"Kerry","vehicle_price":42000,"grant_amount":4000,"final_price":38000},` +
		`"event":{"kind":"enter_price_text","text":"abc"}}`
	var res reduceResponse
	if err := json.Unmarshal(postReduce(t, body).Body.Bytes(), &res); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if res.State.VehiclePrice != 42000 || res.State.GrantAmount != 4000 {
		t.Errorf("price should be kept, got %+v", res.State)
	}
	if res.State.InputError != estimator.ErrInvalidPrice.Error() {
		t.Errorf("input_error = %q", res.State.InputError)
	}
	if res.InstallerPath != "/ireland/county-kerry/ev-grants/" {
		t.Errorf("installer_path = %q", res.InstallerPath)
	}
}

func TestReduceHandler_TamperedStateIsNormalized(t *testing.T) {
	body := `{"state":{"selected_county":"Kerry","vehicle_price":42000,"grant_amount":99999,"final_price":1},` +
		`"event":{"kind":"select_county","county":"Mayo"}}`
	var res reduceResponse
	json.Unmarshal(postReduce(t, body).Body.Bytes(), &res)
	if res.State.GrantAmount != 4000 || res.State.FinalPrice != 38000 {
		t.Errorf("derived fields should be recomputed, got %+v", res.State)
	}
	if res.State.SelectedCounty != "Mayo" {
		t.Errorf("county = %q, want Mayo", res.State.SelectedCounty)
	}
}

func TestReduceHandler_UnknownKind(t *testing.T) {
	if w := postReduce(t, `{"event":{"kind":"teleport"}}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if w := postReduce(t, `not json`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestTiersHandler(t *testing.T) {
	w := get(t, TiersHandler, "/api/estimator/tiers")
	var res struct {
		Tiers    []estimator.Tier `json:"tiers"`
		MaxGrant int              `json:"max_grant"`
		Counties []string         `json:"counties"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(res.Tiers) != 7 || res.MaxGrant != 5000 || len(res.Counties) != 26 {
		t.Errorf("got %d tiers, max %d, %d counties", len(res.Tiers), res.MaxGrant, len(res.Counties))
	}
}

func TestStateFromQuery(t *testing.T) {
	tests := []struct {
		query   string
		county  string
		price   float64
		errText string
	}{
		{"", "Dublin", 30000, ""},
		{"county=Cork&price=42000", "Cork", 42000, ""},
		{"price=50000&price_text=42000", "Dublin", 42000, ""},
		{"price=50000&price_text=", "Dublin", 50000, estimator.ErrEmptyPrice.Error()},
		{"price_text=abc", "Dublin", 30000, estimator.ErrInvalidPrice.Error()},
		{"price=5", "Dublin", 10000, ""},
		{"county=Narnia", "Dublin", 30000, ""},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		st := stateFromQuery(q)
		if st.SelectedCounty != tt.county || st.VehiclePrice != tt.price || st.InputError != tt.errText {
			t.Errorf("%q: got %+v", tt.query, st)
		}
	}
}

func TestCalculatorPageHandler(t *testing.T) {
	w := get(t, CalculatorPageHandler, calculatorPath+"?county=Cork&price_text=42000")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`id="est-grant">€4,000</strong>`,
		`id="est-final">€38,000</strong>`,
		`href="/ireland/county-cork/ev-grants/"`,
		`content="noindex, follow"`,
		`<link rel="canonical" href="https://irishgrants.test/grants/ev/seai-ev-grant">`,
		`<tr class="tier-hit"><td>€40,000</td>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("calculator page missing %q", want)
		}
	}
}

func TestCalculatorPageHandler_ShowsInputError(t *testing.T) {
	body := get(t, CalculatorPageHandler, calculatorPath+"?price_text=lots").Body.String()
	if !strings.Contains(body, estimator.ErrInvalidPrice.Error()) {
		t.Error("invalid typed price should be reported")
	}
	if !strings.Contains(body, `id="est-grant">€3,500</strong>`) {
		t.Error("the default price should still be shown")
	}
}

func TestReportHandler_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/estimate/report", strings.NewReader(`{"price":42000,"county":"Cork"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ReportHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestReportHandler_Form(t *testing.T) {
	form := url.Values{"county": {"Sligo"}, "price": {"30000"}, "price_text": {"55000"}}
	req := httptest.NewRequest(http.MethodPost, "/api/estimate/report?mode=inline", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	ReportHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "inline;") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestReportHandler_Multipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("county", "Kerry")
	mw.WriteField("price_text", "42000")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/estimate/report", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	ReportHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	text, err := sourcecheck.PDFText(w.Body.Bytes())
	if err != nil {
		t.Fatalf("PDFText: %v", err)
	}
	for _, want := range []string{"Kerry", "42,000", "38,000"} {
		if !strings.Contains(text, want) {
			t.Errorf("pdf text missing %q; multipart fields were not read", want)
		}
	}
}

func TestReportHandler_MethodNotAllowed(t *testing.T) {
	if w := get(t, ReportHandler, "/api/estimate/report"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}
