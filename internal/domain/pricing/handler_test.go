package pricing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func TestHandlerResolve(t *testing.T) {
	f := newFixture(100000)
	providerID := uuid.New()
	f.addInsuranceEntry(providerID, 80000)

	h := NewHandler(f.resolver(), NewService(f.rules))

	body := fmt.Sprintf(`{"service_id":%q,"payer_type":"insurance","insurance_provider_id":%q}`,
		f.serviceID, providerID)
	req := httptest.NewRequest(http.MethodPost, "/pricing/resolve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.Resolve(c); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resolved ResolvedPrice
	if err := json.Unmarshal(rec.Body.Bytes(), &resolved); err != nil {
		t.Fatal(err)
	}
	if !resolved.FinalPrice.Equal(decimal.NewFromInt(80000)) {
		t.Errorf("final = %s, want 80000", resolved.FinalPrice)
	}
	if resolved.Currency != "IDR" {
		t.Errorf("currency = %s, want IDR", resolved.Currency)
	}
}

func TestHandlerResolve_BadRef(t *testing.T) {
	f := newFixture(100000)
	h := NewHandler(f.resolver(), NewService(f.rules))

	req := httptest.NewRequest(http.MethodPost, "/pricing/resolve", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	err := h.Resolve(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("err = %v, want 400", err)
	}
}

func TestHandlerResolve_UnknownItem(t *testing.T) {
	f := newFixture(100000)
	h := NewHandler(f.resolver(), NewService(f.rules))

	body := fmt.Sprintf(`{"service_id":%q}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/pricing/resolve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	err := h.Resolve(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("err = %v, want 404", err)
	}
}

func TestHandlerCompare(t *testing.T) {
	f := newFixture(100000)
	providerID := uuid.New()
	f.insurance.names[providerID] = "Alpha Care"
	f.addInsuranceEntry(providerID, 80000)

	h := NewHandler(f.resolver(), NewService(f.rules))

	req := httptest.NewRequest(http.MethodGet, "/pricing/compare?service_id="+f.serviceID.String(), nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.Compare(c); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var cmp Comparison
	if err := json.Unmarshal(rec.Body.Bytes(), &cmp); err != nil {
		t.Fatal(err)
	}
	if len(cmp.Offers) != 1 {
		t.Fatalf("offers = %d, want 1", len(cmp.Offers))
	}
	if cmp.Offers[0].ProviderName != "Alpha Care" {
		t.Errorf("provider = %s, want Alpha Care", cmp.Offers[0].ProviderName)
	}
	if !cmp.Offers[0].Savings.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("savings = %s, want 20000", cmp.Offers[0].Savings)
	}
}

func TestHandlerCompare_RejectsBothIDs(t *testing.T) {
	f := newFixture(100000)
	h := NewHandler(f.resolver(), NewService(f.rules))

	target := "/pricing/compare?service_id=" + uuid.New().String() + "&lab_test_id=" + uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	err := h.Compare(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("err = %v, want 400", err)
	}
}

func TestHandlerCreateRule(t *testing.T) {
	f := newFixture(100000)
	h := NewHandler(f.resolver(), NewService(f.rules))

	body := `{"name":"Promo","rule_type":"promotion","discount_type":"percentage","discount_value":"10","applies_to":"all","active":true}`
	req := httptest.NewRequest(http.MethodPost, "/pricing-rules", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.CreateRule(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var r PricingRule
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatal(err)
	}
	if r.ID == uuid.Nil {
		t.Error("created rule has no id")
	}
}

func TestHandlerGetRule_NotFound(t *testing.T) {
	f := newFixture(100000)
	h := NewHandler(f.resolver(), NewService(f.rules))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetRule(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("err = %v, want 404", err)
	}
}
