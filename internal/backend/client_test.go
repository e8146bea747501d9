package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pulseboard/pulseboard/internal/models"
)

func newTestClient(url string, token string) *Client {
	return NewClient(url, 5*time.Second, ClientConfig{
		MaxRetries:     3,
		RetryDelayBase: time.Millisecond,
		Token:          func() string { return token },
	})
}

func TestFetchDashboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"label":"Cash Runway","value":4,"delta_pct":-2,"unit":"mo"}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	tiles, err := newTestClient(srv.URL, "tok-1").FetchDashboard(context.Background())
	if err != nil {
		t.Fatalf("FetchDashboard failed: %v", err)
	}
	if len(tiles) != 1 {
		t.Fatalf("expected 1 tile, got %d", len(tiles))
	}
	if tiles[0].Label != "Cash Runway" || tiles[0].Value != 4 || tiles[0].DeltaPct != -2 {
		t.Errorf("unexpected tile: %+v", tiles[0])
	}
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL, "").FetchAlerts(context.Background()); err != nil {
		t.Fatalf("FetchAlerts failed: %v", err)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "transient", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL, "").FetchDashboard(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestClientErrorSurfacesBody(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "").FetchAlerts(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("error %q does not carry the response body", err)
	}
	if calls != 1 {
		t.Errorf("4xx should not be retried, got %d calls", calls)
	}
}

func TestLoginFormEncoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		if r.PostForm.Get("username") != "kim@example.com" {
			t.Errorf("username = %q", r.PostForm.Get("username"))
		}
		if r.PostForm.Get("password") != "hunter2" {
			t.Errorf("password = %q", r.PostForm.Get("password"))
		}
		w.Write([]byte(`{"access_token":"tok-9","token_type":"bearer"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	token, err := newTestClient(srv.URL, "").Login(context.Background(), "kim@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token.AccessToken != "tok-9" || token.TokenType != "bearer" {
		t.Errorf("unexpected token: %+v", token)
	}
}

func TestFetchMarketData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market-data" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":"m-1","entity":"RivalCo","type":"price","change":"-5%","impact":"high","timestamp":"2025-06-01T12:00:00Z","confidence":0.9}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL, "").FetchMarketData(context.Background())
	if err != nil {
		t.Fatalf("FetchMarketData failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Entity != "RivalCo" || items[0].Type != "price" || items[0].Confidence != 0.9 {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestFetchEfficiency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/efficiency" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[{"date":"2025-06-01","baseline":3000,"actual":2800,"efficiency":93.3}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL, "").FetchEfficiency(context.Background())
	if err != nil {
		t.Fatalf("FetchEfficiency failed: %v", err)
	}
	if len(records) != 1 || records[0].Efficiency != 93.3 {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestFetchNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":"n-1","headline":"Port congestion easing","source":"Reuters","timestamp":"2025-06-01T09:00:00Z","sentiment":"positive"}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL, "").FetchNews(context.Background())
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}
	if len(items) != 1 || items[0].Headline != "Port congestion easing" || items[0].Sentiment != "positive" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if req.Email != "kim@example.com" || req.FullName != "Kim Tran" {
			t.Errorf("unexpected payload: %+v", req)
		}
		w.Write([]byte(`{"access_token":"tok-3","token_type":"bearer"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	token, err := newTestClient(srv.URL, "").Register(context.Background(), models.RegisterRequest{
		Email:    "kim@example.com",
		Password: "hunter2",
		FullName: "Kim Tran",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if token.AccessToken != "tok-3" {
		t.Errorf("unexpected token: %+v", token)
	}
}

func TestCreateCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req models.CompanyCreate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if req.BizType != "retail" || len(req.DataSources) != 1 {
			t.Errorf("unexpected payload: %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, "").CreateCompany(context.Background(), models.CompanyCreate{
		BizType:     "retail",
		DataSources: []string{"shopify"},
		Description: "Outdoor gear retailer",
	})
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
}

func TestAskAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask-ai" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Write([]byte(`{"impact_summary":"ok","forecast":{"dates":["2025-06-01"],"baseline":[1],"forecast":[2],"lower":[0.5],"upper":[3]},"actions":[{"title":"Bundle","subtitle":"Protect margin","cost":1000,"roi":2.3,"cta":"Go"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL, "").AskAI(context.Background(), models.AskAIRequest{Query: "What happens to margin?"})
	if err != nil {
		t.Fatalf("AskAI failed: %v", err)
	}
	if resp.ImpactSummary != "ok" {
		t.Errorf("ImpactSummary = %q", resp.ImpactSummary)
	}
	if len(resp.Actions) != 1 || resp.Actions[0].Title != "Bundle" {
		t.Errorf("unexpected actions: %+v", resp.Actions)
	}
}

func TestIngestFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ingest/file" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile failed: %v", err)
		}
		defer file.Close()
		if header.Filename != "sales.csv" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, "").IngestFile(context.Background(), "sales.csv", strings.NewReader("month,revenue\n"))
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}
}
