package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoice-generator/internal/config"
	"invoice-generator/internal/database"
	"invoice-generator/internal/export"
	"invoice-generator/internal/models"
	"invoice-generator/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

type testApp struct {
	t      *testing.T
	deps   *Deps
	engine *gin.Engine
}

// failingExporter stands in for a renderer that cannot reach its backend.
type failingExporter struct {
	format export.Format
	err    error
}

func (f failingExporter) Format() export.Format { return f.format }

func (f failingExporter) Render(context.Context, export.Invoice) (*export.Document, error) {
	return nil, f.err
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "invoice-test", ExpireHours: 1},
		Security: config.SecurityConfig{
			BcryptCost:    bcrypt.MinCost,
			EncryptionKey: "test-encryption-key",
			KDFSalt:       "test-salt",
		},
		Invoice: config.InvoiceConfig{
			IssuerName:    "Acme Ltd",
			IssuerAddress: []string{"1 Main St", "Springfield"},
			BillToName:    "Customer Name",
			BillToEmail:   "customer@example.com",
			Currency:      "USD",
			NumberNode:    1,
		},
		Archive: config.ArchiveConfig{Kind: "local", Dir: t.TempDir()},
	}
}

func newTestApp(t *testing.T, opts ...export.Option) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t)
	db, err := database.Init(cfg.Database)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	d, err := NewDeps(cfg, db, nil)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	if len(opts) > 0 {
		numbers, err := export.NewNumberer(2)
		if err != nil {
			t.Fatal(err)
		}
		all := append([]export.Option{export.WithArchive(d.Archive)}, opts...)
		d.Export = export.NewService(db, numbers, Header(cfg.Invoice), all...)
	}
	return &testApp{t: t, deps: d, engine: New(d)}
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var r *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func (a *testApp) register(email, password string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":             "Test User",
		"email":            email,
		"password":         password,
		"confirm_password": password,
	})
	if w.Code != http.StatusOK {
		a.t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
}

func (a *testApp) login(email, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		a.t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	decode(a.t, w, &data)
	if data.Token == "" {
		a.t.Fatal("login returned no token")
	}
	return data.Token
}

// signIn registers a fresh user and returns a token for a new session.
func (a *testApp) signIn() string {
	a.register("alice@example.com", "Passw0rd!")
	return a.login("alice@example.com", "Passw0rd!")
}

type invoiceView struct {
	Products []struct {
		ID   string  `json:"id"`
		Name string  `json:"name"`
		Qty  float64 `json:"qty"`
		Rate float64 `json:"rate"`
	} `json:"products"`
	Subtotal   float64 `json:"subtotal"`
	TaxTotal   float64 `json:"gst_total"`
	GrandTotal float64 `json:"grand_total"`
	Formatted  struct {
		GrandTotal string `json:"grand_total"`
	} `json:"formatted"`
}

func (a *testApp) items(token string) invoiceView {
	a.t.Helper()
	w := a.do(http.MethodGet, "/api/items", token, nil)
	if w.Code != http.StatusOK {
		a.t.Fatalf("list items: %d %s", w.Code, w.Body.String())
	}
	var data struct {
		Invoice invoiceView `json:"invoice"`
	}
	decode(a.t, w, &data)
	return data.Invoice
}

func (a *testApp) addSampleItems(token string) {
	a.t.Helper()
	for _, body := range []gin.H{
		{"name": "Widget", "qty": 2, "rate": 10.5},
		{"name": "Gadget", "quantity": "3", "rate": "1.25"},
	} {
		if w := a.do(http.MethodPost, "/api/items", token, body); w.Code != http.StatusOK {
			a.t.Fatalf("add item: %d %s", w.Code, w.Body.String())
		}
	}
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAuth_RegisterLoginLogout(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Bob", "email": "bob@example.com", "password": "short", "confirm_password": "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("weak password status = %d", w.Code)
	}

	app.register("Bob@Example.com", "Passw0rd!")
	w = app.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Bob", "email": "bob@example.com", "password": "Passw0rd!", "confirm_password": "Passw0rd!",
	})
	if env := decode(t, w, nil); w.Code != http.StatusConflict || env.Code != 40901 {
		t.Fatalf("duplicate register = %d/%d", w.Code, env.Code)
	}

	w = app.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "bob@example.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", w.Code)
	}

	token := app.login("bob@example.com", "Passw0rd!")

	var me struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	w = app.do(http.MethodGet, "/api/me", token, nil)
	decode(t, w, &me)
	if w.Code != http.StatusOK || me.User.Email != "bob@example.com" {
		t.Fatalf("me = %d %s", w.Code, w.Body.String())
	}

	if w := app.do(http.MethodPost, "/api/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout = %d", w.Code)
	}
	if w := app.do(http.MethodGet, "/api/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", w.Code)
	}
}

func TestAuth_Lockout(t *testing.T) {
	app := newTestApp(t)
	app.register("carol@example.com", "Passw0rd!")

	for i := 0; i < 5; i++ {
		app.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "carol@example.com", "password": "nope"})
	}
	w := app.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "carol@example.com", "password": "Passw0rd!"})
	env := decode(t, w, nil)
	if w.Code != http.StatusUnauthorized || !strings.Contains(env.Message, "locked") {
		t.Fatalf("login while locked = %d %q", w.Code, env.Message)
	}
}

func TestAuth_TokenSources(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn()

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  int
	}{
		{"none", func(*http.Request) {}, http.StatusUnauthorized},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=" + token }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "inv_token", Value: token}) }, http.StatusOK},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			app.engine.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestItems_AddListRemoveClear(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn()

	app.addSampleItems(token)

	inv := app.items(token)
	if len(inv.Products) != 2 {
		t.Fatalf("products = %d", len(inv.Products))
	}
	if inv.Products[0].Name != "Widget" || inv.Products[1].Name != "Gadget" {
		t.Fatalf("order = %q, %q", inv.Products[0].Name, inv.Products[1].Name)
	}
	if inv.Subtotal != 24.75 || inv.GrandTotal != 29.21 {
		t.Fatalf("totals = %v / %v", inv.Subtotal, inv.GrandTotal)
	}
	if inv.Formatted.GrandTotal != "$29.21" {
		t.Fatalf("formatted grand total = %q", inv.Formatted.GrandTotal)
	}

	var removed struct {
		Removed bool `json:"removed"`
	}
	decode(t, app.do(http.MethodDelete, "/api/items/does-not-exist", token, nil), &removed)
	if removed.Removed {
		t.Fatal("unknown id reported as removed")
	}
	decode(t, app.do(http.MethodDelete, "/api/items/"+inv.Products[0].ID, token, nil), &removed)
	if !removed.Removed {
		t.Fatal("existing id not removed")
	}
	if got := app.items(token); len(got.Products) != 1 || got.Products[0].Name != "Gadget" {
		t.Fatalf("after remove = %+v", got.Products)
	}

	var cleared struct {
		Cleared int `json:"cleared"`
	}
	decode(t, app.do(http.MethodDelete, "/api/items", token, nil), &cleared)
	if cleared.Cleared != 1 {
		t.Fatalf("cleared = %d", cleared.Cleared)
	}
	if got := app.items(token); len(got.Products) != 0 || got.GrandTotal != 0 {
		t.Fatalf("after clear = %+v", got)
	}
}

func TestItems_ValidationDetails(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn()

	tests := []struct {
		name string
		body gin.H
		want map[string]string
	}{
		{
			name: "all missing",
			body: gin.H{},
			want: map[string]string{"name": "required", "quantity": "required", "rate": "required"},
		},
		{
			name: "not numbers",
			body: gin.H{"name": "X", "qty": "two", "rate": "abc"},
			want: map[string]string{"quantity": "not_a_number", "rate": "not_a_number"},
		},
		{
			name: "out of range",
			body: gin.H{"name": "X", "qty": 0, "rate": -1},
			want: map[string]string{"quantity": "must_be_positive", "rate": "must_not_be_negative"},
		},
		{
			name: "huge exponent",
			body: gin.H{"name": "X", "qty": "1e400000000", "rate": 1},
			want: map[string]string{"quantity": "out_of_range"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(http.MethodPost, "/api/items", token, tt.body)
			env := decode(t, w, nil)
			if w.Code != http.StatusBadRequest || env.Code != 40001 {
				t.Fatalf("status = %d/%d", w.Code, env.Code)
			}
			if len(env.Details) != len(tt.want) {
				t.Fatalf("details = %v, want %v", env.Details, tt.want)
			}
			for k, v := range tt.want {
				if env.Details[k] != v {
					t.Errorf("details[%s] = %q, want %q", k, env.Details[k], v)
				}
			}
		})
	}

	if got := app.items(token); len(got.Products) != 0 {
		t.Fatalf("rejected items were stored: %+v", got.Products)
	}
}

func TestItems_SessionsAreIsolated(t *testing.T) {
	app := newTestApp(t)
	first := app.signIn()
	second := app.login("alice@example.com", "Passw0rd!")

	app.addSampleItems(first)

	if got := app.items(second); len(got.Products) != 0 {
		t.Fatalf("second session sees %d items", len(got.Products))
	}
}

func TestPreview(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn()
	app.addSampleItems(token)

	var data struct {
		Date   string `json:"date"`
		Issuer struct {
			Name  string   `json:"name"`
			Lines []string `json:"lines"`
		} `json:"issuer"`
		Invoice invoiceView `json:"invoice"`
		Empty   bool        `json:"empty"`
	}
	w := app.do(http.MethodGet, "/api/invoice/preview", token, nil)
	decode(t, w, &data)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if data.Issuer.Name != "Acme Ltd" || len(data.Issuer.Lines) != 2 {
		t.Fatalf("issuer = %+v", data.Issuer)
	}
	if data.Empty || data.Invoice.TaxTotal != 4.46 || data.Invoice.GrandTotal != 29.21 {
		t.Fatalf("preview = %+v", data)
	}
}

func TestGenerate_SuccessArchivesAndClears(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn()
	app.addSampleItems(token)

	w := app.do(http.MethodPost, "/api/invoices/generate?format=csv", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("generate = %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "invoice_") || !strings.Contains(cd, ".csv") {
		t.Errorf("disposition = %q", cd)
	}
	id := w.Header().Get("X-Invoice-Id")
	if id == "" || w.Header().Get("X-Invoice-Number") == "" {
		t.Fatal("missing invoice headers")
	}
	doc := w.Body.Bytes()
	if !strings.Contains(string(doc), "Grand Total,,,29.21,") {
		t.Fatalf("csv = %q", doc)
	}

	if got := app.items(token); len(got.Products) != 0 {
		t.Fatalf("ledger not cleared: %d items", len(got.Products))
	}

	var history struct {
		Items []struct {
			ID         string `json:"id"`
			Format     string `json:"format"`
			GrandTotal string `json:"grand_total"`
			Archived   bool   `json:"archived"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	decode(t, app.do(http.MethodGet, "/api/invoices", token, nil), &history)
	if history.Total != 1 || history.Items[0].ID != id {
		t.Fatalf("history = %+v", history)
	}
	if h := history.Items[0]; h.Format != "csv" || h.GrandTotal != "29.21" || !h.Archived {
		t.Fatalf("record = %+v", h)
	}

	decode(t, app.do(http.MethodGet, "/api/invoices?format=pdf", token, nil), &history)
	if history.Total != 0 {
		t.Fatalf("pdf filter total = %d", history.Total)
	}

	dl := app.do(http.MethodGet, "/api/invoices/"+id+"/download", token, nil)
	if dl.Code != http.StatusOK || !bytes.Equal(dl.Body.Bytes(), doc) {
		t.Fatalf("download = %d, same bytes %v", dl.Code, bytes.Equal(dl.Body.Bytes(), doc))
	}

	if w := app.do(http.MethodGet, "/api/invoices/123/download", token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id download = %d", w.Code)
	}
	if w := app.do(http.MethodGet, "/api/invoices/abc/download", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id download = %d", w.Code)
	}
}

func TestGenerate_FailureKeepsLedger(t *testing.T) {
	app := newTestApp(t, export.WithExporter(failingExporter{
		format: export.FormatPDF,
		err:    errors.New("renderer unavailable"),
	}))
	token := app.signIn()
	app.addSampleItems(token)

	w := app.do(http.MethodPost, "/api/invoices/generate", token, nil)
	env := decode(t, w, nil)
	if w.Code != http.StatusBadGateway || env.Code != 50201 {
		t.Fatalf("status = %d/%d", w.Code, env.Code)
	}
	if env.Message != "renderer unavailable" {
		t.Errorf("message = %q", env.Message)
	}
	if got := app.items(token); len(got.Products) != 2 {
		t.Fatalf("ledger lost items: %d", len(got.Products))
	}

	var count int64
	app.deps.DB.Model(&models.ExportRecord{}).Count(&count)
	if count != 0 {
		t.Fatalf("failed export recorded: %d", count)
	}
}

func TestGenerate_EmptyAndUnknownFormat(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn()

	w := app.do(http.MethodPost, "/api/invoices/generate", token, nil)
	if env := decode(t, w, nil); w.Code != http.StatusUnprocessableEntity || env.Code != 42201 {
		t.Fatalf("empty = %d/%d", w.Code, env.Code)
	}

	app.addSampleItems(token)
	w = app.do(http.MethodPost, "/api/invoices/generate?format=docx", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown format = %d", w.Code)
	}
	if got := app.items(token); len(got.Products) != 2 {
		t.Fatalf("ledger changed: %d", len(got.Products))
	}
}

func TestGenerate_PDF(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn()
	app.addSampleItems(token)

	w := app.do(http.MethodPost, "/api/invoices/generate?format=pdf", token, nil)
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf = %d %q", w.Code, w.Body.String()[:min(20, w.Body.Len())])
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
}

func TestRender_Stateless(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn()
	app.addSampleItems(token)

	w := app.do(http.MethodPost, "/api/invoices/render?format=csv", token, gin.H{
		"products": []gin.H{{"name": "Nut", "qty": 4, "rate": "0.25"}},
	})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Nut,4,0.25,1.00,0.18") {
		t.Fatalf("render = %d %q", w.Code, w.Body.String())
	}

	w = app.do(http.MethodPost, "/api/invoices/render", token, gin.H{
		"products": []gin.H{{"name": "Nut", "qty": 1, "rate": 1}, {"name": "Bolt", "qty": -1, "rate": 1}},
	})
	env := decode(t, w, nil)
	if w.Code != http.StatusBadRequest || env.Details["products[1].quantity"] != "must_be_positive" {
		t.Fatalf("invalid render = %d %v", w.Code, env.Details)
	}

	w = app.do(http.MethodPost, "/api/invoices/render", token, gin.H{"products": []gin.H{}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty render = %d", w.Code)
	}

	if got := app.items(token); len(got.Products) != 2 {
		t.Fatalf("session ledger changed: %d", len(got.Products))
	}
	var count int64
	app.deps.DB.Model(&models.ExportRecord{}).Count(&count)
	if count != 0 {
		t.Fatalf("render recorded history: %d", count)
	}
}

func TestLogs_EncryptedAtRest(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn()
	app.addSampleItems(token)

	var stored models.AuditLog
	if err := app.deps.DB.Where("method = ?", http.MethodPost).First(&stored).Error; err != nil {
		t.Fatalf("no audit row: %v", err)
	}
	if strings.Contains(stored.PathEnc, "/api/items") || strings.Contains(stored.ActionEnc, "Widget") {
		t.Fatalf("audit row stored in plain text: %+v", stored)
	}

	var logs struct {
		Items []struct {
			Path   string `json:"path"`
			Action string `json:"action"`
			Method string `json:"method"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	w := app.do(http.MethodGet, "/api/logs?method=post", token, nil)
	decode(t, w, &logs)
	if w.Code != http.StatusOK || logs.Total != 2 {
		t.Fatalf("logs = %d %+v", w.Code, logs)
	}
	for _, l := range logs.Items {
		if l.Path != "/api/items" || !strings.HasPrefix(l.Action, "POST /api/items {") {
			t.Errorf("entry = %+v", l)
		}
	}

	if w := app.do(http.MethodGet, "/api/logs?start=yesterday", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad start = %d", w.Code)
	}
}

func TestProfile_ChangePasswordRevokesOtherSessions(t *testing.T) {
	app := newTestApp(t)
	current := app.signIn()
	other := app.login("alice@example.com", "Passw0rd!")
	app.addSampleItems(other)

	w := app.do(http.MethodPost, "/api/profile", current, gin.H{"name": "Alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("update profile = %d", w.Code)
	}

	w = app.do(http.MethodPost, "/api/profile/password", current, gin.H{
		"old_password": "wrong", "new_password": "N3wPassword",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong old password = %d", w.Code)
	}

	var data struct {
		Revoked int `json:"revoked_sessions"`
	}
	w = app.do(http.MethodPost, "/api/profile/password", current, gin.H{
		"old_password": "Passw0rd!", "new_password": "N3wPassword",
	})
	decode(t, w, &data)
	if w.Code != http.StatusOK || data.Revoked != 1 {
		t.Fatalf("change password = %d %+v", w.Code, data)
	}

	if w := app.do(http.MethodGet, "/api/me", other, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("other session still valid: %d", w.Code)
	}
	if w := app.do(http.MethodGet, "/api/me", current, nil); w.Code != http.StatusOK {
		t.Fatalf("current session revoked: %d", w.Code)
	}
	app.login("alice@example.com", "N3wPassword")

	var rows []models.AuditLog
	app.deps.DB.Find(&rows)
	for _, row := range rows {
		action, err := app.deps.Cipher.DecryptString(row.ActionEnc)
		if err != nil {
			t.Fatalf("decrypt audit action: %v", err)
		}
		if strings.Contains(action, "Passw0rd") || strings.Contains(action, "N3wPassword") {
			t.Fatalf("password leaked into audit log: %q", action)
		}
	}
}

func TestSweepSessions_DropsDeadLedgers(t *testing.T) {
	app := newTestApp(t)
	expired := app.signIn()
	revoked := app.login("alice@example.com", "Passw0rd!")
	live := app.login("alice@example.com", "Passw0rd!")
	for _, tok := range []string{expired, revoked, live} {
		app.addSampleItems(tok)
	}
	app.deps.Sessions.Ledger("never-logged-in")

	sid := func(tok string) string {
		claims, err := util.ParseToken(app.deps.Config.JWT.Secret, tok)
		if err != nil {
			t.Fatalf("parse token: %v", err)
		}
		return claims.SessionID
	}
	db := app.deps.DB
	db.Model(&models.Session{}).Where("id = ?", sid(expired)).Update("expires_at", time.Now().Add(-time.Minute))
	db.Model(&models.Session{}).Where("id = ?", sid(revoked)).Update("revoked", true)

	n, err := app.deps.SweepSessions(context.Background())
	if err != nil {
		t.Fatalf("SweepSessions error = %v", err)
	}
	if n != 3 {
		t.Errorf("dropped = %d, want 3", n)
	}
	ids := app.deps.Sessions.IDs()
	if len(ids) != 1 || ids[0] != sid(live) {
		t.Fatalf("remaining ledgers = %v, want only %s", ids, sid(live))
	}
	if got := app.items(live); len(got.Products) != 2 {
		t.Errorf("live session lost items: %d", len(got.Products))
	}
}

func TestNewDeps_GeneratesJWTSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWT.Secret = ""
	cfg.Archive.Kind = "none"

	d, err := NewDeps(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewDeps error = %v", err)
	}
	if len(cfg.JWT.Secret) != ephemeralSecretLen || d.Config.JWT.Secret != cfg.JWT.Secret {
		t.Fatalf("secret = %q", cfg.JWT.Secret)
	}

	other := testConfig(t)
	other.JWT.Secret = ""
	other.Archive.Kind = "none"
	if _, err := NewDeps(other, nil, nil); err != nil {
		t.Fatal(err)
	}
	if other.JWT.Secret == cfg.JWT.Secret {
		t.Error("two generated secrets are equal")
	}
}
