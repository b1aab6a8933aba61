package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"saldo/internal/auth"
	"saldo/internal/blob"
	"saldo/internal/core"
	"saldo/internal/live"
	"saldo/internal/services"
	"saldo/internal/store/memory"
)

type testEnv struct {
	server *Server
	ts     *httptest.Server
	editor *http.Cookie
	viewer *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s := memory.New()
	blobs, err := blob.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}
	hub := live.NewHub(s)
	authSvc := auth.NewService(s, s, time.Hour)

	ctx := context.Background()
	if _, err := authSvc.Register(ctx, "editor@example.com", "secret", true); err != nil {
		t.Fatalf("register editor: %v", err)
	}
	if _, err := authSvc.Register(ctx, "viewer@example.com", "secret", false); err != nil {
		t.Fatalf("register viewer: %v", err)
	}

	srv := NewServer(":0", Options{
		Ledger:        services.NewLedger(s, hub, blobs, nil, nil),
		Importer:      services.NewImporter(s, nil),
		Exporter:      services.NewExporter(s, nil),
		Hub:           hub,
		Auth:          authSvc,
		DefaultLocale: "en",
		BlobDir:       blobs.Dir(),
	})
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { srv.limiter.stop() })

	env := &testEnv{server: srv, ts: ts}
	env.editor = env.login(t, "editor@example.com", "secret")
	env.viewer = env.login(t, "viewer@example.com", "secret")
	return env
}

func (env *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	form := url.Values{"email": {email}, "password": {password}}
	resp, err := http.PostForm(env.ts.URL+"/login", form)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func (env *testEnv) do(t *testing.T, method, path string, cookie *http.Cookie, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, env.ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) (json.RawMessage, *Notification) {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		Data         json.RawMessage `json:"data"`
		Notification *Notification   `json:"notification"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return out.Data, out.Notification
}

func multipartExpense(t *testing.T, fields map[string]string) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return mw.FormDataContentType(), &buf
}

func (env *testEnv) createExpense(t *testing.T, name, occurredOn, amount string) string {
	t.Helper()
	ct, body := multipartExpense(t, map[string]string{
		"name": name, "occurredOn": occurredOn, "amount": amount,
	})
	resp := env.do(t, http.MethodPost, "/api/expenses", env.editor, ct, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned %d", resp.StatusCode)
	}
	data, _ := decodeEnvelope(t, resp)
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode created id: %v", err)
	}
	return created.ID
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"email": {"editor@example.com"}, "password": {"wrong"}}
	resp, err := http.PostForm(env.ts.URL+"/login", form)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	_, notification := decodeEnvelope(t, resp)
	if notification == nil || notification.Type != "error" {
		t.Fatalf("expected error notification, got %+v", notification)
	}
}

func TestListRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/expenses", nil, "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestViewerCannotMutate(t *testing.T) {
	env := newTestEnv(t)

	ct, body := multipartExpense(t, map[string]string{
		"name": "groceries", "occurredOn": "2024-03-01", "amount": "10.00",
	})
	resp := env.do(t, http.MethodPost, "/api/expenses", env.viewer, ct, body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for read-only user, got %d", resp.StatusCode)
	}
}

func TestCreateAndListProjectsBalances(t *testing.T) {
	env := newTestEnv(t)

	env.createExpense(t, "salary", "2024-01-01", "100")
	env.createExpense(t, "groceries", "2024-01-02", "-40")
	env.createExpense(t, "refund", "2024-01-03", "20")

	resp := env.do(t, http.MethodGet, "/api/expenses", env.editor, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list returned %d", resp.StatusCode)
	}
	data, _ := decodeEnvelope(t, resp)
	var lines []core.BalanceLine
	if err := json.Unmarshal(data, &lines); err != nil {
		t.Fatalf("decode lines: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// Most recent first, balances accumulated chronologically.
	if lines[0].Name != "refund" || lines[0].RunningBalance.Cents != 8000 {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if lines[2].Name != "salary" || lines[2].RunningBalance.Cents != 10000 {
		t.Fatalf("unexpected last line: %+v", lines[2])
	}
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)

	env.createExpense(t, "salary", "2024-01-01", "100")
	env.createExpense(t, "groceries", "2024-02-01", "-40")
	env.createExpense(t, "more groceries", "2024-03-01", "-20")

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"name substring", "?q=grocer", 2},
		{"case insensitive", "?q=SALARY", 1},
		{"from bound", "?from=2024-02-01", 2},
		{"to bound", "?to=2024-01-31", 1},
		{"window", "?from=2024-02-01&to=2024-02-28", 1},
		{"no match", "?q=rent", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, "/api/expenses"+tt.query, env.editor, "", nil)
			data, _ := decodeEnvelope(t, resp)
			var lines []core.BalanceLine
			if err := json.Unmarshal(data, &lines); err != nil {
				t.Fatalf("decode lines: %v", err)
			}
			if len(lines) != tt.want {
				t.Fatalf("expected %d lines, got %d", tt.want, len(lines))
			}
		})
	}
}

func TestListRejectsMalformedDateFilter(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/expenses?from=01/02/2024", env.editor, "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateRejectsMalformedAmount(t *testing.T) {
	env := newTestEnv(t)

	ct, body := multipartExpense(t, map[string]string{
		"name": "bad", "occurredOn": "2024-01-01", "amount": "abc",
	})
	resp := env.do(t, http.MethodPost, "/api/expenses", env.editor, ct, body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateAcceptsCommaAmount(t *testing.T) {
	env := newTestEnv(t)

	id := env.createExpense(t, "lunch", "2024-01-01", "12,50")

	resp := env.do(t, http.MethodGet, "/api/expenses", env.editor, "", nil)
	data, _ := decodeEnvelope(t, resp)
	var lines []core.BalanceLine
	if err := json.Unmarshal(data, &lines); err != nil {
		t.Fatalf("decode lines: %v", err)
	}
	if lines[0].ID != id || lines[0].Amount.Cents != 1250 {
		t.Fatalf("expected 1250 cents for %s, got %+v", id, lines[0])
	}
}

func TestUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)

	id := env.createExpense(t, "draft", "2024-01-01", "10")

	update, _ := json.Marshal(map[string]any{
		"name": "final", "occurredOn": "2024-01-02", "amount": "15,00",
	})
	resp := env.do(t, http.MethodPut, "/api/expenses/"+id, env.editor, "application/json", bytes.NewReader(update))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/expenses/"+id, env.editor, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/expenses/"+id, env.editor, "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing record, got %d", resp.StatusCode)
	}
}

func TestImportAndExportRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	payload := `[
		{"name": "salary", "occurredOn": "2024-01-01", "amount": 100},
		{"name": "broken", "occurredOn": "2024-01-02", "amount": "abc"}
	]`
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "expenses.json")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(part, payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	mw.Close()

	resp := env.do(t, http.MethodPost, "/api/import", env.editor, mw.FormDataContentType(), &buf)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import returned %d", resp.StatusCode)
	}
	data, _ := decodeEnvelope(t, resp)
	var report services.ImportReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Created != 1 || len(report.Failed) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	resp = env.do(t, http.MethodGet, "/api/export", env.editor, "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export returned %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "expenses-") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	var exported []core.Expense
	if err := json.NewDecoder(resp.Body).Decode(&exported); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(exported) != 1 || exported[0].Name != "salary" {
		t.Fatalf("unexpected export: %+v", exported)
	}
}

func TestEventsStreamPushesSnapshots(t *testing.T) {
	env := newTestEnv(t)
	env.createExpense(t, "seed", "2024-01-01", "10")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.ts.URL+"/api/expenses/events", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.AddCookie(env.editor)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	// The subscription is primed, so the first event arrives without any
	// further mutation.
	scanner := bufio.NewScanner(resp.Body)
	var eventLine, dataLine string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			eventLine = line
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = line
			break
		}
	}
	if eventLine != "event: snapshot" {
		t.Fatalf("unexpected event line %q", eventLine)
	}

	var lines []core.BalanceLine
	if err := json.Unmarshal([]byte(strings.TrimPrefix(dataLine, "data: ")), &lines); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(lines) != 1 || lines[0].Name != "seed" {
		t.Fatalf("unexpected snapshot: %+v", lines)
	}
}

func TestLocalizedNotifications(t *testing.T) {
	env := newTestEnv(t)

	ct, body := multipartExpense(t, map[string]string{
		"name": "zakupy", "occurredOn": "2024-01-01", "amount": "5",
	})
	resp := env.do(t, http.MethodPost, "/api/expenses?lang=pl", env.editor, ct, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned %d", resp.StatusCode)
	}
	_, notification := decodeEnvelope(t, resp)
	if notification == nil || notification.Type != "success" {
		t.Fatalf("expected success notification, got %+v", notification)
	}
	if notification.Message == "" || strings.Contains(notification.Message, "added") {
		t.Fatalf("expected localized message, got %q", notification.Message)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp := env.do(t, http.MethodGet, path, nil, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s returned %d", path, resp.StatusCode)
		}
	}
}
