package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"vendor-notices/internal/adapters/auth/dbtoken"
	"vendor-notices/internal/adapters/auth/jwttoken"
	"vendor-notices/internal/adapters/auth/session"
	mem "vendor-notices/internal/adapters/storage/memory"
	"vendor-notices/internal/config"
	"vendor-notices/internal/domain/targets"
	"vendor-notices/internal/ports/auth"
	"vendor-notices/internal/router"
)

const testSecret = "router-test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *jwttoken.Verifier) {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.DevMode = true
	cfg.ICal.Domain = "notices.test"

	inv := mem.NewInventory()
	inv.Put(targets.KindDevice, "1", "edge-rtr-01")
	inv.Put(targets.KindCircuit, "77", "CID-77")

	verifier := jwttoken.NewVerifier(testSecret, cfg.Auth.JWTIssuer)
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Config:    cfg,
		Tokens:    verifier,
		Inventory: inv,
	}))
	t.Cleanup(ts.Close)
	return ts, verifier
}

func TestHTTP_EndToEnd_MaintenanceFeed(t *testing.T) {
	ts, verifier := newTestServer(t)
	noc := "noc-1"

	{
		st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
		if st != http.StatusOK || string(body) != "ok" {
			t.Fatalf("expected health ok, got %d %q", st, body)
		}
	}

	// 1) Sin identidad no se puede crear proveedor
	{
		st, _ := doReq(t, ts.URL, "POST", "/providers", "", map[string]any{"slug": "aws", "name": "AWS"})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without identity, got %d", st)
		}
	}

	awsID := createProvider(t, ts.URL, noc, "aws", "AWS")
	createProvider(t, ts.URL, noc, "azure", "Azure")

	// 2) Mantenimiento + impact sobre un device del inventario
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	end := start.Add(4 * time.Hour)
	maintID := createEvent(t, ts.URL, noc, "/maintenances", map[string]any{
		"name":        "MAINT-001",
		"provider_id": awsID,
		"status":      "CONFIRMED",
		"start":       start.Format(time.RFC3339),
		"end":         end.Format(time.RFC3339),
	})

	{
		st, body := doReq(t, ts.URL, "POST", "/impacts", noc, map[string]any{
			"event_id":    maintID,
			"target_kind": "dcim.device",
			"target_id":   "1",
			"severity":    "DEGRADED",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 creating impact, got %d body=%s", st, body)
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/impacts", noc, map[string]any{
			"event_id":    maintID,
			"target_kind": "dcim.device",
			"target_id":   "1",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate impact, got %d body=%s", st, body)
		}
	}

	// 3) Feed por token en query
	token, err := verifier.Issue(jwttoken.IssueInput{UserID: "cal-1", Capabilities: []string{"events:read"}})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp := getFeed(t, ts.URL+"/ical/events.ics?provider=aws&token="+token, nil)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 feed, got %d body=%s", resp.StatusCode, body)
	}
	for _, want := range []string{"BEGIN:VCALENDAR", "MAINT-001", "edge-rtr-01", "maintenance-" + strconv.FormatInt(maintID, 10) + "@notices.test"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("feed missing %q:\n%s", want, body)
		}
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag")
	}

	{
		resp := getFeed(t, ts.URL+"/ical/events.ics?provider=aws&token="+token, map[string]string{"If-None-Match": etag})
		readBody(t, resp)
		if resp.StatusCode != http.StatusNotModified {
			t.Fatalf("expected 304, got %d", resp.StatusCode)
		}
	}
	{
		resp := getFeed(t, ts.URL+"/ical/events.ics?provider=azure&token="+token, nil)
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusOK || strings.Contains(string(body), "MAINT-001") {
			t.Fatalf("expected azure feed without MAINT-001, got %d:\n%s", resp.StatusCode, body)
		}
	}

	// 4) Reprogramación: el original queda RE-SCHEDULED y bloqueado
	newID := createEvent(t, ts.URL, noc, "/maintenances", map[string]any{
		"name":        "MAINT-001b",
		"provider_id": awsID,
		"status":      "CONFIRMED",
		"start":       start.Add(24 * time.Hour).Format(time.RFC3339),
		"end":         end.Add(24 * time.Hour).Format(time.RFC3339),
		"replaces":    maintID,
	})
	{
		st, body := doReq(t, ts.URL, "GET", "/events/"+strconv.FormatInt(maintID, 10), noc, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get event, got %d body=%s", st, body)
		}
		var ev struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &ev)
		if ev.Status != "RE-SCHEDULED" {
			t.Fatalf("expected RE-SCHEDULED, got %q", ev.Status)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/events/"+strconv.FormatInt(maintID, 10)+"/status", noc, map[string]any{"status": "CONFIRMED"})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 changing status of replaced event, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/events/"+strconv.FormatInt(newID, 10)+"/lineage", noc, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 lineage, got %d body=%s", st, body)
		}
		var chain []map[string]any
		if err := json.Unmarshal(body, &chain); err != nil || len(chain) != 2 {
			t.Fatalf("expected lineage of 2, got %s", body)
		}
	}

	// 5) Historial por target
	{
		st, body := doReq(t, ts.URL, "GET", "/targets/dcim.device/1/impacts", noc, nil)
		if st != http.StatusOK || !strings.Contains(string(body), "MAINT-001") {
			t.Fatalf("expected target history with MAINT-001, got %d body=%s", st, body)
		}
	}

	// 6) Target inexistente => 400
	{
		st, body := doReq(t, ts.URL, "POST", "/impacts", noc, map[string]any{
			"event_id":    newID,
			"target_kind": "circuits.circuit",
			"target_id":   "404",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing target, got %d body=%s", st, body)
		}
	}
}

func TestHTTP_Feed_RequiresCredentials(t *testing.T) {
	ts, verifier := newTestServer(t)

	{
		resp := getFeed(t, ts.URL+"/ical/events.ics", nil)
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusForbidden || strings.TrimSpace(string(body)) != "forbidden" {
			t.Fatalf("expected 403 forbidden, got %d %q", resp.StatusCode, body)
		}
	}
	{
		resp := getFeed(t, ts.URL+"/ical/events.ics?token=garbage", nil)
		readBody(t, resp)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 for bad token, got %d", resp.StatusCode)
		}
	}

	// Token válido sin permiso de lectura
	token, err := verifier.Issue(jwttoken.IssueInput{UserID: "cal-2"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	{
		resp := getFeed(t, ts.URL+"/ical/events.ics", map[string]string{"Authorization": "Bearer " + token})
		readBody(t, resp)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 without events:read, got %d", resp.StatusCode)
		}
	}

	// Sesión (dev header) con permiso
	{
		resp := getFeed(t, ts.URL+"/ical/events.ics?provider=nope", map[string]string{"X-Debug-User-ID": "noc-1"})
		readBody(t, resp)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown provider, got %d", resp.StatusCode)
		}
	}
}

func TestHTTP_Feed_SessionCookie(t *testing.T) {
	cfg := config.Default()
	store := session.NewMemoryStore()
	sid := store.Put(auth.Identity{UserID: "ui-user", Capabilities: []string{"events:read"}})

	ts := httptest.NewServer(router.NewRouter(router.Options{Config: cfg, Sessions: store}))
	defer ts.Close()

	req, _ := http.NewRequest("GET", ts.URL+"/ical/events.ics", nil)
	req.AddCookie(&http.Cookie{Name: cfg.Auth.SessionCookie, Value: sid})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "BEGIN:VCALENDAR") {
		t.Fatalf("expected empty calendar for session user, got %d:\n%s", resp.StatusCode, body)
	}

	// Sin login obligatorio, el anónimo lee el feed.
	cfg = config.Default()
	cfg.Auth.LoginRequired = false
	cfg.Normalize()
	anon := httptest.NewServer(router.NewRouter(router.Options{Config: cfg}))
	defer anon.Close()

	resp = getFeed(t, anon.URL+"/ical/events.ics", nil)
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected anonymous 200, got %d", resp.StatusCode)
	}
}

func TestHTTP_Feed_StoredAPIToken(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.TokenBackend = "db"
	tokens := dbtoken.NewVerifier(mem.NewTokenRepo())

	ts := httptest.NewServer(router.NewRouter(router.Options{Config: cfg, Tokens: tokens}))
	defer ts.Close()

	token, _, err := tokens.Create(context.Background(), dbtoken.CreateInput{
		UserID:       "cal-3",
		Capabilities: []string{"events:read"},
		TTL:          time.Hour,
	})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	resp := getFeed(t, ts.URL+"/ical/events.ics?token="+token, nil)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "BEGIN:VCALENDAR") {
		t.Fatalf("expected calendar for stored token, got %d:\n%s", resp.StatusCode, body)
	}

	// Secreto alterado => 403 sin fallback.
	resp = getFeed(t, ts.URL+"/ical/events.ics?token="+token+"x", nil)
	readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for tampered token, got %d", resp.StatusCode)
	}
}

func TestHTTP_AllowAllCapabilities(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.DevMode = true
	cfg.Capabilities.AllowAll = true

	ts := httptest.NewServer(router.NewRouter(router.Options{Config: cfg}))
	defer ts.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/providers", bytes.NewBufferString(`{"slug":"aws","name":"AWS"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Debug-User-ID", "viewer-1")
	req.Header.Set("X-Debug-Capabilities", "events:read")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected allow_all to grant events:write, got %d", resp.StatusCode)
	}
}

func TestHTTP_WriteNeedsCapability(t *testing.T) {
	ts, _ := newTestServer(t)

	req, _ := http.NewRequest("POST", ts.URL+"/providers", bytes.NewBufferString(`{"slug":"aws","name":"AWS"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Debug-User-ID", "viewer-1")
	req.Header.Set("X-Debug-Capabilities", "events:read")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without events:write, got %d", resp.StatusCode)
	}
}

// ---------- helpers ----------

func createProvider(t *testing.T, baseURL, userID, slug, name string) int64 {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/providers", userID, map[string]any{"slug": slug, "name": name})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create provider, got %d body=%s", st, body)
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.ID == 0 {
		t.Fatalf("invalid provider response: %s", body)
	}
	return out.ID
}

func createEvent(t *testing.T, baseURL, userID, path string, payload map[string]any) int64 {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", path, userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 on %s, got %d body=%s", path, st, body)
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.ID == 0 {
		t.Fatalf("invalid event response: %s", body)
	}
	return out.ID
}

func getFeed(t *testing.T, url string, hdr map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func doReq(t *testing.T, baseURL, method, path, userID string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp.StatusCode, readBody(t, resp)
}
