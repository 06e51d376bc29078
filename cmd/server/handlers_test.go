//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/himanishpuri/FoodLens/pkg/foodlens"
)

func setupTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "server.sqlite3")
	journal, err := foodlens.NewSQLiteJournal(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteJournal: %v", err)
	}
	s := NewServer(journal, &ServerConfig{Port: 0, DBPath: dbPath, AllowedOrigins: []string{"*"}})
	t.Cleanup(func() {
		s.Close()
		journal.Close()
	})
	return s, s.setupRoutes()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if out != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decoding %q: %v", method, path, rr.Body.String(), err)
		}
	}
	return rr.Code
}

func TestHealth(t *testing.T) {
	_, h := setupTestServer(t)

	var body map[string]string
	if code := doJSON(t, h, "GET", "/health", "", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestSessionLifecycle(t *testing.T) {
	_, h := setupTestServer(t)

	var created SessionResponse
	code := doJSON(t, h, "POST", "/api/sessions", `{"session_id":"kitchen","ready":true,"initial_zoom":0.5}`, &created)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	if created.ID != "kitchen" || !created.Ready || created.Zoom != 0.5 || created.Mode != "barcode" {
		t.Errorf("created = %+v", created)
	}

	if code := doJSON(t, h, "POST", "/api/sessions", `{"session_id":"kitchen"}`, nil); code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", code)
	}

	events := `{"events":[
		{"kind":"touch_start","touches":[{"x":0,"y":0},{"x":100,"y":0}]},
		{"kind":"touch_move","touches":[{"x":0,"y":0},{"x":120,"y":0}]},
		{"kind":"scan","at_ms":1000,"scan":{"type":"ean13","data":"4006381333931"}},
		{"kind":"scan","at_ms":1500,"scan":{"type":"ean13","data":"4006381333931"}}
	]}`
	var resp EventsResponse
	if code := doJSON(t, h, "POST", "/api/sessions/kitchen/events", events, &resp); code != http.StatusOK {
		t.Fatalf("events status = %d", code)
	}
	if len(resp.Outcomes) != 4 {
		t.Fatalf("got %d outcomes", len(resp.Outcomes))
	}
	if resp.Zoom < 0.549 || resp.Zoom > 0.551 {
		t.Errorf("zoom = %v, want 0.55", resp.Zoom)
	}
	if resp.Summary.Accepted != 1 || resp.Summary.Rejected != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}

	var scans ListScansResponse
	doJSON(t, h, "GET", "/api/scans?session=kitchen", "", &scans)
	if scans.Count != 1 || scans.Scans[0].Payload != "4006381333931" {
		t.Fatalf("scans = %+v", scans)
	}

	var one foodlens.ScanRecord
	if code := doJSON(t, h, "GET", "/api/scans/"+scans.Scans[0].ID, "", &one); code != http.StatusOK || one.Symbology != "ean13" {
		t.Errorf("get scan: %d %+v", code, one)
	}
	if code := doJSON(t, h, "DELETE", "/api/scans/"+one.ID, "", nil); code != http.StatusOK {
		t.Errorf("delete scan status = %d", code)
	}
	if code := doJSON(t, h, "GET", "/api/scans/"+one.ID, "", nil); code != http.StatusNotFound {
		t.Errorf("get deleted scan status = %d", code)
	}

	if code := doJSON(t, h, "DELETE", "/api/sessions/kitchen", "", nil); code != http.StatusOK {
		t.Errorf("delete session status = %d", code)
	}
	if code := doJSON(t, h, "POST", "/api/sessions/kitchen/events", events, nil); code != http.StatusNotFound {
		t.Errorf("events after delete status = %d", code)
	}
}

func TestEventsRejectsBadBatch(t *testing.T) {
	_, h := setupTestServer(t)
	doJSON(t, h, "POST", "/api/sessions", `{"session_id":"s"}`, nil)

	bad := []string{
		`{"events":[]}`,
		`{"events":[{"kind":"scan"}]}`,
		`{"events":[{"kind":"wave"}]}`,
		`not json`,
	}
	for _, body := range bad {
		var e ErrorResponse
		if code := doJSON(t, h, "POST", "/api/sessions/s/events", body, &e); code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, code)
		}
	}
}

func TestCreateSessionValidation(t *testing.T) {
	_, h := setupTestServer(t)
	for _, body := range []string{`{"mode":"video"}`, `{"initial_zoom":2}`} {
		if code := doJSON(t, h, "POST", "/api/sessions", body, nil); code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, code)
		}
	}
}

func TestValidateEndpoint(t *testing.T) {
	_, h := setupTestServer(t)

	var ok ValidateResponse
	doJSON(t, h, "POST", "/api/validate", `{"type":"org.gs1.EAN-13","data":"4006381333931"}`, &ok)
	if !ok.Valid || ok.Symbology != "ean13" {
		t.Errorf("valid payload: %+v", ok)
	}

	var bad ValidateResponse
	doJSON(t, h, "POST", "/api/validate", `{"type":"ean13","data":"123"}`, &bad)
	if bad.Valid || bad.Reason == "" {
		t.Errorf("short payload: %+v", bad)
	}
}

func TestFrameEndpoint(t *testing.T) {
	_, h := setupTestServer(t)

	var resp FrameResponse
	doJSON(t, h, "POST", "/api/frame",
		`{"frame":{"x":110,"y":220,"width":260,"height":260},"surface":{"x":100,"y":200,"width":400,"height":800}}`, &resp)
	if resp.Crop == nil || resp.Crop.X != 10 || resp.Crop.Y != 20 || resp.Crop.Width != 260 {
		t.Errorf("crop = %v", resp.Crop)
	}

	var missing FrameResponse
	doJSON(t, h, "POST", "/api/frame", `{"frame":{"x":1,"y":1,"width":1,"height":1}}`, &missing)
	if missing.Crop != nil {
		t.Errorf("crop without surface = %v", missing.Crop)
	}
}

func TestMetrics(t *testing.T) {
	_, h := setupTestServer(t)
	doJSON(t, h, "POST", "/api/sessions", `{}`, nil)

	var m MetricsResponse
	if code := doJSON(t, h, "GET", "/api/health/metrics", "", &m); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if m.ActiveSessions != 1 || m.ScanCount != 0 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, h := setupTestServer(t)
	req := httptest.NewRequest("OPTIONS", "/api/scans", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow-origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestStream(t *testing.T) {
	_, h := setupTestServer(t)
	doJSON(t, h, "POST", "/api/sessions", `{"session_id":"live","ready":true}`, nil)

	ts := httptest.NewServer(h)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/live/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello StreamMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != MsgTypeHello || !hello.Success {
		t.Fatalf("hello = %+v", hello)
	}

	msg := `{"type":"event","data":{"kind":"scan","at_ms":5,"scan":{"type":"qr","data":"menu"}}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}

	var outcome struct {
		Type    string `json:"type"`
		Success bool   `json:"success"`
		Data    struct {
			Kind     string `json:"kind"`
			Decision string `json:"decision"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&outcome); err != nil {
		t.Fatalf("read outcome: %v", err)
	}
	if outcome.Type != MsgTypeOutcome || outcome.Data.Decision != "accept" {
		t.Errorf("outcome = %+v", outcome)
	}

	// events posted over HTTP reach stream subscribers too
	body := `{"events":[{"kind":"scan","at_ms":10,"scan":{"type":"qr","data":"menu"}}]}`
	req := httptest.NewRequest("POST", "/api/sessions/live/events", bytes.NewBufferString(body))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if err := conn.ReadJSON(&outcome); err != nil {
		t.Fatalf("read second outcome: %v", err)
	}
	if outcome.Data.Decision != "reject" {
		t.Errorf("duplicate outcome = %+v", outcome)
	}
}

func TestScanIDValidation(t *testing.T) {
	_, h := setupTestServer(t)
	if code := doJSON(t, h, "GET", "/api/scans/not-a-uuid", "", nil); code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
	if code := doJSON(t, h, "DELETE", "/api/scans/6f1c1d0e-8a4b-4c53-9a57-2f0d7c3b9e11", "", nil); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestStreamUnknownSession(t *testing.T) {
	_, h := setupTestServer(t)
	var e ErrorResponse
	if code := doJSON(t, h, "GET", "/api/sessions/nope/stream", "", &e); code != http.StatusNotFound {
		t.Errorf("status = %d", code)
	}
}

func dialStream(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + id + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello StreamMessage
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != MsgTypeHello {
		t.Fatalf("hello = %+v, err = %v", hello, err)
	}
	return conn
}

func TestStreamRepliesOnlyToSender(t *testing.T) {
	_, h := setupTestServer(t)
	doJSON(t, h, "POST", "/api/sessions", `{"session_id":"live","ready":true}`, nil)

	ts := httptest.NewServer(h)
	defer ts.Close()

	a := dialStream(t, ts, "live")
	defer a.Close()
	b := dialStream(t, ts, "live")
	defer b.Close()

	a.WriteMessage(websocket.TextMessage, []byte(`not json`))
	a.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))

	var reply StreamMessage
	if err := a.ReadJSON(&reply); err != nil {
		t.Fatalf("read error reply: %v", err)
	}
	if reply.Success || !strings.Contains(reply.Error, "invalid message") {
		t.Errorf("sender reply = %+v", reply)
	}
	if err := a.ReadJSON(&reply); err != nil || reply.Type != MsgTypePing {
		t.Fatalf("ping reply = %+v, err = %v", reply, err)
	}

	msg := `{"type":"event","data":{"kind":"scan","at_ms":5,"scan":{"type":"qr","data":"menu"}}}`
	a.WriteMessage(websocket.TextMessage, []byte(msg))

	// b sees the shared outcome first, never a's error or pong
	var got StreamMessage
	if err := b.ReadJSON(&got); err != nil {
		t.Fatalf("read on b: %v", err)
	}
	if got.Type != MsgTypeOutcome || !got.Success || got.Error != "" {
		t.Errorf("b received %+v, want the scan outcome", got)
	}
}

func TestEventsOnClosedSession(t *testing.T) {
	s, h := setupTestServer(t)
	ls, err := s.sessions.create(foodlens.WithSessionID("stale"), foodlens.WithDBPath(""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// closed while still registered, as when a DELETE races a POST
	if err := ls.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	body := `{"events":[{"kind":"touch_end"}]}`
	if code := doJSON(t, h, "POST", "/api/sessions/stale/events", body, nil); code != http.StatusGone {
		t.Errorf("events status = %d, want 410", code)
	}
	if code := doJSON(t, h, "GET", "/api/sessions/stale/stream", "", nil); code != http.StatusGone {
		t.Errorf("stream status = %d, want 410", code)
	}
	if err := ls.close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
