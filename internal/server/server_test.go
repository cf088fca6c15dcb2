package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/flight"
	"github.com/jpalmerr/flightdeck/internal/monitor"
	"github.com/jpalmerr/flightdeck/internal/notify"
	"github.com/jpalmerr/flightdeck/internal/service"
	"github.com/jpalmerr/flightdeck/internal/store"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc *service.Service
	hub *notify.Hub
	srv *Server
}

func newFixture(t testing.TB, cfg Config) *fixture {
	t.Helper()
	hub := notify.NewHub()
	svc := service.New(store.NewMemoryStore(testClock), hub, testClock, testLogger())
	cfg.Now = testClock
	return &fixture{
		svc: svc,
		hub: hub,
		srv: NewServer(svc, hub, cfg, testLogger()),
	}
}

func (f *fixture) add(t testing.TB, number, destination string, departsIn time.Duration) flight.Flight {
	t.Helper()
	fl, err := f.svc.AddFlight(context.Background(), flight.Request{
		Number:        number,
		Destination:   destination,
		DepartureTime: testNow.Add(departsIn),
		Gate:          "B7",
	})
	if err != nil {
		t.Fatalf("AddFlight(%s): %v", number, err)
	}
	return fl
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

// --- REST API ---

func TestHandleList_IncludesDerivedStatus(t *testing.T) {
	f := newFixture(t, Config{})
	f.add(t, "BA100", "London", 2*time.Hour)
	f.add(t, "AF200", "Paris", 20*time.Minute)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/flights", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	got := decode[[]flightView](t, rec)
	if len(got) != 2 {
		t.Fatalf("got %d flights, want 2", len(got))
	}
	// ordered by departure
	if got[0].Number != "AF200" || got[0].Status != flight.StatusBoarding {
		t.Errorf("first = %+v, want AF200 Boarding", got[0])
	}
	if got[1].Number != "BA100" || got[1].Status != flight.StatusScheduled {
		t.Errorf("second = %+v, want BA100 Scheduled", got[1])
	}
}

func TestHandleList_Filters(t *testing.T) {
	f := newFixture(t, Config{})
	f.add(t, "BA100", "London", 2*time.Hour)
	f.add(t, "BA101", "London Gatwick", 20*time.Minute)
	f.add(t, "AF200", "Paris", 20*time.Minute)

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?destination=london", 2},
		{"?status=boarding", 2},
		{"?destination=LONDON&status=Boarding", 1},
		{"?status=Cancelled", 0},
		{"?destination=Tokyo", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := f.do(httptest.NewRequest(http.MethodGet, "/api/flights"+tt.query, nil))
			got := decode[[]flightView](t, rec)
			if len(got) != tt.want {
				t.Errorf("got %d flights, want %d", len(got), tt.want)
			}
		})
	}
}

func TestHandleCreate(t *testing.T) {
	f := newFixture(t, Config{})

	body := `{"flight_number":"LH400","destination":"Frankfurt","departure_time":"2026-03-01T13:00:00Z","gate":"C3"}`
	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/flights", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}
	got := decode[flightView](t, rec)
	if got.ID == uuid.Nil {
		t.Error("expected assigned id")
	}
	if got.Status != flight.StatusScheduled {
		t.Errorf("status = %s, want Scheduled", got.Status)
	}
	if loc := rec.Header().Get("Location"); loc != "/api/flights/"+got.ID.String() {
		t.Errorf("Location = %q", loc)
	}
}

func TestHandleCreate_Errors(t *testing.T) {
	f := newFixture(t, Config{})
	f.add(t, "BA100", "London", time.Hour)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"flight_number":`, http.StatusBadRequest},
		{"unknown field", `{"flight_number":"X1","colour":"red"}`, http.StatusBadRequest},
		{"missing fields", `{}`, http.StatusBadRequest},
		{"past departure", `{"flight_number":"X1","destination":"Rome","departure_time":"2026-03-01T11:00:00Z","gate":"A1"}`, http.StatusBadRequest},
		{"duplicate number", `{"flight_number":"ba100","destination":"Rome","departure_time":"2026-03-01T13:00:00Z","gate":"A1"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(httptest.NewRequest(http.MethodPost, "/api/flights", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d, body: %s", rec.Code, tt.want, rec.Body.String())
			}
			resp := decode[errorResponse](t, rec)
			if resp.Error == "" {
				t.Error("expected error message in body")
			}
		})
	}
}

func TestHandleGet(t *testing.T) {
	f := newFixture(t, Config{})
	fl := f.add(t, "EK7", "Dubai", 5*time.Minute)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/flights/"+fl.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := decode[flightView](t, rec)
	if got.Number != "EK7" || got.Status != flight.StatusDeparted {
		t.Errorf("got %+v, want EK7 Departed", got)
	}

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/flights/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/flights/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	f := newFixture(t, Config{})
	fl := f.add(t, "SQ1", "Singapore", time.Hour)

	path := "/api/flights/" + fl.ID.String()

	rec := f.do(httptest.NewRequest(http.MethodDelete, path, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = f.do(httptest.NewRequest(http.MethodDelete, path, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/api/flights/xyz", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, Config{})

	rec := f.do(httptest.NewRequest(http.MethodPut, "/api/flights", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

type fakeMonitor struct{}

func (fakeMonitor) State() monitor.State { return monitor.StateScanning }
func (fakeMonitor) Tracked() int         { return 4 }
func (fakeMonitor) Scans() int64         { return 9 }

func TestHandleHealth(t *testing.T) {
	f := newFixture(t, Config{Monitor: fakeMonitor{}})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	got := decode[healthResponse](t, rec)
	want := healthResponse{Status: "ok", Monitor: "scanning", TrackedFlights: 4, Scans: 9}
	if got != want {
		t.Errorf("health = %+v, want %+v", got, want)
	}

	f = newFixture(t, Config{})
	rec = f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if got := decode[healthResponse](t, rec); got.Monitor != "absent" {
		t.Errorf("monitor = %q, want absent", got.Monitor)
	}
}

func TestWebSocketMount(t *testing.T) {
	var hits atomic.Int32
	ws := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTeapot)
	})

	f := newFixture(t, Config{WebSocket: ws})
	if rec := f.do(httptest.NewRequest(http.MethodGet, "/ws", nil)); rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if hits.Load() != 1 {
		t.Errorf("handler hits = %d, want 1", hits.Load())
	}

	f = newFixture(t, Config{})
	if rec := f.do(httptest.NewRequest(http.MethodGet, "/ws", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("status without websocket = %d, want 404", rec.Code)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{flight.ErrInvalidArgument, http.StatusBadRequest},
		{flight.ErrNotFound, http.StatusNotFound},
		{flight.ErrConflict, http.StatusConflict},
		{flight.ErrInternal, http.StatusInternalServerError},
		{context.Canceled, http.StatusServiceUnavailable},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusCode(tt.err); got != tt.want {
			t.Errorf("statusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// --- SSE ---

type sseEvent struct {
	name string
	data string
}

func parseSSEEvents(body string) []sseEvent {
	var events []sseEvent
	var cur sseEvent
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.data = strings.TrimPrefix(line, "data: ")
		case line == "" && cur.data != "":
			events = append(events, cur)
			cur = sseEvent{}
		}
	}
	return events
}

func TestHandleSSE_InitialSnapshot(t *testing.T) {
	f := newFixture(t, Config{})
	f.add(t, "BA100", "London", time.Hour)
	f.add(t, "AF200", "Paris", 2*time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	f.srv.handleSSE(rec, req)

	events := parseSSEEvents(rec.Body.String())
	if len(events) == 0 || events[0].name != "snapshot" {
		t.Fatalf("expected snapshot event first, got: %s", rec.Body.String())
	}

	var flights []flightView
	if err := json.Unmarshal([]byte(events[0].data), &flights); err != nil {
		t.Fatalf("failed to parse snapshot: %v", err)
	}
	if len(flights) != 2 {
		t.Errorf("snapshot has %d flights, want 2", len(flights))
	}
}

func TestHandleSSE_StreamsEvents(t *testing.T) {
	f := newFixture(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil)
	rec := httptest.NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	req = req.WithContext(ctx)

	done := make(chan struct{})
	go func() {
		f.srv.handleSSE(rec, req)
		close(done)
	}()

	// give handler time to subscribe
	waitForSubscribers(t, f.hub, 1)

	fl := f.add(t, "LH400", "Frankfurt", time.Hour)
	if err := f.svc.DeleteFlight(context.Background(), fl.ID); err != nil {
		t.Fatal(err)
	}
	f.hub.Publish(flight.StatusChanged(fl.ID, flight.StatusScheduled, flight.StatusBoarding, testNow))

	// give time for events to be written
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after context cancellation")
	}

	var names []string
	for _, ev := range parseSSEEvents(rec.Body.String()) {
		names = append(names, ev.name)
	}
	want := []string{"snapshot", "Added", "Deleted", "StatusChanged"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", names, want)
	}
}

func TestHandleSSE_EventPayload(t *testing.T) {
	f := newFixture(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		f.srv.handleSSE(rec, req)
		close(done)
	}()
	waitForSubscribers(t, f.hub, 1)

	id := uuid.New()
	f.hub.Publish(flight.StatusChanged(id, flight.StatusDeparted, flight.StatusDelayed, testNow))
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	events := parseSSEEvents(rec.Body.String())
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %s", len(events), rec.Body.String())
	}

	var ev flight.Event
	if err := json.Unmarshal([]byte(events[1].data), &ev); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if ev.FlightID != id || ev.Status != flight.StatusDelayed || ev.PreviousStatus != flight.StatusDeparted {
		t.Errorf("event = %+v", ev)
	}
}

func TestHandleSSE_UnsubscribesOnDisconnect(t *testing.T) {
	f := newFixture(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		f.srv.handleSSE(rec, req)
		close(done)
	}()

	waitForSubscribers(t, f.hub, 1)

	// simulate client disconnect
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after client disconnect")
	}
	if n := f.hub.Count(); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
}

func TestHandleSSE_HubClosed(t *testing.T) {
	f := newFixture(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		f.srv.handleSSE(rec, req)
		close(done)
	}()

	waitForSubscribers(t, f.hub, 1)
	f.hub.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after hub closed")
	}
}

func TestHandleSSE_NoGoroutineLeaks(t *testing.T) {
	// allow existing goroutines to settle
	runtime.GC()
	time.Sleep(100 * time.Millisecond)
	before := runtime.NumGoroutine()

	f := newFixture(t, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
			f.srv.handleSSE(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	// allow cleanup
	runtime.GC()
	time.Sleep(200 * time.Millisecond)

	after := runtime.NumGoroutine()
	if after > before+2 { // small tolerance for runtime variance
		t.Errorf("potential goroutine leak: before=%d, after=%d", before, after)
	}
}

func TestHandleSSE_SSENotSupported(t *testing.T) {
	f := newFixture(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil)

	// use a writer that doesn't support flushing
	w := &nonFlushWriter{header: make(http.Header)}

	f.srv.handleSSE(w, req)

	if w.statusCode != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.statusCode)
	}
}

type nonFlushWriter struct {
	header     http.Header
	statusCode int
	body       []byte
}

func (n *nonFlushWriter) Header() http.Header {
	return n.header
}

func (n *nonFlushWriter) Write(b []byte) (int, error) {
	n.body = append(n.body, b...)
	return len(b), nil
}

func (n *nonFlushWriter) WriteHeader(statusCode int) {
	n.statusCode = statusCode
}

func TestHandleSSE_Headers(t *testing.T) {
	f := newFixture(t, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	f.srv.handleSSE(rec, req)

	expectedHeaders := map[string]string{
		"Content-Type":                "text/event-stream",
		"Cache-Control":               "no-cache",
		"Connection":                  "keep-alive",
		"Access-Control-Allow-Origin": "*",
	}

	for key, expected := range expectedHeaders {
		if got := rec.Header().Get(key); got != expected {
			t.Errorf("header %s = %q, want %q", key, got, expected)
		}
	}
}

// TestHandleSSE_ServerShutdownIntegration checks that SSE handlers exit
// cleanly when the server context is cancelled, over a real HTTP connection.
func TestHandleSSE_ServerShutdownIntegration(t *testing.T) {
	f := newFixture(t, Config{})
	f.add(t, "BA100", "London", time.Hour)

	serverCtx, serverCancel := context.WithCancel(context.Background())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// derive request context from server context (simulates BaseContext)
		f.srv.handleSSE(w, r.WithContext(serverCtx))
	})

	ts := httptest.NewServer(handler)
	defer ts.Close()

	connDone := make(chan error, 1)
	go func() {
		resp, err := ts.Client().Get(ts.URL)
		if err != nil {
			connDone <- err
			return
		}
		defer func() { _ = resp.Body.Close() }()

		// read until connection closes
		buf := make([]byte, 1024)
		for {
			if _, err := resp.Body.Read(buf); err != nil {
				connDone <- nil
				return
			}
		}
	}()

	waitForSubscribers(t, f.hub, 1)

	// trigger server shutdown
	serverCancel()

	select {
	case <-connDone:
	case <-time.After(3 * time.Second):
		t.Fatal("SSE connection did not close after server shutdown")
	}
}

func waitForSubscribers(t *testing.T, hub *notify.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.Count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d subscribers, have %d", n, hub.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// --- Server Start ---

func TestStart_ServesAPI(t *testing.T) {
	f := newFixture(t, Config{})
	f.add(t, "BA100", "London", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.srv.Start(ctx); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	port := f.srv.Addr().(*net.TCPAddr).Port
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/flights", port))
	if err != nil {
		t.Fatalf("GET /api/flights: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var got []flightView
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Number != "BA100" {
		t.Errorf("got %+v", got)
	}
}

func TestStart_PortInUse_ReturnsError(t *testing.T) {
	// occupy a port
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer func() { _ = ln.Close() }()

	port := ln.Addr().(*net.TCPAddr).Port

	f := newFixture(t, Config{Port: port})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = f.srv.Start(ctx)
	if err == nil {
		t.Fatal("Start() on occupied port should return error")
	}
	if !strings.Contains(err.Error(), "failed to bind") {
		t.Errorf("expected bind error, got: %v", err)
	}
}

func TestStart_InvalidPort_ReturnsError(t *testing.T) {
	f := newFixture(t, Config{Port: -1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.srv.Start(ctx); err == nil {
		t.Fatal("Start() with invalid port should return error")
	}
}

// --- Dashboard ---

// mockFS implements fs.ReadFileFS for testing dashboard rendering.
type mockFS struct {
	content string
}

func (m *mockFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *mockFS) ReadFile(name string) ([]byte, error) {
	if name == "assets/index.html" {
		return []byte(m.content), nil
	}
	return nil, fs.ErrNotExist
}

func TestHandleDashboard_Title(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"custom", "Gatwick North", "<title>Gatwick North</title><h1>Gatwick North</h1>"},
		{"default", "", "<title>FlightDeck</title><h1>FlightDeck</h1>"},
		{"escaped", "<script>alert('x')</script>", "&lt;script&gt;"},
		{"ampersand", "Arrivals & Departures", "Arrivals &amp; Departures"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{
				Assets: &mockFS{content: "<title>{{.Title}}</title><h1>{{.Title}}</h1>"},
				Title:  tt.title,
			})

			rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
			body := rec.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("body %q does not contain %q", body, tt.want)
			}
			if strings.Contains(body, "<script>") {
				t.Error("title should be HTML-escaped to prevent XSS")
			}
		})
	}
}

func TestHandleDashboard_NotFound(t *testing.T) {
	f := newFixture(t, Config{Assets: &mockFS{content: "<title>{{.Title}}</title>"}})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/other", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d for non-root path, got %d", http.StatusNotFound, rec.Code)
	}

	f = newFixture(t, Config{})
	rec = httptest.NewRecorder()
	f.srv.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d with no assets, got %d", http.StatusInternalServerError, rec.Code)
	}
}

// --- Benchmark ---

func BenchmarkHandleList(b *testing.B) {
	f := newFixture(b, Config{})
	for i := 0; i < 100; i++ {
		f.add(b, "BA"+string(rune('A'+i%26))+string(rune('A'+i/26)), "London", time.Duration(i+1)*time.Minute)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.do(httptest.NewRequest(http.MethodGet, "/api/flights?status=boarding", nil))
	}
}
