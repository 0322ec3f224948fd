package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nccpresi/attendance-backend/internal/database/mock"
	"github.com/nccpresi/attendance-backend/internal/recognizer"
	"github.com/nccpresi/attendance-backend/internal/registry"
	"github.com/nccpresi/attendance-backend/internal/sheets"
)

// fakeExtractor returns canned encodings instead of calling the
// extractor service.
type fakeExtractor struct {
	encodings [][]float32
	err       error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) ([][]float32, error) {
	return f.encodings, f.err
}

// fakeArchiver records Store calls.
type fakeArchiver struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (f *fakeArchiver) Store(_ context.Context, _, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
	return f.err
}

func (f *fakeArchiver) stored() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.names...)
}

// fakeAuth returns a canned credential check result.
type fakeAuth struct {
	cred *sheets.Credential
	err  error
}

func (f *fakeAuth) Authenticate(_ context.Context, _, _ string) (*sheets.Credential, error) {
	return f.cred, f.err
}

// testEnv wires the handlers over mock storage and fake collaborators.
type testEnv struct {
	router     http.Handler
	cadets     *mock.CadetStore
	events     *mock.EventStore
	attendance *mock.AttendanceStore
	registry   *registry.Store
	extractor  *fakeExtractor
	archiver   *fakeArchiver
	auth       *fakeAuth
	queue      *ArchiveQueue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		cadets:     mock.NewCadetStore(),
		events:     mock.NewEventStore(),
		attendance: mock.NewAttendanceStore(),
		registry:   registry.New(filepath.Join(t.TempDir(), "encodings.gob")),
		extractor:  &fakeExtractor{},
		archiver:   &fakeArchiver{},
		auth:       &fakeAuth{},
	}
	env.attendance.Events = env.events
	env.events.Attendance = env.attendance
	env.queue = NewArchiveQueue(env.archiver)

	faces := NewFacesHandler(env.registry, recognizer.New(env.registry, 0.6), env.extractor, env.queue)
	events := NewEventsHandler(env.events, env.attendance, env.cadets)
	attendance := NewAttendanceHandler(env.attendance, env.events, env.cadets)
	cadets := NewCadetsHandler(env.cadets)
	auth := NewAuthHandler(env.auth)
	status := NewStatusHandler(env.queue)

	r := chi.NewRouter()
	r.Get("/", status.Root)
	r.Get("/healthz", status.Health)
	r.Post("/register", faces.Register)
	r.Post("/recognize", faces.Recognize)
	r.Post("/log_attendance", attendance.Log)
	r.Get("/event_attendance/{id}", attendance.ForEvent)
	r.Get("/event_ods", attendance.ODs)
	r.Get("/attendance-summary", attendance.Summary)
	r.Post("/create_event", events.Create)
	r.Get("/active_event", events.Active)
	r.Post("/end_event", events.End)
	r.Get("/events", events.List)
	r.Get("/events/{id}", events.Details)
	r.Get("/cadets", cadets.List)
	r.Get("/strength", cadets.Strength)
	r.Post("/login", auth.Login)
	env.router = r

	return env
}

func (env *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// postJSON builds a JSON POST request.
func postJSON(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// postForm builds a urlencoded POST request.
func postForm(t *testing.T, path string, values map[string]string) *http.Request {
	t.Helper()
	var form []string
	for k, v := range values {
		form = append(form, k+"="+v)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(strings.Join(form, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// postMultipart builds a multipart POST with optional form fields and a
// file part.
func postMultipart(t *testing.T, path string, fields map[string]string, fileContent []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileContent != nil {
		part, err := writer.CreateFormFile("file", "photo.jpg")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(fileContent); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func assertStatusCode(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rec.Code != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, rec.Code, rec.Body.String())
	}
}

// decodeList parses a JSON array response body.
func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()
	var list []any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("could not decode response %q: %v", rec.Body.String(), err)
	}
	return list
}

// decodeBody parses the JSON response body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("could not decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func assertJSONError(t *testing.T, rec *httptest.ResponseRecorder, status int, contains string) {
	t.Helper()
	assertStatusCode(t, rec, status)
	body := decodeBody(t, rec)
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, contains) {
		t.Errorf("expected error containing %q, got %q", contains, msg)
	}
}
