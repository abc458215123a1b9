package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/ledgergate/ledgergate/internal/lists"
)

type fakeLists struct {
	payload  lists.Payload
	getErr   error
	flushErr error
	gets     int
	flushes  int
}

func (f *fakeLists) Get(ctx context.Context) (lists.Payload, error) {
	f.gets++
	return f.payload, f.getErr
}

func (f *fakeLists) Flush(ctx context.Context) error {
	f.flushes++
	return f.flushErr
}

type fakeSheet struct {
	rows [][]any
	err  error
}

func (f *fakeSheet) AppendRow(ctx context.Context, cells []any) error {
	f.rows = append(f.rows, cells)
	return f.err
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeLists, *fakeSheet) {
	t.Helper()
	fl := &fakeLists{payload: lists.Payload{
		Purposes: []string{"Food", "Rent"},
		Accounts: []string{"Checking"},
	}}
	fs := &fakeSheet{}
	srv := httptest.NewServer(New(Deps{APIKey: "sekrit", Lists: fl, Sheet: fs}))
	t.Cleanup(srv.Close)
	return srv, fl, fs
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var e envelope
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return e
}

func TestLiveness(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type = %q, want text/plain", ct)
	}
	b, _ := io.ReadAll(resp.Body)
	if len(b) == 0 {
		t.Fatalf("liveness body is empty")
	}
}

func TestListsOK(t *testing.T) {
	srv, fl, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/lists?key=sekrit")
	if err != nil {
		t.Fatalf("GET /lists: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var p lists.Payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !reflect.DeepEqual(p, fl.payload) {
		t.Fatalf("payload = %+v, want %+v", p, fl.payload)
	}
}

func TestListsFailure(t *testing.T) {
	srv, fl, _ := newTestServer(t)
	fl.getErr = errors.New("token exchange: status 400")

	resp, err := http.Get(srv.URL + "/lists?key=sekrit")
	if err != nil {
		t.Fatalf("GET /lists: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	e := decodeEnvelope(t, resp)
	if e.Status != "ERROR" || e.Detail == "" {
		t.Fatalf("envelope = %+v", e)
	}
}

func TestWrongKeyRejected(t *testing.T) {
	srv, fl, fs := newTestServer(t)

	for _, req := range []struct {
		method, path string
	}{
		{http.MethodGet, "/lists?key=wrong"},
		{http.MethodGet, "/lists"},
		{http.MethodPost, "/add?key=wrong"},
		{http.MethodPost, "/flush-cache?key=wrong"},
	} {
		r, _ := http.NewRequest(req.method, srv.URL+req.path, strings.NewReader("{}"))
		resp, err := http.DefaultClient.Do(r)
		if err != nil {
			t.Fatalf("%s %s: %v", req.method, req.path, err)
		}
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s status = %d, want 403", req.method, req.path, resp.StatusCode)
		}
		e := decodeEnvelope(t, resp)
		if e.Status != "ERROR" {
			t.Fatalf("envelope status = %q, want ERROR", e.Status)
		}
	}

	if fl.gets != 0 || fl.flushes != 0 || len(fs.rows) != 0 {
		t.Fatalf("backend was reached despite bad key: gets=%d flushes=%d appends=%d",
			fl.gets, fl.flushes, len(fs.rows))
	}
}

func TestAddHappyPath(t *testing.T) {
	srv, _, fs := newTestServer(t)

	body := `{"date":"2024-01-05","amount":12.5,"currency":"USD","description":"Coffee","purpose":"Food","account":"Checking"}`
	resp, err := http.Post(srv.URL+"/add?key=sekrit", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /add: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	e := decodeEnvelope(t, resp)
	if e.Status != "OK" {
		t.Fatalf("envelope = %+v, want OK", e)
	}

	if len(fs.rows) != 1 {
		t.Fatalf("append calls = %d, want 1", len(fs.rows))
	}
	want := []any{"2024-01-05", 12.5, "USD", "Coffee", "Food", "Checking"}
	if !reflect.DeepEqual(fs.rows[0], want) {
		t.Fatalf("appended cells = %v, want %v", fs.rows[0], want)
	}
}

func TestAddMissingAmount(t *testing.T) {
	srv, _, fs := newTestServer(t)

	body := `{"date":"2024-01-05","currency":"USD","description":"Coffee","purpose":"Food","account":"Checking"}`
	resp, err := http.Post(srv.URL+"/add?key=sekrit", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /add: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if len(fs.rows) != 0 {
		t.Fatalf("append calls = %d, want 0", len(fs.rows))
	}
}

func TestAddBackendFailure(t *testing.T) {
	srv, _, fs := newTestServer(t)
	fs.err = errors.New("sheets api: status 502: bad gateway")

	body := `{"date":"2024-01-05","amount":1,"currency":"EUR","description":"","purpose":"Rent","account":"Cash"}`
	resp, err := http.Post(srv.URL+"/add?key=sekrit", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /add: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	e := decodeEnvelope(t, resp)
	if e.Detail == "" {
		t.Fatalf("envelope detail is empty, want upstream error")
	}
}

func TestFlushCache(t *testing.T) {
	srv, fl, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/flush-cache?key=sekrit", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /flush-cache: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if fl.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", fl.flushes)
	}

	fl.flushErr = errors.New("store unreachable")
	resp, err = http.Post(srv.URL+"/flush-cache?key=sekrit", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /flush-cache: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestUnmatchedRoute(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, path := range []string{"/nope", "/lists/extra"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
		e := decodeEnvelope(t, resp)
		if e.Status != "ERROR" || e.Message != "Not Found" {
			t.Fatalf("envelope = %+v", e)
		}
	}

	// wrong method on a known path is still an unmatched route
	resp, err := http.Get(srv.URL + "/add?key=sekrit")
	if err != nil {
		t.Fatalf("GET /add: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET /add status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMisconfiguredServer(t *testing.T) {
	fl := &fakeLists{}
	srv := httptest.NewServer(New(Deps{
		ConfigErr: errors.New("missing required configuration: api_key"),
		Lists:     fl,
	}))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/lists?key=anything")
	if err != nil {
		t.Fatalf("GET /lists: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	e := decodeEnvelope(t, resp)
	if e.Message != "server misconfigured" {
		t.Fatalf("message = %q, want server misconfigured", e.Message)
	}
	if fl.gets != 0 {
		t.Fatalf("list cache reached on misconfigured server")
	}

	// liveness keeps answering regardless
	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("liveness status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()
}
