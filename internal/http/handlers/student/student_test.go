package student

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-roster/internal/config"
	"github.com/aanand-mishra/student-roster/internal/storage/sqlite"
	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/aanand-mishra/student-roster/internal/utils/response"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sqlite.Open(config.DriverSQLite, filepath.Join(t.TempDir(), "students.db"))
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mux := http.NewServeMux()
	Register(mux, db, nil)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func TestCreateListUpdateDelete(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/students"

	res := do(t, http.MethodPost, base, `{"firstName":"Ana","lastName":"Lee","email":"ana@example.com","gpa":3.5,"enrollmentYear":2021,"major":"CS"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", res.StatusCode)
	}
	var created types.Student
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == 0 || created.Major == nil || *created.Major != "CS" {
		t.Fatalf("unexpected created student %+v", created)
	}

	res = do(t, http.MethodGet, base, "")
	var list []types.Student
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Email != "ana@example.com" {
		t.Fatalf("unexpected list %+v", list)
	}

	idURL := base + "/" + strconv.FormatInt(created.ID, 10)
	res = do(t, http.MethodPut, idURL, `{"firstName":"Ana","lastName":"Li","email":"ana@example.com"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", res.StatusCode)
	}

	res = do(t, http.MethodDelete, idURL, "")
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", res.StatusCode)
	}
	res = do(t, http.MethodDelete, idURL, "")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", res.StatusCode)
	}
}

func TestCreateValidationFailureReturnsEnvelope(t *testing.T) {
	srv := newTestServer(t)

	res := do(t, http.MethodPost, srv.URL+"/api/students", `{"firstName":"","lastName":"Lee","email":"ana@example.com"}`)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	var body response.Response
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "field firstName is required" {
		t.Fatalf("unexpected error %q", body.Error)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	payload := `{"firstName":"Ana","lastName":"Lee","email":"ana@example.com"}`
	do(t, http.MethodPost, srv.URL+"/api/students", payload)

	res := do(t, http.MethodPost, srv.URL+"/api/students", payload)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	var body response.Response
	_ = json.NewDecoder(res.Body).Decode(&body)
	if !strings.Contains(body.Error, "email already exists") {
		t.Fatalf("unexpected error %q", body.Error)
	}
}

func TestEmptyBodyAndBadID(t *testing.T) {
	srv := newTestServer(t)

	if res := do(t, http.MethodPost, srv.URL+"/api/students", ""); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty body: expected 400, got %d", res.StatusCode)
	}
	if res := do(t, http.MethodGet, srv.URL+"/api/students/abc", ""); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", res.StatusCode)
	}
	if res := do(t, http.MethodGet, srv.URL+"/api/students/42", ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing id: expected 404, got %d", res.StatusCode)
	}
}
