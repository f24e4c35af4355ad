package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/event-comb/app/classify"
	"github.com/lysyi3m/event-comb/app/database"
	"github.com/lysyi3m/event-comb/app/store"
)

type testLedger struct {
	repo       database.RunRepository
	outputPath string
}

func newTestLedger(t *testing.T) testLedger {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := database.NewRunRepository(db)

	writer := store.NewWriter(t.TempDir())
	path, err := writer.WriteEvents("2024-05-01", store.EventsFilename, []classify.EventRecord{{
		URL:         "http://x.test/a",
		HomepageURL: "http://x.test/",
		PageType:    classify.PageTypeEventDetail,
		Category:    classify.CategoryMusic,
		Tags:        []string{"jazz"},
		Confidence:  0.9,
		RunDate:     "2024-05-01",
		ExtractedAt: "2024-05-01T10:30:00+00:00",
	}})
	if err != nil {
		t.Fatalf("Failed to write events: %v", err)
	}

	for _, id := range []string{"done", "empty"} {
		if err := repo.StartRun(database.Run{ID: id, PipelineID: "p1", TaskType: "classify_events", RunDate: "2024-05-01", StartedAt: time.Now()}); err != nil {
			t.Fatalf("Failed to start run: %v", err)
		}
	}
	if err := repo.FinishRun("done", database.StatusSuccess, 1, path, ""); err != nil {
		t.Fatalf("Failed to finish run: %v", err)
	}
	if err := repo.FinishRun("empty", database.StatusFailed, 0, "", "boom"); err != nil {
		t.Fatalf("Failed to finish run: %v", err)
	}

	return testLedger{repo: repo, outputPath: path}
}

func serve(t *testing.T, apiKey string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	ledger := newTestLedger(t)
	server := NewServer(NewHandler(ledger.repo, store.ReadRows, "test"), apiKey)
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", recorder.Body.String(), err)
	}
	return body
}

func TestServer_Health(t *testing.T) {
	recorder := serve(t, "", httptest.NewRequest(http.MethodGet, "/health", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	body := decode(t, recorder)
	if body["runs"] != float64(2) {
		t.Errorf("Expected 2 runs, got %v", body["runs"])
	}
	if body["version"] != "test" {
		t.Errorf("Expected version 'test', got %v", body["version"])
	}
}

func TestServer_ListRuns(t *testing.T) {
	recorder := serve(t, "", httptest.NewRequest(http.MethodGet, "/api/runs?limit=1", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	body := decode(t, recorder)
	if body["total"] != float64(1) {
		t.Errorf("Expected 1 run with limit=1, got %v", body["total"])
	}
}

func TestServer_ListRunsInvalidLimit(t *testing.T) {
	recorder := serve(t, "", httptest.NewRequest(http.MethodGet, "/api/runs?limit=abc", nil))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
}

func TestServer_GetRun(t *testing.T) {
	recorder := serve(t, "", httptest.NewRequest(http.MethodGet, "/api/runs/empty", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	body := decode(t, recorder)
	if body["status"] != database.StatusFailed || body["error"] != "boom" {
		t.Errorf("Unexpected run: %v", body)
	}

	recorder = serve(t, "", httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown run, got %d", recorder.Code)
	}
}

func TestServer_GetRunRows(t *testing.T) {
	recorder := serve(t, "", httptest.NewRequest(http.MethodGet, "/api/runs/done/rows", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if recorder.Header().Get("X-Run-Rows") != "1" {
		t.Errorf("Expected X-Run-Rows 1, got '%s'", recorder.Header().Get("X-Run-Rows"))
	}

	body := decode(t, recorder)
	rows, ok := body["rows"].([]interface{})
	if !ok || len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %v", body["rows"])
	}
	row := rows[0].(map[string]interface{})
	if row["category"] != "music" || row["tags"] != `["jazz"]` {
		t.Errorf("Unexpected row: %v", row)
	}

	recorder = serve(t, "", httptest.NewRequest(http.MethodGet, "/api/runs/empty/rows", nil))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for run without output, got %d", recorder.Code)
	}
}

func TestServer_Authentication(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"header key", "X-API-Key", "secret", http.StatusOK},
		{"bearer key", "Authorization", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			recorder := serve(t, "secret", req)
			if recorder.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, recorder.Code)
			}
		})
	}

	recorder := serve(t, "secret", httptest.NewRequest(http.MethodGet, "/health", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected health to stay public, got %d", recorder.Code)
	}
}
