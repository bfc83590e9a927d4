package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablasso/smartplan/internal/ai"
	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/planner"
	"github.com/pablasso/smartplan/internal/storage/memory"
)

func breakdown() *plan.Generated {
	return &plan.Generated{Tasks: []plan.GeneratedTask{
		{ID: 1, Name: "Research", Description: "Look around", Priority: "High", EstimatedDuration: &plan.Duration{Value: 2, Unit: "days"}},
		{ID: 2, Name: "Design", Description: "Sketch", Priority: "Medium", Dependencies: []int{1}, EstimatedDuration: &plan.Duration{Value: 3, Unit: "days"}},
		{ID: 3, Name: "Build", Description: "Code, test", Priority: "Low", Dependencies: []int{1, 2}, EstimatedDuration: &plan.Duration{Value: 2, Unit: "weeks"}},
	}}
}

// syncBuffer is written by server goroutines and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	srv  *httptest.Server
	logs *syncBuffer
}

func newFixture(t *testing.T, gen ai.Generator) *fixture {
	t.Helper()
	if gen == nil {
		gen = ai.GeneratorFunc(func(ctx context.Context, goal string) (*plan.Generated, error) {
			return breakdown(), nil
		})
	}
	ids := []string{"42", "43", "44"}
	svc := planner.New(memory.New(), gen,
		planner.WithIDFunc(func() (string, error) {
			id := ids[0]
			ids = ids[1:]
			return id, nil
		}),
		planner.WithClock(func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }),
	)
	logs := &syncBuffer{}
	srv := httptest.NewServer(New(svc, Options{Logger: log.New(logs, "", 0)}))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, logs: logs}
}

func (f *fixture) do(t *testing.T, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRoot(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.do(t, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Smart Task Planner API", body["message"])
}

func TestCreateAndGetPlan(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.do(t, http.MethodPost, "/api/plan?goal=Build+a+mobile+app")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[createResponse](t, resp)
	assert.True(t, created.Success)
	assert.Equal(t, "42", created.PlanID)
	require.NotNil(t, created.Plan)
	assert.Len(t, created.Plan.Tasks, 3)

	resp = f.do(t, http.MethodGet, "/api/plan/42")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[plan.Plan](t, resp)
	assert.Equal(t, "Build a mobile app", got.Goal)
	assert.Equal(t, plan.Percent(0), got.Progress)
	require.Len(t, got.Tasks, 3)
	assert.Equal(t, []int{1, 2}, got.Tasks[2].Dependencies)
	assert.Equal(t, plan.StatusPending, got.Tasks[0].Status)

	resp = f.do(t, http.MethodGet, "/api/plans")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		Plans []plan.Summary `json:"plans"`
	}](t, resp)
	require.Len(t, list.Plans, 1)
	assert.Equal(t, 3, list.Plans[0].TaskCount)
}

func TestCreatePlan_Errors(t *testing.T) {
	t.Run("empty goal", func(t *testing.T) {
		f := newFixture(t, nil)
		resp := f.do(t, http.MethodPost, "/api/plan?goal=%20%20")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[map[string]string](t, resp)
		assert.Equal(t, planner.ErrEmptyGoal.Error(), body["error"])
	})

	t.Run("generator failure", func(t *testing.T) {
		f := newFixture(t, ai.GeneratorFunc(func(ctx context.Context, goal string) (*plan.Generated, error) {
			return nil, errors.New("quota exceeded")
		}))
		resp := f.do(t, http.MethodPost, "/api/plan?goal=anything")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		body := decode[map[string]string](t, resp)
		assert.Contains(t, body["error"], "quota exceeded")
	})
}

func TestUpdateTaskStatus(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/plan?goal=g").StatusCode)

	resp := f.do(t, http.MethodPatch, "/api/task/42/1/status?status=completed")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[successResponse](t, resp).Success)

	got := decode[plan.Plan](t, f.do(t, http.MethodGet, "/api/plan/42"))
	assert.Equal(t, plan.StatusCompleted, got.Tasks[0].Status)
	assert.Equal(t, plan.Percent(33), got.Progress)

	tests := []struct {
		name string
		path string
		code int
	}{
		{name: "invalid status", path: "/api/task/42/1/status?status=done", code: http.StatusBadRequest},
		{name: "missing status", path: "/api/task/42/1/status", code: http.StatusBadRequest},
		{name: "bad task number", path: "/api/task/42/abc/status?status=completed", code: http.StatusBadRequest},
		{name: "unknown task", path: "/api/task/42/9/status?status=completed", code: http.StatusNotFound},
		{name: "unknown plan", path: "/api/task/nope/1/status?status=completed", code: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPatch, tt.path)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestProgressReport(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/plan?goal=g").StatusCode)
	f.do(t, http.MethodPatch, "/api/task/42/1/status?status=completed")
	f.do(t, http.MethodPatch, "/api/task/42/2/status?status=completed")
	f.do(t, http.MethodPatch, "/api/task/42/3/status?status=in_progress")

	resp := f.do(t, http.MethodGet, "/api/plan/42/progress")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[plan.Report](t, resp)
	assert.Equal(t, 3, report.TotalTasks)
	assert.Equal(t, 2, report.Completed)
	assert.Equal(t, 1, report.InProgress)
	assert.Equal(t, plan.Percent(67), report.ProgressPercentage)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/plan/missing/progress").StatusCode)
}

func TestDeletePlan(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/plan?goal=g").StatusCode)

	resp := f.do(t, http.MethodDelete, "/api/plan/42")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/plan/42").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPatch, "/api/task/42/1/status?status=completed").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/plan/42").StatusCode)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/plan?goal=g").StatusCode)

	resp := f.do(t, http.MethodGet, "/api/plan/42/export/csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
	assert.Equal(t, "attachment; filename=task_plan_42.csv", resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Task ID,Task Name,Description,Estimated Duration,Priority,Dependencies,Status", lines[0])
	assert.Equal(t, "1,Research,Look around,2 days,HIGH,None,pending", lines[1])
	assert.Equal(t, `3,Build,"Code, test",2 weeks,LOW,"1, 2",pending`, lines[3])

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/plan/none/export/csv").StatusCode)
}

func TestAttachmentHeader(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "plain", filename: "task_plan_42.csv", want: "attachment; filename=task_plan_42.csv"},
		{name: "space is quoted", filename: "task_plan_a b.csv", want: `attachment; filename="task_plan_a b.csv"`},
		{name: "quote is escaped", filename: `task_plan_a"b.csv`, want: `attachment; filename="task_plan_a\"b.csv"`},
		{name: "non-ascii is encoded", filename: "task_plan_é.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attachment(tt.filename)
			if tt.want != "" {
				assert.Equal(t, tt.want, got)
			}

			disposition, params, err := mime.ParseMediaType(got)
			require.NoError(t, err)
			assert.Equal(t, "attachment", disposition)
			assert.Equal(t, tt.filename, params["filename"])
		})
	}
}

func TestMiddleware(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("request id is assigned and echoed", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/plans")
		assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

		req, _ := http.NewRequest(http.MethodGet, f.srv.URL+"/api/plans", nil)
		req.Header.Set(RequestIDHeader, "fixed-id")
		resp2, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp2.Body.Close()
		assert.Equal(t, "fixed-id", resp2.Header.Get(RequestIDHeader))
	})

	t.Run("access log", func(t *testing.T) {
		f.do(t, http.MethodGet, "/api/plans")
		assert.Contains(t, f.logs.String(), `"msg":"http_request"`)
		assert.Contains(t, f.logs.String(), `"path":"/api/plans"`)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/plan/42", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("unknown route is JSON 404", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/nothing")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "not found", decode[map[string]string](t, resp)["error"])
	})

	t.Run("wrong method is JSON 405", func(t *testing.T) {
		resp := f.do(t, http.MethodPut, "/api/plans")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestWithCORS_RestrictedOrigins(t *testing.T) {
	h := WithCORS([]string{"http://allowed.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://allowed.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://allowed.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithRecover(t *testing.T) {
	var logs bytes.Buffer
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), WithRequestID, WithRecover(log.New(&logs, "", 0)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.Contains(t, logs.String(), "panic_recovered")
	assert.Contains(t, logs.String(), "boom")
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "127.0.0.1:0", http.NotFoundHandler(), log.New(io.Discard, "", 0))
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
