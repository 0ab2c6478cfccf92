package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	internal_http "github.com/ignatij/trialtasks/internal/http"
	"github.com/ignatij/trialtasks/pkg/service"
	"github.com/ignatij/trialtasks/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logger struct{}

func (l logger) Infof(format string, args ...interface{}) {
	// no-op
}

func (l logger) Errorf(format string, args ...interface{}) {
	// no-op
}

func TestHandlersInMemory(t *testing.T) {
	newRouter := func() http.Handler {
		base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		tick := 0
		clock := func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}
		svc := service.NewTaskService(storage.NewMockStoreWithClock(clock), logger{})
		return internal_http.NewRouter(svc, time.Second)
	}

	do := func(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	payload := func(number, title, typ string) string {
		return fmt.Sprintf(`{"number": %q, "title": %q, "duration": "6 months", "number_of_target": "120",
			"type": %q, "scope": "Domestic", "institute": "Seoul Hospital", "trialStage": "Phase 1", "department": "Oncology"}`,
			number, title, typ)
	}

	t.Run("CreateSuccess", func(t *testing.T) {
		h := newRouter()
		rec := do(h, http.MethodPost, "/tasks", payload("T-1", "Trial A", "X"))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"message":"CREATE_SUCCESS"}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("CreateWithTrailingSlash", func(t *testing.T) {
		h := newRouter()
		rec := do(h, http.MethodPost, "/tasks/", payload("T-1", "Trial A", "X"))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("CreateErrors", func(t *testing.T) {
		cases := []struct {
			name string
			body string
			msg  string
		}{
			{"MissingKey", `{"number": "T-1", "title": "x"}`, "KEY_ERROR"},
			{"NonStringValue", `{"number": 1, "title": "x", "duration": "", "number_of_target": "",
				"type": "", "scope": "", "institute": "", "trialStage": "", "department": ""}`, "TYPE_ERROR"},
			{"NullValue", `{"number": "T-1", "title": null, "duration": "", "number_of_target": "",
				"type": "", "scope": "", "institute": "", "trialStage": "", "department": ""}`, "TYPE_ERROR"},
			{"NotAnObject", `["T-1"]`, "TYPE_ERROR"},
			{"InvalidJSON", `{"number": `, "VALUE_ERROR"},
			{"TrailingData", `{"number": "T-1", "title": "x", "duration": "", "number_of_target": "",
				"type": "", "scope": "", "institute": "", "trialStage": "", "department": ""} this is not json`, "VALUE_ERROR"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rec := do(newRouter(), http.MethodPost, "/tasks", tc.body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.JSONEq(t, fmt.Sprintf(`{"message":%q}`, tc.msg), rec.Body.String())
			})
		}
	})

	t.Run("CreateMultibyteAtColumnLimit", func(t *testing.T) {
		h := newRouter()
		body := fmt.Sprintf(`{"number": "T-1", "title": %q, "duration": "", "number_of_target": "",
			"type": "X", "scope": "Y", "institute": "Z", "trialStage": "S1", "department": %q}`,
			strings.Repeat("임", 300), strings.Repeat("종", 100))
		rec := do(h, http.MethodPost, "/tasks", body)
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = do(h, http.MethodGet, "/tasks/1", "")
		assert.Contains(t, rec.Body.String(), strings.Repeat("종", 100))
	})

	t.Run("CreateDuplicateNumber", func(t *testing.T) {
		h := newRouter()
		require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/tasks", payload("T-1", "Trial A", "X")).Code)

		rec := do(h, http.MethodPost, "/tasks", payload("T-1", "Trial B", "Y"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"message":"DUPLICATE_NUMBER"}`, rec.Body.String())

		rec = do(h, http.MethodGet, "/tasks/search", "")
		assert.JSONEq(t, `{"count":1,"data":[{"number":"T-1","title":"Trial A","department":"Oncology",
			"institute":"Seoul Hospital","number_of_target":"120","duration":"6 months","type":"X",
			"trial_stage":"Phase 1","scope":"Domestic"}]}`, rec.Body.String())
	})

	t.Run("SearchScenario", func(t *testing.T) {
		h := newRouter()
		require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/tasks", payload("T-1", "Trial A", "X")).Code)
		require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/tasks", payload("T-2", "Cohort B", "Y")).Code)

		rec := do(h, http.MethodGet, "/tasks/search?title=trial", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		var result service.SearchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Count)
		require.Len(t, result.Data, 1)
		assert.Equal(t, "Trial A", result.Data[0].Title)
		assert.Equal(t, "X", result.Data[0].Type)

		again := do(h, http.MethodGet, "/tasks/search?title=trial", "")
		assert.Equal(t, rec.Body.String(), again.Body.String())
	})

	t.Run("SearchLimitAndCount", func(t *testing.T) {
		h := newRouter()
		for i := 1; i <= 4; i++ {
			require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/tasks", payload(fmt.Sprintf("T-%d", i), "Trial", "X")).Code)
		}

		rec := do(h, http.MethodGet, "/tasks/search?limit=3", "")
		var result service.SearchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 3, result.Count)
		assert.Len(t, result.Data, 3)

		rec = do(h, http.MethodGet, "/tasks/search?offset=3&limit=3", "")
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Count)
		assert.Equal(t, "T-4", result.Data[0].Number)
	})

	t.Run("SearchEmpty", func(t *testing.T) {
		rec := do(newRouter(), http.MethodGet, "/tasks/search", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":0,"data":[]}`, rec.Body.String())
	})

	t.Run("PaginationErrors", func(t *testing.T) {
		cases := []struct {
			path string
			msg  string
		}{
			{"/tasks/search?offset=abc", "TYPE_ERROR"},
			{"/tasks/search?limit=1.5", "TYPE_ERROR"},
			{"/tasks/search?offset=-1", "VALUE_ERROR"},
			{"/tasks/search?limit=99999999999999999999999", "VALUE_ERROR"},
			{"/tasks/list?limit=ten", "TYPE_ERROR"},
			{"/tasks/list?offset=-5", "VALUE_ERROR"},
		}
		for _, tc := range cases {
			t.Run(tc.path, func(t *testing.T) {
				rec := do(newRouter(), http.MethodGet, tc.path, "")
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.JSONEq(t, fmt.Sprintf(`{"message":%q}`, tc.msg), rec.Body.String())
			})
		}
	})

	t.Run("Detail", func(t *testing.T) {
		h := newRouter()
		require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/tasks", payload("T-1", "Trial A", "X")).Code)

		rec := do(h, http.MethodGet, "/tasks/1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"SUCCESS","task_info":{"number":"T-1","title":"Trial A",
			"duration":"6 months","number_of_target":"120","scope":"Domestic","type":"X",
			"institute":"Seoul Hospital","trial_stages":"Phase 1","department":"Oncology",
			"created_at":"2024-03-01T09:00:06Z","updated_at":"2024-03-01T09:00:06Z"}}`, rec.Body.String())
	})

	t.Run("DetailNotFound", func(t *testing.T) {
		for _, path := range []string{"/tasks/999999", "/tasks/0", "/tasks/99999999999999999999"} {
			rec := do(newRouter(), http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, path)
			assert.Equal(t, `{"message":"TASK_DOES_NOT_EXIST"}`+"\n", rec.Body.String(), path)
		}
	})

	t.Run("DetailNonNumericIDDoesNotRoute", func(t *testing.T) {
		rec := do(newRouter(), http.MethodGet, "/tasks/abc", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("RecentList", func(t *testing.T) {
		h := newRouter()
		require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/tasks", payload("T-1", "Trial A", "X")).Code)
		require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/tasks", payload("T-2", "Trial B", "Y")).Code)

		rec := do(h, http.MethodGet, "/tasks/list?limit=1&offset=1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		var result service.RecentResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.Len(t, result.Data, 1)
		assert.Equal(t, "T-2", result.Data[0].Number)
		assert.NotContains(t, rec.Body.String(), "count")
	})

	t.Run("Health", func(t *testing.T) {
		rec := do(newRouter(), http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "trialtasks server is running", rec.Body.String())
	})
}
