package service_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/ignatij/trialtasks/pkg/models"
	"github.com/ignatij/trialtasks/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateTaskRequest(t *testing.T) {
	t.Run("AllKeys", func(t *testing.T) {
		req, err := service.ParseCreateTaskRequest(strings.NewReader(`{"number": "T-1", "title": "Trial A",
			"duration": "", "number_of_target": "", "type": "X", "scope": "Y", "institute": "Z",
			"trialStage": "S1", "department": "D1", "sponsor": "ignored"}`))
		require.NoError(t, err)
		assert.Equal(t, service.CreateTaskRequest{
			Number: "T-1", Title: "Trial A", Type: "X", Scope: "Y", Institute: "Z", TrialStage: "S1", Department: "D1",
		}, req)
		assert.Equal(t, "S1", req.LookupName(models.TrialStageLookup))
		assert.Equal(t, "D1", req.LookupName(models.DepartmentLookup))
	})

	t.Run("MissingKeyNamesTheKey", func(t *testing.T) {
		_, err := service.ParseCreateTaskRequest(strings.NewReader(`{"number": "T-1", "title": "Trial A",
			"duration": "", "number_of_target": "", "type": "X", "scope": "Y", "institute": "Z", "department": "D1"}`))
		assert.ErrorIs(t, err, service.ErrMissingKey)
		assert.Contains(t, err.Error(), "trialStage")
	})

	t.Run("TrailingData", func(t *testing.T) {
		valid := `{"number": "T-1", "title": "Trial A", "duration": "", "number_of_target": "",
			"type": "X", "scope": "Y", "institute": "Z", "trialStage": "S1", "department": "D1"}`
		for _, tail := range []string{" this is not json", "}", ` {"number": "T-2"}`} {
			_, err := service.ParseCreateTaskRequest(strings.NewReader(valid + tail))
			assert.ErrorIs(t, err, service.ErrInvalidValue, tail)
		}

		_, err := service.ParseCreateTaskRequest(strings.NewReader(valid + "\n  \n"))
		assert.NoError(t, err, "trailing whitespace is allowed")
	})

	t.Run("EmptyBody", func(t *testing.T) {
		_, err := service.ParseCreateTaskRequest(strings.NewReader(""))
		assert.ErrorIs(t, err, service.ErrInvalidValue)
	})

	t.Run("NullBody", func(t *testing.T) {
		_, err := service.ParseCreateTaskRequest(strings.NewReader("null"))
		assert.ErrorIs(t, err, service.ErrTypeMismatch)
	})

	t.Run("EmptyObject", func(t *testing.T) {
		_, err := service.ParseCreateTaskRequest(strings.NewReader("{}"))
		assert.ErrorIs(t, err, service.ErrMissingKey)
	})
}

func TestParseSearchTasksRequest(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		req, err := service.ParseSearchTasksRequest(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, models.TaskFilter{Page: models.Page{Offset: 0, Limit: 10}}, req.Filter)
	})

	t.Run("AllParameters", func(t *testing.T) {
		q, err := url.ParseQuery("offset=20&limit=5&title=trial&department=Oncology&institute=Seoul&type=X&trial_stage=Phase+1&scope=Global")
		require.NoError(t, err)
		req, err := service.ParseSearchTasksRequest(q)
		require.NoError(t, err)
		assert.Equal(t, models.TaskFilter{
			Title:      "trial",
			Department: "Oncology",
			Institute:  "Seoul",
			Type:       "X",
			TrialStage: "Phase 1",
			Scope:      "Global",
			Page:       models.Page{Offset: 20, Limit: 5},
		}, req.Filter)
	})

	t.Run("BadPagination", func(t *testing.T) {
		cases := map[string]error{
			"offset=abc":                  service.ErrTypeMismatch,
			"offset=":                     service.ErrTypeMismatch,
			"limit=0x10":                  service.ErrTypeMismatch,
			"limit=-1":                    service.ErrInvalidValue,
			"offset=99999999999999999999": service.ErrInvalidValue,
		}
		for query, want := range cases {
			q, err := url.ParseQuery(query)
			require.NoError(t, err)
			_, err = service.ParseSearchTasksRequest(q)
			assert.ErrorIs(t, err, want, query)
		}
	})
}

func TestParseListRecentRequest(t *testing.T) {
	req, err := service.ParseListRecentRequest(url.Values{"limit": {"3"}})
	require.NoError(t, err)
	assert.Equal(t, models.Page{Offset: 0, Limit: 3}, req.Page)

	_, err = service.ParseListRecentRequest(url.Values{"offset": {"x"}})
	assert.ErrorIs(t, err, service.ErrTypeMismatch)
}
