package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strconv"

	"github.com/ignatij/trialtasks/pkg/models"
	"github.com/pkg/errors"
)

// CreateTaskRequest is the typed create-task payload. Every field is a
// required key, but any value including "" is accepted.
type CreateTaskRequest struct {
	Number         string
	Title          string
	Duration       string
	NumberOfTarget string
	Type           string
	Scope          string
	Institute      string
	TrialStage     string
	Department     string
}

// createTaskKeys lists the JSON body keys in the order they are checked.
var createTaskKeys = []string{
	"type", "scope", "institute", "trialStage", "department",
	"number", "title", "duration", "number_of_target",
}

func (r *CreateTaskRequest) field(key string) *string {
	switch key {
	case "number":
		return &r.Number
	case "title":
		return &r.Title
	case "duration":
		return &r.Duration
	case "number_of_target":
		return &r.NumberOfTarget
	case "type":
		return &r.Type
	case "scope":
		return &r.Scope
	case "institute":
		return &r.Institute
	case "trialStage":
		return &r.TrialStage
	case "department":
		return &r.Department
	}
	return nil
}

// LookupName returns the categorical value supplied for kind.
func (r CreateTaskRequest) LookupName(kind models.LookupKind) string {
	switch kind {
	case models.DepartmentLookup:
		return r.Department
	case models.InstituteLookup:
		return r.Institute
	case models.ScopeLookup:
		return r.Scope
	case models.TrialStageLookup:
		return r.TrialStage
	case models.TypeLookup:
		return r.Type
	}
	return ""
}

// ParseCreateTaskRequest decodes a body holding exactly one JSON object.
// Unknown keys are ignored.
func ParseCreateTaskRequest(body io.Reader) (CreateTaskRequest, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(body)
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return CreateTaskRequest{}, errors.Wrap(ErrTypeMismatch, "body must be a JSON object")
		}
		return CreateTaskRequest{}, errors.Wrapf(ErrInvalidValue, "decode body: %v", err)
	}
	if raw == nil {
		return CreateTaskRequest{}, errors.Wrap(ErrTypeMismatch, "body must be a JSON object")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return CreateTaskRequest{}, errors.Wrap(ErrInvalidValue, "body has data after the JSON object")
	}

	var req CreateTaskRequest
	for _, key := range createTaskKeys {
		value, ok := raw[key]
		if !ok {
			return CreateTaskRequest{}, errors.Wrap(ErrMissingKey, key)
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return CreateTaskRequest{}, errors.Wrapf(ErrTypeMismatch, "%s must be a string", key)
		}
		if err := json.Unmarshal(value, req.field(key)); err != nil {
			return CreateTaskRequest{}, errors.Wrapf(ErrTypeMismatch, "%s must be a string", key)
		}
	}
	return req, nil
}

// SearchTasksRequest holds the search filters and the page window.
type SearchTasksRequest struct {
	Filter models.TaskFilter
}

// ParseSearchTasksRequest reads the search query string. Empty filter
// values are ignored.
func ParseSearchTasksRequest(q url.Values) (SearchTasksRequest, error) {
	page, err := parsePage(q)
	if err != nil {
		return SearchTasksRequest{}, err
	}
	return SearchTasksRequest{Filter: models.TaskFilter{
		Title:      q.Get("title"),
		Department: q.Get("department"),
		Institute:  q.Get("institute"),
		Type:       q.Get("type"),
		TrialStage: q.Get("trial_stage"),
		Scope:      q.Get("scope"),
		Page:       page,
	}}, nil
}

// ListRecentRequest is the page window of the recent-list operation.
type ListRecentRequest struct {
	Page models.Page
}

func ParseListRecentRequest(q url.Values) (ListRecentRequest, error) {
	page, err := parsePage(q)
	if err != nil {
		return ListRecentRequest{}, err
	}
	return ListRecentRequest{Page: page}, nil
}

func parsePage(q url.Values) (models.Page, error) {
	offset, err := intParam(q, "offset", models.DefaultOffset)
	if err != nil {
		return models.Page{}, err
	}
	limit, err := intParam(q, "limit", models.DefaultLimit)
	if err != nil {
		return models.Page{}, err
	}
	return models.Page{Offset: offset, Limit: limit}, nil
}

// intParam distinguishes text that is not an integer at all (type mismatch)
// from an integer that is negative or does not fit (invalid value).
func intParam(q url.Values, key string, def int) (int, error) {
	if !q.Has(key) {
		return def, nil
	}
	v := q.Get(key)
	n, err := strconv.Atoi(v)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, errors.Wrapf(ErrInvalidValue, "%s out of range: %q", key, v)
		}
		return 0, errors.Wrapf(ErrTypeMismatch, "%s is not an integer: %q", key, v)
	}
	if n < 0 {
		return 0, errors.Wrapf(ErrInvalidValue, "%s must not be negative: %d", key, n)
	}
	return n, nil
}
