package service

import (
	"context"
	"time"

	"github.com/ignatij/trialtasks/pkg/models"
	"github.com/ignatij/trialtasks/pkg/storage"
	"github.com/pkg/errors"
)

// Logger defines the logging interface for TaskService
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// RecentWindow is how far back ListRecentlyUpdated looks.
const RecentWindow = 7 * 24 * time.Hour

// SearchResult is the search-tasks response body. Count is the size of this
// page, not the number of matching tasks.
type SearchResult struct {
	Count int                  `json:"count"`
	Data  []models.TaskSummary `json:"data"`
}

// RecentResult is the recent-list response body.
type RecentResult struct {
	Data []models.TaskSummary `json:"data"`
}

// TaskService implements the task operations on top of a Store.
type TaskService struct {
	store  storage.Store
	logger Logger
}

func NewTaskService(store storage.Store, logger Logger) *TaskService {
	return &TaskService{
		store:  store,
		logger: logger,
	}
}

// Ping reports whether the underlying store is reachable.
func (s *TaskService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CreateTask inserts one fresh row in every lookup table and a task pointing
// at them, all in one transaction.
func (s *TaskService) CreateTask(ctx context.Context, req CreateTaskRequest) (id int64, err error) {
	txStore, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			id = 0
			err = errors.Wrap(commitErr, "commit task")
		}
	}()

	task := models.Task{
		Number:         req.Number,
		Title:          req.Title,
		Duration:       req.Duration,
		NumberOfTarget: req.NumberOfTarget,
	}
	for _, kind := range models.LookupKinds {
		lookupID, err := txStore.Lookups(kind).Create(ctx, req.LookupName(kind))
		if err != nil {
			return 0, err
		}
		task.SetLookupID(kind, lookupID)
	}

	id, err = txStore.Tasks().Create(ctx, task)
	if err != nil {
		return 0, err
	}
	s.logger.Infof("Created task '%s' with ID %d", req.Number, id)
	return id, nil
}

func (s *TaskService) SearchTasks(ctx context.Context, req SearchTasksRequest) (SearchResult, error) {
	records, err := s.store.Tasks().Search(ctx, req.Filter)
	if err != nil {
		return SearchResult{}, err
	}
	data := models.Summaries(records)
	return SearchResult{Count: len(data), Data: data}, nil
}

// GetTaskDetail returns storage.ErrNotFound for unknown or non-positive ids.
func (s *TaskService) GetTaskDetail(ctx context.Context, id int64) (models.TaskDetail, error) {
	if id <= 0 {
		return models.TaskDetail{}, storage.ErrNotFound
	}
	rec, err := s.store.Tasks().Get(ctx, id)
	if err != nil {
		return models.TaskDetail{}, err
	}
	return rec.Detail(), nil
}

// ListRecentlyUpdated returns tasks whose updated_at lies within the last
// RecentWindow, bounds included. The window is measured on the store's clock.
func (s *TaskService) ListRecentlyUpdated(ctx context.Context, req ListRecentRequest) (RecentResult, error) {
	records, err := s.store.Tasks().ListUpdatedWithin(ctx, RecentWindow, req.Page)
	if err != nil {
		return RecentResult{}, err
	}
	return RecentResult{Data: models.Summaries(records)}, nil
}

// ListLookups returns rows of one lookup table, optionally restricted to an
// exact name.
func (s *TaskService) ListLookups(ctx context.Context, kind models.LookupKind, name string, page models.Page) ([]models.Lookup, error) {
	if !kind.Valid() {
		return nil, errors.Wrapf(ErrInvalidValue, "unknown lookup kind %q", kind)
	}
	return s.store.Lookups(kind).List(ctx, name, page)
}
