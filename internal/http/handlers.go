package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ignatij/trialtasks/internal/log"
	"github.com/ignatij/trialtasks/pkg/service"
	"github.com/ignatij/trialtasks/pkg/storage"
)

func HealthHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			log.GetLogger().Errorf("Health check failed: %v", err)
			writeMessage(w, http.StatusServiceUnavailable, MsgServiceUnavailable)
			return
		}
		fmt.Fprintf(w, "trialtasks server is running")
	}
}

func CreateTaskHandler(svc *service.TaskService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := service.ParseCreateTaskRequest(r.Body)
		if err != nil {
			writeErr(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if _, err := svc.CreateTask(ctx, req); err != nil {
			writeErr(w, r, err)
			return
		}
		writeMessage(w, http.StatusCreated, MsgCreateSuccess)
	}
}

func SearchTasksHandler(svc *service.TaskService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := service.ParseSearchTasksRequest(r.URL.Query())
		if err != nil {
			writeErr(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		result, err := svc.SearchTasks(ctx, req)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func TaskDetailHandler(svc *service.TaskService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "task_id"), 10, 64)
		if err != nil {
			// digits only, so the id is simply too large to exist
			writeErr(w, r, storage.ErrNotFound)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		detail, err := svc.GetTaskDetail(ctx, id)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detailResponse{Message: MsgSuccess, TaskInfo: detail})
	}
}

func ListRecentTasksHandler(svc *service.TaskService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := service.ParseListRecentRequest(r.URL.Query())
		if err != nil {
			writeErr(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		result, err := svc.ListRecentlyUpdated(ctx, req)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
