package http

import (
	"encoding/json"
	"net/http"

	"github.com/ignatij/trialtasks/internal/log"
	"github.com/ignatij/trialtasks/pkg/service"
	"github.com/ignatij/trialtasks/pkg/storage"
	"github.com/pkg/errors"
)

// Values of the "message" field.
const (
	MsgCreateSuccess      = "CREATE_SUCCESS"
	MsgSuccess            = "SUCCESS"
	MsgTaskDoesNotExist   = "TASK_DOES_NOT_EXIST"
	MsgTypeError          = "TYPE_ERROR"
	MsgValueError         = "VALUE_ERROR"
	MsgKeyError           = "KEY_ERROR"
	MsgDuplicateNumber    = "DUPLICATE_NUMBER"
	MsgInternalError      = "INTERNAL_ERROR"
	MsgServiceUnavailable = "SERVICE_UNAVAILABLE"
)

type messageResponse struct {
	Message string `json:"message"`
}

type detailResponse struct {
	Message  string      `json:"message"`
	TaskInfo interface{} `json:"task_info"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().Errorf("Failed to write response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeErr maps service and storage errors to the fixed message envelope.
// Unrecognised errors are logged and reported as 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var msg string
	switch {
	case errors.Is(err, storage.ErrNotFound):
		msg = MsgTaskDoesNotExist
	case errors.Is(err, service.ErrTypeMismatch):
		msg = MsgTypeError
	case errors.Is(err, service.ErrInvalidValue), errors.Is(err, storage.ErrValueTooLong):
		msg = MsgValueError
	case errors.Is(err, service.ErrMissingKey):
		msg = MsgKeyError
	case errors.Is(err, storage.ErrDuplicateNumber):
		msg = MsgDuplicateNumber
	default:
		log.GetLogger().Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, MsgInternalError)
		return
	}
	log.GetLogger().Debugf("%s %s rejected: %v", r.Method, r.URL.Path, err)
	writeMessage(w, http.StatusBadRequest, msg)
}
