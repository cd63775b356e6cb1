package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/services"
	"github.com/soaringjerry/clima/internal/utils"
)

type messageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, key string) {
	writeJSON(w, status, messageBody{Success: status < 400, Message: utils.T(middleware.LocaleFromContext(r.Context()), key)})
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeServiceError maps a service failure onto a status and a localized
// message. fallbackKey names the message used for internal failures, whose
// details are only logged.
func (rt *Router) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallbackKey string) {
	status, key := http.StatusInternalServerError, fallbackKey
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			status, key = http.StatusBadRequest, "survey.invalid"
			if errors.Is(err, services.ErrEmptySubmission) {
				key = "survey.empty"
			}
		case services.ErrorUnauthorized:
			status, key = http.StatusUnauthorized, "auth.invalid"
		case services.ErrorNotFound:
			status, key = http.StatusNotFound, "request.not_found"
		}
	}
	fields := []zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
	}
	if status >= http.StatusInternalServerError {
		rt.log.Error("request failed", fields...)
	} else {
		rt.log.Debug("request rejected", fields...)
	}
	writeMessage(w, r, status, key)
}

func (rt *Router) handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, r, http.StatusUnauthorized, "auth.required")
}

func (rt *Router) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, r, http.StatusNotFound, "request.not_found")
}
