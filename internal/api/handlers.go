package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
	"github.com/soaringjerry/clima/internal/utils"
)

const maxSurveyBody = 64 << 10

// POST /api/survey
// Body: flat object of question key -> answer.
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSurveyBody))
	if err := dec.Decode(&raw); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "request.bad_json")
		return
	}
	answers := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			answers[k] = val
		case float64, bool:
			answers[k] = fmt.Sprint(val)
		default:
			writeMessage(w, r, http.StatusBadRequest, "survey.invalid")
			return
		}
	}
	res, err := rt.submissions.Submit(r.Context(), services.SubmissionRequest{
		Answers:   answers,
		IPAddress: clientIP(r),
	})
	if err != nil {
		rt.writeServiceError(w, r, err, "survey.save_failed")
		return
	}
	writeJSON(w, http.StatusCreated, messageBody{
		Success: true,
		Message: utils.T(middleware.LocaleFromContext(r.Context()), "survey.saved"),
		ID:      res.ID,
	})
}

// clientIP strips the port from the address chi's RealIP resolved.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// GET /api/stats
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	out, err := rt.analytics.Stats(r.Context())
	if err != nil {
		rt.writeServiceError(w, r, err, "stats.failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/analytics
func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	out, err := rt.analytics.Analytics(r.Context())
	if err != nil {
		rt.writeServiceError(w, r, err, "stats.failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/{environment,relationship,motivation}-stats?setor=&alojamento=&rancho=&escala=
func (rt *Router) sectionHandler(sec models.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := services.NormalizeFilters(r.URL.Query(), rt.log)
		out, err := rt.analytics.SectionStats(r.Context(), sec, filters)
		if err != nil {
			rt.writeServiceError(w, r, err, "stats.failed")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /api/comments?limit=&setor=...
func (rt *Router) handleComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := rt.commentLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	out, err := rt.analytics.Comments(r.Context(), services.NormalizeFilters(q, rt.log), limit)
	if err != nil {
		rt.writeServiceError(w, r, err, "stats.failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/export and /api/export/pdf
func (rt *Router) reportHandler(variant services.ReportVariant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := rt.analytics.ReportInput(r.Context())
		if err != nil {
			rt.writeServiceError(w, r, err, "export.failed")
			return
		}
		report := services.BuildReport(*in)
		doc, err := services.RenderReportHTML(report, variant)
		if err != nil {
			rt.writeServiceError(w, r, services.NewInternalError("render report", err), "export.failed")
			return
		}
		writeAttachment(w, "text/html; charset=utf-8", services.ReportFilename(report, variant), doc)
	}
}

// GET /api/export/csv?format=wide|long|questions
func (rt *Router) handleCSV(w http.ResponseWriter, r *http.Request) {
	res, err := rt.exports.ExportCSV(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		rt.writeServiceError(w, r, err, "export.failed")
		return
	}
	writeAttachment(w, res.ContentType, res.Filename, res.Data)
}

// GET /api/questions
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	type sectionOut struct {
		Section   models.Section    `json:"section"`
		Questions []models.Question `json:"questions"`
	}
	out := make([]sectionOut, 0, len(models.Sections))
	for _, sec := range models.Sections {
		out = append(out, sectionOut{Section: sec, Questions: models.SectionQuestions(sec)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sections": out,
		"scales": map[models.Scale][]string{
			models.ScaleSatisfaction: services.ScaleLabels(models.ScaleSatisfaction),
			models.ScaleAgreement:    services.ScaleLabels(models.ScaleAgreement),
		},
	})
}

// GET /api/health
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	body := map[string]any{
		"ok":         true,
		"name":       "Clima API",
		"locale":     locale,
		"msg":        utils.T(locale, "health.ok"),
		"commit":     rt.commit,
		"build_time": rt.buildTime,
		"auth":       rt.auth.Enabled(),
	}
	if err := rt.store.Ping(ctx); err != nil {
		rt.log.Warn("health check database ping failed", zap.Error(err))
		body["ok"] = false
		body["msg"] = utils.T(locale, "health.db_unavailable")
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// POST /api/admin/login  {password}
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !rt.auth.Enabled() {
		writeMessage(w, r, http.StatusNotFound, "auth.disabled")
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "request.bad_json")
		return
	}
	res, err := rt.auth.Login(req.Password)
	if err != nil {
		if se, ok := services.AsServiceError(err); ok && se.Code == services.ErrorInvalid {
			writeMessage(w, r, http.StatusBadRequest, "auth.password_required")
			return
		}
		rt.writeServiceError(w, r, err, "auth.failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    utils.T(middleware.LocaleFromContext(r.Context()), "auth.ok"),
		"token":      res.Token,
		"expires_in": int(res.ExpiresIn.Seconds()),
	})
}
