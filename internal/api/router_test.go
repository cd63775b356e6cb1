package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/services"
	"github.com/soaringjerry/clima/internal/utils"
)

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	cfg.Store = store
	cfg.Logger = zaptest.NewLogger(t)
	srv := httptest.NewServer(NewRouter(cfg).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res
}

func TestSubmitSectionOneOnly(t *testing.T) {
	srv, store := newTestServer(t, Config{})

	res := postJSON(t, srv.URL+"/api/survey", map[string]any{
		"setor_trabalho":       "PAPEM-10",
		"materiais_fornecidos": "Concordo",
		"tempo_servico":        "1 a 5 anos",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var body messageBody
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(1), body.ID)
	assert.Contains(t, body.Message, "sucesso")

	var stats services.StatsResponse
	getJSON(t, srv.URL+"/api/stats", &stats)
	assert.Equal(t, int64(1), stats.TotalResponses)

	all, err := store.ListResponses(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "127.0.0.1", all[0].IPAddress)
	assert.Len(t, all[0].Answers, 3)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	res := postJSON(t, srv.URL+"/api/survey", map[string]any{"salario": "baixo"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	var body messageBody
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "Dados da pesquisa inválidos.", body.Message)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/survey", strings.NewReader("{not json"))
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "en")
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&body))
	assert.Equal(t, "Invalid request body.", body.Message)
}

func TestSectionStatsFilterEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	for _, a := range []map[string]any{
		{"setor_trabalho": "PAPEM-10", "relacionamento_chefia": "Concordo totalmente"},
		{"setor_trabalho": "PAPEM-10", "relacionamento_chefia": "Concordo"},
		{"setor_localizacao": "PAPEM-20", "relacionamento_chefia": "Discordo"},
	} {
		require.Equal(t, http.StatusCreated, postJSON(t, srv.URL+"/api/survey", a).StatusCode)
	}

	var out services.SectionStatsResponse
	res := getJSON(t, srv.URL+"/api/relationship-stats?setor=PAPEM-10&rancho=all", &out)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, services.Filters{services.FilterSetor: "PAPEM-10"}, out.Filters)
	assert.Equal(t, int64(2), out.Summary.TotalResponses)
	var found bool
	for _, q := range out.Questions {
		if q.Question != "relacionamento_chefia" {
			continue
		}
		found = true
		assert.Equal(t, 2, q.Total)
		require.NotNil(t, q.Average)
		assert.InDelta(t, 4.5, *q.Average, 1e-9)
	}
	assert.True(t, found)

	getJSON(t, srv.URL+"/api/relationship-stats?setor=PAPEM-20", &out)
	assert.Equal(t, int64(1), out.Summary.TotalResponses)

	getJSON(t, srv.URL+"/api/relationship-stats?setor=PAPEM-99", &out)
	assert.Equal(t, int64(0), out.Summary.TotalResponses)
	for _, q := range out.Questions {
		assert.Equal(t, 0, q.Total)
	}
}

func TestCommentsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	postJSON(t, srv.URL+"/api/survey", map[string]any{"setor_trabalho": "PAPEM-30", "sugestoes_gerais": "Melhorar o rancho"})
	postJSON(t, srv.URL+"/api/survey", map[string]any{"setor_trabalho": "PAPEM-30", "comentario_ambiente": "   "})

	var out services.CommentsResponse
	getJSON(t, srv.URL+"/api/comments?setor=PAPEM-30", &out)
	require.Len(t, out.Comments, 1)
	assert.Equal(t, "Melhorar o rancho", out.Comments[0].SugestoesGerais)
	assert.Equal(t, "PAPEM-30", out.Comments[0].Setor)
}

func TestExportWithoutResponses(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	for path, prefix := range map[string]string{
		"/api/export":     "relatorio-clima-organizacional-",
		"/api/export/pdf": "relatorio-clima-organizacional-impressao-",
	} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(res.Body)
		_ = res.Body.Close()

		assert.Equal(t, http.StatusOK, res.StatusCode, path)
		assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, res.Header.Get("Content-Disposition"), "attachment; filename="+prefix)
		doc := buf.String()
		assert.Contains(t, doc, "0.0%")
		assert.NotContains(t, doc, "NaN")
		assert.NotContains(t, doc, "Inf")
	}
}

func TestCSVExport(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	postJSON(t, srv.URL+"/api/survey", map[string]any{"setor_trabalho": "PAPEM-40"})

	res, err := http.Get(srv.URL + "/api/export/csv")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Disposition"), "clima-wide-")

	res2, err := http.Get(srv.URL + "/api/export/csv?format=pdf")
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res2.StatusCode)
}

func TestAdminAuthGuardsDashboard(t *testing.T) {
	hash, err := services.HashPassword("s3nha")
	require.NoError(t, err)
	authn, err := middleware.NewAuthenticator("test-secret")
	require.NoError(t, err)
	srv, _ := newTestServer(t, Config{
		Auth:          services.NewAuthService(hash, authn.SignToken, time.Hour),
		Authenticator: authn,
	})

	res := getJSON(t, srv.URL+"/api/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// submissions stay public
	assert.Equal(t, http.StatusCreated, postJSON(t, srv.URL+"/api/survey", map[string]any{"vinculo": "Oficial"}).StatusCode)

	bad := postJSON(t, srv.URL+"/api/admin/login", map[string]string{"password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)

	ok := postJSON(t, srv.URL+"/api/admin/login", map[string]string{"password": "s3nha"})
	require.Equal(t, http.StatusOK, ok.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(ok.Body).Decode(&login))
	require.NotEmpty(t, login.Token)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authed.Body.Close()
	assert.Equal(t, http.StatusOK, authed.StatusCode)
}

func TestLoginFailureMessages(t *testing.T) {
	hash, err := services.HashPassword("s3nha")
	require.NoError(t, err)
	failing := func(string, time.Duration) (string, error) { return "", errors.New("key unavailable") }
	srv, _ := newTestServer(t, Config{Auth: services.NewAuthService(hash, failing, time.Hour)})

	var body messageBody
	res := postJSON(t, srv.URL+"/api/admin/login", map[string]string{"password": "s3nha"})
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, utils.T("pt", "auth.failed"), body.Message)

	res = postJSON(t, srv.URL+"/api/admin/login", map[string]string{"password": " "})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, utils.T("pt", "auth.password_required"), body.Message)
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	res := postJSON(t, srv.URL+"/api/admin/login", map[string]string{"password": "x"})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/stats", nil).StatusCode)
}

func TestHealthAndQuestions(t *testing.T) {
	srv, _ := newTestServer(t, Config{Commit: "abc123"})
	var health map[string]any
	res := getJSON(t, srv.URL+"/api/health", &health)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, health["ok"])
	assert.Equal(t, "abc123", health["commit"])
	assert.NotEmpty(t, res.Header.Get(middleware.RequestIDHeader))

	var catalogue struct {
		Sections []struct {
			Section   string           `json:"section"`
			Questions []map[string]any `json:"questions"`
		} `json:"sections"`
		Scales map[string][]string `json:"scales"`
	}
	res = getJSON(t, srv.URL+"/api/questions", &catalogue)
	assert.Contains(t, res.Header.Get("Cache-Control"), "max-age=300")
	require.Len(t, catalogue.Sections, 4)
	assert.Equal(t, "environment", catalogue.Sections[0].Section)
	assert.Len(t, catalogue.Scales["satisfaction5"], 5)

	res = getJSON(t, srv.URL+"/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
