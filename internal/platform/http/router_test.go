package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acolhimento-gf/visitantes-api/internal/business/accounts"
	"github.com/acolhimento-gf/visitantes-api/internal/business/visitors"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/metrics"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/viacep"
	"github.com/acolhimento-gf/visitantes-api/internal/repository/memstore"
	"github.com/acolhimento-gf/visitantes-api/internal/session"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

type testServer struct {
	engine    *gin.Engine
	issuer    *session.Issuer
	accounts  *accounts.Service
	users     *memstore.UserStore
	adminTok  string
	secTok    string
	adminID   string
	healthErr error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{issuer: session.NewIssuer("router-test-secret", 0)}
	ts.users = memstore.NewUserStore()
	ts.accounts = accounts.NewService(ts.users, ts.issuer, nil)
	cep := viacep.New(nil, viacep.Config{Mock: true})
	m := metrics.New()
	visitorSvc := visitors.NewService(memstore.NewVisitorStore(), memstore.NewStatsStore(), memstore.NewRunStore(), cep, visitors.Options{Metrics: m})

	ts.engine = NewRouter(RouterConfig{
		Accounts: ts.accounts,
		Visitors: visitorSvc,
		Issuer:   ts.issuer,
		Metrics:  m,
		Health:   func(context.Context) error { return ts.healthErr },
	})

	for _, u := range []model.User{
		{ID: "admin-1", Nome: "Admin", Email: "admin@igreja.org", Role: string(session.RoleAdmin), PasswordHash: "x"},
		{ID: "sec-1", Nome: "Secretária", Email: "secretaria@igreja.org", Role: string(session.RoleSecretary), PasswordHash: "x"},
	} {
		require.NoError(t, ts.users.Create(context.Background(), u))
	}
	admin, err := ts.issuer.Issue("admin-1", "Admin", session.RoleAdmin)
	require.NoError(t, err)
	sec, err := ts.issuer.Issue("sec-1", "Secretária", session.RoleSecretary)
	require.NoError(t, err)
	ts.adminTok, ts.secTok, ts.adminID = admin.Token, sec.Token, admin.UserID
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/healthz", "", nil).Code)

	ts.healthErr = errors.New("firestore down")
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(t, http.MethodGet, "/healthz", "", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/healthz", "", nil)
	w := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "visitantes_http_requests_total")
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/visitantes", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/visitantes", "garbage", nil).Code)
}

func TestSecretaryCapabilities(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/visitantes", ts.secTok, map[string]interface{}{
		"nome":     "Ana",
		"telefone": "11987654321",
		"endereco": map[string]string{"cep": "13010-000"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Visitor](t, w)
	assert.Equal(t, "Campinas", created.Endereco.Cidade)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/visitantes", ts.secTok, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/cep/13010000", ts.secTok, nil).Code)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/visitantes/export"},
		{http.MethodDelete, "/api/visitantes/" + created.ID},
		{http.MethodGet, "/api/usuarios"},
		{http.MethodPost, "/api/enderecos/backfill"},
	} {
		w := ts.do(t, tc.method, tc.path, ts.secTok, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, tc.path)
	}
}

func TestLoginAndMe(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.accounts.CreateUser(context.Background(), accounts.UserInput{
		Nome: "Pastor", Email: "pastor@igreja.org", Role: "admin", Password: "segredo1",
	})
	require.NoError(t, err)

	w := ts.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "pastor@igreja.org", "password": "errado"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "pastor@igreja.org", "password": "segredo1"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[accounts.LoginResult](t, w)
	assert.Equal(t, "admin", res.Role)
	assert.Equal(t, "/dashboard", res.Landing)

	w = ts.do(t, http.MethodGet, "/api/me", res.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]interface{}](t, w)
	assert.Equal(t, "Pastor", me["nome"])
	assert.Len(t, me["capabilities"], 9)
}

func TestVisitorLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/visitantes", ts.adminTok, map[string]string{"nome": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/visitantes", ts.adminTok, map[string]string{"nome": "Bruno", "sexo": "Masculino", "gf_responsavel": "GF Norte"})
	require.Equal(t, http.StatusCreated, w.Code)
	v := decode[model.Visitor](t, w)

	w = ts.do(t, http.MethodPatch, "/api/visitantes/"+v.ID+"/status", ts.adminTok, map[string]string{"status": "foo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodPatch, "/api/visitantes/"+v.ID+"/status", ts.adminTok, map[string]string{"status": model.StatusContacted})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/visitantes?status="+strings.ReplaceAll(model.StatusContacted, " ", "%20"), ts.adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Items []model.Visitor `json:"items"`
		Total int             `json:"total"`
	}](t, w)
	assert.Equal(t, 1, list.Total)

	w = ts.do(t, http.MethodGet, "/api/dashboard", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	bundle := decode[model.StatsBundle](t, w)
	assert.Equal(t, 1, bundle.Total)
	require.Len(t, bundle.ByLeader, 1)
	assert.Equal(t, 100.0, bundle.ByLeader[0].Percent)

	w = ts.do(t, http.MethodGet, "/api/visitantes/export", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Bruno")

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/visitantes/"+v.ID, ts.adminTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/visitantes/"+v.ID, ts.adminTok, nil).Code)
}

func TestAggregateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/stats/aggregate", ts.adminTok, `{"nome":"not a list"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/stats/aggregate", ts.adminTok, `[{"sexo":"Feminino"},{"sexo":""}]`)
	require.Equal(t, http.StatusOK, w.Code)
	bundle := decode[model.StatsBundle](t, w)
	assert.Equal(t, 2, bundle.Total)
	assert.Equal(t, []model.CategoryCount{{Label: "Feminino", Count: 1}, {Label: "Cadastro Incompleto", Count: 1}}, bundle.ByGender)
}

func TestSnapshotEndpoints(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/dashboard/snapshot", ts.adminTok, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/dashboard/snapshot", ts.adminTok, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/dashboard/snapshot", ts.adminTok, nil).Code)
}

func TestUserManagement(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"nome": "Sec", "email": "sec@igreja.org", "role": "secretaria", "password": "123456"}
	w := ts.do(t, http.MethodPost, "/api/usuarios", ts.adminTok, body)
	require.Equal(t, http.StatusCreated, w.Code)
	u := decode[map[string]interface{}](t, w)
	assert.NotContains(t, u, "password_hash")

	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/api/usuarios", ts.adminTok, body).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodDelete, "/api/usuarios/"+ts.adminID, ts.adminTok, nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/usuarios/"+u["id"].(string), ts.adminTok, nil).Code)
}

func TestTokenOfDeletedUserIsRejected(t *testing.T) {
	ts := newTestServer(t)

	created, err := ts.accounts.CreateUser(context.Background(), accounts.UserInput{
		Nome: "Sec", Email: "sec@igreja.org", Role: "secretaria", Password: "123456",
	})
	require.NoError(t, err)
	sess, err := ts.issuer.Issue(created.ID, created.Nome, session.RoleSecretary)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/visitantes", sess.Token, nil).Code)

	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/usuarios/"+created.ID, ts.adminTok, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/visitantes", sess.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/me", sess.Token, nil).Code)
}

func TestDemotedAdminLosesCapabilities(t *testing.T) {
	ts := newTestServer(t)

	created, err := ts.accounts.CreateUser(context.Background(), accounts.UserInput{
		Nome: "Pastor", Email: "pastor@igreja.org", Role: "admin", Password: "segredo1",
	})
	require.NoError(t, err)
	sess, err := ts.issuer.Issue(created.ID, created.Nome, session.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/usuarios", sess.Token, nil).Code)

	_, err = ts.accounts.UpdateUser(context.Background(), created.ID, accounts.UserInput{
		Nome: "Pastor", Email: "pastor@igreja.org", Role: "secretaria",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/api/usuarios", sess.Token, nil).Code)
}

func TestCEPErrors(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/cep/123", ts.adminTok, nil).Code)
}

func TestBackfillEndpoints(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/enderecos/backfill", ts.adminTok, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	runID := decode[map[string]string](t, w)["runId"]
	require.NotEmpty(t, runID)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/enderecos/runs", ts.adminTok, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/enderecos/runs/"+runID, ts.adminTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/enderecos/runs/nope", ts.adminTok, nil).Code)
	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/api/enderecos/runs/nope/cancel", ts.adminTok, nil).Code)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{viacep.ErrCircuitOpen, http.StatusBadGateway},
		{visitors.ErrBackfillRunning, http.StatusConflict},
		{accounts.ErrEmailTaken, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
