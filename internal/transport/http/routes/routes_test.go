package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/config"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/infra/security"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository/kv"
	httproutes "github.com/Jyo1001/sndp-loan-portal-demo/internal/transport/http/routes"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/usecase"
)

type staticLoader struct {
	records []domain.UserRecord
}

func (l *staticLoader) Load(context.Context) ([]domain.UserRecord, error) {
	return l.records, nil
}

func newTestEngine(t *testing.T) (*gin.Engine, *usecase.OTPService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := security.NewSHA256Hasher()
	storage := kv.NewMemoryStorage()
	loader := &staticLoader{records: []domain.UserRecord{
		{
			Username:     "alice",
			Salt:         "ab12",
			PasswordHash: hasher.Digest("ab12", "correctpw"),
			Role:         domain.RoleMember,
			Branch:       "north",
		},
		{
			Username:     "victor",
			Salt:         "cd34",
			PasswordHash: hasher.Digest("cd34", "managerpw"),
			Role:         domain.RoleManager,
			Branch:       "central",
		},
	}}

	credentials := usecase.NewCredentialStore(loader, storage, nil)
	otp := usecase.NewOTPService(storage, nil)
	sessions := usecase.NewSessionService(storage, 0, nil)
	audit := usecase.NewAuditService(storage, 0, nil)
	auth := usecase.NewAuthService(credentials, hasher, otp, sessions, audit, nil)

	tokens, err := security.NewSessionTokenManager("test-secret", "portal-test", 0)
	if err != nil {
		t.Fatalf("init token manager: %v", err)
	}

	engine := httproutes.Register(httproutes.Dependencies{
		Config: &config.AppConfig{App: config.AppSettings{Env: "development"}},
		Tokens: tokens,
		Services: httproutes.ServiceSet{
			Auth:        auth,
			Audit:       audit,
			Credentials: credentials,
		},
	})

	return engine, otp
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func loginAs(t *testing.T, engine *gin.Engine, username, password, role string) string {
	t.Helper()

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": password,
		"role":     role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected login 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a session token")
	}
	return resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestLoginAndCurrentSession(t *testing.T) {
	engine, _ := newTestEngine(t)

	token := loginAs(t, engine, "alice", "correctpw", "member")

	w := doJSON(t, engine, http.MethodGet, "/api/v1/session/current", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var session struct {
		Username string `json:"username"`
		Role     string `json:"role"`
		Branch   string `json:"branch"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Username != "alice" || session.Role != "member" || session.Branch != "north" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestLoginFailures(t *testing.T) {
	engine, _ := newTestEngine(t)

	cases := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"wrong password", gin.H{"username": "alice", "password": "wrongpw"}, http.StatusUnauthorized},
		{"unknown user", gin.H{"username": "mallory", "password": "x"}, http.StatusUnauthorized},
		{"role mismatch", gin.H{"username": "alice", "password": "correctpw", "role": "manager"}, http.StatusForbidden},
		{"missing fields", gin.H{"username": "alice"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "", tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestLoginDistinguishesUnknownUserFromBadPassword(t *testing.T) {
	engine, _ := newTestEngine(t)

	unknown := doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "mallory", "password": "x"})
	wrong := doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "wrongpw"})

	var unknownResp, wrongResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(unknown.Body.Bytes(), &unknownResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if err := json.Unmarshal(wrong.Body.Bytes(), &wrongResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if unknownResp.Error == wrongResp.Error {
		t.Fatalf("expected distinct messages, both were %q", unknownResp.Error)
	}
}

func TestSessionGuard(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/session/current", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/v1/session/current", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a garbage token, got %d", w.Code)
	}
}

func TestTokenForReplacedSessionIsRejected(t *testing.T) {
	engine, _ := newTestEngine(t)

	aliceToken := loginAs(t, engine, "alice", "correctpw", "")
	// Victor's login takes over the single local session slot.
	loginAs(t, engine, "victor", "managerpw", "")

	w := doJSON(t, engine, http.MethodGet, "/api/v1/session/current", aliceToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected alice's stale token rejected, got %d", w.Code)
	}
}

func TestLogout(t *testing.T) {
	engine, _ := newTestEngine(t)

	token := loginAs(t, engine, "alice", "correctpw", "")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, http.MethodGet, "/api/v1/session/current", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestResetFlowOverHTTP(t *testing.T) {
	engine, otp := newTestEngine(t)
	otp.WithCodeGenerator(func() (string, error) { return "123456", nil })

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/reset/request", "", gin.H{"username": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Development mode surfaces the code in the response.
	var resp struct {
		DevCode *string `json:"dev_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DevCode == nil || *resp.DevCode != "123456" {
		t.Fatalf("expected dev_code in development mode, got %+v", resp.DevCode)
	}

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/reset/confirm", "", gin.H{
		"username":     "alice",
		"code":         "654321",
		"new_password": "newpw",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong code, got %d", w.Code)
	}

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/reset/confirm", "", gin.H{
		"username":     "alice",
		"code":         "123456",
		"new_password": "newpw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The override takes effect for subsequent logins.
	loginAs(t, engine, "alice", "newpw", "")

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "correctpw"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected the old password rejected, got %d", w.Code)
	}
}

func TestResetWithoutRequest(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/reset/confirm", "", gin.H{
		"username":     "alice",
		"code":         "123456",
		"new_password": "newpw",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 with no code outstanding, got %d", w.Code)
	}
}

func TestClearOverridesRevertsToCatalog(t *testing.T) {
	engine, otp := newTestEngine(t)
	otp.WithCodeGenerator(func() (string, error) { return "123456", nil })

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/reset/request", "", gin.H{"username": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/reset/confirm", "", gin.H{
		"username":     "alice",
		"code":         "123456",
		"new_password": "newpw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	managerToken := loginAs(t, engine, "victor", "managerpw", "manager")
	w = doJSON(t, engine, http.MethodDelete, "/api/v1/admin/overrides", managerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Removed int `json:"removed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Removed != 1 {
		t.Fatalf("expected 1 override removed, got %d", resp.Removed)
	}

	// Catalog credentials apply again.
	loginAs(t, engine, "alice", "correctpw", "")
}

func TestAuditTrailRequiresManager(t *testing.T) {
	engine, _ := newTestEngine(t)

	memberToken := loginAs(t, engine, "alice", "correctpw", "")
	w := doJSON(t, engine, http.MethodGet, "/api/v1/audit", memberToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a member, got %d", w.Code)
	}

	managerToken := loginAs(t, engine, "victor", "managerpw", "manager")
	w = doJSON(t, engine, http.MethodGet, "/api/v1/audit", managerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a manager, got %d: %s", w.Code, w.Body.String())
	}

	var trail struct {
		Count   int `json:"count"`
		Entries []struct {
			Actor  string `json:"actor"`
			Action string `json:"action"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &trail); err != nil {
		t.Fatalf("decode trail: %v", err)
	}
	if trail.Count < 2 {
		t.Fatalf("expected at least the two logins in the trail, got %d", trail.Count)
	}
	last := trail.Entries[len(trail.Entries)-1]
	if last.Actor != "victor" || last.Action != "login" {
		t.Fatalf("unexpected newest entry: %+v", last)
	}
}
