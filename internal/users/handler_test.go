package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service, authedUser string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if authedUser != "" {
		router.Use(func(c *gin.Context) {
			c.Set("userId", authedUser)
			c.Next()
		})
	}
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegisterLoginMeFlow(t *testing.T) {
	svc := newTestService(&recordingMailer{})
	router := newTestRouter(svc, "")

	resp := postJSON(t, router, "/api/v1/auth/register", registerRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "senha-segura",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", resp.Code, resp.Body.String())
	}

	loginResp := postJSON(t, router, "/api/v1/auth/login", loginRequest{
		Email:    "maria@example.com",
		Password: "senha-segura",
	})
	if loginResp.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", loginResp.Code, loginResp.Body.String())
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(loginResp.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Token == "" || login.User.ID == "" {
		t.Fatalf("login payload = %+v", login)
	}

	authed := newTestRouter(svc, login.User.ID)
	meResp := httptest.NewRecorder()
	authed.ServeHTTP(meResp, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if meResp.Code != http.StatusOK {
		t.Fatalf("me status = %d", meResp.Code)
	}
	var me struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(meResp.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Email != "maria@example.com" {
		t.Errorf("me email = %q", me.Email)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(&recordingMailer{})
	router := newTestRouter(svc, "")

	resp := postJSON(t, router, "/api/v1/auth/login", loginRequest{
		Email:    "ninguem@example.com",
		Password: "qualquer-senha",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
}

func TestRegisterConflict(t *testing.T) {
	svc := newTestService(&recordingMailer{})
	router := newTestRouter(svc, "")

	body := registerRequest{Name: "Maria", Email: "maria@example.com", Password: "senha-segura"}
	if resp := postJSON(t, router, "/api/v1/auth/register", body); resp.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", resp.Code)
	}
	if resp := postJSON(t, router, "/api/v1/auth/register", body); resp.Code != http.StatusConflict {
		t.Fatalf("second register status = %d, want 409", resp.Code)
	}
}

func TestVerifyEmailEndpoint(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newTestService(mailer)
	router := newTestRouter(svc, "")

	if resp := postJSON(t, router, "/api/v1/auth/register", registerRequest{
		Name: "Maria", Email: "maria@example.com", Password: "senha-segura",
	}); resp.Code != http.StatusCreated {
		t.Fatalf("register status = %d", resp.Code)
	}
	token := svc.mustGet(t, "maria@example.com").VerifyToken

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email?token="+token, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body = %s", resp.Code, resp.Body.String())
	}

	bad := httptest.NewRecorder()
	router.ServeHTTP(bad, httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email?token=falso", nil))
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("bad token status = %d, want 400", bad.Code)
	}
}

func TestForgotPasswordIsNeutral(t *testing.T) {
	svc := newTestService(&recordingMailer{})
	router := newTestRouter(svc, "")

	resp := postJSON(t, router, "/api/v1/auth/forgot-password", emailRequest{Email: "ninguem@example.com"})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want neutral 200", resp.Code)
	}
}
