package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/companyemployees/internal/domain"
	"github.com/simp-lee/companyemployees/internal/pkg"
)

// setupAPIRouter wires the auth module over SQLite and a real token issuer.
func setupAPIRouter(t *testing.T) (*gin.Engine, *pkg.JWT) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := pkg.NewJWT(pkg.JWTOptions{
		Secret:   "test-secret-test-secret-test-secret",
		Issuer:   "CompanyEmployeesAPI",
		Audience: "http://localhost:8080",
		Expiry:   time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWT: %v", err)
	}
	t.Cleanup(tokens.Close)

	svc := NewService(tokens, NewUserRepository(setupTestDB(t)))
	r := gin.New()
	NewModule(NewHandler(svc)).RegisterRoutes(r.Group("/api/v1"))
	return r, tokens
}

func postJSON(r http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const registerBody = `{"firstName":"Jane","lastName":"Doe","userName":"jdoe","password":"Password1000",
	"email":"jane@example.com","phoneNumber":"555-1234","roles":["Manager"]}`

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	r, tokens := setupAPIRouter(t)

	w := postJSON(r, "/api/v1/authentication", registerBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "Password1000") || strings.Contains(w.Body.String(), "$2a$") {
		t.Fatal("register response must not leak the password or its hash")
	}

	w = postJSON(r, "/api/v1/authentication/login", `{"userName":"jdoe","password":"Password1000"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data TokenResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.AccessToken == "" || resp.Data.ExpiresAt.IsZero() {
		t.Fatalf("unexpected token response %+v", resp.Data)
	}

	claims, err := tokens.Parse(resp.Data.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserName != "jdoe" || !claims.HasRole(domain.RoleManager) {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	r, _ := setupAPIRouter(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"short password", `{"userName":"u","password":"abc1","email":"u@example.com"}`, "password"},
		{"password without digit", `{"userName":"u","password":"abcdefghijk","email":"u@example.com"}`, "password"},
		{"bad email", `{"userName":"u","password":"Password1000","email":"nope"}`, "email"},
		{"missing user name", `{"password":"Password1000","email":"u@example.com"}`, "userName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/v1/authentication", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var resp pkg.ValidationErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if _, ok := resp.Errors[tt.field]; !ok {
				t.Errorf("expected error for %q, got %v", tt.field, resp.Errors)
			}
		})
	}

	w := postJSON(r, "/api/v1/authentication",
		`{"userName":"u","password":"Password1000","email":"u@example.com","roles":["Wizard"]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown role: expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	r, _ := setupAPIRouter(t)

	if w := postJSON(r, "/api/v1/authentication", registerBody); w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}
	if w := postJSON(r, "/api/v1/authentication", registerBody); w.Code != http.StatusConflict {
		t.Errorf("duplicate register: expected 409, got %d", w.Code)
	}
}

func TestAuthHandler_LoginUnauthorized(t *testing.T) {
	r, _ := setupAPIRouter(t)
	postJSON(r, "/api/v1/authentication", registerBody)

	w := postJSON(r, "/api/v1/authentication/login", `{"userName":"jdoe","password":"WrongPassword1"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	w = postJSON(r, "/api/v1/authentication/login", `{"userName":"jdoe"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing password: expected 400, got %d", w.Code)
	}
}
