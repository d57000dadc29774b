package employee

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/companyemployees/internal/pkg"
)

func TestEmployeeModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	NewModule(NewEmployeeHandler(nil, pkg.DefaultPagingOptions())).RegisterRoutes(r.Group("/api/v1"))

	expected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/companies/:companyId/employees"},
		{http.MethodPost, "/api/v1/companies/:companyId/employees"},
		{http.MethodGet, "/api/v1/companies/:companyId/employees/:id"},
		{http.MethodPut, "/api/v1/companies/:companyId/employees/:id"},
		{http.MethodDelete, "/api/v1/companies/:companyId/employees/:id"},
	}

	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+":"+ri.Path] = true
	}
	for _, exp := range expected {
		if !registered[exp.method+":"+exp.path] {
			t.Errorf("expected route %s %s to be registered", exp.method, exp.path)
		}
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewModule() expected panic for nil handler, got none")
		}
	}()

	_ = NewModule(nil)
}
