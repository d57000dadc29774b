package employee

import "github.com/gin-gonic/gin"

// EmployeeModule implements the app.Module interface for employees.
type EmployeeModule struct {
	handler *EmployeeHandler
	listMW  []gin.HandlerFunc
}

// NewModule creates a new EmployeeModule. listMW runs in front of the paged
// list endpoint only, typically the response cache.
// Panics if h is nil.
func NewModule(h *EmployeeHandler, listMW ...gin.HandlerFunc) *EmployeeModule {
	if h == nil {
		panic("employee.NewModule: handler must not be nil")
	}
	return &EmployeeModule{handler: h, listMW: listMW}
}

// RegisterRoutes registers employee API routes below their company.
func (m *EmployeeModule) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/companies/:companyId/employees")

	list := append(append([]gin.HandlerFunc{}, m.listMW...), m.handler.List)
	g.GET("", list...)
	g.POST("", m.handler.Create)
	g.GET("/:id", m.handler.Get)
	g.PUT("/:id", m.handler.Update)
	g.DELETE("/:id", m.handler.Delete)
}
