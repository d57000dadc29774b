package company

import "github.com/gin-gonic/gin"

// CompanyModule implements the app.Module interface for the company domain.
type CompanyModule struct {
	handler *CompanyHandler
	listMW  []gin.HandlerFunc
}

// NewModule creates a new CompanyModule. listMW runs in front of the paged
// list endpoint only, typically a role guard.
// Panics if h is nil.
func NewModule(h *CompanyHandler, listMW ...gin.HandlerFunc) *CompanyModule {
	if h == nil {
		panic("company.NewModule: handler must not be nil")
	}
	return &CompanyModule{handler: h, listMW: listMW}
}

// RegisterRoutes registers company API routes.
func (m *CompanyModule) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/companies")

	list := append(append([]gin.HandlerFunc{}, m.listMW...), m.handler.List)
	g.GET("", list...)
	g.POST("", m.handler.Create)
	g.GET("/collection/:ids", m.handler.GetCollection)
	g.POST("/collection", m.handler.CreateCollection)
	g.GET("/:companyId", m.handler.Get)
	g.PUT("/:companyId", m.handler.Update)
	g.DELETE("/:companyId", m.handler.Delete)
}
