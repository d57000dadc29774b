package employee

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/companyemployees/internal/domain"
	"github.com/simp-lee/companyemployees/internal/pkg"
)

// EmployeeHandler handles REST API requests for employees nested under a company.
type EmployeeHandler struct {
	svc    domain.EmployeeService
	paging pkg.PagingOptions
}

// NewEmployeeHandler creates a new EmployeeHandler with the given service.
func NewEmployeeHandler(svc domain.EmployeeService, paging pkg.PagingOptions) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, paging: paging}
}

// List handles GET /api/v1/companies/:companyId/employees.
func (h *EmployeeHandler) List(c *gin.Context) {
	companyID, err := pkg.ParseIDParam(c, "companyId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	req, err := pkg.ParsePageRequest(c, h.paging)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := h.svc.ListEmployees(c.Request.Context(), companyID, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	items := make([]EmployeeResponse, len(result.Items))
	for i, e := range result.Items {
		items[i] = toResponse(e)
	}
	pkg.List(c, &domain.PagedResult[EmployeeResponse]{Items: items, MetaData: result.MetaData})
}

// Get handles GET /api/v1/companies/:companyId/employees/:id.
func (h *EmployeeHandler) Get(c *gin.Context) {
	companyID, id, ok := parseIDs(c)
	if !ok {
		return
	}

	employee, err := h.svc.GetEmployee(c.Request.Context(), companyID, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toResponse(*employee))
}

// Create handles POST /api/v1/companies/:companyId/employees.
func (h *EmployeeHandler) Create(c *gin.Context) {
	companyID, err := pkg.ParseIDParam(c, "companyId")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req EmployeeRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	employee, err := h.svc.CreateEmployee(c.Request.Context(), companyID, req.toInput())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	location := "/api/v1/companies/" + companyID.String() + "/employees/" + employee.ID.String()
	pkg.Created(c, location, toResponse(*employee))
}

// Update handles PUT /api/v1/companies/:companyId/employees/:id.
func (h *EmployeeHandler) Update(c *gin.Context) {
	companyID, id, ok := parseIDs(c)
	if !ok {
		return
	}

	var req EmployeeRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := h.svc.UpdateEmployee(c.Request.Context(), companyID, id, req.toInput()); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.NoContent(c)
}

// Delete handles DELETE /api/v1/companies/:companyId/employees/:id.
func (h *EmployeeHandler) Delete(c *gin.Context) {
	companyID, id, ok := parseIDs(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteEmployee(c.Request.Context(), companyID, id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.NoContent(c)
}

// parseIDs reads the company and employee ids, writing a 400 on failure.
func parseIDs(c *gin.Context) (companyID, id uuid.UUID, ok bool) {
	companyID, err := pkg.ParseIDParam(c, "companyId")
	if err != nil {
		pkg.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	id, err = pkg.ParseIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return companyID, id, true
}
