package company

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/companyemployees/internal/domain"
	"github.com/simp-lee/companyemployees/internal/pkg"
)

const basePath = "/api/v1/companies"

// CompanyHandler handles REST API requests for the company resource.
type CompanyHandler struct {
	svc    domain.CompanyService
	paging pkg.PagingOptions
}

// NewCompanyHandler creates a new CompanyHandler with the given service.
func NewCompanyHandler(svc domain.CompanyService, paging pkg.PagingOptions) *CompanyHandler {
	return &CompanyHandler{svc: svc, paging: paging}
}

// List handles GET /api/v1/companies.
func (h *CompanyHandler) List(c *gin.Context) {
	req, err := pkg.ParsePageRequest(c, h.paging)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := h.svc.ListCompanies(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, &domain.PagedResult[CompanyResponse]{
		Items:    toResponses(result.Items),
		MetaData: result.MetaData,
	})
}

// Get handles GET /api/v1/companies/:companyId.
func (h *CompanyHandler) Get(c *gin.Context) {
	id, err := pkg.ParseIDParam(c, "companyId")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	company, err := h.svc.GetCompany(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toResponse(*company))
}

// Create handles POST /api/v1/companies.
func (h *CompanyHandler) Create(c *gin.Context) {
	var req CompanyRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	company, err := h.svc.CreateCompany(c.Request.Context(), req.toInput())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, basePath+"/"+company.ID.String(), toResponse(*company))
}

// GetCollection handles GET /api/v1/companies/collection/(:ids).
func (h *CompanyHandler) GetCollection(c *gin.Context) {
	ids, err := pkg.ParseIDList(c.Param("ids"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	companies, err := h.svc.GetCompaniesByIDs(c.Request.Context(), ids)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toResponses(companies))
}

// CreateCollection handles POST /api/v1/companies/collection.
func (h *CompanyHandler) CreateCollection(c *gin.Context) {
	var reqs []CompanyRequest
	if !pkg.BindAndValidate(c, &reqs) {
		return
	}

	inputs := make([]domain.CompanyInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = r.toInput()
	}

	companies, err := h.svc.CreateCompanyCollection(c.Request.Context(), inputs)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	ids := make([]uuid.UUID, len(companies))
	for i, company := range companies {
		ids[i] = company.ID
	}
	pkg.Created(c, basePath+"/collection/("+pkg.JoinIDs(ids)+")", toResponses(companies))
}

// Update handles PUT /api/v1/companies/:companyId.
func (h *CompanyHandler) Update(c *gin.Context) {
	id, err := pkg.ParseIDParam(c, "companyId")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req CompanyRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := h.svc.UpdateCompany(c.Request.Context(), id, req.toInput()); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.NoContent(c)
}

// Delete handles DELETE /api/v1/companies/:companyId.
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseIDParam(c, "companyId")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.DeleteCompany(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.NoContent(c)
}
