package company

import (
	"github.com/google/uuid"

	"github.com/simp-lee/companyemployees/internal/domain"
)

// CompanyRequest is the input for creating or updating a company.
type CompanyRequest struct {
	Name      string            `json:"name" binding:"required,max=30"`
	Address   string            `json:"address" binding:"required,max=100"`
	Country   string            `json:"country" binding:"required,max=20"`
	Employees []EmployeeRequest `json:"employees" binding:"omitempty,dive"`
}

// EmployeeRequest is an employee nested in a company request.
type EmployeeRequest struct {
	Name     string `json:"name" binding:"required,max=30"`
	Age      int    `json:"age" binding:"required,gte=18"`
	Position string `json:"position" binding:"required,max=20"`
}

// CompanyResponse is the public shape of a company.
type CompanyResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	FullAddress string    `json:"fullAddress"`
}

func (r CompanyRequest) toInput() domain.CompanyInput {
	in := domain.CompanyInput{
		Name:    r.Name,
		Address: r.Address,
		Country: r.Country,
	}
	for _, e := range r.Employees {
		in.Employees = append(in.Employees, domain.EmployeeInput{
			Name:     e.Name,
			Age:      e.Age,
			Position: e.Position,
		})
	}
	return in
}

func toResponse(c domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		FullAddress: c.FullAddress(),
	}
}

func toResponses(companies []domain.Company) []CompanyResponse {
	out := make([]CompanyResponse, len(companies))
	for i, c := range companies {
		out[i] = toResponse(c)
	}
	return out
}
