package employee

import (
	"github.com/google/uuid"

	"github.com/simp-lee/companyemployees/internal/domain"
)

// EmployeeRequest is the input for creating or updating an employee.
type EmployeeRequest struct {
	Name     string `json:"name" binding:"required,max=30"`
	Age      int    `json:"age" binding:"required,gte=18"`
	Position string `json:"position" binding:"required,max=20"`
}

// EmployeeResponse is the public shape of an employee.
type EmployeeResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Age      int       `json:"age"`
	Position string    `json:"position"`
}

func (r EmployeeRequest) toInput() domain.EmployeeInput {
	return domain.EmployeeInput{Name: r.Name, Age: r.Age, Position: r.Position}
}

func toResponse(e domain.Employee) EmployeeResponse {
	return EmployeeResponse{ID: e.ID, Name: e.Name, Age: e.Age, Position: e.Position}
}
