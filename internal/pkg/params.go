package pkg

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/companyemployees/internal/domain"
)

// ParseIDParam reads the path parameter name as a UUID.
func ParseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.NewAppError(domain.KindValidation, "invalid "+name+": "+raw, nil)
	}
	return id, nil
}

// ParseIDList parses a comma separated list of UUIDs. Surrounding parentheses
// and blanks around each id are ignored, so "(a, b)" and "a,b" are equivalent.
// An empty list yields domain.ErrMissingIDs.
func ParseIDList(raw string) ([]uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	if strings.TrimSpace(raw) == "" {
		return nil, domain.ErrMissingIDs
	}

	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, domain.NewAppError(domain.KindValidation, "invalid id: "+p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// JoinIDs renders ids in the comma separated form ParseIDList accepts.
func JoinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
