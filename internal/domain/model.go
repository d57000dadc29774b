package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate assigns a random ID when none was set by the caller.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// requireText checks that the trimmed value is present and at most maxLen
// characters long.
func requireText(value string, maxLen int, missing, tooLong string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return NewAppError(KindValidation, missing, nil)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return NewAppError(KindValidation, tooLong, nil)
	}
	return nil
}

// Age filter sentinels. A request whose bounds equal these values has no age
// filter; the zero value of MaxAge is not a sentinel.
const (
	MinAgeUnbounded = 0
	MaxAgeUnbounded = math.MaxInt32
)

// PageRequest holds paging and filtering parameters for list queries.
// PageNumber is zero-based. It is built once per request and not mutated.
type PageRequest struct {
	PageNumber int
	PageSize   int
	MinAge     int
	MaxAge     int
	SearchTerm string
}

// ValidAgeRange reports whether MinAge <= MaxAge.
func (r PageRequest) ValidAgeRange() bool {
	return r.MinAge <= r.MaxAge
}

// HasAgeFilter reports whether either age bound differs from its sentinel.
func (r PageRequest) HasAgeFilter() bool {
	return r.MinAge != MinAgeUnbounded || r.MaxAge != MaxAgeUnbounded
}

// MetaData describes where a page sits inside the full candidate set.
type MetaData struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalCount  int64 `json:"totalCount"`
	HasPrevious bool  `json:"hasPrevious"`
	HasNext     bool  `json:"hasNext"`
}

// PagedResult is one page of items plus the metadata of the query that produced it.
type PagedResult[T any] struct {
	Items    []T      `json:"items"`
	MetaData MetaData `json:"metaData"`
}
