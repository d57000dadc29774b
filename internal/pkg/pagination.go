package pkg

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/companyemployees/internal/domain"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50

	// PaginationHeader carries the JSON-encoded MetaData of a paged response.
	PaginationHeader = "X-Pagination"
)

// PagingOptions bounds the page size accepted from callers.
type PagingOptions struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPagingOptions returns the built-in page size policy (10 per page, at most 50).
func DefaultPagingOptions() PagingOptions {
	return PagingOptions{DefaultPageSize: defaultPageSize, MaxPageSize: maxPageSize}
}

func (o PagingOptions) effective() PagingOptions {
	if o.MaxPageSize < 1 {
		o.MaxPageSize = maxPageSize
	}
	if o.DefaultPageSize < 1 {
		o.DefaultPageSize = defaultPageSize
	}
	if o.DefaultPageSize > o.MaxPageSize {
		o.DefaultPageSize = o.MaxPageSize
	}
	return o
}

// ParsePageRequest extracts paging and filter parameters from query params.
//
// Missing parameters take their defaults. Malformed integers and negative ages
// are validation errors; an oversized pageSize is clamped, not rejected. The
// age range itself (minAge <= maxAge) is left to the service.
func ParsePageRequest(c *gin.Context, opts PagingOptions) (domain.PageRequest, error) {
	opts = opts.effective()

	pageNumber, err := queryInt(c, "pageNumber", 0)
	if err != nil {
		return domain.PageRequest{}, err
	}
	pageSize, err := queryInt(c, "pageSize", opts.DefaultPageSize)
	if err != nil {
		return domain.PageRequest{}, err
	}
	minAge, err := queryInt(c, "minAge", domain.MinAgeUnbounded)
	if err != nil {
		return domain.PageRequest{}, err
	}
	maxAge, err := queryInt(c, "maxAge", domain.MaxAgeUnbounded)
	if err != nil {
		return domain.PageRequest{}, err
	}
	if minAge < 0 || maxAge < 0 {
		return domain.PageRequest{}, domain.NewAppError(domain.KindValidation, "age bounds must not be negative", nil)
	}

	req := domain.PageRequest{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		MinAge:     minAge,
		MaxAge:     maxAge,
		SearchTerm: strings.TrimSpace(c.Query("searchTerm")),
	}
	return NormalizePageRequest(req, opts), nil
}

// NormalizePageRequest applies the page number floor and the page size default
// and ceiling. Filter fields are returned unchanged.
func NormalizePageRequest(req domain.PageRequest, opts PagingOptions) domain.PageRequest {
	opts = opts.effective()

	if req.PageNumber < 0 {
		req.PageNumber = 0
	}
	if req.PageSize < 1 {
		req.PageSize = opts.DefaultPageSize
	}
	if req.PageSize > opts.MaxPageSize {
		req.PageSize = opts.MaxPageSize
	}
	return req
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewAppError(domain.KindValidation, key+" must be an integer", err)
	}
	return v, nil
}

// Offset returns the number of rows to skip for req, saturating instead of overflowing.
func Offset(req domain.PageRequest) int {
	if req.PageNumber <= 0 || req.PageSize <= 0 {
		return 0
	}
	if req.PageNumber > math.MaxInt/req.PageSize {
		return math.MaxInt
	}
	return req.PageNumber * req.PageSize
}

// NewMetaData computes the page metadata for a candidate set of total rows.
// CurrentPage is echoed as requested, even past the last page.
func NewMetaData(total int64, req domain.PageRequest) domain.MetaData {
	totalPages := 0
	if req.PageSize > 0 && total > 0 {
		size := int64(req.PageSize)
		totalPages = int((total + size - 1) / size)
	}

	return domain.MetaData{
		CurrentPage: req.PageNumber,
		TotalPages:  totalPages,
		PageSize:    req.PageSize,
		TotalCount:  total,
		HasPrevious: req.PageNumber > 0,
		HasNext:     req.PageNumber+1 < totalPages,
	}
}

// NewPagedResult wraps one page of items with metadata computed from total.
func NewPagedResult[T any](items []T, total int64, req domain.PageRequest) *domain.PagedResult[T] {
	if items == nil {
		items = []T{}
	}

	return &domain.PagedResult[T]{
		Items:    items,
		MetaData: NewMetaData(total, req),
	}
}

// Source is a filtered, ordered candidate set that can be counted and windowed.
// Count and Window must apply the same logical filter.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Window(ctx context.Context, offset, limit int) ([]T, error)
}

// Paginate counts src, then fetches the window for req. A page past the end
// yields empty items without querying the window. Errors from src are
// returned unchanged.
func Paginate[T any](ctx context.Context, src Source[T], req domain.PageRequest) (*domain.PagedResult[T], error) {
	total, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	offset := Offset(req)
	if int64(offset) >= total || req.PageSize <= 0 {
		return NewPagedResult[T](nil, total, req), nil
	}

	items, err := src.Window(ctx, offset, req.PageSize)
	if err != nil {
		return nil, err
	}
	return NewPagedResult(items, total, req), nil
}

// SliceSource is an in-memory Source over an already filtered and ordered slice.
type SliceSource[T any] []T

// Count returns the slice length.
func (s SliceSource[T]) Count(context.Context) (int64, error) {
	return int64(len(s)), nil
}

// Window returns a copy of at most limit items starting at offset.
func (s SliceSource[T]) Window(_ context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s) || limit <= 0 {
		return []T{}, nil
	}
	end := len(s)
	if limit < end-offset {
		end = offset + limit
	}
	out := make([]T, end-offset)
	copy(out, s[offset:end])
	return out, nil
}

// PaginateSlice pages an in-memory slice that is already filtered and ordered.
func PaginateSlice[T any](items []T, req domain.PageRequest) *domain.PagedResult[T] {
	// SliceSource never fails.
	result, _ := Paginate[T](context.Background(), SliceSource[T](items), req)
	return result
}

// GormSource adapts a GORM model query to Source. Every call starts from DB
// and applies Scopes, so Count and Window see the same filter.
type GormSource[T any] struct {
	DB     *gorm.DB
	Scopes []func(*gorm.DB) *gorm.DB
	Order  string
}

func (s GormSource[T]) base(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Model(new(T)).Scopes(s.Scopes...)
}

// Count returns the number of rows matching the scopes.
func (s GormSource[T]) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.base(ctx).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Window returns rows [offset, offset+limit) in Order.
func (s GormSource[T]) Window(ctx context.Context, offset, limit int) ([]T, error) {
	var items []T
	q := s.base(ctx)
	if s.Order != "" {
		q = q.Order(s.Order)
	}
	if err := q.Scopes(Window(offset, limit)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Window returns a GORM scope selecting rows [offset, offset+limit).
func Window(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}

// SetPaginationHeader writes meta as JSON into the X-Pagination response header.
func SetPaginationHeader(c *gin.Context, meta domain.MetaData) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	c.Header(PaginationHeader, string(raw))
}
