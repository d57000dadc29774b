package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/simp-lee/companyemployees/internal/domain"
)

func newQueryContext(rawQuery string) *gin.Context {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return c
}

type person struct {
	Name string
	Age  int
}

func ageOf(p person) int     { return p.Age }
func nameOf(p person) string { return p.Name }

func names(ps []person) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

// twelvePeople returns employees aged 20, 22, ..., 42 ordered by name.
func twelvePeople() []person {
	out := make([]person, 0, 12)
	for i := 0; i < 12; i++ {
		out = append(out, person{Name: fmt.Sprintf("emp%02d", i), Age: 20 + 2*i})
	}
	return out
}

func TestParsePageRequest_Defaults(t *testing.T) {
	req, err := ParsePageRequest(newQueryContext(""), DefaultPagingOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, req.PageNumber)
	assert.Equal(t, 10, req.PageSize)
	assert.Equal(t, domain.MinAgeUnbounded, req.MinAge)
	assert.Equal(t, domain.MaxAgeUnbounded, req.MaxAge)
	assert.Empty(t, req.SearchTerm)
	assert.False(t, req.HasAgeFilter())
}

func TestParsePageRequest_AllParams(t *testing.T) {
	c := newQueryContext("pageNumber=2&pageSize=5&minAge=25&maxAge=35&searchTerm=%20ann%20")
	req, err := ParsePageRequest(c, DefaultPagingOptions())
	require.NoError(t, err)

	assert.Equal(t, domain.PageRequest{
		PageNumber: 2,
		PageSize:   5,
		MinAge:     25,
		MaxAge:     35,
		SearchTerm: "ann",
	}, req)
}

func TestParsePageRequest_Clamping(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		opts     PagingOptions
		wantPage int
		wantSize int
	}{
		{"oversized page size clamps to max", "pageSize=500", DefaultPagingOptions(), 0, 50},
		{"page size exactly max", "pageSize=50", DefaultPagingOptions(), 0, 50},
		{"zero page size takes default", "pageSize=0", DefaultPagingOptions(), 0, 10},
		{"negative page size takes default", "pageSize=-3", DefaultPagingOptions(), 0, 10},
		{"negative page number floors at zero", "pageNumber=-4", DefaultPagingOptions(), 0, 10},
		{"configured max", "pageSize=30", PagingOptions{DefaultPageSize: 5, MaxPageSize: 20}, 0, 20},
		{"configured default", "", PagingOptions{DefaultPageSize: 5, MaxPageSize: 20}, 0, 5},
		{"default above max is capped", "", PagingOptions{DefaultPageSize: 80, MaxPageSize: 20}, 0, 20},
		{"zero options fall back to built-in", "pageSize=99", PagingOptions{}, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParsePageRequest(newQueryContext(tt.query), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, req.PageNumber)
			assert.Equal(t, tt.wantSize, req.PageSize)
		})
	}
}

func TestParsePageRequest_Malformed(t *testing.T) {
	queries := []string{
		"pageNumber=abc",
		"pageSize=1.5",
		"minAge=young",
		"maxAge=",
		"minAge=-1",
		"maxAge=-10",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			_, err := ParsePageRequest(newQueryContext(q), DefaultPagingOptions())
			if q == "maxAge=" {
				// An empty value is treated as absent.
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
			assert.Equal(t, http.StatusBadRequest, domain.HTTPStatusCode(err))
		})
	}
}

func TestParsePageRequest_InvertedRangeIsLeftToService(t *testing.T) {
	req, err := ParsePageRequest(newQueryContext("minAge=40&maxAge=30"), DefaultPagingOptions())
	require.NoError(t, err)
	assert.False(t, req.ValidAgeRange())
}

func TestNormalizePageRequest_Idempotent(t *testing.T) {
	opts := DefaultPagingOptions()
	inputs := []domain.PageRequest{
		{PageNumber: -1, PageSize: 0},
		{PageNumber: 3, PageSize: 500},
		{PageNumber: 0, PageSize: 7, MinAge: 20, MaxAge: 30, SearchTerm: "x"},
	}
	for _, in := range inputs {
		once := NormalizePageRequest(in, opts)
		twice := NormalizePageRequest(once, opts)
		assert.Equal(t, once, twice)
		assert.Equal(t, in.MinAge, once.MinAge)
		assert.Equal(t, in.MaxAge, once.MaxAge)
		assert.Equal(t, in.SearchTerm, once.SearchTerm)
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(domain.PageRequest{PageNumber: 0, PageSize: 10}))
	assert.Equal(t, 20, Offset(domain.PageRequest{PageNumber: 2, PageSize: 10}))
	assert.Equal(t, 0, Offset(domain.PageRequest{PageNumber: -1, PageSize: 10}))
	assert.Equal(t, math.MaxInt, Offset(domain.PageRequest{PageNumber: math.MaxInt, PageSize: 50}))
}

func TestNewMetaData(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		page      int
		size      int
		wantPages int
		wantPrev  bool
		wantNext  bool
	}{
		{"empty set", 0, 0, 10, 0, false, false},
		{"exact multiple", 20, 0, 10, 2, false, true},
		{"remainder", 23, 2, 10, 3, true, false},
		{"single item", 1, 0, 10, 1, false, false},
		{"middle page", 45, 2, 10, 5, true, true},
		{"past the end", 5, 7, 10, 1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewMetaData(tt.total, domain.PageRequest{PageNumber: tt.page, PageSize: tt.size})
			assert.Equal(t, tt.wantPages, meta.TotalPages)
			assert.Equal(t, tt.page, meta.CurrentPage)
			assert.Equal(t, tt.size, meta.PageSize)
			assert.Equal(t, tt.total, meta.TotalCount)
			assert.Equal(t, tt.wantPrev, meta.HasPrevious)
			assert.Equal(t, tt.wantNext, meta.HasNext)
		})
	}
}

func TestNewMetaData_CeilingLaw(t *testing.T) {
	for total := int64(0); total <= 120; total++ {
		for size := 1; size <= 13; size++ {
			meta := NewMetaData(total, domain.PageRequest{PageSize: size})
			pages := int64(meta.TotalPages)
			if total == 0 {
				require.Zero(t, pages)
				continue
			}
			require.Positive(t, pages)
			require.GreaterOrEqual(t, pages*int64(size), total, "total=%d size=%d", total, size)
			require.Less(t, (pages-1)*int64(size), total, "total=%d size=%d", total, size)
		}
	}
}

func TestNewPagedResult_NilItems(t *testing.T) {
	result := NewPagedResult[person](nil, 0, domain.PageRequest{PageSize: 10})
	require.NotNil(t, result.Items)
	assert.Empty(t, result.Items)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"items":[]`)
}

func TestPaginateSlice_TotalTwentyThree(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	result := PaginateSlice(items, domain.PageRequest{PageNumber: 2, PageSize: 10})
	assert.Equal(t, []int{20, 21, 22}, result.Items)
	assert.Equal(t, 3, result.MetaData.TotalPages)
	assert.Equal(t, int64(23), result.MetaData.TotalCount)
	assert.True(t, result.MetaData.HasPrevious)
	assert.False(t, result.MetaData.HasNext)
}

func TestPaginateSlice_OutOfRange(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	result := PaginateSlice(items, domain.PageRequest{PageNumber: 9, PageSize: 2})
	require.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Equal(t, 9, result.MetaData.CurrentPage)
	assert.Equal(t, 3, result.MetaData.TotalPages)
	assert.Equal(t, int64(5), result.MetaData.TotalCount)
}

func TestPaginateSlice_PagesPartitionTheSet(t *testing.T) {
	items := make([]int, 37)
	for i := range items {
		items[i] = i * 3
	}

	for size := 1; size <= 40; size++ {
		var joined []int
		first := PaginateSlice(items, domain.PageRequest{PageSize: size})
		for page := 0; page < first.MetaData.TotalPages; page++ {
			r := PaginateSlice(items, domain.PageRequest{PageNumber: page, PageSize: size})
			require.LessOrEqual(t, len(r.Items), size)
			joined = append(joined, r.Items...)
		}
		require.Equal(t, items, joined, "size=%d", size)
	}
}

func TestPaginateSlice_DoesNotAliasInput(t *testing.T) {
	items := []int{1, 2, 3}
	result := PaginateSlice(items, domain.PageRequest{PageSize: 10})
	result.Items[0] = 99
	assert.Equal(t, 1, items[0])
}

type failingSource struct {
	countErr  error
	windowErr error
	windowed  bool
}

func (s *failingSource) Count(context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return 10, nil
}

func (s *failingSource) Window(context.Context, int, int) ([]int, error) {
	s.windowed = true
	return nil, s.windowErr
}

func TestPaginate_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("disk on fire")

	_, err := Paginate[int](context.Background(), &failingSource{countErr: boom}, domain.PageRequest{PageSize: 5})
	assert.ErrorIs(t, err, boom)

	_, err = Paginate[int](context.Background(), &failingSource{windowErr: boom}, domain.PageRequest{PageSize: 5})
	assert.ErrorIs(t, err, boom)
}

func TestPaginate_SkipsWindowPastTheEnd(t *testing.T) {
	src := &failingSource{windowErr: errors.New("must not be called")}

	result, err := Paginate[int](context.Background(), src, domain.PageRequest{PageNumber: 4, PageSize: 5})
	require.NoError(t, err)
	assert.False(t, src.windowed)
	assert.Empty(t, result.Items)
	assert.Equal(t, 2, result.MetaData.TotalPages)
}

func TestFilterThenPaginate_AgeRangeScenario(t *testing.T) {
	people := twelvePeople()
	req := domain.PageRequest{PageNumber: 0, PageSize: 10, MinAge: 25, MaxAge: 35}

	filtered := FilterSlice(people,
		AgeRange(ageOf, req.MinAge, req.MaxAge),
		SearchTerm(nameOf, req.SearchTerm),
	)
	result := PaginateSlice(filtered, req)

	ages := make([]int, 0, len(result.Items))
	for _, p := range result.Items {
		ages = append(ages, p.Age)
	}
	assert.Equal(t, []int{26, 28, 30, 32, 34}, ages)
	assert.Equal(t, int64(5), result.MetaData.TotalCount)
	assert.Equal(t, 1, result.MetaData.TotalPages)
	assert.False(t, result.MetaData.HasNext)
}

func TestFilterThenPaginate_NoMatches(t *testing.T) {
	filtered := FilterSlice(twelvePeople(), AgeRange(ageOf, 90, 99))
	result := PaginateSlice(filtered, domain.PageRequest{PageSize: 10})

	assert.Empty(t, result.Items)
	assert.Equal(t, int64(0), result.MetaData.TotalCount)
	assert.Equal(t, 0, result.MetaData.TotalPages)
	assert.False(t, result.MetaData.HasPrevious)
	assert.False(t, result.MetaData.HasNext)
}

func TestSetPaginationHeader(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	meta := NewMetaData(23, domain.PageRequest{PageNumber: 1, PageSize: 10})
	SetPaginationHeader(c, meta)

	raw := w.Header().Get(PaginationHeader)
	require.NotEmpty(t, raw)

	var got domain.MetaData
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, meta, got)
	assert.Contains(t, raw, `"totalPages":3`)
	assert.Contains(t, raw, `"currentPage":1`)
}

// --- GORM-backed source ---

func newPagingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&domain.Employee{}))
	return db
}

func seedEmployees(t *testing.T, db *gorm.DB, people []person) uuid.UUID {
	t.Helper()
	companyID := uuid.New()
	for _, p := range people {
		e := domain.Employee{Name: p.Name, Age: p.Age, Position: "Dev", CompanyID: companyID}
		require.NoError(t, db.Create(&e).Error)
	}
	return companyID
}

func employeeSource(db *gorm.DB, companyID uuid.UUID, req domain.PageRequest) GormSource[domain.Employee] {
	return GormSource[domain.Employee]{
		DB: db,
		Scopes: []func(*gorm.DB) *gorm.DB{
			func(db *gorm.DB) *gorm.DB { return db.Where("company_id = ?", companyID) },
			AgeRangeScope("age", req.MinAge, req.MaxAge),
			SearchScope("name_search", req.SearchTerm),
		},
		Order: "name",
	}
}

func TestGormSource_MatchesInMemoryPaginator(t *testing.T) {
	db := newPagingTestDB(t)
	people := []person{
		{"Alice Smith", 21}, {"Bob Jones", 34}, {"Carol Anders", 45},
		{"Dan Andrews", 29}, {"Eve Stone", 52}, {"Frank Ando", 33},
		{"Grace Lee", 18}, {"Hank Sand", 60}, {"Ivy Brand", 27},
		{"Jack 100%_Real", 38}, {"Émile Zola", 41}, {"Ödön Horváth", 36},
	}
	companyID := seedEmployees(t, db, people)
	seedEmployees(t, db, []person{{"Alice Other", 30}})

	requests := []domain.PageRequest{
		{PageNumber: 0, PageSize: 3, MinAge: domain.MinAgeUnbounded, MaxAge: domain.MaxAgeUnbounded},
		{PageNumber: 1, PageSize: 3, MinAge: domain.MinAgeUnbounded, MaxAge: domain.MaxAgeUnbounded},
		{PageNumber: 0, PageSize: 10, MinAge: 25, MaxAge: 45},
		{PageNumber: 0, PageSize: 2, MinAge: 25, MaxAge: 45, SearchTerm: "AND"},
		{PageNumber: 1, PageSize: 2, MinAge: 25, MaxAge: 45, SearchTerm: "and"},
		{PageNumber: 0, PageSize: 10, MinAge: domain.MinAgeUnbounded, MaxAge: domain.MaxAgeUnbounded, SearchTerm: "%_"},
		{PageNumber: 0, PageSize: 10, MinAge: domain.MinAgeUnbounded, MaxAge: domain.MaxAgeUnbounded, SearchTerm: "_"},
		{PageNumber: 5, PageSize: 10, MinAge: domain.MinAgeUnbounded, MaxAge: domain.MaxAgeUnbounded},
		{PageNumber: 0, PageSize: 10, MinAge: 70, MaxAge: 80},
		{PageNumber: 0, PageSize: 10, MinAge: domain.MinAgeUnbounded, MaxAge: domain.MaxAgeUnbounded, SearchTerm: "émile"},
		{PageNumber: 0, PageSize: 10, MinAge: domain.MinAgeUnbounded, MaxAge: domain.MaxAgeUnbounded, SearchTerm: "ÖDÖN"},
		{PageNumber: 0, PageSize: 10, MinAge: 30, MaxAge: 45, SearchTerm: "Á"},
	}

	for i, req := range requests {
		t.Run(fmt.Sprintf("request_%d", i), func(t *testing.T) {
			got, err := Paginate[domain.Employee](context.Background(), employeeSource(db, companyID, req), req)
			require.NoError(t, err)

			filtered := FilterSlice(people,
				AgeRange(ageOf, req.MinAge, req.MaxAge),
				SearchTerm(nameOf, req.SearchTerm),
			)
			want := PaginateSlice(filtered, req)

			gotNames := make([]string, 0, len(got.Items))
			for _, e := range got.Items {
				gotNames = append(gotNames, e.Name)
			}
			assert.Equal(t, names(want.Items), gotNames)
			assert.Equal(t, want.MetaData, got.MetaData)
		})
	}
}

func TestWindowScope(t *testing.T) {
	db := newPagingTestDB(t)
	seedEmployees(t, db, twelvePeople())

	var page []domain.Employee
	err := db.Model(&domain.Employee{}).Order("name").Scopes(Window(Offset(domain.PageRequest{PageNumber: 1, PageSize: 5}), 5)).Find(&page).Error
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, "emp05", page[0].Name)
	assert.Equal(t, "emp09", page[4].Name)
}
