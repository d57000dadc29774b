package employee

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/companyemployees/internal/domain"
)

// setupTestDB creates an in-memory SQLite database with the company tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&domain.Company{}, &domain.Employee{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedCompany inserts a company owning employees and returns its ID.
func seedCompany(t *testing.T, db *gorm.DB, employees ...domain.Employee) uuid.UUID {
	t.Helper()
	company := domain.Company{Name: "Acme", Address: "Street", Country: "NL", Employees: employees}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return company.ID
}

func namesOf(items []domain.Employee) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func unfiltered(pageNumber, pageSize int) domain.PageRequest {
	return domain.PageRequest{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		MinAge:     domain.MinAgeUnbounded,
		MaxAge:     domain.MaxAgeUnbounded,
	}
}

func TestList_ScopedToCompanyAndOrdered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)

	acme := seedCompany(t, db,
		domain.Employee{Name: "Carol", Age: 30, Position: "Dev"},
		domain.Employee{Name: "Alice", Age: 25, Position: "Dev"},
		domain.Employee{Name: "Bob", Age: 41, Position: "Ops"},
	)
	seedCompany(t, db, domain.Employee{Name: "Other", Age: 50, Position: "CEO"})

	page, err := repo.List(context.Background(), acme, unfiltered(0, 10))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := namesOf(page.Items); !equalStrings(got, []string{"Alice", "Bob", "Carol"}) {
		t.Errorf("names = %v; want [Alice Bob Carol]", got)
	}
	if page.MetaData.TotalCount != 3 {
		t.Errorf("TotalCount = %d; want 3", page.MetaData.TotalCount)
	}
}

func TestList_AgeRangeThenSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)

	var emps []domain.Employee
	for _, e := range []struct {
		name string
		age  int
	}{
		{"Anna", 24}, {"Annabel", 26}, {"Brian", 28}, {"Joanna", 30},
		{"Mark", 32}, {"Hannah", 34}, {"Zoe", 36},
	} {
		emps = append(emps, domain.Employee{Name: e.name, Age: e.age, Position: "p"})
	}
	companyID := seedCompany(t, db, emps...)

	req := unfiltered(0, 2)
	req.MinAge = 26
	req.MaxAge = 34
	req.SearchTerm = "ANN"

	page, err := repo.List(context.Background(), companyID, req)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// Annabel(26), Joanna(30), Hannah(34) match; Anna is outside the age range.
	if page.MetaData.TotalCount != 3 || page.MetaData.TotalPages != 2 {
		t.Errorf("meta = %+v; want 3 rows over 2 pages", page.MetaData)
	}
	if got := namesOf(page.Items); !equalStrings(got, []string{"Annabel", "Hannah"}) {
		t.Errorf("page 0 = %v; want [Annabel Hannah]", got)
	}

	req.PageNumber = 1
	page, err = repo.List(context.Background(), companyID, req)
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if got := namesOf(page.Items); !equalStrings(got, []string{"Joanna"}) {
		t.Errorf("page 1 = %v; want [Joanna]", got)
	}
}

func TestList_OutOfRangePage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	companyID := seedCompany(t, db, domain.Employee{Name: "Solo", Age: 40, Position: "p"})

	page, err := repo.List(context.Background(), companyID, unfiltered(5, 10))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("items = %#v; want empty", page.Items)
	}
	if page.MetaData.TotalCount != 1 || page.MetaData.TotalPages != 1 || page.MetaData.CurrentPage != 5 {
		t.Errorf("meta = %+v", page.MetaData)
	}
}

func TestGetByID_ScopedToCompany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	ctx := context.Background()

	companyID := seedCompany(t, db)
	otherID := seedCompany(t, db)

	e := &domain.Employee{Name: "Eve", Age: 33, Position: "QA", CompanyID: companyID}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, companyID, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Eve" || got.CompanyID != companyID {
		t.Errorf("got %+v", got)
	}

	if _, err := repo.GetByID(ctx, otherID, e.ID); !domain.IsNotFound(err) {
		t.Errorf("other company: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	ctx := context.Background()
	companyID := seedCompany(t, db)

	e := &domain.Employee{Name: "Fred", Age: 45, Position: "Ops", CompanyID: companyID}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	e.Name = "Frederick"
	e.Age = 46
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.GetByID(ctx, companyID, e.ID)
	if got.Name != "Frederick" || got.Age != 46 {
		t.Errorf("got %+v after update", got)
	}

	if err := repo.Delete(ctx, e); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, e); !domain.IsNotFound(err) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(ctx, e); !domain.IsNotFound(err) {
		t.Errorf("Update after delete: expected ErrNotFound, got %v", err)
	}
}

func TestList_SearchFoldsNonASCII(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	ctx := context.Background()
	companyID := seedCompany(t, db,
		domain.Employee{Name: "Ödön Horváth", Age: 36, Position: "Writer"},
		domain.Employee{Name: "Otto Dix", Age: 40, Position: "Painter"},
	)

	search := func(term string) []string {
		t.Helper()
		req := unfiltered(0, 10)
		req.SearchTerm = term
		page, err := repo.List(ctx, companyID, req)
		if err != nil {
			t.Fatalf("List(%q): %v", term, err)
		}
		return namesOf(page.Items)
	}

	if got := search("ÖDÖN"); !equalStrings(got, []string{"Ödön Horváth"}) {
		t.Errorf("search ÖDÖN = %v; want [Ödön Horváth]", got)
	}

	page, err := repo.List(ctx, companyID, unfiltered(0, 10))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var odon domain.Employee
	for _, e := range page.Items {
		if e.Name == "Ödön Horváth" {
			odon = e
		}
	}
	odon.Name = "Émile Zola"
	if err := repo.Update(ctx, &odon); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got := search("émile"); !equalStrings(got, []string{"Émile Zola"}) {
		t.Errorf("search émile = %v; want [Émile Zola]", got)
	}
	if got := search("ödön"); len(got) != 0 {
		t.Errorf("search ödön after rename = %v; want none", got)
	}
}
