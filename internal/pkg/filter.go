package pkg

import (
	"regexp"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/companyemployees/internal/domain"
)

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Predicate reports whether an item stays in the candidate set.
// A nil Predicate is a pass-through.
type Predicate[T any] func(T) bool

// AgeRange keeps items whose age lies in [minAge, maxAge]. It returns nil when
// both bounds are the domain sentinels.
func AgeRange[T any](ageOf func(T) int, minAge, maxAge int) Predicate[T] {
	if !hasAgeFilter(minAge, maxAge) {
		return nil
	}
	return func(item T) bool {
		age := ageOf(item)
		return age >= minAge && age <= maxAge
	}
}

// SearchTerm keeps items whose text contains term, ignoring case. It returns
// nil for an empty or blank term.
func SearchTerm[T any](textOf func(T) string, term string) Predicate[T] {
	needle := domain.FoldSearchText(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	return func(item T) bool {
		return strings.Contains(domain.FoldSearchText(textOf(item)), needle)
	}
}

func hasAgeFilter(minAge, maxAge int) bool {
	return domain.PageRequest{MinAge: minAge, MaxAge: maxAge}.HasAgeFilter()
}

// FilterSlice applies preds in order and returns the survivors in input order.
// The input slice is never modified.
func FilterSlice[T any](items []T, preds ...Predicate[T]) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	for _, p := range preds {
		if p == nil {
			continue
		}
		out = slices.DeleteFunc(out, func(item T) bool { return !p(item) })
	}
	return out
}

// AgeRangeScope returns a GORM scope restricting column to [minAge, maxAge].
// At the sentinel bounds, or for an invalid column name, it is a no-op.
func AgeRangeScope(column string, minAge, maxAge int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !hasAgeFilter(minAge, maxAge) {
			return db
		}
		if !validFieldName.MatchString(column) {
			return db
		}
		return db.Where(column+" >= ? AND "+column+" <= ?", minAge, maxAge)
	}
}

// SearchScope returns a GORM scope keeping rows whose foldedColumn contains
// term, ignoring case. foldedColumn must hold text already passed through
// domain.FoldSearchText. LIKE wildcards in term match literally. A blank term,
// or an invalid column name, is a no-op.
func SearchScope(foldedColumn, term string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		needle := domain.FoldSearchText(strings.TrimSpace(term))
		if needle == "" {
			return db
		}
		if !validFieldName.MatchString(foldedColumn) {
			return db
		}
		return db.Where(foldedColumn+" LIKE ? ESCAPE '\\'", "%"+likeEscaper.Replace(needle)+"%")
	}
}
