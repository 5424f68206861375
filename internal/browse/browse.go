// Package browse is the search, filter and sort pipeline run over store and
// user collections that have already been fetched. It never touches the
// network or the database and never mutates its input.
package browse

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Sort selects the ordering of a store listing.
type Sort string

const (
	SortNone     Sort = ""
	SortName     Sort = "name"
	SortRating   Sort = "rating"
	SortCategory Sort = "category"
)

// ParseSort accepts "", "name", "rating" and "category".
func ParseSort(s string) (Sort, error) {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortNone:
		return SortNone, nil
	case SortName:
		return SortName, nil
	case SortRating:
		return SortRating, nil
	case SortCategory:
		return SortCategory, nil
	}
	return SortNone, fmt.Errorf("sort must be one of name, rating, category")
}

// Status filters stores by their active flag.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus accepts "", "all", "active" and "inactive"; empty means all.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	}
	return StatusAll, fmt.Errorf("status must be one of all, active, inactive")
}

// StoreFields is the view of a store the pipeline works on.
type StoreFields struct {
	Name       string
	OwnerName  string
	OwnerEmail string
	Address    string
	Category   string
	Active     bool
	Average    float64
}

// StoreQuery combines a free-text search with field filters and a sort key.
// Search matches if any of name, owner name, owner email, address or
// category contains it; every other non-empty filter must also match.
type StoreQuery struct {
	Search   string
	Category string
	Name     string
	Email    string
	Address  string
	Status   Status
	Sort     Sort
}

// StoreQueryFromValues reads a StoreQuery from URL query parameters.
func StoreQueryFromValues(v url.Values) (StoreQuery, error) {
	q := StoreQuery{
		Search:   v.Get("search"),
		Category: v.Get("category"),
		Name:     v.Get("name"),
		Email:    v.Get("email"),
		Address:  v.Get("address"),
	}
	var err error
	if q.Status, err = ParseStatus(v.Get("status")); err != nil {
		return StoreQuery{}, err
	}
	if q.Sort, err = ParseSort(v.Get("sort")); err != nil {
		return StoreQuery{}, err
	}
	return q, nil
}

// Stores returns the items of in that match q, ordered by q.Sort. Sorting is
// stable, so items with equal keys keep their fetched order.
func Stores[T any](in []T, q StoreQuery, fields func(T) StoreFields) []T {
	search := fold(q.Search)
	out := make([]T, 0, len(in))
	for _, item := range in {
		f := fields(item)
		if search != "" && !containsAny(search, f.Name, f.OwnerName, f.OwnerEmail, f.Address, f.Category) {
			continue
		}
		if !contains(f.Category, q.Category) || !contains(f.Name, q.Name) ||
			!contains(f.OwnerEmail, q.Email) || !contains(f.Address, q.Address) {
			continue
		}
		switch q.Status {
		case StatusActive:
			if !f.Active {
				continue
			}
		case StatusInactive:
			if f.Active {
				continue
			}
		}
		out = append(out, item)
	}

	switch q.Sort {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return fold(fields(out[i]).Name) < fold(fields(out[j]).Name)
		})
	case SortCategory:
		sort.SliceStable(out, func(i, j int) bool {
			return fold(fields(out[i]).Category) < fold(fields(out[j]).Category)
		})
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return fields(out[i]).Average > fields(out[j]).Average
		})
	}
	return out
}

// UserFields is the view of a user the pipeline works on.
type UserFields struct {
	Name    string
	Email   string
	Address string
	Role    string
}

// UserQuery filters a user listing. Search matches name, email, address or
// role; Role must match exactly when set.
type UserQuery struct {
	Search  string
	Role    string
	Name    string
	Email   string
	Address string
}

// UserQueryFromValues reads a UserQuery from URL query parameters.
func UserQueryFromValues(v url.Values) UserQuery {
	return UserQuery{
		Search:  v.Get("search"),
		Role:    strings.TrimSpace(v.Get("role")),
		Name:    v.Get("name"),
		Email:   v.Get("email"),
		Address: v.Get("address"),
	}
}

// Users returns the items of in that match q, in their original order.
func Users[T any](in []T, q UserQuery, fields func(T) UserFields) []T {
	search := fold(q.Search)
	out := make([]T, 0, len(in))
	for _, item := range in {
		f := fields(item)
		if search != "" && !containsAny(search, f.Name, f.Email, f.Address, f.Role) {
			continue
		}
		if q.Role != "" && q.Role != "all" && !strings.EqualFold(f.Role, q.Role) {
			continue
		}
		if !contains(f.Name, q.Name) || !contains(f.Email, q.Email) || !contains(f.Address, q.Address) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// contains reports whether needle is empty or a case-insensitive substring of haystack.
func contains(haystack, needle string) bool {
	needle = fold(needle)
	return needle == "" || strings.Contains(strings.ToLower(haystack), needle)
}

func containsAny(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
