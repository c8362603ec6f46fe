package domain

import (
	"strings"
)

// AccountStatus is the admin-controlled state of a careseeker account.
type AccountStatus string

const (
	StatusActive      AccountStatus = "ACTIVE"
	StatusDeactivated AccountStatus = "DEACTIVATED"
)

func (s AccountStatus) Valid() bool {
	return s == StatusActive || s == StatusDeactivated
}

// CareseekerAccount is one row of the admin careseeker listing.
type CareseekerAccount struct {
	ID        string        `json:"id"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Status    AccountStatus `json:"status"`
}

// Matches reports whether q (already lower-cased) occurs in any searchable field.
func (a CareseekerAccount) Matches(q string) bool {
	if q == "" {
		return true
	}
	for _, field := range []string{a.ID, a.FirstName, a.LastName, a.Email, a.Phone, string(a.Status)} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// PageSize is the number of rows per page in admin listings.
const PageSize = 10

// Page is one slice of a filtered listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// Paginate cuts rows into pages of size; page is 1-based and clamped.
func Paginate[T any](rows []T, page, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	pages := max(1, (len(rows)+size-1)/size)
	page = min(max(page, 1), pages)
	start := (page - 1) * size
	end := min(start+size, len(rows))
	items := make([]T, 0, end-start)
	items = append(items, rows[start:end]...)
	return Page[T]{Items: items, Page: page, Pages: pages, Total: len(rows)}
}
