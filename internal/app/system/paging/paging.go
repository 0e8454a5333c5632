// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize is the default number of rows returned by list endpoints.
const PageSize = 50

// MaxPageSize caps the "limit" query parameter.
const MaxPageSize = 200

// ParseLimit reads the "limit" query parameter, falling back to PageSize
// when absent or invalid and clamping to MaxPageSize.
func ParseLimit(r *http.Request) int {
	s := query.Get(r, "limit")
	if s == "" {
		return PageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return PageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// ParseAfterSeq reads the "after" query parameter as a sequence number.
// Returns 0 (start of log) when absent or invalid.
func ParseAfterSeq(r *http.Request) int64 {
	s := query.Get(r, "after")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseBeforeID reads the "before" query parameter as an ObjectID cursor for
// newest-first lists. ok is false when absent or malformed.
func ParseBeforeID(r *http.Request) (primitive.ObjectID, bool) {
	s := query.Get(r, "before")
	if s == "" {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// TrimPage trims rows fetched with limit+1 look-ahead to limit and reports
// whether more rows exist.
func TrimPage[T any](rows *[]T, limit int) (hasMore bool) {
	if len(*rows) > limit {
		*rows = (*rows)[:limit]
		return true
	}
	return false
}
