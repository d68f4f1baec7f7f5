package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/chiaview/site-backend/database"
)

const maxPageSize = 100

// pageParams reads limit and offset. limit falls back to defaultLimit when absent or
// unparsable and is clamped to [1, 100]; offset is floored at 0.
func pageParams(r *http.Request, defaultLimit int) database.Page {
	q := r.URL.Query()

	limit, err := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
	if err != nil {
		limit = defaultLimit
	}
	limit = min(max(limit, 1), maxPageSize)

	offset, err := strconv.Atoi(strings.TrimSpace(q.Get("offset")))
	if err != nil {
		offset = 0
	}
	offset = max(offset, 0)

	return database.Page{Limit: limit, Offset: offset}
}

// boolParam accepts only the literals "true" and "false"; anything else is no filter.
func boolParam(r *http.Request, name string) *bool {
	var b bool
	switch strings.TrimSpace(r.URL.Query().Get(name)) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		return nil
	}
	return &b
}

func stringParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
