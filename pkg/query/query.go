// Package query turns route and query-string parameters into a bounded list
// query: filter, sort, page size and offset.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/getmockd/restkit/pkg/pathutil"
)

// Reserved query-string parameters that never become filter fields.
const (
	ParamPage  = "page"
	ParamLimit = "limit"
	ParamSort  = "sort"
)

// IDField is the document field matched by a route identifier.
const IDField = "_id"

// Defaults applied when a Builder field is zero.
const (
	DefaultMaxPageSize = 500
	DefaultPageSize    = 20
	DefaultSort        = "-_id"
)

// ListQuery is a normalized collection query.
type ListQuery struct {
	// Filter holds exact-match conditions keyed by (dot-path) field name.
	Filter map[string]any `json:"filter"`
	// Sort is a sort spec such as "-_id" or "name -age".
	Sort string `json:"sort"`
	// Limit is the page size; 0 means no limit.
	Limit int `json:"limit"`
	// Skip is the number of documents to skip.
	Skip int `json:"skip"`
}

// Builder resolves list queries for one resource.
type Builder struct {
	MaxPageSize     int
	DefaultPageSize int
	DefaultSort     string
}

// NewBuilder returns a Builder, substituting defaults for zero values.
func NewBuilder(maxPageSize, defaultPageSize int, defaultSort string) Builder {
	if maxPageSize == 0 {
		maxPageSize = DefaultMaxPageSize
	}
	if defaultPageSize == 0 {
		defaultPageSize = DefaultPageSize
	}
	if defaultSort == "" {
		defaultSort = DefaultSort
	}
	return Builder{
		MaxPageSize:     maxPageSize,
		DefaultPageSize: defaultPageSize,
		DefaultSort:     defaultSort,
	}
}

// Build resolves the list query for an optional route id and the request's
// query parameters. With a route id the filter matches only that id; otherwise
// every non-reserved query parameter becomes an exact-match condition.
func (b Builder) Build(routeID string, params url.Values) ListQuery {
	var filter map[string]any
	if routeID != "" {
		filter = map[string]any{IDField: routeID}
	} else {
		filter = make(map[string]any, len(params))
		for k := range params {
			filter[k] = params.Get(k)
		}
		pathutil.OmitKeys(filter, ParamPage, ParamLimit, ParamSort)
	}

	sort := b.DefaultSort
	if params.Has(ParamSort) {
		sort = params.Get(ParamSort)
	}

	limit := min(b.MaxPageSize, ToBoundedInt(params, ParamLimit, b.DefaultPageSize))

	// Stores apply a negative limit as its absolute value, so pages step by
	// that size too. Offsets past math.MaxInt saturate.
	skip := 0
	size := limit
	if size < 0 {
		size = -size
	}
	if page := ToBoundedInt(params, ParamPage, 0); page > 0 && size > 0 {
		if page-1 > math.MaxInt/size {
			skip = math.MaxInt
		} else {
			skip = (page - 1) * size
		}
	}

	return ListQuery{
		Filter: filter,
		Sort:   sort,
		Limit:  limit,
		Skip:   skip,
	}
}

// ToBoundedInt reads an integer query parameter. An absent parameter yields
// def. A present parameter is parsed from its leading integer ("12abc" is 12);
// when there is none the result is 0, not def.
func ToBoundedInt(params url.Values, key string, def int) int {
	if !params.Has(key) {
		return def
	}
	return leadingInt(params.Get(key))
}

// leadingInt parses an optional sign followed by decimal digits at the start
// of s, ignoring leading whitespace. Anything unparsable is 0.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
