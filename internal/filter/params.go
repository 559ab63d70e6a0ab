// Package filter implements the search/narrowing state for the houses
// listing page and its two-way binding with the page's query string.
// The query string is the canonical cross-navigation representation of
// filter state; this package parses it, serializes it, and (via
// Synchronizer) keeps locally-edited state and the URL consistent without
// feedback loops.
package filter

import (
	"net/url"
	"slices"
	"strconv"
	"time"
)

// DateLayout is the wire format for calendar dates in the query string.
const DateLayout = "2006-01-02"

// anyCount is the sentinel meaning "any" for guests/bedrooms/bathrooms.
// It is omitted from the query string.
const anyCount = 1

// trackedKeys are the query parameters owned by this package. Everything
// else in the query string is foreign state and is preserved verbatim
// across rewrites.
var trackedKeys = []string{
	"search", "country", "city",
	"min_price", "max_price",
	"guests", "bedrooms", "bathrooms",
	"start_date", "end_date",
	"page", "property_type",
}

// Params is the full filter state for the houses listing page.
// Zero values are the defaults: empty strings, zero prices (unset),
// counts of 1 ("any"), zero dates (unset), page 1.
type Params struct {
	Search  string
	Country string
	City    string

	// MinPrice and MaxPrice are non-negative; 0 means unset.
	MinPrice int
	MaxPrice int

	// Guests, Bedrooms and Bathrooms default to 1, meaning "any".
	Guests    int
	Bedrooms  int
	Bathrooms int

	// StartDate and EndDate are calendar dates; the zero time means unset.
	StartDate time.Time
	EndDate   time.Time

	// Page is 1-indexed and never less than 1.
	Page int

	// PropertyTypes is an order-preserving, deduplicated set.
	// Membership is what matters for matching; order is kept for display.
	PropertyTypes []string
}

// Default returns a Params with every field at its default sentinel.
func Default() Params {
	return Params{Guests: anyCount, Bedrooms: anyCount, Bathrooms: anyCount, Page: 1}
}

// ParseQuery reads every tracked field from a query string.
// Malformed or out-of-range values are treated as absent and fall back to
// the field's default; ParseQuery never fails.
func ParseQuery(v url.Values) Params {
	p := Default()

	p.Search = v.Get("search")
	p.Country = v.Get("country")
	p.City = v.Get("city")

	p.MinPrice = parseCount(v.Get("min_price"), 0, 0)
	p.MaxPrice = parseCount(v.Get("max_price"), 0, 0)
	p.Guests = parseCount(v.Get("guests"), anyCount, 1)
	p.Bedrooms = parseCount(v.Get("bedrooms"), anyCount, 1)
	p.Bathrooms = parseCount(v.Get("bathrooms"), anyCount, 1)
	p.Page = parseCount(v.Get("page"), 1, 1)

	p.StartDate = parseDate(v.Get("start_date"))
	p.EndDate = parseDate(v.Get("end_date"))

	for _, t := range v["property_type"] {
		if t != "" && !slices.Contains(p.PropertyTypes, t) {
			p.PropertyTypes = append(p.PropertyTypes, t)
		}
	}

	return p
}

// Query serializes p on top of an existing query string.
// Tracked fields at their default sentinel are omitted entirely; property
// types are written as repeated keys; parameters this package does not own
// are carried over verbatim so unrelated application state survives the
// rewrite.
func (p Params) Query(existing url.Values) url.Values {
	out := url.Values{}
	for k, vs := range existing {
		if slices.Contains(trackedKeys, k) {
			continue
		}
		out[k] = slices.Clone(vs)
	}

	setIf(out, "search", p.Search, p.Search != "")
	setIf(out, "country", p.Country, p.Country != "")
	setIf(out, "city", p.City, p.City != "")
	setIf(out, "min_price", strconv.Itoa(p.MinPrice), p.MinPrice > 0)
	setIf(out, "max_price", strconv.Itoa(p.MaxPrice), p.MaxPrice > 0)
	setIf(out, "guests", strconv.Itoa(p.Guests), p.Guests > anyCount)
	setIf(out, "bedrooms", strconv.Itoa(p.Bedrooms), p.Bedrooms > anyCount)
	setIf(out, "bathrooms", strconv.Itoa(p.Bathrooms), p.Bathrooms > anyCount)
	setIf(out, "start_date", p.StartDate.Format(DateLayout), !p.StartDate.IsZero())
	setIf(out, "end_date", p.EndDate.Format(DateLayout), !p.EndDate.IsZero())
	setIf(out, "page", strconv.Itoa(p.Page), p.Page > 1)

	for _, t := range p.PropertyTypes {
		out.Add("property_type", t)
	}

	return out
}

// Equal reports whether two Params describe the same filter state.
// Property type sets compare order-insensitively.
func (p Params) Equal(o Params) bool {
	if p.Search != o.Search || p.Country != o.Country || p.City != o.City ||
		p.MinPrice != o.MinPrice || p.MaxPrice != o.MaxPrice ||
		p.Guests != o.Guests || p.Bedrooms != o.Bedrooms || p.Bathrooms != o.Bathrooms ||
		!p.StartDate.Equal(o.StartDate) || !p.EndDate.Equal(o.EndDate) ||
		p.Page != o.Page {
		return false
	}
	a, b := slices.Clone(p.PropertyTypes), slices.Clone(o.PropertyTypes)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// HasActive reports whether any narrowing filter is set, ignoring the page
// number and the date range (which are navigation state, not filters).
func (p Params) HasActive() bool {
	return p.Search != "" || p.Country != "" || p.City != "" ||
		p.MinPrice > 0 || p.MaxPrice > 0 ||
		p.Guests > anyCount || p.Bedrooms > anyCount || p.Bathrooms > anyCount ||
		len(p.PropertyTypes) > 0
}

// sameFilters reports whether the non-date, non-page fields of two Params
// are identical. Used to decide whether a URL push must reset the page.
func (p Params) sameFilters(o Params) bool {
	q, r := p, o
	q.StartDate, r.StartDate = time.Time{}, time.Time{}
	q.EndDate, r.EndDate = time.Time{}, time.Time{}
	q.Page, r.Page = 1, 1
	return q.Equal(r)
}

func setIf(v url.Values, key, value string, ok bool) {
	if ok {
		v.Set(key, value)
	}
}

// parseCount parses a non-negative integer, returning def for anything
// malformed or below min.
func parseCount(s string, def, min int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min {
		return def
	}
	return n
}

// parseDate parses a YYYY-MM-DD value; anything malformed is unset.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
