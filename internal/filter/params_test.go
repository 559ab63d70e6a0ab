package filter_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/filter"
)

// ---- ParseQuery ------------------------------------------------------------

func TestParseQuery_Empty(t *testing.T) {
	p := filter.ParseQuery(url.Values{})

	assert.Equal(t, filter.Default(), p)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.Guests)
	assert.True(t, p.StartDate.IsZero())
}

func TestParseQuery_AllFields(t *testing.T) {
	v := url.Values{
		"search":        {"Lisbon"},
		"country":       {"Portugal"},
		"city":          {"Lisbon"},
		"min_price":     {"50"},
		"max_price":     {"200"},
		"guests":        {"4"},
		"bedrooms":      {"2"},
		"bathrooms":     {"1"},
		"start_date":    {"2025-06-01"},
		"end_date":      {"2025-06-05"},
		"page":          {"3"},
		"property_type": {"villa", "apartment"},
	}

	p := filter.ParseQuery(v)

	assert.Equal(t, "Lisbon", p.Search)
	assert.Equal(t, "Portugal", p.Country)
	assert.Equal(t, 50, p.MinPrice)
	assert.Equal(t, 200, p.MaxPrice)
	assert.Equal(t, 4, p.Guests)
	assert.Equal(t, 2, p.Bedrooms)
	assert.Equal(t, 1, p.Bathrooms)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, []string{"villa", "apartment"}, p.PropertyTypes)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), p.StartDate)
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), p.EndDate)
}

func TestParseQuery_MalformedNumbersFallBack(t *testing.T) {
	v := url.Values{
		"min_price": {"abc"},
		"max_price": {"-10"},
		"guests":    {"zero"},
		"page":      {"0"},
	}

	p := filter.ParseQuery(v)

	assert.Equal(t, 0, p.MinPrice)
	assert.Equal(t, 0, p.MaxPrice)
	assert.Equal(t, 1, p.Guests)
	assert.Equal(t, 1, p.Page)
}

func TestParseQuery_MalformedDateFallsBack(t *testing.T) {
	p := filter.ParseQuery(url.Values{"start_date": {"not-a-date"}})
	assert.True(t, p.StartDate.IsZero())
}

func TestParseQuery_DeduplicatesPropertyTypes(t *testing.T) {
	p := filter.ParseQuery(url.Values{"property_type": {"villa", "villa", "cabin"}})
	assert.Equal(t, []string{"villa", "cabin"}, p.PropertyTypes)
}

// ---- Query -----------------------------------------------------------------

func TestQuery_OmitsDefaults(t *testing.T) {
	q := filter.Default().Query(url.Values{})
	assert.Empty(t, q)
}

func TestQuery_RoundTrip(t *testing.T) {
	p := filter.Default()
	p.Bedrooms = 3
	p.Search = "Lisbon"

	q := p.Query(url.Values{})
	got := filter.ParseQuery(q)

	want := filter.Default()
	want.Bedrooms = 3
	want.Search = "Lisbon"
	assert.True(t, got.Equal(want), "round-tripped params differ: %+v vs %+v", got, want)
	assert.Empty(t, got.PropertyTypes)
}

func TestQuery_RepeatedPropertyTypeKeys(t *testing.T) {
	p := filter.Default()
	p.PropertyTypes = []string{"villa", "cabin"}

	q := p.Query(url.Values{})

	assert.Equal(t, []string{"villa", "cabin"}, q["property_type"])
}

func TestQuery_PreservesForeignParams(t *testing.T) {
	existing := url.Values{
		"utm_source": {"newsletter"},
		"search":     {"stale"},
	}
	p := filter.Default()
	p.Search = "Porto"

	q := p.Query(existing)

	assert.Equal(t, "newsletter", q.Get("utm_source"), "foreign params must survive rewrites")
	assert.Equal(t, "Porto", q.Get("search"))
}

func TestQuery_DatesSurviveFilterOnlyRewrite(t *testing.T) {
	existing := url.Values{"start_date": {"2025-06-01"}, "end_date": {"2025-06-05"}}
	p := filter.ParseQuery(existing)
	p.Bedrooms = 2

	q := p.Query(existing)

	assert.Equal(t, "2025-06-01", q.Get("start_date"))
	assert.Equal(t, "2025-06-05", q.Get("end_date"))
	assert.Equal(t, "2", q.Get("bedrooms"))
}

// ---- Equal / HasActive -----------------------------------------------------

func TestEqual_PropertyTypeOrderInsensitive(t *testing.T) {
	a := filter.Default()
	a.PropertyTypes = []string{"villa", "cabin"}
	b := filter.Default()
	b.PropertyTypes = []string{"cabin", "villa"}

	assert.True(t, a.Equal(b))
}

func TestHasActive(t *testing.T) {
	p := filter.Default()
	assert.False(t, p.HasActive())

	p.Page = 5
	p.StartDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, p.HasActive(), "page and dates are not filters")

	p.Bedrooms = 2
	assert.True(t, p.HasActive())
}

// ---- date rules ------------------------------------------------------------

func TestDefaultDateWindow(t *testing.T) {
	now := time.Date(2025, 5, 14, 17, 30, 0, 0, time.UTC)

	start, end := filter.DefaultDateWindow(now)

	require.Equal(t, "2025-05-15", start.Format(filter.DateLayout))
	require.Equal(t, "2025-05-18", end.Format(filter.DateLayout))
}

func TestCanSelectEnd_RejectsBeforeStart(t *testing.T) {
	today := time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	assert.False(t, filter.CanSelectEnd(start.AddDate(0, 0, -1), start, today))
	assert.True(t, filter.CanSelectEnd(start, start, today))
	assert.True(t, filter.CanSelectEnd(start.AddDate(0, 0, 2), start, today))
}

func TestCanSelectEnd_NoStartFallsBackToToday(t *testing.T) {
	today := time.Date(2025, 5, 14, 9, 0, 0, 0, time.UTC)

	assert.False(t, filter.CanSelectEnd(today.AddDate(0, 0, -1), time.Time{}, today))
	assert.True(t, filter.CanSelectEnd(today, time.Time{}, today))
}

func TestSelectStart_PromptsEndWithoutClearing(t *testing.T) {
	p := filter.Default()
	p.EndDate = time.Date(2025, 5, 18, 0, 0, 0, 0, time.UTC)

	prompt := filter.SelectStart(&p, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))

	assert.True(t, prompt, "start moved past end must prompt the end picker")
	assert.Equal(t, "2025-05-18", p.EndDate.Format(filter.DateLayout), "invalid end date must not be auto-cleared")
}

func TestSelectEnd_RejectedLeavesStateUnchanged(t *testing.T) {
	today := time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC)
	p := filter.Default()
	p.StartDate = time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	p.EndDate = time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC)

	ok := filter.SelectEnd(&p, time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC), today)

	assert.False(t, ok)
	assert.Equal(t, "2025-05-25", p.EndDate.Format(filter.DateLayout))
}
