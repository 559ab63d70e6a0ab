package domain

// Pagination mirrors the platform API's pagination envelope.
// CurrentPage is 1-indexed.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// HousePage is one page of house search results. Read-only to the UI.
type HousePage struct {
	Houses     []House    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ActivityPage is one page of a host's activities.
type ActivityPage struct {
	Activities []Activity `json:"data"`
	Pagination Pagination `json:"pagination"`
}
