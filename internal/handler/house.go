package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"staybook/internal/domain"
	"staybook/internal/favorite"
	"staybook/internal/filter"
	"staybook/internal/middleware"
	"staybook/internal/pricing"
)

// ListHouses handles GET /houses.
//
// When the request is missing either stay date, it redirects (302) to the
// same URL with the missing value filled from the default window — tomorrow
// through three nights later — so every search result the client ever sees
// is priced for a concrete stay. Only absent dates are filled, so the
// redirected URL always has both and cannot redirect again. Foreign query
// parameters survive the redirect.
func (s *Server) ListHouses(w http.ResponseWriter, r *http.Request) {
	p := filter.ParseQuery(r.URL.Query())

	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		start, end := filter.DefaultDateWindow(s.now())
		if p.StartDate.IsZero() {
			p.StartDate = start
		}
		if p.EndDate.IsZero() {
			p.EndDate = end
		}
		u := *r.URL
		u.RawQuery = p.Query(r.URL.Query()).Encode()
		http.Redirect(w, r, u.String(), http.StatusFound)
		return
	}

	ctx := r.Context()
	token := middleware.Token(ctx)

	page, err := s.houses.Search(ctx, token, p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Let in-flight optimistic toggles win over the fetched snapshot.
	visitor := middleware.VisitorID(ctx)
	for i := range page.Houses {
		key := favorite.Key{Visitor: visitor, HouseID: page.Houses[i].ID}
		s.favorites.Seed(key, page.Houses[i].IsFavorite)
		page.Houses[i].IsFavorite = s.favorites.IsFavorite(key)
	}

	writeJSON(w, http.StatusOK, page)
}

// houseDetailResponse is the composite payload for one listing page: the
// house itself, the host's bookable activities, the visitor's cart for this
// house, and a price quote for the requested dates and cart.
type houseDetailResponse struct {
	House      domain.House      `json:"house"`
	Activities []domain.Activity `json:"activities"`
	Cart       cartResponse      `json:"cart"`
	Quote      quoteResponse     `json:"quote"`
}

type quoteResponse struct {
	Mode      string              `json:"mode"`
	Total     string              `json:"total"`
	Label     string              `json:"label"`
	Nights    int                 `json:"nights"`
	StartDate *openapi_types.Date `json:"start_date,omitempty"`
	EndDate   *openapi_types.Date `json:"end_date,omitempty"`
}

// GetHouse handles GET /houses/{id}.
func (s *Server) GetHouse(w http.ResponseWriter, r *http.Request) {
	id, ok := s.houseID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	token := middleware.Token(ctx)

	house, err := s.houses.Get(ctx, token, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("house not found"))
			return
		}
		s.respondError(w, r, err)
		return
	}

	visitor := middleware.VisitorID(ctx)
	key := favorite.Key{Visitor: visitor, HouseID: house.ID}
	s.favorites.Seed(key, house.IsFavorite)
	house.IsFavorite = s.favorites.IsFavorite(key)

	// The activities rail degrades to empty rather than failing the page.
	var activities []domain.Activity
	if acts, err := s.houses.HostActivities(ctx, token, house.OwnerID, 1); err != nil {
		s.log.WarnContext(ctx, "host activities unavailable", "house_id", house.ID, "error", err)
	} else {
		activities = acts.Activities
	}

	store := s.carts.Store(visitor, id)
	store.Load(ctx)

	p := filter.ParseQuery(r.URL.Query())
	quote := pricing.Compute(pricing.ParseAmount(house.PricePerNight), p.StartDate, p.EndDate, store.Activities())

	writeJSON(w, http.StatusOK, houseDetailResponse{
		House:      house,
		Activities: activities,
		Cart:       newCartResponse(store),
		Quote:      newQuoteResponse(quote, p),
	})
}

func newQuoteResponse(q pricing.Quote, p filter.Params) quoteResponse {
	resp := quoteResponse{
		Mode:   string(q.Mode),
		Total:  q.Display(),
		Label:  q.Label(),
		Nights: q.Nights,
	}
	if !p.StartDate.IsZero() {
		resp.StartDate = &openapi_types.Date{Time: p.StartDate}
	}
	if !p.EndDate.IsZero() {
		resp.EndDate = &openapi_types.Date{Time: p.EndDate}
	}
	return resp
}

// houseID parses the {id} route parameter, writing the error response itself
// when the value is not a positive integer.
func (s *Server) houseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid house id"))
		return 0, false
	}
	return id, true
}
