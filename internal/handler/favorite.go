package handler

import (
	"net/http"

	"staybook/internal/favorite"
	"staybook/internal/middleware"
)

// Favorite handles POST /houses/{id}/favorite.
func (s *Server) Favorite(w http.ResponseWriter, r *http.Request) {
	s.setFavorite(w, r, true)
}

// Unfavorite handles POST /houses/{id}/unfavorite.
func (s *Server) Unfavorite(w http.ResponseWriter, r *http.Request) {
	s.setFavorite(w, r, false)
}

// setFavorite runs the optimistic toggle and reports the state the scope
// settled on. A rolled-back toggle surfaces as an error with the prior state.
func (s *Server) setFavorite(w http.ResponseWriter, r *http.Request, want bool) {
	id, ok := s.houseID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	key := favorite.Key{Visitor: middleware.VisitorID(ctx), HouseID: id}

	state, err := s.favorites.Set(ctx, middleware.Token(ctx), key, want)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_favorite": state})
}
