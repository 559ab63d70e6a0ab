package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"staybook/internal/cart"
	"staybook/internal/domain"
	"staybook/internal/middleware"
	"staybook/internal/ws"
)

// cartResponse is the snapshot payload returned by every cart endpoint.
type cartResponse struct {
	Activities []domain.Activity `json:"activities"`
	Count      int               `json:"count"`
}

func newCartResponse(store *cart.Store) cartResponse {
	acts := store.Activities()
	if acts == nil {
		acts = []domain.Activity{}
	}
	return cartResponse{Activities: acts, Count: len(acts)}
}

// GetCart handles GET /houses/{id}/cart.
func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := s.cartStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

// AddToCart handles POST /houses/{id}/cart. The body is the activity to add.
// Adding an activity already in the cart is a no-op; the response reports
// whether the cart actually changed.
func (s *Server) AddToCart(w http.ResponseWriter, r *http.Request) {
	store, ok := s.cartStore(w, r)
	if !ok {
		return
	}

	var activity domain.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("request body must be a JSON activity"))
		return
	}
	if activity.ID <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("activity id is required"))
		return
	}

	added := store.Add(r.Context(), activity)
	writeJSON(w, http.StatusOK, struct {
		Added bool `json:"added"`
		cartResponse
	}{Added: added, cartResponse: newCartResponse(store)})
}

// RemoveFromCart handles DELETE /houses/{id}/cart/{activityID}.
func (s *Server) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	store, ok := s.cartStore(w, r)
	if !ok {
		return
	}

	activityID, err := strconv.ParseInt(chi.URLParam(r, "activityID"), 10, 64)
	if err != nil || activityID <= 0 {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid activity id"))
		return
	}

	removed := store.Remove(r.Context(), activityID)
	writeJSON(w, http.StatusOK, struct {
		Removed bool `json:"removed"`
		cartResponse
	}{Removed: removed, cartResponse: newCartResponse(store)})
}

// ClearCart handles DELETE /houses/{id}/cart.
func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := s.cartStore(w, r)
	if !ok {
		return
	}
	store.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// checkOrigin applies the same origin policy as the CORS middleware to the
// WebSocket handshake. Browsers send cookies on cross-origin handshakes, so
// without this any page could open a visitor's cart event stream.
// Same-origin requests and requests without an Origin header pass.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return slices.Contains(s.allowedOrigins, origin)
}

// CartEvents handles GET /houses/{id}/cart/events. It upgrades to a
// WebSocket and streams cart snapshots for this visitor's cart on this house
// until the client disconnects.
func (s *Server) CartEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.houseID(w, r)
	if !ok {
		return
	}
	visitor := middleware.VisitorID(r.Context())
	room := ws.CartRoom(visitor, id)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.log.DebugContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient()
	s.hub.Register(room, client)

	// Reader: we accept no client messages, but reading is how we learn
	// about disconnects.
	go func() {
		defer func() {
			s.hub.Unregister(room, client)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Writer: drain the hub channel until Unregister closes it.
	go func() {
		for msg := range client.Send() {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
		_ = conn.Close()
	}()
}

// cartStore resolves the cart for the request's (visitor, house) scope and
// loads it, writing the error response itself when the house id is bad.
func (s *Server) cartStore(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	id, ok := s.houseID(w, r)
	if !ok {
		return nil, false
	}
	store := s.carts.Store(middleware.VisitorID(r.Context()), id)
	store.Load(r.Context())
	return store, true
}
