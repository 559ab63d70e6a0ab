package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"staybook/internal/cart"
	"staybook/internal/domain"
	"staybook/internal/favorite"
	"staybook/internal/filter"
	"staybook/internal/handler"
	"staybook/internal/middleware"
	"staybook/internal/ws"
)

// mockHouseServicer is a test double for handler.HouseServicer.
// Set only the method fields your test needs.
type mockHouseServicer struct {
	search         func(ctx context.Context, token string, p filter.Params) (domain.HousePage, error)
	get            func(ctx context.Context, token string, id int64) (domain.House, error)
	hostActivities func(ctx context.Context, token string, hostID int64, page int) (domain.ActivityPage, error)
}

func (m *mockHouseServicer) Search(ctx context.Context, token string, p filter.Params) (domain.HousePage, error) {
	return m.search(ctx, token, p)
}
func (m *mockHouseServicer) Get(ctx context.Context, token string, id int64) (domain.House, error) {
	return m.get(ctx, token, id)
}
func (m *mockHouseServicer) HostActivities(ctx context.Context, token string, hostID int64, page int) (domain.ActivityPage, error) {
	return m.hostActivities(ctx, token, hostID, page)
}

var _ handler.HouseServicer = (*mockHouseServicer)(nil)

// mockAuthServicer is a test double for handler.AuthServicer.
type mockAuthServicer struct {
	login    func(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error)
	register func(ctx context.Context, reg domain.Registration) (domain.AuthResult, error)
}

func (m *mockAuthServicer) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error) {
	return m.login(ctx, creds)
}
func (m *mockAuthServicer) Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error) {
	return m.register(ctx, reg)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

// mockToggler is a test double for handler.FavoriteToggler.
type mockToggler struct {
	mu    sync.Mutex
	state map[favorite.Key]bool
	set   func(ctx context.Context, token string, key favorite.Key, want bool) (bool, error)
}

func newMockToggler() *mockToggler {
	return &mockToggler{state: make(map[favorite.Key]bool)}
}

func (m *mockToggler) Seed(key favorite.Key, fav bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state[key]; !ok {
		m.state[key] = fav
	}
}
func (m *mockToggler) IsFavorite(key favorite.Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state[key]
}
func (m *mockToggler) Set(ctx context.Context, token string, key favorite.Key, want bool) (bool, error) {
	if m.set != nil {
		return m.set(ctx, token, key, want)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[key] = want
	return want, nil
}

var _ handler.FavoriteToggler = (*mockToggler)(nil)

// memPersister keeps carts in a map, standing in for the Postgres repo.
type memPersister struct {
	mu    sync.Mutex
	carts map[cart.Key][]domain.Activity
}

func newMemPersister() *memPersister {
	return &memPersister{carts: make(map[cart.Key][]domain.Activity)}
}

func (m *memPersister) Load(ctx context.Context, visitor uuid.UUID, houseID int64) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acts, ok := m.carts[cart.Key{Visitor: visitor, HouseID: houseID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return acts, nil
}

func (m *memPersister) Save(ctx context.Context, visitor uuid.UUID, houseID int64, activities []domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[cart.Key{Visitor: visitor, HouseID: houseID}] = activities
	return nil
}

var _ cart.Persister = (*memPersister)(nil)

// ---- helpers ---------------------------------------------------------------

type testServer struct {
	handler   http.Handler
	houses    *mockHouseServicer
	auth      *mockAuthServicer
	favorites *mockToggler
	hub       *ws.Hub
}

// newTestServer wires a Server the way main.go does, with mocks in place of
// the upstream-backed services and an in-memory cart persister.
func newTestServer(t *testing.T, opts ...handler.Option) *testServer {
	t.Helper()
	ts := &testServer{
		houses:    &mockHouseServicer{},
		auth:      &mockAuthServicer{},
		favorites: newMockToggler(),
		hub:       ws.NewHub(nil),
	}
	manager := cart.NewManager(newMemPersister(), nil, nil)
	srv := handler.NewServer(ts.houses, ts.auth, ts.favorites, manager, ts.hub, opts...)
	ts.handler = srv.Routes()
	return ts
}

func houseFixture() domain.House {
	return domain.House{
		ID:            7,
		OwnerID:       3,
		Title:         "Harbour loft",
		Country:       "Portugal",
		City:          "Porto",
		PropertyType:  "apartment",
		PricePerNight: "120.00",
		Guests:        4,
		Bedrooms:      2,
		Bathrooms:     1,
	}
}

func activityFixture(id int64, amount string) domain.Activity {
	return domain.Activity{
		ID:            id,
		HostID:        3,
		Title:         "Harbour kayak tour",
		PaymentAmount: amount,
		IsActive:      true,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func favKey(visitor uuid.UUID, houseID int64) favorite.Key {
	return favorite.Key{Visitor: visitor, HouseID: houseID}
}

// visitorCookie pins the anonymous visitor identity so consecutive requests
// in one test land on the same cart and favorite scope.
func visitorCookie(id uuid.UUID) *http.Cookie {
	return &http.Cookie{Name: middleware.VisitorCookie, Value: id.String()}
}

func tokenCookie(value string) *http.Cookie {
	return &http.Cookie{Name: middleware.TokenCookie, Value: value}
}
