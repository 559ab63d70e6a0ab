package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain"
	"staybook/internal/filter"
	"staybook/internal/service"
)

// ---- mock HouseAPI ---------------------------------------------------------

type mockHouseAPI struct {
	search     func(ctx context.Context, token string, p filter.Params) (domain.HousePage, error)
	get        func(ctx context.Context, token string, id int64) (domain.House, error)
	activities func(ctx context.Context, token string, hostID int64, page int) (domain.ActivityPage, error)
}

func (m *mockHouseAPI) SearchHouses(ctx context.Context, token string, p filter.Params) (domain.HousePage, error) {
	return m.search(ctx, token, p)
}
func (m *mockHouseAPI) GetHouse(ctx context.Context, token string, id int64) (domain.House, error) {
	return m.get(ctx, token, id)
}
func (m *mockHouseAPI) ListHostActivities(ctx context.Context, token string, hostID int64, page int) (domain.ActivityPage, error) {
	return m.activities(ctx, token, hostID, page)
}

var _ service.HouseAPI = (*mockHouseAPI)(nil)

// ---- Search ----------------------------------------------------------------

func TestHouseService_Search_PassesFilterThrough(t *testing.T) {
	var gotParams filter.Params
	svc := service.NewHouseService(&mockHouseAPI{
		search: func(_ context.Context, token string, p filter.Params) (domain.HousePage, error) {
			assert.Equal(t, "tok", token)
			gotParams = p
			return domain.HousePage{Houses: []domain.House{{ID: 1}}}, nil
		},
	}, nil, nil)

	p := filter.Default()
	p.Bedrooms = 3
	page, err := svc.Search(context.Background(), "tok", p)

	require.NoError(t, err)
	assert.Equal(t, 3, gotParams.Bedrooms)
	assert.Len(t, page.Houses, 1)
}

func TestHouseService_Search_WrapsUpstreamError(t *testing.T) {
	svc := service.NewHouseService(&mockHouseAPI{
		search: func(context.Context, string, filter.Params) (domain.HousePage, error) {
			return domain.HousePage{}, domain.ErrUpstream
		},
	}, nil, nil)

	_, err := svc.Search(context.Background(), "", filter.Default())

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

// ---- Get -------------------------------------------------------------------

func TestHouseService_Get_NotFoundPropagates(t *testing.T) {
	svc := service.NewHouseService(&mockHouseAPI{
		get: func(context.Context, string, int64) (domain.House, error) {
			return domain.House{}, domain.ErrNotFound
		},
	}, nil, nil)

	_, err := svc.Get(context.Background(), "", 99)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHouseService_HostActivities(t *testing.T) {
	svc := service.NewHouseService(&mockHouseAPI{
		activities: func(_ context.Context, _ string, hostID int64, page int) (domain.ActivityPage, error) {
			assert.Equal(t, int64(42), hostID)
			assert.Equal(t, 2, page)
			return domain.ActivityPage{Activities: []domain.Activity{{ID: 7}}}, nil
		},
	}, nil, nil)

	got, err := svc.HostActivities(context.Background(), "", 42, 2)

	require.NoError(t, err)
	assert.Len(t, got.Activities, 1)
}

// ---- AuthService -----------------------------------------------------------

type mockAuthAPI struct {
	login    func(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error)
	register func(ctx context.Context, reg domain.Registration) (domain.AuthResult, error)
}

func (m *mockAuthAPI) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error) {
	return m.login(ctx, creds)
}
func (m *mockAuthAPI) Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error) {
	return m.register(ctx, reg)
}

var _ service.AuthAPI = (*mockAuthAPI)(nil)

func TestAuthService_Login_RequiresCredentials(t *testing.T) {
	svc := service.NewAuthService(&mockAuthAPI{})

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "  "})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_Login_OK(t *testing.T) {
	svc := service.NewAuthService(&mockAuthAPI{
		login: func(_ context.Context, creds domain.Credentials) (domain.AuthResult, error) {
			assert.Equal(t, "ana@example.com", creds.Email)
			return domain.AuthResult{Token: "tok", User: domain.User{ID: 3}}, nil
		},
	})

	res, err := svc.Login(context.Background(), domain.Credentials{Email: " ana@example.com ", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
}

func TestAuthService_Register_RejectsUnknownRole(t *testing.T) {
	svc := service.NewAuthService(&mockAuthAPI{})

	_, err := svc.Register(context.Background(), domain.Registration{
		Name: "Ana", Email: "a@b.c", Password: "pw", PasswordConfirmation: "pw", Role: "admin",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_Register_RejectsMismatchedConfirmation(t *testing.T) {
	svc := service.NewAuthService(&mockAuthAPI{})

	_, err := svc.Register(context.Background(), domain.Registration{
		Name: "Ana", Email: "a@b.c", Password: "pw", PasswordConfirmation: "other", Role: "traveller",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_Register_FieldErrorsPassThrough(t *testing.T) {
	fieldErrs := domain.FieldErrors{"email": {"The email has already been taken."}}
	svc := service.NewAuthService(&mockAuthAPI{
		register: func(context.Context, domain.Registration) (domain.AuthResult, error) {
			return domain.AuthResult{}, fieldErrs
		},
	})

	_, err := svc.Register(context.Background(), domain.Registration{
		Name: "Ana", Email: "a@b.c", Password: "pw", PasswordConfirmation: "pw", Role: "host",
	})

	var fe domain.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "email")
}
