package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"placestay/internal/auth"
	"placestay/internal/repository/sqlite"
	"placestay/internal/service"
)

func newTestRouter(t *testing.T, loginBurst int) *gin.Engine {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	placeRepo := sqlite.NewPlaceRepository(db)
	bookingRepo := sqlite.NewBookingRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, placeRepo.Init(ctx))
	require.NoError(t, bookingRepo.Init(ctx))

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	guard := auth.NewGuard(userRepo, tokens)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	handler := NewHandler(
		service.NewUserService(userRepo, guard, tokens),
		service.NewPlaceService(placeRepo, guard),
		service.NewBookingService(bookingRepo, placeRepo, guard),
		guard,
		logger,
		NewLoginLimiter(rate.Limit(1), loginBurst),
		time.Hour,
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router *gin.Engine, name, email, password string) (int64, string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))

	var token string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == tokenCookie {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token, "login must set the token cookie")
	return user.ID, token
}

func TestRegisterLoginProfile(t *testing.T) {
	router := newTestRouter(t, 100)

	userID, token := registerAndLogin(t, router, "Ann", "ann@x.com", "secret123")

	rec := doJSON(t, router, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, userID, profile.ID)
	assert.Equal(t, "ann@x.com", profile.Email)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestProfileAnonymous(t *testing.T) {
	router := newTestRouter(t, 100)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/profile", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String())
}

func TestLoginFailuresAreUniform(t *testing.T) {
	router := newTestRouter(t, 100)
	registerAndLogin(t, router, "Ann", "ann@x.com", "secret123")

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ann@x.com", "password": "wrong-password",
	})
	unknownEmail := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ghost@x.com", "password": "secret123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	router := newTestRouter(t, 100)
	registerAndLogin(t, router, "Ann", "ann@x.com", "secret123")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Imposter", "email": "ann@x.com", "password": "different1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPlaceOwnershipOverHTTP(t *testing.T) {
	router := newTestRouter(t, 100)
	annID, annToken := registerAndLogin(t, router, "Ann", "ann@x.com", "secret123")
	_, bobToken := registerAndLogin(t, router, "Bob", "bob@x.com", "secret456")

	rec := doJSON(t, router, http.MethodPost, "/api/places", annToken, gin.H{
		"title": "Sea cottage", "price": 120,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var place PlaceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &place))
	assert.Equal(t, annID, place.OwnerID)

	// unauthenticated mutation
	rec = doJSON(t, router, http.MethodPut, "/api/places/1", "", gin.H{"title": "Stolen"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// authenticated but not the owner
	rec = doJSON(t, router, http.MethodPut, "/api/places/1", bobToken, gin.H{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the owner may update
	rec = doJSON(t, router, http.MethodPut, "/api/places/1", annToken, gin.H{"title": "Renovated"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/places/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &place))
	assert.Equal(t, "Renovated", place.Title)
	assert.Equal(t, annID, place.OwnerID)
}

func TestUserPlacesScoped(t *testing.T) {
	router := newTestRouter(t, 100)
	_, annToken := registerAndLogin(t, router, "Ann", "ann@x.com", "secret123")
	_, bobToken := registerAndLogin(t, router, "Bob", "bob@x.com", "secret456")

	rec := doJSON(t, router, http.MethodPost, "/api/places", annToken, gin.H{"title": "Ann's cottage"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/places", bobToken, gin.H{"title": "Bob's flat"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/user/places", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var places []PlaceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &places))
	require.Len(t, places, 1)
	assert.Equal(t, "Ann's cottage", places[0].Title)
}

func TestBookingsOverHTTP(t *testing.T) {
	router := newTestRouter(t, 100)
	_, annToken := registerAndLogin(t, router, "Ann", "ann@x.com", "secret123")
	bobID, bobToken := registerAndLogin(t, router, "Bob", "bob@x.com", "secret456")

	rec := doJSON(t, router, http.MethodPost, "/api/places", annToken, gin.H{"title": "Sea cottage"})
	require.Equal(t, http.StatusCreated, rec.Code)

	checkIn := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	checkOut := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)

	rec = doJSON(t, router, http.MethodPost, "/api/bookings", bobToken, gin.H{
		"place_id": 1, "check_in": checkIn, "check_out": checkOut,
		"number_of_guests": 2, "name": "Bob", "phone": "555-0100", "price": 240,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/bookings", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var bookings []BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, bobID, bookings[0].UserID)
	require.NotNil(t, bookings[0].Place)
	assert.Equal(t, "Sea cottage", bookings[0].Place.Title)

	// bookings are scoped to their user
	rec = doJSON(t, router, http.MethodGet, "/api/bookings", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
	assert.Empty(t, bookings)
}

func TestLoginRateLimited(t *testing.T) {
	router := newTestRouter(t, 2)

	var limited bool
	for i := 0; i < 5; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "ann@x.com", "password": "whatever1",
		})
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected the limiter to kick in within the attempt burst")
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newTestRouter(t, 100)
	_, token := registerAndLogin(t, router, "Ann", "ann@x.com", "secret123")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == tokenCookie && cookie.Value == "" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout must clear the token cookie")

	// the discarded token itself stays valid until expiry (no revocation)
	rec = doJSON(t, router, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "null", rec.Body.String())
}
