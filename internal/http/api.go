package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"placestay/internal/auth"
	"placestay/internal/domain"
	"placestay/internal/repository"
	"placestay/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	places       service.PlaceService
	bookings     service.BookingService
	guard        *auth.Guard
	logger       *logrus.Logger
	loginLimiter *LoginLimiter
	tokenTTL     time.Duration
}

func NewHandler(
	users service.UserService,
	places service.PlaceService,
	bookings service.BookingService,
	guard *auth.Guard,
	logger *logrus.Logger,
	loginLimiter *LoginLimiter,
	tokenTTL time.Duration,
) *Handler {
	return &Handler{
		users:        users,
		places:       places,
		bookings:     bookings,
		guard:        guard,
		logger:       logger,
		loginLimiter: loginLimiter,
		tokenTTL:     tokenTTL,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", h.register)
			authRoutes.POST("/login", h.loginLimiter.Middleware(), h.login)
			authRoutes.POST("/logout", h.logout)
			authRoutes.GET("/profile", h.profile)
		}

		api.GET("/places", h.listPlaces)
		api.GET("/places/:id", h.getPlace)

		authed := api.Group("", requireAuth(h.guard))
		{
			authed.POST("/places", h.createPlace)
			authed.PUT("/places/:id", h.updatePlace)
			authed.GET("/user/places", h.listOwnPlaces)
			authed.POST("/bookings", h.createBooking)
			authed.GET("/bookings", h.listBookings)
		}
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type placeRequest struct {
	Title       string   `json:"title" binding:"required"`
	Address     string   `json:"address"`
	Photos      []string `json:"photos"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	ExtraInfo   string   `json:"extra_info"`
	CheckIn     string   `json:"check_in"`
	CheckOut    string   `json:"check_out"`
	MaxGuests   int      `json:"max_guests"`
	Price       int64    `json:"price"`
}

type bookingRequest struct {
	PlaceID        int64     `json:"place_id" binding:"required"`
	CheckIn        time.Time `json:"check_in" binding:"required"`
	CheckOut       time.Time `json:"check_out" binding:"required"`
	NumberOfGuests int       `json:"number_of_guests"`
	Name           string    `json:"name" binding:"required"`
	Phone          string    `json:"phone"`
	Price          int64     `json:"price"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, _, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setTokenCookie(c, token, int(h.tokenTTL.Seconds()))
	c.JSON(http.StatusOK, userToResponse(user))
}

// logout clears the client-held cookie. The token itself stays valid until
// expiry; there is no server-side revocation.
func (h *Handler) logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) profile(c *gin.Context) {
	identity, err := h.guard.AuthenticateToken(extractToken(c))
	if err != nil {
		// the original API answers an anonymous profile request with null
		c.JSON(http.StatusOK, nil)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), identity.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) createPlace(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	place, err := h.places.Create(c.Request.Context(), identity, placeInputFromRequest(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placeToResponse(*place))
}

func (h *Handler) updatePlace(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid place id"})
		return
	}

	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	place, err := h.places.Update(c.Request.Context(), identity, id, placeInputFromRequest(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, placeToResponse(*place))
}

func (h *Handler) getPlace(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid place id"})
		return
	}

	place, err := h.places.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, placeToResponse(*place))
}

func (h *Handler) listPlaces(c *gin.Context) {
	places, err := h.places.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, placesToResponse(places))
}

func (h *Handler) listOwnPlaces(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	places, err := h.places.ListByOwner(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, placesToResponse(places))
}

func (h *Handler) createBooking(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), identity, service.BookingInput{
		PlaceID:        req.PlaceID,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		NumberOfGuests: req.NumberOfGuests,
		Name:           req.Name,
		Phone:          req.Phone,
		Price:          req.Price,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bookingToResponse(*booking))
}

func (h *Handler) listBookings(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	bookings, err := h.bookings.ListForUser(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = bookingToResponse(bookings[i])
	}
	c.JSON(http.StatusOK, resp)
}

// respondError maps domain failures onto HTTP statuses. Authentication
// failures stay generic so responses never reveal whether an account exists;
// anything unclassified is a storage-level fault reported as 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, auth.ErrEmptyPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, auth.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, auth.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, token, maxAge, "/", "", false, true)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type PlaceResponse struct {
	ID          int64    `json:"id"`
	OwnerID     int64    `json:"owner_id"`
	Title       string   `json:"title"`
	Address     string   `json:"address"`
	Photos      []string `json:"photos"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	ExtraInfo   string   `json:"extra_info"`
	CheckIn     string   `json:"check_in"`
	CheckOut    string   `json:"check_out"`
	MaxGuests   int      `json:"max_guests"`
	Price       int64    `json:"price"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type BookingResponse struct {
	ID             int64          `json:"id"`
	PlaceID        int64          `json:"place_id"`
	UserID         int64          `json:"user_id"`
	CheckIn        string         `json:"check_in"`
	CheckOut       string         `json:"check_out"`
	NumberOfGuests int            `json:"number_of_guests"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Price          int64          `json:"price"`
	CreatedAt      string         `json:"created_at"`
	Place          *PlaceResponse `json:"place,omitempty"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func placeToResponse(place domain.Place) PlaceResponse {
	return PlaceResponse{
		ID:          place.ID,
		OwnerID:     place.OwnerID,
		Title:       place.Title,
		Address:     place.Address,
		Photos:      place.Photos,
		Description: place.Description,
		Perks:       place.Perks,
		ExtraInfo:   place.ExtraInfo,
		CheckIn:     place.CheckIn,
		CheckOut:    place.CheckOut,
		MaxGuests:   place.MaxGuests,
		Price:       place.Price,
		CreatedAt:   place.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   place.UpdatedAt.Format(time.RFC3339),
	}
}

func placesToResponse(places []domain.Place) []PlaceResponse {
	resp := make([]PlaceResponse, len(places))
	for i := range places {
		resp[i] = placeToResponse(places[i])
	}
	return resp
}

func bookingToResponse(booking domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:             booking.ID,
		PlaceID:        booking.PlaceID,
		UserID:         booking.UserID,
		CheckIn:        booking.CheckIn.Format(time.RFC3339),
		CheckOut:       booking.CheckOut.Format(time.RFC3339),
		NumberOfGuests: booking.NumberOfGuests,
		Name:           booking.Name,
		Phone:          booking.Phone,
		Price:          booking.Price,
		CreatedAt:      booking.CreatedAt.Format(time.RFC3339),
	}
	if booking.Place != nil {
		place := placeToResponse(*booking.Place)
		resp.Place = &place
	}
	return resp
}

func placeInputFromRequest(req placeRequest) service.PlaceInput {
	return service.PlaceInput{
		Title:       req.Title,
		Address:     req.Address,
		Photos:      req.Photos,
		Description: req.Description,
		Perks:       req.Perks,
		ExtraInfo:   req.ExtraInfo,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		MaxGuests:   req.MaxGuests,
		Price:       req.Price,
	}
}
