package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sportscube-api/internal/model"
	"sportscube-api/pkg/logger"
	"sportscube-api/prometheus"
)

// Signup handles POST /signup. Duplicate signups come back as HTTP 200
// with success:false, which existing clients depend on.
func (h *Handler) Signup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignupCounter.Inc()

	// Parse request
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Name, email, and password are required!",
		})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		log.Warn("Incomplete signup request",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError("incomplete_signup")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Name, email, and password are required!",
		})
	}

	// Check if a user already exists - fast path only, the unique index
	// on email is the real guard
	defer prometheus.TrackDBOperation("query")(time.Now())
	existing, err := h.store.FindUserByEmail(req.Email)
	if err != nil {
		log.Error("Failed to look up user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Server error during signup",
		})
	}
	if existing != nil {
		log.Warn("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": "User already exists!",
		})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Server error during signup",
		})
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Phone:    req.Phone,
		Address:  req.Address,
	}

	// Save to database
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateUser(&user); err != nil {
		log.Error("Failed to create user", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Server error during signup",
		})
	}

	log.Info("User registered", zap.String("email", user.Email), zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Account created successfully!",
	})
}

// Login handles POST /login. Unknown users and wrong passwords come back
// as HTTP 200 with success:false, matching the signup contract.
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Email and password required",
		})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Email and password required",
		})
	}

	// Find user in database
	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.store.FindUserByEmail(req.Email)
	if err != nil {
		log.Error("Failed to look up user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Server error during login",
		})
	}
	if user == nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": "User not found!",
		})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": "Incorrect password!",
		})
	}

	// Generate JWT token
	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Server error during login",
		})
	}

	prometheus.IncreaseActiveTokens()

	log.Info("User logged in", zap.String("email", user.Email), zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Login successful!",
		"token":   token,
		"user":    user.Public(),
	})
}
