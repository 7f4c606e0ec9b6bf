package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sportscube-api/internal/handler"
	"sportscube-api/internal/middleware"
	"sportscube-api/internal/model"
	"sportscube-api/internal/store"
	"sportscube-api/pkg/config"
	"sportscube-api/pkg/jwtutil"
)

const testSecret = "test-secret-for-handler-tests"

type testApp struct {
	e     *echo.Echo
	store *store.Store
	jwt   *jwtutil.JWTUtil
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open DB: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Order{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	jwtUtil := jwtutil.New(&config.JWTConfig{SigningKey: testSecret, ExpirationHours: 1})
	st := store.New(db)
	h := handler.New(st, jwtUtil)

	e := echo.New()
	e.POST("/signup", h.Signup)
	e.POST("/login", h.Login)
	authGuard := middleware.JWTAuthMiddleware(jwtUtil)
	e.GET("/profile", h.GetProfile, authGuard)
	e.POST("/place-order", h.PlaceOrder, authGuard)

	return &testApp{e: e, store: st, jwt: jwtUtil}
}

func (a *testApp) request(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var parsed map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("parse response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, parsed
}

// signupAndLogin creates a user and returns a valid token for it.
func (a *testApp) signupAndLogin(t *testing.T, email string) (uint, string) {
	t.Helper()
	rec, body := a.request(t, http.MethodPost, "/signup",
		`{"name":"A","email":"`+email+`","password":"pw","phone":"555","address":"Street 1"}`, "")
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("signup failed: %d %v", rec.Code, body)
	}

	rec, body = a.request(t, http.MethodPost, "/login",
		`{"email":"`+email+`","password":"pw"}`, "")
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("login failed: %d %v", rec.Code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	user := body["user"].(map[string]interface{})
	return uint(user["id"].(float64)), token
}

func TestSignup_Success(t *testing.T) {
	app := newTestApp(t)

	rec, body := app.request(t, http.MethodPost, "/signup",
		`{"name":"A","email":"a@x.com","password":"pw"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}

	user, err := app.store.FindUserByEmail("a@x.com")
	if err != nil || user == nil {
		t.Fatalf("user row not created: %v", err)
	}
	if user.Password == "pw" {
		t.Fatal("password stored in plaintext")
	}
}

func TestSignup_MissingFields(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{
		`{"email":"a@x.com","password":"pw"}`,
		`{"name":"A","password":"pw"}`,
		`{"name":"A","email":"a@x.com"}`,
	} {
		rec, resp := app.request(t, http.MethodPost, "/signup", body, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
		if resp["success"] != false {
			t.Errorf("body %s: expected success:false, got %v", body, resp)
		}
	}
}

func TestSignup_Duplicate(t *testing.T) {
	app := newTestApp(t)

	payload := `{"name":"A","email":"a@x.com","password":"pw"}`
	rec, _ := app.request(t, http.MethodPost, "/signup", payload, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("first signup: expected 200, got %d", rec.Code)
	}

	// The duplicate comes back as 200 with success:false, and no second row
	rec, body := app.request(t, http.MethodPost, "/signup", payload, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate signup: expected 200, got %d", rec.Code)
	}
	if body["success"] != false || body["message"] != "User already exists!" {
		t.Fatalf("unexpected duplicate response: %v", body)
	}

	var count int64
	if err := app.store.DB().Model(&model.User{}).Where("email = ?", "a@x.com").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user row, got %d", count)
	}
}

func TestLogin_Success(t *testing.T) {
	app := newTestApp(t)
	app.request(t, http.MethodPost, "/signup",
		`{"name":"A","email":"a@x.com","password":"pw","phone":"555","address":"Street 1"}`, "")

	rec, body := app.request(t, http.MethodPost, "/login", `{"email":"a@x.com","password":"pw"}`, "")
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("expected success, got %d %v", rec.Code, body)
	}

	token, _ := body["token"].(string)
	claims, err := app.jwt.ValidateToken(token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}

	user := body["user"].(map[string]interface{})
	if user["email"] != "a@x.com" {
		t.Fatalf("unexpected user projection: %v", user)
	}
	if uint(user["id"].(float64)) != claims.UserID {
		t.Fatalf("token user id %d does not match user %v", claims.UserID, user["id"])
	}
	if _, ok := user["password"]; ok {
		t.Fatal("password hash leaked in login response")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.request(t, http.MethodPost, "/signup", `{"name":"A","email":"a@x.com","password":"pw"}`, "")

	rec, body := app.request(t, http.MethodPost, "/login", `{"email":"a@x.com","password":"wrong"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != false || body["message"] != "Incorrect password!" {
		t.Fatalf("unexpected response: %v", body)
	}
	if _, ok := body["token"]; ok {
		t.Fatal("token issued for wrong password")
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	app := newTestApp(t)

	rec, body := app.request(t, http.MethodPost, "/login", `{"email":"nobody@x.com","password":"pw"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != false || body["message"] != "User not found!" {
		t.Fatalf("unexpected response: %v", body)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	app := newTestApp(t)

	rec, _ := app.request(t, http.MethodPost, "/login", `{"email":"a@x.com"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProfile(t *testing.T) {
	app := newTestApp(t)
	userID, token := app.signupAndLogin(t, "a@x.com")

	rec, body := app.request(t, http.MethodGet, "/profile", "", token)
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("expected success, got %d %v", rec.Code, body)
	}
	user := body["user"].(map[string]interface{})
	if uint(user["id"].(float64)) != userID {
		t.Fatalf("profile reports wrong identity: %v", user)
	}
	if user["email"] != "a@x.com" || user["phone"] != "555" || user["address"] != "Street 1" {
		t.Fatalf("unexpected projection: %v", user)
	}
}

func TestProfile_ReportsOwnIdentity(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "first@x.com")
	secondID, secondToken := app.signupAndLogin(t, "second@x.com")

	_, body := app.request(t, http.MethodGet, "/profile", "", secondToken)
	user := body["user"].(map[string]interface{})
	if uint(user["id"].(float64)) != secondID || user["email"] != "second@x.com" {
		t.Fatalf("profile leaked another user's identity: %v", user)
	}
}

func TestPlaceOrder(t *testing.T) {
	app := newTestApp(t)
	userID, token := app.signupAndLogin(t, "a@x.com")

	rec, body := app.request(t, http.MethodPost, "/place-order",
		`{"cartItems":[{"name":"Jersey","size":"M","price":29.99,"quantity":2},{"name":"Cap","size":"L","price":9.5,"quantity":1}],"phone":"555","address":"Street 1"}`,
		token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", rec.Code, body)
	}
	if body["message"] != "Order placed successfully!" {
		t.Fatalf("unexpected response: %v", body)
	}

	var orders []model.Order
	if err := app.store.DB().Find(&orders).Error; err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 order rows, got %d", len(orders))
	}
	for _, o := range orders {
		if o.UserID != userID {
			t.Fatalf("order %d owned by %d, want %d", o.ID, o.UserID, userID)
		}
		if o.Phone != "555" || o.Address != "Street 1" {
			t.Fatalf("delivery contact not stored: %+v", o)
		}
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	app := newTestApp(t)
	_, token := app.signupAndLogin(t, "a@x.com")

	rec, body := app.request(t, http.MethodPost, "/place-order",
		`{"cartItems":[],"phone":"555","address":"Street 1"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["message"] != "Cart is empty" {
		t.Fatalf("unexpected response: %v", body)
	}

	var count int64
	app.store.DB().Model(&model.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no inserts, got %d rows", count)
	}
}

func TestPlaceOrder_MissingContact(t *testing.T) {
	app := newTestApp(t)
	_, token := app.signupAndLogin(t, "a@x.com")

	rec, body := app.request(t, http.MethodPost, "/place-order",
		`{"cartItems":[{"name":"Jersey","size":"M","price":29.99,"quantity":1}],"phone":"","address":"Street 1"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["message"] != "Phone and address required" {
		t.Fatalf("unexpected response: %v", body)
	}
}

func TestPlaceOrder_InvalidItems(t *testing.T) {
	app := newTestApp(t)
	_, token := app.signupAndLogin(t, "a@x.com")

	for _, payload := range []string{
		`{"cartItems":[{"name":"Jersey","size":"M","price":-1,"quantity":1}],"phone":"555","address":"x"}`,
		`{"cartItems":[{"name":"Jersey","size":"M","price":10,"quantity":0}],"phone":"555","address":"x"}`,
		`{"cartItems":[{"name":"Jersey","size":"M","price":"abc","quantity":1}],"phone":"555","address":"x"}`,
	} {
		rec, _ := app.request(t, http.MethodPost, "/place-order", payload, token)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s: expected 400, got %d", payload, rec.Code)
		}
	}

	var count int64
	app.store.DB().Model(&model.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no inserts, got %d rows", count)
	}
}

func TestGuardedRoutes_RequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/place-order"},
	} {
		rec, body := app.request(t, route.method, route.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
		if body["message"] != "Access denied" {
			t.Errorf("%s %s: unexpected body %v", route.method, route.path, body)
		}

		rec, body = app.request(t, route.method, route.path, "", "garbage.token.here")
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s with bad token: expected 403, got %d", route.method, route.path, rec.Code)
		}
		if body["message"] != "Invalid token" {
			t.Errorf("%s %s with bad token: unexpected body %v", route.method, route.path, body)
		}
	}
}
