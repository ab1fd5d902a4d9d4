package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/harukimoto/teamtrack-api/internal/constants"
	"github.com/harukimoto/teamtrack-api/internal/database"
	"github.com/harukimoto/teamtrack-api/internal/dto"
	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/repository"
	"github.com/harukimoto/teamtrack-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Membership{},
		&models.PasswordResetRequest{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	authService := services.NewAuthService(userRepo, companyRepo, resetRepo)
	handler := NewAuthHandler(authService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
	}
}

func newAuthRouter(env authTestEnv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/signup", env.handler.Signup)
	r.POST("/api/auth/login", env.handler.Login)
	r.POST("/api/auth/password-reset", env.handler.ConsumePasswordReset)
	return r
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	payload := map[string]string{
		"name":         "Founder",
		"email":        "founder@acme.test",
		"password":     "supersecret",
		"company_name": "Acme",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		User    dto.UserDTO    `json:"user"`
		Company dto.CompanyDTO `json:"company"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "founder@acme.test", response.User.Email)
	require.Equal(t, "Acme", response.Company.Name)
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	_, _, err := env.authService.Signup(services.SignupInput{
		Name:        "Founder",
		Email:       "founder@acme.test",
		Password:    "supersecret",
		CompanyName: "Acme",
	})
	require.NoError(t, err)

	payload := map[string]string{
		"name":         "Other",
		"email":        "founder@acme.test",
		"password":     "supersecret",
		"company_name": "Other Co",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	_, _, err := env.authService.Signup(services.SignupInput{
		Name:        "Founder",
		Email:       "founder@acme.test",
		Password:    "supersecret",
		CompanyName: "Acme",
	})
	require.NoError(t, err)

	payload := map[string]string{
		"email":    "founder@acme.test",
		"password": "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "founder@acme.test", response.Email)

	// A session cookie is set on successful login
	require.NotEmpty(t, w.Result().Cookies())
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	_, _, err := env.authService.Signup(services.SignupInput{
		Name:        "Founder",
		Email:       "founder@acme.test",
		Password:    "supersecret",
		CompanyName: "Acme",
	})
	require.NoError(t, err)

	payload := map[string]string{
		"email":    "founder@acme.test",
		"password": "wrongpassword",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ConsumePasswordReset(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	owner, company, err := env.authService.Signup(services.SignupInput{
		Name:        "Founder",
		Email:       "founder@acme.test",
		Password:    "supersecret",
		CompanyName: "Acme",
	})
	require.NoError(t, err)

	request, err := env.authService.RequestPasswordReset(owner.ID, owner.ID, company.ID)
	require.NoError(t, err)

	payload := map[string]string{
		"token":        request.Token,
		"new_password": "freshpassword",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/password-reset", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	_, err = env.authService.Login(services.LoginInput{
		Email:    "founder@acme.test",
		Password: "freshpassword",
	})
	require.NoError(t, err)
}

func TestAuthHandler_ConsumePasswordReset_UnknownToken(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	payload := map[string]string{
		"token":        "bogus",
		"new_password": "freshpassword",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/password-reset", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
