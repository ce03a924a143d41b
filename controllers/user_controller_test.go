package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/Mayank561/ECOMMERCE-API/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserService struct {
	registered *services.UserInput
	created    *services.UserInput
	err        error
}

func (f *fakeUserService) List(ctx context.Context) ([]models.User, error) {
	return []models.User{{Name: "Ann", PasswordHash: "$2a$10$secret"}}, f.err
}

func (f *fakeUserService) Get(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{Name: "Ann", PasswordHash: "$2a$10$secret"}, nil
}

func (f *fakeUserService) Create(ctx context.Context, in services.UserInput) (*models.User, error) {
	f.created = &in
	return f.user(in)
}

func (f *fakeUserService) Register(ctx context.Context, in services.UserInput) (*models.User, error) {
	f.registered = &in
	return f.user(in)
}

func (f *fakeUserService) user(in services.UserInput) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: primitive.NewObjectID(), Name: in.Name, Email: in.Email, PasswordHash: "hash"}, nil
}

func (f *fakeUserService) Update(ctx context.Context, id string, in services.UserInput) (*models.User, error) {
	return f.user(in)
}

func (f *fakeUserService) Delete(ctx context.Context, id string) error { return f.err }

func (f *fakeUserService) Count(ctx context.Context) (int64, error) { return 2, f.err }

type fakeAuthService struct {
	email, password string
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	f.email, f.password = email, password
	if password != "pw" {
		return nil, apperrors.Auth("invalid email or password")
	}
	return &services.LoginResult{User: email, Token: "signed.jwt.token"}, nil
}

func newUserRouter(users UserServiceAPI, auth AuthServiceAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	ctrl := NewUserController(users, auth)
	r.GET("/users", ctrl.GetUsers)
	r.GET("/users/:id", ctrl.GetUser)
	r.POST("/users", ctrl.CreateUser)
	r.POST("/users/register", ctrl.Register)
	r.POST("/users/login", ctrl.Login)
	r.PUT("/users/:id", ctrl.UpdateUser)
	r.DELETE("/users/:id", ctrl.DeleteUser)
	r.GET("/users/get/count", ctrl.GetUserCount)
	return r
}

func TestLoginHandler(t *testing.T) {
	auth := &fakeAuthService{}
	r := newUserRouter(&fakeUserService{}, auth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/users/login", LoginRequest{Email: "ann@example.com", Password: "pw"}))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "ann@example.com", data["user"])
	assert.Equal(t, "signed.jwt.token", data["token"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/users/login", LoginRequest{Email: "ann@example.com", Password: "nope"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", decode(t, w)["error"])

	auth.email = ""
	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/users/login", LoginRequest{Email: "not-an-email", Password: "pw"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, auth.email)
}

func TestRegisterHidesPasswordHash(t *testing.T) {
	users := &fakeUserService{}
	r := newUserRouter(users, &fakeAuthService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/users/register", services.UserInput{
		Name: "Ann", Email: "ann@example.com", Password: "pw", IsAdmin: true,
	}))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, users.registered)
	assert.Nil(t, users.created)
	assert.NotContains(t, w.Body.String(), "hash")
	assert.NotContains(t, w.Body.String(), "passwordHash")
}

func TestCreateUserValidationAndDuplicate(t *testing.T) {
	users := &fakeUserService{}
	r := newUserRouter(users, &fakeAuthService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/users", map[string]string{"email": "ann@example.com"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, users.created)

	users.err = apperrors.Validation("a user with this email already exists", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/users", services.UserInput{Name: "Ann", Email: "ann@example.com", Password: "pw"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "a user with this email already exists", decode(t, w)["error"])
}

func TestUserReadsOmitHash(t *testing.T) {
	r := newUserRouter(&fakeUserService{}, &fakeAuthService{})

	for _, path := range []string{"/users", "/users/" + primitive.NewObjectID().Hex()} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/get/count", nil))
	assert.Equal(t, float64(2), decode(t, w)["data"].(map[string]interface{})["userCount"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, "the user is deleted!", decode(t, w)["message"])
}
