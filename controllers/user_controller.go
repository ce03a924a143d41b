package controllers

import (
	"context"
	"net/http"

	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/Mayank561/ECOMMERCE-API/services"
	"github.com/gin-gonic/gin"
)

// UserServiceAPI defines the interface for user service operations
type UserServiceAPI interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, in services.UserInput) (*models.User, error)
	Register(ctx context.Context, in services.UserInput) (*models.User, error)
	Update(ctx context.Context, id string, in services.UserInput) (*models.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// AuthServiceAPI verifies credentials and issues tokens.
type AuthServiceAPI interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
}

// LoginRequest is the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserController struct {
	users UserServiceAPI
	auth  AuthServiceAPI
}

func NewUserController(users UserServiceAPI, auth AuthServiceAPI) *UserController {
	return &UserController{users: users, auth: auth}
}

func (ctrl *UserController) GetUsers(c *gin.Context) {
	users, err := ctrl.users.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

func (ctrl *UserController) GetUser(c *gin.Context) {
	user, err := ctrl.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (ctrl *UserController) CreateUser(c *gin.Context) {
	ctrl.create(c, ctrl.users.Create)
}

// Register creates a non-admin account.
func (ctrl *UserController) Register(c *gin.Context) {
	ctrl.create(c, ctrl.users.Register)
}

func (ctrl *UserController) create(c *gin.Context, create func(context.Context, services.UserInput) (*models.User, error)) {
	var req services.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	user, err := create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

func (ctrl *UserController) UpdateUser(c *gin.Context) {
	var req services.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	user, err := ctrl.users.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (ctrl *UserController) DeleteUser(c *gin.Context) {
	if err := ctrl.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "the user is deleted!")
}

func (ctrl *UserController) GetUserCount(c *gin.Context) {
	count, err := ctrl.users.Count(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"userCount": count})
}

// Login handles user authentication and JWT generation
func (ctrl *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	result, err := ctrl.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}
