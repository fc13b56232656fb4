package controllers

import (
	"net/http"

	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/middleware"
	"github.com/agriconnect-ug/agriconnect/pkg/response"
	"github.com/agriconnect-ug/agriconnect/pkg/session"
)

// AuthController serves signup, signin, email verification, and session
// introspection.
type AuthController struct {
	service *services.AuthService
}

func NewAuthController() *AuthController {
	return &AuthController{service: services.NewAuthService()}
}

type signupRequest struct {
	FirstName            string   `json:"first_name" validate:"required,max=100"`
	LastName             string   `json:"last_name" validate:"required,max=100"`
	Email                string   `json:"email" validate:"required,email"`
	Phone                string   `json:"phone" validate:"nullable,min=9,max=15"`
	Password             string   `json:"password" validate:"required,min=8,confirmed"`
	PasswordConfirmation string   `json:"password_confirmation"`
	Role                 string   `json:"role" validate:"nullable,in=farmer,buyer"`
	Language             string   `json:"preferred_language"`
	District             string   `json:"district"`
	Lat                  *float64 `json:"lat"`
	Lng                  *float64 `json:"lng"`
}

// Signup creates an account. With verification on, the response carries
// next=/check-email and no token; the client shows the success banner and
// stays signed out until the email link is clicked.
func (ac *AuthController) Signup(c *ctx.Context) {
	var req signupRequest
	if !c.BindJSON(&req) {
		return
	}

	result, err := ac.service.Signup(services.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      req.Role,
		Language:  req.Language,
		District:  req.District,
		Lat:       req.Lat,
		Lng:       req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Message != "" {
		response.WithMessage(c.W, http.StatusCreated, result.Message, result)
		return
	}
	c.Created(result)
}

// Verify confirms the emailed token and stamps the account verified.
func (ac *AuthController) Verify(c *ctx.Context) {
	token := c.Query("token")
	if token == "" {
		c.ValidationError(map[string]string{"token": "The token field is required."})
		return
	}

	result, err := ac.service.Verify(token)
	if err != nil {
		respondError(c, err)
		return
	}

	response.WithMessage(c.W, http.StatusOK, result.Message, result)
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signin checks credentials and returns the JWT, profile, and landing
// route.
func (ac *AuthController) Signin(c *ctx.Context) {
	var req signinRequest
	if !c.BindJSON(&req) {
		return
	}

	result, err := ac.service.Signin(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(result)
}

// Session returns the account behind the bearer token.
func (ac *AuthController) Session(c *ctx.Context) {
	userID := middleware.UserIDFromCtx(c.Context())
	if userID == 0 {
		response.Unauthorized(c.W)
		return
	}

	user, err := ac.service.Session(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Success(map[string]any{
		"user": user,
		"next": services.LandingRoute(user.Role),
	})
}

// Signout invalidates the cookie session. The client drops its JWT.
func (ac *AuthController) Signout(c *ctx.Context) {
	if sess := session.FromCtx(c.R); sess != nil {
		sess.Invalidate()
		sess.Save(c.W) //nolint:errcheck
	}
	response.WithMessage(c.W, http.StatusOK, "Signed out.", nil)
}
