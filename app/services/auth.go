package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/agriconnect-ug/agriconnect/app/jobs"
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/auth"
	"github.com/agriconnect-ug/agriconnect/pkg/cache"
	"github.com/agriconnect-ug/agriconnect/pkg/crypt"
	"github.com/agriconnect-ug/agriconnect/pkg/event"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
	"github.com/agriconnect-ug/agriconnect/pkg/queue"
)

// Sign-in attempts allowed per email per minute.
const signinAttempts = 5

// verifyTokenTTL is how long an email verification link stays valid.
const verifyTokenTTL = 48 * time.Hour

// AuthService owns signup, signin, and the email verification flow.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService() *AuthService {
	return &AuthService{users: repositories.NewUserRepository()}
}

// SignupInput is the profile metadata collected on the signup page.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      string
	Language  string
	District  string
	Lat       *float64
	Lng       *float64
}

// AuthResult is what a signup or signin hands back to the client: the
// user, an optional token, and the route the client should land on.
// Message is the banner text; the controller lifts it into the response
// envelope.
type AuthResult struct {
	User    models.User `json:"user"`
	Token   string      `json:"token,omitempty"`
	Next    string      `json:"next"`
	Message string      `json:"-"`
}

// Signup creates the account. With verification enabled (the default) no
// session is issued; the client is routed to the check-email page and the
// verification mail is queued. Duplicate emails return ErrDuplicateAccount.
func (s *AuthService) Signup(in SignupInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.FindByEmail(email); err == nil {
		return AuthResult{}, ErrDuplicateAccount
	} else if !orm.IsNotFound(err) {
		return AuthResult{}, fmt.Errorf("services: signup lookup %s: %w", email, err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("services: hash password: %w", err)
	}

	user := models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Password:  hash,
		Role:      signupRole(in.Role),
		Language:  defaultString(in.Language, "en"),
		District:  strings.TrimSpace(in.District),
		Lat:       in.Lat,
		Lng:       in.Lng,
	}

	if err := s.users.Create(&user); err != nil {
		if orm.IsDuplicate(err) {
			return AuthResult{}, ErrDuplicateAccount
		}
		return AuthResult{}, fmt.Errorf("services: create user: %w", err)
	}

	event.Fire("user.registered", user)

	if config.SignupVerify() {
		if err := s.queueVerification(user); err != nil {
			logger.Error("queue verification email", "user_id", user.ID, "error", err)
		}
		return AuthResult{
			User:    user,
			Next:    "/check-email",
			Message: "Account created. Check your email to confirm your address.",
		}, nil
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("services: issue token: %w", err)
	}

	return AuthResult{User: user, Token: token, Next: LandingRoute(user.Role)}, nil
}

// verifyClaim is the AES-GCM payload inside a verification link.
type verifyClaim struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	Expires int64  `json:"expires"`
}

func (s *AuthService) queueVerification(user models.User) error {
	token, err := crypt.EncryptJSON(verifyClaim{
		UserID:  user.ID,
		Email:   user.Email,
		Expires: time.Now().Add(verifyTokenTTL).Unix(),
	})
	if err != nil {
		return err
	}

	return queue.Dispatch(&jobs.VerificationEmailJob{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName(),
		Token:  token,
	})
}

// Verify decrypts the emailed token, stamps the account verified, and
// returns the landing route.
func (s *AuthService) Verify(token string) (AuthResult, error) {
	var claim verifyClaim
	if err := crypt.DecryptJSON(token, &claim); err != nil {
		return AuthResult{}, ErrNotFound
	}
	if time.Now().Unix() > claim.Expires {
		return AuthResult{}, ErrNotFound
	}

	user, err := s.users.FindByID(claim.UserID)
	if err != nil || user.Email != claim.Email {
		return AuthResult{}, ErrNotFound
	}

	if user.VerifiedAt == nil {
		now := time.Now()
		user.VerifiedAt = &now
		if err := s.users.Update(&user); err != nil {
			return AuthResult{}, fmt.Errorf("services: stamp verification: %w", err)
		}
	}

	return AuthResult{
		User:    user,
		Next:    LandingRoute(user.Role),
		Message: "Email confirmed. You can sign in now.",
	}, nil
}

// Signin checks credentials and issues a JWT. Attempts are throttled per
// email via a Redis counter before any database work happens.
func (s *AuthService) Signin(email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if count, err := cache.Incr("signin:"+email, time.Minute); err == nil && count > signinAttempts {
		return AuthResult{}, ErrRateLimited
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if orm.IsNotFound(err) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("services: signin lookup %s: %w", email, err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("services: issue token: %w", err)
	}

	return AuthResult{User: user, Token: token, Next: LandingRoute(user.Role)}, nil
}

// Session returns the account behind a validated token.
func (s *AuthService) Session(userID uint) (models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if orm.IsNotFound(err) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("services: session lookup %d: %w", userID, err)
	}
	return user, nil
}

// LandingRoute maps a role to its post-auth route. Every role currently
// lands on the listings page; the switch stays role-keyed so the routes
// can diverge without touching callers.
func LandingRoute(role string) string {
	switch role {
	case models.RoleFarmer:
		return "/listings"
	case models.RoleBuyer:
		return "/listings"
	case models.RoleAdmin:
		return "/listings"
	default:
		return "/listings"
	}
}

// signupRole restricts self-service signup to farmer or buyer.
func signupRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.RoleFarmer:
		return models.RoleFarmer
	default:
		return models.RoleBuyer
	}
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}
