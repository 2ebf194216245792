package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"kot-system/internal/logger"
	"kot-system/internal/models"
)

var (
	ErrUserExists         = errors.New("username or email already registered")
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrOTPMismatch        = errors.New("invalid or expired verification code")
)

type DBLayer interface {
	CreateUser(user *models.StaffUser) error
	GetUserByIdentifier(identifier string) (*models.StaffUser, error)
	UserExists(username, email string) (bool, error)
	UpsertOTP(otp *models.EmailOTP) error
	GetOTP(email string) (*models.EmailOTP, error)
	DeleteOTP(email string) error
}

// AuthService handles staff registration with email OTP verification and
// token-based login.
type AuthService struct {
	DB     DBLayer
	Mailer Mailer
	Tokens *TokenIssuer
	logger *logger.Logger
	otpTTL time.Duration
	now    func() time.Time
}

func NewAuthService(db DBLayer, mailer Mailer, tokens *TokenIssuer, log *logger.Logger, otpTTL time.Duration) *AuthService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &AuthService{
		DB:     db,
		Mailer: mailer,
		Tokens: tokens,
		logger: log,
		otpTTL: otpTTL,
		now:    time.Now,
	}
}

// SendOTP emails a fresh verification code, replacing any previous one for
// the address.
func (s *AuthService) SendOTP(email string) error {
	if email == "" {
		return ErrMissingFields
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}

	otp := &models.EmailOTP{
		Email:     email,
		OTP:       code,
		ExpiresAt: s.now().Add(s.otpTTL),
	}
	if err := s.DB.UpsertOTP(otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.Mailer.SendOTP(email, code); err != nil {
		return fmt.Errorf("send otp to %s: %w", email, err)
	}
	s.logger.Info("AUTH", "sent verification code to "+email)
	return nil
}

// Register creates a verified staff account. The OTP sent to the email must
// be presented with the registration.
func (s *AuthService) Register(req models.RegisterRequest) (*models.StaffUser, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.DB.UserExists(req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	otp, err := s.DB.GetOTP(req.Email)
	if err != nil || otp.OTP != req.OTP || !otp.IsValid(s.now()) {
		return nil, ErrOTPMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleCashier
	}

	user := &models.StaffUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsVerified:   true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.DB.CreateUser(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// The code is single-use.
	if err := s.DB.DeleteOTP(req.Email); err != nil {
		s.logger.Warn("AUTH", "cleanup otp for "+req.Email+": "+err.Error())
	}

	s.logger.Info("AUTH", fmt.Sprintf("registered %s (%s)", user.Username, user.Role))
	return user, nil
}

// Login checks the password and returns a signed access token. The
// identifier may be a username or an email.
func (s *AuthService) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Identifier == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.DB.GetUserByIdentifier(req.Identifier)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("AUTH", "login "+user.Username)
	return &models.LoginResponse{
		Message: "Login successful",
		User: models.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
		Access: access,
	}, nil
}
