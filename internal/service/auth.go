package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/finwise/finance-service/internal/models"
	"github.com/finwise/finance-service/internal/money"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user with hashed password. The returned secret key
// is shown to the user exactly once; only its hash is stored.
func (s *Service) Register(ctx context.Context, username, emailAddr, name, password, currencyPref string) (*models.User, string, error) {
	if username == "" || emailAddr == "" || password == "" {
		return nil, "", fmt.Errorf("username, email and password are required")
	}
	if currencyPref == "" {
		currencyPref = "USD"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	secretKey, err := generateSecretKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secretKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash secret key: %w", err)
	}

	user := &models.User{
		Username:      username,
		Email:         emailAddr,
		Name:          name,
		PasswordHash:  string(hashedPassword),
		SecretKeyHash: string(hashedSecret),
		CurrencyPref:  currencyPref,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, secretKey, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return token, user, nil
}

// ResetPassword replaces the password after verifying the account secret
// key. A fresh secret key is issued and returned.
func (s *Service) ResetPassword(ctx context.Context, username, secretKey, newPassword string) (string, error) {
	if newPassword == "" {
		return "", fmt.Errorf("new password is required")
	}

	user, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.SecretKeyHash), []byte(secretKey)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	newSecret, err := generateSecretKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(newSecret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret key: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(hashedPassword), string(hashedSecret)); err != nil {
		return "", err
	}

	s.log.Infof("Password reset for user: %s", user.Username)
	return newSecret, nil
}

// Profile returns the authenticated user
func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.UserByID(ctx, userID)
}

// ProfileParams carries the editable profile fields. Nil fields keep the
// current value. Income amounts are decimal strings in the user's preferred
// currency.
type ProfileParams struct {
	Name          *string
	CurrencyPref  *string
	MonthlySalary *string
	OtherIncome   *string
}

// UpdateProfile stores the editable profile fields
func (s *Service) UpdateProfile(ctx context.Context, p ProfileParams) (*models.User, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		user.Name = *p.Name
	}
	if p.CurrencyPref != nil && *p.CurrencyPref != "" {
		user.CurrencyPref = *p.CurrencyPref
	}
	if p.MonthlySalary != nil {
		salary, err := money.Parse(*p.MonthlySalary, user.CurrencyPref)
		if err != nil {
			return nil, err
		}
		user.MonthlySalary = salary.Cents
	}
	if p.OtherIncome != nil {
		income, err := money.Parse(*p.OtherIncome, user.CurrencyPref)
		if err != nil {
			return nil, err
		}
		user.OtherIncome = income.Cents
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	s.invalidateInsights(ctx, userID)
	s.log.Infof("Profile updated for user %d", userID)
	return user, nil
}

func (s *Service) generateToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

func generateSecretKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
