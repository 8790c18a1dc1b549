package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"inmobiliaria/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

type AuthService struct {
	secretKey []byte
	ttl       time.Duration
	sellers   *SellerService
	logger    zerolog.Logger
	now       func() time.Time
}

// Claims is the session payload: identity only, display data is re-read from
// the store on every request.
type Claims struct {
	SellerID int    `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"nombre"`
	jwt.RegisteredClaims
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	Seller    *models.Seller
}

func NewAuthService(secret string, ttl time.Duration, sellers *SellerService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		secretKey: []byte(secret),
		ttl:       ttl,
		sellers:   sellers,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

func (s *AuthService) GenerateToken(seller *models.Seller) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		SellerID: seller.ID,
		Email:    seller.Email,
		Name:     seller.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(seller.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating token")
		return "", time.Time{}, upstreamError("token_generation_failed", err)
	}

	return tokenString, expiresAt, nil
}

// Verify checks signature and expiry. It never fails loudly: any malformed,
// expired or foreign token yields ok == false.
func (s *AuthService) Verify(tokenString string) (*Claims, bool) {
	if tokenString == "" {
		return nil, false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.SellerID <= 0 {
		return nil, false
	}
	return claims, true
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	seller, err := s.sellers.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.GenerateToken(seller)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: expiresAt, Seller: seller}, nil
}

// CurrentSeller resolves the session owner. A nil seller with a nil error means
// "not logged in"; an error means the store could not be reached.
func (s *AuthService) CurrentSeller(ctx context.Context, tokenString string) (*models.Seller, error) {
	claims, ok := s.Verify(tokenString)
	if !ok {
		return nil, nil
	}

	seller, err := s.sellers.GetSellerByID(ctx, claims.SellerID)
	if errors.Is(err, ErrSellerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !seller.Active {
		s.logger.Warn().Int("seller_id", seller.ID).Msg("Session for inactive seller rejected")
		return nil, nil
	}
	return seller, nil
}
