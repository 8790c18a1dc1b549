package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"unicode"

	"inmobiliaria/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	sellerPasswordCost = 12
	minWhatsAppDigits  = 10
)

const selectSellerSQL = "SELECT id, name, email, password_hash, phone, whatsapp, active, created_at, updated_at FROM sellers"

// dummyHash is compared against when the email is unknown so that a miss costs
// about as much as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

type SellerService struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSellerService(db *sql.DB, logger zerolog.Logger) *SellerService {
	return &SellerService{
		db:     db,
		logger: logger,
	}
}

// Authenticate collapses unknown email, inactive account and wrong password
// into ErrInvalidCredentials.
func (s *SellerService) Authenticate(ctx context.Context, email, password string) (*models.Seller, error) {
	if email == "" || password == "" {
		return nil, validationError("missing_credentials", "Email y contraseña son requeridos")
	}

	seller, err := s.scanOne(s.db.QueryRowContext(ctx, selectSellerSQL+" WHERE email = ?", email))
	if errors.Is(err, sql.ErrNoRows) {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		s.logger.Warn().Str("email", email).Msg("Login attempt for unknown seller")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying seller")
		return nil, upstreamError("database_error", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(seller.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Int("seller_id", seller.ID).Msg("Failed authentication attempt")
		return nil, ErrInvalidCredentials
	}
	if !seller.Active {
		s.logger.Warn().Int("seller_id", seller.ID).Msg("Login attempt for inactive seller")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().Int("seller_id", seller.ID).Msg("Seller authenticated")
	return seller, nil
}

func (s *SellerService) GetSellerByID(ctx context.Context, sellerID int) (*models.Seller, error) {
	seller, err := s.scanOne(s.db.QueryRowContext(ctx, selectSellerSQL+" WHERE id = ?", sellerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSellerNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("seller_id", sellerID).Msg("Error fetching seller")
		return nil, upstreamError("database_error", err)
	}
	return seller, nil
}

// UpdateSettings changes the seller's own contact details. An empty name keeps
// the current one; an empty phone clears it.
func (s *SellerService) UpdateSettings(ctx context.Context, sellerID int, req *models.SellerSettingsRequest) (*models.Seller, error) {
	whatsapp, err := NormalizeWhatsApp(req.WhatsApp)
	if err != nil {
		return nil, err
	}

	seller, err := s.GetSellerByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		seller.Name = name
	}
	seller.Phone = nil
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		seller.Phone = &phone
	}
	seller.WhatsApp = &whatsapp

	_, err = s.db.ExecContext(ctx,
		"UPDATE sellers SET name = ?, phone = ?, whatsapp = ? WHERE id = ?",
		seller.Name, seller.Phone, whatsapp, sellerID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("seller_id", sellerID).Msg("Error updating seller settings")
		return nil, upstreamError("database_error", err)
	}

	s.logger.Info().Int("seller_id", sellerID).Msg("Seller settings updated")
	return seller, nil
}

// CreateSeller inserts the account unless the email is already taken, in which
// case the existing seller is returned with created == false.
func (s *SellerService) CreateSeller(ctx context.Context, req *models.CreateSellerRequest) (seller *models.Seller, created bool, err error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, false, validationError("missing_required_fields", "Nombre, email y contraseña son requeridos")
	}

	existing, err := s.scanOne(s.db.QueryRowContext(ctx, selectSellerSQL+" WHERE email = ?", req.Email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error().Err(err).Msg("Error checking existing seller")
		return nil, false, upstreamError("database_error", err)
	}

	var whatsapp *string
	if req.WhatsApp != "" {
		w, err := NormalizeWhatsApp(req.WhatsApp)
		if err != nil {
			return nil, false, err
		}
		whatsapp = &w
	}
	var phone *string
	if req.Phone != "" {
		phone = &req.Phone
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), sellerPasswordCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, false, upstreamError("hash_error", err)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO sellers (name, email, password_hash, phone, whatsapp, active) VALUES (?, ?, ?, ?, ?, ?)",
		req.Name, req.Email, string(hashed), phone, whatsapp, true,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating seller")
		return nil, false, upstreamError("database_error", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, upstreamError("database_error", err)
	}

	s.logger.Info().Int64("seller_id", id).Str("email", req.Email).Msg("Seller created")
	return &models.Seller{
		ID:       int(id),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    phone,
		WhatsApp: whatsapp,
		Active:   true,
	}, true, nil
}

func (s *SellerService) scanOne(row *sql.Row) (*models.Seller, error) {
	var seller models.Seller
	var phone, whatsapp sql.NullString
	err := row.Scan(
		&seller.ID, &seller.Name, &seller.Email, &seller.PasswordHash,
		&phone, &whatsapp, &seller.Active, &seller.CreatedAt, &seller.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	seller.Phone = nullStringPtr(phone)
	seller.WhatsApp = nullStringPtr(whatsapp)
	return &seller, nil
}

// NormalizeWhatsApp keeps only the digits and requires at least ten of them.
func NormalizeWhatsApp(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", validationError("whatsapp_required", "El número de WhatsApp es requerido")
	}

	var b strings.Builder
	for _, r := range raw {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) < minWhatsAppDigits {
		return "", validationError("invalid_whatsapp", "Número de WhatsApp inválido")
	}
	return digits, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
