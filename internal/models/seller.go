package models

import "time"

type Seller struct {
	ID           int       `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"telefono"`
	WhatsApp     *string   `json:"whatsapp"`
	Active       bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool    `json:"success"`
	Seller  *Seller `json:"vendedor"`
}

type SellerSettingsRequest struct {
	Name     string `json:"nombre"`
	Phone    string `json:"telefono"`
	WhatsApp string `json:"whatsapp"`
}

type CreateSellerRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
	WhatsApp string
}
