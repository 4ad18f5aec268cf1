package domain

import (
	"time"

	"github.com/google/uuid"
)

type Business struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	City        string    `json:"city"`
	Phone       *string   `json:"phone,omitempty"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Favorite struct {
	UserID     uuid.UUID `json:"user_id"`
	BusinessID uuid.UUID `json:"business_id"`
	CreatedAt  time.Time `json:"created_at"`
	// Joined fields
	BusinessName     string  `json:"business_name,omitempty"`
	BusinessCategory string  `json:"business_category,omitempty"`
	BusinessCity     string  `json:"business_city,omitempty"`
	BusinessLogoURL  *string `json:"business_logo_url,omitempty"`
}
