package tenants

import (
	"strings"
	"time"

	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusPending   Status = "PENDING"
)

// Tenant is a pharmacy company on the platform.
type Tenant struct {
	ID                   string               `json:"id"`
	Name                 string               `json:"name"`
	Status               Status               `json:"status,omitempty"`
	Email                string               `json:"email,omitempty"`
	Phone                string               `json:"phone,omitempty"`
	Website              string               `json:"website,omitempty"`
	Address              string               `json:"address,omitempty"`
	City                 string               `json:"city,omitempty"`
	State                string               `json:"state,omitempty"`
	ZipCode              string               `json:"zipCode,omitempty"`
	Logo                 string               `json:"logo,omitempty"`
	PrimaryColor         string               `json:"primaryColor,omitempty"`
	SecondaryColor       string               `json:"secondaryColor,omitempty"`
	PatientsCount        int                  `json:"patientsCount"`
	ActiveOrders         int                  `json:"activeOrders"`
	SupportedMedications []SupportedMedication `json:"supportedMedications,omitempty"`
	APIKeys              *IntegrationConfig   `json:"apiKeys,omitempty"`
	CreatedAt            time.Time            `json:"createdAt,omitempty"`
}

type SupportedMedication struct {
	MedicationID string  `json:"medicationId"`
	Name         string  `json:"name,omitempty"`
	Price        float64 `json:"price,omitempty"`
	Enabled      bool    `json:"enabled"`
}

// IntegrationConfig holds the third-party credentials a company runs on.
type IntegrationConfig struct {
	Curexa CurexaConfig `json:"curexa"`
	MDI    MDIConfig    `json:"mdi"`
	Stripe StripeConfig `json:"stripe"`
}

type CurexaConfig struct {
	ClientKey    string `json:"clientKey"`
	ClientSecret string `json:"clientSecret"`
}

type MDIConfig struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type StripeConfig struct {
	PublishableKey string `json:"publishableKey"`
	SecretKey      string `json:"secretKey"`
}

// Redacted returns a copy safe to print: every secret keeps only its last four characters.
func (c IntegrationConfig) Redacted() IntegrationConfig {
	c.Curexa.ClientSecret = redact(c.Curexa.ClientSecret)
	c.MDI.ClientSecret = redact(c.MDI.ClientSecret)
	c.Stripe.SecretKey = redact(c.Stripe.SecretKey)
	return c
}

func redact(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// Owner is the first company admin, created together with the company.
type Owner struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateRequest struct {
	Name  string `json:"name"`
	Owner Owner  `json:"owner"`
}

func (r CreateRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return apperrors.Wrapf(apperrors.ErrInvalidArgs, "company name is required")
	case strings.TrimSpace(r.Owner.Name) == "":
		return apperrors.Wrapf(apperrors.ErrInvalidArgs, "owner name is required")
	case !strings.Contains(r.Owner.Email, "@"):
		return apperrors.Wrapf(apperrors.ErrInvalidArgs, "owner email %q is invalid", r.Owner.Email)
	case r.Owner.Password == "":
		return apperrors.Wrapf(apperrors.ErrInvalidArgs, "owner password is required")
	}
	return nil
}

// Update is a partial change; nil fields are left alone.
type Update struct {
	Name           *string `json:"name,omitempty"`
	Status         *Status `json:"status,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Website        *string `json:"website,omitempty"`
	Address        *string `json:"address,omitempty"`
	City           *string `json:"city,omitempty"`
	State          *string `json:"state,omitempty"`
	ZipCode        *string `json:"zipCode,omitempty"`
	Logo           *string `json:"logo,omitempty"`
	PrimaryColor   *string `json:"primaryColor,omitempty"`
	SecondaryColor *string `json:"secondaryColor,omitempty"`
}

func (u Update) Empty() bool {
	return u == Update{}
}

// Apply copies the set fields onto t.
func (u Update) Apply(t *Tenant) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&t.Name, u.Name)
	set(&t.Email, u.Email)
	set(&t.Phone, u.Phone)
	set(&t.Website, u.Website)
	set(&t.Address, u.Address)
	set(&t.City, u.City)
	set(&t.State, u.State)
	set(&t.ZipCode, u.ZipCode)
	set(&t.Logo, u.Logo)
	set(&t.PrimaryColor, u.PrimaryColor)
	set(&t.SecondaryColor, u.SecondaryColor)
	if u.Status != nil {
		t.Status = *u.Status
	}
}
