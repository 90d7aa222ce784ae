package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Role is the platform role carried by a session. It decides which sections are visible.
type Role string

const (
	RoleSuperAdmin   Role = "SUPERADMIN"    // Manages all companies, the medication catalog and support
	RoleCompanyAdmin Role = "COMPANY_ADMIN" // Manages a single company's offerings, orders and patients
)

func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleCompanyAdmin
}

// User is the authenticated identity returned by /auth/login.
type User struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	CompanyID string `json:"companyId,omitempty"`
	TenantID  string `json:"tenantId,omitempty"`
}

func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// Tenant returns the company the user is scoped to. Older login payloads only set companyId.
func (u *User) Tenant() string {
	if u.TenantID != "" {
		return u.TenantID
	}
	return u.CompanyID
}

func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Account is the server-side record of a user, as kept by the mock API.
type Account struct {
	User
	PasswordHash string    `json:"-"`
	Blocked      bool      `json:"blocked,omitempty"`
	DateJoined   time.Time `json:"dateJoined,omitempty"`
	LastLogin    time.Time `json:"lastLogin,omitempty"`
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
