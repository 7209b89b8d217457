package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole enum constants. Storage keeps the role as an open string; logic goes
// through the closed set below and treats anything else as zero-access.
const (
	RoleSystemAdmin  = "SYSTEM_ADMIN"
	RoleFinanceAdmin = "FINANCE_ADMIN"
	RoleLeader       = "LEADER"
	RoleUser         = "USER"
)

// KnownRole reports whether the stored role string is one of the four variants.
func KnownRole(role string) bool {
	switch role {
	case RoleSystemAdmin, RoleFinanceAdmin, RoleLeader, RoleUser:
		return true
	}
	return false
}

// User represents the central user entity for logic and database structure.
// Companies and Departments must be preloaded wherever scope decisions are made.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Omit hash from JSON requests/responses
	Role         string    `gorm:"type:varchar(50);not null" json:"role"`
	Phone        string    `gorm:"type:varchar(20)" json:"phone"`
	IsActive     bool      `gorm:"default:true;not null" json:"is_active"`

	// Memberships. Companies drive LEADER scoping; Departments are informational.
	Companies   []Company    `gorm:"many2many:user_companies;" json:"companies,omitempty"`
	Departments []Department `gorm:"many2many:user_departments;" json:"departments,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CompanyIDs returns the user's company membership ids.
func (u *User) CompanyIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.Companies))
	for _, c := range u.Companies {
		ids = append(ids, c.ID)
	}
	return ids
}

// BelongsToCompany reports whether the user is a member of the given company.
func (u *User) BelongsToCompany(companyID uuid.UUID) bool {
	for _, c := range u.Companies {
		if c.ID == companyID {
			return true
		}
	}
	return false
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
