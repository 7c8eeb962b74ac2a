package principal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Buyer struct {
	ID                     string     `json:"id" gorm:"primaryKey;size:36"`
	Email                  string     `json:"email" gorm:"uniqueIndex;not null"`
	FullName               string     `json:"full_name"`
	Password               string     `json:"-" gorm:"not null"`
	CompanyName            string     `json:"company_name"`
	ProfilePicture         string     `json:"profile_picture"`
	IsEmailVerified        bool       `json:"is_email_verified" gorm:"default:false"`
	ResetPasswordTokenHash *string    `json:"-" gorm:"index"`
	ResetPasswordExpiresAt *time.Time `json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (Buyer) TableName() string {
	return "buyers"
}

func (b *Buyer) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type Seller struct {
	ID                     string     `json:"id" gorm:"primaryKey;size:36"`
	Email                  string     `json:"email" gorm:"uniqueIndex;not null"`
	FullName               string     `json:"full_name"`
	Password               string     `json:"-" gorm:"not null"`
	CompanyName            string     `json:"company_name"`
	Title                  string     `json:"title"`
	ProfilePicture         string     `json:"profile_picture"`
	IsEmailVerified        bool       `json:"is_email_verified" gorm:"default:false"`
	ResetPasswordTokenHash *string    `json:"-" gorm:"index"`
	ResetPasswordExpiresAt *time.Time `json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (Seller) TableName() string {
	return "sellers"
}

func (s *Seller) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Admin accounts are provisioned out of band and are always treated as
// email-verified. They do not participate in the recovery flows.
type Admin struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName  string    `json:"full_name"`
	Password  string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Principal is the redacted projection handed to callers outside the
// persistence layer. Password and reset-token fields never appear here.
type Principal struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Role            Role   `json:"role"`
	CompanyName     string `json:"company_name,omitempty"`
	Title           string `json:"title,omitempty"`
	ProfilePicture  string `json:"profile_picture,omitempty"`
	IsEmailVerified bool   `json:"is_email_verified"`
}

// Account pairs a redacted Principal with its password hash for credential
// checks. It stays inside the identity core.
type Account struct {
	Principal
	PasswordHash string
}

func (b *Buyer) Account() *Account {
	return &Account{
		Principal: Principal{
			ID:              b.ID,
			Email:           b.Email,
			FullName:        b.FullName,
			Role:            RoleBuyer,
			CompanyName:     b.CompanyName,
			ProfilePicture:  b.ProfilePicture,
			IsEmailVerified: b.IsEmailVerified,
		},
		PasswordHash: b.Password,
	}
}

func (s *Seller) Account() *Account {
	return &Account{
		Principal: Principal{
			ID:              s.ID,
			Email:           s.Email,
			FullName:        s.FullName,
			Role:            RoleSeller,
			CompanyName:     s.CompanyName,
			Title:           s.Title,
			ProfilePicture:  s.ProfilePicture,
			IsEmailVerified: s.IsEmailVerified,
		},
		PasswordHash: s.Password,
	}
}

func (a *Admin) Account() *Account {
	return &Account{
		Principal: Principal{
			ID:              a.ID,
			Email:           a.Email,
			FullName:        a.FullName,
			Role:            RoleAdmin,
			IsEmailVerified: true,
		},
		PasswordHash: a.Password,
	}
}

// Models lists every table owned by this package, for migration.
func Models() []any {
	return []any{&Buyer{}, &Seller{}, &Admin{}, &DealInvitation{}}
}
