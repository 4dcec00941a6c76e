package model

import (
	"strings"
	"time"
)

// UserRole is the closed set of roles a user can hold.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleUser       UserRole = "user"
	RoleStoreOwner UserRole = "store_owner"
)

// Roles lists every valid role.
func Roles() []UserRole {
	return []UserRole{RoleAdmin, RoleUser, RoleStoreOwner}
}

// ParseRole converts a raw string into a role. Unknown values are rejected.
func ParseRole(s string) (UserRole, bool) {
	role := UserRole(strings.TrimSpace(s))
	return role, role.IsValid()
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleStoreOwner:
		return true
	}
	return false
}

func (r UserRole) String() string {
	return string(r)
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(60);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Address      string    `gorm:"type:varchar(400)" json:"address"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`

	Stores  []Store  `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Ratings []Rating `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}
