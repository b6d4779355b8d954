package model

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleEmployee UserRole = "Employee"
	RoleAdmin    UserRole = "Admin"
)

func (r UserRole) Valid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// swagger:model User
type User struct {
	UUIDBase
	Name            string                      `gorm:"size:100;not null" json:"name"`
	Email           string                      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password        string                      `gorm:"size:100;not null" json:"-"`
	Role            UserRole                    `gorm:"size:16;default:'Employee'" json:"role"`
	Approved        bool                        `gorm:"default:false" json:"approved"`
	Points          int                         `gorm:"default:0" json:"points"`
	Badges          datatypes.JSONSlice[string] `json:"badges"`
	ProfileImageURL string                      `gorm:"size:512" json:"profileImageUrl,omitempty"`
	LastSeen        time.Time                   `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasBadge(id string) bool {
	return slices.Contains(u.Badges, id)
}

// CanSignIn 未审批的员工不能登录，管理员不受审批限制
func (u *User) CanSignIn() bool {
	return u.Approved || u.IsAdmin()
}
