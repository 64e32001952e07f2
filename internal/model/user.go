package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LastName       string    `gorm:"size:100;not null" json:"last_name"`
	FirstName      string    `gorm:"size:100;not null" json:"first_name"`
	Email          string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"size:128;not null" json:"-"`
	Salt           []byte    `gorm:"not null" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ViewableUser is the projection returned to anyone who is not looking at
// their own account. It never carries credential material.
type ViewableUser struct {
	ID        uuid.UUID `json:"id"`
	LastName  string    `json:"last_name"`
	FirstName string    `json:"first_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Viewable() ViewableUser {
	return ViewableUser{
		ID:        u.ID,
		LastName:  u.LastName,
		FirstName: u.FirstName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
