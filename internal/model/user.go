package model

import "time"

type User struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	Username  string `gorm:"unique;not null"`
	Password  string `gorm:"not null"` // bcrypt hash, never the raw password
}

func (User) TableName() string {
	return "users"
}
