package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User owns trades and reflections. Deleting a user deletes both.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:80;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:256;not null"`
	CreatedAt    time.Time

	Trades      []Trade           `gorm:"constraint:OnDelete:CASCADE"`
	Reflections []DailyReflection `gorm:"constraint:OnDelete:CASCADE"`
}

func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
