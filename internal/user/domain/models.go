package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	FirstName    string       `gorm:"not null" json:"first_name"`
	LastName     string       `gorm:"not null" json:"last_name"`
	Email        string       `gorm:"not null;uniqueIndex" json:"email"`
	Phone        string       `gorm:"not null;uniqueIndex" json:"phone"`
	BirthDate    time.Time    `gorm:"not null" json:"birth_date"`
	PasswordHash string       `gorm:"not null" json:"-"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Age computes full years elapsed since the birth date.
func (u User) Age(now time.Time) int {
	years := now.Year() - u.BirthDate.Year()
	anniversary := u.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// Profile is the outward view of a user; it never carries the hash.
type Profile struct {
	ID        snowflake.ID `json:"id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	FullName  string       `json:"full_name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	BirthDate time.Time    `json:"birth_date"`
	Age       int          `json:"age"`
}

func (u User) Profile(now time.Time) Profile {
	return Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Email:     u.Email,
		Phone:     u.Phone,
		BirthDate: u.BirthDate,
		Age:       u.Age(now),
	}
}
