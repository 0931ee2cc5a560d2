package models

// User is an account as stored by the hospital API. Password holds the
// bcrypt hash, never the plain text.
type User struct {
	ID       ID     `json:"id,omitempty" gorm:"primaryKey"`
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"password" gorm:"not null"`
}
