package models

// Doctor is a practitioner record. Diseases are the tags the directory
// search matches against.
type Doctor struct {
	ID        ID       `json:"id" gorm:"primaryKey"`
	Name      string   `json:"name" gorm:"not null"`
	Specialty string   `json:"specialty"`
	Diseases  []string `json:"diseases" gorm:"serializer:json"`
	Email     string   `json:"email,omitempty"`
	License   string   `json:"license,omitempty"`
	Password  string   `json:"-"`
}

// DoctorRegistration is the payload of the doctor self-registration
// endpoint. Password is already hashed.
type DoctorRegistration struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Specialty string `json:"specialty"`
	License   string `json:"license,omitempty"`
}
