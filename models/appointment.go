package models

type Appointment struct {
	ID             ID     `json:"id,omitempty" gorm:"primaryKey"`
	DoctorID       ID     `json:"doctorId"`
	DoctorName     string `json:"doctorName"`
	Specialization string `json:"specialization"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	UserEmail      string `json:"userEmail" gorm:"index;not null"`
}
