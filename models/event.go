package models

// Event types published on the appointment activity topic.
const (
	EventAppointmentBooked  = "appointment_booked"
	EventAppointmentUpdated = "appointment_updated"
	EventAppointmentDeleted = "appointment_deleted"
	EventUserRegistered     = "user_registered"
	EventDoctorRegistered   = "doctor_registered"
)

// Event is one message on the activity topic. Appointment is set for the
// appointment events; deletions carry only its ID.
type Event struct {
	Event       string       `json:"event"`
	Email       string       `json:"email,omitempty"`
	Name        string       `json:"name,omitempty"`
	Appointment *Appointment `json:"appointment,omitempty"`
}
