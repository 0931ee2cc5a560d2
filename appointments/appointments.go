// Package appointments is the booked-appointments view: list, delete and
// inline edit of the session user's appointments.
package appointments

import (
	"context"
	"log"
	"sync"

	"hospital-portal/models"
	"hospital-portal/notify"
	"hospital-portal/session"
)

const (
	fetchFailed  = "Failed to fetch appointments."
	deleted      = "Appointment deleted successfully."
	deleteFailed = "Failed to delete appointment."
	updated      = "Appointment updated successfully."
	updateFailed = "Failed to update appointment."
)

const (
	EmptyMessage = "No appointments booked yet."
	StateView    = "view"
	StateEditing = "editing"
)

type API interface {
	Appointments(ctx context.Context, userEmail string) ([]models.Appointment, error)
	UpdateAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error)
	DeleteAppointment(ctx context.Context, id models.ID) error
}

// List holds one mounted appointments view for a session.
type List struct {
	api     API
	session session.Session
	logger  *log.Logger

	mu           sync.Mutex
	mounted      bool
	loading      bool
	appointments []models.Appointment
	editing      *models.Appointment
}

func New(api API, s session.Session, logger *log.Logger) *List {
	return &List{api: api, session: s, logger: logger, mounted: true, loading: true}
}

// Mount fetches the session user's appointments. Loading ends either way.
func (l *List) Mount(ctx context.Context) notify.Result {
	list, err := l.api.Appointments(ctx, l.session.Email)

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return notify.Quiet()
	}
	l.loading = false
	if err != nil {
		l.logger.Printf("Error fetching appointments: %v", err)
		return notify.Fail(notify.ReasonExternal, fetchFailed, err)
	}
	l.appointments = visibleTo(list, l.session.Email)
	return notify.Quiet()
}

// visibleTo keeps only records owned by email, in case the API ignores the
// filter.
func visibleTo(list []models.Appointment, email string) []models.Appointment {
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if a.UserEmail == email {
			out = append(out, a)
		}
	}
	return out
}

func (l *List) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mounted = false
	l.editing = nil
}

func (l *List) indexOf(id models.ID) int {
	for i := range l.appointments {
		if l.appointments[i].ID == id {
			return i
		}
	}
	return -1
}

// Delete removes id on the API first and from the list only on success.
func (l *List) Delete(ctx context.Context, id models.ID) notify.Result {
	l.mu.Lock()
	known := l.indexOf(id) >= 0
	l.mu.Unlock()
	if !known {
		return notify.Fail(notify.ReasonNotFound, "Appointment not found.", nil)
	}

	if err := l.api.DeleteAppointment(ctx, id); err != nil {
		l.logger.Printf("Error deleting appointment: %v", err)
		return notify.Fail(notify.ReasonExternal, deleteFailed, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return notify.Quiet()
	}
	if i := l.indexOf(id); i >= 0 {
		l.appointments = append(l.appointments[:i], l.appointments[i+1:]...)
	}
	if l.editing != nil && l.editing.ID == id {
		l.editing = nil
	}
	return notify.Done(deleted)
}

// BeginEdit copies the row into the edit form. Any other row being edited
// is discarded.
func (l *List) BeginEdit(id models.ID) notify.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return notify.Fail(notify.ReasonNotFound, "Appointment not found.", nil)
	}
	form := l.appointments[i]
	l.editing = &form
	return notify.Quiet()
}

// UpdateEditField sets one field of the edit form. Identity fields cannot
// be edited.
func (l *List) UpdateEditField(name, value string) notify.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.editing == nil {
		return notify.Fail(notify.ReasonValidation, "No appointment is being edited.", nil)
	}
	switch name {
	case "doctorName":
		l.editing.DoctorName = value
	case "specialization":
		l.editing.Specialization = value
	case "date":
		l.editing.Date = value
	case "time":
		l.editing.Time = value
	default:
		return notify.Invalid(map[string]string{name: "Field cannot be edited"})
	}
	return notify.Quiet()
}

// Editing reports which appointment the edit form belongs to.
func (l *List) Editing() (models.ID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.editing == nil {
		return "", false
	}
	return l.editing.ID, true
}

func (l *List) CancelEdit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.editing = nil
}

// SubmitEdit replaces the record on the API with the edit form. On success
// the row shows exactly the submitted values; on failure the form stays
// open.
func (l *List) SubmitEdit(ctx context.Context) notify.Result {
	l.mu.Lock()
	if l.editing == nil {
		l.mu.Unlock()
		return notify.Fail(notify.ReasonValidation, "No appointment is being edited.", nil)
	}
	form := *l.editing
	l.mu.Unlock()

	if _, err := l.api.UpdateAppointment(ctx, form); err != nil {
		l.logger.Printf("Error updating appointment: %v", err)
		return notify.Fail(notify.ReasonExternal, updateFailed, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return notify.Quiet()
	}
	if i := l.indexOf(form.ID); i >= 0 {
		l.appointments[i] = form
	}
	if l.editing != nil && l.editing.ID == form.ID {
		l.editing = nil
	}
	return notify.Done(updated)
}

// Row is one appointment with its edit state.
type Row struct {
	models.Appointment
	State string              `json:"state"`
	Form  *models.Appointment `json:"form,omitempty"`
}

type View struct {
	Loading      bool   `json:"loading"`
	Appointments []Row  `json:"appointments"`
	Message      string `json:"message,omitempty"`
}

func (l *List) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	v := View{Loading: l.loading, Appointments: make([]Row, 0, len(l.appointments))}
	for _, a := range l.appointments {
		row := Row{Appointment: a, State: StateView}
		if l.editing != nil && l.editing.ID == a.ID {
			form := *l.editing
			row.State = StateEditing
			row.Form = &form
		}
		v.Appointments = append(v.Appointments, row)
	}
	if !v.Loading && len(v.Appointments) == 0 {
		v.Message = EmptyMessage
	}
	return v
}
