// Package directory is the home view: the doctor list, disease search and
// the booking dialog.
package directory

import (
	"context"
	"log"
	"strings"
	"sync"

	"hospital-portal/models"
	"hospital-portal/notify"
	"hospital-portal/session"
)

const (
	NotFoundMessage = "No doctors found for this disease"
	bookedMessage   = "Appointment booked successfully!"
	bookFailed      = "Failed to book appointment."
	fetchFailed     = "Failed to fetch doctors."
)

// API is the slice of the hospital API this view calls.
type API interface {
	Doctors(ctx context.Context) ([]models.Doctor, error)
	CreateAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error)
}

// Directory holds one mounted home view. Methods are safe for concurrent
// use; the lock is never held across an API call.
type Directory struct {
	api    API
	logger *log.Logger

	mu       sync.Mutex
	mounted  bool
	doctors  []models.Doctor
	term     string
	results  []models.Doctor
	selected *models.Doctor
}

func New(api API, logger *log.Logger) *Directory {
	return &Directory{api: api, logger: logger, mounted: true}
}

// Mount fetches the doctor list once. On failure the list stays empty.
func (d *Directory) Mount(ctx context.Context) notify.Result {
	doctors, err := d.api.Doctors(ctx)
	if err != nil {
		d.logger.Printf("Error fetching doctors: %v", err)
		return notify.Fail(notify.ReasonExternal, fetchFailed, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return notify.Quiet()
	}
	d.doctors = doctors
	return notify.Quiet()
}

// Unmount discards the view. Results of calls still in flight are dropped.
func (d *Directory) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mounted = false
	d.selected = nil
}

// Search filters the fetched list and keeps the result as the view's
// current list.
func (d *Directory) Search(term string) []models.Doctor {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.term = term
	d.results = Filter(d.doctors, term)
	return d.results
}

// Filter returns the doctors with at least one disease containing term,
// ignoring case. The empty term matches every doctor that lists a disease.
func Filter(doctors []models.Doctor, term string) []models.Doctor {
	needle := strings.ToLower(term)
	out := []models.Doctor{}
	for _, doc := range doctors {
		for _, disease := range doc.Diseases {
			if strings.Contains(strings.ToLower(disease), needle) {
				out = append(out, doc)
				break
			}
		}
	}
	return out
}

// OpenBooking shows the dialog for the doctor with id, replacing any open
// dialog. The doctor must be in the fetched list.
func (d *Directory) OpenBooking(id models.ID) notify.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.doctors {
		if d.doctors[i].ID == id {
			doc := d.doctors[i]
			d.selected = &doc
			return notify.Quiet()
		}
	}
	return notify.Fail(notify.ReasonNotFound, "Doctor not found.", nil)
}

func (d *Directory) CloseBooking() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = nil
}

// Book submits the open dialog for the session's user. The dialog closes
// only on success.
func (d *Directory) Book(ctx context.Context, s session.Session, date, time string) (models.Appointment, notify.Result) {
	d.mu.Lock()
	doc := d.selected
	d.mu.Unlock()

	if doc == nil {
		return models.Appointment{}, notify.Fail(notify.ReasonValidation, "Select a doctor first.", nil)
	}
	fields := map[string]string{}
	if strings.TrimSpace(date) == "" {
		fields["date"] = "Date is required"
	}
	if strings.TrimSpace(time) == "" {
		fields["time"] = "Time is required"
	}
	if len(fields) > 0 {
		return models.Appointment{}, notify.Invalid(fields)
	}

	appointment := models.Appointment{
		DoctorID:       doc.ID,
		DoctorName:     doc.Name,
		Specialization: doc.Specialty,
		Date:           date,
		Time:           time,
		UserEmail:      s.Email,
	}

	created, err := d.api.CreateAppointment(ctx, appointment)
	if err != nil {
		d.logger.Printf("Error booking appointment: %v", err)
		return models.Appointment{}, notify.Fail(notify.ReasonExternal, bookFailed, err)
	}
	if created.ID == "" {
		created = appointment
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mounted && d.selected != nil && d.selected.ID == doc.ID {
		d.selected = nil
	}
	return created, notify.Done(bookedMessage)
}

// View is the JSON shape of the home page.
type View struct {
	Term     string          `json:"term"`
	Doctors  []models.Doctor `json:"doctors"`
	Message  string          `json:"message,omitempty"`
	Selected *models.Doctor  `json:"selected,omitempty"`
}

func (d *Directory) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := View{Term: d.term, Doctors: d.results, Selected: d.selected}
	if v.Doctors == nil {
		v.Doctors = []models.Doctor{}
	}
	if len(v.Doctors) == 0 {
		v.Message = NotFoundMessage
	}
	return v
}
