package directory

import (
	"context"
	"errors"
	"io"
	"log"
	"slices"
	"testing"

	"hospital-portal/models"
	"hospital-portal/notify"
	"hospital-portal/session"
)

type fakeAPI struct {
	doctors    []models.Doctor
	doctorsErr error
	createErr  error
	created    []models.Appointment
	// onCreate runs before CreateAppointment returns.
	onCreate func()
}

func (f *fakeAPI) Doctors(ctx context.Context) ([]models.Doctor, error) {
	return f.doctors, f.doctorsErr
}

func (f *fakeAPI) CreateAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.createErr != nil {
		return models.Appointment{}, f.createErr
	}
	a.ID = "100"
	f.created = append(f.created, a)
	return a, nil
}

var quietLogger = log.New(io.Discard, "", 0)

var sampleDoctors = []models.Doctor{
	{ID: "1", Name: "Dr. A", Specialty: "Cardio", Diseases: []string{"flu", "cold"}},
	{ID: "2", Name: "Dr. B", Specialty: "Derm", Diseases: []string{"Eczema", "Acne"}},
	{ID: "3", Name: "Dr. C", Specialty: "General", Diseases: nil},
}

func ids(doctors []models.Doctor) []models.ID {
	out := []models.ID{}
	for _, d := range doctors {
		out = append(out, d.ID)
	}
	return out
}

func mounted(t *testing.T, api *fakeAPI) *Directory {
	t.Helper()
	d := New(api, quietLogger)
	if res := d.Mount(context.Background()); !res.OK() {
		t.Fatalf("mount: %+v", res)
	}
	return d
}

func TestFilter(t *testing.T) {
	tests := []struct {
		term string
		want []models.ID
	}{
		{"flu", []models.ID{"1"}},
		{"FLU", []models.ID{"1"}},
		{"l", []models.ID{"1"}},
		{"ecz", []models.ID{"2"}},
		{"c", []models.ID{"1", "2"}},
		{"cancer", []models.ID{}},
		{"", []models.ID{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := ids(Filter(sampleDoctors, tt.term))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

// Every doctor is included iff one of its diseases contains the term.
func TestFilterMatchesDiseaseRule(t *testing.T) {
	terms := []string{"", "f", "FL", "co", "acne", "x", "E"}
	for _, term := range terms {
		got := Filter(sampleDoctors, term)
		for _, doc := range sampleDoctors {
			want := false
			for _, disease := range doc.Diseases {
				if containsFold(disease, term) {
					want = true
				}
			}
			included := slices.ContainsFunc(got, func(d models.Doctor) bool { return d.ID == doc.ID })
			if included != want {
				t.Errorf("term %q doctor %s: included=%v want=%v", term, doc.ID, included, want)
			}
		}
	}
}

func containsFold(s, sub string) bool {
	ls, lsub := []rune(s), []rune(sub)
	for i := 0; i+len(lsub) <= len(ls); i++ {
		match := true
		for j := range lsub {
			if toLower(ls[i+j]) != toLower(lsub[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func TestSearchScenario(t *testing.T) {
	d := mounted(t, &fakeAPI{doctors: sampleDoctors[:1]})

	if got := ids(d.Search("flu")); !slices.Equal(got, []models.ID{"1"}) {
		t.Errorf("flu: %v", got)
	}
	if got := ids(d.Search("FLU")); !slices.Equal(got, []models.ID{"1"}) {
		t.Errorf("FLU: %v", got)
	}

	if got := d.Search("cancer"); len(got) != 0 {
		t.Errorf("cancer: %v", got)
	}
	v := d.View()
	if v.Message != NotFoundMessage {
		t.Errorf("message = %q", v.Message)
	}
	if v.Term != "cancer" {
		t.Errorf("term = %q", v.Term)
	}
}

func TestMountFailureLeavesListEmpty(t *testing.T) {
	d := New(&fakeAPI{doctorsErr: errors.New("connection refused")}, quietLogger)

	res := d.Mount(context.Background())
	if res.Reason != notify.ReasonExternal || res.Notice == nil || res.Notice.Level != notify.LevelError {
		t.Errorf("result = %+v", res)
	}
	if got := d.Search(""); len(got) != 0 {
		t.Errorf("search after failed mount = %v", got)
	}
}

func TestBookingDialog(t *testing.T) {
	d := mounted(t, &fakeAPI{doctors: sampleDoctors})

	if res := d.OpenBooking("1"); !res.OK() {
		t.Fatalf("open: %+v", res)
	}
	if res := d.OpenBooking("2"); !res.OK() {
		t.Fatalf("open second: %+v", res)
	}
	if sel := d.View().Selected; sel == nil || sel.ID != "2" {
		t.Errorf("selected = %+v, want only Dr. B open", sel)
	}

	d.CloseBooking()
	if d.View().Selected != nil {
		t.Error("dialog still open after close")
	}

	if res := d.OpenBooking("404"); res.Reason != notify.ReasonNotFound {
		t.Errorf("open unknown doctor: %+v", res)
	}
}

func TestBookConstructsAppointment(t *testing.T) {
	api := &fakeAPI{doctors: sampleDoctors}
	d := mounted(t, api)
	d.OpenBooking("1")

	s := session.Session{ID: "sid", Email: "user@test.com"}
	created, res := d.Book(context.Background(), s, "2030-05-01", "09:30")
	if !res.OK() {
		t.Fatalf("book: %+v", res)
	}
	if res.Notice == nil || res.Notice.Message != "Appointment booked successfully!" {
		t.Errorf("notice = %+v", res.Notice)
	}
	want := models.Appointment{ID: "100", DoctorID: "1", DoctorName: "Dr. A", Specialization: "Cardio", Date: "2030-05-01", Time: "09:30", UserEmail: "user@test.com"}
	if created != want {
		t.Errorf("created = %+v, want %+v", created, want)
	}
	if d.View().Selected != nil {
		t.Error("dialog should close after booking")
	}
}

func TestBookFailureKeepsDialogOpen(t *testing.T) {
	d := mounted(t, &fakeAPI{doctors: sampleDoctors, createErr: errors.New("boom")})
	d.OpenBooking("1")

	_, res := d.Book(context.Background(), session.Session{Email: "u@test.com"}, "2030-05-01", "09:30")
	if res.Reason != notify.ReasonExternal || res.Notice == nil || res.Notice.Level != notify.LevelError {
		t.Errorf("result = %+v", res)
	}
	if d.View().Selected == nil {
		t.Error("dialog closed after a failed booking")
	}
}

func TestBookValidation(t *testing.T) {
	api := &fakeAPI{doctors: sampleDoctors}
	d := mounted(t, api)

	if _, res := d.Book(context.Background(), session.Session{Email: "u@test.com"}, "2030-05-01", "09:30"); res.Reason != notify.ReasonValidation {
		t.Errorf("book without dialog: %+v", res)
	}

	d.OpenBooking("1")
	_, res := d.Book(context.Background(), session.Session{Email: "u@test.com"}, "", " ")
	if res.Reason != notify.ReasonValidation || len(res.Fields) != 2 {
		t.Errorf("book without date/time: %+v", res)
	}
	if len(api.created) != 0 {
		t.Error("validation failure reached the API")
	}
}

func TestUnmountDropsLateResults(t *testing.T) {
	api := &fakeAPI{doctors: sampleDoctors}
	d := mounted(t, api)
	d.OpenBooking("1")

	api.onCreate = d.Unmount
	_, res := d.Book(context.Background(), session.Session{Email: "u@test.com"}, "2030-05-01", "09:30")
	if !res.OK() {
		t.Fatalf("book: %+v", res)
	}
	if d.View().Selected != nil {
		t.Error("unmounted view should have no dialog")
	}

	late := New(&fakeAPI{doctors: sampleDoctors}, quietLogger)
	late.Unmount()
	late.Mount(context.Background())
	if got := late.Search(""); len(got) != 0 {
		t.Errorf("unmounted view accepted fetched doctors: %v", got)
	}
}
