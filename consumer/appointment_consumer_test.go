package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"hospital-portal/models"
)

type indexed struct {
	index string
	id    string
	doc   interface{}
}

type fakeIndex struct {
	docs     []indexed
	deleted  []string
	err      error
	failures int
}

func (f *fakeIndex) IndexDocument(ctx context.Context, index string, id string, document interface{}) error {
	if f.err != nil {
		return f.err
	}
	if f.failures > 0 {
		f.failures--
		return errors.New("index unavailable")
	}
	f.docs = append(f.docs, indexed{index: index, id: id, doc: document})
	return nil
}

func (f *fakeIndex) DeleteDocument(ctx context.Context, index string, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, index+"/"+id)
	return nil
}

// fakeReader serves queued messages and records commits. Once the queue is
// empty FetchMessage blocks until ctx ends.
type fakeReader struct {
	queue     []kafka.Message
	fetched   []int64
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	r.fetched = append(r.fetched, msg.Offset)
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func newTestConsumer(idx *fakeIndex) *AppointmentConsumer {
	fixed := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	return &AppointmentConsumer{
		index:         idx,
		shutdown:      make(chan struct{}),
		now:           func() time.Time { return fixed },
		retryDelay:    time.Millisecond,
		maxRetryDelay: 4 * time.Millisecond,
	}
}

func encode(t *testing.T, ev models.Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHandleBookedIndexesAppointment(t *testing.T) {
	idx := &fakeIndex{}
	c := newTestConsumer(idx)
	appt := models.Appointment{ID: "7", DoctorName: "Dr. Heart", Date: "2030-02-02", Time: "08:00"}

	err := c.Handle(context.Background(), encode(t, models.Event{Event: models.EventAppointmentBooked, Email: "ann@test.com", Appointment: &appt}))
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.docs) != 1 || idx.docs[0].index != AppointmentIndex || idx.docs[0].id != "7" {
		t.Fatalf("docs = %+v", idx.docs)
	}
	doc := idx.docs[0].doc.(activityDoc)
	if doc.UserEmail != "ann@test.com" || doc.Event != models.EventAppointmentBooked || doc.IndexedAt.IsZero() {
		t.Errorf("doc = %+v", doc)
	}
}

func TestHandleDeletedRemovesDocument(t *testing.T) {
	idx := &fakeIndex{}
	c := newTestConsumer(idx)

	err := c.Handle(context.Background(), encode(t, models.Event{Event: models.EventAppointmentDeleted, Appointment: &models.Appointment{ID: "7"}}))
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.deleted) != 1 || idx.deleted[0] != "appointments/7" {
		t.Errorf("deleted = %v", idx.deleted)
	}
}

func TestHandleRegistration(t *testing.T) {
	idx := &fakeIndex{}
	c := newTestConsumer(idx)

	if err := c.Handle(context.Background(), encode(t, models.Event{Event: models.EventDoctorRegistered, Email: "who@test.com", Name: "Dr. Who"})); err != nil {
		t.Fatal(err)
	}
	if len(idx.docs) != 1 || idx.docs[0].index != RegistrationIndex || idx.docs[0].id != "doctor:who@test.com" {
		t.Errorf("docs = %+v", idx.docs)
	}
}

func TestHandleErrors(t *testing.T) {
	tests := []struct {
		name      string
		value     []byte
		indexErr  error
		malformed bool
	}{
		{"not json", []byte("{"), nil, true},
		{"booked without appointment", []byte(`{"event":"appointment_booked"}`), nil, true},
		{"deleted without id", []byte(`{"event":"appointment_deleted","appointment":{}}`), nil, true},
		{"index down", []byte(`{"event":"appointment_updated","appointment":{"id":3}}`), errors.New("down"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConsumer(&fakeIndex{err: tt.indexErr})
			err := c.Handle(context.Background(), tt.value)
			if err == nil {
				t.Fatal("expected error")
			}
			var bad *MalformedError
			if errors.As(err, &bad) != tt.malformed {
				t.Errorf("malformed = %v for %v", !tt.malformed, err)
			}
		})
	}
}

func TestHandleUnknownEventIsIgnored(t *testing.T) {
	idx := &fakeIndex{}
	if err := newTestConsumer(idx).Handle(context.Background(), []byte(`{"event":"something_else"}`)); err != nil {
		t.Fatal(err)
	}
	if len(idx.docs)+len(idx.deleted) != 0 {
		t.Error("unknown event touched the index")
	}
}

func bookedMessage(t *testing.T, offset int64, id models.ID) kafka.Message {
	t.Helper()
	appt := models.Appointment{ID: id, UserEmail: "ann@test.com"}
	return kafka.Message{Offset: offset, Value: encode(t, models.Event{Event: models.EventAppointmentBooked, Appointment: &appt})}
}

func TestProcessMessageRetriesUntilIndexed(t *testing.T) {
	idx := &fakeIndex{failures: 3}
	reader := &fakeReader{queue: []kafka.Message{bookedMessage(t, 1, "a"), bookedMessage(t, 2, "b")}}
	c := newTestConsumer(idx)
	c.reader = reader

	c.processMessage(context.Background())

	if len(reader.fetched) != 1 {
		t.Fatalf("fetched %v before the first message was indexed", reader.fetched)
	}
	if len(reader.committed) != 1 || reader.committed[0] != 1 {
		t.Fatalf("committed = %v, want [1]", reader.committed)
	}
	if len(idx.docs) != 1 || idx.docs[0].id != "a" {
		t.Fatalf("docs = %+v", idx.docs)
	}

	c.processMessage(context.Background())
	if len(reader.committed) != 2 || reader.committed[1] != 2 {
		t.Errorf("committed = %v, want [1 2]", reader.committed)
	}
}

func TestProcessMessageLeavesOffsetOnShutdown(t *testing.T) {
	idx := &fakeIndex{err: errors.New("down")}
	reader := &fakeReader{queue: []kafka.Message{bookedMessage(t, 1, "a")}}
	c := newTestConsumer(idx)
	c.reader = reader

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	c.processMessage(ctx)

	if len(reader.committed) != 0 {
		t.Errorf("committed %v although the event was never indexed", reader.committed)
	}
}

func TestProcessMessageCommitsMalformed(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{Offset: 5, Value: []byte("{")}}}
	c := newTestConsumer(&fakeIndex{})
	c.reader = reader

	c.processMessage(context.Background())

	if len(reader.committed) != 1 || reader.committed[0] != 5 {
		t.Errorf("committed = %v, want [5]", reader.committed)
	}
}
