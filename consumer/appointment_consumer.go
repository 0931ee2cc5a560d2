package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"hospital-portal/models"
)

const (
	AppointmentIndex  = "appointments"
	RegistrationIndex = "registrations"
)

// Index is the part of the Elasticsearch client the consumer writes to.
type Index interface {
	IndexDocument(ctx context.Context, index string, id string, document interface{}) error
	DeleteDocument(ctx context.Context, index string, id string) error
}

// activityDoc is what lands in the appointments index.
type activityDoc struct {
	models.Appointment
	Event     string    `json:"event"`
	IndexedAt time.Time `json:"indexedAt"`
}

type registrationDoc struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	IndexedAt time.Time `json:"indexedAt"`
}

// messageReader is the part of kafka.Reader the consumer drives.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	minRetryDelay = time.Second
	maxRetryDelay = 30 * time.Second
)

// AppointmentConsumer mirrors appointment activity from Kafka into
// Elasticsearch.
type AppointmentConsumer struct {
	index    Index
	reader   messageReader
	shutdown chan struct{}
	done     chan struct{}
	now      func() time.Time

	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

func NewAppointmentConsumer(broker, topic string, index Index) *AppointmentConsumer {
	return &AppointmentConsumer{
		index: index,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{broker},
			Topic:   topic,
			GroupID: "hospital-portal-activity",
			MaxWait: 10 * time.Second,
		}),
		shutdown:      make(chan struct{}),
		done:          make(chan struct{}),
		now:           time.Now,
		retryDelay:    minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

func (c *AppointmentConsumer) Start(ctx context.Context) {
	log.Println("Starting Kafka consumer...")

	go func() {
		defer close(c.done)
		for {
			select {
			case <-c.shutdown:
				return
			case <-ctx.Done():
				return
			default:
				c.processMessage(ctx)
			}
		}
	}()
}

// Stop ends the read loop and closes the reader. Start must have been
// called.
func (c *AppointmentConsumer) Stop() {
	close(c.shutdown)
	if err := c.reader.Close(); err != nil {
		log.Printf("Error closing Kafka reader: %v", err)
	}
	<-c.done
}

// processMessage handles one message and commits its offset only once the
// index is updated. Malformed messages are committed and skipped. Any other
// failure retries the same message, since fetching the next one and
// committing it would move the group offset past this one.
func (c *AppointmentConsumer) processMessage(ctx context.Context) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
			return
		}
		log.Printf("Kafka read error: %v (will retry)", err)
		time.Sleep(5 * time.Second)
		return
	}

	if !c.handleWithRetry(ctx, msg) {
		return
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Printf("Failed to commit offset %d: %v", msg.Offset, err)
	}
}

// handleWithRetry reports whether msg may be committed. It returns false
// only when the consumer is stopping with msg still unprocessed.
func (c *AppointmentConsumer) handleWithRetry(ctx context.Context, msg kafka.Message) bool {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		err := c.Handle(ctx, msg.Value)
		if err == nil {
			return true
		}
		var bad *MalformedError
		if errors.As(err, &bad) {
			log.Printf("Skipping message at offset %d: %v", msg.Offset, err)
			return true
		}

		log.Printf("Failed to process message at offset %d (attempt %d, retrying in %s): %v", msg.Offset, attempt, delay, err)
		select {
		case <-ctx.Done():
			return false
		case <-c.shutdown:
			return false
		case <-time.After(delay):
		}
		if delay *= 2; delay > c.maxRetryDelay {
			delay = c.maxRetryDelay
		}
	}
}

// MalformedError marks a message that can never be processed.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return "malformed event: " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Handle applies one event to the index.
func (c *AppointmentConsumer) Handle(ctx context.Context, value []byte) error {
	var event models.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return &MalformedError{Err: err}
	}

	switch event.Event {
	case models.EventAppointmentBooked, models.EventAppointmentUpdated:
		if event.Appointment == nil || event.Appointment.ID == "" {
			return &MalformedError{Err: fmt.Errorf("%s without appointment id", event.Event)}
		}
		doc := activityDoc{Appointment: *event.Appointment, Event: event.Event, IndexedAt: c.now()}
		if doc.UserEmail == "" {
			doc.UserEmail = event.Email
		}
		if err := c.index.IndexDocument(ctx, AppointmentIndex, event.Appointment.ID.String(), doc); err != nil {
			return fmt.Errorf("index appointment: %w", err)
		}
		log.Printf("Processed %s event for appointment %s", event.Event, event.Appointment.ID)

	case models.EventAppointmentDeleted:
		if event.Appointment == nil || event.Appointment.ID == "" {
			return &MalformedError{Err: errors.New("appointment_deleted without appointment id")}
		}
		if err := c.index.DeleteDocument(ctx, AppointmentIndex, event.Appointment.ID.String()); err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		log.Printf("Processed %s event for appointment %s", event.Event, event.Appointment.ID)

	case models.EventUserRegistered, models.EventDoctorRegistered:
		kind := "user"
		if event.Event == models.EventDoctorRegistered {
			kind = "doctor"
		}
		doc := registrationDoc{Email: event.Email, Name: event.Name, Kind: kind, IndexedAt: c.now()}
		if err := c.index.IndexDocument(ctx, RegistrationIndex, kind+":"+event.Email, doc); err != nil {
			return fmt.Errorf("index registration: %w", err)
		}
		log.Printf("Processed %s event for %s", event.Event, event.Email)

	default:
		log.Printf("Unknown event type: %s", event.Event)
	}
	return nil
}
