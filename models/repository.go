package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Repository is the data store behind the hospital API.
type Repository interface {
	ListDoctors(ctx context.Context) ([]Doctor, error)
	CreateDoctor(ctx context.Context, doctor *Doctor) error
	CreateAppointment(ctx context.Context, appointment *Appointment) error
	ListAppointments(ctx context.Context, userEmail string) ([]Appointment, error)
	UpdateAppointment(ctx context.Context, appointment *Appointment) error
	DeleteAppointment(ctx context.Context, id ID) error
	ListUsers(ctx context.Context, email string) ([]User, error)
	CreateUser(ctx context.Context, user *User) error
	Close() error
}

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Doctor{}, &Appointment{}, &User{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	doctors := []Doctor{}
	if err := r.db.WithContext(ctx).Order("name").Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *PostgresRepository) CreateDoctor(ctx context.Context, doctor *Doctor) error {
	if doctor.ID == "" {
		doctor.ID = newID()
	}
	return r.db.WithContext(ctx).Create(doctor).Error
}

func (r *PostgresRepository) CreateAppointment(ctx context.Context, appointment *Appointment) error {
	if appointment.ID == "" {
		appointment.ID = newID()
	}
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *PostgresRepository) ListAppointments(ctx context.Context, userEmail string) ([]Appointment, error) {
	appointments := []Appointment{}
	q := r.db.WithContext(ctx).Order("date, time")
	if userEmail != "" {
		q = q.Where("user_email = ?", userEmail)
	}
	if err := q.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *PostgresRepository) UpdateAppointment(ctx context.Context, appointment *Appointment) error {
	res := r.db.WithContext(ctx).Model(&Appointment{ID: appointment.ID}).Select("*").Updates(appointment)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteAppointment(ctx context.Context, id ID) error {
	res := r.db.WithContext(ctx).Delete(&Appointment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context, email string) ([]User, error) {
	users := []User{}
	q := r.db.WithContext(ctx)
	if email != "" {
		q = q.Where("email = ?", email)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *User) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	if user.ID == "" {
		user.ID = newID()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newID() ID {
	return ID(uuid.New().String())
}
