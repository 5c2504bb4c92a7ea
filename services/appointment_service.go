package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateAppointmentInput struct {
	UserID      uint
	CategoryID  uint
	Date        time.Time
	Duration    int // minutes
	Description string
}

type UpdateAppointmentInput struct {
	Date        *time.Time
	Duration    *int
	Description *string
}

// AppointmentService books and manages appointments
type AppointmentService struct {
	db *gorm.DB
}

func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{db: db}
}

// dateOnly drops the time of day, keeping the calendar date in UTC
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validDuration(minutes int) error {
	if minutes <= 0 {
		return badRequest("INVALID_DURATION", "duration must be a positive number of minutes")
	}
	return nil
}

// List returns appointments, optionally for one user. Non-admin callers only
// see their own.
func (s *AppointmentService) List(ctx context.Context, p models.Principal, userID *uint) ([]models.Appointment, error) {
	q := s.db.WithContext(ctx).Preload("Category").Order("date, id")
	if !p.IsAdmin() {
		q = q.Where("user_id = ?", p.UserID)
	} else if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var appointments []models.Appointment
	if err := q.Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *AppointmentService) Get(ctx context.Context, p models.Principal, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.WithContext(ctx).Preload("Category").First(&appointment, id).Error; err != nil {
		return nil, lookupError(err, "appointment", "id", id)
	}
	if !p.CanActFor(appointment.UserID) {
		return nil, forbidden("appointment %d belongs to another user", id)
	}
	return &appointment, nil
}

// Create books a WAITING appointment priced from the category's hourly quote
func (s *AppointmentService) Create(ctx context.Context, p models.Principal, in CreateAppointmentInput) (*models.Appointment, error) {
	if !p.CanActFor(in.UserID) {
		return nil, forbidden("cannot book appointments for another user")
	}
	if err := validDuration(in.Duration); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, badRequest("INVALID_DATE", "date is required")
	}

	appointment := models.Appointment{
		Date:        dateOnly(in.Date),
		Duration:    in.Duration,
		Status:      models.AppointmentStatusWaiting,
		Description: in.Description,
		UserID:      in.UserID,
		CategoryID:  in.CategoryID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, in.UserID).Error; err != nil {
			return lookupError(err, "user", "id", in.UserID)
		}
		var category models.AppointmentCategory
		if err := tx.First(&category, in.CategoryID).Error; err != nil {
			return lookupError(err, "appointment category", "id", in.CategoryID)
		}

		appointment.Price = AppointmentPrice(category.QuotePerHour, in.Duration)
		appointment.Category = category
		if err := tx.Omit(clause.Associations).Create(&appointment).Error; err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"user_id":        appointment.UserID,
		"duration":       appointment.Duration,
		"price":          appointment.Price.StringFixed(2),
	}).Info("Appointment booked")
	return &appointment, nil
}

// Update changes date, duration or description. A new duration reprices the
// appointment from its category's current quote.
func (s *AppointmentService) Update(ctx context.Context, p models.Principal, id uint, in UpdateAppointmentInput) (*models.Appointment, error) {
	if in.Duration != nil {
		if err := validDuration(*in.Duration); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appointment models.Appointment
		if err := tx.Preload("Category").First(&appointment, id).Error; err != nil {
			return lookupError(err, "appointment", "id", id)
		}
		if !p.CanActFor(appointment.UserID) {
			return forbidden("appointment %d belongs to another user", id)
		}

		updates := map[string]interface{}{}
		if in.Date != nil {
			updates["date"] = dateOnly(*in.Date)
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Duration != nil {
			updates["duration"] = *in.Duration
			updates["price"] = AppointmentPrice(appointment.Category.QuotePerHour, *in.Duration)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&appointment).Omit(clause.Associations).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p, id)
}

// ChangeStatus sets any valid status; there is no transition table
func (s *AppointmentService) ChangeStatus(ctx context.Context, p models.Principal, id uint, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, badRequest("INVALID_STATUS", "invalid appointment status %q", status)
	}
	res := s.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to change appointment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("appointment", "id", id)
	}
	logrus.WithFields(logrus.Fields{"appointment_id": id, "status": status}).Info("Appointment status changed")
	return s.Get(ctx, p, id)
}

func (s *AppointmentService) Delete(ctx context.Context, p models.Principal, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appointment models.Appointment
		if err := tx.Select("id", "user_id").First(&appointment, id).Error; err != nil {
			return lookupError(err, "appointment", "id", id)
		}
		if !p.CanActFor(appointment.UserID) {
			return forbidden("appointment %d belongs to another user", id)
		}
		if err := tx.Delete(&appointment).Error; err != nil {
			return fmt.Errorf("failed to delete appointment: %w", err)
		}
		logrus.WithField("appointment_id", id).Info("Appointment deleted")
		return nil
	})
}

// BookedDays returns the distinct dates that have at least one appointment,
// in ascending order
func (s *AppointmentService) BookedDays(ctx context.Context) ([]time.Time, error) {
	var appointments []models.Appointment
	if err := s.db.WithContext(ctx).Select("date").Order("date").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to list booked days: %w", err)
	}

	days := make([]time.Time, 0, len(appointments))
	seen := make(map[string]bool, len(appointments))
	for _, a := range appointments {
		day := dateOnly(a.Date)
		key := day.Format(time.DateOnly)
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, day)
	}
	return days, nil
}
