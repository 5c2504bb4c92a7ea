package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourseFilter narrows List. UserID selects the courses a user is enrolled on
// and takes precedence over CategoryID.
type CourseFilter struct {
	UserID     *uint
	CategoryID *uint
}

type CreateCourseInput struct {
	StartDate       time.Time
	EndDate         time.Time
	EnrollmentPrice decimal.Decimal
	Description     string
	CategoryID      uint
}

type UpdateCourseInput struct {
	StartDate       *time.Time
	EndDate         *time.Time
	EnrollmentPrice *decimal.Decimal
	Description     *string
	CategoryID      *uint
}

// CourseService manages courses, their images and user enrollments
type CourseService struct {
	db     *gorm.DB
	images *ImageService
}

func NewCourseService(db *gorm.DB, images *ImageService) *CourseService {
	return &CourseService{db: db, images: images}
}

func withCourseDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Images", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("course_images.id")
	})
}

func validCourseDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return badRequest("INVALID_DATE", "start and end dates are required")
	}
	if end.Before(start) {
		return badRequest("INVALID_DATE_RANGE", "end date must not be before start date")
	}
	return nil
}

func (s *CourseService) List(ctx context.Context, f CourseFilter) ([]models.Course, error) {
	q := withCourseDetails(s.db.WithContext(ctx)).Order("courses.id")
	switch {
	case f.UserID != nil:
		enrolled := s.db.Model(&models.CourseUser{}).Select("course_id").Where("user_id = ?", *f.UserID)
		q = q.Where("courses.id IN (?)", enrolled)
	case f.CategoryID != nil:
		q = q.Where("courses.category_id = ?", *f.CategoryID)
	}

	var courses []models.Course
	if err := q.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := withCourseDetails(s.db.WithContext(ctx)).First(&course, id).Error; err != nil {
		return nil, lookupError(err, "course", "id", id)
	}
	return &course, nil
}

func (s *CourseService) Create(ctx context.Context, in CreateCourseInput) (*models.Course, error) {
	if err := validCourseDates(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if in.EnrollmentPrice.IsNegative() {
		return nil, badRequest("INVALID_PRICE", "enrollment price must not be negative")
	}

	course := models.Course{
		StartDate:       dateOnly(in.StartDate),
		EndDate:         dateOnly(in.EndDate),
		EnrollmentPrice: in.EnrollmentPrice,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		Images:          []models.CourseImage{},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&course.Category, in.CategoryID).Error; err != nil {
			return lookupError(err, "course category", "id", in.CategoryID)
		}
		return tx.Omit(clause.Associations).Create(&course).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("course_id", course.ID).Info("Course created")
	return &course, nil
}

func (s *CourseService) Update(ctx context.Context, id uint, in UpdateCourseInput) (*models.Course, error) {
	if in.EnrollmentPrice != nil && in.EnrollmentPrice.IsNegative() {
		return nil, badRequest("INVALID_PRICE", "enrollment price must not be negative")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, id).Error; err != nil {
			return lookupError(err, "course", "id", id)
		}

		start, end := course.StartDate, course.EndDate
		updates := map[string]interface{}{}
		if in.StartDate != nil {
			start = dateOnly(*in.StartDate)
			updates["start_date"] = start
		}
		if in.EndDate != nil {
			end = dateOnly(*in.EndDate)
			updates["end_date"] = end
		}
		if err := validCourseDates(start, end); err != nil {
			return err
		}
		if in.EnrollmentPrice != nil {
			updates["enrollment_price"] = *in.EnrollmentPrice
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.CategoryID != nil {
			if err := tx.Select("id").First(&models.CourseCategory{}, *in.CategoryID).Error; err != nil {
				return lookupError(err, "course category", "id", *in.CategoryID)
			}
			updates["category_id"] = *in.CategoryID
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&course).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *CourseService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Course{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete course: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("course", "id", id)
	}
	logrus.WithField("course_id", id).Info("Course deleted")
	return nil
}

// Enroll registers a user on a course with a WAITING enrollment
func (s *CourseService) Enroll(ctx context.Context, p models.Principal, courseID, userID uint) (*models.CourseUser, error) {
	if !p.CanActFor(userID) {
		return nil, forbidden("cannot enroll another user")
	}

	enrollment := models.CourseUser{CourseID: courseID, UserID: userID, Status: models.EnrollmentStatusWaiting}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, userID).Error; err != nil {
			return lookupError(err, "user", "id", userID)
		}
		if err := tx.Select("id").First(&models.Course{}, courseID).Error; err != nil {
			return lookupError(err, "course", "id", courseID)
		}

		var count int64
		if err := tx.Model(&models.CourseUser{}).Where("course_id = ? AND user_id = ?", courseID, userID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if count > 0 {
			return newError(ErrAlreadyExists, "ENROLLMENT_ALREADY_EXISTS", "user %d is already enrolled on course %d", userID, courseID)
		}

		err := tx.Omit(clause.Associations).Create(&enrollment).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newError(ErrAlreadyExists, "ENROLLMENT_ALREADY_EXISTS", "user %d is already enrolled on course %d", userID, courseID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"course_id": courseID, "user_id": userID}).Info("User enrolled on course")
	return &enrollment, nil
}

// ChangeEnrollmentStatus sets the status of an existing enrollment
func (s *CourseService) ChangeEnrollmentStatus(ctx context.Context, courseID, userID uint, status models.EnrollmentStatus) (*models.CourseUser, error) {
	if !status.Valid() {
		return nil, badRequest("INVALID_STATUS", "invalid enrollment status %q", status)
	}

	var enrollment models.CourseUser
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ? AND user_id = ?", courseID, userID).First(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrNotFound, "ENROLLMENT_NOT_FOUND", "user %d is not enrolled on course %d", userID, courseID)
			}
			return fmt.Errorf("failed to load enrollment: %w", err)
		}
		enrollment.Status = status
		return tx.Model(&models.CourseUser{}).
			Where("course_id = ? AND user_id = ?", courseID, userID).
			Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"course_id": courseID, "user_id": userID, "status": status}).Info("Enrollment status changed")
	return &enrollment, nil
}

// AddImage uploads an image and appends it to the course's images
func (s *CourseService) AddImage(ctx context.Context, id uint, fh *multipart.FileHeader) (*models.Course, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	name, err := s.images.UploadImage(ctx, fh)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&models.CourseImage{CourseID: id, Name: name}).Error; err != nil {
		if cleanupErr := s.images.DeleteImage(ctx, name); cleanupErr != nil {
			logrus.WithError(cleanupErr).WithField("name", name).Warn("Failed to remove orphaned image")
		}
		return nil, fmt.Errorf("failed to add course image: %w", err)
	}
	return s.Get(ctx, id)
}

// RemoveImage detaches the named image from the course and deletes the file
func (s *CourseService) RemoveImage(ctx context.Context, id uint, name string) (*models.Course, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Where("course_id = ? AND name = ?", id, name).Delete(&models.CourseImage{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to remove course image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("course image", "name", name)
	}
	if err := s.images.DeleteImage(ctx, name); err != nil {
		logrus.WithError(err).WithField("name", name).Warn("Failed to remove course image file")
	}
	return s.Get(ctx, id)
}
