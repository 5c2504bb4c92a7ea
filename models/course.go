package models

import (
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Course represents a training course users can enroll on
type Course struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	StartDate       time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate         time.Time       `gorm:"type:date;not null" json:"end_date"`
	EnrollmentPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"enrollment_price"`
	Description     string          `gorm:"size:5000;not null" json:"description"`
	CategoryID      uint            `gorm:"not null;index" json:"category_id"`
	Category        CourseCategory  `gorm:"foreignKey:CategoryID" json:"category"`
	Images          []CourseImage   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"images"`
	Enrollments     []CourseUser    `gorm:"foreignKey:CourseID" json:"enrollments,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Course model
func (Course) TableName() string {
	return "courses"
}

func (c *Course) BillableID() uint          { return c.ID }
func (c *Course) BillableKind() BillableKind { return BillableCourse }
func (*Course) billable()                    {}

// ImageNames returns the stored image names in insertion order
func (c *Course) ImageNames() []string {
	names := make([]string, 0, len(c.Images))
	for _, img := range c.Images {
		names = append(names, img.Name)
	}
	return names
}

// CourseImage is one image attached to a course
type CourseImage struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	CourseID uint   `gorm:"not null;index" json:"-"`
	Name     string `gorm:"size:255;not null" json:"name"`
	URL      string `gorm:"-" json:"url"`
}

func (i *CourseImage) AfterFind(tx *gorm.DB) error {
	i.URL = utils.GetFileURL(i.Name)
	return nil
}

// TableName specifies the table name for the CourseImage model
func (CourseImage) TableName() string {
	return "course_images"
}

// CourseUser is an enrollment of a user on a course, keyed by (course, user)
type CourseUser struct {
	CourseID  uint             `gorm:"primaryKey;autoIncrement:false" json:"course_id"`
	UserID    uint             `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      User             `gorm:"foreignKey:UserID" json:"-"`
	Status    EnrollmentStatus `gorm:"size:20;not null;default:'WAITING'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the CourseUser model
func (CourseUser) TableName() string {
	return "course_users"
}
