package testutil

import (
	"testing"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user
const TestPassword = "Secret123!"

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("Failed to create fixture %T: %v", value, err)
	}
}

// CreateUser stores an active user with TestPassword
func CreateUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash fixture password: %v", err)
	}
	user := models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	}
	mustCreate(t, db, &user)
	return user
}

func CreateAppointmentCategory(t *testing.T, db *gorm.DB, name, quotePerHour string) models.AppointmentCategory {
	t.Helper()
	c := models.AppointmentCategory{Name: name, QuotePerHour: decimal.RequireFromString(quotePerHour)}
	mustCreate(t, db, &c)
	return c
}

func CreateProductCategory(t *testing.T, db *gorm.DB, name, vat string) models.ProductCategory {
	t.Helper()
	c := models.ProductCategory{Name: name, VATPercentage: decimal.RequireFromString(vat)}
	mustCreate(t, db, &c)
	return c
}

func CreateCourseCategory(t *testing.T, db *gorm.DB, name string) models.CourseCategory {
	t.Helper()
	c := models.CourseCategory{Name: name, Description: name + " courses"}
	mustCreate(t, db, &c)
	return c
}

// CreateAppointment stores an appointment with an explicit price
func CreateAppointment(t *testing.T, db *gorm.DB, user models.User, category models.AppointmentCategory, price string) models.Appointment {
	t.Helper()
	a := models.Appointment{
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Duration:    60,
		Status:      models.AppointmentStatusWaiting,
		Price:       decimal.RequireFromString(price),
		Description: "Fixture appointment",
		UserID:      user.ID,
		CategoryID:  category.ID,
	}
	mustCreate(t, db, &a)
	return a
}

func CreateProduct(t *testing.T, db *gorm.DB, name, price string, category models.ProductCategory) models.Product {
	t.Helper()
	p := models.Product{
		Name:              name,
		Description:       name + " description",
		Price:             decimal.RequireFromString(price),
		Stock:             10,
		ProductCategoryID: category.ID,
	}
	mustCreate(t, db, &p)
	return p
}

func CreateCourse(t *testing.T, db *gorm.DB, price string, category models.CourseCategory) models.Course {
	t.Helper()
	c := models.Course{
		StartDate:       time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC),
		EnrollmentPrice: decimal.RequireFromString(price),
		Description:     "Fixture course",
		CategoryID:      category.ID,
	}
	mustCreate(t, db, &c)
	return c
}

// CreateInvoice stores an empty WAITING invoice for user
func CreateInvoice(t *testing.T, db *gorm.DB, user models.User) models.Invoice {
	t.Helper()
	inv := models.Invoice{
		PaymentMethod: "CARD",
		UserID:        user.ID,
		Status:        models.InvoiceStatusWaiting,
		TotalPrice:    decimal.Zero,
	}
	mustCreate(t, db, &inv)
	return inv
}

// CreateAddress stores an address of the given type for user
func CreateAddress(t *testing.T, db *gorm.DB, user models.User, kind models.AddressType) models.Address {
	t.Helper()
	a := models.Address{
		Street:      "12 Rue des Lilas",
		City:        "Lyon",
		ZipCode:     "69001",
		Country:     "France",
		AddressType: kind,
		UserID:      user.ID,
	}
	mustCreate(t, db, &a)
	return a
}
