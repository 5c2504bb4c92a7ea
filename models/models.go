package models

// All returns every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&AppointmentCategory{},
		&ProductCategory{},
		&CourseCategory{},
		&Appointment{},
		&Product{},
		&Course{},
		&CourseImage{},
		&CourseUser{},
		&Cart{},
		&Invoice{},
		&LineItem{},
		&VerificationToken{},
		&Address{},
	}
}

// SameRecord reports whether two primary keys identify the same stored row.
// A zero key belongs to an unsaved record, which is never equal to anything.
func SameRecord(a, b uint) bool {
	return a != 0 && a == b
}
