package models

// AppointmentStatus represents the status of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusWaiting   AppointmentStatus = "WAITING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
)

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusWaiting, AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusWaiting   InvoiceStatus = "WAITING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusWaiting, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// EnrollmentStatus represents the state of a user's enrollment on a course.
type EnrollmentStatus string

const (
	EnrollmentStatusWaiting   EnrollmentStatus = "WAITING"
	EnrollmentStatusAccepted  EnrollmentStatus = "ACCEPTED"
	EnrollmentStatusRejected  EnrollmentStatus = "REJECTED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Valid reports whether s is a known enrollment status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusWaiting, EnrollmentStatusAccepted, EnrollmentStatusRejected, EnrollmentStatusCancelled:
		return true
	}
	return false
}
