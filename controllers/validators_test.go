package controllers

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestExactlyOneBillable(t *testing.T) {
	tests := []struct {
		name    string
		req     AddLineItemRequest
		wantErr bool
	}{
		{name: "appointment", req: AddLineItemRequest{InvoiceID: 1, AppointmentID: uintPtr(2)}},
		{name: "product with quantity", req: AddLineItemRequest{InvoiceID: 1, ProductID: uintPtr(2), Quantity: 3}},
		{name: "course", req: AddLineItemRequest{InvoiceID: 1, CourseID: uintPtr(2)}},
		{name: "none", req: AddLineItemRequest{InvoiceID: 1}, wantErr: true},
		{name: "two", req: AddLineItemRequest{InvoiceID: 1, ProductID: uintPtr(2), CourseID: uintPtr(3)}, wantErr: true},
		{name: "negative quantity", req: AddLineItemRequest{InvoiceID: 1, ProductID: uintPtr(2), Quantity: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordTag(t *testing.T) {
	valid := RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "Secret123!", FirstName: "Ana", LastName: "Lopez"}
	assert.NoError(t, binding.Validator.ValidateStruct(&valid))

	weak := valid
	weak.Password = "secret123"
	err := binding.Validator.ValidateStruct(&weak)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "password")
	}
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), parseDate("2026-03-14"))
	assert.Nil(t, parseDatePtr(nil))

	s := "2026-12-01"
	got := parseDatePtr(&s)
	if assert.NotNil(t, got) {
		assert.Equal(t, time.December, got.Month())
	}
}
