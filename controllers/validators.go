package controllers

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
)

// DateLayout is the wire format of calendar dates, checked by the
// datetime=2006-01-02 binding tag
const DateLayout = "2006-01-02"

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags to gin's validator
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return utils.ValidPassword(fl.Field().String())
		})
		v.RegisterStructValidation(exactlyOneBillable, AddLineItemRequest{})
	})
}

// exactlyOneBillable reports a line item request naming zero or several
// billables
func exactlyOneBillable(sl validator.StructLevel) {
	req := sl.Current().Interface().(AddLineItemRequest)
	n := 0
	for _, id := range []*uint{req.AppointmentID, req.ProductID, req.CourseID} {
		if id != nil {
			n++
		}
	}
	if n != 1 {
		sl.ReportError(req.AppointmentID, "AppointmentID", "appointment_id", "exactlyonebillable", "")
	}
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

func parseDatePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := parseDate(*s)
	return &t
}
