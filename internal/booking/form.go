package booking

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form is the booking form as submitted by the user.
type Form struct {
	Name    string   `json:"name" validate:"required"`
	Email   string   `json:"email" validate:"required,looseemail"`
	Phone   string   `json:"phone" validate:"required"`
	Date    string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string   `json:"time" validate:"required,datetime=15:04"`
	Service string   `json:"service" validate:"required"`
	Details string   `json:"details"`
	Address string   `json:"address" validate:"required"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// looseemail accepts anything shaped like a@b.c anywhere in the value.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// messages keys are "<json field>.<failed tag>".
var messages = map[string]string{
	"name.required":    "Name is required",
	"email.required":   "Email is required",
	"email.looseemail": "Please enter a valid email",
	"phone.required":   "Phone number is required",
	"date.required":    "Date is required",
	"date.datetime":    "Date must be YYYY-MM-DD",
	"time.required":    "Time is required",
	"time.datetime":    "Time must be HH:MM",
	"service.required": "Please select a service",
	"address.required": "Address is required",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	if err := v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + fe[f]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (f Form) normalized() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	f.Service = strings.TrimSpace(f.Service)
	f.Details = strings.TrimSpace(f.Details)
	f.Address = strings.TrimSpace(f.Address)
	return f
}

// Validate checks every field and reports all failures at once. It returns
// nil when the form can be submitted.
func (f Form) Validate() FieldErrors {
	err := validate.Struct(f.normalized())
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return FieldErrors{"form": err.Error()}
	}
	fe := FieldErrors{}
	for _, v := range ves {
		msg, ok := messages[v.Field()+"."+v.Tag()]
		if !ok {
			msg = v.Error()
		}
		fe[v.Field()] = msg
	}
	return fe
}
