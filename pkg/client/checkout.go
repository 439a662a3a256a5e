package client

import (
	"strings"
	"time"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/go-playground/validator/v10"
)

// Countries is the list a shopper picks a shipping country from.
var Countries = []string{
	"Australia",
	"Brazil",
	"Canada",
	"France",
	"Germany",
	"India",
	"Italy",
	"Japan",
	"Mexico",
	"Netherlands",
	"South Korea",
	"Spain",
	"United Kingdom",
	"United States",
}

// CheckoutForm is the shipping and payment information entered at checkout.
type CheckoutForm struct {
	Address       string `validate:"required,min=5"`
	City          string `validate:"required,min=2"`
	PostalCode    string `validate:"required,alphanum,min=4,max=10"`
	Country       string `validate:"required,country"`
	PaymentMethod string `validate:"required,oneof='Credit Card' PayPal"`
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		country := fl.Field().String()
		for _, c := range Countries {
			if c == country {
				return true
			}
		}
		return false
	})
	if err != nil {
		panic("client: register country validation: " + err.Error())
	}
	return v
}

// Normalize trims every field. Lengths are checked on the trimmed values.
func (f CheckoutForm) Normalize() CheckoutForm {
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.Country = strings.TrimSpace(f.Country)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
	return f
}

// Validate returns a *FormError naming each rejected field.
func (f CheckoutForm) Validate() error {
	err := formValidator.Struct(f.Normalize())
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[formFieldName(fe.Field())] = formMessage(fe)
	}
	return &FormError{Fields: fields}
}

func formFieldName(field string) string {
	switch field {
	case "PostalCode":
		return "postalCode"
	case "PaymentMethod":
		return "paymentMethod"
	}
	return strings.ToLower(field)
}

func formMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "alphanum":
		return "must contain only letters and digits"
	case "country":
		return "must be one of the supported countries"
	case "oneof":
		return "must be Credit Card or PayPal"
	}
	return "is invalid"
}

// PaymentResultFor builds the confirmation a simulated processor returns for
// a completed payment.
func PaymentResultFor(paymentID, email string) model.PaymentResult {
	return model.PaymentResult{
		ID:           paymentID,
		Status:       "COMPLETED",
		UpdateTime:   time.Now().UTC().Format(time.RFC3339),
		EmailAddress: email,
	}
}
