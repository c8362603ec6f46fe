package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carenet/portal/internal/core/domain"
)

const (
	dateLayout = "2006-01-02"
	adultAge   = 18
	phoneLen   = 10
)

var personNameRe = regexp.MustCompile(`^[A-Za-z ]*$`)

// Validator checks entities and forms before they reach the backend. It is
// fail-fast: only the first failing rule, in field order, is reported.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// careseekerRules is the save-time view of a careseeker profile. Field order
// decides which message wins when several rules fail.
type careseekerRules struct {
	FirstName string `json:"firstName" validate:"personname"`
	LastName  string `json:"lastName"  validate:"personname"`
	Phone     string `json:"phone"     validate:"phone10"`
	DOB       string `json:"dob"       validate:"required,isodate,notfuture,adult"`
}

// NewValidator registers the portal's custom rules. now is consulted on every
// call so date cutoffs follow the clock; nil means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	pv := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}
	pv.v.RegisterTagNameFunc(jsonFieldName)
	must(pv.v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRe.MatchString(fl.Field().String())
	}))
	must(pv.v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return len(DigitsOnly(fl.Field().String(), 0)) == phoneLen
	}))
	must(pv.v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	}))
	must(pv.v.RegisterValidation("notfuture", pv.notFuture))
	must(pv.v.RegisterValidation("adult", pv.adult))
	return pv
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func (pv *Validator) today() time.Time {
	now := pv.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (pv *Validator) notFuture(fl validator.FieldLevel) bool {
	dob, err := time.Parse(dateLayout, fl.Field().String())
	if err != nil {
		return true
	}
	return !dob.After(pv.today())
}

func (pv *Validator) adult(fl validator.FieldLevel) bool {
	dob, err := time.Parse(dateLayout, fl.Field().String())
	if err != nil {
		return true
	}
	return !dob.After(pv.today().AddDate(-adultAge, 0, 0))
}

// Careseeker validates a profile before save.
func (pv *Validator) Careseeker(p domain.CareseekerProfile) error {
	return pv.Struct(careseekerRules{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		DOB:       strings.TrimSpace(p.DOB),
	})
}

// Caregiver validates a profile before save.
func (pv *Validator) Caregiver(p domain.CaregiverProfile) error {
	return pv.Struct(p)
}

// Feedback validates a form before submit or update.
func (pv *Validator) Feedback(f domain.Feedback) error {
	return pv.Struct(f)
}

// Struct validates any tagged struct and returns the first failure as a
// *domain.ValidationError.
func (pv *Validator) Struct(s any) error {
	err := pv.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return &domain.ValidationError{Field: fe.Field(), Rule: fe.Tag(), Message: fieldMessage(fe)}
	}
	return err
}

var fieldLabels = map[string]string{
	"firstName":       "First name",
	"lastName":        "Last name",
	"first":           "First name",
	"last":            "Last name",
	"email":           "Email",
	"password":        "Password",
	"phone":           "Phone number",
	"role":            "Role",
	"dob":             "Date of birth",
	"about":           "About",
	"lang":            "Language",
	"level":           "Language level",
	"name":            "Certification name",
	"issuer":          "Issuer",
	"year":            "Year",
	"company":         "Company",
	"quality":         "Quality rating",
	"support":         "Support rating",
	"serviceRadius":   "Service radius",
	"experienceYears": "Years of experience",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "personname":
		return label(fe.Field()) + " can contain letters and spaces only."
	case "phone10":
		return "Phone number must be exactly 10 digits."
	case "isodate":
		return "Please enter a valid date of birth."
	case "notfuture":
		return "Date of birth cannot be in the future."
	case "adult":
		return "You must be at least 18 years old."
	case "required":
		if fe.Field() == "dob" {
			return "Please enter your date of birth."
		}
		return label(fe.Field()) + " is required."
	case "email":
		return "Please enter a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label(fe.Field()), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label(fe.Field()), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label(fe.Field()), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label(fe.Field()), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label(fe.Field()), fe.Param())
	case "len", "numeric":
		return fmt.Sprintf("%s is not valid.", label(fe.Field()))
	}
	return fmt.Sprintf("%s is not valid.", label(fe.Field()))
}

// AllowedName reports whether s may be typed into a name field.
func AllowedName(s string) bool {
	return personNameRe.MatchString(s)
}

// DigitsOnly drops every non-digit from s and caps the result at limit
// digits; limit <= 0 means no cap.
func DigitsOnly(s string, limit int) string {
	var b strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		if limit > 0 && b.Len() >= limit {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}
