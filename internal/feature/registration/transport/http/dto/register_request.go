// Package dto defines the registration request payload and its validation
// rules for the HTTP transport layer.
//
// Validation is run explicitly (not through Gin's binding) so that every
// violation is collected into field-scoped messages instead of stopping at
// the first failure.
package dto

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxBrochureBytes is the upload ceiling for brochure files.
const MaxBrochureBytes = 2 << 20 // 2MB

// Messages for the uniqueness checks, shared with the handler so pre-insert
// checks and commit-time conflicts render identically.
const (
	MsgEmailTaken    = "This email is already registered."
	MsgUsernameTaken = "This username is already taken."
)

// AccountInfo is the nested account object of a registration request.
type AccountInfo struct {
	FirstName            string `json:"first_name" validate:"required,max=255"`
	LastName             string `json:"last_name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Username             string `json:"username" validate:"required,min=3,max=50,username_chars"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	ParticipationType    string `json:"participation_type" validate:"required,oneof=Buyer Exhibitor Visitor"`
}

// CompanyInfo is the nested company object of a registration request.
type CompanyInfo struct {
	CompanyName     string  `json:"company_name" validate:"required,max=255"`
	AddressLine     string  `json:"address_line" validate:"required,max=500"`
	City            string  `json:"city" validate:"required,max=255"`
	Region          *string `json:"region" validate:"omitempty,max=255"`
	Country         string  `json:"country" validate:"required,max=255"`
	YearEstablished int     `json:"year_established" validate:"required,gte=1800,current_year"`
	Website         *string `json:"website" validate:"omitempty,url,max=255"`
}

// RegisterRequest is the full registration payload. The optional brochure
// file travels beside it as a multipart part and is validated separately.
type RegisterRequest struct {
	AccountInfo AccountInfo `json:"account_info"`
	CompanyInfo CompanyInfo `json:"company_info"`
}

// FieldErrors maps dotted field paths to their human-readable messages.
type FieldErrors map[string][]string

// Add appends a message for a field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Merge folds all messages of other into fe.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		fe[field] = append(fe[field], msgs...)
	}
}

// Any reports whether at least one violation was recorded.
func (fe FieldErrors) Any() bool {
	return len(fe) > 0
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json names so error paths match the payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Letters, digits, dashes and underscores only.
	if err := v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	// Year must not lie in the future.
	if err := v.RegisterValidation("current_year", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	}); err != nil {
		panic(err)
	}

	return v
}

// Normalize canonicalizes the participation type ("BUYER", "buyer", "Buyer"
// all become "Buyer") before validation and storage. A missing value is left
// untouched for the required rule to flag.
func (r *RegisterRequest) Normalize() {
	pt := r.AccountInfo.ParticipationType
	if pt == "" {
		return
	}
	runes := []rune(strings.ToLower(pt))
	runes[0] = unicode.ToUpper(runes[0])
	r.AccountInfo.ParticipationType = string(runes)
}

// Validate evaluates every rule and returns all violations at once.
// An empty map means the payload is valid.
func (r *RegisterRequest) Validate() FieldErrors {
	errs := FieldErrors{}

	err := validate.Struct(r)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("request", "Invalid request payload.")
		return errs
	}

	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		errs.Add(field, messageFor(field, fe))
	}
	return errs
}

// ValidateBrochure checks the optional brochure part: at most 2MB and one of
// the allowed document extensions. A nil header is valid (no upload).
func ValidateBrochure(fh *multipart.FileHeader) FieldErrors {
	errs := FieldErrors{}
	if fh == nil {
		return errs
	}
	if fh.Size > MaxBrochureBytes {
		errs.Add("brochure", "Brochure file size must not exceed 2MB.")
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), ".")) {
	case "pdf", "doc", "docx":
	default:
		errs.Add("brochure", "Brochure must be a PDF, DOC, or DOCX file.")
	}
	return errs
}

// fieldPath strips the root struct name from a validator namespace,
// leaving the dotted json path ("account_info.email").
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// messages overrides the generic per-tag texts for specific fields.
var messages = map[string]string{
	"account_info.first_name.required":            "First name is required.",
	"account_info.last_name.required":             "Last name is required.",
	"account_info.email.required":                 "Email address is required.",
	"account_info.email.email":                    "Please enter a valid email address.",
	"account_info.username.required":              "Username is required.",
	"account_info.username.min":                   "Username must be at least 3 characters.",
	"account_info.username.username_chars":        "Username may only contain letters, numbers, dashes, and underscores.",
	"account_info.password.required":              "Password is required.",
	"account_info.password.min":                   "Password must be at least 8 characters.",
	"account_info.password_confirmation.required": "Password confirmation is required.",
	"account_info.password_confirmation.eqfield":  "Password confirmation does not match.",
	"account_info.participation_type.required":    "Please select a participation type.",
	"account_info.participation_type.oneof":       "Please select a valid participation type.",
	"company_info.company_name.required":          "Company name is required.",
	"company_info.address_line.required":          "Address is required.",
	"company_info.city.required":                  "City is required.",
	"company_info.country.required":               "Country is required.",
	"company_info.year_established.required":      "Year established is required.",
	"company_info.year_established.gte":           "Year must be 1800 or later.",
	"company_info.year_established.current_year":  "Year cannot be in the future.",
	"company_info.website.url":                    "Please enter a valid website URL.",
}

func messageFor(field string, fe validator.FieldError) string {
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must not exceed %s characters.", fe.Param())
	default:
		return "This field is invalid."
	}
}
