package validation

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/event-gallery-api/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Validator checks admin and visitor input before it reaches the store.
// Struct rules live in `validate` tags on the models; the rest is domain logic here.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New()

	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsHTTPURL(fl.Field().String())
	})

	return &Validator{validate: v}
}

// ValidateEventInput trims the input in place and checks it. The parsed date
// is returned so callers don't parse twice.
func (v *Validator) ValidateEventInput(in *models.EventInput) (models.Date, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	in.Location = strings.TrimSpace(in.Location)
	in.CoverImageURL = strings.TrimSpace(in.CoverImageURL)

	errs := v.structErrors(in)

	var date models.Date
	if in.Date != "" {
		parsed, err := models.ParseDate(in.Date)
		if err != nil {
			errs = append(errs, models.ValidationError{Field: "date", Message: "invalid date, expected YYYY-MM-DD", Value: in.Date})
		} else {
			date = parsed
		}
	}

	if in.Status != "" && !models.EventStatus(in.Status).Valid() {
		errs = append(errs, models.ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: draft, published",
			Value:   in.Status,
		})
	}

	return date, asError(errs)
}

// ValidateMediaInput trims the input in place and checks it
func (v *Validator) ValidateMediaInput(in *models.MediaInput) error {
	in.EventID = strings.TrimSpace(in.EventID)
	in.Type = strings.TrimSpace(in.Type)
	in.FileURL = strings.TrimSpace(in.FileURL)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)

	errs := v.structErrors(in)

	if in.EventID != "" && !IsValidID(in.EventID) {
		errs = append(errs, models.ValidationError{Field: "event_id", Message: "invalid UUID format", Value: in.EventID})
	}
	if in.Type != "" && !models.MediaType(in.Type).Valid() {
		errs = append(errs, models.ValidationError{
			Field:   "type",
			Message: "invalid type, must be one of: image, video",
			Value:   in.Type,
		})
	}

	return asError(errs)
}

// ValidateBlessingSubmission trims the visitor's form in place and checks it
func (v *Validator) ValidateBlessingSubmission(in *models.BlessingSubmission) error {
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	in.AuthorRelation = strings.TrimSpace(in.AuthorRelation)
	in.Text = strings.TrimSpace(in.Text)
	in.MediaURL = strings.TrimSpace(in.MediaURL)

	return asError(v.structErrors(in))
}

// ValidateCandidate checks a media row produced by folder ingestion
func (v *Validator) ValidateCandidate(m *models.Media) error {
	var errs models.ValidationErrors

	if !m.Type.Valid() {
		errs = append(errs, models.ValidationError{Field: "type", Message: "invalid type", Value: string(m.Type)})
	}
	if !IsHTTPURL(m.FileURL) {
		errs = append(errs, models.ValidationError{Field: "file_url", Message: "must be an absolute http(s) URL", Value: m.FileURL})
	}
	if m.ThumbnailURL != "" && !IsHTTPURL(m.ThumbnailURL) {
		errs = append(errs, models.ValidationError{Field: "thumbnail_url", Message: "must be an absolute http(s) URL", Value: m.ThumbnailURL})
	}

	return asError(errs)
}

func (v *Validator) structErrors(s interface{}) models.ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewValidationError("", err.Error(), nil)
	}

	out := make(models.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, translate(fe))
	}
	return out
}

func translate(fe validator.FieldError) models.ValidationError {
	switch fe.Tag() {
	case "required":
		return models.ValidationError{Field: fe.Field(), Message: fe.Field() + " is required"}
	case "httpurl":
		return models.ValidationError{Field: fe.Field(), Message: "must be an absolute http(s) URL", Value: fe.Value()}
	default:
		return models.ValidationError{Field: fe.Field(), Message: "failed " + fe.Tag() + " check", Value: fe.Value()}
	}
}

func asError(errs models.ValidationErrors) error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsValidID reports whether id is a well-formed UUID
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsHTTPURL reports whether s is an absolute http or https URL with a host
func IsHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
