package validation

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"eventrequests/internal/domain"
)

// Field names as they appear on the wire and in FieldErrors.
const (
	FieldEventType   = "eventType"
	FieldVenue       = "venue"
	FieldDate        = "date"
	FieldBudget      = "budget"
	FieldDescription = "description"
)

// Fields lists the draft fields in form order.
var Fields = []string{FieldEventType, FieldVenue, FieldDate, FieldBudget, FieldDescription}

// MinDescriptionLength is the minimum length of a description after trimming.
const MinDescriptionLength = 10

// Draft is the editable content of an event request form. Every value is
// kept as typed text; Budget is parsed only after validation passes.
type Draft struct {
	EventType   string `json:"eventType" validate:"required,event_type"`
	Venue       string `json:"venue" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Budget      string `json:"budget" validate:"required,positive_amount"`
	Description string `json:"description" validate:"required,min=10"`
}

// Trimmed returns d with surrounding whitespace removed from every field.
func (d Draft) Trimmed() Draft {
	return Draft{
		EventType:   strings.TrimSpace(d.EventType),
		Venue:       strings.TrimSpace(d.Venue),
		Date:        strings.TrimSpace(d.Date),
		Budget:      strings.TrimSpace(d.Budget),
		Description: strings.TrimSpace(d.Description),
	}
}

// Input converts a validated draft into the create payload.
func (d Draft) Input() (domain.EventRequestInput, error) {
	t := d.Trimmed()
	budget, err := strconv.ParseFloat(t.Budget, 64)
	if err != nil {
		return domain.EventRequestInput{}, domain.ErrInvalidInput
	}
	return domain.EventRequestInput{
		EventType:   domain.EventType(t.EventType),
		Venue:       t.Venue,
		Date:        t.Date,
		Budget:      budget,
		Description: t.Description,
	}, nil
}

// FieldErrors maps a field name to its user-facing message.
type FieldErrors map[string]string

// Messages returns the messages in form order.
func (fe FieldErrors) Messages() []string {
	out := make([]string, 0, len(fe))
	for _, f := range Fields {
		if msg, ok := fe[f]; ok {
			out = append(out, msg)
		}
	}
	return out
}

var messages = map[string]map[string]string{
	FieldEventType: {
		"required":   "Event type is required",
		"event_type": "Please select a valid event type",
	},
	FieldVenue: {
		"required": "Venue is required",
	},
	FieldDate: {
		"required": "Date is required",
		"datetime": "Date must be in YYYY-MM-DD format",
	},
	FieldBudget: {
		"required":        "Budget is required",
		"positive_amount": "Please enter a valid budget amount",
	},
	FieldDescription: {
		"required": "Description is required",
		"min":      "Description must be at least 10 characters long",
	},
}

// Validator checks event request drafts. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the event request rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("event_type", func(fl validator.FieldLevel) bool {
		return domain.EventType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		return PositiveAmount(fl.Field().String())
	})
	return &Validator{v: v}
}

// PositiveAmount reports whether s parses as a finite number greater than zero.
func PositiveAmount(s string) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	return n > 0
}

// Draft validates the trimmed draft and returns one message per failing
// field, or nil when the draft is valid. Only the first failing rule of a
// field is reported.
func (v *Validator) Draft(d Draft) FieldErrors {
	err := v.v.Struct(d.Trimmed())
	if err == nil {
		return nil
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{FieldEventType: err.Error()}
	}
	out := make(FieldErrors, len(ves))
	for _, fe := range ves {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return out
}

// StrictDraft applies Draft and additionally requires the date to be a
// calendar date in YYYY-MM-DD form.
func (v *Validator) StrictDraft(d Draft) FieldErrors {
	out := v.Draft(d)
	if _, bad := out[FieldDate]; bad {
		return out
	}
	if err := v.v.Var(strings.TrimSpace(d.Date), "datetime=2006-01-02"); err != nil {
		if out == nil {
			out = FieldErrors{}
		}
		out[FieldDate] = message(FieldDate, "datetime")
	}
	return out
}

func message(field, tag string) string {
	if msg, ok := messages[field][tag]; ok {
		return msg
	}
	return field + " is invalid"
}
