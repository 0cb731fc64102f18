package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"eventrequests/internal/domain"
	"eventrequests/internal/validation"
)

const (
	msgFixFormErrors    = "Please fix form errors"
	msgSubmitted        = "Request submitted successfully!"
	msgSubmitFailed     = "Failed to submit request"
	defaultDismissAfter = 2 * time.Second
)

// NoticeKind classifies the form-level notice.
type NoticeKind string

const (
	NoticeNone    NoticeKind = ""
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the single message shown above the form.
type Notice struct {
	Kind NoticeKind
	Text string
}

// FormState is a snapshot of the request form.
type FormState struct {
	Open    bool
	Draft   validation.Draft
	Errors  validation.FieldErrors
	Notice  Notice
	Loading bool
}

// ValidationError is returned by Submit when the draft has field errors.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid event request: " + strings.Join(e.Fields.Messages(), "; ")
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// FormOptions configures a RequestForm.
type FormOptions struct {
	// DismissAfter is how long the form stays open after a successful submit.
	DismissAfter time.Duration
	Now          func() time.Time
}

// RequestForm collects, validates and submits a new event request.
type RequestForm struct {
	api          RequestCreator
	publisher    domain.Publisher
	validator    *validation.Validator
	identity     domain.Identity
	logger       *slog.Logger
	dismissAfter time.Duration
	now          func() time.Time

	mu      sync.Mutex
	state   FormState
	dismiss *time.Timer
}

// NewRequestForm returns a closed, empty form. publisher may be nil.
func NewRequestForm(api RequestCreator, publisher domain.Publisher, identity domain.Identity, logger *slog.Logger, opts FormOptions) *RequestForm {
	if opts.DismissAfter <= 0 {
		opts.DismissAfter = defaultDismissAfter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &RequestForm{
		api:          api,
		publisher:    publisher,
		validator:    validation.New(),
		identity:     identity,
		logger:       logger,
		dismissAfter: opts.DismissAfter,
		now:          opts.Now,
	}
}

// Open shows the form with no notice or field errors. A pending
// auto-dismiss is cancelled.
func (f *RequestForm) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopDismiss()
	f.state.Open = true
	f.state.Notice = Notice{}
	f.state.Errors = nil
}

// Close hides the form and discards the draft.
func (f *RequestForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopDismiss()
	f.state.Open = false
	f.state.Notice = Notice{}
	f.state.Errors = nil
	f.state.Draft = validation.Draft{}
}

// Set edits one field and clears that field's error.
func (f *RequestForm) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case validation.FieldEventType:
		f.state.Draft.EventType = value
	case validation.FieldVenue:
		f.state.Draft.Venue = value
	case validation.FieldDate:
		f.state.Draft.Date = value
	case validation.FieldBudget:
		f.state.Draft.Budget = value
	case validation.FieldDescription:
		f.state.Draft.Description = value
	default:
		return fmt.Errorf("unknown field %q: %w", field, domain.ErrInvalidInput)
	}
	delete(f.state.Errors, field)
	return nil
}

// SetDraft replaces the whole draft and clears every field error.
func (f *RequestForm) SetDraft(d validation.Draft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Draft = d
	f.state.Errors = nil
}

// State returns a copy of the current form state.
func (f *RequestForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	if s.Errors != nil {
		s.Errors = make(validation.FieldErrors, len(f.state.Errors))
		for k, v := range f.state.Errors {
			s.Errors[k] = v
		}
	}
	return s
}

// Submit validates the draft and, when valid, sends it to the backend.
//
// A draft with field errors is never sent; Submit returns a *ValidationError
// and the form shows msgFixFormErrors. While a submission is in flight a
// second call returns domain.ErrInProgress. On success the draft is reset,
// a notification is published and the form closes after DismissAfter. On
// failure the draft is kept and the notice carries the backend message.
func (f *RequestForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state.Loading {
		f.mu.Unlock()
		return domain.ErrInProgress
	}
	f.state.Notice = Notice{}
	if errs := f.validator.Draft(f.state.Draft); len(errs) > 0 {
		f.state.Errors = errs
		f.state.Notice = Notice{Kind: NoticeError, Text: msgFixFormErrors}
		f.mu.Unlock()
		return &ValidationError{Fields: errs}
	}
	f.state.Errors = nil
	input, err := f.state.Draft.Input()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.state.Loading = true
	f.mu.Unlock()

	res, err := f.api.CreateRequest(ctx, input)
	if err == nil && !res.Success {
		err = &domain.BackendError{StatusCode: 200, Message: res.Message}
	}

	f.mu.Lock()
	f.state.Loading = false
	if err != nil {
		f.state.Notice = Notice{Kind: NoticeError, Text: alertMessage(err, msgSubmitFailed)}
		f.mu.Unlock()
		f.logger.Warn("event request submit failed", "err", err)
		return fmt.Errorf("submit event request: %w", err)
	}
	text := res.Message
	if text == "" {
		text = msgSubmitted
	}
	f.state.Notice = Notice{Kind: NoticeSuccess, Text: text}
	f.state.Draft = validation.Draft{}
	f.stopDismiss()
	var t *time.Timer
	t = time.AfterFunc(f.dismissAfter, func() { f.autoDismiss(t) })
	f.dismiss = t
	f.mu.Unlock()

	f.announce(input)
	return nil
}

func (f *RequestForm) autoDismiss(t *time.Timer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dismiss != t {
		return
	}
	f.dismiss = nil
	f.state.Open = false
	f.state.Notice = Notice{}
}

func (f *RequestForm) stopDismiss() {
	if f.dismiss != nil {
		f.dismiss.Stop()
		f.dismiss = nil
	}
}

func (f *RequestForm) announce(in domain.EventRequestInput) {
	if f.publisher == nil {
		return
	}
	n := domain.Notification{
		Kind:      domain.KindEventRequest,
		UserID:    f.identity.UserID,
		Message:   fmt.Sprintf("New %s request at %s on %s", in.EventType, in.Venue, in.Date),
		CreatedAt: f.now(),
	}
	if err := f.publisher.Send(domain.MessageTypeNotification, n); err != nil {
		f.logger.Debug("event request announcement not sent", "err", err)
	}
}
