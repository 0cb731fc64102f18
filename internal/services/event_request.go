package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventrequests/internal/domain"
)

type eventRequestService struct {
	repo           domain.EventRequestRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventRequestService(
	repo domain.EventRequestRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventRequestService {
	return &eventRequestService{
		repo:           repo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventRequestService) Create(ctx context.Context, req *domain.EventRequest) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if req.RequesterID() == "" {
		return fmt.Errorf("event request owner is required: %w", domain.ErrInvalidInput)
	}
	if !req.EventType.Valid() || !(req.Budget > 0) {
		return domain.ErrInvalidInput
	}
	owner := domain.User{ID: req.RequesterID(), FullName: req.Requester.FullName, Email: req.Requester.Email, Role: domain.RoleUser}
	if err := s.syncUser(ctx, owner); err != nil {
		return err
	}
	now := s.now()
	req.Status = domain.RequestStatusOpen
	req.SelectedOrganizerID = ""
	req.InterestedOrganizers = []domain.OrganizerInterest{}
	req.CreatedAt = now
	req.UpdatedAt = now

	if err := s.repo.Create(ctx, req); err != nil {
		return fmt.Errorf("create event request: %w", err)
	}
	return nil
}

// ListForOrganizer returns open requests, optionally of one event type,
// without the ones organizerID already rejected.
func (s *eventRequestService) ListForOrganizer(ctx context.Context, organizerID string, eventType domain.EventType) ([]*domain.EventRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if eventType != "" && !eventType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	list, err := s.repo.ListOpen(ctx, domain.OpenRequestFilter{EventType: eventType, ExcludeRejectedBy: organizerID})
	if err != nil {
		return nil, fmt.Errorf("list open requests: %w", err)
	}
	return list, nil
}

func (s *eventRequestService) ListForRequester(ctx context.Context, requesterID string) ([]*domain.EventRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.repo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests of %s: %w", requesterID, err)
	}
	return list, nil
}

// Accept records the organizer's interest. A missing proposed budget is
// stored as the request budget; accepting again updates the same entry.
func (s *eventRequestService) Accept(ctx context.Context, in domain.AcceptInput) (*domain.EventRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if in.ProposedBudget != nil && !(*in.ProposedBudget > 0) {
		return nil, fmt.Errorf("proposed budget must be positive: %w", domain.ErrInvalidInput)
	}
	req, err := s.openRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID() == in.Organizer.ID {
		return nil, fmt.Errorf("requester cannot accept own request: %w", domain.ErrForbidden)
	}
	if err := s.syncUser(ctx, in.Organizer); err != nil {
		return nil, err
	}

	now := s.now()
	interest := domain.OrganizerInterest{
		OrganizerID:    in.Organizer.ID,
		Status:         domain.InterestAccepted,
		ProposedBudget: req.EffectiveBudget(in.ProposedBudget),
		ResponseDate:   &now,
		Message:        in.Message,
	}
	if err := s.repo.UpsertInterest(ctx, req.ID, interest); err != nil {
		return nil, fmt.Errorf("record acceptance: %w", err)
	}
	req.RecordInterest(in.Organizer.ID, interest.Status, interest.ProposedBudget, in.Message, now)
	return req, nil
}

// Reject marks only the organizer's own entry as rejected.
func (s *eventRequestService) Reject(ctx context.Context, requestID string, organizer domain.User) (*domain.EventRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	req, err := s.openRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.syncUser(ctx, organizer); err != nil {
		return nil, err
	}
	organizerID := organizer.ID
	now := s.now()
	interest := domain.OrganizerInterest{
		OrganizerID:  organizerID,
		Status:       domain.InterestRejected,
		ResponseDate: &now,
	}
	if err := s.repo.UpsertInterest(ctx, req.ID, interest); err != nil {
		return nil, fmt.Errorf("record rejection: %w", err)
	}
	req.RecordInterest(organizerID, domain.InterestRejected, nil, "", now)
	return req, nil
}

// SelectOrganizer finalizes the request with an organizer who accepted it,
// then emails both parties. Email failures are logged and do not fail the
// selection.
func (s *eventRequestService) SelectOrganizer(ctx context.Context, requestID, requesterID, organizerID string) (*domain.EventRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event request: %w", err)
	}
	if req.RequesterID() != requesterID {
		return nil, domain.ErrForbidden
	}
	now := s.now()
	if err := req.Select(organizerID, now); err != nil {
		return nil, err
	}
	if err := s.repo.MarkDealDone(ctx, requestID, organizerID, now); err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("finalize event request: %w", err)
	}

	s.notifyDealDone(ctx, req)
	return req, nil
}

func (s *eventRequestService) openRequest(ctx context.Context, requestID string) (*domain.EventRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event request: %w", err)
	}
	if req.Status == domain.RequestStatusDealDone {
		return nil, fmt.Errorf("event request %s is %s: %w", requestID, req.Status, domain.ErrConflict)
	}
	return req, nil
}

func (s *eventRequestService) notifyDealDone(ctx context.Context, req *domain.EventRequest) {
	if s.emailService == nil {
		return
	}
	organizer, err := s.userRepo.GetByID(ctx, req.SelectedOrganizerID)
	if err != nil {
		s.logger.Warn("deal done emails skipped: organizer lookup failed", "request_id", req.ID, "organizer_id", req.SelectedOrganizerID, "err", err)
		return
	}
	budget := req.Budget
	if in := req.Interest(organizer.ID); in != nil && in.ProposedBudget != nil {
		budget = *in.ProposedBudget
	}
	base := domain.DealDoneEmailData{
		EventType:     req.EventType,
		Venue:         req.Venue,
		Date:          req.Date,
		Budget:        budget,
		RequesterName: req.Requester.FullName,
		OrganizerName: organizer.FullName,
	}

	toRequester := base
	toRequester.Email = req.Requester.Email
	toRequester.Name = req.Requester.FullName
	toOrganizer := base
	toOrganizer.Email = organizer.Email
	toOrganizer.Name = organizer.FullName
	toOrganizer.ForOrganizer = true

	for _, data := range []*domain.DealDoneEmailData{&toRequester, &toOrganizer} {
		if err := s.emailService.SendDealDone(ctx, data); err != nil {
			s.logger.Warn("deal done email failed", "request_id", req.ID, "to", data.Email, "err", err)
		}
	}
}

// syncUser records the caller before a write that references it.
func (s *eventRequestService) syncUser(ctx context.Context, u domain.User) error {
	if u.ID == "" {
		return fmt.Errorf("caller id is required: %w", domain.ErrInvalidInput)
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if err := s.userRepo.Upsert(ctx, &u); err != nil {
		return fmt.Errorf("sync user %s: %w", u.ID, err)
	}
	return nil
}
