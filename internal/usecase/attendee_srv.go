package usecase

import (
	"context"
	"time"

	"ferienpass/internal/data/entity"
	"ferienpass/internal/data/repository"
	"ferienpass/internal/dto/request"
	"ferienpass/internal/dto/response"
	"ferienpass/pkg/apperrors"
	"ferienpass/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AttendeeService interface {
	CreateAttendee(ctx context.Context, userID string, req *request.CreateAttendeeRequest) (*response.AttendeeResponse, error)
	GetAttendee(ctx context.Context, userID, attendeeID string) (*response.AttendeeResponse, error)
	ListAttendees(ctx context.Context, userID string) ([]*response.AttendeeResponse, error)
	UpdateAttendee(ctx context.Context, userID, attendeeID string, req *request.UpdateAttendeeRequest) (*response.AttendeeResponse, error)
	DeleteAttendee(ctx context.Context, userID, attendeeID string) error
}

type attendeeService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAttendeeService(repo *repository.Repository, log *zap.Logger) AttendeeService {
	return &attendeeService{
		repo: repo,
		log:  log.With(zap.String("service", "attendee")),
	}
}

func (s *attendeeService) CreateAttendee(ctx context.Context, userID string, req *request.CreateAttendeeRequest) (*response.AttendeeResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create attendee validation failed", zap.Any("errors", errs))
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID format", nil)
	}

	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, apperrors.Validation("invalid birth_date", nil)
	}
	if birthDate.After(time.Now()) {
		return nil, apperrors.Validation("birth_date must be in the past", nil)
	}

	existing, err := s.repo.Attendee.FindByName(ctx, userUUID, req.FirstName, req.LastName)
	if err != nil {
		return nil, apperrors.Internal("failed to check attendee name", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("an attendee with this name already exists")
	}

	now := time.Now()
	attendee := &entity.Attendee{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:    userUUID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
		Gender:    entity.Gender(req.Gender),
		Notes:     req.Notes,
	}

	if err := s.repo.Attendee.Create(ctx, attendee); err != nil {
		s.log.Error("Failed to create attendee", zap.Error(err), zap.String("user_id", userID))
		return nil, apperrors.Internal("failed to create attendee", err)
	}

	s.log.Info("Attendee created",
		zap.String("attendee_id", attendee.ID.String()),
		zap.String("user_id", userID))

	resp := response.AttendeeToResponse(attendee)
	return &resp, nil
}

func (s *attendeeService) GetAttendee(ctx context.Context, userID, attendeeID string) (*response.AttendeeResponse, error) {
	attendee, err := s.findOwnedAttendee(ctx, userID, attendeeID)
	if err != nil {
		return nil, err
	}
	resp := response.AttendeeToResponse(attendee)
	return &resp, nil
}

func (s *attendeeService) ListAttendees(ctx context.Context, userID string) ([]*response.AttendeeResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID format", nil)
	}

	attendees, err := s.repo.Attendee.FindByUserID(ctx, userUUID)
	if err != nil {
		return nil, apperrors.Internal("failed to list attendees", err)
	}

	resps := make([]*response.AttendeeResponse, len(attendees))
	for i, attendee := range attendees {
		resp := response.AttendeeToResponse(attendee)
		resps[i] = &resp
	}
	return resps, nil
}

func (s *attendeeService) UpdateAttendee(ctx context.Context, userID, attendeeID string, req *request.UpdateAttendeeRequest) (*response.AttendeeResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}

	attendee, err := s.findOwnedAttendee(ctx, userID, attendeeID)
	if err != nil {
		return nil, err
	}

	firstName := attendee.FirstName
	lastName := attendee.LastName
	if req.FirstName != nil {
		firstName = *req.FirstName
	}
	if req.LastName != nil {
		lastName = *req.LastName
	}
	if firstName != attendee.FirstName || lastName != attendee.LastName {
		existing, err := s.repo.Attendee.FindByName(ctx, attendee.UserID, firstName, lastName)
		if err != nil {
			return nil, apperrors.Internal("failed to check attendee name", err)
		}
		if existing != nil && existing.ID != attendee.ID {
			return nil, apperrors.Conflict("an attendee with this name already exists")
		}
		attendee.FirstName = firstName
		attendee.LastName = lastName
	}

	if req.BirthDate != nil {
		birthDate, err := parseDate(*req.BirthDate)
		if err != nil {
			return nil, apperrors.Validation("invalid birth_date", nil)
		}
		attendee.BirthDate = birthDate
	}
	if req.Gender != nil {
		attendee.Gender = entity.Gender(*req.Gender)
	}
	if req.Notes != nil {
		attendee.Notes = req.Notes
	}
	attendee.UpdatedAt = time.Now()

	if err := s.repo.Attendee.Update(ctx, attendee); err != nil {
		s.log.Error("Failed to update attendee", zap.Error(err), zap.String("attendee_id", attendeeID))
		return nil, apperrors.Internal("failed to update attendee", err)
	}

	resp := response.AttendeeToResponse(attendee)
	return &resp, nil
}

func (s *attendeeService) DeleteAttendee(ctx context.Context, userID, attendeeID string) error {
	attendee, err := s.findOwnedAttendee(ctx, userID, attendeeID)
	if err != nil {
		return err
	}

	if err := s.repo.Attendee.Delete(ctx, attendee.ID); err != nil {
		s.log.Error("Failed to delete attendee", zap.Error(err), zap.String("attendee_id", attendeeID))
		return apperrors.Internal("failed to delete attendee", err)
	}

	s.log.Info("Attendee deleted", zap.String("attendee_id", attendeeID))
	return nil
}

// findOwnedAttendee loads the attendee and enforces that it belongs to
// the requesting guardian.
func (s *attendeeService) findOwnedAttendee(ctx context.Context, userID, attendeeID string) (*entity.Attendee, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID format", nil)
	}
	attendeeUUID, err := uuid.Parse(attendeeID)
	if err != nil {
		return nil, apperrors.Validation("invalid attendee ID format", nil)
	}

	attendee, err := s.repo.Attendee.FindByID(ctx, attendeeUUID)
	if err != nil {
		return nil, apperrors.Internal("failed to load attendee", err)
	}
	if attendee == nil {
		return nil, apperrors.NotFoundWithID("attendee", attendeeID)
	}
	if attendee.UserID != userUUID {
		return nil, apperrors.Forbidden("attendee belongs to another account")
	}
	return attendee, nil
}
