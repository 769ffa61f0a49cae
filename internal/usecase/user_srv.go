package usecase

import (
	"context"

	"ferienpass/internal/data/repository"
	"ferienpass/internal/dto/response"
	"ferienpass/pkg/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*response.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID string) (*response.UserResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		us.log.Warn("Invalid user ID", zap.Error(err))
		return nil, apperrors.Validation("invalid user ID format", nil)
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID))
		return nil, apperrors.Internal("failed to get profile", err)
	}
	if user == nil {
		return nil, apperrors.NotFoundWithID("user", userID)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}
