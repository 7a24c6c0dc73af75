package service

import (
	"context"
	"time"

	"github.com/natjoub/factory/pkg/tokens"
	"github.com/natjoub/factory/services/auth/internal/repo"
	"github.com/natjoub/factory/services/auth/internal/transport"
)

const UserEventsTopic = "user_events"

// EventPublisher is the slice of the kafka producer the service needs.
// Nil-safe: a service built without a publisher simply skips events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Service struct {
	Repo   *repo.GormRepo
	Codec  tokens.Codec
	Events EventPublisher
}

func New(r *repo.GormRepo, codec tokens.Codec, events EventPublisher) *Service {
	return &Service{Repo: r, Codec: codec, Events: events}
}

type userEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func userDTO(uc *repo.UserWithCredential) transport.UserDTO {
	dto := transport.UserDTO{
		ID:          uc.User.ID.String(),
		FirstName:   uc.User.FirstName,
		LastName:    uc.User.LastName,
		Email:       uc.Credential.Email,
		Username:    uc.Credential.Username,
		PhoneNumber: uc.Credential.PhoneNumber,
		Role:        uc.User.Role.Name,
		Gender:      uc.User.Gender,
		IsActive:    uc.User.IsActive,
		IsVerified:  uc.Credential.IsVerified,
		CreatedAt:   uc.User.CreatedAt.UTC().Format(time.RFC3339),
	}
	if uc.User.DOB != nil {
		dob := uc.User.DOB.Format("2006-01-02")
		dto.DOB = &dob
	}
	return dto
}
