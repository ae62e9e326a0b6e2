package dto

import (
	"time"

	"github.com/spec-kit/anamaak-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Nom      string `json:"nom" validate:"required,min=2,max=100"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest payload.
type UpdateProfileRequest struct {
	Nom string `json:"nom" validate:"required,min=2,max=100"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// UserResponse is the account shape returned by auth endpoints. The
// password hash never leaves the service.
type UserResponse struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	Nom               string     `json:"nom"`
	Role              string     `json:"role"`
	Points            int        `json:"points"`
	DateInscription   time.Time  `json:"date_inscription"`
	DerniereConnexion *time.Time `json:"derniere_connexion,omitempty"`
}

// UserStatsResponse summarizes the user's own reports on the profile view.
type UserStatsResponse struct {
	TotalSignalements        int64 `json:"total_signalements"`
	SignalementsSoumis       int64 `json:"signalements_soumis"`
	SignalementsEnTraitement int64 `json:"signalements_en_traitement"`
	SignalementsResolus      int64 `json:"signalements_resolus"`
	TotalPointsSignalements  int64 `json:"total_points_signalements"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                user.ID,
		Email:             user.Email,
		Nom:               user.Name,
		Role:              string(user.Role),
		Points:            user.Points,
		DateInscription:   user.RegisteredAt,
		DerniereConnexion: user.LastLoginAt,
	}
}

// NewUserStatsResponse maps profile statistics.
func NewUserStatsResponse(stats domain.UserReportStats) UserStatsResponse {
	return UserStatsResponse{
		TotalSignalements:        stats.Total,
		SignalementsSoumis:       stats.Submitted,
		SignalementsEnTraitement: stats.InProgress,
		SignalementsResolus:      stats.Resolved,
		TotalPointsSignalements:  stats.Points,
	}
}
