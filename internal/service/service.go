package service

import (
	"github.com/skycast/backend/internal/domain"
)

// Repository interfaces are re-exported from domain for convenience
type (
	PredictionRepository = domain.PredictionRepository
	UserRepository       = domain.UserRepository
	BadgeRepository      = domain.BadgeRepository
)
