package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertService interface {
	ListAlerts(ctx context.Context, user *model.User, onlyUnread bool, page, limit int) ([]model.Alert, int64, error)
	CountUnread(ctx context.Context, user *model.User, companyID *uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, user *model.User, id uuid.UUID) (*model.Alert, error)
}

type alertService struct {
	alertRepo repository.AlertRepository
}

func NewAlertService(alertRepo repository.AlertRepository) AlertService {
	return &alertService{alertRepo: alertRepo}
}

// ListAlerts returns the caller's own alerts only. There is no cross-user
// alert listing, not even for admins.
func (s *alertService) ListAlerts(ctx context.Context, user *model.User, onlyUnread bool, page, limit int) ([]model.Alert, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.alertRepo.ListForRecipient(ctx, user.ID, onlyUnread, page, limit)
}

func (s *alertService) CountUnread(ctx context.Context, user *model.User, companyID *uuid.UUID) (int64, error) {
	return s.alertRepo.CountUnread(ctx, user.ID, companyID)
}

func (s *alertService) MarkRead(ctx context.Context, user *model.User, id uuid.UUID) (*model.Alert, error) {
	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("alert %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	if alert.RecipientID != user.ID {
		// Do not reveal whether the alert exists.
		return nil, fmt.Errorf("alert %s: %w", id, apperr.ErrNotFound)
	}

	if alert.Status != model.AlertRead {
		alert.Status = model.AlertRead
		if err := s.alertRepo.Update(ctx, alert); err != nil {
			return nil, fmt.Errorf("failed to update alert: %w", err)
		}
	}
	return alert, nil
}
