package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Alert, error)
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, onlyUnread bool, page, limit int) ([]model.Alert, int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID, companyID *uuid.UUID) (int64, error)
	Update(ctx context.Context, alert *model.Alert) error
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	return GetDB(ctx, r.db).Create(alert).Error
}

func (r *alertRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	var alert model.Alert
	if err := GetDB(ctx, r.db).First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) ListForRecipient(ctx context.Context, recipientID uuid.UUID, onlyUnread bool, page, limit int) ([]model.Alert, int64, error) {
	var alerts []model.Alert
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Alert{}).Where("recipient_id = ?", recipientID)
	if onlyUnread {
		query = query.Where("status = ?", model.AlertPending)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := db.Where("recipient_id = ?", recipientID)
	if onlyUnread {
		fetch = fetch.Where("status = ?", model.AlertPending)
	}
	offset := (page - 1) * limit
	if err := fetch.Preload("Expense").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&alerts).Error; err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

func (r *alertRepository) CountUnread(ctx context.Context, recipientID uuid.UUID, companyID *uuid.UUID) (int64, error) {
	var total int64
	q := GetDB(ctx, r.db).Model(&model.Alert{}).
		Where("alerts.recipient_id = ? AND alerts.status = ?", recipientID, model.AlertPending)
	if companyID != nil {
		q = q.Joins("JOIN expenses ON expenses.id = alerts.expense_id").
			Where("expenses.company_id = ?", *companyID)
	}
	err := q.Count(&total).Error
	return total, err
}

func (r *alertRepository) Update(ctx context.Context, alert *model.Alert) error {
	return GetDB(ctx, r.db).Save(alert).Error
}
