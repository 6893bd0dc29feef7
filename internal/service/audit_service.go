package service

import (
	"context"
	"log"

	"fieldops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	AuditRecorder
	List(ctx context.Context, accountID uuid.UUID, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditService instance
func NewAuditService(db *gorm.DB) AuditService {
	return &auditService{db: db}
}

// Record appends one audit entry. It is best-effort: a failed write is
// logged and swallowed so it never fails the operation being audited.
func (s *auditService) Record(ctx context.Context, accountID uuid.UUID, userID *uuid.UUID, action, entityID, entityName string) {
	entry := model.AuditLog{
		AccountID:  accountID,
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("audit: failed to record %s for %s: %v", action, entityID, err)
	}
}

// List retrieves strictly paginated records with Users pre-loaded
func (s *auditService) List(ctx context.Context, accountID uuid.UUID, page, limit int) ([]AuditLogResponse, int64, error) {
	var logs []model.AuditLog
	var total int64

	query := s.db.WithContext(ctx).Model(&model.AuditLog{}).Where("account_id = ?", accountID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := s.db.WithContext(ctx).Preload("User").
		Where("account_id = ?", accountID).
		Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		name := "System"
		userID := ""
		if l.User != nil {
			name = l.User.Name
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			UserName:   name,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
