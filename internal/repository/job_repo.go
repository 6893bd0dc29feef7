package repository

import (
	"context"

	"fieldops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, accountID uuid.UUID, status string, customerID *uuid.UUID, page, limit int) ([]model.Job, int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	return GetDB(ctx, r.db).Create(job).Error
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	return GetDB(ctx, r.db).Save(job).Error
}

func (r *jobRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("account_id = ? AND id = ?", accountID, id).Delete(&model.Job{}).Error
}

func (r *jobRepository) FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := GetDB(ctx, r.db).First(&job, "account_id = ? AND id = ?", accountID, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context, accountID uuid.UUID, status string, customerID *uuid.UUID, page, limit int) ([]model.Job, int64, error) {
	var jobs []model.Job
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("account_id = ?", accountID)
		if status != "" {
			q = q.Where("status = ?", status)
		}
		if customerID != nil {
			q = q.Where("customer_id = ?", *customerID)
		}
		return q
	}

	if err := apply(db.Model(&model.Job{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db.Model(&model.Job{})).Order("created_at DESC").Offset(offset).Limit(limit).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}
