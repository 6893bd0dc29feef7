package service

import (
	"context"
	"fmt"
	"time"

	"fieldops/internal/apperr"
	"fieldops/internal/model"
	"fieldops/internal/repository"

	"github.com/google/uuid"
)

type CreateJobRequest struct {
	CustomerID  string `json:"customer_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ScheduledAt string `json:"scheduled_at"` // RFC3339, optional
}

type UpdateJobRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ScheduledAt *string `json:"scheduled_at"`
}

type UpdateJobStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
}

type JobResponse struct {
	ID          string  `json:"id"`
	CustomerID  string  `json:"customer_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	ScheduledAt *string `json:"scheduled_at"`
	CompletedAt *string `json:"completed_at"`
	CreatedAt   string  `json:"created_at"`
}

type JobService interface {
	Create(ctx context.Context, accountID uuid.UUID, req CreateJobRequest) (JobResponse, error)
	Get(ctx context.Context, accountID uuid.UUID, id string) (JobResponse, error)
	List(ctx context.Context, accountID uuid.UUID, status, customerID string, page, limit int) ([]JobResponse, int64, error)
	Update(ctx context.Context, accountID uuid.UUID, id string, req UpdateJobRequest) (JobResponse, error)
	UpdateStatus(ctx context.Context, accountID uuid.UUID, id string, req UpdateJobStatusRequest) (JobResponse, error)
	Delete(ctx context.Context, accountID uuid.UUID, id string) error
}

type jobService struct {
	jobRepo      repository.JobRepository
	customerRepo repository.CustomerRepository
}

func NewJobService(jobRepo repository.JobRepository, customerRepo repository.CustomerRepository) JobService {
	return &jobService{jobRepo: jobRepo, customerRepo: customerRepo}
}

func (s *jobService) Create(ctx context.Context, accountID uuid.UUID, req CreateJobRequest) (JobResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return JobResponse{}, apperr.Validationf("invalid customer_id")
	}
	if _, err := s.customerRepo.FindByID(ctx, accountID, customerID); err != nil {
		return JobResponse{}, asNotFound(err, "customer")
	}

	job := model.Job{
		AccountID:   accountID,
		CustomerID:  customerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.JobStatusScheduled,
	}
	if req.ScheduledAt != "" {
		scheduledAt, parseErr := time.Parse(time.RFC3339, req.ScheduledAt)
		if parseErr != nil {
			return JobResponse{}, apperr.Validationf("invalid scheduled_at: expected RFC3339")
		}
		job.ScheduledAt = &scheduledAt
	}

	if err := s.jobRepo.Create(ctx, &job); err != nil {
		return JobResponse{}, fmt.Errorf("failed to create job: %w", err)
	}
	return toJobResponse(job), nil
}

func (s *jobService) Get(ctx context.Context, accountID uuid.UUID, id string) (JobResponse, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return JobResponse{}, apperr.Validationf("invalid job id")
	}
	job, err := s.jobRepo.FindByID(ctx, accountID, jobID)
	if err != nil {
		return JobResponse{}, asNotFound(err, "job")
	}
	return toJobResponse(*job), nil
}

func (s *jobService) List(ctx context.Context, accountID uuid.UUID, status, customerID string, page, limit int) ([]JobResponse, int64, error) {
	var customerFilter *uuid.UUID
	if customerID != "" {
		parsed, err := uuid.Parse(customerID)
		if err != nil {
			return nil, 0, apperr.Validationf("invalid customer_id filter")
		}
		customerFilter = &parsed
	}

	jobs, total, err := s.jobRepo.List(ctx, accountID, status, customerFilter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch jobs: %w", err)
	}

	result := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		result = append(result, toJobResponse(j))
	}
	return result, total, nil
}

func (s *jobService) Update(ctx context.Context, accountID uuid.UUID, id string, req UpdateJobRequest) (JobResponse, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return JobResponse{}, apperr.Validationf("invalid job id")
	}
	job, err := s.jobRepo.FindByID(ctx, accountID, jobID)
	if err != nil {
		return JobResponse{}, asNotFound(err, "job")
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.ScheduledAt != nil {
		if *req.ScheduledAt == "" {
			job.ScheduledAt = nil
		} else {
			scheduledAt, parseErr := time.Parse(time.RFC3339, *req.ScheduledAt)
			if parseErr != nil {
				return JobResponse{}, apperr.Validationf("invalid scheduled_at: expected RFC3339")
			}
			job.ScheduledAt = &scheduledAt
		}
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return JobResponse{}, fmt.Errorf("failed to update job: %w", err)
	}
	return toJobResponse(*job), nil
}

func (s *jobService) UpdateStatus(ctx context.Context, accountID uuid.UUID, id string, req UpdateJobStatusRequest) (JobResponse, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return JobResponse{}, apperr.Validationf("invalid job id")
	}
	job, err := s.jobRepo.FindByID(ctx, accountID, jobID)
	if err != nil {
		return JobResponse{}, asNotFound(err, "job")
	}

	job.Status = req.Status
	if req.Status == model.JobStatusCompleted && job.CompletedAt == nil {
		now := time.Now()
		job.CompletedAt = &now
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return JobResponse{}, fmt.Errorf("failed to update job status: %w", err)
	}
	return toJobResponse(*job), nil
}

func (s *jobService) Delete(ctx context.Context, accountID uuid.UUID, id string) error {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validationf("invalid job id")
	}
	if _, err := s.jobRepo.FindByID(ctx, accountID, jobID); err != nil {
		return asNotFound(err, "job")
	}
	return s.jobRepo.Delete(ctx, accountID, jobID)
}

func toJobResponse(j model.Job) JobResponse {
	resp := JobResponse{
		ID:          j.ID.String(),
		CustomerID:  j.CustomerID.String(),
		Title:       j.Title,
		Description: j.Description,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt.Format(time.RFC3339),
	}
	if j.ScheduledAt != nil {
		v := j.ScheduledAt.Format(time.RFC3339)
		resp.ScheduledAt = &v
	}
	if j.CompletedAt != nil {
		v := j.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp
}
