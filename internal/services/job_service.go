package services

import (
	"context"

	"fwork_backend/internal/models"
	"fwork_backend/internal/repositories"
	"fwork_backend/internal/services/dto"
	"fwork_backend/pkg/apperrors"
)

// JobService - CRUD по заказам. Бизнес-инвариантов здесь нет,
// проверяется только владение записью.
type JobService interface {
	Create(ctx context.Context, clientID string, req *dto.CreateJobRequest) (*models.Job, error)
	GetByID(ctx context.Context, jobID string) (*models.Job, error)
	List(ctx context.Context, page, pageSize int) (*dto.JobListResponse, error)
	UpdateStatus(ctx context.Context, jobID, clientID string, status models.JobStatus) (*models.Job, error)
}

type JobServiceImpl struct {
	jobRepo repositories.JobRepository
}

func NewJobService(jobRepo repositories.JobRepository) JobService {
	return &JobServiceImpl{jobRepo: jobRepo}
}

func (s *JobServiceImpl) Create(ctx context.Context, clientID string, req *dto.CreateJobRequest) (*models.Job, error) {
	job := &models.Job{
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Status:      models.JobStatusOpen,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

func (s *JobServiceImpl) GetByID(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

func (s *JobServiceImpl) List(ctx context.Context, page, pageSize int) (*dto.JobListResponse, error) {
	offset := (page - 1) * pageSize
	jobs, total, err := s.jobRepo.FindAll(ctx, pageSize, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.JobListResponse{Jobs: jobs, Total: total}, nil
}

func (s *JobServiceImpl) UpdateStatus(ctx context.Context, jobID, clientID string, status models.JobStatus) (*models.Job, error) {
	job, err := s.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != clientID {
		return nil, apperrors.ErrForbidden
	}
	job.Status = status
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}
