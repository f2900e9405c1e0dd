package services

import (
	"context"

	"fwork_backend/internal/models"
	"fwork_backend/internal/repositories"
	"fwork_backend/internal/services/dto"
	"fwork_backend/pkg/apperrors"
)

// ProposalService - отклики фрилансеров на заказы
type ProposalService interface {
	Create(ctx context.Context, jobID, freelancerID string, req *dto.CreateProposalRequest) (*models.Proposal, error)
	ListByJob(ctx context.Context, jobID, requesterID string) ([]models.Proposal, error)
}

type ProposalServiceImpl struct {
	proposalRepo repositories.ProposalRepository
	jobRepo      repositories.JobRepository
}

func NewProposalService(proposalRepo repositories.ProposalRepository, jobRepo repositories.JobRepository) ProposalService {
	return &ProposalServiceImpl{
		proposalRepo: proposalRepo,
		jobRepo:      jobRepo,
	}
}

func (s *ProposalServiceImpl) Create(ctx context.Context, jobID, freelancerID string, req *dto.CreateProposalRequest) (*models.Proposal, error) {
	if _, err := s.jobRepo.FindByID(ctx, jobID); err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	proposal := &models.Proposal{
		JobID:        jobID,
		FreelancerID: freelancerID,
		CoverLetter:  req.CoverLetter,
		BidAmount:    req.BidAmount,
		Status:       models.ProposalStatusPending,
	}
	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return proposal, nil
}

// ListByJob возвращает отклики заказа. Доступно только клиенту-владельцу.
func (s *ProposalServiceImpl) ListByJob(ctx context.Context, jobID, requesterID string) ([]models.Proposal, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if job.ClientID != requesterID {
		return nil, apperrors.ErrForbidden
	}

	proposals, err := s.proposalRepo.FindByJobID(ctx, jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return proposals, nil
}
