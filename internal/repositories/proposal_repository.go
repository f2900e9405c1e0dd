package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fwork_backend/internal/models"
)

var ErrProposalNotFound = errors.New("proposal not found")

// ProposalRepository определяет операции хранилища откликов
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	FindByID(ctx context.Context, id string) (*models.Proposal, error)
	FindByJobID(ctx context.Context, jobID string) ([]models.Proposal, error)
	Update(ctx context.Context, proposal *models.Proposal) error
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *proposalRepository) FindByID(ctx context.Context, id string) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := r.db.WithContext(ctx).First(&proposal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) FindByJobID(ctx context.Context, jobID string) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&proposals).Error
	return proposals, err
}

func (r *proposalRepository) Update(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Save(proposal).Error
}
