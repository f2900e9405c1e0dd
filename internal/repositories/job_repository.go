package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fwork_backend/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

// JobRepository определяет операции хранилища заказов
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id string) (*models.Job, error)
	FindAll(ctx context.Context, limit, offset int) ([]models.Job, int64, error)
	Update(ctx context.Context, job *models.Job) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) FindAll(ctx context.Context, limit, offset int) ([]models.Job, int64, error) {
	var jobs []models.Job
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Job{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	return jobs, total, err
}

func (r *jobRepository) Update(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}
