package dto

import "fwork_backend/internal/models"

// CreateJobRequest - создание заказа (только клиент)
type CreateJobRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Budget      float64 `json:"budget" validate:"required,gt=0"`
}

// UpdateJobStatusRequest - смена статуса заказа владельцем
type UpdateJobStatusRequest struct {
	Status models.JobStatus `json:"status" validate:"required,oneof=open closed"`
}

// JobListResponse - страница заказов
type JobListResponse struct {
	Jobs  []models.Job `json:"jobs"`
	Total int64        `json:"total"`
}

// CreateProposalRequest - отклик фрилансера на заказ
type CreateProposalRequest struct {
	CoverLetter string  `json:"coverLetter" validate:"required"`
	BidAmount   float64 `json:"bidAmount" validate:"required,gt=0"`
}
