package models

// UserRole - роль пользователя, выбирается при регистрации и не меняется
type UserRole string

const (
	UserRoleFreelancer UserRole = "freelancer"
	UserRoleClient     UserRole = "client"
)

// UserStatus - статус учетной записи
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// JobStatus - статус заказа
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// ProposalStatus - статус отклика на заказ
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)
