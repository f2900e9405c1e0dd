package models

// Job - заказ, размещенный клиентом. Обычная CRUD-запись без
// бизнес-инвариантов, целостность ссылок обеспечивает БД.
type Job struct {
	BaseModel
	ClientID    string    `gorm:"type:uuid;not null;index" json:"clientId"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Budget      float64   `gorm:"not null" json:"budget"`
	Status      JobStatus `gorm:"type:varchar(20);default:'open'" json:"status"`

	Client    *User      `gorm:"foreignKey:ClientID" json:"-"`
	Proposals []Proposal `gorm:"foreignKey:JobID" json:"-"`
}

// Proposal - отклик фрилансера на заказ.
type Proposal struct {
	BaseModel
	JobID        string         `gorm:"type:uuid;not null;index" json:"jobId"`
	FreelancerID string         `gorm:"type:uuid;not null;index" json:"freelancerId"`
	CoverLetter  string         `gorm:"type:text" json:"coverLetter"`
	BidAmount    float64        `gorm:"not null" json:"bidAmount"`
	Status       ProposalStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	Job        *Job  `gorm:"foreignKey:JobID" json:"-"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"-"`
}
