package sqlstore

import "time"

type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime:false"`
}

func (UserModel) TableName() string { return "users" }

type TicketModel struct {
	ID            string `gorm:"primaryKey"`
	Title         string `gorm:"not null"`
	Description   string `gorm:"not null"`
	Status        string `gorm:"not null;default:'open'"`
	Priority      string `gorm:"not null;default:'medium'"`
	Category      string `gorm:"not null"`
	CustomerName  string `gorm:"not null"`
	CustomerEmail string `gorm:"not null"`
	AssignedTo    *string
	CreatedAt     time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (TicketModel) TableName() string { return "tickets" }

type DemoRequestModel struct {
	ID                string    `gorm:"primaryKey"`
	Name              string    `gorm:"not null"`
	Email             string    `gorm:"not null"`
	Company           string    `gorm:"not null"`
	Phone             string    `gorm:"not null"`
	CompanySize       string    `gorm:"not null"`
	PrimaryInterest   string    `gorm:"not null"`
	CurrentChallenges string    `gorm:"not null"`
	PreferredTime     string    `gorm:"not null"`
	Status            string    `gorm:"not null;default:'new'"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime:false"`
}

func (DemoRequestModel) TableName() string { return "demo_requests" }
