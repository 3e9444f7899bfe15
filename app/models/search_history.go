package models

import "time"

// SearchHistory stores CEP searches of logged-in users.
type SearchHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index" json:"user_id"`
	Cep          string    `gorm:"type:varchar(5);not null" json:"cep"`
	ResultsCount int       `json:"results_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
