package models

import "time"

type Book struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UploadedBy  string    `json:"uploaded_by" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Author      string    `json:"author" gorm:"not null;index"`
	Genre       string    `json:"genre" gorm:"not null;index"`
	Description string    `json:"description" gorm:"not null;type:text"`
	IsDeleted   bool      `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	Uploader User `json:"uploader,omitempty" gorm:"foreignKey:UploadedBy;constraint:OnDelete:CASCADE;"`
}

func (Book) TableName() string {
	return "books"
}
