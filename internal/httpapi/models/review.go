package models

import "time"

// Review holds one user's rating and comment for a book. The composite unique
// index makes "one review per user per book" hold even under concurrent inserts.
type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	BookID    int64     `json:"book_id" gorm:"not null;index;uniqueIndex:idx_reviews_book_user"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_book_user"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Book Book `json:"book,omitempty" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
