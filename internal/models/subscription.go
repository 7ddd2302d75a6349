package models

import "time"

// Subscription records that User follows Author. The pair is unique; nothing
// stops a user from subscribing to themselves.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscription_user_author" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_subscription_user_author;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	CreatedAt time.Time `json:"-"`
}

func (Subscription) DefaultOrder() string {
	return "subscriptions.author_id DESC"
}
