package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"minitweet/validation"
)

// Tweet is a short user-authored message, optionally carrying an image.
// A tweet with ParentID set is a reply; deleting the parent cascades to
// the whole reply subtree via the foreign key constraint.
type Tweet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Text      string    `gorm:"size:280;not null" json:"text"`
	ImageURL  string    `gorm:"size:512" json:"image_url,omitempty"`
	ImagePath string    `gorm:"size:1024" json:"-"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Parent    *Tweet    `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Replies   []Tweet   `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

// BeforeSave enforces the text invariant on every write path, not only
// when input arrives through a form.
func (t *Tweet) BeforeSave(tx *gorm.DB) error {
	t.Text = strings.TrimSpace(t.Text)
	return validation.CheckText(t.Text)
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (t *Tweet) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (t *Tweet) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return nil
}

// IsReply reports whether the tweet has a parent.
func (t *Tweet) IsReply() bool {
	return t.ParentID != nil
}
