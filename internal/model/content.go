package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Section struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`
	Course    *Course   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Section) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Video struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:256;uniqueIndex;not null" json:"name"`
	SectionID uuid.UUID `gorm:"type:uuid;not null" json:"section_id"`
	Section   *Section  `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"-"`
	// ContentHash addresses the stored file; it doubles as dedup key.
	ContentHash string        `gorm:"size:128;uniqueIndex;not null" json:"content_hash"`
	Duration    time.Duration `gorm:"not null" json:"duration"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FileName    string    `gorm:"size:255;uniqueIndex;not null" json:"file_name"`
	ContentHash string    `gorm:"size:128;uniqueIndex;not null" json:"content_hash"`
	VideoID     uuid.UUID `gorm:"type:uuid;not null" json:"video_id"`
	Video       *Video    `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
	FileSize    int64     `gorm:"not null;check:file_size > 0" json:"file_size"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type VideoFeedback struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null" json:"video_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Video     *Video    `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *VideoFeedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (VideoFeedback) TableName() string { return "video_feedback" }
