package models

import (
	"time"

	"gorm.io/gorm"
)

// EventStatus defines the publication state of an event.
type EventStatus string

const (
	// EventDraft means the event is only visible to its host.
	EventDraft EventStatus = "draft"

	// EventPublished means the event appears in public listings.
	EventPublished EventStatus = "published"
)

// Event represents a social event hosted by a user.
type Event struct {
	gorm.Model
	Title     string      `gorm:"size:250;not null"`
	Slug      string      `gorm:"size:250;uniqueIndex;not null"`
	HostID    uint        `gorm:"not null;index"`
	Body      string      `gorm:"not null"`
	EventDate time.Time   `gorm:"not null;index:,sort:desc"`
	Private   bool        `gorm:"not null;default:false"`
	Status    EventStatus `gorm:"type:varchar(20);not null;index"`

	Host      User    `gorm:"foreignKey:HostID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Attendees []*User `gorm:"many2many:event_attendees;"`
	Tags      []*Tag  `gorm:"many2many:event_tags;"`
}
