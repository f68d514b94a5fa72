package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// EventFinalStep is the last wizard step for an event listing. The event
	// wizard never steps past it; publishing sets the status explicitly.
	EventFinalStep = 2

	// MaxEventsPerChurch caps how many events a single church may create.
	MaxEventsPerChurch = 3
)

// Event is a church event listing. Ownership is derived through the owning
// church; events carry no user id of their own.
type Event struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ChurchID uint   `gorm:"index" json:"church_id"`
	Church   Church `gorm:"foreignKey:ChurchID" json:"-"`

	// Step 1: details
	Title       string     `gorm:"type:varchar(255)" json:"title"`
	Slug        string     `gorm:"uniqueIndex;type:varchar(255)" json:"slug"`
	Description string     `gorm:"type:text" json:"description"`
	StartsAt    *time.Time `gorm:"type:timestamp;default:null" json:"starts_at,omitempty"`
	EndsAt      *time.Time `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	Location    string     `gorm:"type:varchar(255)" json:"location"`
	ImageURL    string     `gorm:"type:varchar(500)" json:"image_url"`

	// Wizard + promotion state
	Step            int        `gorm:"default:1" json:"step"`
	Status          string     `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Featured        bool       `gorm:"default:false;index" json:"featured"`
	FeaturedUntil   *time.Time `gorm:"type:timestamp;default:null" json:"featured_until,omitempty"`
	PaymentStatus   string     `gorm:"type:varchar(20);default:'none'" json:"payment_status"`
	StripeSessionID string     `gorm:"type:varchar(255);index" json:"-"`
	ViewCount       uint64     `gorm:"default:0" json:"view_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPublished reports whether the listing finished onboarding.
func (e *Event) IsPublished() bool {
	return e.Status == ListingStatusPublished
}

// FeaturedActive reports whether the paid featured placement is currently honored.
func (e *Event) FeaturedActive(now time.Time) bool {
	return e.Featured && e.FeaturedUntil != nil && e.FeaturedUntil.After(now)
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.Step < 1 {
		e.Step = 1
	}
	if e.Status == "" {
		e.Status = ListingStatusDraft
	}
	if e.PaymentStatus == "" {
		e.PaymentStatus = PaymentStatusNone
	}
	return nil
}
