package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ListingStatusDraft     = "draft"
	ListingStatusPublished = "published"
	ListingStatusArchived  = "archived"

	PaymentStatusNone      = "none"
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

const (
	// ChurchFinalStep is the last wizard step for a church listing.
	ChurchFinalStep = 4
	// ChurchStepCap is the display sentinel reached after the final step.
	ChurchStepCap = ChurchFinalStep + 1
)

// Church is a church listing progressing through the four-step onboarding
// wizard. Step holds the next step to show, not the last one completed.
type Church struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Step 1: identity
	Name         string `gorm:"type:varchar(255)" json:"name"`
	Slug         string `gorm:"uniqueIndex;type:varchar(255)" json:"slug"`
	Denomination string `gorm:"type:varchar(100)" json:"denomination"`
	Description  string `gorm:"type:text" json:"description"`
	ImageURL     string `gorm:"type:varchar(500)" json:"image_url"`

	// Step 2: location
	Address string `gorm:"type:varchar(255)" json:"address"`
	City    string `gorm:"type:varchar(100);index" json:"city"`
	State   string `gorm:"type:varchar(100);index" json:"state"`
	Zip     string `gorm:"type:varchar(20)" json:"zip"`

	// Step 3: contact + services
	PastorName   string        `gorm:"type:varchar(150)" json:"pastor_name"`
	PastorEmail  string        `gorm:"type:varchar(200)" json:"pastor_email"`
	PastorPhone  string        `gorm:"type:varchar(50)" json:"pastor_phone"`
	ContactEmail string        `gorm:"type:varchar(200)" json:"contact_email"`
	ContactPhone string        `gorm:"type:varchar(50)" json:"contact_phone"`
	ServiceTimes []ServiceTime `gorm:"foreignKey:ChurchID;constraint:OnDelete:CASCADE" json:"service_times"`

	// Wizard + promotion state
	Step            int        `gorm:"default:1" json:"step"`
	Status          string     `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	IsFeatured      bool       `gorm:"default:false;index" json:"is_featured"`
	FeaturedUntil   *time.Time `gorm:"type:timestamp;default:null" json:"featured_until,omitempty"`
	PaymentStatus   string     `gorm:"type:varchar(20);default:'none'" json:"payment_status"`
	StripeSessionID string     `gorm:"type:varchar(255);index" json:"-"`
	ViewCount       uint64     `gorm:"default:0" json:"view_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ServiceTime is one ordered entry of a church's free-text service list
// ("Sunday 10:00 AM", "Wednesday Bible Study 7 PM", ...).
type ServiceTime struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	ChurchID uint   `gorm:"index" json:"-"`
	Position int    `gorm:"default:0" json:"position"`
	Label    string `gorm:"type:varchar(255)" json:"label"`
}

func (ServiceTime) TableName() string {
	return "church_service_times"
}

// IsPublished reports whether the listing finished onboarding.
func (c *Church) IsPublished() bool {
	return c.Status == ListingStatusPublished
}

// FeaturedActive reports whether the paid featured placement is currently
// honored. The featured flag alone is not enough: expiry is checked lazily
// against the clock, nothing ever unsets the flag.
func (c *Church) FeaturedActive(now time.Time) bool {
	return c.IsFeatured && c.FeaturedUntil != nil && c.FeaturedUntil.After(now)
}

// ServiceLabels returns the service list as plain strings in stored order.
func (c *Church) ServiceLabels() []string {
	labels := make([]string, 0, len(c.ServiceTimes))
	for _, st := range c.ServiceTimes {
		labels = append(labels, st.Label)
	}
	return labels
}

// SetServiceLabels replaces the service list, preserving the given order.
func (c *Church) SetServiceLabels(labels []string) {
	times := make([]ServiceTime, 0, len(labels))
	for i, label := range labels {
		times = append(times, ServiceTime{ChurchID: c.ID, Position: i, Label: label})
	}
	c.ServiceTimes = times
}

// BeforeCreate guards the lower step bound; the wizard owns all other moves.
func (c *Church) BeforeCreate(tx *gorm.DB) error {
	if c.Step < 1 {
		c.Step = 1
	}
	if c.Status == "" {
		c.Status = ListingStatusDraft
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = PaymentStatusNone
	}
	return nil
}
