package repository

import (
	"time"

	"github.com/churchatlas/churchatlas/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	Count() (int64, error)
}

// ChurchSearchParams carries the public directory search filters.
type ChurchSearchParams struct {
	Query        string
	State        string
	City         string
	Denomination string
	FeaturedOnly bool
	Offset       int
	Limit        int
}

// ChurchRepository defines the interface for church listing operations
type ChurchRepository interface {
	Create(church *models.Church) error
	GetByID(id uint) (*models.Church, error)
	GetByOwnerID(ownerID uint) (*models.Church, error)
	GetBySlug(slug string) (*models.Church, error)
	Update(church *models.Church) error
	ReplaceServiceTimes(churchID uint, labels []string) error
	Delete(id uint) error
	Count() (int64, error)
	Search(params ChurchSearchParams, now time.Time) ([]models.Church, int64, error)
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// EventRepository defines the interface for event listing operations
type EventRepository interface {
	Create(event *models.Event) error
	GetByID(id uint) (*models.Event, error)
	GetBySlug(slug string) (*models.Event, error)
	GetByChurchID(churchID uint) ([]models.Event, error)
	GetPublishedByChurchID(churchID uint) ([]models.Event, error)
	Update(event *models.Event) error
	Delete(id uint) error
	CountByChurchID(churchID uint) (int64, error)
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// WebhookEventRepository persists provider webhook deliveries for dedup/audit.
type WebhookEventRepository interface {
	Create(event *models.PaymentWebhookEvent) error
	CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Church       ChurchRepository
	Event        EventRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Church:       NewChurchRepository(db),
		Event:        NewEventRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
