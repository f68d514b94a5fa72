package repository

import (
	"github.com/churchatlas/churchatlas/app/models"
	"gorm.io/gorm"
)

// eventRepository implements the EventRepository interface
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository instance
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create creates a new event listing in the database
func (r *eventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

// GetByID retrieves an event by its ID
func (r *eventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.Preload("Church").First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetBySlug retrieves an event by its slug
func (r *eventRepository) GetBySlug(slug string) (*models.Event, error) {
	var event models.Event
	err := r.db.Preload("Church").Where("slug = ?", slug).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByChurchID retrieves all events belonging to a church
func (r *eventRepository) GetByChurchID(churchID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("church_id = ?", churchID).
		Order("starts_at ASC, created_at DESC").Find(&events).Error
	return events, err
}

// GetPublishedByChurchID retrieves the published events of a church
func (r *eventRepository) GetPublishedByChurchID(churchID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("church_id = ? AND status = ?", churchID, models.ListingStatusPublished).
		Order("starts_at ASC, created_at DESC").Find(&events).Error
	return events, err
}

// Update updates an existing event in the database
func (r *eventRepository) Update(event *models.Event) error {
	return r.db.Omit("Church").Save(event).Error
}

// Delete hard deletes an event by its ID
func (r *eventRepository) Delete(id uint) error {
	return r.db.Delete(&models.Event{}, id).Error
}

// CountByChurchID returns the number of events for a church
func (r *eventRepository) CountByChurchID(churchID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Where("church_id = ?", churchID).Count(&count).Error
	return count, err
}

// SlugExists checks if a slug already exists
func (r *eventRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// SlugExistsExceptID checks if a slug exists excluding a specific ID
func (r *eventRepository) SlugExistsExceptID(slug string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Where("slug = ? AND id != ?", slug, id).Count(&count).Error
	return count > 0, err
}
