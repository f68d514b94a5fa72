package repository

import (
	"time"

	"github.com/churchatlas/churchatlas/app/models"
	"gorm.io/gorm"
)

// churchRepository implements the ChurchRepository interface
type churchRepository struct {
	db *gorm.DB
}

// NewChurchRepository creates a new church repository instance
func NewChurchRepository(db *gorm.DB) ChurchRepository {
	return &churchRepository{db: db}
}

// Create creates a new church listing in the database
func (r *churchRepository) Create(church *models.Church) error {
	return r.db.Create(church).Error
}

// GetByID retrieves a church by its ID
func (r *churchRepository) GetByID(id uint) (*models.Church, error) {
	var church models.Church
	err := r.db.Preload("ServiceTimes", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&church, id).Error
	if err != nil {
		return nil, err
	}
	return &church, nil
}

// GetByOwnerID retrieves the single church owned by a user
func (r *churchRepository) GetByOwnerID(ownerID uint) (*models.Church, error) {
	var church models.Church
	err := r.db.Preload("ServiceTimes", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("user_id = ?", ownerID).First(&church).Error
	if err != nil {
		return nil, err
	}
	return &church, nil
}

// GetBySlug retrieves a church by its slug
func (r *churchRepository) GetBySlug(slug string) (*models.Church, error) {
	var church models.Church
	err := r.db.Preload("ServiceTimes", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("slug = ?", slug).First(&church).Error
	if err != nil {
		return nil, err
	}
	return &church, nil
}

// Update updates an existing church in the database
func (r *churchRepository) Update(church *models.Church) error {
	return r.db.Omit("ServiceTimes").Save(church).Error
}

// ReplaceServiceTimes swaps the full ordered service list of a church
func (r *churchRepository) ReplaceServiceTimes(churchID uint, labels []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("church_id = ?", churchID).Delete(&models.ServiceTime{}).Error; err != nil {
			return err
		}
		for i, label := range labels {
			st := models.ServiceTime{ChurchID: churchID, Position: i, Label: label}
			if err := tx.Create(&st).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete hard deletes a church and its service times
func (r *churchRepository) Delete(id uint) error {
	err := r.db.Where("church_id = ?", id).Delete(&models.ServiceTime{}).Error
	if err != nil {
		return err
	}
	return r.db.Delete(&models.Church{}, id).Error
}

// Count returns the total number of churches
func (r *churchRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Church{}).Count(&count).Error
	return count, err
}

// Search runs the public directory query: free text on name/description,
// exact filters on state/city/denomination, optional featured-only, paginated.
func (r *churchRepository) Search(params ChurchSearchParams, now time.Time) ([]models.Church, int64, error) {
	q := r.db.Model(&models.Church{}).Where("status = ?", models.ListingStatusPublished)

	if params.Query != "" {
		like := "%" + params.Query + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}
	if params.State != "" {
		q = q.Where("state = ?", params.State)
	}
	if params.City != "" {
		q = q.Where("city = ?", params.City)
	}
	if params.Denomination != "" {
		q = q.Where("denomination = ?", params.Denomination)
	}
	if params.FeaturedOnly {
		q = q.Where("is_featured = ? AND featured_until > ?", true, now)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var churches []models.Church
	err := q.Preload("ServiceTimes", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).
		Order("is_featured DESC, created_at DESC").
		Offset(params.Offset).Limit(params.Limit).
		Find(&churches).Error
	return churches, total, err
}

// SlugExists checks if a slug already exists
func (r *churchRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Church{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// SlugExistsExceptID checks if a slug exists excluding a specific ID
func (r *churchRepository) SlugExistsExceptID(slug string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Church{}).Where("slug = ? AND id != ?", slug, id).Count(&count).Error
	return count > 0, err
}
