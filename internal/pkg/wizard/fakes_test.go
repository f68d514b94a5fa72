package wizard

import (
	"time"

	"gorm.io/gorm"

	"github.com/churchatlas/churchatlas/app/models"
	"github.com/churchatlas/churchatlas/app/repository"
)

// fakeChurchRepo is an in-memory ChurchRepository for service tests.
type fakeChurchRepo struct {
	churches map[uint]*models.Church
	services map[uint][]string
	nextID   uint
}

func newFakeChurchRepo() *fakeChurchRepo {
	return &fakeChurchRepo{
		churches: make(map[uint]*models.Church),
		services: make(map[uint][]string),
		nextID:   1,
	}
}

func (r *fakeChurchRepo) Create(church *models.Church) error {
	church.ID = r.nextID
	r.nextID++
	cp := *church
	r.churches[church.ID] = &cp
	return nil
}

func (r *fakeChurchRepo) GetByID(id uint) (*models.Church, error) {
	if c, ok := r.churches[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChurchRepo) GetByOwnerID(ownerID uint) (*models.Church, error) {
	for _, c := range r.churches {
		if c.UserID == ownerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChurchRepo) GetBySlug(slug string) (*models.Church, error) {
	for _, c := range r.churches {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChurchRepo) Update(church *models.Church) error {
	if _, ok := r.churches[church.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *church
	r.churches[church.ID] = &cp
	return nil
}

func (r *fakeChurchRepo) ReplaceServiceTimes(churchID uint, labels []string) error {
	r.services[churchID] = append([]string(nil), labels...)
	return nil
}

func (r *fakeChurchRepo) Delete(id uint) error {
	delete(r.churches, id)
	delete(r.services, id)
	return nil
}

func (r *fakeChurchRepo) Count() (int64, error) {
	return int64(len(r.churches)), nil
}

func (r *fakeChurchRepo) Search(params repository.ChurchSearchParams, now time.Time) ([]models.Church, int64, error) {
	var out []models.Church
	for _, c := range r.churches {
		if c.Status == models.ListingStatusPublished {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeChurchRepo) SlugExists(slug string) (bool, error) {
	for _, c := range r.churches {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeChurchRepo) SlugExistsExceptID(slug string, id uint) (bool, error) {
	for _, c := range r.churches {
		if c.Slug == slug && c.ID != id {
			return true, nil
		}
	}
	return false, nil
}

// fakeEventRepo is an in-memory EventRepository for service tests.
type fakeEventRepo struct {
	events map[uint]*models.Event
	nextID uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events: make(map[uint]*models.Event),
		nextID: 1,
	}
}

func (r *fakeEventRepo) Create(event *models.Event) error {
	event.ID = r.nextID
	r.nextID++
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *fakeEventRepo) GetByID(id uint) (*models.Event, error) {
	if e, ok := r.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEventRepo) GetBySlug(slug string) (*models.Event, error) {
	for _, e := range r.events {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEventRepo) GetByChurchID(churchID uint) ([]models.Event, error) {
	var out []models.Event
	for _, e := range r.events {
		if e.ChurchID == churchID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) GetPublishedByChurchID(churchID uint) ([]models.Event, error) {
	var out []models.Event
	for _, e := range r.events {
		if e.ChurchID == churchID && e.Status == models.ListingStatusPublished {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Update(event *models.Event) error {
	if _, ok := r.events[event.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *fakeEventRepo) Delete(id uint) error {
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) CountByChurchID(churchID uint) (int64, error) {
	var n int64
	for _, e := range r.events {
		if e.ChurchID == churchID {
			n++
		}
	}
	return n, nil
}

func (r *fakeEventRepo) SlugExists(slug string) (bool, error) {
	for _, e := range r.events {
		if e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEventRepo) SlugExistsExceptID(slug string, id uint) (bool, error) {
	for _, e := range r.events {
		if e.Slug == slug && e.ID != id {
			return true, nil
		}
	}
	return false, nil
}
