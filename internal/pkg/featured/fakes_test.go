package featured

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/churchatlas/churchatlas/app/models"
	"github.com/churchatlas/churchatlas/app/repository"
)

type memChurchRepo struct {
	churches map[uint]*models.Church
	nextID   uint
}

func newMemChurchRepo() *memChurchRepo {
	return &memChurchRepo{churches: map[uint]*models.Church{}, nextID: 1}
}

func (r *memChurchRepo) Create(church *models.Church) error {
	church.ID = r.nextID
	r.nextID++
	cp := *church
	r.churches[church.ID] = &cp
	return nil
}

func (r *memChurchRepo) GetByID(id uint) (*models.Church, error) {
	church, ok := r.churches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *church
	return &cp, nil
}

func (r *memChurchRepo) GetByOwnerID(ownerID uint) (*models.Church, error) {
	for _, church := range r.churches {
		if church.UserID == ownerID {
			cp := *church
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memChurchRepo) GetBySlug(slug string) (*models.Church, error) {
	for _, church := range r.churches {
		if church.Slug == slug {
			cp := *church
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memChurchRepo) Update(church *models.Church) error {
	if _, ok := r.churches[church.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *church
	r.churches[church.ID] = &cp
	return nil
}

func (r *memChurchRepo) ReplaceServiceTimes(churchID uint, labels []string) error { return nil }

func (r *memChurchRepo) Delete(id uint) error {
	delete(r.churches, id)
	return nil
}

func (r *memChurchRepo) Count() (int64, error) {
	return int64(len(r.churches)), nil
}

func (r *memChurchRepo) Search(params repository.ChurchSearchParams, now time.Time) ([]models.Church, int64, error) {
	return nil, 0, nil
}

func (r *memChurchRepo) SlugExists(slug string) (bool, error) {
	_, err := r.GetBySlug(slug)
	return err == nil, nil
}

func (r *memChurchRepo) SlugExistsExceptID(slug string, id uint) (bool, error) {
	church, err := r.GetBySlug(slug)
	if err != nil {
		return false, nil
	}
	return church.ID != id, nil
}

type memEventRepo struct {
	events map[uint]*models.Event
	nextID uint
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[uint]*models.Event{}, nextID: 1}
}

func (r *memEventRepo) Create(event *models.Event) error {
	event.ID = r.nextID
	r.nextID++
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) GetByID(id uint) (*models.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *event
	return &cp, nil
}

func (r *memEventRepo) GetBySlug(slug string) (*models.Event, error) {
	for _, event := range r.events {
		if event.Slug == slug {
			cp := *event
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memEventRepo) GetByChurchID(churchID uint) ([]models.Event, error) {
	var out []models.Event
	for _, event := range r.events {
		if event.ChurchID == churchID {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (r *memEventRepo) GetPublishedByChurchID(churchID uint) ([]models.Event, error) {
	var out []models.Event
	for _, event := range r.events {
		if event.ChurchID == churchID && event.IsPublished() {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (r *memEventRepo) Update(event *models.Event) error {
	if _, ok := r.events[event.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) Delete(id uint) error {
	delete(r.events, id)
	return nil
}

func (r *memEventRepo) CountByChurchID(churchID uint) (int64, error) {
	events, _ := r.GetByChurchID(churchID)
	return int64(len(events)), nil
}

func (r *memEventRepo) SlugExists(slug string) (bool, error) {
	_, err := r.GetBySlug(slug)
	return err == nil, nil
}

func (r *memEventRepo) SlugExistsExceptID(slug string, id uint) (bool, error) {
	event, err := r.GetBySlug(slug)
	if err != nil {
		return false, nil
	}
	return event.ID != id, nil
}

type memWebhookRepo struct {
	events map[string]*models.PaymentWebhookEvent
	nextID uint
}

func newMemWebhookRepo() *memWebhookRepo {
	return &memWebhookRepo{events: map[string]*models.PaymentWebhookEvent{}, nextID: 1}
}

func (r *memWebhookRepo) Create(event *models.PaymentWebhookEvent) error {
	key := event.Provider + "|" + event.ProviderEventID
	if _, ok := r.events[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	event.ID = r.nextID
	r.nextID++
	cp := *event
	r.events[key] = &cp
	return nil
}

func (r *memWebhookRepo) CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	key := event.Provider + "|" + event.ProviderEventID
	if existing, ok := r.events[key]; ok {
		cp := *existing
		return false, &cp, nil
	}
	event.ID = r.nextID
	r.nextID++
	cp := *event
	r.events[key] = &cp
	return true, event, nil
}

func (r *memWebhookRepo) MarkProcessed(id uint, processingError string) error {
	for _, event := range r.events {
		if event.ID == id {
			now := time.Now()
			event.ProcessedAt = &now
			event.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// stubGateway hands back canned sessions keyed by id.
type stubGateway struct {
	sessions  map[string]*CheckoutSession
	createErr error
	lastReq   CheckoutRequest
}

func newStubGateway() *stubGateway {
	return &stubGateway{sessions: map[string]*CheckoutSession{}}
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.lastReq = req
	sess := &CheckoutSession{
		ID:  fmt.Sprintf("cs_test_%s_%d", req.ListingKind, req.ListingID),
		URL: "https://checkout.stripe.test/" + req.ClientRef,
		Metadata: map[string]string{
			metadataPurposeKey:  metadataPurpose,
			metadataListingID:   fmt.Sprintf("%d", req.ListingID),
			metadataListingKind: req.ListingKind,
		},
	}
	g.sessions[sess.ID] = sess
	return sess, nil
}

func (g *stubGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	sess, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such session %s", sessionID)
	}
	return sess, nil
}
