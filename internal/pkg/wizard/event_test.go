package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/churchatlas/churchatlas/app/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func seedEvent(repo *fakeEventRepo, churchID uint, mutate func(*models.Event)) *models.Event {
	starts := time.Now().Add(48 * time.Hour)
	event := &models.Event{
		ChurchID:      churchID,
		Title:         "Summer Revival",
		Slug:          "summer-revival",
		Location:      "Main Hall",
		StartsAt:      &starts,
		Step:          1,
		Status:        models.ListingStatusDraft,
		PaymentStatus: models.PaymentStatusNone,
	}
	if mutate != nil {
		mutate(event)
	}
	_ = repo.Create(event)
	return event
}

func TestEventSaveStep_RequiresChurch(t *testing.T) {
	svc := NewEventService(newFakeChurchRepo(), newFakeEventRepo())

	_, _, err := svc.SaveStep(7, 1, EventPayload{
		Title:    strPtr("Summer Revival"),
		Location: strPtr("Main Hall"),
		StartsAt: timePtr(time.Now().Add(24 * time.Hour)),
	})
	assert.ErrorIs(t, err, ErrNoChurch)
}

func TestEventSaveStep_CreatesAndAdvances(t *testing.T) {
	churches := newFakeChurchRepo()
	events := newFakeEventRepo()
	church := seedChurch(churches, 7, nil)
	svc := NewEventService(churches, events)

	event, fields, err := svc.SaveStep(7, 1, EventPayload{
		Title:    strPtr("Summer Revival"),
		Location: strPtr("Main Hall"),
		StartsAt: timePtr(time.Now().Add(24 * time.Hour)),
	})
	assert.NoError(t, err)
	assert.False(t, fields.Any())
	assert.Equal(t, church.ID, event.ChurchID)
	assert.Equal(t, 2, event.Step)
	assert.Equal(t, "summer-revival", event.Slug)
}

func TestEventSaveStep_ValidationFailureDoesNotPersist(t *testing.T) {
	churches := newFakeChurchRepo()
	events := newFakeEventRepo()
	church := seedChurch(churches, 7, nil)
	svc := NewEventService(churches, events)

	starts := time.Now().Add(24 * time.Hour)
	event, fields, err := svc.SaveStep(7, 1, EventPayload{
		Title:    strPtr("Summer Revival"),
		Location: strPtr("Main Hall"),
		StartsAt: &starts,
		EndsAt:   timePtr(starts.Add(-time.Hour)),
	})
	assert.NoError(t, err)
	assert.Nil(t, event)
	assert.Contains(t, fields, "ends_at")

	stored, err := events.GetByChurchID(church.ID)
	assert.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEventSaveStep_CapBlocksCreationOnly(t *testing.T) {
	churches := newFakeChurchRepo()
	events := newFakeEventRepo()
	church := seedChurch(churches, 7, nil)
	for i := 0; i < models.MaxEventsPerChurch; i++ {
		seedEvent(events, church.ID, func(e *models.Event) {
			e.Slug = e.Slug + string(rune('a'+i))
		})
	}
	svc := NewEventService(churches, events)

	_, _, err := svc.SaveStep(7, 1, EventPayload{
		Title:    strPtr("One Too Many"),
		Location: strPtr("Main Hall"),
		StartsAt: timePtr(time.Now().Add(24 * time.Hour)),
	})
	assert.ErrorIs(t, err, ErrEventLimit)

	stored, err := events.GetByChurchID(church.ID)
	assert.NoError(t, err)
	assert.Len(t, stored, models.MaxEventsPerChurch)

	// Updating an existing event at the cap still works.
	existing := stored[0]
	event, fields, err := svc.SaveStep(7, 1, EventPayload{
		ID:       &existing.ID,
		Location: strPtr("Fellowship Hall"),
	})
	assert.NoError(t, err)
	assert.False(t, fields.Any())
	assert.Equal(t, "Fellowship Hall", event.Location)
}

func TestEventSaveStep_CrossOwnerConcealed(t *testing.T) {
	churches := newFakeChurchRepo()
	events := newFakeEventRepo()
	seedChurch(churches, 7, nil)
	theirs := seedChurch(churches, 8, func(c *models.Church) {
		c.Name = "Hope Chapel"
		c.Slug = "hope-chapel"
	})
	foreign := seedEvent(events, theirs.ID, nil)
	svc := NewEventService(churches, events)

	_, _, err := svc.SaveStep(7, 1, EventPayload{
		ID:       &foreign.ID,
		Title:    strPtr("Hijacked"),
		Location: strPtr("Elsewhere"),
		StartsAt: timePtr(time.Now().Add(24 * time.Hour)),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GoBack(7, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(7, foreign.ID), ErrNotFound)
}

func TestEventLoadOrInitialize(t *testing.T) {
	churches := newFakeChurchRepo()
	events := newFakeEventRepo()
	church := seedChurch(churches, 7, nil)
	svc := NewEventService(churches, events)

	// id 0 is a fresh draft shell tied to the owner's church.
	draft, alreadyPublished, err := svc.LoadOrInitialize(7, 0, 0)
	assert.NoError(t, err)
	assert.False(t, alreadyPublished)
	assert.Equal(t, uint(0), draft.ID)
	assert.Equal(t, church.ID, draft.ChurchID)
	assert.Equal(t, 1, draft.Step)

	published := seedEvent(events, church.ID, func(e *models.Event) {
		e.Status = models.ListingStatusPublished
		e.Step = 2
	})
	_, alreadyPublished, err = svc.LoadOrInitialize(7, published.ID, 0)
	assert.NoError(t, err)
	assert.True(t, alreadyPublished)

	event, alreadyPublished, err := svc.LoadOrInitialize(7, published.ID, 2)
	assert.NoError(t, err)
	assert.False(t, alreadyPublished)
	assert.Equal(t, 2, event.Step)
}

func TestEventPublish(t *testing.T) {
	churches := newFakeChurchRepo()
	events := newFakeEventRepo()
	church := seedChurch(churches, 7, nil)
	event := seedEvent(events, church.ID, func(e *models.Event) { e.Step = 2 })
	svc := NewEventService(churches, events)

	published, fields, err := svc.Publish(7, event.ID)
	assert.NoError(t, err)
	assert.False(t, fields.Any())
	assert.Equal(t, models.ListingStatusPublished, published.Status)
	// The event wizard does not step past its final step.
	assert.Equal(t, 2, published.Step)
}

func TestEventList(t *testing.T) {
	churches := newFakeChurchRepo()
	events := newFakeEventRepo()
	church := seedChurch(churches, 7, nil)
	seedEvent(events, church.ID, nil)
	seedEvent(events, church.ID, func(e *models.Event) {
		e.Title = "Christmas Concert"
		e.Slug = "christmas-concert"
		e.Status = models.ListingStatusPublished
	})
	svc := NewEventService(churches, events)

	list, err := svc.List(7)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
}
