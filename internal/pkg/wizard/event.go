package wizard

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/churchatlas/churchatlas/app/models"
	"github.com/churchatlas/churchatlas/app/repository"
	"github.com/churchatlas/churchatlas/internal/pkg/slug"
)

// EventPayload is the wizard form payload for event listings. Nil fields are
// left untouched on merge.
type EventPayload struct {
	ID          *uint      `json:"id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Location    *string    `json:"location"`
	ImageURL    *string    `json:"image_url"`
}

// EventService drives an event listing through the two-step wizard. Ownership
// is resolved transitively through the owner's church.
type EventService struct {
	churches repository.ChurchRepository
	events   repository.EventRepository
	def      Definition
}

// NewEventService creates an event wizard service from injected repositories.
func NewEventService(churches repository.ChurchRepository, events repository.EventRepository) *EventService {
	return &EventService{churches: churches, events: events, def: EventDefinition}
}

// Definition exposes the wizard shape for callers that render step counts.
func (s *EventService) Definition() Definition {
	return s.def
}

// ownedChurch resolves the requesting owner's church.
func (s *EventService) ownedChurch(ownerID uint) (*models.Church, error) {
	church, err := s.churches.GetByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoChurch
		}
		return nil, err
	}
	return church, nil
}

// ownedEvent resolves an event and verifies it belongs to the owner's church.
func (s *EventService) ownedEvent(ownerID uint, eventID uint) (*models.Event, error) {
	church, err := s.ownedChurch(ownerID)
	if err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if event.ChurchID != church.ID {
		// Cross-owner access is answered the same as absence.
		return nil, ErrNotFound
	}
	return event, nil
}

// LoadOrInitialize returns an existing event for editing, or a fresh unsaved
// draft shell tied to the owner's church. Semantics mirror the church wizard:
// a published event past its final step signals completion unless an explicit
// overrideStep is supplied.
func (s *EventService) LoadOrInitialize(ownerID uint, eventID uint, overrideStep int) (*models.Event, bool, error) {
	church, err := s.ownedChurch(ownerID)
	if err != nil {
		return nil, false, err
	}

	if eventID == 0 {
		return &models.Event{
			ChurchID:      church.ID,
			Step:          1,
			Status:        models.ListingStatusDraft,
			PaymentStatus: models.PaymentStatusNone,
		}, false, nil
	}

	event, err := s.ownedEvent(ownerID, eventID)
	if err != nil {
		return nil, false, err
	}
	if overrideStep > 0 {
		if overrideStep > s.def.FinalStep {
			overrideStep = s.def.FinalStep
		}
		event.Step = overrideStep
		return event, false, nil
	}
	alreadyPublished := event.IsPublished() && event.Step >= s.def.FinalStep
	return event, alreadyPublished, nil
}

// ValidateStep checks one step's fields against the (merged) listing state.
func (s *EventService) ValidateStep(event *models.Event, step int) (FieldErrors, error) {
	switch step {
	case 1:
		payload := struct {
			Title       string `json:"title" validate:"required,min=3"`
			Location    string `json:"location" validate:"required"`
			Description string `json:"description" validate:"omitempty,max=2000"`
			ImageURL    string `json:"image_url" validate:"omitempty,url"`
		}{event.Title, event.Location, event.Description, event.ImageURL}
		errs := fieldMessages(validate.Struct(payload))
		if event.StartsAt == nil {
			errs["starts_at"] = "Start date is required"
		} else if event.EndsAt != nil && event.EndsAt.Before(*event.StartsAt) {
			errs["ends_at"] = "End date must be after the start date"
		}
		return errs, nil
	case s.def.FinalStep:
		// The promotion step has no required fields.
		return FieldErrors{}, nil
	default:
		return nil, ErrUnknownStep
	}
}

// SaveStep merges the payload into the event, validates the given step and
// persists on success. Creation (a payload without an id) is rejected once
// the owning church reached its event cap; the cap never blocks updates.
func (s *EventService) SaveStep(ownerID uint, step int, p EventPayload) (*models.Event, FieldErrors, error) {
	if !s.def.ValidStep(step) {
		return nil, nil, ErrUnknownStep
	}

	church, err := s.ownedChurch(ownerID)
	if err != nil {
		return nil, nil, err
	}

	var event *models.Event
	creating := p.ID == nil
	if creating {
		count, err := s.events.CountByChurchID(church.ID)
		if err != nil {
			return nil, nil, err
		}
		if count >= models.MaxEventsPerChurch {
			return nil, nil, ErrEventLimit
		}
		event = &models.Event{
			ChurchID:      church.ID,
			Step:          1,
			Status:        models.ListingStatusDraft,
			PaymentStatus: models.PaymentStatusNone,
		}
	} else {
		event, err = s.ownedEvent(ownerID, *p.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	renamed := s.mergeEvent(event, p)

	fieldErrs, err := s.ValidateStep(event, step)
	if err != nil {
		return nil, nil, err
	}
	if fieldErrs.Any() {
		return nil, fieldErrs, nil
	}

	if renamed || (creating && event.Slug == "") {
		newSlug, err := slug.MakeUnique(event.Title, func(candidate string) (bool, error) {
			if creating {
				return s.events.SlugExists(candidate)
			}
			return s.events.SlugExistsExceptID(candidate, event.ID)
		})
		if err != nil {
			return nil, nil, err
		}
		event.Slug = newSlug
	}

	if next := s.def.Advance(step); next > event.Step {
		event.Step = next
	}

	if creating {
		if err := s.events.Create(event); err != nil {
			return nil, nil, err
		}
	} else {
		if err := s.events.Update(event); err != nil {
			return nil, nil, err
		}
	}
	return event, nil, nil
}

func (s *EventService) mergeEvent(event *models.Event, p EventPayload) bool {
	renamed := false
	if p.Title != nil && *p.Title != event.Title {
		event.Title = *p.Title
		renamed = true
	}
	if p.Description != nil {
		event.Description = *p.Description
	}
	if p.StartsAt != nil {
		event.StartsAt = p.StartsAt
	}
	if p.EndsAt != nil {
		event.EndsAt = p.EndsAt
	}
	if p.Location != nil {
		event.Location = *p.Location
	}
	if p.ImageURL != nil {
		event.ImageURL = *p.ImageURL
	}
	return renamed
}

// GoBack moves the wizard one step back without re-validating saved data.
func (s *EventService) GoBack(ownerID uint, eventID uint) (*models.Event, error) {
	event, err := s.ownedEvent(ownerID, eventID)
	if err != nil {
		return nil, err
	}
	event.Step = s.def.GoBack(event.Step)
	if err := s.events.Update(event); err != nil {
		return nil, err
	}
	return event, nil
}

// Publish validates the final step and flips the event to published. Unlike
// the church wizard the step stays at the final step; publishing is explicit.
func (s *EventService) Publish(ownerID uint, eventID uint) (*models.Event, FieldErrors, error) {
	event, err := s.ownedEvent(ownerID, eventID)
	if err != nil {
		return nil, nil, err
	}

	fieldErrs, err := s.ValidateStep(event, s.def.FinalStep)
	if err != nil {
		return nil, nil, err
	}
	if fieldErrs.Any() {
		return nil, fieldErrs, nil
	}

	event.Status = models.ListingStatusPublished
	if err := s.events.Update(event); err != nil {
		return nil, nil, err
	}
	return event, nil, nil
}

// Delete removes an event entirely, scoped to the requesting owner.
func (s *EventService) Delete(ownerID uint, eventID uint) error {
	event, err := s.ownedEvent(ownerID, eventID)
	if err != nil {
		return err
	}
	return s.events.Delete(event.ID)
}

// List returns every event of the owner's church, drafts included.
func (s *EventService) List(ownerID uint) ([]models.Event, error) {
	church, err := s.ownedChurch(ownerID)
	if err != nil {
		return nil, err
	}
	return s.events.GetByChurchID(church.ID)
}
