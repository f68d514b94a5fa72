package wizard

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/churchatlas/churchatlas/app/models"
	"github.com/churchatlas/churchatlas/app/repository"
	"github.com/churchatlas/churchatlas/internal/pkg/slug"
)

// ChurchPayload is the wizard form payload for church listings. Clients send
// the accumulated form object; nil fields are left untouched on merge.
type ChurchPayload struct {
	ID           *uint     `json:"id"`
	Name         *string   `json:"name"`
	Denomination *string   `json:"denomination"`
	Description  *string   `json:"description"`
	ImageURL     *string   `json:"image_url"`
	Address      *string   `json:"address"`
	City         *string   `json:"city"`
	State        *string   `json:"state"`
	Zip          *string   `json:"zip"`
	PastorName   *string   `json:"pastor_name"`
	PastorEmail  *string   `json:"pastor_email"`
	PastorPhone  *string   `json:"pastor_phone"`
	ContactEmail *string   `json:"contact_email"`
	ContactPhone *string   `json:"contact_phone"`
	Services     *[]string `json:"services"`
}

// ChurchService drives a church listing through the four-step wizard.
type ChurchService struct {
	churches repository.ChurchRepository
	def      Definition
}

// NewChurchService creates a church wizard service from an injected repository.
func NewChurchService(churches repository.ChurchRepository) *ChurchService {
	return &ChurchService{churches: churches, def: ChurchDefinition}
}

// Definition exposes the wizard shape for callers that render step counts.
func (s *ChurchService) Definition() Definition {
	return s.def
}

// LoadOrInitialize returns the owner's church, or a fresh unsaved draft shell
// when none exists. The second return is true when onboarding is already
// complete and the caller should skip the wizard; an explicit overrideStep
// suppresses that signal so a published owner can revisit a step (used for
// the promotion step).
func (s *ChurchService) LoadOrInitialize(ownerID uint, overrideStep int) (*models.Church, bool, error) {
	church, err := s.churches.GetByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Church{
				UserID:        ownerID,
				Step:          1,
				Status:        models.ListingStatusDraft,
				PaymentStatus: models.PaymentStatusNone,
			}, false, nil
		}
		return nil, false, err
	}

	if overrideStep > 0 {
		if overrideStep > s.def.FinalStep {
			overrideStep = s.def.FinalStep
		}
		church.Step = overrideStep
		return church, false, nil
	}

	alreadyPublished := church.IsPublished() && church.Step > s.def.FinalStep
	return church, alreadyPublished, nil
}

// ValidateStep checks one step's fields against the (merged) listing state.
// Pure: no persistence, no mutation.
func (s *ChurchService) ValidateStep(church *models.Church, step int) (FieldErrors, error) {
	switch step {
	case 1:
		payload := struct {
			Name         string `json:"name" validate:"required,min=3"`
			Denomination string `json:"denomination" validate:"required,min=2"`
			Description  string `json:"description" validate:"omitempty,min=100,max=500"`
			ImageURL     string `json:"image_url" validate:"omitempty,url"`
		}{church.Name, church.Denomination, church.Description, church.ImageURL}
		return fieldMessages(validate.Struct(payload)), nil
	case 2:
		payload := struct {
			Address string `json:"address" validate:"required,min=5"`
			State   string `json:"state" validate:"required"`
			City    string `json:"city" validate:"required"`
		}{church.Address, church.State, church.City}
		return fieldMessages(validate.Struct(payload)), nil
	case 3:
		payload := struct {
			PastorName   string `json:"pastor_name" validate:"required"`
			PastorEmail  string `json:"pastor_email" validate:"required,email"`
			PastorPhone  string `json:"pastor_phone" validate:"required,min=7"`
			ContactEmail string `json:"contact_email" validate:"required,email"`
			ContactPhone string `json:"contact_phone" validate:"required,min=7"`
		}{church.PastorName, church.PastorEmail, church.PastorPhone, church.ContactEmail, church.ContactPhone}
		errs := fieldMessages(validate.Struct(payload))
		if msg := validateServices(church.ServiceLabels()); msg != "" {
			errs["services"] = msg
		}
		return errs, nil
	case s.def.FinalStep:
		// The promotion step has no required fields.
		return FieldErrors{}, nil
	default:
		return nil, ErrUnknownStep
	}
}

// validateServices checks the variable-length service list. The first entry is
// mandatory; blank entries the user added but left empty are flagged too, all
// under the single "services" key.
func validateServices(services []string) string {
	if len(services) == 0 || strings.TrimSpace(services[0]) == "" {
		return "At least one service time is required"
	}
	for _, svc := range services[1:] {
		if strings.TrimSpace(svc) == "" {
			return "Service times cannot be blank"
		}
	}
	return ""
}

// SaveStep merges the payload into the owner's church, validates the given
// step against the merged state and persists on success, advancing the step.
// A payload without an id is a creation attempt: it conflicts when the owner
// already has a church. Validation failures return field errors and leave the
// stored record untouched.
func (s *ChurchService) SaveStep(ownerID uint, step int, p ChurchPayload) (*models.Church, FieldErrors, error) {
	if !s.def.ValidStep(step) {
		return nil, nil, ErrUnknownStep
	}

	existing, err := s.churches.GetByOwnerID(ownerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	var church *models.Church
	creating := false
	switch {
	case existing == nil && p.ID != nil:
		return nil, nil, ErrNotFound
	case existing == nil:
		creating = true
		church = &models.Church{
			UserID:        ownerID,
			Step:          1,
			Status:        models.ListingStatusDraft,
			PaymentStatus: models.PaymentStatusNone,
		}
	case p.ID == nil:
		// Creation attempt while a listing already exists.
		return nil, nil, ErrDuplicateChurch
	case *p.ID != existing.ID:
		// Cross-owner access is answered the same as absence.
		return nil, nil, ErrNotFound
	default:
		church = existing
	}

	renamed := s.mergeChurch(church, p)

	fieldErrs, err := s.ValidateStep(church, step)
	if err != nil {
		return nil, nil, err
	}
	if fieldErrs.Any() {
		return nil, fieldErrs, nil
	}

	if renamed || (creating && church.Slug == "") {
		newSlug, err := slug.MakeUnique(church.Name, func(candidate string) (bool, error) {
			if creating {
				return s.churches.SlugExists(candidate)
			}
			return s.churches.SlugExistsExceptID(candidate, church.ID)
		})
		if err != nil {
			return nil, nil, err
		}
		church.Slug = newSlug
	}

	if next := s.def.Advance(step); next > church.Step {
		church.Step = next
	}

	if creating {
		if err := s.churches.Create(church); err != nil {
			return nil, nil, err
		}
	} else {
		if err := s.churches.Update(church); err != nil {
			return nil, nil, err
		}
	}
	if p.Services != nil {
		if err := s.churches.ReplaceServiceTimes(church.ID, *p.Services); err != nil {
			return nil, nil, err
		}
	}
	return church, nil, nil
}

// mergeChurch applies non-nil payload fields onto the record and reports
// whether the listing was renamed.
func (s *ChurchService) mergeChurch(church *models.Church, p ChurchPayload) bool {
	renamed := false
	if p.Name != nil && *p.Name != church.Name {
		church.Name = *p.Name
		renamed = true
	}
	if p.Denomination != nil {
		church.Denomination = *p.Denomination
	}
	if p.Description != nil {
		church.Description = *p.Description
	}
	if p.ImageURL != nil {
		church.ImageURL = *p.ImageURL
	}
	if p.Address != nil {
		church.Address = *p.Address
	}
	if p.City != nil {
		church.City = *p.City
	}
	if p.State != nil {
		church.State = *p.State
	}
	if p.Zip != nil {
		church.Zip = *p.Zip
	}
	if p.PastorName != nil {
		church.PastorName = *p.PastorName
	}
	if p.PastorEmail != nil {
		church.PastorEmail = *p.PastorEmail
	}
	if p.PastorPhone != nil {
		church.PastorPhone = *p.PastorPhone
	}
	if p.ContactEmail != nil {
		church.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		church.ContactPhone = *p.ContactPhone
	}
	if p.Services != nil {
		church.SetServiceLabels(*p.Services)
	}
	return renamed
}

// GoBack moves the wizard one step back without re-validating saved data.
func (s *ChurchService) GoBack(ownerID uint) (*models.Church, error) {
	church, err := s.churches.GetByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	church.Step = s.def.GoBack(church.Step)
	if err := s.churches.Update(church); err != nil {
		return nil, err
	}
	return church, nil
}

// Publish validates the final step and flips the listing to published. The
// step moves to the display sentinel past the final step. A failed publish
// never flips the status.
func (s *ChurchService) Publish(ownerID uint) (*models.Church, FieldErrors, error) {
	church, err := s.churches.GetByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	fieldErrs, err := s.ValidateStep(church, s.def.FinalStep)
	if err != nil {
		return nil, nil, err
	}
	if fieldErrs.Any() {
		return nil, fieldErrs, nil
	}

	church.Status = models.ListingStatusPublished
	church.Step = s.def.StepCap
	if err := s.churches.Update(church); err != nil {
		return nil, nil, err
	}
	return church, nil, nil
}

// Delete removes the owner's church entirely. Hard delete, no tombstone.
func (s *ChurchService) Delete(ownerID uint) error {
	church, err := s.churches.GetByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.churches.Delete(church.ID)
}
