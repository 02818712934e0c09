package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/repo"
	"github.com/gatherly/gatherly/pkg/id"
)

// ContactService owns a household's contact book and circles.
type ContactService struct {
	contactRepo   repo.IContactRepository
	circleRepo    repo.ICircleRepository
	householdRepo repo.IHouseholdRepository
}

func NewContactService(contactRepo repo.IContactRepository, circleRepo repo.ICircleRepository, householdRepo repo.IHouseholdRepository) *ContactService {
	return &ContactService{
		contactRepo:   contactRepo,
		circleRepo:    circleRepo,
		householdRepo: householdRepo,
	}
}

// CreateContact records another household or a non-app person. A linked
// household id is validated so watcher resolution never points at a
// household that does not exist.
func (s *ContactService) CreateContact(ctx context.Context, ownerHouseholdId string, req *model.CreateContactReq) (*model.Contact, error) {
	if req.DisplayName == "" {
		return nil, errors.New("display name is required")
	}
	if req.LinkedHouseholdId == "" && req.Phone == "" {
		return nil, errors.New("contact needs a linked household or a phone")
	}
	if req.LinkedHouseholdId != "" {
		linked, err := s.householdRepo.GetByHouseholdId(ctx, req.LinkedHouseholdId)
		if err != nil {
			return nil, err
		}
		if linked == nil {
			return nil, errors.New("linked household not found")
		}
	}

	contact := &model.Contact{
		ContactId:         id.GetUUIDWithoutDashes(),
		OwnerHouseholdId:  ownerHouseholdId,
		DisplayName:       req.DisplayName,
		Phone:             req.Phone,
		LinkedHouseholdId: req.LinkedHouseholdId,
	}
	if err := s.contactRepo.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// ListContacts lists a household's contact book.
func (s *ContactService) ListContacts(ctx context.Context, ownerHouseholdId string) ([]model.Contact, error) {
	return s.contactRepo.ListByOwner(ctx, ownerHouseholdId)
}

// CreateCircle creates a named contact grouping. Member contact ids must
// belong to the owner.
func (s *ContactService) CreateCircle(ctx context.Context, ownerHouseholdId string, req *model.CreateCircleReq) (*model.Circle, error) {
	if req.Name == "" {
		return nil, errors.New("circle name is required")
	}

	contacts, err := s.contactRepo.ListByContactIds(ctx, ownerHouseholdId, req.ContactIds)
	if err != nil {
		return nil, err
	}
	if len(contacts) != len(req.ContactIds) {
		return nil, errors.New("contact not found")
	}

	circle := &model.Circle{
		CircleId:         id.GetUUIDWithoutDashes(),
		OwnerHouseholdId: ownerHouseholdId,
		Name:             req.Name,
	}
	members := make([]model.CircleMember, 0, len(contacts))
	for _, contact := range contacts {
		members = append(members, model.CircleMember{
			CircleId:  circle.CircleId,
			ContactId: contact.ContactId,
		})
	}
	if err := s.circleRepo.CreateCircle(ctx, circle, members); err != nil {
		return nil, fmt.Errorf("create circle: %w", err)
	}
	return circle, nil
}

// ListCircles lists a household's circles.
func (s *ContactService) ListCircles(ctx context.Context, ownerHouseholdId string) ([]model.Circle, error) {
	return s.circleRepo.ListByOwner(ctx, ownerHouseholdId)
}

// AddCircleMember adds one of the owner's contacts to a circle.
func (s *ContactService) AddCircleMember(ctx context.Context, ownerHouseholdId, circleId, contactId string) error {
	circle, err := s.circleRepo.GetByCircleId(ctx, circleId)
	if err != nil {
		return err
	}
	if circle == nil || circle.OwnerHouseholdId != ownerHouseholdId {
		return errors.New("circle not found")
	}

	contacts, err := s.contactRepo.ListByContactIds(ctx, ownerHouseholdId, []string{contactId})
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		return errors.New("contact not found")
	}
	return s.circleRepo.AddMember(ctx, &model.CircleMember{
		CircleId:  circleId,
		ContactId: contactId,
	})
}
