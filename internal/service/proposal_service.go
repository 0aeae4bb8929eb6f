package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/proposalpilot/backend/internal/models"
	"github.com/proposalpilot/backend/internal/validation"
)

// ErrProposalLocked возвращается при попытке изменить предложение
// в терминальном статусе или выполнить запрещённый переход статуса.
var ErrProposalLocked = errors.New("proposal is no longer editable")

// ProposalStore описывает зависимости ProposalService от слоя хранилища.
type ProposalStore interface {
	Create(ctx context.Context, p *models.Proposal) error
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Proposal, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Proposal, error)
	Update(ctx context.Context, p *models.Proposal) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListViewEvents(ctx context.Context, proposalID uuid.UUID) ([]models.ViewEvent, error)
	LatestViewEvents(ctx context.Context, proposalIDs []uuid.UUID) (map[uuid.UUID]models.ViewEvent, error)
}

// ProposalInput содержит редактируемые владельцем поля предложения.
type ProposalInput struct {
	Title         string
	ClientName    string
	ClientEmail   *string
	ClientCompany *string
	ClientPhone   *string
	Industry      string
	Scope         string
	Deliverables  models.DeliverableList
	Timeline      models.MilestoneList
	Tax           float64
	PricingNotes  string
	Terms         string
	Notes         *string
	Status        string
	ValidUntil    *time.Time
}

// ProposalService инкапсулирует владельческие операции жизненного цикла предложения.
type ProposalService struct {
	store ProposalStore
}

// NewProposalService создаёт сервис предложений.
func NewProposalService(store ProposalStore) *ProposalService {
	return &ProposalService{store: store}
}

// List возвращает предложения владельца, новые первыми,
// с последним событием просмотра для каждого.
func (s *ProposalService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Proposal, error) {
	proposals, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(proposals))
	for i := range proposals {
		ids[i] = proposals[i].ID
	}

	latest, err := s.store.LatestViewEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range proposals {
		if ev, ok := latest[proposals[i].ID]; ok {
			proposals[i].ViewEvents = []models.ViewEvent{ev}
		}
	}

	return proposals, nil
}

// Get возвращает предложение владельца вместе с историей просмотров.
func (s *ProposalService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Proposal, error) {
	p, err := s.store.GetByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	events, err := s.store.ListViewEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ViewEvents = events

	return p, nil
}

// Create создаёт предложение в статусе DRAFT (или сразу SENT).
// Share-токен генерируется здесь один раз и больше никогда не меняется.
func (s *ProposalService) Create(ctx context.Context, ownerID uuid.UUID, in ProposalInput) (*models.Proposal, error) {
	if err := validateProposalInput(in); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.ProposalStatusDraft
	}
	if status != models.ProposalStatusDraft && status != models.ProposalStatusSent {
		return nil, fmt.Errorf("%w: status %s is not allowed on create", ErrProposalLocked, status)
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, fmt.Errorf("proposal service: не удалось сгенерировать share-токен: %w", err)
	}

	p := &models.Proposal{
		UserID:        ownerID,
		ShareToken:    token,
		Title:         in.Title,
		ClientName:    in.ClientName,
		ClientEmail:   in.ClientEmail,
		ClientCompany: in.ClientCompany,
		ClientPhone:   in.ClientPhone,
		Industry:      in.Industry,
		Scope:         in.Scope,
		Deliverables:  in.Deliverables,
		Timeline:      in.Timeline,
		Terms:         in.Terms,
		Notes:         in.Notes,
		Status:        status,
		ValidUntil:    in.ValidUntil,
	}
	applyPricing(p, in)

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Update перезаписывает содержимое предложения владельца, пересчитывая стоимость.
// Терминальные предложения не редактируются; переход статуса сверяется с таблицей;
// отрасль неизменяема и должна совпадать с сохранённой.
func (s *ProposalService) Update(ctx context.Context, ownerID, id uuid.UUID, in ProposalInput) (*models.Proposal, error) {
	if err := validateProposalInput(in); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if models.IsTerminalStatus(existing.Status) {
		return nil, ErrProposalLocked
	}

	status := in.Status
	if status == "" {
		status = existing.Status
	}
	if !models.CanOwnerTransition(existing.Status, status) {
		return nil, fmt.Errorf("%w: transition %s -> %s is not allowed", ErrProposalLocked, existing.Status, status)
	}

	// Отрасль фиксируется при создании: от неё зависел контекст генерации.
	if in.Industry != existing.Industry {
		return nil, fmt.Errorf("%w: industry cannot be changed", ErrInvalidInput)
	}

	existing.Title = in.Title
	existing.ClientName = in.ClientName
	existing.ClientEmail = in.ClientEmail
	existing.ClientCompany = in.ClientCompany
	existing.ClientPhone = in.ClientPhone
	existing.Scope = in.Scope
	existing.Deliverables = in.Deliverables
	existing.Timeline = in.Timeline
	existing.Terms = in.Terms
	existing.Notes = in.Notes
	existing.Status = status
	existing.ValidUntil = in.ValidUntil
	applyPricing(existing, in)

	if err := s.store.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete удаляет предложение владельца вместе с историей просмотров.
func (s *ProposalService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.store.Delete(ctx, ownerID, id)
}

// applyPricing пересчитывает стоимость по инварианту:
// subtotal — сумма позиций, total = subtotal + tax.
func applyPricing(p *models.Proposal, in ProposalInput) {
	subtotal := in.Deliverables.Sum()
	p.Subtotal = subtotal
	p.Tax = in.Tax
	p.Total = subtotal + in.Tax
	p.Pricing = models.Pricing{
		Subtotal: subtotal,
		Tax:      in.Tax,
		Total:    subtotal + in.Tax,
		Notes:    in.PricingNotes,
	}
}

// validateProposalInput проверяет обязательные поля и границы значений.
func validateProposalInput(in ProposalInput) error {
	if err := validation.ValidateRequired("title", in.Title); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateLength("title", in.Title, 1, validation.MaxTitleLength); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateRequired("client name", in.ClientName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateRequired("industry", in.Industry); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.ClientEmail != nil && *in.ClientEmail != "" {
		if err := validation.ValidateEmail(*in.ClientEmail); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if len(in.Deliverables) > validation.MaxDeliverablesCount {
		return fmt.Errorf("%w: too many deliverables", ErrInvalidInput)
	}
	if len(in.Timeline) > validation.MaxMilestonesCount {
		return fmt.Errorf("%w: too many milestones", ErrInvalidInput)
	}
	for _, d := range in.Deliverables {
		if err := validation.ValidatePrice("deliverable price", d.Price); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if err := validation.ValidatePrice("tax", in.Tax); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Status != "" {
		if _, ok := models.ValidProposalStatuses[in.Status]; !ok {
			return fmt.Errorf("%w: unknown status %s", ErrInvalidInput, in.Status)
		}
	}
	return nil
}

// generateShareToken возвращает неугадываемый URL-safe токен.
func generateShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
