package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/proposalpilot/backend/internal/models"
	"github.com/proposalpilot/backend/internal/repository"
)

// mockProposalStore реализует ProposalStore для тестов.
type mockProposalStore struct {
	proposals map[uuid.UUID]*models.Proposal
	events    map[uuid.UUID][]models.ViewEvent
}

func newMockProposalStore() *mockProposalStore {
	return &mockProposalStore{
		proposals: make(map[uuid.UUID]*models.Proposal),
		events:    make(map[uuid.UUID][]models.ViewEvent),
	}
}

func (m *mockProposalStore) Create(ctx context.Context, p *models.Proposal) error {
	p.ID = uuid.New()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	clone := *p
	m.proposals[p.ID] = &clone
	return nil
}

func (m *mockProposalStore) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Proposal, error) {
	p, ok := m.proposals[id]
	if !ok || p.UserID != ownerID {
		return nil, repository.ErrProposalNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockProposalStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Proposal, error) {
	var out []models.Proposal
	for _, p := range m.proposals {
		if p.UserID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProposalStore) Update(ctx context.Context, p *models.Proposal) error {
	existing, ok := m.proposals[p.ID]
	if !ok || existing.UserID != p.UserID {
		return repository.ErrProposalNotFound
	}
	p.UpdatedAt = time.Now()
	clone := *p
	m.proposals[p.ID] = &clone
	return nil
}

func (m *mockProposalStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	p, ok := m.proposals[id]
	if !ok || p.UserID != ownerID {
		return repository.ErrProposalNotFound
	}
	delete(m.proposals, id)
	delete(m.events, id)
	return nil
}

func (m *mockProposalStore) ListViewEvents(ctx context.Context, proposalID uuid.UUID) ([]models.ViewEvent, error) {
	return m.events[proposalID], nil
}

func (m *mockProposalStore) LatestViewEvents(ctx context.Context, proposalIDs []uuid.UUID) (map[uuid.UUID]models.ViewEvent, error) {
	out := make(map[uuid.UUID]models.ViewEvent)
	for _, id := range proposalIDs {
		if evs := m.events[id]; len(evs) > 0 {
			out[id] = evs[len(evs)-1]
		}
	}
	return out, nil
}

func baseProposalInput() ProposalInput {
	return ProposalInput{
		Title:      "Office Deep Clean",
		ClientName: "Acme Corp",
		Industry:   "cleaning",
		Scope:      "Weekly deep cleaning of the office space.",
		Deliverables: models.DeliverableList{
			{Item: "Floors", Description: "Floor care", Price: 100},
			{Item: "Windows", Description: "Window washing", Price: 250},
		},
		Tax: 10,
	}
}

func TestProposalService_CreateComputesPricing(t *testing.T) {
	store := newMockProposalStore()
	svc := NewProposalService(store)
	ownerID := uuid.New()

	p, err := svc.Create(context.Background(), ownerID, baseProposalInput())
	if err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	if p.Status != models.ProposalStatusDraft {
		t.Fatalf("новое предложение должно быть в DRAFT, получили %s", p.Status)
	}
	if p.ShareToken == "" {
		t.Fatalf("share-токен должен быть сгенерирован при создании")
	}
	if p.Subtotal != 350 || p.Total != 360 {
		t.Fatalf("неверный пересчёт: subtotal=%v total=%v", p.Subtotal, p.Total)
	}
	if p.Pricing.Subtotal != 350 || p.Pricing.Total != 360 {
		t.Fatalf("pricing JSON должен совпадать с колонками: %+v", p.Pricing)
	}
}

func TestProposalService_ShareTokensUnique(t *testing.T) {
	store := newMockProposalStore()
	svc := NewProposalService(store)
	ownerID := uuid.New()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		p, err := svc.Create(context.Background(), ownerID, baseProposalInput())
		if err != nil {
			t.Fatalf("create вернул ошибку: %v", err)
		}
		if seen[p.ShareToken] {
			t.Fatalf("share-токен повторился")
		}
		seen[p.ShareToken] = true
	}
}

func TestProposalService_UpdateRecomputesPricing(t *testing.T) {
	store := newMockProposalStore()
	svc := NewProposalService(store)
	ownerID := uuid.New()

	p, err := svc.Create(context.Background(), ownerID, baseProposalInput())
	if err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	in := baseProposalInput()
	in.Deliverables = append(in.Deliverables, models.Deliverable{Item: "Carpets", Description: "Carpet shampoo", Price: 50})

	updated, err := svc.Update(context.Background(), ownerID, p.ID, in)
	if err != nil {
		t.Fatalf("update вернул ошибку: %v", err)
	}

	if updated.Subtotal != 400 || updated.Total != 410 {
		t.Fatalf("пересчёт после правки: subtotal=%v total=%v", updated.Subtotal, updated.Total)
	}
	if updated.ShareToken != p.ShareToken {
		t.Fatalf("share-токен не должен меняться при правке")
	}
}

func TestProposalService_UpdateTerminalRejected(t *testing.T) {
	store := newMockProposalStore()
	svc := NewProposalService(store)
	ownerID := uuid.New()

	for _, status := range []string{models.ProposalStatusAccepted, models.ProposalStatusDeclined} {
		p, err := svc.Create(context.Background(), ownerID, baseProposalInput())
		if err != nil {
			t.Fatalf("create вернул ошибку: %v", err)
		}
		store.proposals[p.ID].Status = status

		if _, err := svc.Update(context.Background(), ownerID, p.ID, baseProposalInput()); !errors.Is(err, ErrProposalLocked) {
			t.Fatalf("правка в статусе %s должна быть отклонена, получили %v", status, err)
		}
	}
}

func TestProposalService_StatusTransitions(t *testing.T) {
	store := newMockProposalStore()
	svc := NewProposalService(store)
	ownerID := uuid.New()

	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.ProposalStatusDraft, models.ProposalStatusSent, true},
		{models.ProposalStatusDraft, models.ProposalStatusDraft, true},
		{models.ProposalStatusSent, models.ProposalStatusSent, true},
		{models.ProposalStatusSent, models.ProposalStatusDraft, false},
		{models.ProposalStatusDraft, models.ProposalStatusAccepted, false},
		{models.ProposalStatusViewed, models.ProposalStatusDraft, false},
		{models.ProposalStatusViewed, models.ProposalStatusAccepted, false},
	}

	for _, tc := range cases {
		p, err := svc.Create(context.Background(), ownerID, baseProposalInput())
		if err != nil {
			t.Fatalf("create вернул ошибку: %v", err)
		}
		store.proposals[p.ID].Status = tc.from

		in := baseProposalInput()
		in.Status = tc.to

		_, err = svc.Update(context.Background(), ownerID, p.ID, in)
		if tc.allowed && err != nil {
			t.Fatalf("переход %s -> %s должен быть разрешён: %v", tc.from, tc.to, err)
		}
		if !tc.allowed && !errors.Is(err, ErrProposalLocked) {
			t.Fatalf("переход %s -> %s должен быть запрещён, получили %v", tc.from, tc.to, err)
		}
	}
}

func TestProposalService_UpdateIndustryImmutable(t *testing.T) {
	store := newMockProposalStore()
	svc := NewProposalService(store)
	ownerID := uuid.New()

	p, err := svc.Create(context.Background(), ownerID, baseProposalInput())
	if err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	in := baseProposalInput()
	in.Industry = "landscaping"
	if _, err := svc.Update(context.Background(), ownerID, p.ID, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("смена отрасли должна отклоняться, получили %v", err)
	}

	// С исходной отраслью правка проходит.
	if _, err := svc.Update(context.Background(), ownerID, p.ID, baseProposalInput()); err != nil {
		t.Fatalf("update вернул ошибку: %v", err)
	}
	if store.proposals[p.ID].Industry != "cleaning" {
		t.Fatalf("отрасль не должна меняться")
	}
}

func TestProposalService_UpdateForeignProposal(t *testing.T) {
	store := newMockProposalStore()
	svc := NewProposalService(store)
	ownerID := uuid.New()

	p, err := svc.Create(context.Background(), ownerID, baseProposalInput())
	if err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	if _, err := svc.Update(context.Background(), uuid.New(), p.ID, baseProposalInput()); !errors.Is(err, repository.ErrProposalNotFound) {
		t.Fatalf("чужое предложение должно выглядеть несуществующим, получили %v", err)
	}
}

func TestProposalService_CreateValidation(t *testing.T) {
	store := newMockProposalStore()
	svc := NewProposalService(store)
	ownerID := uuid.New()

	in := baseProposalInput()
	in.Title = ""
	if _, err := svc.Create(context.Background(), ownerID, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("пустой заголовок должен отклоняться, получили %v", err)
	}

	in = baseProposalInput()
	in.Status = models.ProposalStatusAccepted
	if _, err := svc.Create(context.Background(), ownerID, in); !errors.Is(err, ErrProposalLocked) {
		t.Fatalf("создание сразу в ACCEPTED должно отклоняться, получили %v", err)
	}

	in = baseProposalInput()
	bad := "not-an-email"
	in.ClientEmail = &bad
	if _, err := svc.Create(context.Background(), ownerID, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("невалидный email клиента должен отклоняться, получили %v", err)
	}
}

func TestProposalService_GetAttachesViewEvents(t *testing.T) {
	store := newMockProposalStore()
	svc := NewProposalService(store)
	ownerID := uuid.New()

	p, err := svc.Create(context.Background(), ownerID, baseProposalInput())
	if err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	store.events[p.ID] = []models.ViewEvent{
		{ID: uuid.New(), ProposalID: p.ID, IPAddress: "10.0.0.1", UserAgent: "test", ViewedAt: time.Now()},
	}

	got, err := svc.Get(context.Background(), ownerID, p.ID)
	if err != nil {
		t.Fatalf("get вернул ошибку: %v", err)
	}
	if len(got.ViewEvents) != 1 {
		t.Fatalf("ожидалось одно событие просмотра, получили %d", len(got.ViewEvents))
	}
}
