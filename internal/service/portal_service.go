package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/proposalpilot/backend/internal/goroutine"
	"github.com/proposalpilot/backend/internal/logger"
	"github.com/proposalpilot/backend/internal/models"
	"github.com/proposalpilot/backend/internal/repository"
	"github.com/proposalpilot/backend/internal/validation"
)

// PortalStore описывает зависимости PortalService от слоя хранилища.
type PortalStore interface {
	GetByShareToken(ctx context.Context, token string) (*models.Proposal, error)
	MarkViewed(ctx context.Context, id uuid.UUID) (bool, error)
	Sign(ctx context.Context, token string, in repository.SignInput) (*models.Proposal, error)
	AppendViewEvent(ctx context.Context, ev *models.ViewEvent) error
}

// BusinessCardStore возвращает публичные поля владельца для портала.
type BusinessCardStore interface {
	GetBusinessCard(ctx context.Context, id uuid.UUID) (*models.BusinessCard, error)
}

// Notifier доставляет владельцу события портала. Доставка best-effort:
// отказ уведомления не влияет на сам переход.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// PortalProposal — публичная проекция предложения для клиента.
// Приватные поля владельца (внутренние заметки, история просмотров) исключены.
type PortalProposal struct {
	Title         string                 `json:"title"`
	ClientName    string                 `json:"client_name"`
	ClientCompany *string                `json:"client_company,omitempty"`
	Industry      string                 `json:"industry"`
	Scope         string                 `json:"scope"`
	Deliverables  models.DeliverableList `json:"deliverables"`
	Timeline      models.MilestoneList   `json:"timeline"`
	Pricing       models.Pricing         `json:"pricing"`
	Terms         string                 `json:"terms"`
	Status        string                 `json:"status"`
	ValidUntil    *time.Time             `json:"valid_until,omitempty"`
	SignedByName  *string                `json:"signed_by_name,omitempty"`
	SignedAt      *time.Time             `json:"signed_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// PortalView — ответ портала: предложение плюс карточка бизнеса.
type PortalView struct {
	Proposal PortalProposal       `json:"proposal"`
	Business *models.BusinessCard `json:"business,omitempty"`
}

// ViewInput содержит данные о просмотре, известные на стороне сервера.
type ViewInput struct {
	Duration  *int
	IPAddress string
	UserAgent string
}

// PortalSignInput содержит решение клиента по предложению.
type PortalSignInput struct {
	Accepted      bool
	SignerName    string
	SignerEmail   string
	SignatureData string
}

// PortalService обслуживает неаутентифицированные входы по share-токену.
// Токен — единственная проверка доступа.
type PortalService struct {
	store    PortalStore
	users    BusinessCardStore
	notifier Notifier
}

// NewPortalService создаёт сервис портала.
func NewPortalService(store PortalStore, users BusinessCardStore, notifier Notifier) *PortalService {
	return &PortalService{store: store, users: users, notifier: notifier}
}

// Fetch возвращает публичную проекцию предложения по токену.
func (s *PortalService) Fetch(ctx context.Context, token string) (*PortalView, error) {
	p, err := s.store.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}

	view := &PortalView{
		Proposal: PortalProposal{
			Title:         p.Title,
			ClientName:    p.ClientName,
			ClientCompany: p.ClientCompany,
			Industry:      p.Industry,
			Scope:         p.Scope,
			Deliverables:  p.Deliverables,
			Timeline:      p.Timeline,
			Pricing:       p.Pricing,
			Terms:         p.Terms,
			Status:        p.Status,
			ValidUntil:    p.ValidUntil,
			SignedByName:  p.SignedByName,
			SignedAt:      p.SignedAt,
			CreatedAt:     p.CreatedAt,
		},
	}

	card, err := s.users.GetBusinessCard(ctx, p.UserID)
	if err != nil {
		// Карточка бизнеса — украшение портала, без неё предложение всё равно показываем.
		if logger.Log != nil {
			logger.Log.WithField("proposal_id", p.ID).Warnf("portal service: не удалось загрузить карточку бизнеса: %v", err)
		}
	} else {
		view.Business = card
	}

	return view, nil
}

// RecordView фиксирует просмотр: переводит SENT -> VIEWED не более одного раза
// и всегда добавляет событие просмотра. Повторный вызов с duration — то же
// событие трекинга от клиента при уходе со страницы, доставка best-effort.
func (s *PortalService) RecordView(ctx context.Context, token string, in ViewInput) error {
	p, err := s.store.GetByShareToken(ctx, token)
	if err != nil {
		return err
	}

	promoted := false
	if p.Status == models.ProposalStatusSent {
		promoted, err = s.store.MarkViewed(ctx, p.ID)
		if err != nil {
			return err
		}
	}

	ev := &models.ViewEvent{
		ProposalID: p.ID,
		Duration:   in.Duration,
		IPAddress:  orUnknown(in.IPAddress),
		UserAgent:  orUnknown(in.UserAgent),
	}
	if err := s.store.AppendViewEvent(ctx, ev); err != nil {
		return err
	}

	if promoted {
		s.notifyOwner(p.UserID, "proposal.viewed", map[string]any{
			"proposal_id": p.ID,
			"title":       p.Title,
			"status":      models.ProposalStatusViewed,
		})
	}

	return nil
}

// Sign фиксирует решение клиента. Для терминального предложения возвращается
// repository.ErrAlreadyResponded без каких-либо изменений записи.
func (s *PortalService) Sign(ctx context.Context, token string, in PortalSignInput) (*models.Proposal, error) {
	if in.Accepted {
		if err := validation.ValidateRequired("signer name", in.SignerName); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if in.SignerEmail != "" {
			if err := validation.ValidateEmail(in.SignerEmail); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
	}

	signIn := repository.SignInput{Accepted: in.Accepted}
	if in.Accepted {
		signIn.SignerName = &in.SignerName
		if in.SignerEmail != "" {
			signIn.SignerEmail = &in.SignerEmail
		}
		if in.SignatureData != "" {
			signIn.SignatureData = &in.SignatureData
		}
	}

	p, err := s.store.Sign(ctx, token, signIn)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(p.UserID, "proposal.signed", map[string]any{
		"proposal_id": p.ID,
		"title":       p.Title,
		"status":      p.Status,
	})

	return p, nil
}

// notifyOwner отправляет владельцу событие портала в отдельной горутине,
// чтобы не задерживать ответ клиенту.
func (s *PortalService) notifyOwner(ownerID uuid.UUID, event string, data map[string]any) {
	if s.notifier == nil {
		return
	}

	goroutine.SafeGo(func() {
		if err := s.notifier.BroadcastToUser(ownerID, event, data); err != nil && logger.Log != nil {
			logger.Log.WithField("event", event).Warnf("portal service: уведомление не доставлено: %v", err)
		}
	})
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
