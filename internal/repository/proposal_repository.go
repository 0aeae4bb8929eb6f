package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/proposalpilot/backend/internal/models"
)

// ErrProposalNotFound возвращается, когда предложение не найдено
// ни по идентификатору, ни по share-токену.
var ErrProposalNotFound = errors.New("proposal not found")

// ErrAlreadyResponded возвращается при попытке подписать предложение,
// которое уже принято или отклонено.
var ErrAlreadyResponded = errors.New("proposal already responded to")

const proposalColumns = `id, user_id, share_token, title, client_name, client_email, client_company, client_phone,
	industry, scope, deliverables, timeline, pricing, terms, notes, subtotal, tax, total,
	status, valid_until, signature_data, signed_by_name, signed_by_email, signed_at, created_at, updated_at`

// SignInput содержит данные решения клиента по предложению.
type SignInput struct {
	Accepted      bool
	SignerName    *string
	SignerEmail   *string
	SignatureData *string
}

// ProposalRepository отвечает за работу с таблицами proposals и view_events.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository создаёт экземпляр репозитория.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create сохраняет новое предложение. Share-токен задаётся один раз при создании
// и далее не меняется.
func (r *ProposalRepository) Create(ctx context.Context, p *models.Proposal) error {
	query := `
		INSERT INTO proposals (user_id, share_token, title, client_name, client_email, client_company, client_phone,
			industry, scope, deliverables, timeline, pricing, terms, notes, subtotal, tax, total, status, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		p.UserID, p.ShareToken, p.Title, p.ClientName, p.ClientEmail, p.ClientCompany, p.ClientPhone,
		p.Industry, p.Scope, p.Deliverables, p.Timeline, p.Pricing, p.Terms, p.Notes,
		p.Subtotal, p.Tax, p.Total, p.Status, p.ValidUntil,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("proposal repository: create %w", err)
	}

	return nil
}

// GetByOwner возвращает предложение по id, если оно принадлежит указанному владельцу.
func (r *ProposalRepository) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1 AND user_id = $2`
	if err := r.db.GetContext(ctx, &p, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by owner %w", err)
	}

	return &p, nil
}

// GetByShareToken возвращает предложение по публичному share-токену.
// Токен — единственная проверка доступа: владелец не сверяется.
func (r *ProposalRepository) GetByShareToken(ctx context.Context, token string) (*models.Proposal, error) {
	var p models.Proposal
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE share_token = $1`
	if err := r.db.GetContext(ctx, &p, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by share token %w", err)
	}

	return &p, nil
}

// ListByOwner возвращает все предложения владельца, новые первыми.
func (r *ProposalRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Proposal, error) {
	proposals := []models.Proposal{}
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &proposals, query, ownerID); err != nil {
		return nil, fmt.Errorf("proposal repository: list by owner %w", err)
	}

	return proposals, nil
}

// Update перезаписывает содержимое предложения владельца.
func (r *ProposalRepository) Update(ctx context.Context, p *models.Proposal) error {
	query := `
		UPDATE proposals
		SET title = $3,
			client_name = $4,
			client_email = $5,
			client_company = $6,
			client_phone = $7,
			scope = $8,
			deliverables = $9,
			timeline = $10,
			pricing = $11,
			terms = $12,
			notes = $13,
			subtotal = $14,
			tax = $15,
			total = $16,
			status = $17,
			valid_until = $18,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		p.ID, p.UserID, p.Title, p.ClientName, p.ClientEmail, p.ClientCompany, p.ClientPhone,
		p.Scope, p.Deliverables, p.Timeline, p.Pricing, p.Terms, p.Notes,
		p.Subtotal, p.Tax, p.Total, p.Status, p.ValidUntil,
	).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProposalNotFound
		}
		return fmt.Errorf("proposal repository: update %w", err)
	}

	return nil
}

// Delete удаляет предложение владельца. События просмотров удаляются каскадно.
func (r *ProposalRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("proposal repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// MarkViewed переводит предложение SENT -> VIEWED. Переход срабатывает не более
// одного раза: для любого другого статуса запрос не меняет запись.
func (r *ProposalRepository) MarkViewed(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE proposals SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, models.ProposalStatusViewed, models.ProposalStatusSent,
	)
	if err != nil {
		return false, fmt.Errorf("proposal repository: mark viewed %w", err)
	}

	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// Sign атомарно фиксирует решение клиента. Условие по статусу в самом UPDATE
// гарантирует, что одновременные accept и decline по одному токену не пройдут оба.
func (r *ProposalRepository) Sign(ctx context.Context, token string, in SignInput) (*models.Proposal, error) {
	status := models.ProposalStatusDeclined
	var signerName, signerEmail, signatureData *string
	var signedAt *time.Time

	now := time.Now()
	signedAt = &now
	if in.Accepted {
		status = models.ProposalStatusAccepted
		signerName = in.SignerName
		signerEmail = in.SignerEmail
		signatureData = in.SignatureData
	}

	var p models.Proposal
	query := `
		UPDATE proposals
		SET status = $2,
			signed_by_name = $3,
			signed_by_email = $4,
			signature_data = $5,
			signed_at = $6,
			updated_at = NOW()
		WHERE share_token = $1 AND status IN ('SENT', 'VIEWED')
		RETURNING ` + proposalColumns

	err := r.db.QueryRowxContext(ctx, query, token, status, signerName, signerEmail, signatureData, signedAt).StructScan(&p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("proposal repository: sign %w", err)
	}

	// CAS не сработал: различаем "нет такого токена" и "уже есть ответ".
	existing, lookupErr := r.GetByShareToken(ctx, token)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if models.IsTerminalStatus(existing.Status) {
		return nil, ErrAlreadyResponded
	}

	// Статус DRAFT или EXPIRED: подписывать нечего, токен ведёт на неотправленное предложение.
	return nil, ErrProposalNotFound
}

// AppendViewEvent добавляет событие просмотра. События никогда не обновляются.
func (r *ProposalRepository) AppendViewEvent(ctx context.Context, ev *models.ViewEvent) error {
	query := `
		INSERT INTO view_events (proposal_id, duration, ip_address, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, viewed_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		ev.ProposalID, ev.Duration, ev.IPAddress, ev.UserAgent,
	).Scan(&ev.ID, &ev.ViewedAt); err != nil {
		return fmt.Errorf("proposal repository: append view event %w", err)
	}

	return nil
}

// ListViewEvents возвращает события просмотров предложения, новые первыми.
func (r *ProposalRepository) ListViewEvents(ctx context.Context, proposalID uuid.UUID) ([]models.ViewEvent, error) {
	events := []models.ViewEvent{}
	query := `
		SELECT id, proposal_id, duration, ip_address, user_agent, viewed_at
		FROM view_events
		WHERE proposal_id = $1
		ORDER BY viewed_at DESC
	`
	if err := r.db.SelectContext(ctx, &events, query, proposalID); err != nil {
		return nil, fmt.Errorf("proposal repository: list view events %w", err)
	}

	return events, nil
}

// LatestViewEvents возвращает последнее событие просмотра для каждого из предложений.
// Используется списком на дашборде, чтобы не делать N+1 запросов.
func (r *ProposalRepository) LatestViewEvents(ctx context.Context, proposalIDs []uuid.UUID) (map[uuid.UUID]models.ViewEvent, error) {
	if len(proposalIDs) == 0 {
		return map[uuid.UUID]models.ViewEvent{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT DISTINCT ON (proposal_id) id, proposal_id, duration, ip_address, user_agent, viewed_at
		FROM view_events
		WHERE proposal_id IN (?)
		ORDER BY proposal_id, viewed_at DESC
	`, proposalIDs)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: latest view events %w", err)
	}

	events := []models.ViewEvent{}
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("proposal repository: latest view events %w", err)
	}

	latest := make(map[uuid.UUID]models.ViewEvent, len(events))
	for _, ev := range events {
		latest[ev.ProposalID] = ev
	}
	return latest, nil
}
