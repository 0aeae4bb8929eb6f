package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Deliverable — одна оплачиваемая позиция в составе предложения.
type Deliverable struct {
	Item        string  `json:"item"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Milestone — этап работ в таймлайне предложения.
type Milestone struct {
	Milestone   string `json:"milestone"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// Pricing — итоговая стоимость предложения.
type Pricing struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Notes    string  `json:"notes"`
}

// DeliverableList хранится в JSONB колонке.
type DeliverableList []Deliverable

// MilestoneList хранится в JSONB колонке.
type MilestoneList []Milestone

// Sum возвращает сумму цен всех позиций.
func (d DeliverableList) Sum() float64 {
	var sum float64
	for _, item := range d {
		sum += item.Price
	}
	return sum
}

// Value сериализует список позиций для записи в JSONB.
func (d DeliverableList) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal(DeliverableList{})
	}
	return json.Marshal(d)
}

// Scan читает список позиций из JSONB.
func (d *DeliverableList) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// Value сериализует таймлайн для записи в JSONB.
func (m MilestoneList) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(MilestoneList{})
	}
	return json.Marshal(m)
}

// Scan читает таймлайн из JSONB.
func (m *MilestoneList) Scan(src interface{}) error {
	return scanJSON(src, m)
}

// Value сериализует стоимость для записи в JSONB.
func (p Pricing) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan читает стоимость из JSONB.
func (p *Pricing) Scan(src interface{}) error {
	return scanJSON(src, p)
}

// scanJSON декодирует значение JSONB колонки в целевую структуру.
func scanJSON(src interface{}, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch raw := src.(type) {
	case []byte:
		return json.Unmarshal(raw, dst)
	case string:
		return json.Unmarshal([]byte(raw), dst)
	default:
		return fmt.Errorf("models: неожиданный тип JSONB колонки %T", src)
	}
}

// Proposal описывает коммерческое предложение для клиента.
type Proposal struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	ShareToken    string          `db:"share_token" json:"share_token"`
	Title         string          `db:"title" json:"title"`
	ClientName    string          `db:"client_name" json:"client_name"`
	ClientEmail   *string         `db:"client_email" json:"client_email,omitempty"`
	ClientCompany *string         `db:"client_company" json:"client_company,omitempty"`
	ClientPhone   *string         `db:"client_phone" json:"client_phone,omitempty"`
	Industry      string          `db:"industry" json:"industry"`
	Scope         string          `db:"scope" json:"scope"`
	Deliverables  DeliverableList `db:"deliverables" json:"deliverables"`
	Timeline      MilestoneList   `db:"timeline" json:"timeline"`
	Pricing       Pricing         `db:"pricing" json:"pricing"`
	Terms         string          `db:"terms" json:"terms"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	Subtotal      float64         `db:"subtotal" json:"subtotal"`
	Tax           float64         `db:"tax" json:"tax"`
	Total         float64         `db:"total" json:"total"`
	Status        string          `db:"status" json:"status"`
	ValidUntil    *time.Time      `db:"valid_until" json:"valid_until,omitempty"`
	SignatureData *string         `db:"signature_data" json:"signature_data,omitempty"`
	SignedByName  *string         `db:"signed_by_name" json:"signed_by_name,omitempty"`
	SignedByEmail *string         `db:"signed_by_email" json:"signed_by_email,omitempty"`
	SignedAt      *time.Time      `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`

	ViewEvents []ViewEvent `json:"view_events,omitempty"`
}

// ViewEvent фиксирует факт просмотра предложения клиентом.
// События только добавляются и удаляются вместе с предложением.
type ViewEvent struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ProposalID uuid.UUID `db:"proposal_id" json:"proposal_id"`
	Duration   *int      `db:"duration" json:"duration,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	ViewedAt   time.Time `db:"viewed_at" json:"viewed_at"`
}

// DraftProposal — результат работы генератора черновиков.
type DraftProposal struct {
	Title        string          `json:"title"`
	Scope        string          `json:"scope"`
	Deliverables DeliverableList `json:"deliverables"`
	Timeline     MilestoneList   `json:"timeline"`
	Pricing      Pricing         `json:"pricing"`
	Terms        string          `json:"terms"`
}
