package models

// ProposalStatus константы статусов предложений
const (
	ProposalStatusDraft    = "DRAFT"
	ProposalStatusSent     = "SENT"
	ProposalStatusViewed   = "VIEWED"
	ProposalStatusAccepted = "ACCEPTED"
	ProposalStatusDeclined = "DECLINED"
	ProposalStatusExpired  = "EXPIRED"
)

// ValidProposalStatuses список валидных статусов предложений
var ValidProposalStatuses = map[string]struct{}{
	ProposalStatusDraft:    {},
	ProposalStatusSent:     {},
	ProposalStatusViewed:   {},
	ProposalStatusAccepted: {},
	ProposalStatusDeclined: {},
	ProposalStatusExpired:  {},
}

// ownerTransitions — переходы статусов, доступные владельцу.
// Единственный владельческий переход — DRAFT -> SENT; отозвать отправленное
// предложение нельзя, share-токен уже мог уйти клиенту.
// Клиентские переходы (VIEWED, ACCEPTED, DECLINED) идут только через портал.
var ownerTransitions = map[string]map[string]struct{}{
	ProposalStatusDraft: {
		ProposalStatusSent: {},
	},
	ProposalStatusSent:   {},
	ProposalStatusViewed: {},
}

// IsTerminalStatus сообщает, является ли статус конечным.
// После ACCEPTED или DECLINED запись больше не меняется.
func IsTerminalStatus(status string) bool {
	return status == ProposalStatusAccepted || status == ProposalStatusDeclined
}

// CanOwnerTransition проверяет, разрешён ли владельцу переход статуса.
func CanOwnerTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := ownerTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}
