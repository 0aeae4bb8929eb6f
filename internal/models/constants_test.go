package models

import "testing"

func TestCanOwnerTransition(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{ProposalStatusDraft, ProposalStatusSent, true},
		{ProposalStatusDraft, ProposalStatusDraft, true},
		{ProposalStatusSent, ProposalStatusSent, true},
		{ProposalStatusViewed, ProposalStatusViewed, true},

		// Отправленное предложение не возвращается в черновик.
		{ProposalStatusSent, ProposalStatusDraft, false},
		{ProposalStatusDraft, ProposalStatusViewed, false},
		{ProposalStatusDraft, ProposalStatusAccepted, false},
		{ProposalStatusSent, ProposalStatusAccepted, false},
		{ProposalStatusSent, ProposalStatusDeclined, false},
		{ProposalStatusViewed, ProposalStatusDraft, false},
		{ProposalStatusViewed, ProposalStatusAccepted, false},
		{ProposalStatusAccepted, ProposalStatusDraft, false},
		{ProposalStatusDeclined, ProposalStatusSent, false},
		{ProposalStatusExpired, ProposalStatusSent, false},
	}

	for _, tc := range cases {
		if got := CanOwnerTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("переход %s -> %s: ожидали %v, получили %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for _, status := range []string{ProposalStatusAccepted, ProposalStatusDeclined} {
		if !IsTerminalStatus(status) {
			t.Errorf("статус %s должен быть терминальным", status)
		}
	}
	for _, status := range []string{ProposalStatusDraft, ProposalStatusSent, ProposalStatusViewed, ProposalStatusExpired} {
		if IsTerminalStatus(status) {
			t.Errorf("статус %s не должен быть терминальным", status)
		}
	}
}
