package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/proposalpilot/backend/internal/ai"
	"github.com/proposalpilot/backend/internal/templates"
)

// mockTextProvider реализует TextProvider для тестов.
type mockTextProvider struct {
	configured bool
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (m *mockTextProvider) Configured() bool {
	return m.configured
}

func (m *mockTextProvider) ChatCompletion(ctx context.Context, messages []ai.Message, maxTokens int, temperature float64) (string, error) {
	m.calls++
	if len(messages) > 0 {
		m.lastPrompt = messages[len(messages)-1].Content
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func validDraftInput() DraftInput {
	return DraftInput{
		JobDescription: "Kitchen remodel with new cabinets and countertops",
		Industry:       "general-contractor",
		ClientName:     "Sarah",
		BusinessName:   "Smith Construction",
	}
}

func TestDraftService_FallbackWithoutProvider(t *testing.T) {
	svc := NewDraftService(templates.NewRegistry(), nil)

	draft, err := svc.Generate(context.Background(), validDraftInput())
	if err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}

	if draft.Title != "Construction Proposal for Sarah" {
		t.Fatalf("неожиданный заголовок фолбэка: %q", draft.Title)
	}
	if len(draft.Deliverables) != 4 {
		t.Fatalf("ожидалось 4 позиции, получили %d", len(draft.Deliverables))
	}
	if draft.Pricing.Subtotal != 9000 || draft.Pricing.Total != 9000 {
		t.Fatalf("неожиданная стоимость фолбэка: subtotal=%v total=%v", draft.Pricing.Subtotal, draft.Pricing.Total)
	}
	if sum := draft.Deliverables.Sum(); sum != draft.Pricing.Subtotal {
		t.Fatalf("subtotal %v не равен сумме позиций %v", draft.Pricing.Subtotal, sum)
	}
	if len(draft.Timeline) != 4 {
		t.Fatalf("ожидалось 4 этапа, получили %d", len(draft.Timeline))
	}
	if !strings.Contains(draft.Terms, "deposit") {
		t.Fatalf("условия фолбэка должны брать дефолт шаблона, получили %q", draft.Terms)
	}
}

func TestDraftService_FallbackIsDeterministic(t *testing.T) {
	svc := NewDraftService(templates.NewRegistry(), &mockTextProvider{configured: false})

	first, err := svc.Generate(context.Background(), validDraftInput())
	if err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}
	second, err := svc.Generate(context.Background(), validDraftInput())
	if err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}

	if first.Title != second.Title || first.Scope != second.Scope {
		t.Fatalf("фолбэк должен быть детерминированным")
	}
	if len(first.Deliverables) != len(second.Deliverables) {
		t.Fatalf("фолбэк должен быть детерминированным")
	}
}

func TestDraftService_FallbackUnknownIndustry(t *testing.T) {
	svc := NewDraftService(templates.NewRegistry(), nil)

	in := validDraftInput()
	in.Industry = "beekeeping"

	draft, err := svc.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}

	if draft.Title != "Consulting Proposal for Sarah" {
		t.Fatalf("неизвестная отрасль должна давать нейтральный заголовок, получили %q", draft.Title)
	}
	if draft.Terms != genericFallbackTerms {
		t.Fatalf("неизвестная отрасль должна давать общие условия")
	}
}

func TestDraftService_ProviderErrorFallsBack(t *testing.T) {
	provider := &mockTextProvider{configured: true, err: errors.New("upstream timeout")}
	svc := NewDraftService(templates.NewRegistry(), provider)

	draft, err := svc.Generate(context.Background(), validDraftInput())
	if err != nil {
		t.Fatalf("деградация не должна возвращать ошибку: %v", err)
	}

	if provider.calls != 1 {
		t.Fatalf("ожидался ровно один вызов провайдера без ретраев, получили %d", provider.calls)
	}
	if draft.Pricing.Subtotal != 9000 {
		t.Fatalf("ожидался детерминированный фолбэк")
	}
}

func TestDraftService_ProviderGarbageFallsBack(t *testing.T) {
	provider := &mockTextProvider{configured: true, response: "Sure! Here is your proposal in plain prose."}
	svc := NewDraftService(templates.NewRegistry(), provider)

	draft, err := svc.Generate(context.Background(), validDraftInput())
	if err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}
	if draft.Pricing.Subtotal != 9000 {
		t.Fatalf("не-JSON ответ провайдера должен давать фолбэк")
	}
}

func TestDraftService_ProviderDraftNormalized(t *testing.T) {
	// Провайдер прислал неверный subtotal/total: пересчитываем сами.
	provider := &mockTextProvider{
		configured: true,
		response: `{
			"title": "Custom Kitchen Remodel",
			"scope": "Full remodel of the kitchen.",
			"deliverables": [
				{"item": "Demo", "description": "Demolition", "price": 1000},
				{"item": "Cabinets", "description": "Install cabinets", "price": 4000}
			],
			"timeline": [
				{"milestone": "Start", "duration": "Week 1", "description": "Kickoff"}
			],
			"pricing": {"subtotal": 999, "tax": 500, "total": 1, "notes": "Half upfront"},
			"terms": "Net 30."
		}`,
	}
	svc := NewDraftService(templates.NewRegistry(), provider)

	draft, err := svc.Generate(context.Background(), validDraftInput())
	if err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}

	if draft.Title != "Custom Kitchen Remodel" {
		t.Fatalf("ожидался черновик провайдера, получили %q", draft.Title)
	}
	if draft.Pricing.Subtotal != 5000 {
		t.Fatalf("subtotal должен быть пересчитан по позициям, получили %v", draft.Pricing.Subtotal)
	}
	if draft.Pricing.Total != 5500 {
		t.Fatalf("total должен быть subtotal+tax, получили %v", draft.Pricing.Total)
	}
}

func TestDraftService_PromptIncludesTemplateContext(t *testing.T) {
	provider := &mockTextProvider{configured: true, err: errors.New("stop after prompt")}
	svc := NewDraftService(templates.NewRegistry(), provider)

	if _, err := svc.Generate(context.Background(), validDraftInput()); err != nil {
		t.Fatalf("generate вернул ошибку: %v", err)
	}

	if !strings.Contains(provider.lastPrompt, "Client Name: Sarah") {
		t.Fatalf("промпт должен содержать имя клиента")
	}
	if !strings.Contains(provider.lastPrompt, "Return ONLY valid JSON") {
		t.Fatalf("промпт должен требовать чистый JSON")
	}
	if !strings.Contains(provider.lastPrompt, "Job Description:") {
		t.Fatalf("промпт должен содержать описание работ")
	}
}

func TestDraftService_ValidatesInput(t *testing.T) {
	svc := NewDraftService(templates.NewRegistry(), nil)

	cases := []struct {
		name string
		in   DraftInput
	}{
		{"пустое описание", DraftInput{Industry: "cleaning", ClientName: "Bob"}},
		{"слишком короткое описание", DraftInput{JobDescription: "short", Industry: "cleaning", ClientName: "Bob"}},
		{"пустая отрасль", DraftInput{JobDescription: "Deep clean of a large office", ClientName: "Bob"}},
		{"пустое имя клиента", DraftInput{JobDescription: "Deep clean of a large office", Industry: "cleaning"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tc.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("ожидалась ErrInvalidInput, получили %v", err)
			}
		})
	}
}
