package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/proposalpilot/backend/internal/ai"
	"github.com/proposalpilot/backend/internal/logger"
	"github.com/proposalpilot/backend/internal/models"
	"github.com/proposalpilot/backend/internal/templates"
	"github.com/proposalpilot/backend/internal/validation"
)

// ErrInvalidInput возвращается, когда входные данные не проходят валидацию
// до обращения к внешнему провайдеру.
var ErrInvalidInput = errors.New("invalid input")

// genericFallbackTerms используется, когда отраслевой шаблон не найден.
const genericFallbackTerms = "50% deposit required to begin work. Balance due upon completion. " +
	"All deliverables become property of the client upon full payment. " +
	"Changes to scope may require a revised estimate."

// fallbackPricingNotes — фиксированные условия оплаты детерминированного черновика.
const fallbackPricingNotes = "Payment terms: 50% due upon acceptance, 50% due upon project completion. " +
	"Prices valid for 30 days."

// TextProvider описывает внешнего провайдера текстовой генерации.
type TextProvider interface {
	Configured() bool
	ChatCompletion(ctx context.Context, messages []ai.Message, maxTokens int, temperature float64) (string, error)
}

// DraftInput содержит входные данные генерации черновика.
type DraftInput struct {
	JobDescription string
	Industry       string
	ClientName     string
	ClientCompany  string
	BusinessName   string
}

// DraftService собирает черновик предложения: через провайдера текстовой
// генерации или детерминированным фолбэком. Generate никогда не возвращает
// ошибку деградации — только ошибку валидации входа.
type DraftService struct {
	registry *templates.Registry
	provider TextProvider
}

// NewDraftService создаёт генератор черновиков.
func NewDraftService(registry *templates.Registry, provider TextProvider) *DraftService {
	return &DraftService{registry: registry, provider: provider}
}

// draftResult — внутренний итог генерации. Пустой degraded означает успешный
// ответ провайдера; иначе в нём причина перехода на фолбэк (для операторов).
type draftResult struct {
	draft    *models.DraftProposal
	degraded string
}

// Generate возвращает готовый к использованию черновик для любого валидного входа.
func (s *DraftService) Generate(ctx context.Context, in DraftInput) (*models.DraftProposal, error) {
	if err := validateDraftInput(in); err != nil {
		return nil, err
	}

	res := s.run(ctx, in)
	if res.degraded != "" && logger.Log != nil {
		logger.Log.WithField("reason", res.degraded).Warn("draft service: генерация деградировала до фолбэка")
	}

	return res.draft, nil
}

// validateDraftInput отклоняет неполный вход до любого внешнего вызова.
func validateDraftInput(in DraftInput) error {
	if err := validation.ValidateRequired("job description", in.JobDescription); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateLength("job description", in.JobDescription, validation.MinJobDescriptionLength, validation.MaxJobDescriptionLength); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateRequired("industry", in.Industry); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateRequired("client name", in.ClientName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateLength("client name", in.ClientName, 1, validation.MaxClientNameLength); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// run выполняет один вызов провайдера без ретраев либо сразу строит фолбэк.
func (s *DraftService) run(ctx context.Context, in DraftInput) draftResult {
	tmpl, _ := s.registry.Lookup(in.Industry)

	// Отсутствие ключа — штатная конфигурация, а не ошибка.
	if s.provider == nil || !s.provider.Configured() {
		return draftResult{draft: s.fallbackDraft(in, tmpl), degraded: "provider credential not configured"}
	}

	draft, err := s.fromProvider(ctx, in, tmpl)
	if err != nil {
		return draftResult{draft: s.fallbackDraft(in, tmpl), degraded: err.Error()}
	}

	return draftResult{draft: draft}
}

// fromProvider запрашивает черновик у провайдера и валидирует ответ.
func (s *DraftService) fromProvider(ctx context.Context, in DraftInput, tmpl *templates.IndustryTemplate) (*models.DraftProposal, error) {
	prompt := buildPrompt(in, tmpl)

	messages := []ai.Message{
		{
			Role: "system",
			Content: "You are an expert business proposal writer. Generate detailed, professional proposals. " +
				"Always respond with valid JSON only.",
		},
		{Role: "user", Content: prompt},
	}

	content, err := s.provider.ChatCompletion(ctx, messages, 3000, 0.7)
	if err != nil {
		return nil, fmt.Errorf("provider call failed: %w", err)
	}

	raw, ok := ai.ExtractJSON(content)
	if !ok {
		return nil, fmt.Errorf("provider returned non-JSON content")
	}

	var draft models.DraftProposal
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("provider JSON does not match draft schema: %w", err)
	}

	if draft.Title == "" || len(draft.Deliverables) == 0 {
		return nil, fmt.Errorf("provider draft is missing required fields")
	}

	// Инвариант выхода: subtotal равен сумме позиций, total = subtotal + tax.
	// Модель просили соблюсти это, но пересчитываем сами.
	draft.Pricing.Subtotal = draft.Deliverables.Sum()
	draft.Pricing.Total = draft.Pricing.Subtotal + draft.Pricing.Tax

	return &draft, nil
}

// buildPrompt собирает единый промпт с контекстом шаблона и требуемой JSON схемой.
func buildPrompt(in DraftInput, tmpl *templates.IndustryTemplate) string {
	templateContext := ""
	defaultTerms := ""
	if tmpl != nil {
		templateContext = tmpl.PromptContext
		defaultTerms = tmpl.DefaultTerms
	}

	var b strings.Builder
	b.WriteString(templateContext)
	b.WriteString("\n\nGenerate a detailed, professional business proposal based on the following information:\n\n")
	fmt.Fprintf(&b, "Client Name: %s\n", in.ClientName)
	if in.ClientCompany != "" {
		fmt.Fprintf(&b, "Client Company: %s\n", in.ClientCompany)
	}
	if in.BusinessName != "" {
		fmt.Fprintf(&b, "Our Business: %s\n", in.BusinessName)
	}
	fmt.Fprintf(&b, "Industry: %s\n", in.Industry)
	fmt.Fprintf(&b, "\nJob Description:\n%s\n", in.JobDescription)
	b.WriteString(`
Generate a complete proposal with the following JSON structure. Be specific, detailed, and professional. Pricing should be realistic for the industry. Each deliverable should have an individual price that adds up to the subtotal.

{
  "title": "A professional proposal title",
  "scope": "Detailed project scope and description (2-3 paragraphs)",
  "deliverables": [
    {
      "item": "Deliverable name",
      "description": "Detailed description of this deliverable",
      "price": 0
    }
  ],
  "timeline": [
    {
      "milestone": "Milestone name",
      "duration": "e.g., Week 1-2",
      "description": "What happens in this phase"
    }
  ],
  "pricing": {
    "subtotal": 0,
    "tax": 0,
    "total": 0,
    "notes": "Any pricing notes or payment terms"
  },
  "terms": "` + defaultTerms + `"
}

Return ONLY valid JSON, no markdown or extra text.`)

	return b.String()
}

// fallbackDraft строит детерминированный черновик только из входных данных
// и дефолтных условий шаблона. Структура и цены фиксированы.
func (s *DraftService) fallbackDraft(in DraftInput, tmpl *templates.IndustryTemplate) *models.DraftProposal {
	businessName := in.BusinessName
	if businessName == "" {
		businessName = "our company"
	}

	clientRef := in.ClientCompany
	if clientRef == "" {
		clientRef = in.ClientName
	}

	terms := genericFallbackTerms
	if tmpl != nil {
		terms = tmpl.DefaultTerms
	}

	scope := fmt.Sprintf(
		"We are pleased to present this proposal for %s. Based on our discussion regarding %q, "+
			"we have prepared a comprehensive plan to deliver exceptional results.\n\n"+
			"Our team at %s brings extensive experience in this area. We will apply industry best practices "+
			"and proven methodologies to ensure your project is completed on time, within budget, and to the "+
			"highest standards of quality.\n\n"+
			"This proposal outlines the full scope of work, timeline, deliverables, and investment required "+
			"to bring your vision to life.",
		clientRef, truncate(in.JobDescription, 100), businessName,
	)

	return &models.DraftProposal{
		Title: fmt.Sprintf("%s Proposal for %s", industryLabel(in.Industry), in.ClientName),
		Scope: scope,
		Deliverables: models.DeliverableList{
			{
				Item: "Discovery & Planning",
				Description: "Initial consultation, requirements gathering, and detailed project planning " +
					"to ensure alignment on goals and expectations.",
				Price: 1500,
			},
			{
				Item: "Core Implementation",
				Description: "Primary execution of the project scope, including all labor, materials, " +
					"and coordination required.",
				Price: 5500,
			},
			{
				Item: "Quality Assurance & Review",
				Description: "Thorough review and testing of all deliverables to ensure they meet our " +
					"quality standards and your requirements.",
				Price: 1200,
			},
			{
				Item: "Final Delivery & Handoff",
				Description: "Complete project delivery with documentation, training if applicable, " +
					"and a thorough walkthrough.",
				Price: 800,
			},
		},
		Timeline: models.MilestoneList{
			{
				Milestone:   "Project Kickoff",
				Duration:    "Week 1",
				Description: "Initial meeting, requirements finalization, and project planning.",
			},
			{
				Milestone:   "Phase 1 - Foundation",
				Duration:    "Weeks 2-3",
				Description: "Core groundwork and initial implementation begins.",
			},
			{
				Milestone:   "Phase 2 - Execution",
				Duration:    "Weeks 4-6",
				Description: "Primary work execution with regular progress updates.",
			},
			{
				Milestone:   "Review & Completion",
				Duration:    "Week 7-8",
				Description: "Final review, adjustments, and project handoff.",
			},
		},
		Pricing: models.Pricing{
			Subtotal: 9000,
			Tax:      0,
			Total:    9000,
			Notes:    fallbackPricingNotes,
		},
		Terms: terms,
	}
}

// industryLabel возвращает короткую метку отрасли для заголовка фолбэка.
func industryLabel(industry string) string {
	switch industry {
	case "general-contractor":
		return "Construction"
	case "landscaping":
		return "Landscaping"
	case "cleaning":
		return "Cleaning"
	case "it-services":
		return "IT"
	case "marketing-agency":
		return "Marketing"
	default:
		return "Consulting"
	}
}

// truncate обрезает строку до max рун с многоточием.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
