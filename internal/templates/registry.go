package templates

// IndustryTemplate описывает отраслевой шаблон предложения: метаданные
// для отображения, дефолтные условия и контекст для генерации.
type IndustryTemplate struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Icon               string   `json:"icon"`
	Description        string   `json:"description"`
	DefaultTerms       string   `json:"default_terms"`
	SampleDeliverables []string `json:"sample_deliverables"`
	PromptContext      string   `json:"prompt_context"`
}

// Registry хранит фиксированный упорядоченный список отраслевых шаблонов.
type Registry struct {
	entries []IndustryTemplate
	byID    map[string]int
}

// NewRegistry создаёт реестр со встроенным набором шаблонов.
func NewRegistry() *Registry {
	entries := builtinTemplates()
	byID := make(map[string]int, len(entries))
	for i, t := range entries {
		byID[t.ID] = i
	}
	return &Registry{entries: entries, byID: byID}
}

// Lookup возвращает шаблон по идентификатору отрасли.
// Отсутствие шаблона — не ошибка: вызывающий обязан работать с нейтральными дефолтами.
func (r *Registry) Lookup(industryID string) (*IndustryTemplate, bool) {
	i, ok := r.byID[industryID]
	if !ok {
		return nil, false
	}
	return &r.entries[i], true
}

// List возвращает все шаблоны в исходном порядке.
func (r *Registry) List() []IndustryTemplate {
	out := make([]IndustryTemplate, len(r.entries))
	copy(out, r.entries)
	return out
}

func builtinTemplates() []IndustryTemplate {
	return []IndustryTemplate{
		{
			ID:          "general-contractor",
			Name:        "General Contractor",
			Icon:        "🏗️",
			Description: "Construction, renovation, and building projects",
			DefaultTerms: "50% deposit required before work begins. Balance due upon completion. " +
				"All work warranted for 1 year. Permits and inspections included unless otherwise noted. " +
				"Change orders must be approved in writing and may affect timeline and cost.",
			SampleDeliverables: []string{
				"Site preparation and cleanup",
				"Material procurement",
				"Labor and installation",
				"Final inspection and walkthrough",
			},
			PromptContext: "You are generating a proposal for a general contractor. Include specific " +
				"construction terminology, material specifications where relevant, warranty information, " +
				"permit considerations, and realistic timelines for construction work.",
		},
		{
			ID:          "landscaping",
			Name:        "Landscaping",
			Icon:        "🌿",
			Description: "Lawn care, garden design, and outdoor projects",
			DefaultTerms: "50% deposit required to schedule work. Balance due upon completion. " +
				"Plant material warranted for 90 days with proper care. Seasonal maintenance available " +
				"as add-on. Weather delays will be communicated promptly.",
			SampleDeliverables: []string{
				"Design consultation",
				"Plant and material selection",
				"Installation and planting",
				"Initial maintenance setup",
			},
			PromptContext: "You are generating a proposal for a landscaping company. Include plant species " +
				"recommendations, seasonal considerations, maintenance plans, and outdoor design elements. " +
				"Consider drainage, irrigation, and soil conditions.",
		},
		{
			ID:          "cleaning",
			Name:        "Cleaning Services",
			Icon:        "✨",
			Description: "Residential and commercial cleaning",
			DefaultTerms: "Payment due upon completion of service. Recurring services billed monthly. " +
				"24-hour cancellation notice required. All cleaning supplies and equipment provided. " +
				"Satisfaction guaranteed or we will re-clean at no charge.",
			SampleDeliverables: []string{
				"Deep cleaning of all rooms",
				"Kitchen and bathroom sanitization",
				"Floor cleaning and polishing",
				"Window cleaning",
			},
			PromptContext: "You are generating a proposal for a cleaning service. Include specific areas " +
				"to be cleaned, frequency of service, products used, and square footage considerations. " +
				"Address any special requirements like eco-friendly products or allergy considerations.",
		},
		{
			ID:          "it-services",
			Name:        "IT Services",
			Icon:        "💻",
			Description: "Technology consulting, development, and support",
			DefaultTerms: "30% deposit to begin work. Milestone payments as defined in timeline. " +
				"Final payment upon delivery and acceptance. Source code ownership transfers upon full " +
				"payment. 30-day bug fix warranty included. Support available at hourly rate after " +
				"warranty period.",
			SampleDeliverables: []string{
				"Requirements analysis and planning",
				"Development and implementation",
				"Testing and quality assurance",
				"Deployment and training",
				"Documentation",
			},
			PromptContext: "You are generating a proposal for an IT services company. Include technical " +
				"specifications, technology stack recommendations, development methodology (agile/waterfall), " +
				"testing procedures, deployment strategy, and ongoing support options.",
		},
		{
			ID:          "marketing-agency",
			Name:        "Marketing Agency",
			Icon:        "📈",
			Description: "Digital marketing, branding, and advertising",
			DefaultTerms: "Monthly retainer billed at the beginning of each month. Minimum 3-month " +
				"commitment. Ad spend is billed separately. All creative assets and copy are owned by " +
				"the client. Monthly performance reports included. 30-day notice required to cancel.",
			SampleDeliverables: []string{
				"Strategy development",
				"Content creation",
				"Campaign setup and management",
				"Analytics and reporting",
				"Monthly optimization",
			},
			PromptContext: "You are generating a proposal for a marketing agency. Include specific " +
				"marketing channels (SEO, PPC, social media, email), KPIs and metrics to track, content " +
				"deliverables, campaign strategies, and expected ROI or growth targets.",
		},
		{
			ID:          "consulting",
			Name:        "Consulting",
			Icon:        "💼",
			Description: "Business strategy, management, and advisory",
			DefaultTerms: "Engagement fees billed monthly. Travel expenses billed at cost. " +
				"Confidentiality maintained per NDA. Deliverables remain client property. 2-week notice " +
				"required for scope changes. Recommendations are advisory; implementation is client's " +
				"responsibility.",
			SampleDeliverables: []string{
				"Initial assessment and discovery",
				"Research and analysis",
				"Strategy recommendations",
				"Implementation roadmap",
				"Follow-up review",
			},
			PromptContext: "You are generating a proposal for a consulting engagement. Include assessment " +
				"methodology, key stakeholder interviews, analysis framework, deliverable documents " +
				"(reports, presentations), and measurable outcomes or success criteria.",
		},
	}
}
