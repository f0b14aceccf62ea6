package model

// ExtractedFields is the flat, ~60-field schema produced by phase 4. The
// stable core fields are typed; anything the extraction prompt returns
// that isn't one of these lands in Extra so the schema can evolve without
// losing data (see SPEC_FULL.md §3 / §9 on the dynamic-dict re-architecture).
type ExtractedFields struct {
	CompanyName        string `json:"company_name"`
	Name               string `json:"name"`
	Website             string `json:"website"`
	CompanyDescription  string `json:"company_description"`
	ValueProposition     string `json:"value_proposition"`
	Industry             string `json:"industry"`
	Location             string `json:"location"`
	FoundingYear          *int   `json:"founding_year"`
	CompanySize           string `json:"company_size"`
	EmployeeCountRange    string `json:"employee_count_range"`

	BusinessModelType        string   `json:"business_model_type"`
	BusinessModel            string   `json:"business_model"`
	SaaSClassification       string   `json:"saas_classification"`
	IsSaaS                   bool     `json:"is_saas"`
	ClassificationConfidence float64  `json:"classification_confidence"`
	ClassificationJustification string `json:"classification_justification"`

	ProductsServicesOffered []string `json:"products_services_offered"`
	KeyServices             []string `json:"key_services"`
	TargetMarket            string   `json:"target_market"`
	PainPoints              []string `json:"pain_points"`
	CompetitiveAdvantages   []string `json:"competitive_advantages"`
	TechStack               []string `json:"tech_stack"`

	CompanyStage        string  `json:"company_stage"`
	FundingStatus       string  `json:"funding_status"`
	FundingStageDetailed string `json:"funding_stage_detailed"`
	StageConfidence     float64 `json:"stage_confidence"`
	TechSophistication  string  `json:"tech_sophistication"`
	TechConfidence      float64 `json:"tech_confidence"`
	IndustryConfidence  float64 `json:"industry_confidence"`
	GeographicScope     string  `json:"geographic_scope"`
	SalesComplexity     string  `json:"sales_complexity"`

	KeyDecisionMakers map[string]any `json:"key_decision_makers"`
	LeadershipTeam    []string       `json:"leadership_team"`
	DecisionMakerType string         `json:"decision_maker_type"`

	HasJobListings     bool     `json:"has_job_listings"`
	JobListingsCount    *int     `json:"job_listings_count"`
	JobListings          string   `json:"job_listings"`
	JobListingsDetails    []string `json:"job_listings_details"`
	RecentNewsEvents      []string `json:"recent_news_events"`
	RecentNews            []string `json:"recent_news"`

	HasChatWidget bool           `json:"has_chat_widget"`
	HasForms      bool           `json:"has_forms"`
	SocialMedia   map[string]any `json:"social_media"`
	ContactInfo   map[string]any `json:"contact_info"`

	CompanyCulture string   `json:"company_culture"`
	Awards         []string `json:"awards"`
	Certifications []string `json:"certifications"`
	Partnerships   []string `json:"partnerships"`

	AISummary                      string  `json:"ai_summary"`
	FieldExtractionTokens          int64   `json:"field_extraction_tokens"`
	TotalTokens                    int64   `json:"total_tokens"`
	LLMModelUsed                   string  `json:"llm_model_used"`
	TotalCostUSD                   float64 `json:"total_cost_usd"`
	FieldExtractionDurationSeconds float64 `json:"field_extraction_duration_seconds"`
	FieldExtractionTimestamp       string  `json:"field_extraction_timestamp"`

	// Extra holds any field the extraction LLM returned that isn't named
	// above, keeping the schema forward-compatible.
	Extra map[string]any `json:"-"`
}

// FieldConfidenceWeights is the fixed per-field weight table used to
// compute ExtractionResult.OverallConfidence. Weights sum to 1.0.
var FieldConfidenceWeights = map[string]float64{
	"company_description":      0.15,
	"value_proposition":        0.10,
	"industry":                 0.10,
	"business_model":           0.08,
	"target_market":            0.08,
	"products_services_offered": 0.08,
	"key_decision_makers":      0.07,
	"company_stage":            0.06,
	"tech_stack":               0.06,
	"location":                 0.05,
	"competitive_advantages":   0.05,
	"founding_year":            0.04,
	"company_size":             0.04,
	"social_media":             0.02,
	"recent_news_events":       0.02,
}

// SourceAttribution maps a populated field name to the best-effort list of
// source URLs that likely contributed it.
type SourceAttribution map[string][]string

// ExtractionResult is the output of phase 4.
type ExtractionResult struct {
	Success             bool
	ExtractedFields     ExtractedFields
	FieldConfidenceScores map[string]float64
	OverallConfidence   float64
	SourceAttribution   SourceAttribution
	TokensUsed          TokenUsage
	CostUSD             float64
	ModelUsed           string
	ElapsedSeconds      float64
	Error               string
}
