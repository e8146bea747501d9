package models

import "time"

// ForecastBand is a forward-looking series with confidence bounds.
type ForecastBand struct {
	Dates    []string  `json:"dates"`
	Baseline []float64 `json:"baseline"`
	Forecast []float64 `json:"forecast"`
	Lower    []float64 `json:"lower"`
	Upper    []float64 `json:"upper"`
}

// Insight is a textual recommendation card shown alongside the metrics.
type Insight struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// MarketData is a single market-intelligence item from GET /market-data.
type MarketData struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"`
	Type       string    `json:"type"` // price, trend, risk, launch, social
	Change     string    `json:"change"`
	Impact     string    `json:"impact"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence,omitempty"`
}

// NewsItem is a news-feed entry from GET /news.
type NewsItem struct {
	ID        string    `json:"id"`
	Headline  string    `json:"headline"`
	Source    string    `json:"source"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Sentiment string    `json:"sentiment,omitempty"` // positive, neutral, negative
}

// DashboardData is the aggregate produced by one refresh cycle. It is
// replaced wholesale on every successful load; consumers never see a
// partially updated aggregate.
type DashboardData struct {
	Metrics     []Metric      `json:"metrics"`
	Alerts      []Alert       `json:"alerts"`
	MarketData  []MarketData  `json:"marketData"`
	Forecast    *ForecastBand `json:"forecast,omitempty"`
	Efficiency  float64       `json:"efficiency,omitempty"`
	Insights    []Insight     `json:"insights,omitempty"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

// ActionCard is a recommended action returned by the AI endpoint.
type ActionCard struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Cost     float64 `json:"cost"`
	ROI      float64 `json:"roi"`
	CTA      string  `json:"cta"`
}

// AskAIRequest is the body of POST /ask-ai.
type AskAIRequest struct {
	Query     string `json:"query"`
	CompanyID int    `json:"company_id,omitempty"`
}

// AskAIResponse is the result of POST /ask-ai.
type AskAIResponse struct {
	ImpactSummary string       `json:"impact_summary"`
	Forecast      ForecastBand `json:"forecast"`
	Actions       []ActionCard `json:"actions"`
}

// Token is the credential returned by the auth endpoints.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// CompanyCreate is the onboarding payload for POST /company.
type CompanyCreate struct {
	BizType      string   `json:"biz_type"`
	DataSources  []string `json:"data_sources,omitempty"`
	SnowflakeDSN string   `json:"snowflake_dsn,omitempty"`
	Description  string   `json:"description"`
}

// User is the profile persisted in the session store.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	Company  string `json:"company,omitempty"`
	Initials string `json:"initials,omitempty"`
}
