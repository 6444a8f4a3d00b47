package idea

import (
	"time"

	"github.com/google/uuid"
)

// Submission is the founder-supplied description of a startup idea.
type Submission struct {
	Title         string `json:"title"`
	Problem       string `json:"problem"`
	Solution      string `json:"solution"`
	Audience      string `json:"audience"`
	BusinessModel string `json:"businessModel"`
}

// Score holds the analysis service's numeric verdict.
type Score struct {
	Overall              float64 `json:"overall"`
	MarketPotential      float64 `json:"marketPotential"`
	TechnicalFeasibility float64 `json:"technicalFeasibility"`
}

// SWOT is the strengths/weaknesses/opportunities/threats breakdown.
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// Analysis is the payload returned by the external analysis service. The
// application treats it as opaque beyond the fields it stores.
type Analysis struct {
	Score              Score    `json:"score"`
	SWOT               SWOT     `json:"swotAnalysis"`
	MVPSuggestions     []string `json:"mvpSuggestions"`
	BusinessModelIdeas []string `json:"businessModelIdeas"`
}

// Idea is a stored startup idea with its analysis, scoped to the owning user.
type Idea struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"-"`
	Submission           // embedded founder input
	Analysis   Analysis  `json:"analysis"`
	CreatedAt  time.Time `json:"createdAt"`
}
