package server

import (
	"math"

	"lifecurve/internal/domain"
	"lifecurve/internal/lifetimes"
	"lifecurve/internal/weibull"
)

type RegisterRequest struct {
	Email    string `json:"email" example:"jo@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type ValidateRequest struct {
	Shape float64 `json:"shape" example:"2.0"`
	Scale float64 `json:"scale" example:"10.0"`
}

type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type GenerateCurveRequest struct {
	Shape     float64 `json:"shape"`
	Scale     float64 `json:"scale"`
	CurveType string  `json:"curve_type,omitempty" example:"cdf"`
	NumPoints int     `json:"num_points,omitempty"`
}

type CurveResponse struct {
	Type string    `json:"type"`
	X    []float64 `json:"x"`
	// Y entries are null where the function is unbounded: the pdf and
	// hazard diverge at x=0 for shape < 1, and JSON cannot carry Inf.
	Y []*float64 `json:"y"`
}

type FitPointsRequest struct {
	// Ages at which 25%, 50% and 75% of the population has failed, in
	// ascending order.
	Ages []float64 `json:"ages" minItems:"3" maxItems:"3"`
}

type FitMLERequest struct {
	Lifetimes []float64 `json:"lifetimes"`
}

type FitResponse struct {
	Shape  float64 `json:"shape"`
	Scale  float64 `json:"scale"`
	Method string  `json:"method"`
}

type FitMLEResponse struct {
	FitResponse
	Sample lifetimes.Summary `json:"sample"`
}

type GuidedRequest struct {
	Pattern     string  `json:"pattern" example:"wearout"`
	Predictable bool    `json:"predictable,omitempty"`
	Defects     bool    `json:"defects,omitempty"`
	LateLife    bool    `json:"late_life,omitempty"`
	AverageLife float64 `json:"average_life"`
}

type SaveCurveRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Shape       float64 `json:"shape"`
	Scale       float64 `json:"scale"`
	Method      string  `json:"method,omitempty"`
}

type SavedCurveResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Shape       float64 `json:"shape"`
	Scale       float64 `json:"scale"`
	Method      string  `json:"method"`
	CreatedAt   string  `json:"created_at"`
}

func curveResponse(c weibull.Curve) CurveResponse {
	ys := make([]*float64, len(c.Y))
	for i := range c.Y {
		if v := c.Y[i]; !math.IsInf(v, 0) && !math.IsNaN(v) {
			ys[i] = &c.Y[i]
		}
	}
	return CurveResponse{Type: string(c.Type), X: c.X, Y: ys}
}

func savedCurveResponse(c domain.Curve) SavedCurveResponse {
	return SavedCurveResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Shape:       c.Shape,
		Scale:       c.Scale,
		Method:      c.Method,
		CreatedAt:   c.CreatedAt,
	}
}

func mapSavedCurves(items []domain.Curve) []SavedCurveResponse {
	out := make([]SavedCurveResponse, 0, len(items))
	for _, c := range items {
		out = append(out, savedCurveResponse(c))
	}
	return out
}
