package fiber

// MetricQuery is the GET /kpi query string. A parameter over its max length
// is dropped, not rejected.
// @Description KPI query parameters
type MetricQuery struct {
	Metric   string `query:"metric" validate:"max=64"`
	Platform string `query:"platform" validate:"max=64"`
	Brand    string `query:"brand" validate:"max=128"`
	Category string `query:"category" validate:"max=128"`
	Location string `query:"location" validate:"max=128"`
	From     string `query:"from" validate:"max=32"`
	To       string `query:"to" validate:"max=32"`
}

type PlatformValueResponse struct {
	Value string  `json:"value" example:"₹10.00 L"`
	Delta string  `json:"delta" example:"+12.5%"`
	Raw   float64 `json:"raw" example:"1000000"`
}

type RecordResponse struct {
	Name      string                           `json:"name"`
	Category  string                           `json:"category"`
	Platforms map[string]PlatformValueResponse `json:"platforms"`
}

type MetricResponse struct {
	Metric    string           `json:"metric" example:"offtake"`
	Label     string           `json:"label" example:"Offtake"`
	Display   string           `json:"display" example:"currency"`
	Defaulted bool             `json:"defaulted"`
	Records   []RecordResponse `json:"records"`
}

type MetricDefinitionResponse struct {
	Key      string `json:"key" example:"availability"`
	Label    string `json:"label" example:"Availability"`
	Strategy string `json:"strategy" example:"ratio"`
	Display  string `json:"display" example:"percentage"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_query"`
	Message string `json:"message" example:"schema: invalid path"`
}
