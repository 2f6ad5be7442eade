package models

// ValidationError represents a single validation error
type ValidationError struct {
	Line    int         `json:"line,omitempty"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ImportResult summarises a seed import run
type ImportResult struct {
	Resource        string            `json:"resource"`
	TotalRecords    int               `json:"total_records"`
	SuccessfulCount int               `json:"successful"`
	FailedCount     int               `json:"failed"`
	DurationMs      int64             `json:"duration_ms"`
	Errors          []ValidationError `json:"errors,omitempty"`
}
