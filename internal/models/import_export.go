package models

// ImportValidationError is one row-level failure in a bulk question import.
type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// ImportSummary reports the outcome of a bulk question import.
type ImportSummary struct {
	TotalRows    int                     `json:"total_rows"`
	SuccessCount int                     `json:"success_count"`
	ErrorCount   int                     `json:"error_count"`
	CreatedIDs   []uint                  `json:"created_ids"`
	Errors       []ImportValidationError `json:"errors,omitempty"`
}
