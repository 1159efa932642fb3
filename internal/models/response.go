package models

// HealthResponse represents health check response. Days is the number
// of cataloged days, or -1 when the catalog could not be read.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Days      int    `json:"days"`
}

// DayResponse describes one computed day
type DayResponse struct {
	Day         int    `json:"day"`
	Date        string `json:"date"`
	Series      int    `json:"series"`
	Cells       int    `json:"cells"`
	ShortWindow int    `json:"short_window"`
	LongWindow  int    `json:"long_window"`
	Format      string `json:"format"`
	Compression string `json:"compression"`
	RunID       string `json:"run_id"`
	ComputedAt  string `json:"computed_at"`
	DurationMs  int64  `json:"duration_ms"`
}

// DayListResponse represents list days response
type DayListResponse struct {
	Days  []DayResponse `json:"days"`
	Count int           `json:"count"`
}

// Coefficient is one correlation coefficient. Value is nil when the
// coefficient is undefined.
type Coefficient struct {
	Value       *float64 `json:"value"`
	Significant bool     `json:"significant"`
}

// CellResponse is the correlation of two series on a day
type CellResponse struct {
	Day     int         `json:"day"`
	Date    string      `json:"date"`
	Row     int         `json:"row"`
	Col     int         `json:"col"`
	RowName string      `json:"row_symbol,omitempty"`
	ColName string      `json:"col_symbol,omitempty"`
	Short   Coefficient `json:"short"`
	Long    Coefficient `json:"long"`
}

// SignificantResponse lists significant cells of a day, strongest first
type SignificantResponse struct {
	Day    int            `json:"day"`
	Date   string         `json:"date"`
	Window string         `json:"window"`
	Total  int            `json:"total"`
	Cells  []CellResponse `json:"cells"`
}

// TransitiveResponse tests whether a~b and b~c imply a~c
type TransitiveResponse struct {
	Day             int          `json:"day"`
	A               int          `json:"a"`
	B               int          `json:"b"`
	C               int          `json:"c"`
	AB              CellResponse `json:"ab"`
	BC              CellResponse `json:"bc"`
	AC              CellResponse `json:"ac"`
	ShortTransitive bool         `json:"short_transitive"`
	LongTransitive  bool         `json:"long_transitive"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
