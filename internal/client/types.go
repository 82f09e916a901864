// Package client talks to the decomp agent's web backend: a WebSocket
// session for the live event stream and an HTTP client for the
// point-in-time REST surface. Types mirror the backend wire protocol
// without importing backend code.
package client

// FunctionSummary is one row of the paginated function list.
type FunctionSummary struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	Size            int     `json:"size"`
	SourceFile      string  `json:"source_file"`
	Library         string  `json:"library"`
	InitialMatchPct float64 `json:"initial_match_pct"`
	CurrentMatchPct float64 `json:"current_match_pct"`
	Status          string  `json:"status"`
	Attempts        int     `json:"attempts"`
	MatchedAt       string  `json:"matched_at,omitempty"`
	UpdatedAt       string  `json:"updated_at"`
}

// FunctionList is the response of GET /api/functions.
type FunctionList struct {
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	PerPage   int               `json:"per_page"`
	Functions []FunctionSummary `json:"functions"`
}

// FunctionDetail is the response of GET /api/functions/{id}.
type FunctionDetail struct {
	FunctionSummary
	CreatedAt string `json:"created_at"`
}

// ListFunctionsQuery filters and sorts the function list. Zero values
// mean "unset" and are omitted from the request.
type ListFunctionsQuery struct {
	Library  string
	Status   string
	MinMatch float64
	MaxMatch float64
	SortBy   string // size, match_pct, name, library
	Page     int
	PerPage  int
}

// Attempt is one entry of a function's attempt history.
type Attempt struct {
	ID                int            `json:"id"`
	StartedAt         string         `json:"started_at"`
	CompletedAt       string         `json:"completed_at,omitempty"`
	Matched           bool           `json:"matched"`
	BestMatchPct      float64        `json:"best_match_pct"`
	Iterations        int            `json:"iterations"`
	TotalTokens       int            `json:"total_tokens"`
	InputTokens       int            `json:"input_tokens"`
	OutputTokens      int            `json:"output_tokens"`
	CachedTokens      int            `json:"cached_tokens"`
	ElapsedSeconds    float64        `json:"elapsed_seconds"`
	TerminationReason string         `json:"termination_reason"`
	FinalCode         string         `json:"final_code,omitempty"`
	Error             string         `json:"error,omitempty"`
	Model             string         `json:"model"`
	ReasoningEffort   string         `json:"reasoning_effort,omitempty"`
	ToolCounts        map[string]int `json:"tool_counts"`
	Cost              float64        `json:"cost"`
}

// AttemptHistory is the response of GET /api/functions/{id}/attempts.
type AttemptHistory struct {
	FunctionName string    `json:"function_name"`
	Attempts     []Attempt `json:"attempts"`
}

// TreemapNode is one node of GET /api/functions/treemap. Leaves carry
// size and match data; interior nodes only have children.
type TreemapNode struct {
	Name     string        `json:"name"`
	ID       int           `json:"id,omitempty"`
	Size     int           `json:"size,omitempty"`
	MatchPct float64       `json:"match_pct,omitempty"`
	Status   string        `json:"status,omitempty"`
	Children []TreemapNode `json:"children,omitempty"`
}

// HistogramBucket is one bar of the overview match distribution.
type HistogramBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Overview is the response of GET /api/stats/overview.
type Overview struct {
	TotalFunctions int               `json:"total_functions"`
	StatusCounts   map[string]int    `json:"status_counts"`
	TotalTokens    int               `json:"total_tokens"`
	TotalCost      float64           `json:"total_cost"`
	TotalAttempts  int               `json:"total_attempts"`
	TotalBytes     int               `json:"total_bytes"`
	MatchedBytes   int               `json:"matched_bytes"`
	MatchHistogram []HistogramBucket `json:"match_histogram"`
}

// LibraryStats is one row of GET /api/stats/by-library.
type LibraryStats struct {
	Library     string  `json:"library"`
	Count       int     `json:"count"`
	Matched     int     `json:"matched"`
	AvgMatchPct float64 `json:"avg_match_pct"`
	TotalSize   int     `json:"total_size"`
	Cost        float64 `json:"cost"`
	Tokens      int     `json:"tokens"`
}

// BatchStartRequest is the body of POST /api/batch/start.
type BatchStartRequest struct {
	Limit     int     `json:"limit,omitempty"`
	MaxSize   int     `json:"max_size,omitempty"`
	Budget    float64 `json:"budget,omitempty"`
	Workers   int     `json:"workers,omitempty"`
	Strategy  string  `json:"strategy,omitempty"` // smallest_first, best_match_first
	Library   string  `json:"library,omitempty"`
	MinMatch  float64 `json:"min_match,omitempty"`
	MaxMatch  float64 `json:"max_match,omitempty"`
	MaxTokens int     `json:"max_tokens,omitempty"`
}

// RecentAttempt summarizes one recently finished attempt in a batch.
type RecentAttempt struct {
	FunctionName      string  `json:"function_name"`
	Matched           bool    `json:"matched"`
	BestMatchPct      float64 `json:"best_match_pct"`
	TerminationReason string  `json:"termination_reason"`
	Cost              float64 `json:"cost"`
	Elapsed           float64 `json:"elapsed"`
}

// BatchStatus is the response of GET /api/batch/current.
type BatchStatus struct {
	Running          bool            `json:"running"`
	Cancelled        bool            `json:"cancelled"`
	Elapsed          float64         `json:"elapsed"`
	Attempted        int             `json:"attempted"`
	Matched          int             `json:"matched"`
	Failed           int             `json:"failed"`
	TotalCost        float64         `json:"total_cost"`
	TotalTokens      int             `json:"total_tokens"`
	CurrentFunctions []string        `json:"current_functions"`
	RecentCompleted  []RecentAttempt `json:"recent_completed"`
}

// AgentConfig is the agent section of GET /api/config.
type AgentConfig struct {
	Model               string `json:"model"`
	MaxIterations       int    `json:"max_iterations"`
	MaxTokensPerAttempt int    `json:"max_tokens_per_attempt"`
}

// OrchestrationConfig is the orchestration section of GET /api/config.
type OrchestrationConfig struct {
	DBPath          string  `json:"db_path"`
	BatchSize       int     `json:"batch_size"`
	DefaultWorkers  int     `json:"default_workers"`
	DefaultBudget   float64 `json:"default_budget"`
	MaxFunctionSize int     `json:"max_function_size"`
}

// BackendConfig is the response of GET /api/config.
type BackendConfig struct {
	Agent         AgentConfig         `json:"agent"`
	Orchestration OrchestrationConfig `json:"orchestration"`
}
