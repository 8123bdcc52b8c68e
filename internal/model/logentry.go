package model

// LogEntry is a single parsed emulator log line. FullLine always holds the
// original line and is never modified after creation.
type LogEntry struct {
	Timestamp    string `json:"timestamp,omitempty"`
	Level        string `json:"level,omitempty"`
	Service      string `json:"service,omitempty"`
	Operation    string `json:"operation,omitempty"`
	StatusCode   int    `json:"status_code,omitempty"`
	Message      string `json:"message"`
	FullLine     string `json:"full_line"`
	IsApiCall    bool   `json:"is_api_call"`
	IsError      bool   `json:"is_error"`
	IsWarning    bool   `json:"is_warning"`
	IsIamDenial  bool   `json:"is_iam_denial"`
	IamPrincipal string `json:"iam_principal,omitempty"`
	IamAction    string `json:"iam_action,omitempty"`
	IamResource  string `json:"iam_resource,omitempty"`
}

// LogRetrievalResult is the outcome of one log retrieval call.
type LogRetrievalResult struct {
	Success       bool       `json:"success"`
	Logs          []LogEntry `json:"logs"`
	TotalLines    int        `json:"totalLines"`
	FilteredLines int        `json:"filteredLines,omitempty"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
}

// ApiCallStats aggregates API-call entries from one log set. Calls without a
// status code count toward totals and the per-service/operation breakdowns
// but toward neither SuccessfulCalls nor FailedCalls.
type ApiCallStats struct {
	TotalCalls        int              `json:"totalCalls"`
	SuccessfulCalls   int              `json:"successfulCalls"`
	FailedCalls       int              `json:"failedCalls"`
	CallsByService    map[string]int   `json:"callsByService"`
	CallsByOperation  map[string]int   `json:"callsByOperation"`
	CallsByStatus     map[int]int      `json:"callsByStatus"`
	FailedCallDetails []FailedCallInfo `json:"failedCallDetails"`
}

type FailedCallInfo struct {
	Service    string `json:"service"`
	Operation  string `json:"operation"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}
