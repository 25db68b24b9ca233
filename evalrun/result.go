package evalrun

// Result is the outcome of one evaluation case. Exactly one Result is
// recorded per attempted case, failure or success; a case is never
// silently dropped.
type Result struct {
	CaseID        string            `json:"case_id"`
	Question      string            `json:"question"`
	TrueAnswer    string            `json:"true_answer"`
	Answer        string            `json:"answer"`
	Metadata      map[string]string `json:"metadata"`
	Success       bool              `json:"success"`
	Error         string            `json:"error,omitempty"`
	OriginalIndex int               `json:"original_index"`
	RunID         string            `json:"run_id"`
}
