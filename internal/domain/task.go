package domain

// TaskRecord describes a task and the plan suggested for it.
type TaskRecord struct {
	Title                    string   `json:"title" yaml:"title"`
	Description              string   `json:"description" yaml:"description"`
	EstimatedTime            string   `json:"estimated_time" yaml:"estimated_time"`
	Steps                    []string `json:"steps" yaml:"steps"`
	SuggestedTests           []string `json:"suggested_tests" yaml:"suggested_tests"`
	AcceptanceCriteria       []string `json:"acceptance_criteria" yaml:"acceptance_criteria"`
	ImplementationSuggestion string   `json:"implementation_suggestion" yaml:"implementation_suggestion"`
}

// StepCount returns the number of implementation steps.
func (t *TaskRecord) StepCount() int {
	return len(t.Steps)
}
