package model

// ValidationResult is the stateless outcome of checking one field.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
	Score       int      `json:"score"`
}

// NewValidationResult returns a passing result with a full score.
func NewValidationResult() ValidationResult {
	return ValidationResult{IsValid: true, Errors: []string{}, Warnings: []string{}, Suggestions: []string{}, Score: 100}
}

// Fail records a blocking error.
func (r *ValidationResult) Fail(msg string) {
	r.Errors = append(r.Errors, msg)
	r.rescore()
}

// Warn records a non-blocking remark.
func (r *ValidationResult) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	r.rescore()
}

// Suggest records advisory text; it never changes validity.
func (r *ValidationResult) Suggest(msg ...string) {
	r.Suggestions = append(r.Suggestions, msg...)
}

// Merge folds other into r.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Suggestions = append(r.Suggestions, other.Suggestions...)
	r.rescore()
}

// FirstError returns the first blocking error or "".
func (r ValidationResult) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

func (r *ValidationResult) rescore() {
	r.IsValid = len(r.Errors) == 0
	score := 100 - 40*len(r.Errors) - 10*len(r.Warnings)
	if score < 0 {
		score = 0
	}
	r.Score = score
}
