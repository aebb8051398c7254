package mind

import "github.com/google/uuid"

// Directive is an externally issued command. It wraps an ordinary Task
// so external callers and internal behavior share one contract; the only
// additions are a stable ID and provenance for the UI.
type Directive struct {
	Task

	ID     string
	Issuer string
}

// NewDirective wraps a task as an externally issued command.
func NewDirective(task Task, issuer string) *Directive {
	return &Directive{
		Task:   task,
		ID:     uuid.New().String(),
		Issuer: issuer,
	}
}
