package contractkit

import "fmt"

// ValidationResult is the immutable outcome of one validation call. Errors
// are blocking; warnings are advisory and never affect Success.
type ValidationResult struct {
	Success  bool                   `json:"success"`
	Errors   []string               `json:"errors"`
	Warnings []string               `json:"warnings"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// diagnostics accumulates rule outcomes before a result is sealed. Rules
// append to it; nothing short-circuits, so one call reports every problem.
type diagnostics struct {
	errors   []string
	warnings []string
	details  map[string]interface{}
}

func (d *diagnostics) errorf(format string, args ...interface{}) {
	d.errors = append(d.errors, fmt.Sprintf(format, args...))
}

func (d *diagnostics) warnf(format string, args ...interface{}) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

func (d *diagnostics) detail(key string, value interface{}) {
	if d.details == nil {
		d.details = make(map[string]interface{})
	}
	d.details[key] = value
}

// result seals the accumulated diagnostics. Details are only carried on
// success; a failing result reports problems, not metadata.
func (d *diagnostics) result() ValidationResult {
	res := ValidationResult{
		Success:  len(d.errors) == 0,
		Errors:   []string{},
		Warnings: []string{},
	}
	res.Errors = append(res.Errors, d.errors...)
	res.Warnings = append(res.Warnings, d.warnings...)
	if res.Success {
		res.Details = d.details
	}
	return res
}

// failedValidation wraps an I/O or parse fault as an ordinary failed result
// so callers never need exception-style guards.
func failedValidation(err error) ValidationResult {
	return ValidationResult{
		Success:  false,
		Errors:   []string{err.Error()},
		Warnings: []string{},
	}
}

// MockResult carries one synthesized payload. Data is JSON-compatible and
// nil on failure; Type labels the shape that was selected.
type MockResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Type    string      `json:"type"`
}
