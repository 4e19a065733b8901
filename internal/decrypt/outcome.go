package decrypt

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies how a request ended.
type Kind int

const (
	// Failed means no artifact of value was produced.
	Failed Kind = iota
	// Decrypted means a strategy recovered the content.
	Decrypted
	// NotEncrypted means the input is not protected and nothing was written.
	NotEncrypted
	// Copied means the identity fallback copied the input unchanged.
	Copied
)

func (k Kind) String() string {
	switch k {
	case Decrypted:
		return "decrypted"
	case NotEncrypted:
		return "not encrypted"
	case Copied:
		return "copied"
	default:
		return "failed"
	}
}

// Result is what a strategy reports on success.
type Result struct {
	// Output is the produced file, if the strategy knows it.
	Output string
	// StatusFile is the status record written for the request.
	StatusFile string
	// Message is a human-readable summary, such as the service's status text.
	Message string
}

// Attempt records a strategy that ran and did not succeed.
type Attempt struct {
	Strategy string
	Err      error
}

// Outcome is the uniform report of a request.
type Outcome struct {
	Kind Kind
	// Success is true when an output artifact was produced.
	Success    bool
	Strategy   string
	Input      string
	Output     string
	StatusFile string
	Message    string
	// Err is the terminal error of a failed request.
	Err      error
	Attempts []Attempt
}

// Failed reports whether the request ended in failure.
func (o Outcome) Failed() bool {
	return o.Kind == Failed
}

// Is reports whether the terminal error or any attempt matches target.
func (o Outcome) Is(target error) bool {
	if errors.Is(o.Err, target) {
		return true
	}

	for _, a := range o.Attempts {
		if errors.Is(a.Err, target) {
			return true
		}
	}

	return false
}

// Summary renders the attempts as a single line, e.g. for error messages.
func (o Outcome) Summary() string {
	parts := make([]string, 0, len(o.Attempts))

	for _, a := range o.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}

	return strings.Join(parts, "; ")
}
