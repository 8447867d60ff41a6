package runner

import (
	"time"
)

// StaleContext is sent as the message context when a step sets stale_context,
// standing in for a button pressed on an old screen.
const StaleContext = "stale-context"

// TestSuite defines a complete integration test scenario.
// Can either be a regular test with Steps, or a suite that references other Cases.
type TestSuite struct {
	Name  string     `yaml:"name"`
	Steps []TestStep `yaml:"steps,omitempty"` // Used for regular tests
	Cases []string   `yaml:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one chat event and its expected outcome. Exactly one of Text,
// Press or Action is set. Press looks a button up by label on the current
// screen and sends its action.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Text         string       `yaml:"text,omitempty"`
	Press        string       `yaml:"press,omitempty"`
	Action       string       `yaml:"action,omitempty"`
	StaleContext bool         `yaml:"stale_context,omitempty"`
	Expectations Expectations `yaml:"expect"`
}

// Expectations defines what to check on the payload a step returns.
type Expectations struct {
	TextContains    []string `yaml:"text_contains,omitempty"`
	TextNotContains []string `yaml:"text_not_contains,omitempty"`
	TextRegex       string   `yaml:"text_regex,omitempty"`
	Buttons         []string `yaml:"buttons,omitempty"` // labels that must be present
	ButtonCount     *int     `yaml:"button_count,omitempty"`
	Columns         *int     `yaml:"columns,omitempty"`
	Unchanged       *bool    `yaml:"unchanged,omitempty"`
	Fresh           *bool    `yaml:"fresh,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	PlayerID int64 // player the suite played as
}
