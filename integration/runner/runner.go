package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/quest-engine/internal/game"
	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/pkg/render"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays test suites against a running quest-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode

	nextPlayer atomic.Int64
}

// NewRunner creates a new test runner. Player ids are handed out from a
// time-based base so repeated runs against a persistent server start fresh.
func NewRunner(baseURL string) *Runner {
	r := &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Timeout:           10 * time.Second,
		ErrorHandlingMode: ErrorHandlingContinue,
		Logger:            func(string, ...interface{}) {},
	}
	r.nextPlayer.Store(time.Now().Unix() * 1000)
	return r
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite plays every step of a suite as a brand new player. The screen each
// step returns becomes the one the next step presses buttons on.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results:  make([]TestResult, 0, len(suite.Steps)),
		PlayerID: r.nextPlayer.Add(1),
	}

	var current *render.Payload
	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult, next := r.executeStep(ctx, result.PlayerID, current, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
		} else {
			r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
		}

		if next != nil && !next.Unchanged {
			current = next
		}
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) executeStep(ctx context.Context, playerID int64, current *render.Payload, step TestStep) (TestResult, *render.Payload) {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	ev, err := buildEvent(playerID, current, step)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, nil
	}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	p, err := r.SendEvent(stepCtx, ev)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result, nil
	}
	result.ResponseText = p.Text

	if err := checkExpectations(step.Expectations, p); err != nil {
		result.Error = err
		return result, p
	}
	result.Success = true
	return result, p
}

func buildEvent(playerID int64, current *render.Payload, step TestStep) (game.Event, error) {
	ev := game.Event{PlayerID: playerID, Text: step.Text, Action: step.Action}
	if current != nil {
		ev.MessageContext = current.MessageContext
	}
	if step.StaleContext {
		ev.MessageContext = StaleContext
	}

	if step.Press == "" {
		if (ev.Text == "") == (ev.Action == "") {
			return ev, fmt.Errorf("step %q must set exactly one of text, press or action", step.Name)
		}
		return ev, nil
	}
	if ev.Text != "" || ev.Action != "" {
		return ev, fmt.Errorf("step %q must set exactly one of text, press or action", step.Name)
	}
	if current == nil {
		return ev, fmt.Errorf("no screen to press %q on", step.Press)
	}
	for _, b := range current.Buttons {
		if strings.EqualFold(b.Label, step.Press) {
			ev.Action = b.Action
			return ev, nil
		}
	}
	return ev, fmt.Errorf("no button %q on screen (have %v)", step.Press, labels(current))
}

// SendEvent posts one event to /v1/events.
func (r *Runner) SendEvent(ctx context.Context, ev game.Event) (*render.Payload, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/events", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp handlers.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, errResp.Error)
	}

	var p render.Payload
	if err := json.Unmarshal(respBody, &p); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	return &p, nil
}

// checkExpectations validates the returned screen against the step's expectations
func checkExpectations(exp Expectations, p *render.Payload) error {
	lowerText := strings.ToLower(p.Text)
	for _, want := range exp.TextContains {
		if !strings.Contains(lowerText, strings.ToLower(want)) {
			return fmt.Errorf("expected text to contain '%s', got %q", want, p.Text)
		}
	}
	for _, unwanted := range exp.TextNotContains {
		if strings.Contains(lowerText, strings.ToLower(unwanted)) {
			return fmt.Errorf("expected text to NOT contain '%s', got %q", unwanted, p.Text)
		}
	}

	if exp.TextRegex != "" {
		matched, err := regexp.MatchString(exp.TextRegex, p.Text)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("text didn't match regex pattern %s: %q", exp.TextRegex, p.Text)
		}
	}

	have := labels(p)
	for _, want := range exp.Buttons {
		found := false
		for _, l := range have {
			if strings.EqualFold(l, want) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("expected button '%s', have %v", want, have)
		}
	}

	if exp.ButtonCount != nil && len(p.Buttons) != *exp.ButtonCount {
		return fmt.Errorf("expected %d buttons, got %d (%v)", *exp.ButtonCount, len(p.Buttons), have)
	}
	if exp.Columns != nil && p.Columns != *exp.Columns {
		return fmt.Errorf("expected %d columns, got %d", *exp.Columns, p.Columns)
	}
	if exp.Unchanged != nil && p.Unchanged != *exp.Unchanged {
		return fmt.Errorf("expected unchanged to be %t, got %t", *exp.Unchanged, p.Unchanged)
	}
	if exp.Fresh != nil && p.Fresh != *exp.Fresh {
		return fmt.Errorf("expected fresh to be %t, got %t", *exp.Fresh, p.Fresh)
	}
	return nil
}

func labels(p *render.Payload) []string {
	out := make([]string, 0, len(p.Buttons))
	for _, b := range p.Buttons {
		out = append(out, b.Label)
	}
	return out
}
