package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the format of Scenario.Today.
const DateLayout = "2006-01-02"

// DefaultToday is the scenario date when none is given.
const DefaultToday = "2026-10-17"

// Scenario is one behaviour test.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Today is the starting calendar date (YYYY-MM-DD).
	Today string `yaml:"today,omitempty"`

	// Seed holds raw store values written before the tracker loads.
	Seed map[string]string `yaml:"seed,omitempty"`

	// Catalog is inline CUE replacing the built-in digest catalog.
	Catalog string `yaml:"catalog,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one tracker operation. Which fields apply depends on Action.
type Step struct {
	Action string `yaml:"action"`

	ID              string `yaml:"id,omitempty"`
	Passed          *bool  `yaml:"passed,omitempty"`
	Value           *int   `yaml:"value,omitempty"`
	Enabled         *bool  `yaml:"enabled,omitempty"`
	Route           string `yaml:"route,omitempty"`
	Title           string `yaml:"title,omitempty"`
	Status          string `yaml:"status,omitempty"`
	ShowOnlyMatches bool   `yaml:"show_only_matches,omitempty"`
	Days            int    `yaml:"days,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a step. A step without Expect
// must succeed.
type Expect struct {
	// Error names the expected error kind (see ErrorKinds).
	Error string `yaml:"error,omitempty"`

	// Allowed is the expected navigation outcome.
	Allowed *bool `yaml:"allowed,omitempty"`
}

// Step actions.
const (
	ActionSetTest        = "set_test"
	ActionReset          = "reset"
	ActionSetThreshold   = "set_threshold"
	ActionSetEmail       = "set_email"
	ActionGenerateDigest = "generate_digest"
	ActionNavigate       = "navigate"
	ActionSaveJob        = "save_job"
	ActionSetJobStatus   = "set_job_status"
	ActionApplyFilters   = "apply_filters"
	ActionAdvanceDays    = "advance_days"
	ActionReload         = "reload"
)

// Assertion checks the state after all steps ran.
type Assertion struct {
	Type string `yaml:"type"`

	Count              *int   `yaml:"count,omitempty"`
	State              string `yaml:"state,omitempty"`
	Route              string `yaml:"route,omitempty"`
	MatchThreshold     *int   `yaml:"match_threshold,omitempty"`
	EmailNotifications *bool  `yaml:"email_notifications,omitempty"`
	Present            *bool  `yaml:"present,omitempty"`
	Entries            *int   `yaml:"entries,omitempty"`
	Level              string `yaml:"level,omitempty"`
	Message            string `yaml:"message,omitempty"`
	Key                string `yaml:"key,omitempty"`
	Value              string `yaml:"value,omitempty"`
}

// Assertion types.
const (
	AssertPassedCount  = "passed_count"
	AssertGate         = "gate"
	AssertRoute        = "route"
	AssertPreferences  = "preferences"
	AssertDigest       = "digest"
	AssertNotification = "notification"
	AssertStored       = "stored"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// StartTime returns midnight plus nine hours UTC on the scenario date.
func (s *Scenario) StartTime() (time.Time, error) {
	day := s.Today
	if day == "" {
		day = DefaultToday
	}
	t, err := time.Parse(DateLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("today: %w", err)
	}
	return t.Add(9 * time.Hour), nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := s.StartTime(); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Action {
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	case ActionSetTest:
		if st.ID == "" || st.Passed == nil {
			return fmt.Errorf("steps[%d]: id and passed are required for set_test", index)
		}
	case ActionSetThreshold:
		if st.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for set_threshold", index)
		}
	case ActionSetEmail:
		if st.Enabled == nil {
			return fmt.Errorf("steps[%d]: enabled is required for set_email", index)
		}
	case ActionNavigate:
		if st.Route == "" {
			return fmt.Errorf("steps[%d]: route is required for navigate", index)
		}
	case ActionSaveJob:
		if st.Title == "" {
			return fmt.Errorf("steps[%d]: title is required for save_job", index)
		}
	case ActionSetJobStatus:
		if st.Title == "" || st.Status == "" {
			return fmt.Errorf("steps[%d]: title and status are required for set_job_status", index)
		}
	case ActionAdvanceDays:
		if st.Days <= 0 {
			return fmt.Errorf("steps[%d]: days must be positive for advance_days", index)
		}
	case ActionReset, ActionGenerateDigest, ActionApplyFilters, ActionReload:
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, st.Action)
	}

	if st.Expect != nil && st.Expect.Error != "" {
		if _, ok := ErrorKinds[st.Expect.Error]; !ok {
			return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, st.Expect.Error)
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertPassedCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for passed_count", index)
		}
	case AssertGate:
		if a.State != "LOCKED" && a.State != "UNLOCKED" {
			return fmt.Errorf("assertions[%d]: state must be LOCKED or UNLOCKED", index)
		}
	case AssertRoute:
		if a.Route == "" {
			return fmt.Errorf("assertions[%d]: route is required for route", index)
		}
	case AssertPreferences:
		if a.MatchThreshold == nil && a.EmailNotifications == nil {
			return fmt.Errorf("assertions[%d]: match_threshold or email_notifications is required", index)
		}
	case AssertDigest:
		if a.Present == nil {
			return fmt.Errorf("assertions[%d]: present is required for digest", index)
		}
	case AssertNotification:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for notification", index)
		}
	case AssertStored:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for stored", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
