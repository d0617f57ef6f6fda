package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/halfbit/mem"
	"github.com/joshuapare/halfbit/owned"
)

// Operation names.
const (
	OpAlloc  = "alloc"
	OpFill   = "fill"
	OpGrow   = "grow"
	OpShrink = "shrink"
	OpFree   = "free"
	OpExpect = "expect"
	OpText   = "text"
)

// Outcome names a step can expect besides the allocation error names.
const (
	OutcomeOK          = "ok"
	OutcomePanic       = "panic"
	OutcomeInvalidUTF8 = "InvalidUTF8"
)

var ops = []string{OpAlloc, OpFill, OpGrow, OpShrink, OpFree, OpExpect, OpText}

// Scenario is a parsed scenario file.
type Scenario struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Allocator   AllocatorSpec `yaml:"allocator" json:"allocator"`
	Steps       []Step        `yaml:"steps" json:"steps"`
}

// AllocatorSpec selects the allocator a scenario runs against.
type AllocatorSpec struct {
	// Kind is one of Kinds().
	Kind string `yaml:"kind" json:"kind"`

	// Size is the buffer size for bump and single.
	// Default: Options.ArenaSize
	Size int `yaml:"size,omitempty" json:"size,omitempty"`
}

// Step is one scenario operation.
type Step struct {
	Op     string `yaml:"op" json:"op"`
	ID     string `yaml:"id" json:"id"`
	Size   uint64 `yaml:"size,omitempty" json:"size,omitempty"`
	Align  uint64 `yaml:"align,omitempty" json:"align,omitempty"`
	Offset uint64 `yaml:"offset,omitempty" json:"offset,omitempty"`

	// Byte is the fill value or the expected byte.
	Byte *uint8 `yaml:"byte,omitempty" json:"byte,omitempty"`

	// Value is the text to append or the expected string content.
	Value *string `yaml:"value,omitempty" json:"value,omitempty"`

	// Encoding names the encoding text is transcoded through before being
	// appended. Default: UTF-8
	Encoding string `yaml:"encoding,omitempty" json:"encoding,omitempty"`

	// Expect is the expected outcome. Default: "ok"
	Expect string `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// ExpectedOutcome returns Expect, defaulting to "ok".
func (s Step) ExpectedOutcome() string {
	if s.Expect == "" {
		return OutcomeOK
	}
	return s.Expect
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks the scenario structure. It does not check that steps refer
// to ids that will exist; that is a step failure at run time.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidScenario)
	}
	if !slices.Contains(Kinds(), sc.Allocator.Kind) {
		return fmt.Errorf("%w: %q", ErrUnknownAllocator, sc.Allocator.Kind)
	}
	if sc.Allocator.Size < 0 {
		return fmt.Errorf("%w: negative allocator size", ErrInvalidScenario)
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	if !slices.Contains(ops, s.Op) {
		return fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
	}
	if s.ID == "" {
		return fmt.Errorf("%w: %s without id", ErrInvalidScenario, s.Op)
	}
	switch s.Op {
	case OpFill:
		if s.Byte == nil {
			return fmt.Errorf("%w: fill without byte", ErrInvalidScenario)
		}
	case OpExpect:
		if (s.Byte == nil) == (s.Value == nil) {
			return fmt.Errorf("%w: expect needs exactly one of byte or value", ErrInvalidScenario)
		}
	case OpText:
		if s.Value == nil {
			return fmt.Errorf("%w: text without value", ErrInvalidScenario)
		}
		if _, err := lookupEncoding(s.Encoding); err != nil {
			return err
		}
	}
	switch want := s.ExpectedOutcome(); want {
	case OutcomeOK, OutcomePanic, OutcomeInvalidUTF8:
	default:
		if _, ok := mem.ErrorByName(want); !ok {
			return fmt.Errorf("%w: unknown outcome %q", ErrInvalidScenario, want)
		}
	}
	return nil
}

// outcomeOf names the result of an operation.
func outcomeOf(err error) string {
	if errors.Is(err, owned.ErrInvalidUTF8) {
		return OutcomeInvalidUTF8
	}
	if name := mem.ErrorName(err); name != "" {
		return name
	}
	return "error"
}
