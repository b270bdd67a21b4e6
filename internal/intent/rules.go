package intent

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Rule is one entry in the ordered rule table: a trigger pattern that
// decides whether the rule matches, plus per-slot extraction patterns run
// only when it does. Rules are immutable after loading.
type Rule struct {
	Intent   Kind
	Priority int

	trigger *regexp.Regexp
	slots   map[string]*regexp.Regexp
}

// Table is the complete rule table, sorted by ascending priority.
// It is loaded once at startup and read-only thereafter, so it is safe
// for concurrent use.
type Table struct {
	rules []Rule
}

// ruleSpec is the YAML form of a single rule.
type ruleSpec struct {
	Intent   string            `yaml:"intent"`
	Priority int               `yaml:"priority"`
	Match    string            `yaml:"match"`
	Slots    map[string]string `yaml:"slots"`
}

// rulesFile is the YAML form of the rules file.
type rulesFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

// LoadTable reads and compiles the rule table from a YAML file.
//
// Load-time invariants, all fatal:
//   - at least one rule is declared
//   - every trigger pattern compiles
//   - every slot pattern compiles and has exactly one capture group
//   - priorities are unique across the table
//
// Parameters:
//   - path: Path to the rules YAML file
//
// Returns:
//   - *Table: Compiled table, sorted by ascending priority
//   - error: If reading, parsing, or any invariant fails
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseTable(data)
}

// ParseTable compiles a rule table from raw YAML. Split out from
// LoadTable so tests can build tables without touching the filesystem.
func ParseTable(data []byte) (*Table, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	if len(file.Rules) == 0 {
		return nil, ErrEmptyTable
	}

	seen := make(map[int]Kind, len(file.Rules))
	rules := make([]Rule, 0, len(file.Rules))

	for _, spec := range file.Rules {
		if spec.Intent == "" {
			return nil, fmt.Errorf("rule with priority %d has no intent", spec.Priority)
		}
		if prev, dup := seen[spec.Priority]; dup {
			return nil, fmt.Errorf("%w: %d used by %s and %s",
				ErrDuplicatePriority, spec.Priority, prev, spec.Intent)
		}
		seen[spec.Priority] = Kind(spec.Intent)

		trigger, err := regexp.Compile(spec.Match)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %s: %v", ErrInvalidPattern, spec.Intent, err)
		}

		slots := make(map[string]*regexp.Regexp, len(spec.Slots))
		for name, pattern := range spec.Slots {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %s slot %s: %v",
					ErrInvalidSlotPattern, spec.Intent, name, err)
			}
			if re.NumSubexp() != 1 {
				return nil, fmt.Errorf("%w: rule %s slot %s: want exactly 1 capture group, got %d",
					ErrInvalidSlotPattern, spec.Intent, name, re.NumSubexp())
			}
			slots[name] = re
		}

		rules = append(rules, Rule{
			Intent:   Kind(spec.Intent),
			Priority: spec.Priority,
			trigger:  trigger,
			slots:    slots,
		})
	}

	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})

	return &Table{rules: rules}, nil
}

// Rules returns the table's rules in evaluation order.
func (t *Table) Rules() []Rule {
	return t.rules
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// Matches reports whether the rule's trigger pattern matches the text.
// Exposed so tests can verify every table entry is reachable.
func (r Rule) Matches(text string) bool {
	return r.trigger.MatchString(text)
}

// SlotNames returns the rule's declared slot names.
func (r Rule) SlotNames() []string {
	names := make([]string, 0, len(r.slots))
	for name := range r.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
