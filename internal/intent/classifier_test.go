package intent

import (
	"errors"
	"reflect"
	"testing"
)

// loadProductionTable loads the real rule table shipped in configs/.
func loadProductionTable(t *testing.T) *Table {
	t.Helper()

	table, err := LoadTable("../../configs/rules.yaml")
	if err != nil {
		t.Fatalf("LoadTable(configs/rules.yaml) error = %v", err)
	}
	return table
}

func TestClassify_RecognisedCommands(t *testing.T) {
	c := NewClassifier(loadProductionTable(t))

	tests := []struct {
		text       string
		wantIntent Kind
		wantSlots  map[string]Slot
	}{
		{
			text:       "turn on the living room lights",
			wantIntent: KindTurnOnLight,
			wantSlots: map[string]Slot{
				"room":       {Value: "living room", Present: true},
				"light_name": {Value: "living room", Present: true},
			},
		},
		{
			text:       "switch off the bedroom lamp",
			wantIntent: KindTurnOffLight,
			wantSlots: map[string]Slot{
				"room":       {Value: "bedroom", Present: true},
				"light_name": {Value: "bedroom", Present: true},
			},
		},
		{
			text:       "turn on the lights",
			wantIntent: KindTurnOnLight,
			wantSlots: map[string]Slot{
				"room":       {},
				"light_name": {Value: "the", Present: true},
			},
		},
		{
			text:       "set brightness to 128 in the kitchen",
			wantIntent: KindSetBrightness,
			wantSlots: map[string]Slot{
				"brightness": {Value: "128", Present: true},
				"room":       {Value: "kitchen", Present: true},
			},
		},
		{
			text:       "set temperature to 72 degrees",
			wantIntent: KindSetTemperature,
			wantSlots: map[string]Slot{
				"temperature": {Value: "72", Present: true},
				"room":        {},
			},
		},
		{
			text:       "play some jazz music",
			wantIntent: KindPlayMedia,
			wantSlots: map[string]Slot{
				"query": {Value: "some jazz music", Present: true},
			},
		},
		{
			text:       "stop the music",
			wantIntent: KindStopMedia,
			wantSlots:  map[string]Slot{},
		},
		{
			text:       "activate scene movie night",
			wantIntent: KindActivateScene,
			wantSlots: map[string]Slot{
				"scene_name": {Value: "movie night", Present: true},
			},
		},
		{
			text:       "lock the front door",
			wantIntent: KindLockDoor,
			wantSlots: map[string]Slot{
				"door": {Value: "front door", Present: true},
			},
		},
		{
			text:       "unlock the garage door",
			wantIntent: KindUnlockDoor,
			wantSlots: map[string]Slot{
				"door": {Value: "garage door", Present: true},
			},
		},
	}

	for _, tt := range tests {
		got := c.Classify(tt.text)
		if got.Intent != tt.wantIntent {
			t.Errorf("Classify(%q) intent = %s, want %s", tt.text, got.Intent, tt.wantIntent)
			continue
		}
		if !reflect.DeepEqual(got.Slots, tt.wantSlots) {
			t.Errorf("Classify(%q) slots = %v, want %v", tt.text, got.Slots, tt.wantSlots)
		}
	}
}

func TestClassify_UnknownCommand(t *testing.T) {
	c := NewClassifier(loadProductionTable(t))

	for _, text := range []string{
		"do a backflip",
		"order me a pizza",
		"what is the meaning of life",
	} {
		got := c.Classify(text)
		if !got.IsUnknown() {
			t.Errorf("Classify(%q) intent = %s, want %s", text, got.Intent, KindUnknown)
		}
		if got.Text != text {
			t.Errorf("Classify(%q) Text = %q, want input verbatim", text, got.Text)
		}
		if got.Slots != nil {
			t.Errorf("Classify(%q) Slots = %v, want nil", text, got.Slots)
		}
	}
}

// Every rule in the production table must be reachable: at least one
// command here must be won by it.
func TestTable_EveryRuleReachable(t *testing.T) {
	table := loadProductionTable(t)
	c := NewClassifier(table)

	examples := []string{
		"turn on the living room lights",
		"turn off the kitchen lights",
		"set brightness to 200",
		"set temperature to 68",
		"play my morning playlist",
		"pause the music",
		"activate scene bedtime",
		"lock the back door",
		"unlock the front door",
	}

	won := make(map[Kind]bool)
	for _, text := range examples {
		won[c.Classify(text).Intent] = true
	}

	for _, rule := range table.Rules() {
		if !won[rule.Intent] {
			t.Errorf("rule %s (priority %d) never wins for any example", rule.Intent, rule.Priority)
		}
	}
}

// When two rules both match, the lower priority must always win.
func TestClassify_PriorityOrder(t *testing.T) {
	data := []byte(`
rules:
  - intent: turn_on_light
    priority: 10
    match: '\blights\b'
  - intent: set_brightness
    priority: 30
    match: '\blights\b'
`)
	table, err := ParseTable(data)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	got := NewClassifier(table).Classify("lights")
	if got.Intent != KindTurnOnLight {
		t.Errorf("overlapping rules: intent = %s, want lower-priority %s", got.Intent, KindTurnOnLight)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(loadProductionTable(t))

	for _, text := range []string{
		"turn on the bedroom lights",
		"do a backflip",
		"set temperature to 72 degrees",
	} {
		first := c.Classify(text)
		second := c.Classify(text)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Classify(%q) not deterministic: %v vs %v", text, first, second)
		}
	}
}

func TestParseTable_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "empty table",
			data:    "rules: []",
			wantErr: ErrEmptyTable,
		},
		{
			name: "duplicate priority",
			data: `
rules:
  - intent: turn_on_light
    priority: 10
    match: '\bon\b'
  - intent: turn_off_light
    priority: 10
    match: '\boff\b'
`,
			wantErr: ErrDuplicatePriority,
		},
		{
			name: "invalid trigger pattern",
			data: `
rules:
  - intent: turn_on_light
    priority: 10
    match: '([unclosed'
`,
			wantErr: ErrInvalidPattern,
		},
		{
			name: "slot without capture group",
			data: `
rules:
  - intent: turn_on_light
    priority: 10
    match: '\bon\b'
    slots:
      room: '\bbedroom\b'
`,
			wantErr: ErrInvalidSlotPattern,
		},
		{
			name: "slot with two capture groups",
			data: `
rules:
  - intent: turn_on_light
    priority: 10
    match: '\bon\b'
    slots:
      room: '(bed)(room)'
`,
			wantErr: ErrInvalidSlotPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseTable() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTable_SortsByPriority(t *testing.T) {
	data := []byte(`
rules:
  - intent: unlock_door
    priority: 90
    match: '\bunlock\b'
  - intent: turn_on_light
    priority: 10
    match: '\bon\b'
`)
	table, err := ParseTable(data)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	rules := table.Rules()
	if rules[0].Priority != 10 || rules[1].Priority != 90 {
		t.Errorf("rules not sorted by priority: %d, %d", rules[0].Priority, rules[1].Priority)
	}
}
