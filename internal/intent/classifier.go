package intent

import "strings"

// Classifier matches normalised command text against the rule table.
// It holds no mutable state: classification is a pure function of the
// input text and the static table.
type Classifier struct {
	table *Table
}

// NewClassifier creates a classifier over the given rule table.
func NewClassifier(table *Table) *Classifier {
	return &Classifier{table: table}
}

// Classify matches text against the rule table in ascending priority
// order. The first rule whose trigger pattern matches wins; its slot
// patterns are then applied to extract named captures. Slots whose
// pattern does not match the input are recorded as absent, never as
// empty strings.
//
// If no rule matches, the result carries KindUnknown and the input text
// verbatim.
//
// Parameters:
//   - text: Normalised (trimmed, lower-cased) command text
//
// Returns:
//   - ParsedIntent: Winning intent with extracted slots, or KindUnknown
func (c *Classifier) Classify(text string) ParsedIntent {
	for _, rule := range c.table.rules {
		if !rule.trigger.MatchString(text) {
			continue
		}

		slots := make(map[string]Slot, len(rule.slots))
		for name, re := range rule.slots {
			m := re.FindStringSubmatch(text)
			if m == nil {
				slots[name] = Slot{}
				continue
			}
			slots[name] = Slot{
				Value:   strings.TrimSpace(m[1]),
				Present: true,
			}
		}

		return ParsedIntent{
			Intent: rule.Intent,
			Slots:  slots,
			Text:   text,
		}
	}

	return ParsedIntent{
		Intent: KindUnknown,
		Text:   text,
	}
}
