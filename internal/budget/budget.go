// Package budget enforces the aggregate character ceiling across every
// document attached to one request.
package budget

import (
	"sort"

	"github.com/caseflow/casepipe/constants"
)

// Part is the unit handed to the downstream conversational system. A Part
// carrying a Label always has non-empty Text; textless or unclassified
// files are represented by the caller as a different part kind.
type Part struct {
	Name  string
	Text  string
	Label constants.DocumentLabel
}

func labelOrder(l constants.DocumentLabel) int {
	switch l {
	case constants.LabelPetition:
		return 0
	case constants.LabelDefense:
		return 1
	default:
		return 2
	}
}

// AssembleParts orders documents petition, defense, then unlabelled, and
// allocates the aggregate budget first-come in that order. Each part is
// also bounded by the per-part ceiling. Once the aggregate budget is
// exhausted, later parts are dropped entirely rather than truncated to
// nothing. The last part that partially fits is hard-truncated with the
// standard marker; the marker counts toward the consumed budget.
func AssembleParts(parts []Part) []Part {
	sorted := make([]Part, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return labelOrder(sorted[i].Label) < labelOrder(sorted[j].Label)
	})

	out := make([]Part, 0, len(sorted))
	total := 0
	for _, p := range sorted {
		if p.Name == "" || p.Text == "" {
			continue
		}
		remaining := constants.MaxTotalDocChars - total
		if remaining <= 0 {
			break
		}
		maxForThis := constants.MaxCharsPerPart
		if remaining < maxForThis {
			maxForThis = remaining
		}
		if len(p.Text) > maxForThis {
			p.Text = p.Text[:maxForThis] + constants.TruncationMarker
		}
		total += len(p.Text)
		out = append(out, p)
	}
	return out
}
