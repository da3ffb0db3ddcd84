package batch

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-cms-bulkload/internal/reconcile"
)

// Skip reasons counted in Outcome.SkipReasons.
const (
	SkipExisting     = reconcile.ReasonExisting
	SkipMissing      = reconcile.ReasonMissing
	SkipFiltered     = "filtered"
	SkipNoLegacyText = "no-legacy-text"
	SkipHasBlocks    = "has-blocks"
	SkipUnchanged    = "unchanged"
)

// Outcome accumulates the result of one run. Every processed row increments
// exactly one of the four counters.
type Outcome struct {
	Created     int
	Updated     int
	Skipped     int
	Failed      int
	SkipReasons map[string]int
	Messages    []string
}

// NewOutcome returns an empty accumulator.
func NewOutcome() *Outcome {
	return &Outcome{SkipReasons: map[string]int{}}
}

// Total is the number of rows that reached a terminal state.
func (o *Outcome) Total() int {
	return o.Created + o.Updated + o.Skipped + o.Failed
}

func (o *Outcome) record(line int, key string, action reconcile.Action, reason string) {
	switch action {
	case reconcile.ActionCreate:
		o.Created++
	case reconcile.ActionUpdate:
		o.Updated++
	default:
		o.Skipped++
		if reason != "" {
			o.SkipReasons[reason]++
		}
	}
	o.Messages = append(o.Messages, rowMessage(line, key, pastTense(action, reason)))
}

func (o *Outcome) fail(line int, key string, err error) {
	o.Failed++
	o.Messages = append(o.Messages, rowMessage(line, key, "failed: "+err.Error()))
}

func rowMessage(line int, key, text string) string {
	var b strings.Builder
	if line > 0 {
		fmt.Fprintf(&b, "line %d", line)
	}
	if key != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "[%s]", key)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(text)
	return b.String()
}

func pastTense(action reconcile.Action, reason string) string {
	switch action {
	case reconcile.ActionCreate:
		return "created"
	case reconcile.ActionUpdate:
		return "updated"
	}
	if reason != "" {
		return "skipped (" + reason + ")"
	}
	return "skipped"
}

// WriteSummary prints the counters, skip sub-counts and row messages.
func WriteSummary(w io.Writer, title string, dryRun bool, o *Outcome) error {
	var b strings.Builder
	b.WriteString(title)
	if dryRun {
		b.WriteString(" (dry run)")
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "  created: %d\n", o.Created)
	fmt.Fprintf(&b, "  updated: %d\n", o.Updated)
	fmt.Fprintf(&b, "  skipped: %d", o.Skipped)
	if len(o.SkipReasons) > 0 {
		reasons := make([]string, 0, len(o.SkipReasons))
		for _, reason := range slices.Sorted(maps.Keys(o.SkipReasons)) {
			reasons = append(reasons, fmt.Sprintf("%s: %d", reason, o.SkipReasons[reason]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(reasons, ", "))
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "  failed:  %d\n", o.Failed)
	for _, message := range o.Messages {
		fmt.Fprintf(&b, "  - %s\n", message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
