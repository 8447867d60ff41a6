// Package render holds the transport-neutral screen the engine answers with.
package render

import (
	"slices"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultWidth is the column the text body wraps at.
const DefaultWidth = 72

// Button is one selectable action. Disabled buttons are shown but carry the
// noop token.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Payload is a full screen: body text, ordered buttons and the message
// context that later button presses must echo back.
type Payload struct {
	Text           string   `json:"text"`
	Buttons        []Button `json:"buttons,omitempty"`
	Columns        int      `json:"columns,omitempty"`
	MessageContext string   `json:"message_context,omitempty"`
	// Fresh asks the adapter to send a new message rather than edit the last.
	Fresh bool `json:"fresh,omitempty"`
	// Unchanged asks the adapter to leave the current screen as it is.
	Unchanged bool `json:"unchanged,omitempty"`
}

// Equal reports whether two payloads would render identically, in which case
// an edit can be skipped.
func (p *Payload) Equal(o *Payload) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Text == o.Text &&
		p.Columns == o.Columns &&
		p.MessageContext == o.MessageContext &&
		slices.Equal(p.Buttons, o.Buttons)
}

// Rows groups buttons according to Columns. Zero or one column puts each
// button on its own row.
func (p *Payload) Rows() [][]Button {
	cols := max(p.Columns, 1)
	var rows [][]Button
	for b := range slices.Chunk(p.Buttons, cols) {
		rows = append(rows, b)
	}
	return rows
}

var titler = cases.Title(language.English)

// Title capitalises each word of a world name for display.
func Title(s string) string {
	return titler.String(s)
}

// Wrap word-wraps body text at width, or DefaultWidth if width <= 0.
func Wrap(s string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return wordwrap.String(s, width)
}

// Lines joins non-empty lines with newlines.
func Lines(lines ...string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
