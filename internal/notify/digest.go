package notify

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/merzah/merzah/internal/rotation"
)

const (
	// maxDigestUnits stays below Telegram's 4096 UTF-16 unit message limit,
	// leaving room for the truncation notes.
	maxDigestUnits = 3900
	maxDigestLines = 40
	maxTitleRunes  = 60
	maxReasonRunes = 160
)

// Message is plain text plus Telegram formatting entities.
type Message struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

// segment is a run of text with an optional entity type.
type segment struct {
	kind string
	text string
}

// builder appends text while tracking UTF-16 offsets, which is what
// Telegram entity offsets and lengths are measured in.
type builder struct {
	sb       strings.Builder
	offset   int
	lines    int
	entities []tgbotapi.MessageEntity
}

func (b *builder) text(s string) {
	b.sb.WriteString(s)
	b.offset += utf16Len(s)
}

func (b *builder) styled(kind, s string) {
	n := utf16Len(s)
	if n > 0 {
		b.entities = append(b.entities, tgbotapi.MessageEntity{Type: kind, Offset: b.offset, Length: n})
	}
	b.text(s)
}

// line writes one list entry, or reports false when it would exceed the
// line or size budget.
func (b *builder) line(segs ...segment) bool {
	n := 1
	for _, seg := range segs {
		n += utf16Len(seg.text)
	}
	if b.lines >= maxDigestLines || b.offset+n > maxDigestUnits {
		return false
	}
	for _, seg := range segs {
		if seg.kind == "" {
			b.text(seg.text)
		} else {
			b.styled(seg.kind, seg.text)
		}
	}
	b.text("\n")
	b.lines++
	return true
}

func (b *builder) more(total, shown int) {
	if total > shown {
		b.styled("italic", fmt.Sprintf("... and %d more", total-shown))
		b.text("\n")
	}
}

func (b *builder) message() Message {
	return Message{Text: strings.TrimRight(b.sb.String(), "\n"), Entities: b.entities}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

// Digest renders a rotation report for operators.
func Digest(report *rotation.Report) Message {
	var b builder

	b.styled("bold", "Rotation "+report.Now.UTC().Format("2006-01-02 15:04 MST"))
	b.text("\n")
	b.text(fmt.Sprintf("%d rotated, %d series ended, %d skipped, %d failed\n",
		len(report.Rotated), len(report.SeriesEnded), len(report.Skipped), len(report.Failed)))

	if len(report.Rotated) > 0 {
		b.text("\n")
		shown := 0
		for _, rot := range report.Rotated {
			when := fmt.Sprintf(": %s → %s", formatWhen(rot.From), formatWhen(rot.To))
			if rot.Steps > 1 {
				when += fmt.Sprintf(" (%d periods)", rot.Steps)
			}
			if !b.line(segment{text: "🔄 "}, segment{kind: "bold", text: truncate(rot.Title, maxTitleRunes)}, segment{text: when}) {
				break
			}
			shown++
		}
		b.more(len(report.Rotated), shown)
	}

	if len(report.Failed) > 0 {
		b.text("\n")
		shown := 0
		for _, f := range report.Failed {
			if !b.line(segment{text: "⚠️ "}, segment{kind: "code", text: f.EventID.String()}, segment{text: ": " + truncate(f.Reason, maxReasonRunes)}) {
				break
			}
			shown++
		}
		b.more(len(report.Failed), shown)
	}

	if len(report.SeriesEnded) > 0 {
		b.text("\nSeries ended:\n")
		shown := 0
		for _, id := range report.SeriesEnded {
			if !b.line(segment{text: "🏁 "}, segment{kind: "code", text: id.String()}) {
				break
			}
			shown++
		}
		b.more(len(report.SeriesEnded), shown)
	}

	return b.message()
}

func formatWhen(t time.Time) string {
	return t.Format("Mon 02 Jan 15:04 MST")
}
