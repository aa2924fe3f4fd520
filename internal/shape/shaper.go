// Package shape converts raw provider payloads into the final inline-text
// or document-attachment representation, bounded by the transport's
// message-length ceiling.
package shape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/frappeash/lookupbot/internal/provider"
)

// MessageLimit is the transport's hard message-length ceiling.
const MessageLimit = 4096

// Mode selects between an inline text reply and a document attachment.
type Mode string

const (
	ModeInline     Mode = "inline"
	ModeAttachment Mode = "attachment"
)

// File is the attachment content of a spilled response.
type File struct {
	Name string
	Data []byte
}

// Response is a shaped provider reply ready for transport send.
// Attachment is non-nil iff Mode is ModeAttachment; Text never exceeds
// MessageLimit.
type Response struct {
	Mode       Mode
	Text       string
	Attachment *File
}

// attributionKeys are provider self-promotion fields stripped from every
// mapping payload before it reaches the user. Matching is case-insensitive
// and ignores spaces and underscores.
var attributionKeys = map[string]struct{}{
	"credit": {},
	"apiby":  {},
	"owner":  {},
}

// Shaper applies the response-shaping rules.
type Shaper struct {
	inlineLimit int
	footer      string
	noData      string
}

// NewShaper creates a Shaper. inlineLimit is the serialized-text length
// above which the response is spilled to an attachment.
func NewShaper(inlineLimit int, footer, noData string) *Shaper {
	return &Shaper{
		inlineLimit: inlineLimit,
		footer:      footer,
		noData:      noData,
	}
}

// Shape converts one payload into its transport representation.
func (s *Shaper) Shape(payload provider.Payload, title string) Response {
	if payload.Absent {
		return Response{Mode: ModeInline, Text: s.noData}
	}

	body := serialize(stripAttribution(payload.Value))

	if len(body) > s.inlineLimit {
		caption := Clamp("⚠️ Response too large, sent as a file.\n\n"+header(title)+s.footer, MessageLimit)
		return Response{
			Mode: ModeAttachment,
			Text: caption,
			Attachment: &File{
				Name: fileName(title, payload.Value),
				Data: []byte(body),
			},
		}
	}

	text := header(title) + "\n\n```json\n" + body + "\n```" + s.footer
	return Response{Mode: ModeInline, Text: Clamp(text, MessageLimit)}
}

// stripAttribution removes provider-attribution keys from mapping payloads.
// Other payload kinds pass through untouched.
func stripAttribution(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}

	cleaned := make(map[string]any, len(m))
	for k, v := range m {
		if _, drop := attributionKeys[normalizeKey(k)]; drop {
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, " ", "")
	k = strings.ReplaceAll(k, "_", "")
	return k
}

// serialize renders structured payloads as indented JSON with non-ASCII
// characters preserved verbatim; scalars render as their plain string form.
func serialize(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any, []any:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	default:
		return fmt.Sprint(v)
	}
}

func header(title string) string {
	return "📱 *" + title + "*"
}

// fileName derives a deterministic attachment name from the display title.
func fileName(title string, value any) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "_")
	if slug == "" {
		slug = "response"
	}

	switch value.(type) {
	case map[string]any, []any:
		return slug + ".json"
	default:
		return slug + ".txt"
	}
}

// Clamp truncates s to at most limit bytes without splitting a rune.
func Clamp(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
