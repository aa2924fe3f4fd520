package shape_test

import (
	"strings"
	"testing"

	"github.com/frappeash/lookupbot/internal/provider"
	"github.com/frappeash/lookupbot/internal/shape"
)

const (
	testFooter = "\n\n---\nbot footer"
	testNoData = "❌ No data found."
)

func newShaper() *shape.Shaper {
	return shape.NewShaper(3500, testFooter, testNoData)
}

func TestShapeAbsentPayload(t *testing.T) {
	t.Parallel()

	resp := newShaper().Shape(provider.AbsentPayload, "Number Info")

	if resp.Mode != shape.ModeInline {
		t.Errorf("mode = %s, want inline", resp.Mode)
	}
	if resp.Text != testNoData {
		t.Errorf("text = %q, want the fixed no-data text", resp.Text)
	}
	if resp.Attachment != nil {
		t.Error("absent payload must not produce an attachment")
	}
}

func TestShapeInline(t *testing.T) {
	t.Parallel()

	payload := provider.Payload{Value: map[string]any{
		"name":   "Asha",
		"credit": "provider.co",
	}}

	resp := newShaper().Shape(payload, "TG Info")

	if resp.Mode != shape.ModeInline {
		t.Fatalf("mode = %s, want inline", resp.Mode)
	}
	if resp.Attachment != nil {
		t.Error("inline response must not carry an attachment")
	}
	if !strings.Contains(resp.Text, `"name": "Asha"`) {
		t.Errorf("shaped text missing serialized field: %q", resp.Text)
	}
	if strings.Contains(strings.ToLower(resp.Text), "credit") {
		t.Errorf("attribution key leaked into output: %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "TG Info") {
		t.Error("shaped text missing title header")
	}
	if !strings.HasSuffix(resp.Text, testFooter) {
		t.Error("shaped text missing footer")
	}
}

func TestShapeStripsAttributionVariants(t *testing.T) {
	t.Parallel()

	testCases := []string{
		"credit", "Credit", "CREDIT",
		"owner", "OWNER",
		"api by", "API BY", "Api_By", "api_by",
	}

	for _, key := range testCases {
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			payload := provider.Payload{Value: map[string]any{
				key:    "promo",
				"data": "keep",
			}}

			resp := newShaper().Shape(payload, "Info")

			if strings.Contains(resp.Text, "promo") {
				t.Errorf("value of attribution key %q leaked: %q", key, resp.Text)
			}
			if !strings.Contains(resp.Text, "keep") {
				t.Errorf("legitimate field dropped for key %q", key)
			}
		})
	}
}

func TestShapePreservesNonASCII(t *testing.T) {
	t.Parallel()

	payload := provider.Payload{Value: map[string]any{"नाम": "आशा", "html": "<b>&</b>"}}

	resp := newShaper().Shape(payload, "Info")

	if !strings.Contains(resp.Text, "नाम") || !strings.Contains(resp.Text, "आशा") {
		t.Errorf("non-ASCII characters were escaped: %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "<b>&</b>") {
		t.Errorf("HTML characters were escaped instead of passed through: %q", resp.Text)
	}
	if strings.Contains(resp.Text, `\u003c`) || strings.Contains(resp.Text, `\u0026`) {
		t.Errorf("HTML characters were escaped to code points: %q", resp.Text)
	}
}

func TestShapeThreshold(t *testing.T) {
	t.Parallel()

	t.Run("at limit stays inline", func(t *testing.T) {
		t.Parallel()

		body := strings.Repeat("a", 3500)
		resp := newShaper().Shape(provider.Payload{Value: body}, "Info")

		if resp.Mode != shape.ModeInline {
			t.Errorf("mode = %s, want inline at exactly the limit", resp.Mode)
		}
	})

	t.Run("over limit spills to attachment byte-for-byte", func(t *testing.T) {
		t.Parallel()

		body := strings.Repeat("x", 5000)
		resp := newShaper().Shape(provider.Payload{Value: body}, "Number Info")

		if resp.Mode != shape.ModeAttachment {
			t.Fatalf("mode = %s, want attachment", resp.Mode)
		}
		if resp.Attachment == nil {
			t.Fatal("attachment mode requires an attachment")
		}
		if string(resp.Attachment.Data) != body {
			t.Error("attachment content does not equal the original payload")
		}
		if resp.Attachment.Name != "number_info.txt" {
			t.Errorf("attachment name = %q, want deterministic name from title", resp.Attachment.Name)
		}
		if !strings.Contains(resp.Text, "Number Info") {
			t.Error("caption missing title header")
		}
		if len(resp.Text) > shape.MessageLimit {
			t.Errorf("caption length %d exceeds message limit", len(resp.Text))
		}
	})

	t.Run("structured attachment gets json name", func(t *testing.T) {
		t.Parallel()

		big := map[string]any{"blob": strings.Repeat("y", 4000)}
		resp := newShaper().Shape(provider.Payload{Value: big}, "TG Info")

		if resp.Mode != shape.ModeAttachment {
			t.Fatalf("mode = %s, want attachment", resp.Mode)
		}
		if resp.Attachment.Name != "tg_info.json" {
			t.Errorf("attachment name = %q, want tg_info.json", resp.Attachment.Name)
		}
	})
}

func TestShapeTextNeverExceedsMessageLimit(t *testing.T) {
	t.Parallel()

	// A generous inline limit must still produce clamped text.
	shaper := shape.NewShaper(10000, testFooter, testNoData)
	resp := shaper.Shape(provider.Payload{Value: strings.Repeat("z", 9000)}, "Info")

	if len(resp.Text) > shape.MessageLimit {
		t.Errorf("text length %d exceeds the transport ceiling", len(resp.Text))
	}
}
