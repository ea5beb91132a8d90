package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlainText_StripsTagsAndEntities(t *testing.T) {
	in := `<p>Prices <b>rose</b>&nbsp;3% &amp; stocks fell.</p><p>Second&#39;s para</p>`
	got := PlainText(in)
	want := "Prices rose 3% & stocks fell. Second's para"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if PlainText("   ") != "" {
		t.Fatalf("expected empty string for blank input")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 280); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	long := strings.Repeat("é", 300)
	got := Truncate(long, 280)
	if utf8.RuneCountInString(got) != 280 {
		t.Fatalf("expected 280 runes, got %d", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected trailing ellipsis, got %q", got[len(got)-8:])
	}
}
