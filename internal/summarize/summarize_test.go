package summarize

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

var blockchainText = strings.Join([]string{
	"Markets opened quietly across several regions today.",
	"Analysts noted that a blockchain pilot launched recently.",
	"Blockchain firms said blockchain adoption drives blockchain growth.",
	"Weather forecasts predicted heavy rain overnight.",
	"Retail sales climbed modestly during the holiday period.",
	"Regulators asked whether blockchain custody rules cover blockchain exchanges and blockchain wallets.",
	"Sports fans celebrated a dramatic late victory.",
	"Energy prices eased slightly after weeks of volatility.",
	"Banks are testing blockchain settlement, blockchain payments, and blockchain identity.",
	"Local officials unveiled new plans about blockchain education.",
}, " ")

func TestSummarize_ShortTextIsEmpty(t *testing.T) {
	out := Summarize("Short.", 6)
	if out == nil {
		t.Fatalf("expected non-nil slice")
	}
	if len(out) != 0 {
		t.Fatalf("expected no sentences, got %q", out)
	}
}

func TestSummarize_EmptyAndWhitespace(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t\r\n", ". . . ! ?"} {
		if out := Summarize(in, 6); len(out) != 0 {
			t.Fatalf("expected empty summary for %q, got %q", in, out)
		}
	}
}

func TestSummarize_ExactlyKReturnsAll(t *testing.T) {
	sentences := []string{
		"The first sentence talks about rivers.",
		"The second sentence talks about mountains.",
		"The third sentence talks about forests.",
		"The fourth sentence talks about deserts.",
		"The fifth sentence talks about oceans.",
		"The sixth sentence talks about glaciers.",
	}
	out := Summarize(strings.Join(sentences, " "), 6)
	if !reflect.DeepEqual(out, sentences) {
		t.Fatalf("expected all six sentences unchanged\nwant %q\ngot  %q", sentences, out)
	}
}

func TestSummarize_SalienceSelectionKeepsDocumentOrder(t *testing.T) {
	segs := Segment(blockchainText)
	if len(segs) != 10 {
		t.Fatalf("expected 10 candidate sentences, got %d", len(segs))
	}
	out := Summarize(blockchainText, 3)
	want := []string{segs[2].Text, segs[5].Text, segs[8].Text}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("unexpected pick\nwant %q\ngot  %q", want, out)
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	a := Summarize(blockchainText, 4)
	b := Summarize(blockchainText, 4)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical output, got %q and %q", a, b)
	}
}

func TestSummarize_BoundAndOrderPreserved(t *testing.T) {
	var parts []string
	for i := 0; i < 25; i++ {
		topic := []string{"solar", "wind", "hydro"}[i%3]
		parts = append(parts, fmt.Sprintf("Report %d covers %s capacity and %s pricing in region %d.", i, topic, topic, i%4))
	}
	text := strings.Join(parts, " ")
	segs := Segment(text)
	for _, k := range []int{1, 3, 6, 10, 40} {
		out := Summarize(text, k)
		limit := k
		if len(segs) < limit {
			limit = len(segs)
		}
		if len(out) > limit {
			t.Fatalf("k=%d: expected at most %d sentences, got %d", k, limit, len(out))
		}
		// out must be a subsequence of segs
		j := 0
		for _, s := range out {
			for j < len(segs) && segs[j].Text != s {
				j++
			}
			if j == len(segs) {
				t.Fatalf("k=%d: output is not an ordered subsequence of the candidates: %q", k, out)
			}
			j++
		}
	}
}

func TestSummarize_DefaultK(t *testing.T) {
	var parts []string
	for i := 0; i < 12; i++ {
		parts = append(parts, fmt.Sprintf("Sentence number %d describes a transcript segment.", i))
	}
	out := Summarize(strings.Join(parts, " "), 0)
	if len(out) != DefaultMaxSentences {
		t.Fatalf("expected %d sentences with k=0, got %d", DefaultMaxSentences, len(out))
	}
}

func TestBullets_TruncatesAndTrims(t *testing.T) {
	in := []string{"  one  ", "two\n", "\tthree", "four"}
	got := Bullets(in, 3)
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %q, got %q", want, got)
	}
	if len(Bullets(nil, 6)) != 0 {
		t.Fatalf("expected empty bullets for nil input")
	}
	if got := Bullets(in, 0); len(got) != 4 {
		t.Fatalf("expected default max to keep 4 bullets, got %d", len(got))
	}
}

func BenchmarkSummarize_LongTranscript(b *testing.B) {
	var parts []string
	for i := 0; i < 400; i++ {
		parts = append(parts, fmt.Sprintf("Speaker %d explains how the index fund tracks market capitalization in segment %d.", i%7, i))
	}
	text := strings.Join(parts, "\n")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Summarize(text, 6)
	}
}
