package openrouter

import "testing"

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First one. Second two! Third three?")
	if len(got) != 3 {
		t.Fatalf("SplitSentences() returned %d sentences, want 3: %v", len(got), got)
	}
	if got[0] != "First one." || got[1] != "Second two!" || got[2] != "Third three?" {
		t.Errorf("SplitSentences() = %v", got)
	}
}

func TestSplitSentencesCollapsesWhitespace(t *testing.T) {
	got := SplitSentences("  One.\n\nTwo.\tThree.  ")
	if len(got) != 3 {
		t.Errorf("SplitSentences() returned %d sentences, want 3: %v", len(got), got)
	}
}

func TestSplitSentencesDoesNotSplitDecimals(t *testing.T) {
	got := SplitSentences("The model scored 92.5 on the benchmark.")
	if len(got) != 1 {
		t.Errorf("SplitSentences() returned %d sentences, want 1: %v", len(got), got)
	}
}

func TestSplitSentencesEmpty(t *testing.T) {
	if got := SplitSentences("   "); got != nil {
		t.Errorf("SplitSentences(blank) = %v, want nil", got)
	}
}

func TestEnforceSentenceCountTruncates(t *testing.T) {
	got := EnforceSentenceCount("One. Two. Three. Four. Five.", 3)
	want := "One. Two. Three."
	if got != want {
		t.Errorf("EnforceSentenceCount() = %q, want %q", got, want)
	}
}

func TestEnforceSentenceCountPads(t *testing.T) {
	got := EnforceSentenceCount("Only one here.", 3)
	sentences := SplitSentences(got)
	if len(sentences) != 3 {
		t.Fatalf("padded result has %d sentences, want 3: %q", len(sentences), got)
	}
	if sentences[0] != "Only one here." {
		t.Errorf("first sentence = %q, want the original", sentences[0])
	}
	if sentences[1] != fallbackSentences[1] {
		t.Errorf("second sentence = %q, want filler %q", sentences[1], fallbackSentences[1])
	}
}

func TestEnforceSentenceCountExact(t *testing.T) {
	input := "One. Two. Three."
	if got := EnforceSentenceCount(input, 3); got != input {
		t.Errorf("EnforceSentenceCount() = %q, want unchanged %q", got, input)
	}
}
