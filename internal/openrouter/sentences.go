package openrouter

import "strings"

// Filler sentences used to pad summaries that come back too short.
var fallbackSentences = []string{
	"This update is relevant to current AI developments.",
	"The linked source provides additional technical and business context.",
	"Read the full article for complete details and implications.",
}

// SplitSentences collapses whitespace and splits on sentence terminators
// followed by a space.
func SplitSentences(text string) []string {
	cleaned := strings.Join(strings.Fields(text), " ")
	if cleaned == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i+1 < len(cleaned); i++ {
		c := cleaned[i]
		if (c == '.' || c == '!' || c == '?') && cleaned[i+1] == ' ' {
			if part := strings.TrimSpace(cleaned[start : i+1]); part != "" {
				sentences = append(sentences, part)
			}
			start = i + 2
		}
	}
	if part := strings.TrimSpace(cleaned[start:]); part != "" {
		sentences = append(sentences, part)
	}
	return sentences
}

// EnforceSentenceCount returns exactly count sentences: longer input is
// truncated, shorter input is padded with the fixed filler sentences.
func EnforceSentenceCount(text string, count int) string {
	sentences := SplitSentences(text)
	if len(sentences) >= count {
		return strings.Join(sentences[:count], " ")
	}

	for len(sentences) < count {
		sentences = append(sentences, fallbackSentences[len(sentences)%len(fallbackSentences)])
	}
	return strings.Join(sentences[:count], " ")
}
