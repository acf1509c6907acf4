package text

// Sentiment labels, from most negative to most positive.
const (
	LabelVeryNegative = "very_negative"
	LabelNegative     = "negative"
	LabelNeutral      = "neutral"
	LabelPositive     = "positive"
	LabelVeryPositive = "very_positive"
)

// Score computes a deterministic lexicon sentiment score in [-1, 1] for the
// token stream: clip((pos-neg)/max(1,len) * 10, -1, 1). Empty input scores 0.
func Score(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var pos, neg int
	for _, t := range tokens {
		if _, ok := positiveWords[t]; ok {
			pos++
		}
		if _, ok := negativeWords[t]; ok {
			neg++
		}
	}
	score := float64(pos-neg) / float64(len(tokens)) * 10
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// Label maps a score to its sentiment label. Thresholds: very_negative
// below -0.5, negative below -0.1, neutral up to 0.1, positive up to 0.5,
// very_positive above.
func Label(score float64) string {
	switch {
	case score < -0.5:
		return LabelVeryNegative
	case score < -0.1:
		return LabelNegative
	case score <= 0.1:
		return LabelNeutral
	case score <= 0.5:
		return LabelPositive
	default:
		return LabelVeryPositive
	}
}

// WordSentiment classifies a single token against the lexicons.
func WordSentiment(w string) string {
	if _, ok := positiveWords[w]; ok {
		return "positive"
	}
	if _, ok := negativeWords[w]; ok {
		return "negative"
	}
	return "neutral"
}
