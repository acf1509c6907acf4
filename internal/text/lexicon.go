// Package text provides a simple, deterministic, concurrency-safe text
// analysis toolkit for wellness content: tokenization with stop-word removal,
// lexicon-based sentiment scoring, and keyword-set theme extraction.
//
// The package holds no mutable state: the stop-word list, sentiment lexicons,
// and theme keyword sets below are read-only and loaded at init, so every
// function here is safe for concurrent use and yields the same output for the
// same input.
package text

// stopwords are dropped during tokenization. The list is short and biased
// toward English function words that carry no sentiment or theme signal.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
		"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
		"how", "man", "new", "now", "old", "see", "two", "way", "who", "did",
		"its", "let", "put", "say", "she", "too", "use", "that", "with",
		"have", "this", "will", "your", "from", "they", "know", "want",
		"been", "good", "much", "some", "time", "very", "when", "come",
		"here", "just", "like", "long", "make", "many", "more", "only",
		"over", "such", "take", "than", "them", "well", "were", "what",
		"about", "after", "again", "also", "because", "before", "being",
		"between", "both", "during", "each", "into", "other", "their",
		"there", "these", "things", "think", "those", "through", "today",
		"under", "while", "would", "could", "should", "really", "going",
		"still", "feel", "feels", "felt", "feeling", "bit", "lot", "got",
	} {
		stopwords[w] = struct{}{}
	}
}

// positiveWords is the positive sentiment lexicon.
var positiveWords = map[string]struct{}{}

// negativeWords is the negative sentiment lexicon.
var negativeWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"happy", "great", "excellent", "amazing", "wonderful", "fantastic",
		"love", "loved", "enjoy", "enjoyed", "excited", "exciting", "proud",
		"grateful", "thankful", "appreciate", "appreciated", "positive",
		"productive", "motivated", "energized", "calm", "relaxed", "peaceful",
		"supportive", "supported", "helpful", "fun", "awesome", "success",
		"successful", "accomplished", "achievement", "progress", "improved",
		"improving", "better", "best", "glad", "pleased", "satisfied",
		"confident", "optimistic", "inspired", "recognition", "recognized",
		"rewarding", "balanced", "healthy", "thriving", "celebrated", "win",
	} {
		positiveWords[w] = struct{}{}
	}
	for _, w := range []string{
		"sad", "bad", "terrible", "awful", "horrible", "hate", "hated",
		"angry", "frustrated", "frustrating", "frustration", "stressed",
		"stress", "stressful", "anxious", "anxiety", "worried", "worry",
		"exhausted", "exhausting", "tired", "burnout", "burned", "overwhelmed",
		"overwhelming", "overworked", "pressure", "pressured", "depressed",
		"depressing", "lonely", "isolated", "ignored", "unfair", "unhappy",
		"miserable", "difficult", "struggle", "struggling", "failing",
		"failure", "failed", "toxic", "conflict", "argument", "blame",
		"blamed", "disappointed", "disappointing", "hopeless", "worthless",
		"drained", "deadline", "deadlines", "micromanaged", "undervalued",
	} {
		negativeWords[w] = struct{}{}
	}
}

// themeKeywords maps a theme name to its keyword set. Confidence is the
// fraction of a theme's keywords that appear in the token stream.
var themeKeywords = map[string][]string{
	"workload": {
		"workload", "overtime", "deadline", "deadlines", "busy", "overworked",
		"hours", "shifts", "capacity", "backlog",
	},
	"recognition": {
		"recognition", "recognized", "appreciated", "appreciation", "praise",
		"credit", "valued", "undervalued", "reward", "bonus",
	},
	"growth": {
		"growth", "learning", "training", "career", "promotion", "mentor",
		"skills", "development", "opportunity", "course",
	},
	"management": {
		"manager", "management", "leadership", "micromanaged", "direction",
		"feedback", "communication", "transparency", "decisions", "trust",
	},
	"team": {
		"team", "teamwork", "colleagues", "collaboration", "coworkers",
		"together", "support", "supportive", "conflict", "morale",
	},
	"balance": {
		"balance", "family", "vacation", "holiday", "rest", "sleep",
		"flexible", "remote", "commute", "weekend",
	},
	"compensation": {
		"salary", "pay", "compensation", "raise", "benefits", "bonus",
		"equity", "insurance", "pension", "underpaid",
	},
}
