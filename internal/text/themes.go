package text

import "sort"

// Theme is a matched theme with its confidence in (0, 1].
type Theme struct {
	Name       string
	Confidence float64
}

// ExtractThemes matches tokens against the predefined theme keyword sets.
// Confidence is matchedKeywordsInTheme / totalKeywordsInTheme (distinct
// keywords, so repeating a word does not inflate confidence). Results are
// sorted by confidence descending, then name ascending for determinism.
func ExtractThemes(tokens []string) []Theme {
	if len(tokens) == 0 {
		return nil
	}
	present := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		present[t] = struct{}{}
	}

	var out []Theme
	for name, keywords := range themeKeywords {
		matched := 0
		for _, kw := range keywords {
			if _, ok := present[kw]; ok {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		out = append(out, Theme{
			Name:       name,
			Confidence: float64(matched) / float64(len(keywords)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ThemeNames returns the known theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themeKeywords))
	for name := range themeKeywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
