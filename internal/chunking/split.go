package chunking

import "strings"

// separators is the split-point hierarchy, most to least semantic:
// paragraph break, line break, sentence end, word boundary. Coarser
// boundaries come first because they preserve more topical coherence
// per segment.
var separators = []string{"\n\n", "\n", ". ", " "}

// splitText splits text into trimmed, non-empty segments of at most budget
// characters, preferring the earliest separator in the hierarchy that makes
// progress. Pieces still over budget recurse with the remaining, finer
// separators; once the hierarchy is exhausted the word-boundary fallback
// takes over, so recursion depth never exceeds the hierarchy length. The
// budget must be positive.
func splitText(text string, budget int, seps []string) []string {
	if budget <= 0 {
		panic("chunking: split budget must be positive")
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= budget {
		return []string{trimmed}
	}
	if len(seps) == 0 {
		return splitWords(trimmed, budget)
	}

	sep := seps[0]
	pieces := strings.Split(trimmed, sep)

	var segments []string
	var current string

	flush := func() {
		if s := strings.TrimSpace(current); s != "" {
			segments = append(segments, s)
		}
		current = ""
	}

	for _, piece := range pieces {
		candidate := piece
		if current != "" {
			candidate = current + sep + piece
		}
		if len(candidate) <= budget {
			current = candidate
			continue
		}

		flush()
		if len(piece) > budget {
			segments = append(segments, splitText(piece, budget, seps[1:])...)
			continue
		}
		current = piece
	}
	flush()

	return segments
}

// splitWords is the terminal fallback: greedy word packing into segments,
// with single words beyond the budget hard-split at the character level.
func splitWords(text string, budget int) []string {
	var segments []string
	var current string

	for _, word := range strings.Fields(text) {
		if len(word) > budget {
			if current != "" {
				segments = append(segments, current)
				current = ""
			}
			segments = append(segments, hardSplit(word, budget)...)
			continue
		}

		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= budget:
			current += " " + word
		default:
			segments = append(segments, current)
			current = word
		}
	}
	if current != "" {
		segments = append(segments, current)
	}

	return segments
}

// hardSplit cuts one oversized word into budget-sized runs; only the final
// run may be shorter.
func hardSplit(word string, budget int) []string {
	var parts []string
	for len(word) > budget {
		parts = append(parts, word[:budget])
		word = word[budget:]
	}
	if word != "" {
		parts = append(parts, word)
	}
	return parts
}
