package chunking

// charsPerToken is the fixed character-to-token ratio behind every sizing
// decision in the engine. Four characters per token tracks what English
// prose averages under common BPE vocabularies.
const charsPerToken = 4

// EstimateTokens approximates the token count of text from its byte
// length. The estimate rounds up, so any non-empty text counts at least
// one token. Callers must treat the result as a sizing heuristic, not as
// real tokenizer output.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}
