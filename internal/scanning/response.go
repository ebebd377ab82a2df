package scanning

import "strings"

// cleanTranscription normalizes a model response into plain transcription
// text. Vision models routinely wrap their output in markdown code fences
// even when asked for plain text.
func cleanTranscription(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
