package text

import "strings"

// Window splits a corpus into overlapping word windows. Successive windows
// start at offsets 0, step, 2*step, ... where step = max(1, words-overlap),
// each containing up to `words` consecutive whitespace-delimited words joined
// by single spaces. Windows shorter than minChars are dropped rather than
// padded, so the tail of the corpus may not survive the filter.
//
// The function is pure: identical input always produces the identical
// sequence, in corpus order.
func Window(corpus string, words, overlap, minChars int) []string {
	fields := strings.Fields(corpus)
	if len(fields) == 0 {
		return nil
	}

	step := words - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for start := 0; start < len(fields); start += step {
		end := start + words
		if end > len(fields) {
			end = len(fields)
		}
		chunk := strings.Join(fields[start:end], " ")
		if len(chunk) >= minChars {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// Dropped reports how many windows the minChars filter would discard for the
// given corpus and parameters. Ingestion logs this so silently-filtered tail
// fragments are visible to operators.
func Dropped(corpus string, words, overlap, minChars int) int {
	total := len(Window(corpus, words, overlap, 0))
	kept := len(Window(corpus, words, overlap, minChars))
	return total - kept
}
