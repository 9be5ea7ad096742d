// Package cases builds the deterministic, size-graduated inputs a run sends to the endpoint.
package cases

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mwiater/syncbench/benchmark"
)

// Phrases are the building blocks of every generated prompt.
type Phrases struct {
	Base    string
	Filler  string
	Closing string
}

// DefaultPhrases keeps tags sparse so length, not tag parsing, dominates timing.
var DefaultPhrases = Phrases{
	Base:    `[clear throat] Day zero support on Runpod: "Chatterbox Turbo" by ResembleAI. [chuckle]`,
	Filler:  "Turbo is fast, expressive, and great for real-time voice agents.",
	Closing: "[laugh]",
}

// DefaultWordCounts is the graduated list of target sizes.
var DefaultWordCounts = []int{5, 8, 10, 12, 15, 18, 22, 26, 30, 34, 38, 42, 46, 50, 60, 70, 80, 90, 100, 120}

var newlines = regexp.MustCompile(`[\r\n]+`)

// Generate returns one case per target word count, in the same order, with ids
// case-01, case-02, ... The actual word count may exceed the target.
func Generate(wordCounts []int, p Phrases) []benchmark.Case {
	baseWords := CountWords(p.Base)
	fillerWords := CountWords(p.Filler)

	out := make([]benchmark.Case, 0, len(wordCounts))
	for i, target := range wordCounts {
		repeats := FillerRepeats(target, baseWords, fillerWords)
		text := Normalize(build(p, repeats))
		out = append(out, benchmark.Case{
			ID:          CaseID(i + 1),
			TargetWords: target,
			ActualWords: CountWords(text),
			Text:        text,
		})
	}
	return out
}

// FillerRepeats is the minimal non-negative repeat count with
// base + repeats*filler >= target.
func FillerRepeats(target, baseWords, fillerWords int) int {
	if fillerWords <= 0 || target <= baseWords {
		return 0
	}
	missing := target - baseWords
	return (missing + fillerWords - 1) / fillerWords
}

// CaseID formats a stable, sortable case identifier.
func CaseID(n int) string {
	return fmt.Sprintf("case-%02d", n)
}

// Normalize collapses newlines to single spaces, matching how the endpoint treats input.
func Normalize(text string) string {
	return newlines.ReplaceAllString(text, " ")
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

func build(p Phrases, repeats int) string {
	parts := []string{p.Base}
	for i := 0; i < repeats; i++ {
		parts = append(parts, p.Filler)
	}
	if p.Closing != "" {
		parts = append(parts, p.Closing)
	}
	return strings.Join(parts, " ")
}
