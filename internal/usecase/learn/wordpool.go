package learn

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/pkg/textmatch"
)

// Groups of interchangeable function words. Any member suggests the others
// as distractors.
var substitutionGroups = [][]string{
	{"a", "an", "the"},
	{"at", "in", "on"},
	{"is", "are", "was", "were"},
	{"do", "does", "did"},
	{"some", "any"},
}

var substitutions = buildSubstitutions(substitutionGroups)

func buildSubstitutions(groups [][]string) map[string][]string {
	out := make(map[string][]string)
	for _, group := range groups {
		for _, word := range group {
			out[word] = lo.Filter(group, func(alt string, _ int) bool { return alt != word })
		}
	}
	return out
}

// PoolInput describes the card a word pool is built for.
type PoolInput struct {
	CorrectAnswer   string
	Siblings        []entity.Phrase
	CurrentPhraseID int64
	Direction       entity.Direction
}

// distractorTarget is how many wrong tokens a pool aims for.
func distractorTarget(correctCount int) int {
	if correctCount <= 2 {
		return max(4-correctCount, 2)
	}
	return 3
}

// BuildWordPool returns the shuffled tokens offered for a word bank card:
// every correct token (repeats included) plus distractors. A small corpus
// yields a smaller pool rather than an error.
func BuildWordPool(in PoolInput, rng *rand.Rand) []string {
	correct := textmatch.Tokenize(in.CorrectAnswer)
	target := distractorTarget(len(correct))

	taken := make(map[string]struct{}, len(correct)+target)
	for _, tok := range correct {
		taken[strings.ToLower(tok)] = struct{}{}
	}

	distractors := heuristicDistractors(correct, taken)
	if need := target - len(distractors); need > 0 {
		distractors = append(distractors, corpusDistractors(in, correct, taken, need)...)
	}

	pool := make([]string, 0, len(correct)+len(distractors))
	pool = append(pool, correct...)
	pool = append(pool, distractors...)
	return shuffled(pool, rng)
}

// heuristicDistractors adds every substitution alternative for the correct
// tokens. The target only bounds the corpus fill that follows.
func heuristicDistractors(correct []string, taken map[string]struct{}) []string {
	var out []string
	distinct := lo.UniqBy(correct, strings.ToLower)
	for _, tok := range distinct {
		for _, alt := range substitutions[strings.ToLower(tok)] {
			if _, ok := taken[alt]; ok {
				continue
			}
			taken[alt] = struct{}{}
			out = append(out, matchCase(alt, tok))
		}
	}
	return out
}

func corpusDistractors(in PoolInput, correct []string, taken map[string]struct{}, need int) []string {
	var candidates []string
	for _, p := range in.Siblings {
		if p.ID == in.CurrentPhraseID {
			continue
		}
		for _, tok := range textmatch.Tokenize(p.Answer(in.Direction)) {
			key := strings.ToLower(tok)
			if _, ok := taken[key]; ok {
				continue
			}
			taken[key] = struct{}{}
			candidates = append(candidates, tok)
		}
	}

	avg := averageLength(correct)
	sort.SliceStable(candidates, func(i, j int) bool {
		return lengthDistance(candidates[i], avg) < lengthDistance(candidates[j], avg)
	})
	if len(candidates) > need {
		candidates = candidates[:need]
	}
	return candidates
}

func averageLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	total := lo.Reduce(tokens, func(acc int, tok string, _ int) int {
		return acc + utf8.RuneCountInString(tok)
	}, 0)
	return float64(total) / float64(len(tokens))
}

func lengthDistance(tok string, avg float64) float64 {
	return math.Abs(float64(utf8.RuneCountInString(tok)) - avg)
}

// matchCase capitalizes alt when the token it replaces starts upper case.
func matchCase(alt, like string) string {
	first, _ := utf8.DecodeRuneInString(like)
	if !unicode.IsUpper(first) {
		return alt
	}
	r, size := utf8.DecodeRuneInString(alt)
	return string(unicode.ToUpper(r)) + alt[size:]
}

// Tile is one slot of a word pool as shown to the learner.
type Tile struct {
	Text string `json:"text"`
	Used bool   `json:"used"`
}

// TokenBank tracks which pool tokens are still selectable. Repeated words
// are counted per distinct string, so selecting one "the" leaves the other
// available.
type TokenBank struct {
	pool      []string
	available map[string]int
	selected  []string
}

// NewTokenBank creates a bank over a built pool.
func NewTokenBank(pool []string) *TokenBank {
	b := &TokenBank{pool: append([]string(nil), pool...)}
	b.Reset()
	return b
}

// Reset returns every token to the pool.
func (b *TokenBank) Reset() {
	b.available = make(map[string]int, len(b.pool))
	for _, tok := range b.pool {
		b.available[tok]++
	}
	b.selected = nil
}

// Pool returns the tokens in display order.
func (b *TokenBank) Pool() []string { return append([]string(nil), b.pool...) }

// Selected returns the tokens picked so far, in order.
func (b *TokenBank) Selected() []string { return append([]string(nil), b.selected...) }

// Available reports how many copies of token can still be picked.
func (b *TokenBank) Available(token string) int { return b.available[token] }

// Select appends token to the answer.
func (b *TokenBank) Select(token string) error {
	if b.available[token] == 0 {
		return fmt.Errorf("%w: %q", entity.ErrTokenUnavailable, token)
	}
	b.available[token]--
	b.selected = append(b.selected, token)
	return nil
}

// Remove takes the selected token at index back into the pool.
func (b *TokenBank) Remove(index int) (string, error) {
	if index < 0 || index >= len(b.selected) {
		return "", fmt.Errorf("%w: no selected token at index %d", entity.ErrTokenUnavailable, index)
	}
	tok := b.selected[index]
	b.selected = append(b.selected[:index], b.selected[index+1:]...)
	b.available[tok]++
	return tok, nil
}

// Tiles marks pool slots as used, earliest occurrence first, so duplicate
// words render independently.
func (b *TokenBank) Tiles() []Tile {
	used := make(map[string]int, len(b.selected))
	for _, tok := range b.selected {
		used[tok]++
	}
	tiles := make([]Tile, len(b.pool))
	for i, tok := range b.pool {
		tiles[i] = Tile{Text: tok}
		if used[tok] > 0 {
			tiles[i].Used = true
			used[tok]--
		}
	}
	return tiles
}
