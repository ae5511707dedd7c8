// Package textmatch holds the pure text routines behind answer checking:
// normalization, comparison policies, tokenization and word-level diffs.
//
// Every function is deterministic and free of side effects, so the same
// result is produced wherever an answer is evaluated.
//
//	res := textmatch.Compare("Dog.", "dog", textmatch.Exact)
//	// res.IsCorrect == true, res.NormalizedUser == "dog"
package textmatch
