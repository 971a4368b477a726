// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// minOverviewTokenLen drops connective noise ("a", "of", "to") from
// overview text without a stopword list.
const minOverviewTokenLen = 3

// Vectorize converts a catalog snapshot into dense L2-normalized TF-IDF
// feature vectors sharing one vocabulary. The mapping is deterministic:
// the same catalog always yields the same vectors regardless of input
// order, so index rebuilds are reproducible.
//
// Structured fields are prefixed so "Crime" the genre and "crime" the
// overview word occupy different dimensions. Movies whose metadata yields
// no tokens get a zero vector and score 0 against everything.
func Vectorize(catalog []Movie) (map[int64]FeatureVector, error) {
	if len(catalog) == 0 {
		return nil, &InsufficientDataError{Reason: "empty catalog"}
	}

	// Term frequencies per movie and document frequencies per token.
	termCounts := make(map[int64]map[string]int, len(catalog))
	docFreq := make(map[string]int)
	for _, m := range catalog {
		counts := make(map[string]int)
		for _, tok := range tokenize(m) {
			counts[tok]++
		}
		termCounts[m.ID] = counts
		for tok := range counts {
			docFreq[tok]++
		}
	}

	// Sorted vocabulary fixes the dimension order.
	vocab := make([]string, 0, len(docFreq))
	for tok := range docFreq {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	n := float64(len(catalog))
	idf := make([]float64, len(vocab))
	for i, tok := range vocab {
		idf[i] = math.Log(n/(1+float64(docFreq[tok]))) + 1
	}

	vectors := make(map[int64]FeatureVector, len(catalog))
	for id, counts := range termCounts {
		vec := make(FeatureVector, len(vocab))
		if len(counts) == 0 {
			vectors[id] = vec
			continue
		}
		total := 0
		for _, c := range counts {
			total += c
		}
		for i, tok := range vocab {
			if c, ok := counts[tok]; ok {
				vec[i] = (float64(c) / float64(total)) * idf[i]
			}
		}
		normalize(vec)
		vectors[id] = vec
	}
	return vectors, nil
}

func tokenize(m Movie) []string {
	var toks []string
	appendPrefixed := func(prefix string, values []string) {
		for _, v := range values {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" {
				toks = append(toks, prefix+v)
			}
		}
	}
	appendPrefixed("genre:", m.Genres)
	appendPrefixed("kw:", m.Keywords)
	appendPrefixed("cast:", m.Cast)
	appendPrefixed("dir:", m.Directors)

	for _, w := range splitWords(m.Overview) {
		if len(w) >= minOverviewTokenLen {
			toks = append(toks, w)
		}
	}
	return toks
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// normalize scales vec to unit length in place. Zero vectors stay zero,
// which makes cosine similarity a plain dot product everywhere else.
func normalize(vec FeatureVector) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
