/**
 * Copyright (c) 2019, The GraphQL Modules Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package util

import (
	"sort"
	"strings"
)

type suggestionListSorter struct {
	options   []string
	distances []int
}

var _ sort.Interface = (*suggestionListSorter)(nil)

// Len implements sort.Interface.
func (s *suggestionListSorter) Len() int {
	return len(s.options)
}

// Swap implements sort.Interface.
func (s *suggestionListSorter) Swap(i, j int) {
	s.options[i], s.options[j] = s.options[j], s.options[i]
	s.distances[i], s.distances[j] = s.distances[j], s.distances[i]
}

// Less implements sort.Interface.
func (s *suggestionListSorter) Less(i, j int) bool {
	return s.distances[i] < s.distances[j]
}

// SuggestionList given an invalid input string and a list of valid options, returns a filtered
// list of valid options sorted based on their similarity with the input. Options at the same
// distance keep their original relative order.
func SuggestionList(input string, options []string) []string {
	if len(options) == 0 {
		return nil
	}

	var (
		suggestions []string
		distances   []int
	)
	inputThreshold := len(input) / 2
	for _, option := range options {
		threshold := inputThreshold
		if optionThreshold := len(option) / 2; optionThreshold > threshold {
			threshold = optionThreshold
		}
		if threshold < 1 {
			threshold = 1
		}
		if distance := lexicalDistance(input, option); distance <= threshold {
			suggestions = append(suggestions, option)
			distances = append(distances, distance)
		}
	}

	sort.Stable(&suggestionListSorter{suggestions, distances})
	return suggestions
}

// lexicalDistance computes the Damerau-Levenshtein distance between a and b: the minimum number
// of single-character insertions, deletions, substitutions, or adjacent swaps needed to transform
// one into the other. A pure case change counts as a single edit, which helps surface mis-cased
// names with a distance of 1.
func lexicalDistance(aStr string, bStr string) int {
	if aStr == bStr {
		return 0
	}

	a := strings.ToLower(aStr)
	b := strings.ToLower(bStr)
	if a == b {
		return 1
	}

	aLength := len(a)
	bLength := len(b)
	d := make([][]int, aLength+1)
	for i := 0; i <= aLength; i++ {
		d[i] = make([]int, bLength+1)
		d[i][0] = i
	}
	for j := 1; j <= bLength; j++ {
		d[0][j] = j
	}

	for i := 1; i <= aLength; i++ {
		for j := 1; j <= bLength; j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			min := d[i-1][j] + 1
			if deletion := d[i][j-1] + 1; deletion < min {
				min = deletion
			}
			if substitution := d[i-1][j-1] + cost; substitution < min {
				min = substitution
			}
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if swap := d[i-2][j-2] + cost; swap < min {
					min = swap
				}
			}

			d[i][j] = min
		}
	}

	return d[aLength][bLength]
}
