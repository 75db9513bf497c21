// Package tracker records which words of a fixed dictionary have been seen.
//
// The dictionary is sorted once at construction so that membership tests are
// binary searches. Duplicate dictionary words are collapsed into a single
// entry, so repeating a word can never be required to complete the dictionary.
package tracker

import (
	"slices"
)

// Tracker tracks encounters of the words of a fixed dictionary.
// It is not safe for concurrent use; a search owns its Tracker exclusively.
type Tracker struct {
	words []string // sorted, deduplicated dictionary
	seen  []bool   // seen[i] reports whether words[i] was encountered since the last reset
	found int      // number of true entries in seen
}

// New builds a Tracker for the given dictionary. The slice is copied; later
// changes to words do not affect the Tracker.
func New(words []string) *Tracker {
	sorted := slices.Clone(words)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	return &Tracker{
		words: sorted,
		seen:  make([]bool, len(sorted)),
	}
}

// search returns the index of word in the dictionary, or -1.
func (t *Tracker) search(word string) int {
	left, right := 0, len(t.words)-1
	for left <= right {
		middle := left + (right-left)/2
		switch current := t.words[middle]; {
		case current == word:
			return middle
		case current > word:
			right = middle - 1
		default:
			left = middle + 1
		}
	}
	return -1
}

// Contains reports whether word is in the dictionary in O(log n) comparisons.
func (t *Tracker) Contains(word string) bool {
	return t.search(word) >= 0
}

// Encounter records that word was seen. It returns true if word is in the
// dictionary; otherwise it returns false and changes nothing.
func (t *Tracker) Encounter(word string) bool {
	i := t.search(word)
	if i < 0 {
		return false
	}
	if !t.seen[i] {
		t.seen[i] = true
		t.found++
	}
	return true
}

// EncounteredAll reports whether every dictionary word was encountered since
// the last reset. It is true for an empty dictionary.
func (t *Tracker) EncounteredAll() bool {
	return t.found == len(t.seen)
}

// Reset forgets all encounters.
func (t *Tracker) Reset() {
	clear(t.seen)
	t.found = 0
}

// Len returns the number of distinct dictionary words.
func (t *Tracker) Len() int {
	return len(t.words)
}

// SeenCount returns how many distinct dictionary words were encountered since
// the last reset.
func (t *Tracker) SeenCount() int {
	return t.found
}

// Words returns the dictionary in sorted order.
func (t *Tracker) Words() []string {
	return slices.Clone(t.words)
}

// Missing returns the dictionary words not yet encountered, in sorted order.
func (t *Tracker) Missing() []string {
	missing := make([]string, 0, len(t.words)-t.found)
	for i, word := range t.words {
		if !t.seen[i] {
			missing = append(missing, word)
		}
	}
	return missing
}
