// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package cache

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeywordMatcher is an Aho-Corasick automaton over a fixed keyword table.
//
// It finds every keyword occurring in a text in a single pass. Keywords keep
// their insertion order as a priority, so callers can express both
// "first table entry wins" (First) and "longest keyword wins" (Longest)
// lookups over the same automaton.
//
// Matching is case-insensitive. An optional Fold function (for example an
// accent-stripping transform) is applied to keywords and texts alike.
//
// A KeywordMatcher is immutable after Build and safe for concurrent use.
//
// Example:
//
//	m := cache.NewKeywordMatcher(nil)
//	m.Add("mercat", "market")
//	m.AddWord("bar", "restaurant")
//	m.Build()
//
//	hit, ok := m.First("Bar Celta Pulperia")
//	// hit.Data == "restaurant"
type KeywordMatcher struct {
	root     *acNode
	keywords []Keyword
	fold     func(string) string
	built    bool
}

// Keyword is a table entry with associated data.
type Keyword struct {
	Text string
	Data any

	// WholeWord requires the match to be bounded by non-letters.
	WholeWord bool

	folded string
}

// KeywordMatch is one occurrence of a keyword in a text.
type KeywordMatch struct {
	Keyword  string
	Data     any
	Priority int
	Position int
}

type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int
}

// NewKeywordMatcher creates an empty matcher. fold may be nil.
func NewKeywordMatcher(fold func(string) string) *KeywordMatcher {
	return &KeywordMatcher{
		root: newACNode(),
		fold: fold,
	}
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// Add appends a substring keyword. Empty keywords are ignored.
func (m *KeywordMatcher) Add(text string, data any) {
	m.add(Keyword{Text: text, Data: data})
}

// AddWord appends a keyword that only matches as a whole word.
func (m *KeywordMatcher) AddWord(text string, data any) {
	m.add(Keyword{Text: text, Data: data, WholeWord: true})
}

func (m *KeywordMatcher) add(k Keyword) {
	k.folded = m.normalize(k.Text)
	if k.folded == "" {
		return
	}
	m.keywords = append(m.keywords, k)
	m.built = false
}

// Build constructs the automaton. It must be called after the last Add.
func (m *KeywordMatcher) Build() *KeywordMatcher {
	if m.built {
		return m
	}

	m.root = newACNode()
	for i, k := range m.keywords {
		node := m.root
		for _, ch := range k.folded {
			next := node.children[ch]
			if next == nil {
				next = newACNode()
				node.children[ch] = next
			}
			node = next
		}
		node.output = append(node.output, i)
	}

	// Failure links, breadth first.
	queue := make([]*acNode, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = m.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}

	m.built = true
	return m
}

// Len returns the number of keywords.
func (m *KeywordMatcher) Len() int {
	return len(m.keywords)
}

func (m *KeywordMatcher) normalize(s string) string {
	if m.fold != nil {
		s = m.fold(s)
	}
	return strings.ToLower(s)
}

// All returns every keyword occurrence in text, in text order.
func (m *KeywordMatcher) All(text string) []KeywordMatch {
	if !m.built || len(m.keywords) == 0 {
		return nil
	}

	s := m.normalize(text)
	var matches []KeywordMatch
	node := m.root

	for i, ch := range s {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = m.root
			continue
		}
		node = node.children[ch]

		end := i + utf8.RuneLen(ch)
		for _, idx := range node.output {
			k := m.keywords[idx]
			start := end - len(k.folded)
			if k.WholeWord && !wordBounded(s, start, end) {
				continue
			}
			matches = append(matches, KeywordMatch{
				Keyword:  k.Text,
				Data:     k.Data,
				Priority: idx,
				Position: start,
			})
		}
	}

	return matches
}

// First returns the match whose keyword was added earliest.
func (m *KeywordMatcher) First(text string) (KeywordMatch, bool) {
	matches := m.All(text)
	if len(matches) == 0 {
		return KeywordMatch{}, false
	}
	best := matches[0]
	for _, mt := range matches[1:] {
		if mt.Priority < best.Priority {
			best = mt
		}
	}
	return best, true
}

// Longest returns the match with the longest keyword. Ties go to the
// earlier keyword.
func (m *KeywordMatcher) Longest(text string) (KeywordMatch, bool) {
	matches := m.All(text)
	if len(matches) == 0 {
		return KeywordMatch{}, false
	}
	best := matches[0]
	bestLen := len(m.keywords[best.Priority].folded)
	for _, mt := range matches[1:] {
		l := len(m.keywords[mt.Priority].folded)
		if l > bestLen || (l == bestLen && mt.Priority < best.Priority) {
			best, bestLen = mt, l
		}
	}
	return best, true
}

// Contains reports whether any keyword occurs in text.
func (m *KeywordMatcher) Contains(text string) bool {
	return len(m.All(text)) > 0
}

func wordBounded(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
