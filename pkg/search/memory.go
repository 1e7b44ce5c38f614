package search

import (
	"math"
	"strings"
	"sync"
)

// MemoryIndex is an in-process inverted index.
type MemoryIndex struct {
	mu sync.RWMutex
	// postings maps a term to the weighted term frequency per reference.
	postings map[string]map[string]float64
	// terms lists the distinct terms of each reference, for removal.
	terms map[string][]string
}

// NewMemoryIndex creates an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		postings: make(map[string]map[string]float64),
		terms:    make(map[string][]string),
	}
}

// SetReference implements Index.
func (m *MemoryIndex) SetReference(id string, fields ...string) error {
	weights := make(map[string]float64)
	for i, field := range fields {
		w := fieldWeight(i)
		for _, tok := range Tokenize(field) {
			weights[tok] += w
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(id)
	if len(weights) == 0 {
		// Still counts as indexed so Len reflects every referenced id.
		m.terms[id] = nil
		return nil
	}
	terms := make([]string, 0, len(weights))
	for term, w := range weights {
		docs, ok := m.postings[term]
		if !ok {
			docs = make(map[string]float64)
			m.postings[term] = docs
		}
		docs[id] = w
		terms = append(terms, term)
	}
	m.terms[id] = terms
	return nil
}

// DeleteReference implements Index.
func (m *MemoryIndex) DeleteReference(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(id)
	return nil
}

func (m *MemoryIndex) remove(id string) {
	terms, ok := m.terms[id]
	if !ok {
		return
	}
	for _, term := range terms {
		docs := m.postings[term]
		delete(docs, id)
		if len(docs) == 0 {
			delete(m.postings, term)
		}
	}
	delete(m.terms, id)
}

// Search implements Index. Scores are the sum over query words of weighted
// term frequency times inverse document frequency.
func (m *MemoryIndex) Search(text string) (*Query, error) {
	q := newQuery(text)
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return q, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	total := float64(len(m.terms))
	var acc map[string]float64
	for i, tok := range tokens {
		matched := make(map[string]float64)
		add := func(term string) {
			docs := m.postings[term]
			idf := math.Log(1 + total/float64(len(docs)))
			for id, tf := range docs {
				matched[id] += tf * idf
			}
		}
		if i == len(tokens)-1 {
			for term := range m.postings {
				if strings.HasPrefix(term, tok) {
					add(term)
				}
			}
		} else if _, ok := m.postings[tok]; ok {
			add(tok)
		}

		if acc == nil {
			acc = matched
			continue
		}
		for id, score := range acc {
			s, ok := matched[id]
			if !ok {
				delete(acc, id)
				continue
			}
			acc[id] = score + s
		}
	}
	for id, score := range acc {
		q.Scores[id] = score
	}
	return q, nil
}

// Len implements Index.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.terms)
}

// Close implements Index.
func (m *MemoryIndex) Close() error { return nil }
