// Package rerank reorders a small in-memory candidate set by lexical
// term-overlap against a query. Classic BM25 (Okapi variant) over per-call
// corpora; nothing is indexed or persisted.
package rerank

import (
	"math"
	"sort"
	"strings"
)

const (
	k1      = 1.5
	b       = 0.75
	epsilon = 0.25
)

// BM25 holds the per-corpus statistics for one rerank call
type BM25 struct {
	corpus    [][]string
	docLens   []int
	avgDocLen float64
	termFreqs []map[string]int
	idf       map[string]float64
}

// New builds BM25 statistics over a tokenized corpus
func New(corpus [][]string) *BM25 {
	bm := &BM25{
		corpus:    corpus,
		docLens:   make([]int, len(corpus)),
		termFreqs: make([]map[string]int, len(corpus)),
		idf:       make(map[string]float64),
	}

	totalLen := 0
	docFreq := make(map[string]int)
	for i, doc := range corpus {
		bm.docLens[i] = len(doc)
		totalLen += len(doc)

		freqs := make(map[string]int, len(doc))
		for _, term := range doc {
			freqs[term]++
		}
		bm.termFreqs[i] = freqs
		for term := range freqs {
			docFreq[term]++
		}
	}
	if len(corpus) > 0 {
		bm.avgDocLen = float64(totalLen) / float64(len(corpus))
	}

	// Okapi IDF with negative values floored to a fraction of the average,
	// matching the common rank_bm25 behavior for very frequent terms.
	n := float64(len(corpus))
	idfSum := 0.0
	var negative []string
	for term, df := range docFreq {
		idf := math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
		bm.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	if len(docFreq) > 0 {
		floor := epsilon * idfSum / float64(len(docFreq))
		for _, term := range negative {
			bm.idf[term] = floor
		}
	}

	return bm
}

// Scores returns the BM25 score of every corpus document against the query
func (bm *BM25) Scores(query []string) []float64 {
	scores := make([]float64, len(bm.corpus))
	for i := range bm.corpus {
		dl := float64(bm.docLens[i])
		norm := k1 * (1 - b + b*dl/bm.avgDocLen)
		for _, term := range query {
			f := float64(bm.termFreqs[i][term])
			if f == 0 {
				continue
			}
			scores[i] += bm.idf[term] * f * (k1 + 1) / (f + norm)
		}
	}
	return scores
}

// TopN returns the indices of the n best-scoring documents, best first.
// n larger than the corpus returns every index.
func (bm *BM25) TopN(query []string, n int) []int {
	scores := bm.Scores(query)
	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, c int) bool {
		return scores[indices[a]] > scores[indices[c]]
	})
	if n < len(indices) {
		indices = indices[:n]
	}
	return indices
}

// Tokenize splits text into lower-cased whitespace terms
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
