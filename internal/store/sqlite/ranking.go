package sqlite

import (
	"sort"

	"github.com/laminakit/lamina/pkg/types"
)

// sortBySimilarity orders results by similarity, highest first
func sortBySimilarity(results []types.SearchResult) {
	n := len(results)
	if n <= 1 {
		return
	}

	// Insertion sort wins on small slices
	if n <= 16 {
		insertionSortResults(results)
		return
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
}

func insertionSortResults(results []types.SearchResult) {
	for i := 1; i < len(results); i++ {
		key := results[i]
		j := i - 1
		for j >= 0 && results[j].Similarity < key.Similarity {
			results[j+1] = results[j]
			j--
		}
		results[j+1] = key
	}
}

// topKResults returns the k highest-similarity results in descending
// order, picking a selection strategy by k. The input slice may be
// reordered in place.
func topKResults(results []types.SearchResult, k int) []types.SearchResult {
	if k <= 0 {
		return nil
	}
	if k >= len(results) {
		sortBySimilarity(results)
		return results
	}
	if k <= 5 {
		return selectTopK(results, k)
	}
	return heapTopK(results, k)
}

// selectTopK does k rounds of selection, cheapest for very small k
func selectTopK(results []types.SearchResult, k int) []types.SearchResult {
	top := make([]types.SearchResult, 0, k)

	for i := 0; i < k; i++ {
		maxIdx := i
		for j := i + 1; j < len(results); j++ {
			if results[j].Similarity > results[maxIdx].Similarity {
				maxIdx = j
			}
		}
		results[i], results[maxIdx] = results[maxIdx], results[i]
		top = append(top, results[i])
	}

	return top
}

// heapTopK keeps a size-k min-heap over the results, so each candidate
// costs at most log k
func heapTopK(results []types.SearchResult, k int) []types.SearchResult {
	heap := make([]types.SearchResult, 0, k)

	for _, r := range results {
		if len(heap) < k {
			heap = append(heap, r)
			heapifyUp(heap, len(heap)-1)
		} else if r.Similarity > heap[0].Similarity {
			heap[0] = r
			heapifyDown(heap, 0)
		}
	}

	sortBySimilarity(heap)
	return heap
}

func heapifyUp(heap []types.SearchResult, i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if heap[parent].Similarity <= heap[i].Similarity {
			break
		}
		heap[parent], heap[i] = heap[i], heap[parent]
		i = parent
	}
}

func heapifyDown(heap []types.SearchResult, i int) {
	n := len(heap)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && heap[left].Similarity < heap[smallest].Similarity {
			smallest = left
		}
		if right < n && heap[right].Similarity < heap[smallest].Similarity {
			smallest = right
		}

		if smallest == i {
			break
		}

		heap[i], heap[smallest] = heap[smallest], heap[i]
		i = smallest
	}
}
