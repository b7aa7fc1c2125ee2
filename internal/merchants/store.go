// Package merchants maintains a curated set of known merchant names and
// fuzzy-matches arbitrary strings against it.
package merchants

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/agext/levenshtein"

	"github.com/receiptdesk/receipt-pipeline/internal/entity"
)

// Repository is the injected abstraction over the merchant name set.
// Implementations must support concurrent reads with rare additive writes.
type Repository interface {
	Add(ctx context.Context, name string) error
	All(ctx context.Context) ([]string, error)
	FindBestMatch(ctx context.Context, query string, threshold float64) (entity.MerchantCandidate, bool, error)
	Suggest(ctx context.Context, query string, threshold float64, k int) ([]entity.MerchantCandidate, error)
}

var (
	reHashSuffix = regexp.MustCompile(`#\s*\d+`)
	reStoreNo    = regexp.MustCompile(`(?i)\b(?:store|branch)\s*(?:no\.?\s*)?\d+\b`)
	reDigitRun   = regexp.MustCompile(`\b\d{3,}\b`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// Normalize strips franchise/store-number suffixes ("#1234", "Store 12",
// "Branch 3", runs of 3+ digits) and collapses repeated whitespace.
func Normalize(name string) string {
	s := reHashSuffix.ReplaceAllString(name, " ")
	s = reStoreNo.ReplaceAllString(s, " ")
	s = reDigitRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// Similarity is normalized edit distance over preprocessed, case-folded
// names: 1 - dist/max(len). Identical strings score 1.0, an empty side 0.0.
func Similarity(a, b string) float64 {
	na := strings.ToLower(Normalize(a))
	nb := strings.ToLower(Normalize(b))
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	ra, rb := []rune(na), []rune(nb)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	dist := levenshtein.Distance(na, nb, nil)
	sim := 1 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

// Store is the in-memory Repository. The name set is additive-only; there is
// no eviction.
type Store struct {
	mu    sync.RWMutex
	names []string            // canonical names in insertion order
	index map[string]struct{} // normalized+folded, for dedupe
}

func NewStore() *Store {
	return &Store{index: make(map[string]struct{})}
}

// NewStoreWith seeds a store with the given canonical names.
func NewStoreWith(names ...string) *Store {
	s := NewStore()
	for _, n := range names {
		_ = s.Add(context.Background(), n)
	}
	return s
}

func (s *Store) Add(_ context.Context, name string) error {
	canonical := strings.TrimSpace(name)
	key := strings.ToLower(Normalize(canonical))
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[key]; ok {
		return nil
	}
	s.index[key] = struct{}{}
	s.names = append(s.names, canonical)
	return nil
}

func (s *Store) All(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out, nil
}

// FindBestMatch compares the query against every known name and accepts the
// best match if its similarity meets the threshold.
func (s *Store) FindBestMatch(_ context.Context, query string, threshold float64) (entity.MerchantCandidate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best entity.MerchantCandidate
	for _, name := range s.names {
		if sim := Similarity(query, name); sim > best.Similarity {
			best = entity.MerchantCandidate{Name: name, Similarity: sim}
		}
	}
	if best.Name == "" || best.Similarity < threshold {
		return entity.MerchantCandidate{}, false, nil
	}
	return best, true, nil
}

// Suggest returns up to k candidates at or above the threshold, best first.
// Equal similarities keep insertion order.
func (s *Store) Suggest(_ context.Context, query string, threshold float64, k int) ([]entity.MerchantCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.MerchantCandidate
	for _, name := range s.names {
		if sim := Similarity(query, name); sim >= threshold {
			out = append(out, entity.MerchantCandidate{Name: name, Similarity: sim})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}
