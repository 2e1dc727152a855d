package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of classifications kept by NewLRU when no
// size is configured.
const DefaultCacheSize = 128

const (
	secondaryThreshold = 0.3
	maxSecondary       = 2
)

// Cache stores classification results keyed by a stable input hash.
// *lru.Cache[string, Result] satisfies it.
type Cache interface {
	Get(key string) (Result, bool)
	Add(key string, value Result) bool
}

// NewLRU returns a size-bounded, concurrency-safe cache for a Classifier.
func NewLRU(size int) (Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return nil, err
	}
	return cache, nil
}

// Classifier scores projects against the fixed categories. Results are
// memoized in the injected cache.
type Classifier struct {
	cache Cache
}

// New creates a Classifier. A nil cache disables memoization.
func New(cache Cache) *Classifier {
	return &Classifier{cache: cache}
}

// Classify returns the type detection result for sig. Identical signals
// (same name, tech stack, README content, and root) return identical results
// without touching the filesystem again.
func (c *Classifier) Classify(sig Signals) Result {
	if c == nil || c.cache == nil {
		return Score(sig)
	}

	key := CacheKey(sig)
	if cached, ok := c.cache.Get(key); ok {
		return cached.Clone()
	}

	result := Score(sig)
	c.cache.Add(key, result.Clone())
	return result
}

// Score runs every signal function against a zeroed score map, applies the
// hybrid penalty and ranks the categories. It does not cache.
func Score(sig Signals) Result {
	scores := newScores()
	e := newEvidence(sig)

	agentSignals(scores, e)
	mlPipelineSignals(scores, e)
	webAppSignals(scores, e)
	cliToolSignals(scores, e)
	librarySignals(scores, e)
	generatorSignals(scores, e)

	applyHybridPenalty(scores)

	return rank(scores)
}

func rank(scores Scores) Result {
	ordered := append([]Category(nil), Categories...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i]] > scores[ordered[j]]
	})

	primary := ordered[0]
	secondary := make([]Category, 0, maxSecondary)
	for _, c := range ordered[1 : 1+maxSecondary] {
		// generator is never suggested alongside another type.
		if c == Generator {
			continue
		}
		if scores[c] > secondaryThreshold {
			secondary = append(secondary, c)
		}
	}

	return Result{
		PrimaryType:    primary,
		SecondaryTypes: secondary,
		Confidence:     math.Min(scores[primary], 1.0),
		AllScores:      scores,
	}
}

// CacheKey hashes the classification inputs. The README participates by
// content hash so edits invalidate naturally.
func CacheKey(sig Signals) string {
	readme := sha256.Sum256([]byte(sig.ReadmeText))

	h := sha256.New()
	h.Write([]byte(sig.Name))
	h.Write([]byte{0})
	for _, t := range sig.TechStack {
		h.Write([]byte(t))
		h.Write([]byte{0x1f})
	}
	h.Write([]byte{0})
	h.Write(readme[:])
	h.Write([]byte{0})
	h.Write([]byte(sig.Root))
	return hex.EncodeToString(h.Sum(nil))
}
