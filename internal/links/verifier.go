package links

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/scintive/werkstudentjobs-sub002/internal/fetch"
)

// Verification is the reachability verdict for one URL
type Verification struct {
	URL         string  `json:"url"`
	OK          bool    `json:"ok"`
	Status      int     `json:"status,omitempty"`
	FinalURL    string  `json:"final_url,omitempty"`
	ContentType string  `json:"content_type,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// Verifier checks a batch of URLs. Unreachable URLs are reported with OK=false;
// an error means the check itself could not run.
type Verifier interface {
	VerifyLinks(ctx context.Context, urls []string) (map[string]Verification, error)
}

// Verifier defaults
const (
	DefaultURLTTL      = 30 * time.Minute
	DefaultBatchTTL    = 12 * time.Hour
	DefaultConcurrency = 8
	DefaultRate        = 20
)

// VerifierConfig configures an HTTPVerifier.
type VerifierConfig struct {
	Probe       *fetch.Options
	Concurrency int
	Rate        float64 // probes per second; 0 disables pacing
	URLTTL      time.Duration
	BatchTTL    time.Duration
	Logger      zerolog.Logger
	Now         func() time.Time
}

// DefaultVerifierConfig returns the production settings.
func DefaultVerifierConfig() *VerifierConfig {
	probe := fetch.DefaultOptions()
	probe.Retry = fetch.DefaultRetryConfig
	return &VerifierConfig{
		Probe:       probe,
		Concurrency: DefaultConcurrency,
		Rate:        DefaultRate,
		URLTTL:      DefaultURLTTL,
		BatchTTL:    DefaultBatchTTL,
		Logger:      zerolog.Nop(),
	}
}

// HTTPVerifier probes URLs with HEAD/GET and caches verdicts per URL and per batch.
type HTTPVerifier struct {
	probe       *fetch.Options
	concurrency int
	limiter     *rate.Limiter
	urls        *ttlCache[Verification]
	batches     *ttlCache[map[string]Verification]
	logger      zerolog.Logger
}

// NewHTTPVerifier creates a verifier; a nil config uses the defaults.
func NewHTTPVerifier(cfg *VerifierConfig) *HTTPVerifier {
	if cfg == nil {
		cfg = DefaultVerifierConfig()
	}
	probe := cfg.Probe
	if probe == nil {
		probe = fetch.DefaultOptions()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), concurrency)
	}
	return &HTTPVerifier{
		probe:       probe,
		concurrency: concurrency,
		limiter:     limiter,
		urls:        newTTLCache[Verification](cfg.URLTTL, cfg.Now),
		batches:     newTTLCache[map[string]Verification](cfg.BatchTTL, cfg.Now),
		logger:      cfg.Logger,
	}
}

// VerifyLinks checks every unique URL concurrently. The whole batch result is
// cached under the sorted URL set.
func (v *HTTPVerifier) VerifyLinks(ctx context.Context, urls []string) (map[string]Verification, error) {
	unique := uniqueSorted(urls)
	if len(unique) == 0 {
		return map[string]Verification{}, nil
	}

	key := batchKey(unique)
	if cached, ok := v.batches.get(key); ok {
		return copyResults(cached), nil
	}

	var mu sync.Mutex
	results := make(map[string]Verification, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for _, u := range unique {
		g.Go(func() error {
			res, err := v.verifyOne(gctx, u)
			if err != nil {
				return err
			}
			mu.Lock()
			results[u] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &VerifyError{Message: "batch aborted", Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &VerifyError{Message: "batch aborted", Cause: err}
	}

	v.batches.set(key, copyResults(results))
	return results, nil
}

// verifyOne only fails when the context is done; probe failures are ok=false.
func (v *HTTPVerifier) verifyOne(ctx context.Context, u string) (Verification, error) {
	if cached, ok := v.urls.get(u); ok {
		return cached, nil
	}
	if v.limiter != nil {
		if err := v.limiter.Wait(ctx); err != nil {
			return Verification{}, err
		}
	}

	res := Verification{URL: u}
	probe, err := fetch.Probe(ctx, u, v.probe)
	if ctx.Err() != nil {
		return Verification{}, ctx.Err()
	}
	if err != nil {
		v.logger.Debug().Str("url", u).Err(err).Msg("link probe failed")
	} else {
		res = Verification{
			URL:         u,
			OK:          probe.OK(),
			Status:      probe.StatusCode,
			FinalURL:    probe.FinalURL,
			ContentType: probe.ContentType,
			Confidence:  probe.Confidence(),
		}
	}

	// A removed video still answers HEAD with 200
	if fetch.IsYouTubeVideo(u) {
		_, page, err := fetch.CheckYouTubeVideo(ctx, u, v.probe)
		if ctx.Err() != nil {
			return Verification{}, ctx.Err()
		}
		if err == nil {
			res.OK = page.Available()
			res.Confidence = 0
			if res.OK {
				res.Confidence = 0.9
			}
		}
	}

	v.urls.set(u, res)
	return res, nil
}

func uniqueSorted(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func batchKey(sorted []string) string {
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return hex.EncodeToString(sum[:])
}

func copyResults(in map[string]Verification) map[string]Verification {
	out := make(map[string]Verification, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
