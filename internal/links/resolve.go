// Package links assembles learning resources for job tasks. Model-suggested
// links are merged with a curated catalog, video links are rewritten to stable
// searches, everything is verified in one batch, dead links are replaced with
// deterministic fallbacks and the result is deduplicated.
package links

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/scintive/werkstudentjobs-sub002/internal/fetch"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// MaxLinksPerBucket caps each learning-path bucket. The crash-course entry is
// not counted so it can never be crowded out.
const MaxLinksPerBucket = 3

// TaskLinks is the resolver input for one task.
type TaskLinks struct {
	Task          string
	Skills        []string
	Paths         *types.LearningPaths
	Certification *types.CertificationRecommendation
}

// Resolved is the resolver output for one task. Links is the flat list in
// resolution order; Paths holds the same links grouped by bucket. Unreachable
// counts dead candidates; Substituted counts the replacements that survived
// deduplication and the bucket cap.
type Resolved struct {
	Links       []types.LearningLink
	Paths       types.LearningPaths
	Verified    bool
	Unreachable int
	Substituted int
}

type bucket int

const (
	bucketQuickWins bucket = iota
	bucketCertifications
	bucketDeepening
)

type candidate struct {
	link     types.LearningLink
	bucket   bucket
	fallback types.LearningLink
}

// ResolverConfig wires the resolver's collaborators. Verifier and Keywords are optional.
type ResolverConfig struct {
	Catalog   *Catalog
	Providers *ProviderTable
	Verifier  Verifier
	Keywords  KeywordSource
	Logger    zerolog.Logger
}

// Resolver turns raw link suggestions into safe, verified link lists.
type Resolver struct {
	catalog   *Catalog
	providers *ProviderTable
	verifier  Verifier
	keywords  KeywordSource
	logger    zerolog.Logger
}

// NewResolver creates a resolver. Without a verifier every result is unverified.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Catalog == nil {
		cfg.Catalog = DefaultCatalog()
	}
	if cfg.Providers == nil {
		cfg.Providers = DefaultProviderTable()
	}
	return &Resolver{
		catalog:   cfg.Catalog,
		providers: cfg.Providers,
		verifier:  cfg.Verifier,
		keywords:  cfg.Keywords,
		logger:    cfg.Logger,
	}
}

// HasVerifier reports whether links are checked for reachability
func (r *Resolver) HasVerifier() bool {
	return r.verifier != nil
}

// Resolve handles a single task.
func (r *Resolver) Resolve(ctx context.Context, task TaskLinks) Resolved {
	return r.ResolveAll(ctx, []TaskLinks{task})[0]
}

// ResolveAll resolves every task with at most one keyword call and one
// verification call. Output order matches input order.
func (r *Resolver) ResolveAll(ctx context.Context, tasks []TaskLinks) []Resolved {
	out := make([]Resolved, len(tasks))
	if len(tasks) == 0 {
		return out
	}

	topics := r.topics(ctx, tasks)
	cands := make([][]candidate, len(tasks))
	for i, t := range tasks {
		cands[i] = r.gather(t, topics[i])
	}

	results, verified := r.verify(ctx, cands)
	for i := range tasks {
		out[i] = r.finish(cands[i], topics[i], results, verified)
	}
	return out
}

// topics returns the search phrase per task: the model's keyword phrase when
// available, the task text otherwise.
func (r *Resolver) topics(ctx context.Context, tasks []TaskLinks) []string {
	topics := make([]string, len(tasks))
	for i, t := range tasks {
		topics[i] = strings.TrimSpace(t.Task)
	}
	if r.keywords == nil {
		return topics
	}

	texts := make([]string, len(tasks))
	for i, t := range tasks {
		texts[i] = t.Task
	}
	phrases, err := r.keywords.Keywords(ctx, texts)
	if err != nil {
		r.logger.Warn().Err(err).Msg("keyword phrases unavailable, using task text")
	}
	for i := range topics {
		if i < len(phrases) && phrases[i] != "" {
			topics[i] = phrases[i]
		}
	}
	return topics
}

// gather collects model links bucket by bucket, then the certification
// recommendation, then catalog links. Video links become searches and
// URL-less suggestions are replaced by their provider fallback.
func (r *Resolver) gather(t TaskLinks, topic string) []candidate {
	var cands []candidate
	add := func(l types.LearningLink, b bucket) {
		l.Label = strings.TrimSpace(l.Label)
		l.URL = strings.TrimSpace(l.URL)
		if l.Label == "" && l.URL == "" {
			return
		}
		if isVideoLink(l) {
			label := l.Label
			if label == "" || strings.Contains(strings.ToLower(label), "youtu") {
				label = CrashCourseLabel
			}
			l = types.LearningLink{Label: label, URL: YouTubeSearch(topic + " crash course")}
		}
		if l.URL == "" {
			l = r.providers.BestFallback(l.Label, topic)
		}
		if l.Label == "" {
			l.Label = l.URL
		}
		cands = append(cands, candidate{link: l, bucket: b, fallback: r.providers.BestFallback(l.Label, topic)})
	}

	if t.Paths != nil {
		for _, l := range t.Paths.QuickWins {
			add(l, bucketQuickWins)
		}
		for _, l := range t.Paths.Certifications {
			add(l, bucketCertifications)
		}
		for _, l := range t.Paths.Deepening {
			add(l, bucketDeepening)
		}
	}
	if c := t.Certification; c != nil && strings.TrimSpace(c.Name) != "" {
		label := strings.TrimSpace(c.Name)
		if p := strings.TrimSpace(c.Provider); p != "" {
			label += " (" + p + ")"
		}
		u := strings.TrimSpace(c.URL)
		if u == "" {
			u = GoogleSearch(c.Name + " " + c.Provider)
		}
		add(types.LearningLink{Label: label, URL: u}, bucketCertifications)
	}
	for _, l := range r.catalog.Match(t.Task, t.Skills...) {
		b := bucketDeepening
		if IsCrashCourse(l) {
			l, b = CrashCourse(topic), bucketQuickWins
		}
		add(l, b)
	}
	return cands
}

// verify sends every non-template URL, including fallback URLs, in one batch.
func (r *Resolver) verify(ctx context.Context, cands [][]candidate) (map[string]Verification, bool) {
	if r.verifier == nil {
		return nil, false
	}
	var urls []string
	for _, list := range cands {
		for _, c := range list {
			if !IsFallbackURL(c.link.URL) {
				urls = append(urls, c.link.URL)
			}
			if !IsFallbackURL(c.fallback.URL) {
				urls = append(urls, c.fallback.URL)
			}
		}
	}
	if len(urls) == 0 {
		return map[string]Verification{}, true
	}

	results, err := r.verifier.VerifyLinks(ctx, urls)
	if err != nil {
		r.logger.Warn().Err(err).Int("urls", len(urls)).Msg("link verification unavailable, returning unverified links")
		return nil, false
	}
	return results, true
}

type placed struct {
	link        types.LearningLink
	bucket      bucket
	substituted bool
}

func (r *Resolver) finish(cands []candidate, topic string, results map[string]Verification, verified bool) Resolved {
	res := Resolved{Verified: verified}

	links := make([]placed, 0, len(cands)+2)
	for _, c := range cands {
		l := c.link
		dead := verified && !IsFallbackURL(l.URL) && !results[l.URL].OK
		if dead {
			l = substitute(c, topic, results)
			res.Unreachable++
		}
		b := c.bucket
		if IsCrashCourse(l) {
			b = bucketQuickWins
		}
		links = append(links, placed{link: l, bucket: b, substituted: dead})
	}

	links = dedupe(links)
	links = topUp(links, topic)

	var counts [3]int
	for _, p := range links {
		crash := IsCrashCourse(p.link)
		if !crash && counts[p.bucket] == MaxLinksPerBucket {
			continue
		}
		if !crash {
			counts[p.bucket]++
		}
		if p.substituted {
			res.Substituted++
		}
		res.Links = append(res.Links, p.link)
		switch p.bucket {
		case bucketQuickWins:
			res.Paths.QuickWins = append(res.Paths.QuickWins, p.link)
		case bucketCertifications:
			res.Paths.Certifications = append(res.Paths.Certifications, p.link)
		default:
			res.Paths.Deepening = append(res.Paths.Deepening, p.link)
		}
	}
	res.Paths = ensureBuckets(res.Paths)
	return res
}

// substitute picks the provider fallback when it verified, otherwise the crash-course search.
func substitute(c candidate, topic string, results map[string]Verification) types.LearningLink {
	fb := c.fallback
	if IsFallbackURL(fb.URL) || results[fb.URL].OK {
		return fb
	}
	return CrashCourse(topic)
}

// dedupe drops repeated URLs (case-insensitive) and keeps only the first crash-course entry.
func dedupe(links []placed) []placed {
	seen := make(map[string]struct{}, len(links))
	out := make([]placed, 0, len(links))
	haveCrash := false
	for _, p := range links {
		key := strings.ToLower(p.link.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		if IsCrashCourse(p.link) {
			if haveCrash {
				continue
			}
			haveCrash = true
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// topUp guarantees one crash-course entry and one other entry.
func topUp(links []placed, topic string) []placed {
	hasCrash, hasOther := false, false
	for _, p := range links {
		if IsCrashCourse(p.link) {
			hasCrash = true
		} else {
			hasOther = true
		}
	}
	if !hasCrash {
		links = append([]placed{{link: CrashCourse(topic), bucket: bucketQuickWins}}, links...)
	}
	if !hasOther {
		links = append(links, placed{link: WebSearch(topic), bucket: bucketDeepening})
	}
	return links
}

func isVideoLink(l types.LearningLink) bool {
	return fetch.IsYouTubeVideo(l.URL) || fetch.IsYouTubeVideo(l.Label)
}

func ensureBuckets(p types.LearningPaths) types.LearningPaths {
	if p.QuickWins == nil {
		p.QuickWins = []types.LearningLink{}
	}
	if p.Certifications == nil {
		p.Certifications = []types.LearningLink{}
	}
	if p.Deepening == nil {
		p.Deepening = []types.LearningLink{}
	}
	return p
}
