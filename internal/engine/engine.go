// Package engine produces a complete application strategy for one job and one
// candidate: a single model call, resilient parsing, local scoring, verified
// learning links and a content-addressed cache in front of it all. Internal
// failures degrade the output instead of failing the request.
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/scintive/werkstudentjobs-sub002/internal/corpus"
	"github.com/scintive/werkstudentjobs-sub002/internal/links"
	"github.com/scintive/werkstudentjobs-sub002/internal/llm"
	"github.com/scintive/werkstudentjobs-sub002/internal/metrics"
	"github.com/scintive/werkstudentjobs-sub002/internal/recovery"
	"github.com/scintive/werkstudentjobs-sub002/internal/schemas"
	"github.com/scintive/werkstudentjobs-sub002/internal/scoring"
	"github.com/scintive/werkstudentjobs-sub002/internal/strategycache"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// evidenceSeparator joins local evidence excerpts
const evidenceSeparator = " · "

// ProgressEvent reports one finished step of an analysis
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	JobID   string `json:"job_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called as an analysis advances
type ProgressCallback func(event ProgressEvent)

// Progress steps
const (
	StepCache    = "cache"
	StepGenerate = "generate"
	StepRecover  = "recover"
	StepScore    = "score"
	StepLinks    = "links"
	StepDegraded = "degraded"
	StepComplete = "complete"
)

// Config wires the engine's collaborators. Only LLM is required; a nil
// Resolver gets the default unverified resolver and a nil Cache disables caching.
type Config struct {
	LLM      llm.Client
	Tier     llm.ModelTier
	Resolver *links.Resolver
	Cache    *strategycache.Cache
	CacheTTL time.Duration
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Engine runs analyses. It is safe for concurrent use.
type Engine struct {
	llm      llm.Client
	tier     llm.ModelTier
	resolver *links.Resolver
	cache    *strategycache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New creates an engine
func New(cfg Config) *Engine {
	if cfg.Tier == "" {
		cfg.Tier = llm.TierStandard
	}
	if cfg.Resolver == nil {
		cfg.Resolver = links.NewResolver(links.ResolverConfig{Logger: cfg.Logger})
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		llm:      cfg.LLM,
		tier:     cfg.Tier,
		resolver: cfg.Resolver,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      cfg.Now,
	}
}

// run carries per-request state
type run struct {
	e          *Engine
	job        *types.Job
	onProgress ProgressCallback
	logger     zerolog.Logger
}

func (r *run) emit(step, message string, content any) {
	if r.onProgress != nil {
		r.onProgress(ProgressEvent{Step: step, Message: message, JobID: r.job.ID, Content: content})
	}
}

func (r *run) degrade(kind Kind, err error, detail string) {
	ev := r.logger.Warn().Str("kind", string(kind))
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(detail)
	r.e.metrics.Degradation(string(kind))
	r.emit(StepDegraded, detail, Degradation{Kind: kind, Detail: detail})
}

// Analyze returns the strategy for job and profile. The only error is a
// *PreconditionError for a nil profile or an invalid job.
func (e *Engine) Analyze(ctx context.Context, job *types.Job, profile *types.CandidateProfile) (*types.Strategy, error) {
	return e.AnalyzeWithProgress(ctx, job, profile, nil)
}

// AnalyzeWithProgress is Analyze with a progress callback
func (e *Engine) AnalyzeWithProgress(ctx context.Context, job *types.Job, profile *types.CandidateProfile, onProgress ProgressCallback) (*types.Strategy, error) {
	start := e.now()
	defer func() { e.metrics.ObserveAnalyze(e.now().Sub(start)) }()

	if err := checkPreconditions(job, profile); err != nil {
		e.metrics.Analysis("rejected")
		return nil, err
	}

	r := &run{e: e, job: job, onProgress: onProgress, logger: e.logger.With().Str("job_id", job.ID).Logger()}
	fingerprint := strategycache.Fingerprint(profile)

	if cached := e.lookup(ctx, r, fingerprint); cached != nil {
		cached.Cached = true
		e.metrics.Analysis("cached")
		r.emit(StepComplete, "served from cache", cached)
		return cached, nil
	}

	parsed, tier := e.generate(ctx, r, job, profile)
	strategy := e.assemble(ctx, r, job, profile, parsed, tier)

	if err := schemas.ValidateStrategy(strategy); err != nil {
		r.logger.Warn().Err(err).Msg("strategy does not match the wire schema")
	}

	if ctx.Err() == nil && e.cache != nil {
		if err := e.cache.Put(ctx, job.ID, fingerprint, strategy, e.cacheTTL); err != nil {
			r.degrade(KindCacheUnavailable, err, "cache write failed")
		}
	}

	e.metrics.Analysis("fresh")
	r.logger.Info().
		Int("tasks", len(strategy.Tasks)).
		Int("match_score", strategy.MatchScore).
		Str("recovery_tier", strategy.Recovery).
		Msg("analysis complete")
	r.emit(StepComplete, "analysis complete", strategy)
	return strategy, nil
}

func checkPreconditions(job *types.Job, profile *types.CandidateProfile) error {
	if job == nil {
		return &PreconditionError{Message: "job is required"}
	}
	if profile == nil {
		return &PreconditionError{Message: "candidate profile is required"}
	}
	if err := job.Validate(); err != nil {
		return &PreconditionError{Message: "invalid job", Cause: err}
	}
	return nil
}

func (e *Engine) lookup(ctx context.Context, r *run, fingerprint string) *types.Strategy {
	if e.cache == nil {
		return nil
	}
	cached, err := e.cache.Get(ctx, r.job.ID, fingerprint)
	if err != nil {
		r.degrade(KindCacheUnavailable, err, "cache read failed, treating as miss")
		return nil
	}
	if cached != nil {
		r.emit(StepCache, "cache hit", nil)
	}
	return cached
}

// generate makes the single completion call and recovers whatever came back
func (e *Engine) generate(ctx context.Context, r *run, job *types.Job, profile *types.CandidateProfile) (*types.ParsedAnalysis, recovery.Tier) {
	raw, err := e.complete(ctx, job, profile)
	if err != nil {
		r.degrade(KindUpstreamGeneration, err, "model call failed, using minimal analysis")
		e.metrics.RecoveryTier(string(recovery.TierMinimal))
		return types.EmptyParsedAnalysis(), recovery.TierMinimal
	}
	r.emit(StepGenerate, "model completion received", nil)

	res := recovery.Recover(raw)
	for _, f := range res.Failures {
		r.logger.Debug().Err(f).Msg("recovery tier failed")
	}
	switch {
	case len(res.Failures) == 1 && errors.Is(res.Failures[0], recovery.ErrEmptyOutput):
		r.degrade(KindUpstreamGeneration, res.Failures[0], "model returned no text, using minimal analysis")
	case res.Tier != recovery.TierStrict:
		r.degrade(KindMalformedOutput, errors.Join(res.Failures...), "model output recovered by "+string(res.Tier))
	}
	e.metrics.RecoveryTier(string(res.Tier))
	r.emit(StepRecover, "parsed with tier "+string(res.Tier), nil)
	return res.Analysis, res.Tier
}

func (e *Engine) complete(ctx context.Context, job *types.Job, profile *types.CandidateProfile) (string, error) {
	if e.llm == nil {
		return "", errors.New("no model client configured")
	}
	prompt, err := BuildPrompt(job, profile)
	if err != nil {
		return "", err
	}
	return e.llm.GenerateJSON(ctx, prompt, e.tier)
}

// assemble scores every task, resolves links and builds the strategy
func (e *Engine) assemble(ctx context.Context, r *run, job *types.Job, profile *types.CandidateProfile, parsed *types.ParsedAnalysis, tier recovery.Tier) *types.Strategy {
	c := corpus.Build(profile)
	entries := alignEntries(job.Tasks, parsed.JobTaskAnalysis)

	aiScores := make([]*float64, len(entries))
	for i, entry := range entries {
		aiScores[i] = entry.AIScore()
	}

	results, err := scoring.ScoreAll(ctx, job.Tasks, c, aiScores)
	if err != nil {
		// canceled: score inline so the response is still complete
		results = make([]scoring.Result, len(job.Tasks))
		for i, t := range job.Tasks {
			results[i] = scoring.Score(t, c, aiScores[i])
		}
	}
	r.emit(StepScore, "tasks scored", nil)

	linkInputs := make([]links.TaskLinks, len(job.Tasks))
	for i, t := range job.Tasks {
		linkInputs[i] = links.TaskLinks{Task: t.Text, Skills: t.RequiredSkills}
		if entry := entries[i]; entry != nil {
			linkInputs[i].Paths = entry.LearningPaths
			linkInputs[i].Certification = entry.CertificationRecommendation
		}
	}
	resolved := e.resolver.ResolveAll(ctx, linkInputs)
	e.reportLinks(r, resolved)
	r.emit(StepLinks, "learning links resolved", nil)

	tasks := make([]types.TaskAnalysis, len(job.Tasks))
	pcts := make([]int, len(job.Tasks))
	for i, t := range job.Tasks {
		ta := types.TaskAnalysis{
			Task:               t.Text,
			CompatibilityScore: results[i].Pct,
			Evidence:           strings.Join(results[i].Evidence, evidenceSeparator),
			LearningPaths:      resolved[i].Paths,
			Verified:           resolved[i].Verified,
		}
		if entry := entries[i]; entry != nil {
			ta.Explainer = strings.TrimSpace(string(entry.Explainer))
			ta.UserAlignment = strings.TrimSpace(string(entry.UserAlignment))
			if ev := strings.TrimSpace(string(entry.UserEvidence)); ev != "" {
				ta.Evidence = ev
			}
		}
		tasks[i] = ta
		pcts[i] = ta.CompatibilityScore
	}

	skills := parsed.SkillsAnalysis
	ats, german := atsKeywords(job, parsed)
	return &types.Strategy{
		JobID:          job.ID,
		Tasks:          tasks,
		MatchScore:     scoring.MatchScore(pcts),
		ProfileSummary: strings.TrimSpace(string(parsed.UserProfileSummary)),
		WinStrategy:    strings.TrimSpace(string(parsed.WinStrategy)),
		SkillsAnalysis: skills,
		ATSKeywords:    ats,
		GermanKeywords: german,
		Recovery:       string(tier),
		GeneratedAt:    e.now().UTC(),
	}
}

func (e *Engine) reportLinks(r *run, resolved []links.Resolved) {
	kept, substituted, unreachable, unverified := 0, 0, 0, 0
	for _, res := range resolved {
		substituted += res.Substituted
		kept += len(res.Links) - res.Substituted
		unreachable += res.Unreachable
		if !res.Verified {
			unverified++
		}
	}
	e.metrics.Links(kept, substituted)

	if unreachable > 0 {
		r.degrade(KindLinkUnreachable, nil, "unreachable learning links replaced with fallbacks")
	}
	if unverified > 0 && e.resolver.HasVerifier() {
		r.degrade(KindVerificationOffline, nil, "link verification unavailable, links returned unverified")
	}
}
