package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/buyergroup-cli/internal/pipeline"
	"github.com/sells-group/buyergroup-cli/internal/policy"
	"github.com/sells-group/buyergroup-cli/internal/store"
	"github.com/sells-group/buyergroup-cli/pkg/directory"
	"github.com/sells-group/buyergroup-cli/pkg/research"
	"github.com/sells-group/buyergroup-cli/pkg/verify"
)

// assemblerEnv holds the initialized store, clients, and assembler needed
// by the run and serve commands.
type assemblerEnv struct {
	Store     store.Store
	Assembler *pipeline.Assembler
}

// Close releases resources held by the environment.
func (ae *assemblerEnv) Close() {
	if ae.Store != nil {
		_ = ae.Store.Close()
	}
}

// initAssembler sets up the store, the directory and verification clients,
// the optional LLM enricher, and builds the Assembler. Callers should defer
// env.Close().
func initAssembler(ctx context.Context) (*assemblerEnv, error) {
	if err := cfg.Validate("assemble"); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	dirClient := directory.NewClient(cfg.Directory.Key,
		directory.WithBaseURL(cfg.Directory.BaseURL),
		directory.WithRateLimit(cfg.Directory.RateLimit),
	)

	// Contact verification is optional.
	var verifier verify.Client
	if cfg.Verify.Key != "" {
		verifier = verify.NewClient(cfg.Verify.Key,
			verify.WithBaseURL(cfg.Verify.BaseURL),
			verify.WithRateLimit(cfg.Verify.RateLimit),
		)
	} else {
		zap.L().Debug("BUYERGROUP_VERIFY_KEY not set, contact verification disabled")
	}

	// LLM enrichment is optional; it only runs when the directory has
	// neither revenue nor headcount for a company.
	var enricher pipeline.Enricher
	if cfg.Research.Key != "" {
		researchClient := research.NewClient(cfg.Research.Key)
		enricher = research.NewEnricher(researchClient, cfg.Research.Model, int64(cfg.Research.MaxTokens))
	} else {
		zap.L().Debug("BUYERGROUP_RESEARCH_KEY not set, company enrichment disabled")
	}

	pol, err := policy.Load(cfg.Policy.Path)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if cfg.Pipeline.MinMemberScore > 0 {
		pol.MinMemberScore = cfg.Pipeline.MinMemberScore
	}

	a := pipeline.NewAssembler(st, dirClient, verifier, enricher, pol, pipeline.Config{
		MaxCandidates:     cfg.Directory.MaxCandidates,
		VerifyConcurrency: cfg.Pipeline.VerifyConcurrency,
		DefaultDealSize:   cfg.Pipeline.DefaultDealSize,
	})

	return &assemblerEnv{Store: st, Assembler: a}, nil
}
