// Package pipeline orchestrates a full buyer-group assembly run: discover
// candidates, size the group, fill role slots, verify contact details, and
// validate the result.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/buyergroup-cli/internal/assemble"
	"github.com/sells-group/buyergroup-cli/internal/buyergroup"
	"github.com/sells-group/buyergroup-cli/internal/model"
	"github.com/sells-group/buyergroup-cli/internal/policy"
	"github.com/sells-group/buyergroup-cli/internal/store"
	"github.com/sells-group/buyergroup-cli/pkg/directory"
	"github.com/sells-group/buyergroup-cli/pkg/research"
	"github.com/sells-group/buyergroup-cli/pkg/verify"
)

// Enricher estimates missing company figures. Optional; runs only when the
// directory has neither revenue nor headcount.
type Enricher interface {
	EnrichCompany(ctx context.Context, name, domain string) (*research.Enrichment, error)
}

// Config tunes assembly behavior.
type Config struct {
	MaxCandidates     int
	VerifyConcurrency int
	DefaultDealSize   float64
}

// Assembler runs the assembly pipeline for one company at a time.
type Assembler struct {
	store    store.Store
	dir      directory.Client
	verifier verify.Client // nil disables verification
	enricher Enricher      // nil disables LLM enrichment
	policy   policy.Policy
	cfg      Config
}

// NewAssembler wires an Assembler from its collaborators.
func NewAssembler(st store.Store, dir directory.Client, verifier verify.Client, enricher Enricher, pol policy.Policy, cfg Config) *Assembler {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 100
	}
	if cfg.VerifyConcurrency <= 0 {
		cfg.VerifyConcurrency = 4
	}
	return &Assembler{
		store:    st,
		dir:      dir,
		verifier: verifier,
		enricher: enricher,
		policy:   pol,
		cfg:      cfg,
	}
}

// Run assembles a buyer group for the company. The run is persisted at each
// status transition; on error the run is marked failed and the error
// returned.
func (a *Assembler) Run(ctx context.Context, company model.Company, dealSize float64) (*model.BuyerGroup, error) {
	if dealSize <= 0 {
		dealSize = a.cfg.DefaultDealSize
	}

	run, err := a.store.CreateRun(ctx, company, dealSize)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	log := zap.L().With(zap.String("run_id", run.ID), zap.String("domain", company.Domain))

	group, err := a.execute(ctx, log, run, company, dealSize)
	if err != nil {
		if failErr := a.store.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			log.Error("mark run failed", zap.Error(failErr))
		}
		return nil, err
	}

	if err := a.store.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete); err != nil {
		return nil, eris.Wrap(err, "pipeline: complete run")
	}
	log.Info("run complete",
		zap.String("tier", group.Tier),
		zap.Int("members", group.Size()),
		zap.Int("score", group.Score),
		zap.String("action", group.Action),
	)
	return group, nil
}

func (a *Assembler) execute(ctx context.Context, log *zap.Logger, run *model.Run, company model.Company, dealSize float64) (*model.BuyerGroup, error) {
	// Discovery
	if err := a.store.UpdateRunStatus(ctx, run.ID, model.RunStatusDiscovering); err != nil {
		return nil, eris.Wrap(err, "pipeline: status discovering")
	}
	company, candidates, err := a.discover(ctx, log, company)
	if err != nil {
		return nil, err
	}
	if err := a.store.SaveCandidates(ctx, run.ID, candidates); err != nil {
		return nil, eris.Wrap(err, "pipeline: save candidates")
	}

	// Sizing
	if err := a.store.UpdateRunStatus(ctx, run.ID, model.RunStatusSizing); err != nil {
		return nil, eris.Wrap(err, "pipeline: status sizing")
	}
	intel := company.Intelligence()
	tier := buyergroup.ClassifyTier(intel.Revenue, intel.EmployeeCount)
	constraint := buyergroup.DetermineOptimalSize(dealSize, intel, candidates)
	counts := buyergroup.RoleTargets(tier, len(candidates), intel.EmployeeCount, dealSize)
	log.Info("group sized",
		zap.String("tier", tier.String()),
		zap.Int("min", constraint.Min),
		zap.Int("max", constraint.Max),
		zap.Int("ideal", constraint.Ideal),
		zap.String("reasoning", constraint.Reasoning),
	)

	// Assembly
	if err := a.store.UpdateRunStatus(ctx, run.ID, model.RunStatusAssembling); err != nil {
		return nil, eris.Wrap(err, "pipeline: status assembling")
	}
	members := assemble.Assemble(candidates, counts, tier, dealSize, constraint.Max, a.policy)

	// Verification
	if a.verifier != nil && len(members) > 0 {
		if err := a.store.UpdateRunStatus(ctx, run.ID, model.RunStatusVerifying); err != nil {
			return nil, eris.Wrap(err, "pipeline: status verifying")
		}
		if err := a.verifyMembers(ctx, log, members); err != nil {
			return nil, err
		}
	}

	// Validation
	if err := a.store.UpdateRunStatus(ctx, run.ID, model.RunStatusValidating); err != nil {
		return nil, eris.Wrap(err, "pipeline: status validating")
	}
	validation := buyergroup.ValidateSize(len(members), constraint)
	rec := buyergroup.Recommend(len(members), constraint)

	group := &model.BuyerGroup{
		RunID:          run.ID,
		Company:        company,
		Tier:           tier.String(),
		DealSize:       dealSize,
		Members:        members,
		Valid:          validation.Valid,
		Score:          validation.Score,
		Action:         string(rec.Action),
		ActionMessage:  rec.Message,
		ActionPriority: string(rec.Priority),
	}
	if err := a.store.SaveGroup(ctx, group); err != nil {
		return nil, eris.Wrap(err, "pipeline: save group")
	}
	return group, nil
}

// discover fills in company figures from the directory (falling back to
// the enricher) and fetches the scored candidate pool.
func (a *Assembler) discover(ctx context.Context, log *zap.Logger, company model.Company) (model.Company, []model.CandidateEmployee, error) {
	profile, err := a.dir.GetCompany(ctx, company.Domain)
	if err != nil {
		if !eris.Is(err, directory.ErrNotFound) {
			return company, nil, eris.Wrap(err, "pipeline: company lookup")
		}
		log.Debug("company not in directory")
	} else {
		if company.Name == "" {
			company.Name = profile.Name
		}
		if company.Industry == "" {
			company.Industry = profile.Industry
		}
		if company.Revenue <= 0 {
			company.Revenue = profile.Revenue
		}
		if company.EmployeeCount <= 0 {
			company.EmployeeCount = profile.EmployeeCount
		}
	}

	if company.Revenue <= 0 && company.EmployeeCount <= 0 && a.enricher != nil {
		enrichment, err := a.enricher.EnrichCompany(ctx, company.Name, company.Domain)
		if err != nil {
			log.Warn("enrichment failed, sizing on defaults", zap.Error(err))
		} else {
			company.Revenue = enrichment.Revenue
			company.EmployeeCount = enrichment.EmployeeCount
		}
	}

	resp, err := a.dir.SearchEmployees(ctx, directory.SearchRequest{
		Domain:     company.Domain,
		MaxResults: a.cfg.MaxCandidates,
	})
	if err != nil {
		return company, nil, eris.Wrap(err, "pipeline: candidate search")
	}

	candidates := make([]model.CandidateEmployee, 0, len(resp.Employees))
	for _, e := range resp.Employees {
		candidates = append(candidates, model.CandidateEmployee{
			ID:           e.ID,
			FullName:     assemble.NormalizeName(e.FullName),
			Title:        e.Title,
			Email:        e.Email,
			Phone:        e.Phone,
			LinkedInURL:  e.LinkedInURL,
			OverallScore: e.Score,
			Relevance:    e.Relevance,
			Source:       "directory",
		})
	}
	log.Info("candidates discovered", zap.Int("count", len(candidates)))
	return company, candidates, nil
}

// verifyMembers checks each member's email and phone with bounded
// concurrency, annotating the members in place. Verification failures
// downgrade the contact to unknown instead of failing the run.
func (a *Assembler) verifyMembers(ctx context.Context, log *zap.Logger, members []model.Member) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.VerifyConcurrency)

	for i := range members {
		g.Go(func() error {
			m := &members[i]
			if m.Candidate.Email != "" {
				result, err := a.verifier.VerifyEmail(ctx, m.Candidate.Email)
				if err != nil {
					log.Warn("email verification failed",
						zap.String("candidate_id", m.Candidate.ID), zap.Error(err))
					m.Candidate.EmailStatus = model.VerifyUnknown
				} else {
					m.Candidate.EmailStatus = model.VerifyStatus(result.Status)
					m.Candidate.EmailConfidence = result.Confidence
				}
			}
			if m.Candidate.Phone != "" {
				result, err := a.verifier.VerifyPhone(ctx, m.Candidate.Phone)
				if err != nil {
					log.Warn("phone verification failed",
						zap.String("candidate_id", m.Candidate.ID), zap.Error(err))
					m.Candidate.PhoneStatus = model.VerifyUnknown
				} else {
					m.Candidate.PhoneStatus = model.VerifyStatus(result.Status)
				}
			}
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "pipeline: verify members")
	}
	return nil
}
