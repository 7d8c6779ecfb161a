package ripper

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/drakos74/ripper/internal/data"
	"github.com/drakos74/ripper/internal/metrics"
	"github.com/drakos74/ripper/internal/model"
	"github.com/drakos74/ripper/internal/rule"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// PRip builds one ordered rule list per target class with
// repeated grow/prune cycles, description-length stopping and
// optimization passes over the accepted rules.
type PRip struct {
	cfg Config
}

// New creates a trainer, rejecting an invalid configuration eagerly.
func New(cfg Config) (*PRip, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PRip{cfg: cfg}, nil
}

// Config returns the hyperparameters of the trainer.
func (p *PRip) Config() Config {
	return p.cfg
}

// Fit trains one ruleset per class of the class attribute, one-vs-rest.
// Class fits share no mutable state and run as independent units of work;
// each one seeds its own source, so results match sequential execution exactly.
func (p *PRip) Fit(set *data.Instances) ([]*model.Ruleset, error) {
	if set == nil || set.RowCount() == 0 {
		return nil, fmt.Errorf("empty training set: %w", data.ErrData)
	}
	class := set.ClassAttribute()
	if class == nil || class.Size() == 0 {
		return nil, fmt.Errorf("no class attribute: %w", data.ErrData)
	}

	rulesets := make([]*model.Ruleset, class.Size())
	var g errgroup.Group
	for c := 0; c < class.Size(); c++ {
		c := c
		g.Go(func() error {
			rs, err := p.FitClass(set, c)
			if err != nil {
				return err
			}
			rulesets[c] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rulesets, nil
}

// FitModel fits all classes and composes the serving model,
// ordering classes by ascending weight so the most frequent one defaults.
func (p *PRip) FitModel(set *data.Instances) (*model.RuleBasedModel, error) {
	rulesets, err := p.Fit(set)
	if err != nil {
		return nil, err
	}
	return model.Compose(set.Schema(), set.ClassAttribute(), rulesets, ClassOrderByFrequency(set))
}

// ClassOrderByFrequency lists the class keys by ascending total weight.
// Ties resolve to the smaller key.
func ClassOrderByFrequency(set *data.Instances) []int {
	class := set.ClassAttribute()
	order := make([]int, class.Size())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return set.ClassWeight(order[a]) < set.ClassWeight(order[b])
	})
	return order
}

// FitClass trains the ruleset for one binarized target class.
func (p *PRip) FitClass(set *data.Instances, target int) (*model.Ruleset, error) {
	started := time.Now()

	if set == nil || set.RowCount() == 0 {
		return nil, fmt.Errorf("empty training set: %w", data.ErrData)
	}
	class := set.ClassAttribute()
	if class == nil {
		return nil, fmt.Errorf("no class attribute: %w", data.ErrData)
	}
	label, err := class.Represent(target)
	if err != nil {
		return nil, err
	}
	if set.SumOfWeights() <= 0 {
		return nil, fmt.Errorf("training set carries no weight: %w", data.ErrData)
	}

	rng := rand.New(rand.NewSource(p.cfg.RandomState + int64(target)))
	work := p.prepare(set)
	possible := possibleConditions(work)

	rules := make([]*rule.Rule, 0)
	for rep := 0; rep < p.cfg.K; rep++ {
		residual := uncoveredByAll(rules, work)
		if residual.ClassWeight(target) <= 0 {
			break
		}
		rules, err = p.growPhase(rules, residual, work, target, label, possible, rng)
		if err != nil {
			return nil, err
		}
		rules, err = p.optimize(rules, work, target, possible, rng)
		if err != nil {
			return nil, err
		}
	}

	for _, r := range rules {
		r.CleanUp()
	}

	residual := uncoveredByAll(rules, work)
	def := work.MajorityClass()
	if residual.RowCount() > 0 {
		def = residual.MajorityClass()
	}
	all := append(rules, rule.NewDefault(def))

	rs := &model.Ruleset{Target: target, Rules: all}

	metrics.Observer.ObserveFit(label, time.Since(started))
	log.Info().
		Str("class", label).
		Int("rules", len(rs.Rules)).
		Int("conditions", rs.Conditions()).
		Float64("dl", descriptionLength(rules, work, target, possible)).
		Dur("took", time.Since(started)).
		Msg("fitted ruleset")

	return rs, nil
}

// prepare copies the data, excludes attributes with too many missing values
// and optionally pre-bins continuous ones.
func (p *PRip) prepare(set *data.Instances) *data.Instances {
	work := set.Clone()
	for i := 0; i < work.AttributeCount(); i++ {
		attr := work.Attribute(i)
		if fraction := work.MissingFraction(attr); fraction > p.cfg.Threshold {
			work.MaskAttribute(attr)
			log.Debug().
				Str("attribute", attr.Name()).
				Float64("missing", fraction).
				Msg("excluded attribute")
			continue
		}
		if c, ok := attr.(*data.Continuous); ok && p.cfg.NDiscretizeBins > 0 {
			work.QuantizeEqualFrequency(c, p.cfg.NDiscretizeBins)
		}
	}
	return work
}

// growPhase appends rules with grow/prune cycles until the positives are
// exhausted, the description length stops paying off, or a cap is hit.
func (p *PRip) growPhase(rules []*rule.Rule, pool, work *data.Instances, target int, label string, possible float64, rng *rand.Rand) ([]*rule.Rule, error) {
	minDL := descriptionLength(rules, work, target, possible)
	totalConds := 0
	for _, r := range rules {
		totalConds += r.Size()
	}
	pool = pool.Clone()

	for {
		if pool.ClassWeight(target) <= 0 {
			return rules, nil
		}
		if p.cfg.MaxRules > 0 && len(rules) >= p.cfg.MaxRules {
			return rules, nil
		}
		if p.cfg.MaxTotalConds > 0 && totalConds >= p.cfg.MaxTotalConds {
			return rules, nil
		}

		grow, prune := p.split(pool, rng)

		r := rule.New()
		r.SetConsequent(target)
		if err := r.Grow(grow, p.cfg.MinNo, p.ruleCap(totalConds)); err != nil {
			return nil, err
		}
		metrics.Observer.IncrementRule(label, "grown")
		if err := r.Prune(prune, false); err != nil {
			return nil, err
		}
		metrics.Observer.IncrementRule(label, "pruned")

		if r.Size() == 0 {
			return rules, nil
		}
		if cover, accu := coverage(r, prune); cover > 0 && accu/cover < 0.5 {
			metrics.Observer.IncrementRule(label, "rejected")
			return rules, nil
		}
		if _, accu := coverage(r, pool); accu < p.cfg.MinNo {
			metrics.Observer.IncrementRule(label, "rejected")
			return rules, nil
		}

		candidate := append(append(make([]*rule.Rule, 0, len(rules)+1), rules...), r)
		dl := descriptionLength(candidate, work, target, possible)
		if dl > minDL+p.cfg.DLAllowance {
			metrics.Observer.IncrementRule(label, "rejected")
			log.Debug().
				Str("rule", r.String()).
				Float64("dl", dl).
				Float64("minDL", minDL).
				Msg("rule pushes description length over allowance")
			return rules, nil
		}
		if dl < minDL {
			minDL = dl
		}

		rules = candidate
		totalConds += r.Size()
		pool = r.Uncovered(pool)
		metrics.Observer.IncrementRule(label, "accepted")
		log.Debug().
			Str("rule", r.String()).
			Float64("dl", dl).
			Int("pool", pool.RowCount()).
			Msg("accepted rule")
	}
}

// optimize revisits every rule : a replacement regrown from scratch and a
// revision extending the existing prefix compete with the original on
// total description length. The cheapest encoding survives.
func (p *PRip) optimize(rules []*rule.Rule, work *data.Instances, target int, possible float64, rng *rand.Rand) ([]*rule.Rule, error) {
	for it := 0; it < p.cfg.NumOptimizations; it++ {
		for i := range rules {
			others := append(append(make([]*rule.Rule, 0, len(rules)-1), rules[:i]...), rules[i+1:]...)
			residual := uncoveredByAll(others, work)
			if residual.RowCount() == 0 {
				continue
			}
			grow, prune := p.split(residual, rng)

			replacement := rule.New()
			replacement.SetConsequent(target)
			if err := replacement.Grow(grow, p.cfg.MinNo, p.cfg.MaxRuleConds); err != nil {
				return nil, err
			}
			if err := replacement.Prune(prune, true); err != nil {
				return nil, err
			}

			revision := rules[i].Copy()
			if err := revision.Grow(grow, p.cfg.MinNo, p.cfg.MaxRuleConds); err != nil {
				return nil, err
			}
			if err := revision.Prune(prune, true); err != nil {
				return nil, err
			}

			best := rules[i]
			bestDL := p.dlReplacing(rules, i, best, work, target, possible)
			for _, alt := range []*rule.Rule{replacement, revision} {
				if alt.Size() == 0 {
					continue
				}
				if dl := p.dlReplacing(rules, i, alt, work, target, possible); dl < bestDL {
					best = alt
					bestDL = dl
				}
			}
			rules[i] = best
		}
	}
	return rules, nil
}

func (p *PRip) dlReplacing(rules []*rule.Rule, i int, r *rule.Rule, work *data.Instances, target int, possible float64) float64 {
	candidate := append(append(make([]*rule.Rule, 0, len(rules)), rules[:i]...), r)
	candidate = append(candidate, rules[i+1:]...)
	return descriptionLength(candidate, work, target, possible)
}

// ruleCap resolves the per-rule antecedent cap from MaxRuleConds and
// the remaining MaxTotalConds budget. 0 means no cap.
func (p *PRip) ruleCap(totalConds int) int {
	limit := p.cfg.MaxRuleConds
	if p.cfg.MaxTotalConds > 0 {
		left := p.cfg.MaxTotalConds - totalConds
		if limit == 0 || left < limit {
			limit = left
		}
	}
	return limit
}

// split partitions the pool deterministically into grow and prune data :
// one fold prunes, the rest grow. Degenerate pools grow and prune on the whole data.
func (p *PRip) split(pool *data.Instances, rng *rand.Rand) (*data.Instances, *data.Instances) {
	n := pool.RowCount()
	pruneN := n / p.cfg.Folds()
	perm := rng.Perm(n)
	if pruneN == 0 {
		return pool.Clone(), pool.Clone()
	}

	grow := data.EmptyLike(pool)
	prune := data.EmptyLike(pool)
	for i, idx := range perm {
		if i < n-pruneN {
			grow.Append(pool.Row(idx))
		} else {
			prune.Append(pool.Row(idx))
		}
	}
	return grow, prune
}

func coverage(r *rule.Rule, set *data.Instances) (cover, accu float64) {
	it := set.Iterate()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		if r.Covers(row) {
			cover += row.Weight
			if row.Class == r.Consequent() {
				accu += row.Weight
			}
		}
	}
	return cover, accu
}

func uncoveredByAll(rules []*rule.Rule, set *data.Instances) *data.Instances {
	out := set.Clone()
	for _, r := range rules {
		out = r.Uncovered(out)
	}
	return out
}
