package daemon

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/oracle/adaptivemmd/pkg/actuator"
	"github.com/oracle/adaptivemmd/pkg/config"
	"github.com/oracle/adaptivemmd/pkg/leak"
	"github.com/oracle/adaptivemmd/pkg/lockfile"
	"github.com/oracle/adaptivemmd/pkg/metrics"
	"github.com/oracle/adaptivemmd/pkg/negdentry"
	"github.com/oracle/adaptivemmd/pkg/predictor"
	"github.com/oracle/adaptivemmd/pkg/sampler"
	"github.com/oracle/adaptivemmd/pkg/system/procfs"
	"github.com/oracle/adaptivemmd/pkg/types"
)

// State owns every mutable structure the control loop touches across
// ticks: one NodeState per NUMA node, the leak detector's baseline, and
// the negative-dentry resize tracker. There is a single logical control
// thread (spec.md §5); nothing here needs a mutex.
type State struct {
	Config  config.Config
	Profile Profile
	Logger  zerolog.Logger

	Sampler   *sampler.Sampler
	Actuator  *actuator.Actuator
	NegDentry *negdentry.Sizer
	Leak      *leak.Detector
	Metrics   *metrics.Registry

	LockfilePath string

	Nodes map[int]*NodeState

	prevHugeTotal uint64
	myWSF         uint
	currentWSF    uint
}

// NewState builds a State from a resolved configuration and aggressiveness
// profile. The actuator, sampler, and negative-dentry sizer are
// constructed against the conventional paths; callers in tests override
// individual fields (Sampler.Paths, Actuator.Paths) afterward.
func NewState(cfg config.Config, profile Profile, logger zerolog.Logger, dryRun bool) *State {
	paths := procfs.DefaultPaths()
	return &State{
		Config:       cfg,
		Profile:      profile,
		Logger:       logger,
		Sampler:      sampler.New(),
		Actuator:     actuator.New(paths, dryRun),
		NegDentry:    &negdentry.Sizer{Paths: paths, Pct: cfg.NegDentryCap},
		Leak:         nil, // established lazily from the first sample, see Run
		Metrics:      metrics.New(),
		LockfilePath: "/var/run/adaptivemmd.pid",
		Nodes:        make(map[int]*NodeState),
	}
}

func (s *State) node(id int) *NodeState {
	n, ok := s.Nodes[id]
	if !ok {
		n = &NodeState{}
		s.Nodes[id] = n
	}
	return n
}

// Run performs the startup sequence and then drives the tick loop until
// ctx is cancelled or a SIGTERM/SIGHUP arrives, per spec.md §4.7/§5.
func Run(ctx context.Context, st *State) error {
	if err := st.Actuator.CheckPermissions(); err != nil {
		return fmt.Errorf("daemon: startup permission check: %w", err)
	}

	lf, err := lockfile.Acquire(st.LockfilePath)
	if err != nil {
		return fmt.Errorf("daemon: acquire lockfile: %w", err)
	}
	defer lf.Release()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	ticker := time.NewTicker(st.Profile.Periodicity)
	defer ticker.Stop()

	st.Logger.Info().
		Uint("max_wsf", st.Profile.MaxWSF).
		Int("max_compact_order", st.Profile.MaxCompactOrder).
		Dur("periodicity", st.Profile.Periodicity).
		Msg("adaptivemmd started")

	for {
		select {
		case <-ctx.Done():
			st.Logger.Info().Msg("shutdown signal received, exiting")
			return nil
		case now := <-ticker.C:
			if err := st.tick(now); err != nil {
				st.Logger.Error().Err(err).Msg("tick failed")
			}
		}
	}
}

// tick runs one iteration of the sequence from spec.md §4.7.
func (s *State) tick(now time.Time) error {
	start := time.Now()
	defer func() {
		if s.Metrics != nil {
			s.Metrics.TickDuration.Observe(time.Since(start).Seconds())
		}
	}()

	snap, err := s.Sampler.Sample(now)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	pageSizeBytes := int(s.Sampler.BasePageSizeKB) * 1024
	s.Logger.Debug().
		Str("total_free", types.Pages(snap.TotalFreePages).Humanized(pageSizeBytes)).
		Str("total_cache", types.Pages(snap.TotalCachePages).Humanized(pageSizeBytes)).
		Msg("sampled")

	hugeTotal, hugePct, err := s.Sampler.SampleHugepages(s.prevHugeTotal)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("hugepage sample failed, keeping previous total")
		hugeTotal = s.prevHugeTotal
	}
	s.prevHugeTotal = hugeTotal

	if s.Leak == nil {
		acct := leak.Acct(snap.MemInfo, hugeTotal, s.Sampler.BasePageSizeKB)
		s.Leak = leak.New(totalManaged(snap), acct)
	}

	if s.Config.EnableNegDentryMgmt {
		if s.NegDentry.ShouldResize(hugeTotal) || absPct(hugePct) >= 5 {
			if s.Actuator.DryRun {
				s.Logger.Info().Int("neg_dentry_limit", negdentry.Value(totalManaged(snap), hugeTotal, s.NegDentry.Pct)).Msg("dry run: negative-dentry limit not written")
			} else if err := s.NegDentry.Apply(totalManaged(snap), hugeTotal); err != nil {
				s.Logger.Warn().Err(err).Msg("negative-dentry resize failed")
			}
		}
	}

	if s.Config.MaxGap == 0 {
		s.myWSF = actuator.MyWSF(s.Profile.MaxWSF, totalManaged(snap)-hugeTotal, totalManaged(snap))
	} else {
		s.myWSF = s.Profile.MaxWSF
	}

	tms := nowMS(now)
	reclaimSignal := false

	for _, ns := range snap.Nodes {
		nodeSt := s.node(ns.Node)

		var fits [procfs.MaxOrder]predictor.Fit
		var origins [procfs.MaxOrder]int64
		for order := 0; order < procfs.MaxOrder; order++ {
			m, c, ready := nodeSt.Windows[order].Insert(tms, int64(ns.Frag[order]))
			fits[order] = predictor.Fit{M: m, C: c, Ready: ready}
			origins[order] = nodeSt.Windows[order].Origin()
		}

		nodeSt.Rates.Update(ns.Frag[procfs.MaxOrder-1], snap.PgstealKswapd, s.Profile.Periodicity.Milliseconds())

		sig := predictor.Predict(predictor.Node{
			Fits:            fits,
			Origins:         origins,
			Frag:            [procfs.MaxOrder]uint64(ns.Frag),
			Free:            ns.Frag[0],
			HighWmark:       ns.HighWmark,
			ReclaimRate:     nodeSt.Rates.ReclaimRate,
			CompactionRate:  nodeSt.Rates.CompactionRate,
			MaxCompactOrder: s.Profile.MaxCompactOrder,
			PeriodicityMS:   s.Profile.Periodicity.Milliseconds(),
			NowMS:           tms,
		})

		if sig&predictor.SignalReclaim != 0 {
			reclaimSignal = true
		}
		if s.Actuator.DryRun && sig&predictor.SignalCompact != 0 {
			s.Logger.Info().Int("node", ns.Node).Msg("dry run: compaction candidate")
		}
		if err := s.Actuator.Compact(ns.Node, sig); err != nil {
			s.Logger.Warn().Err(err).Int("node", ns.Node).Msg("compaction trigger failed")
		} else if sig&predictor.SignalCompact != 0 && s.Metrics != nil {
			s.Metrics.CompactionTriggers.WithLabelValues(fmt.Sprint(ns.Node)).Inc()
		}
	}

	if s.Config.EnableFreePageMgmt {
		actState := actuator.State{
			TotalManaged: totalManaged(snap),
			TotalHuge:    hugeTotal,
			TotalFree:    snap.TotalFreePages,
			TotalCache:   snap.TotalCachePages,
			Low:          representativeLow(snap),
			High:         representativeHigh(snap),
			Min:          representativeMin(snap),
			CurrentWSF:   s.currentWSF,
			MaxWSF:       s.myWSF,
			Reclaim:      reclaimSignal,
		}
		if wsf, write := actuator.Candidate(actState); write {
			if s.Actuator.DryRun {
				s.Logger.Info().Uint("wsf", wsf).Msg("dry run: watermark_scale_factor candidate")
			}
			if err := s.Actuator.ApplyWatermarkScale(wsf); err != nil {
				s.Logger.Warn().Err(err).Msg("watermark scale write failed")
			} else {
				s.currentWSF = wsf
				if s.Metrics != nil {
					s.Metrics.WatermarkScaleFactor.Set(float64(wsf))
				}
			}
		}
	}

	if s.Config.EnableMemleakCheck {
		acct := leak.Acct(snap.MemInfo, hugeTotal, s.Sampler.BasePageSizeKB)
		res := s.Leak.Check(totalManaged(snap), acct)
		if res.SuddenLeak {
			s.Logger.Error().Uint64("unaccounted", res.Unaccounted).Msg("possible sudden memory leak")
		}
		if res.SlowLeak {
			s.Logger.Warn().Uint64("unaccounted", res.Unaccounted).Msg("possible slow memory leak")
		}
	}

	return nil
}

func totalManaged(snap sampler.Snapshot) uint64 {
	var total uint64
	for _, n := range snap.Nodes {
		total += n.Managed
	}
	return total
}

func representativeLow(snap sampler.Snapshot) uint64 {
	return firstNodeField(snap, func(n sampler.NodeSnapshot) uint64 { return n.LowWmark })
}

func representativeHigh(snap sampler.Snapshot) uint64 {
	return firstNodeField(snap, func(n sampler.NodeSnapshot) uint64 { return n.HighWmark })
}

func representativeMin(snap sampler.Snapshot) uint64 {
	return firstNodeField(snap, func(n sampler.NodeSnapshot) uint64 { return n.MinWmark })
}

func firstNodeField(snap sampler.Snapshot, f func(sampler.NodeSnapshot) uint64) uint64 {
	if len(snap.Nodes) == 0 {
		return 0
	}
	return f(snap.Nodes[0])
}

func absPct(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
