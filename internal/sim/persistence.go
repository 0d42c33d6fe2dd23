package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/persist"
	"github.com/skyraid/server/internal/world"
)

// SnapshotSaver is the slice of the snapshot repository this system
// needs; the pgx-backed repo satisfies it.
type SnapshotSaver interface {
	Save(ctx context.Context, s *persist.Snapshot) error
}

// PersistenceSystem flushes a snapshot every SaveInterval ticks. The
// snapshot is assembled by the orchestrator-provided capture func so the
// system stays ignorant of score and wave bookkeeping.
type PersistenceSystem struct {
	st      *world.State
	repo    SnapshotSaver
	capture func() *persist.Snapshot
	log     *zap.Logger
}

func NewPersistenceSystem(st *world.State, repo SnapshotSaver, capture func() *persist.Snapshot, log *zap.Logger) *PersistenceSystem {
	return &PersistenceSystem{st: st, repo: repo, capture: capture, log: log}
}

func (s *PersistenceSystem) Phase() Phase { return PhasePersist }

func (s *PersistenceSystem) Update(time.Duration) {
	interval := uint64(s.st.Cfg.Sim.SaveInterval)
	if s.repo == nil || interval == 0 || s.st.Tick == 0 || s.st.Tick%interval != 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap := s.capture()
	if err := s.repo.Save(ctx, snap); err != nil {
		s.log.Error("snapshot save failed", zap.Error(err))
		return
	}
	s.log.Debug("snapshot saved",
		zap.Int64("score", snap.Score), zap.Int("wave", snap.Wave))
}
