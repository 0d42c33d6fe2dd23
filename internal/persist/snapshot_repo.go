package persist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Snapshot is the minimal save-state surface: enough to resume a wave
// with full resource state while live entities reset.
type Snapshot struct {
	Profile     string
	Score       int64
	Wave        int
	StolenSlots []int32
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save upserts the profile's snapshot row.
func (r *SnapshotRepo) Save(ctx context.Context, s *Snapshot) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO snapshots (profile, score, wave, stolen_slots, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (profile) DO UPDATE
		 SET score = EXCLUDED.score,
		     wave = EXCLUDED.wave,
		     stolen_slots = EXCLUDED.stolen_slots,
		     updated_at = now()`,
		s.Profile, s.Score, s.Wave, s.StolenSlots,
	)
	return err
}

// Load fetches a profile's snapshot; (nil, nil) when none exists.
func (r *SnapshotRepo) Load(ctx context.Context, profile string) (*Snapshot, error) {
	s := &Snapshot{Profile: profile}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT score, wave, stolen_slots FROM snapshots WHERE profile = $1`,
		profile,
	).Scan(&s.Score, &s.Wave, &s.StolenSlots)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes a profile's snapshot (fresh start after game over).
func (r *SnapshotRepo) Delete(ctx context.Context, profile string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM snapshots WHERE profile = $1`, profile)
	return err
}
