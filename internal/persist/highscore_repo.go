package persist

import "context"

// HighscoreRow is one finished run.
type HighscoreRow struct {
	Profile string
	Score   int64
	Wave    int
}

type HighscoreRepo struct {
	db *DB
}

func NewHighscoreRepo(db *DB) *HighscoreRepo {
	return &HighscoreRepo{db: db}
}

// Record inserts a finished run.
func (r *HighscoreRepo) Record(ctx context.Context, row *HighscoreRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO highscores (profile, score, wave) VALUES ($1, $2, $3)`,
		row.Profile, row.Score, row.Wave,
	)
	return err
}

// Top returns the best n runs, highest score first.
func (r *HighscoreRepo) Top(ctx context.Context, n int) ([]HighscoreRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT profile, score, wave FROM highscores ORDER BY score DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []HighscoreRow
	for rows.Next() {
		var h HighscoreRow
		if err := rows.Scan(&h.Profile, &h.Score, &h.Wave); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}
