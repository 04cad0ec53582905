package notify

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartaid/medtrack/internal/store"
)

// PGSource adapts the relational store to the schedulers' DataSource.
type PGSource struct {
	Pool *pgxpool.Pool
}

func (s PGSource) ListUserIDs(ctx context.Context) ([]string, error) {
	return store.ListUserIDs(ctx, s.Pool)
}

func (s PGSource) ListMedications(ctx context.Context, userID string) ([]Medication, error) {
	meds, err := store.ListMedications(ctx, s.Pool, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Medication, 0, len(meds))
	for _, m := range meds {
		out = append(out, Medication{
			ID:              m.ID,
			Name:            m.Name,
			Times:           m.Times,
			PillsRemaining:  m.PillsRemaining,
			RefillThreshold: m.RefillThreshold,
		})
	}
	return out, nil
}

var _ DataSource = PGSource{}
