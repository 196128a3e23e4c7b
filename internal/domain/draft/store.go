package draft

import (
	"context"

	"github.com/okian/hoopsrank/internal/domain/model"
)

// Sentinel is the reserved pick number used to vacate a slot during a swap.
// It is never a valid pick.
const Sentinel = 0

// Pick places an athlete at a pick number within one team's order.
type Pick struct {
	AthleteID model.AthleteID
	Number    int
}

// Store runs draft transactions. InTx must run fn with exclusive access to
// the team's rows and roll back every write if fn returns an error.
// Different teams may run concurrently.
type Store interface {
	InTx(ctx context.Context, team string, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is one team's view inside a transaction.
type Tx interface {
	// Count returns the number of picks held by the team.
	Count(ctx context.Context) (int, error)
	// Picks returns every pick ordered by number.
	Picks(ctx context.Context) ([]Pick, error)
	// PickForUpdate locks and returns the athlete's pick.
	PickForUpdate(ctx context.Context, athlete model.AthleteID) (Pick, bool, error)
	// PickAtForUpdate locks and returns the pick holding number.
	PickAtForUpdate(ctx context.Context, number int) (Pick, bool, error)
	// SetNumber moves the athlete's existing pick to number.
	SetNumber(ctx context.Context, athlete model.AthleteID, number int) error
	// Insert adds a pick.
	Insert(ctx context.Context, p Pick) error
	// DeleteAll removes every pick of the team.
	DeleteAll(ctx context.Context) error
	// Statuses returns every stored athlete status of the team.
	Statuses(ctx context.Context) (map[model.AthleteID]Status, error)
	// SetStatus stores status and returns the previous one. ok is false when
	// the athlete had no stored status.
	SetStatus(ctx context.Context, athlete model.AthleteID, status Status) (old Status, ok bool, err error)
}
