package draft_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/okian/hoopsrank/internal/adapters/repository"
	"github.com/okian/hoopsrank/internal/domain/draft"
	"github.com/okian/hoopsrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type mockStore struct{ tx *mockTx }

func (s *mockStore) InTx(ctx context.Context, _ string, fn func(context.Context, draft.Tx) error) error {
	return fn(ctx, s.tx)
}

type mockTx struct{ mock.Mock }

func (m *mockTx) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockTx) Picks(ctx context.Context) ([]draft.Pick, error) {
	args := m.Called(ctx)
	return args.Get(0).([]draft.Pick), args.Error(1)
}

func (m *mockTx) PickForUpdate(ctx context.Context, athlete model.AthleteID) (draft.Pick, bool, error) {
	args := m.Called(ctx, athlete)
	return args.Get(0).(draft.Pick), args.Bool(1), args.Error(2)
}

func (m *mockTx) PickAtForUpdate(ctx context.Context, number int) (draft.Pick, bool, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(draft.Pick), args.Bool(1), args.Error(2)
}

func (m *mockTx) SetNumber(ctx context.Context, athlete model.AthleteID, number int) error {
	return m.Called(ctx, athlete, number).Error(0)
}

func (m *mockTx) Insert(ctx context.Context, p draft.Pick) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockTx) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockTx) Statuses(ctx context.Context) (map[model.AthleteID]draft.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[model.AthleteID]draft.Status), args.Error(1)
}

func (m *mockTx) SetStatus(ctx context.Context, athlete model.AthleteID, status draft.Status) (draft.Status, bool, error) {
	args := m.Called(ctx, athlete, status)
	return args.Get(0).(draft.Status), args.Bool(1), args.Error(2)
}

// failingStore wraps a real store and fails the nth SetNumber of a transaction.
type failingStore struct {
	draft.Store
	failAt int
}

func (s *failingStore) InTx(ctx context.Context, team string, fn func(context.Context, draft.Tx) error) error {
	return s.Store.InTx(ctx, team, func(ctx context.Context, tx draft.Tx) error {
		return fn(ctx, &failingTx{Tx: tx, failAt: s.failAt})
	})
}

type failingTx struct {
	draft.Tx
	failAt int
	calls  int
}

var errInjected = errors.New("injected failure")

func (t *failingTx) SetNumber(ctx context.Context, athlete model.AthleteID, number int) error {
	t.calls++
	if t.calls == t.failAt {
		return errInjected
	}
	return t.Tx.SetNumber(ctx, athlete, number)
}

func TestMoveWrites(t *testing.T) {
	ctx := context.Background()
	anyArg := mock.Anything

	Convey("Given a three pick order behind a mocked transaction", t, func() {
		tx := &mockTx{}
		m := draft.NewManager(&mockStore{tx: tx})
		tx.On("Count", anyArg).Return(3, nil)

		Convey("When the athlete is missing", func() {
			tx.On("PickForUpdate", anyArg, model.AthleteID(9)).Return(draft.Pick{}, false, nil)
			err := m.Move(ctx, "team", 9, 1)

			Convey("Then no pick is written", func() {
				So(errors.Is(err, draft.ErrAthleteNotInOrder), ShouldBeTrue)
				tx.AssertNotCalled(t, "SetNumber", anyArg, anyArg, anyArg)
			})
		})

		Convey("When the target is out of range", func() {
			err := m.Move(ctx, "team", 1, 5)

			Convey("Then nothing past the count is read", func() {
				So(errors.Is(err, draft.ErrPositionOutOfRange), ShouldBeTrue)
				tx.AssertNotCalled(t, "PickForUpdate", anyArg, anyArg)
				tx.AssertNotCalled(t, "SetNumber", anyArg, anyArg, anyArg)
			})
		})

		Convey("When the athlete at 3 moves to 1", func() {
			tx.On("PickForUpdate", anyArg, model.AthleteID(30)).Return(draft.Pick{AthleteID: 30, Number: 3}, true, nil)
			tx.On("PickAtForUpdate", anyArg, 1).Return(draft.Pick{AthleteID: 10, Number: 1}, true, nil)
			tx.On("SetNumber", anyArg, anyArg, anyArg).Return(nil)

			So(m.Move(ctx, "team", 30, 1), ShouldBeNil)

			Convey("Then the swap goes through the sentinel in three writes", func() {
				calls := make([][2]int, 0, 3)
				for _, c := range tx.Calls {
					if c.Method == "SetNumber" {
						calls = append(calls, [2]int{int(c.Arguments.Get(1).(model.AthleteID)), c.Arguments.Int(2)})
					}
				}
				So(calls, ShouldResemble, [][2]int{{10, draft.Sentinel}, {30, 1}, {10, 3}})
			})
		})
	})

	Convey("Given a replacement order with no ranked athlete", t, func() {
		tx := &mockTx{}
		m := draft.NewManager(&mockStore{tx: tx})
		_, err := m.SetFullOrder(ctx, "team", []model.AthleteID{999, 998}, []draft.Ranked{{AthleteID: 1, Overall: 80}})

		Convey("Then the existing picks are never cleared", func() {
			So(errors.Is(err, draft.ErrConstraintViolation), ShouldBeTrue)
			tx.AssertNotCalled(t, "DeleteAll", anyArg)
			tx.AssertNotCalled(t, "Insert", anyArg, anyArg)
		})
	})

	Convey("Given a real store whose second write fails", t, func() {
		mem := repository.NewMemoryStore()
		ranked := []draft.Ranked{{AthleteID: 1, Overall: 90}, {AthleteID: 2, Overall: 80}, {AthleteID: 3, Overall: 70}}
		_, err := draft.NewManager(mem).Seed(ctx, "team", ranked)
		So(err, ShouldBeNil)

		m := draft.NewManager(&failingStore{Store: mem, failAt: 2})
		err = m.Move(ctx, "team", 3, 1)

		Convey("Then the move fails and the order is untouched", func() {
			So(errors.Is(err, errInjected), ShouldBeTrue)
			entries, err := draft.NewManager(mem).Order(ctx, "team", ranked)
			So(err, ShouldBeNil)
			So(numbers(entries), ShouldResemble, map[model.AthleteID]int{1: 1, 2: 2, 3: 3})
		})
	})
}
