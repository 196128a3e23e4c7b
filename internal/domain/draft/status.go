package draft

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
)

// Status is an athlete's standing relative to one team.
type Status string

// Athlete statuses. Athletes with no stored status are Available.
const (
	StatusOnTeam      Status = "ON_TEAM"
	StatusAvailable   Status = "AVAILABLE"
	StatusUnavailable Status = "UNAVAILABLE"
)

// Statuses lists every status in display order.
func Statuses() []Status { return []Status{StatusOnTeam, StatusAvailable, StatusUnavailable} }

// ParseStatus accepts ON_TEAM, AVAILABLE or UNAVAILABLE in any case, with
// spaces or dashes in place of the underscore.
func ParseStatus(s string) (Status, error) {
	norm := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToUpper(strings.TrimSpace(s)))
	switch st := Status(norm); st {
	case StatusOnTeam, StatusAvailable, StatusUnavailable:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Label is the display form, e.g. "On Team".
func (s Status) Label() string {
	switch s {
	case StatusOnTeam:
		return "On Team"
	case StatusUnavailable:
		return "Unavailable"
	default:
		return "Available"
	}
}

// StatusChange reports the effect of SetStatus.
type StatusChange struct {
	AthleteID model.AthleteID
	Old, New  Status
	// Created is set when the athlete had no stored status.
	Created bool
}

// MembershipChanged reports whether the athlete joined or left the team.
func (c StatusChange) MembershipChanged() bool {
	return (c.Old == StatusOnTeam) != (c.New == StatusOnTeam)
}

// SetStatus stores the athlete's status for team.
func (m *Manager) SetStatus(ctx context.Context, team string, athlete model.AthleteID, status Status) (StatusChange, error) {
	if err := validTeam(team); err != nil {
		return StatusChange{}, err
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return StatusChange{}, err
	}
	change := StatusChange{AthleteID: athlete, New: status}
	err := m.observe(ctx, "set_status", func() error {
		return m.store.InTx(ctx, team, func(ctx context.Context, tx Tx) error {
			old, ok, err := tx.SetStatus(ctx, athlete, status)
			if err != nil {
				return fmt.Errorf("set status of athlete %d: %w", athlete, err)
			}
			change.Old, change.Created = old, !ok
			if !ok {
				change.Old = StatusAvailable
			}
			return nil
		})
	})
	if err != nil {
		return StatusChange{}, err
	}
	m.logger.Info(ctx, "athlete status changed", logger.String("team", team),
		logger.Int64("athlete_id", int64(athlete)), logger.String("from", string(change.Old)),
		logger.String("to", string(change.New)))
	return change, nil
}

// Statuses returns the stored statuses of team. Athletes not in the map
// are Available.
func (m *Manager) Statuses(ctx context.Context, team string) (map[model.AthleteID]Status, error) {
	if err := validTeam(team); err != nil {
		return nil, err
	}
	var out map[model.AthleteID]Status
	err := m.observe(ctx, "statuses", func() error {
		return m.store.InTx(ctx, team, func(ctx context.Context, tx Tx) error {
			var err error
			out, err = tx.Statuses(ctx)
			return err
		})
	})
	return out, err
}

// Members returns the athletes of team whose status is ON_TEAM, ordered by id.
func (m *Manager) Members(ctx context.Context, team string) ([]model.AthleteID, error) {
	all, err := m.Statuses(ctx, team)
	if err != nil {
		return nil, err
	}
	var ids []model.AthleteID
	for id, st := range all {
		if st == StatusOnTeam {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
