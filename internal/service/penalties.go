package service

import (
	"sort"
	"strings"

	"github.com/schaferjart/telegram-finance/internal/models"
)

// Two penalty policies ship side by side, on purpose: CheckBeerOwed applies
// an immediate penalty every time it runs (the on-demand command), while
// CheckPenalties grants a one-week grace period before a counter increments
// (the scheduled weekly report).

const lagThreshold = 4

type boardEntry struct {
	name   string
	points int
}

// CheckBeerOwed runs the immediate policy over the raw chore totals: every
// call, any member lagging more than lagThreshold points behind the leader
// gets one more week of beer owed.
func (s *Service) CheckBeerOwed() (models.PenaltyOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		return models.PenaltyOutcome{}, err
	}

	board := choreBoard(doc.Chores)
	if len(board) == 0 {
		return models.PenaltyOutcome{}, nil
	}

	leader := board[0]
	out := models.PenaltyOutcome{Leader: leader.name, LeaderPoints: leader.points}
	for _, e := range board[1:] {
		gap := leader.points - e.points
		if gap > lagThreshold {
			doc.Penalties[e.name]++
			out.Changes = append(out.Changes, models.PenaltyChange{
				Member:    e.name,
				Gap:       gap,
				WeeksOwed: doc.Penalties[e.name],
				Status:    models.PenaltyOwed,
			})
		}
	}
	if err := s.store.Save(doc); err != nil {
		return models.PenaltyOutcome{}, err
	}
	return out, nil
}

// CheckPenalties runs the two-phase policy over the member roster. First time
// a member lags they are only flagged; the counter increments on the next
// check if they are still lagging. Closing the gap while flagged clears the
// flag and reports an improvement instead. An empty outcome (no leader) means
// there was not enough data to run the check.
func (s *Service) CheckPenalties() (models.PenaltyOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		return models.PenaltyOutcome{}, err
	}
	if len(doc.Members) == 0 || len(doc.Chores) == 0 {
		return models.PenaltyOutcome{}, nil
	}

	r := s.memberRoster(doc)
	points := make(map[string]int, len(doc.Members))
	for user, pts := range doc.Chores {
		if key, ok := r.resolve(user); ok {
			points[key] += pts
		}
	}

	board := make([]boardEntry, 0, len(doc.Members))
	for _, m := range doc.Members {
		board = append(board, boardEntry{name: m, points: points[m]})
	}
	sort.SliceStable(board, func(i, j int) bool { return board[i].points > board[j].points })

	leader := board[0]
	out := models.PenaltyOutcome{Leader: leader.name, LeaderPoints: leader.points}
	for _, e := range board[1:] {
		gap := leader.points - e.points
		key := strings.ToLower(e.name)
		switch {
		case gap > lagThreshold && doc.LastWeekViolators[key]:
			doc.Penalties[e.name]++
			out.Changes = append(out.Changes, models.PenaltyChange{
				Member:    e.name,
				Gap:       gap,
				WeeksOwed: doc.Penalties[e.name],
				Status:    models.PenaltyOwed,
			})
		case gap > lagThreshold:
			if doc.LastWeekViolators == nil {
				doc.LastWeekViolators = map[string]bool{}
			}
			doc.LastWeekViolators[key] = true
			out.Changes = append(out.Changes, models.PenaltyChange{
				Member: e.name,
				Gap:    gap,
				Status: models.PenaltyAtRisk,
			})
		case doc.LastWeekViolators[key]:
			delete(doc.LastWeekViolators, key)
			out.Changes = append(out.Changes, models.PenaltyChange{
				Member: e.name,
				Gap:    gap,
				Status: models.PenaltyImproved,
			})
		}
	}

	if err := s.store.Save(doc); err != nil {
		return models.PenaltyOutcome{}, err
	}
	return out, nil
}

// choreBoard sorts the raw chore map by points descending, names ascending on
// ties so repeated runs over unchanged state produce identical output.
func choreBoard(chores map[string]int) []boardEntry {
	board := make([]boardEntry, 0, len(chores))
	for name, pts := range chores {
		board = append(board, boardEntry{name: name, points: pts})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].points != board[j].points {
			return board[i].points > board[j].points
		}
		return board[i].name < board[j].name
	})
	return board
}
