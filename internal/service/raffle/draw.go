package raffle

import (
	"slices"
	"sort"

	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/utils/random"
)

// Draw selects the winners to add for a door.
//
// Wallets that already won anything on the door are excluded, each prize is
// topped up to its quantity in catalog order, and every pick is uniform over
// the wallets still in the pool. A chosen wallet leaves the pool. When the pool
// runs dry before a quota is met the whole draw stops; later prizes stay open.
func Draw(s calendar.DoorSnapshot, p random.Picker) []calendar.WinnerAssignment {
	won := make(map[string]struct{}, len(s.Existing))
	assigned := make(map[string]int)
	for _, w := range s.Existing {
		won[w.Wallet] = struct{}{}
		assigned[w.PrizeID]++
	}

	pool := make([]string, 0, len(s.Participants))
	for _, part := range s.Participants {
		if !part.Active {
			continue
		}
		if _, skip := won[part.Wallet]; skip {
			continue
		}
		won[part.Wallet] = struct{}{} // drops duplicate participant rows
		pool = append(pool, part.Wallet)
	}

	prizes := slices.Clone(s.Prizes)
	sort.SliceStable(prizes, func(i, j int) bool { return prizes[i].Position < prizes[j].Position })

	var out []calendar.WinnerAssignment
	for _, prize := range prizes {
		for remaining := prize.Quantity - assigned[prize.ID]; remaining > 0; remaining-- {
			if len(pool) == 0 {
				return out
			}
			i := p.Intn(len(pool))
			wallet := pool[i]
			pool[i] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]

			out = append(out, calendar.WinnerAssignment{Wallet: wallet, Door: s.Door, PrizeID: prize.ID})
		}
	}
	return out
}
