package calendar

import "time"

// DoorCount is the number of doors in the calendar.
const DoorCount = 24

// Participant is a registered wallet taking part in the daily raffles.
type Participant struct {
	Wallet          string    `json:"wallet"`
	Active          bool      `json:"active"`
	RegisteredAt    time.Time `json:"registered_at"`
	RegistrationNFT string    `json:"registration_nft,omitempty"`
}

// Prize is one catalog entry for a door. Quantity identical awards are available.
type Prize struct {
	ID       string `json:"id"`
	Door     int    `json:"door"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
	Message  string `json:"message,omitempty"`
	Sponsor  string `json:"sponsor,omitempty"`
	// Position is the catalog insertion order; prizes of a door are drawn in this order.
	Position int64 `json:"position"`
}

// WinnerAssignment binds a wallet to a prize on a door.
type WinnerAssignment struct {
	ID        int64     `json:"id,omitempty"`
	Wallet    string    `json:"wallet"`
	Door      int       `json:"door"`
	PrizeID   string    `json:"prize_id"`
	Claimed   bool      `json:"claimed"`
	DayDate   string    `json:"day_date,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// MintRecord is a door opened (minted) by a wallet.
type MintRecord struct {
	ID                  string    `json:"id"`
	Wallet              string    `json:"wallet"`
	Door                int       `json:"door"`
	NFTReference        string    `json:"nft_reference"`
	IsEligibleForRaffle bool      `json:"is_eligible_for_raffle"`
	MintedAt            time.Time `json:"minted_at"`
}

// ValidDoor reports whether door is a calendar slot.
func ValidDoor(door int) bool {
	return door >= 1 && door <= DoorCount
}
