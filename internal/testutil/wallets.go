// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"encoding/binary"
	"time"

	"github.com/btcsuite/btcutil/base58"

	"advent-raffle-backend/internal/domain/calendar"
)

// Wallet returns a deterministic, well-formed wallet address for i.
func Wallet(i int) string {
	var key [32]byte
	key[0] = 0xA5
	binary.BigEndian.PutUint64(key[24:], uint64(i))
	return base58.Encode(key[:])
}

// Wallets returns n distinct addresses starting at Wallet(1).
func Wallets(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = Wallet(i + 1)
	}
	return out
}

// Window is a December 2024 raffle window in Berlin time.
func Window() calendar.Window {
	w, err := calendar.LoadWindow(2024, time.December, calendar.DefaultTimezone)
	if err != nil {
		panic(err)
	}
	return w
}

// Day returns noon of day in December 2024, Berlin time.
func Day(day int) time.Time {
	return time.Date(2024, time.December, day, 12, 0, 0, 0, Window().Location())
}
