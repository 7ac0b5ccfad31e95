// Package spreadsheet reads the allow-list from a CSV export of the
// marketing spreadsheet. The first column holds the wallet address; rows
// whose first cell is not an address (headers, notes) are skipped.
package spreadsheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"advent-raffle-backend/internal/utils/wallet"
)

type Whitelist struct {
	path string

	mu      sync.RWMutex
	wallets map[string]struct{}
}

// Open loads the CSV file at path.
func Open(path string) (*Whitelist, error) {
	w := &Whitelist{path: path}
	if err := w.Reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// Reload re-reads the file, replacing the set atomically.
func (w *Whitelist) Reload() error {
	f, err := os.Open(w.path)
	if err != nil {
		return fmt.Errorf("open whitelist: %w", err)
	}
	defer f.Close()

	wallets, err := Parse(f)
	if err != nil {
		return fmt.Errorf("parse whitelist %s: %w", w.path, err)
	}
	w.mu.Lock()
	w.wallets = wallets
	w.mu.Unlock()
	return nil
}

// Parse reads wallet addresses from CSV rows.
func Parse(r io.Reader) (map[string]struct{}, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	out := make(map[string]struct{})
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		addr, err := wallet.Normalize(strings.TrimPrefix(rec[0], "\uFEFF"))
		if err != nil {
			continue
		}
		out[addr] = struct{}{}
	}
}

func (w *Whitelist) Contains(ctx context.Context, addr string) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.wallets[addr]
	return ok, nil
}

// Len returns the number of listed wallets.
func (w *Whitelist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.wallets)
}
