// Package memory is an in-process ledger store for development and tests.
package memory

import (
	"bufio"
	"cmp"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	cats   []core.Category
	txs    []core.Transaction
	nextTx int64
	nextCt int64
	now    func() time.Time
}

// New returns a store holding cats. Ids already set on cats are kept.
func New(cats []core.Category) *Store {
	s := &Store{nextTx: 1, nextCt: 1, now: time.Now}
	for _, c := range cats {
		if c.ID == 0 {
			c.ID = s.nextCt
		}
		if c.ID >= s.nextCt {
			s.nextCt = c.ID + 1
		}
		s.cats = append(s.cats, c)
	}
	return s
}

// NewFromFiles seeds categories from base/seed_categories.txt, one
// "type;name;icon;color" per line. Without a usable file the default
// categories are loaded.
func NewFromFiles(base string) *Store {
	var cats []core.Category
	for _, line := range readLines(filepath.Join(base, "seed_categories.txt")) {
		c, ok := parseCategoryLine(line)
		if !ok {
			continue
		}
		cats = append(cats, c)
	}
	if len(cats) == 0 {
		cats = ledger.DefaultCategories()
	}
	return New(cats)
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Transaction(nil), s.txs...)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(id)
	if i < 0 {
		return core.Transaction{}, ledger.ErrTransactionNotFound
	}
	return s.txs[i], nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catIndex(tx.CategoryID) < 0 {
		return core.Transaction{}, ledger.ErrCategoryNotFound
	}
	now := s.now().UTC()
	tx.ID = s.nextTx
	tx.CreatedAt = now
	tx.UpdatedAt = now
	s.nextTx++
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(tx.ID)
	if i < 0 {
		return core.Transaction{}, ledger.ErrTransactionNotFound
	}
	if s.catIndex(tx.CategoryID) < 0 {
		return core.Transaction{}, ledger.ErrCategoryNotFound
	}
	tx.CreatedAt = s.txs[i].CreatedAt
	tx.UpdatedAt = s.now().UTC()
	s.txs[i] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(id)
	if i < 0 {
		return ledger.ErrTransactionNotFound
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	return nil
}

func (s *Store) CountByCategory(_ context.Context, categoryID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countByCategory(categoryID), nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Category(nil), s.cats...)
	slices.SortFunc(out, func(a, b core.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.catIndex(id)
	if i < 0 {
		return core.Category{}, ledger.ErrCategoryNotFound
	}
	return s.cats[i], nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextCt
	c.IsDefault = false
	s.nextCt++
	s.cats = append(s.cats, c)
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.catIndex(c.ID)
	if i < 0 {
		return core.Category{}, ledger.ErrCategoryNotFound
	}
	c.IsDefault = s.cats[i].IsDefault
	s.cats[i] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.catIndex(id)
	if i < 0 {
		return ledger.ErrCategoryNotFound
	}
	if s.countByCategory(id) > 0 {
		return ledger.ErrCategoryInUse
	}
	s.cats = slices.Delete(s.cats, i, i+1)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) txIndex(id int64) int {
	return slices.IndexFunc(s.txs, func(tx core.Transaction) bool { return tx.ID == id })
}

func (s *Store) catIndex(id int64) int {
	return slices.IndexFunc(s.cats, func(c core.Category) bool { return c.ID == id })
}

func (s *Store) countByCategory(id int64) int {
	n := 0
	for _, tx := range s.txs {
		if tx.CategoryID == id {
			n++
		}
	}
	return n
}

func parseCategoryLine(line string) (core.Category, bool) {
	parts := strings.Split(line, ";")
	if len(parts) != 4 {
		return core.Category{}, false
	}
	in := core.CategoryInput{
		Type:  core.TransactionType(strings.TrimSpace(parts[0])),
		Name:  parts[1],
		Icon:  parts[2],
		Color: parts[3],
	}
	if in.Validate() != nil {
		return core.Category{}, false
	}
	c := in.Category()
	c.IsDefault = true
	return c, true
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
