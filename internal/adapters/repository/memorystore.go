package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/matchpoint/pkg/metrics"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and the
// memory backend, and mirrors the Dynamo implementation's semantics,
// including create-on-update and the SET/ADD expression subset the
// engine emits.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Key]Item
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Key]Item)}
}

// Get fetches one item by key.
func (s *MemoryStore) Get(_ context.Context, key Key) (Item, error) {
	defer observe("get", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", key.PK, key.SK, ErrNotFound)
	}
	return cloneItem(it), nil
}

// Put fully upserts an item.
func (s *MemoryStore) Put(_ context.Context, it Item) error {
	defer observe("put", time.Now())
	key := KeyOf(it)
	if key.PK == "" || key.SK == "" {
		return fmt.Errorf("%w: item missing PK/SK", ErrBadExpression)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = cloneItem(it)
	return nil
}

// Update applies a SET/ADD expression to the item, creating it if absent.
func (s *MemoryStore) Update(_ context.Context, key Key, expr string, names map[string]string, values map[string]any) error {
	defer observe("update", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if !ok {
		it = Item{AttrPK: key.PK, AttrSK: key.SK}
	}
	if err := applyExpression(it, expr, names, values); err != nil {
		metrics.RecordStoreOpError("update")
		return err
	}
	s.items[key] = it
	return nil
}

// Delete removes an item by key.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	defer observe("delete", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// QueryByTypePrefix returns pk's items whose sort key starts with "<prefix>#".
func (s *MemoryStore) QueryByTypePrefix(_ context.Context, pk, prefix string) ([]Item, error) {
	defer observe("query", time.Now())
	return s.query(pk, prefix+"#"), nil
}

// QueryAll returns every item under pk.
func (s *MemoryStore) QueryAll(_ context.Context, pk string) ([]Item, error) {
	defer observe("query", time.Now())
	return s.query(pk, ""), nil
}

func (s *MemoryStore) query(pk, skPrefix string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Item
	for key, it := range s.items {
		if key.PK != pk {
			continue
		}
		if skPrefix != "" && !strings.HasPrefix(key.SK, skPrefix) {
			continue
		}
		out = append(out, cloneItem(it))
	}
	sort.Slice(out, func(i, j int) bool {
		return KeyOf(out[i]).SK < KeyOf(out[j]).SK
	})
	return out
}

func cloneItem(it Item) Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

func observe(op string, start time.Time) {
	metrics.RecordStoreOpLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// applyExpression interprets the SET/ADD subset of DynamoDB update
// expressions: "SET a = :x, #n = :y" assigns, "ADD a :x, b :y" increments
// numeric attributes. Multiple clauses may be combined in one expression.
func applyExpression(it Item, expr string, names map[string]string, values map[string]any) error {
	for _, section := range splitSections(expr) {
		verb, rest, found := strings.Cut(strings.TrimSpace(section), " ")
		if !found {
			return fmt.Errorf("%w: %q", ErrBadExpression, expr)
		}
		for _, clause := range strings.Split(rest, ",") {
			clause = strings.TrimSpace(clause)
			switch strings.ToUpper(verb) {
			case "SET":
				if err := applySet(it, clause, names, values); err != nil {
					return err
				}
			case "ADD":
				if err := applyAdd(it, clause, names, values); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unsupported verb %q", ErrBadExpression, verb)
			}
		}
	}
	return nil
}

// splitSections breaks an expression into verb-led sections, so
// "SET a = :x ADD b :y" yields two sections.
func splitSections(expr string) []string {
	fields := strings.Fields(expr)
	var sections []string
	var current []string
	for _, f := range fields {
		upper := strings.ToUpper(f)
		if upper == "SET" || upper == "ADD" {
			if len(current) > 0 {
				sections = append(sections, strings.Join(current, " "))
			}
			current = []string{f}
			continue
		}
		current = append(current, f)
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, " "))
	}
	return sections
}

func applySet(it Item, clause string, names map[string]string, values map[string]any) error {
	attr, placeholder, found := strings.Cut(clause, "=")
	if !found {
		return fmt.Errorf("%w: SET clause %q", ErrBadExpression, clause)
	}
	name, err := resolveName(strings.TrimSpace(attr), names)
	if err != nil {
		return err
	}
	val, err := resolveValue(strings.TrimSpace(placeholder), values)
	if err != nil {
		return err
	}
	it[name] = val
	return nil
}

func applyAdd(it Item, clause string, names map[string]string, values map[string]any) error {
	parts := strings.Fields(clause)
	if len(parts) != 2 {
		return fmt.Errorf("%w: ADD clause %q", ErrBadExpression, clause)
	}
	name, err := resolveName(parts[0], names)
	if err != nil {
		return err
	}
	val, err := resolveValue(parts[1], values)
	if err != nil {
		return err
	}
	inc, ok := toNumber(val)
	if !ok {
		return fmt.Errorf("%w: ADD value for %q is not numeric", ErrBadExpression, name)
	}
	current, _ := toNumber(it[name])
	it[name] = numberValue(current + inc)
	return nil
}

func resolveName(attr string, names map[string]string) (string, error) {
	if !strings.HasPrefix(attr, "#") {
		return attr, nil
	}
	name, ok := names[attr]
	if !ok {
		return "", fmt.Errorf("%w: unresolved name %q", ErrBadExpression, attr)
	}
	return name, nil
}

func resolveValue(placeholder string, values map[string]any) (any, error) {
	val, ok := values[placeholder]
	if !ok {
		return nil, fmt.Errorf("%w: unresolved value %q", ErrBadExpression, placeholder)
	}
	return val, nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case nil:
		return 0, true
	default:
		return 0, false
	}
}

// numberValue stores whole results as int to keep round-trips stable.
func numberValue(f float64) any {
	if f == float64(int(f)) {
		return int(f)
	}
	return f
}
