package attri

import (
	"fmt"
	"sort"

	"github.com/ironsheep/cvdata-tools/internal/fsutil"
)

// Manager maps item keys to attribute records.
type Manager struct {
	table map[string]Struct
}

// New wraps an existing table. A nil table starts empty.
func New(table map[string]Struct) *Manager {
	if table == nil {
		table = make(map[string]Struct)
	}
	return &Manager{table: table}
}

// FromKeys creates a manager with an empty record for every key.
func FromKeys(keys []string) *Manager {
	table := make(map[string]Struct, len(keys))
	for _, k := range keys {
		table[k] = Struct{}
	}
	return &Manager{table: table}
}

// FromFile loads a table saved by Dump.
func FromFile(path string) (*Manager, error) {
	table, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return &Manager{table: table}, nil
}

func readTable(path string) (map[string]Struct, error) {
	var table map[string]Struct
	if err := fsutil.ReadJSON(path, &table); err != nil {
		return nil, err
	}
	if table == nil {
		table = make(map[string]Struct)
	}
	for k, v := range table {
		if v == nil {
			table[k] = Struct{}
		}
	}
	return table, nil
}

// Len returns the number of items.
func (m *Manager) Len() int {
	return len(m.table)
}

// Keys returns the item keys in sorted order.
func (m *Manager) Keys() []string {
	keys := make([]string, 0, len(m.table))
	for k := range m.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Item returns the record of key.
func (m *Manager) Item(key string) (Struct, bool) {
	rec, ok := m.table[key]
	return rec, ok
}

// Table returns the underlying table. Callers must not modify it while
// other goroutines use the manager.
func (m *Manager) Table() map[string]Struct {
	return m.table
}

// AddItem inserts a new item. It returns false, leaving the table unchanged,
// when the key already exists.
func (m *Manager) AddItem(key string, rec Struct) bool {
	if _, ok := m.table[key]; ok {
		return false
	}
	if rec == nil {
		rec = Struct{}
	}
	m.table[key] = rec
	return true
}

// SetAttri assigns name=value on the given items, or on every item when no
// keys are given. Unknown keys are created with an empty record first.
func (m *Manager) SetAttri(name string, value any, keys ...string) {
	if len(keys) == 0 {
		for k, rec := range m.table {
			if rec == nil {
				rec = Struct{}
				m.table[k] = rec
			}
			rec.Set(name, value)
		}
		return
	}
	for _, k := range keys {
		rec, ok := m.table[k]
		if !ok || rec == nil {
			rec = Struct{}
			m.table[k] = rec
		}
		rec.Set(name, value)
	}
}

// Select returns the items whose record satisfies every condition. An empty
// condition list selects all items. Evaluation stops at the first false
// condition of an item; an evaluation error aborts the whole selection.
func (m *Manager) Select(conds []Condition) (map[string]Struct, error) {
	selected := make(map[string]Struct)
	for key, rec := range m.table {
		ok := true
		for _, c := range conds {
			match, err := c.Eval(rec)
			if err != nil {
				return nil, fmt.Errorf("item %q: %w", key, err)
			}
			if !match {
				ok = false
				break
			}
		}
		if ok {
			selected[key] = rec
		}
	}
	return selected, nil
}

// Dump saves the table as a JSON object keyed by item.
func (m *Manager) Dump(path string) error {
	return fsutil.WriteJSON(path, m.table)
}

// Update replaces the table.
func (m *Manager) Update(table map[string]Struct) {
	if table == nil {
		table = make(map[string]Struct)
	}
	m.table = table
}

// UpdateFromFile replaces the table with the one stored at path.
func (m *Manager) UpdateFromFile(path string) error {
	table, err := readTable(path)
	if err != nil {
		return err
	}
	m.table = table
	return nil
}

// AttriNames returns the attribute names of the first item in key order,
// or nil for an empty table.
func (m *Manager) AttriNames() []string {
	keys := m.Keys()
	if len(keys) == 0 {
		return nil
	}
	return m.table[keys[0]].Names()
}
