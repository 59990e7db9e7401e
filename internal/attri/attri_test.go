package attri

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func sampleManager() *Manager {
	return New(map[string]Struct{
		"img1": {"score": 0.9, "label": "cat", "reviewed": true},
		"img2": {"score": 0.3, "label": "cat", "reviewed": false},
		"img3": {"score": 0.7, "label": "dog", "reviewed": true},
		"img4": {"score": 0.51, "label": "cat", "reviewed": true},
	})
}

func keysOf(m map[string]Struct) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestSelect(t *testing.T) {
	m := sampleManager()

	tests := []struct {
		name  string
		conds []Condition
		want  []string
	}{
		{"empty selects all", nil, []string{"img1", "img2", "img3", "img4"}},
		{"score and label", []Condition{{"score", Gt, 0.5}, {"label", Eq, "cat"}}, []string{"img1", "img4"}},
		{"not equal string", []Condition{{"label", Ne, "cat"}}, []string{"img3"}},
		{"less or equal", []Condition{{"score", Le, 0.51}}, []string{"img2", "img4"}},
		{"bool equality", []Condition{{"reviewed", Eq, false}}, []string{"img2"}},
		{"int operand", []Condition{{"score", Ge, 1}}, []string{}},
		{"string ordering", []Condition{{"label", Lt, "d"}}, []string{"img1", "img2", "img4"}},
		{"cross kind equality is false", []Condition{{"label", Eq, 1}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Select(tt.conds)
			if err != nil {
				t.Fatalf("Select failed: %v", err)
			}
			if keys := keysOf(got); !reflect.DeepEqual(keys, tt.want) {
				t.Errorf("got %v, want %v", keys, tt.want)
			}
		})
	}
}

func TestSelect_Errors(t *testing.T) {
	m := sampleManager()

	tests := []struct {
		name  string
		conds []Condition
		want  error
	}{
		{"missing attribute", []Condition{{"width", Gt, 10}}, ErrMissingAttr},
		{"string vs number ordering", []Condition{{"label", Gt, 0.5}}, ErrIncomparable},
		{"bool ordering", []Condition{{"reviewed", Lt, true}}, ErrIncomparable},
		{"unknown operator", []Condition{{"score", Op("=~"), 0.5}}, ErrUnknownOp},
		{"unsupported value", []Condition{{"score", Eq, []int{1}}}, ErrIncomparable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Select(tt.conds)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSelect_ShortCircuit(t *testing.T) {
	m := New(map[string]Struct{
		"a": {"score": 0.1},
	})
	// The second condition would fail on the missing attribute, but the
	// first one is already false.
	got, err := m.Select([]Condition{{"score", Gt, 0.5}, {"label", Eq, "cat"}})
	if err != nil {
		t.Fatalf("Select should short-circuit: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want none", keysOf(got))
	}
}

func TestCompare_NumericKinds(t *testing.T) {
	tests := []struct {
		a, b any
		op   Op
		want bool
	}{
		{int64(3), 3.0, Eq, true},
		{uint8(2), int32(5), Lt, true},
		{float32(1.5), 1.5, Ge, true},
		{json.Number("10"), 9, Gt, true},
		{nil, nil, Eq, true},
		{nil, "x", Ne, true},
	}
	for _, tt := range tests {
		got, err := Compare(tt.a, tt.op, tt.b)
		if err != nil {
			t.Errorf("Compare(%v %s %v): %v", tt.a, tt.op, tt.b, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Compare(%v %s %v): got %v, want %v", tt.a, tt.op, tt.b, got, tt.want)
		}
	}
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		expr string
		want Condition
	}{
		{"score>0.5", Condition{"score", Gt, 0.5}},
		{"score >= 1", Condition{"score", Ge, 1.0}},
		{`label=="cat"`, Condition{"label", Eq, "cat"}},
		{"label=='cat'", Condition{"label", Eq, "cat"}},
		{"label==cat", Condition{"label", Eq, "cat"}},
		{"reviewed!=true", Condition{"reviewed", Ne, true}},
		{"note==null", Condition{"note", Eq, nil}},
		{"a<=b", Condition{"a", Le, "b"}},
	}
	for _, tt := range tests {
		got, err := ParseCondition(tt.expr)
		if err != nil {
			t.Errorf("ParseCondition(%q): %v", tt.expr, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseCondition(%q): got %+v, want %+v", tt.expr, got, tt.want)
		}
	}

	for _, bad := range []string{"score", "==3", "score=3"} {
		if _, err := ParseCondition(bad); err == nil {
			t.Errorf("ParseCondition(%q): expected error", bad)
		}
	}
}

func TestParseOp(t *testing.T) {
	for _, s := range []string{"==", "!=", "<", "<=", ">", ">="} {
		if _, err := ParseOp(s); err != nil {
			t.Errorf("ParseOp(%q): %v", s, err)
		}
	}
	if _, err := ParseOp("="); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("ParseOp(=): expected ErrUnknownOp, got %v", err)
	}
}

func TestManager_Items(t *testing.T) {
	m := FromKeys([]string{"b", "a"})

	if m.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", m.Len())
	}
	if !reflect.DeepEqual(m.Keys(), []string{"a", "b"}) {
		t.Errorf("Keys: got %v", m.Keys())
	}
	if m.AddItem("a", Struct{"x": 1}) {
		t.Error("AddItem should refuse an existing key")
	}
	if !m.AddItem("c", nil) {
		t.Error("AddItem should accept a new key")
	}

	m.SetAttri("split", "train")
	m.SetAttri("split", "val", "b")
	m.SetAttri("weight", 2, "d")

	a, _ := m.Item("a")
	b, _ := m.Item("b")
	d, ok := m.Item("d")
	if a["split"] != "train" || b["split"] != "val" {
		t.Errorf("SetAttri: a=%v b=%v", a, b)
	}
	if !ok || d["weight"] != 2 {
		t.Errorf("SetAttri on new key: %v", d)
	}
	if !reflect.DeepEqual(m.AttriNames(), []string{"split"}) {
		t.Errorf("AttriNames: got %v", m.AttriNames())
	}
}

func TestManager_DumpAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attri.json")
	m := sampleManager()

	if err := m.Dump(path); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	loaded, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Table(), m.Table()) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", loaded.Table(), m.Table())
	}

	other := FromKeys([]string{"x"})
	if err := other.UpdateFromFile(path); err != nil {
		t.Fatalf("UpdateFromFile failed: %v", err)
	}
	if other.Len() != 4 {
		t.Errorf("UpdateFromFile: got %d items, want 4", other.Len())
	}

	other.Update(nil)
	if other.Len() != 0 {
		t.Errorf("Update(nil): got %d items, want 0", other.Len())
	}
}

func TestManager_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attri.db")
	m := sampleManager()
	m.AddItem("bare", nil)

	if err := m.SaveSQLite(path); err != nil {
		t.Fatalf("SaveSQLite failed: %v", err)
	}
	// A second save replaces the snapshot instead of failing on duplicates.
	if err := m.SaveSQLite(path); err != nil {
		t.Fatalf("second SaveSQLite failed: %v", err)
	}

	loaded, err := LoadSQLite(path)
	if err != nil {
		t.Fatalf("LoadSQLite failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Table(), m.Table()) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", loaded.Table(), m.Table())
	}
}

func TestStruct(t *testing.T) {
	s := Struct{}
	s.Set("b", 1)
	s.Set("a", "x")

	if v, ok := s.Get("a"); !ok || v != "x" {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	if !reflect.DeepEqual(s.Names(), []string{"a", "b"}) {
		t.Errorf("Names: got %v", s.Names())
	}
	if s.String() != `{"a":"x","b":1}` {
		t.Errorf("String: got %s", s.String())
	}
}
