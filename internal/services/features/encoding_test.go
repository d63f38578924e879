package features

import (
	"encoding/json"
	"testing"
)

func TestBuildEncodingTableDeterministic(t *testing.T) {
	vocab := []string{"alpha", "beta", "gamma"}
	a := BuildEncodingTable(vocab)
	b := BuildEncodingTable(vocab)

	for _, v := range vocab {
		if a.Code(v) != b.Code(v) {
			t.Fatalf("codes differ for %q: %d vs %d", v, a.Code(v), b.Code(v))
		}
	}
	if a.Code("alpha") != 0 || a.Code("beta") != 1 || a.Code("gamma") != 2 {
		t.Fatalf("codes should follow input order: %v", a.Codes())
	}
}

func TestBuildEncodingTableDeduplicates(t *testing.T) {
	tbl := BuildEncodingTable([]string{"x", "y", "x"})
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", tbl.Len())
	}
	if tbl.Code("y") != 1 {
		t.Fatalf("duplicate should not consume a code")
	}
}

func TestCodeUnknownValue(t *testing.T) {
	tbl := BuildEncodingTable([]string{"known"})
	if tbl.Code("unknown") != DefaultCode {
		t.Fatalf("unknown value should map to default code")
	}

	var nilTable *EncodingTable
	if nilTable.Code("anything") != DefaultCode {
		t.Fatalf("nil table should map to default code")
	}
	if nilTable.Len() != 0 {
		t.Fatalf("nil table length should be 0")
	}
}

func TestValuesSortedByCode(t *testing.T) {
	tbl := BuildEncodingTable([]string{"c", "a", "b"})
	got := tbl.Values()
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEncodingTableJSONRoundTrip(t *testing.T) {
	tbl := BuildEncodingTable([]string{"one", "two"})
	data, err := json.Marshal(tbl)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored EncodingTable
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Code("one") != 0 || restored.Code("two") != 1 {
		t.Fatalf("codes lost in round trip: %v", restored.Codes())
	}
}
