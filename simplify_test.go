package main

import (
	"reflect"
	"testing"
)

func TestCompressPath(t *testing.T) {
	cases := []struct {
		name string
		path []Cell
		want []Cell
	}{
		{"straight", []Cell{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, []Cell{{0, 0}, {3, 0}}},
		{"corner", []Cell{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}}, []Cell{{0, 0}, {2, 0}, {2, 2}}},
		{"diagonal", []Cell{{0, 0}, {1, 1}, {2, 2}, {3, 2}}, []Cell{{0, 0}, {2, 2}, {3, 2}}},
		{"two cells", []Cell{{0, 0}, {0, 1}}, []Cell{{0, 0}, {0, 1}}},
		{"single", []Cell{{4, 4}}, []Cell{{4, 4}}},
	}
	for _, tc := range cases {
		if got := CompressPath(tc.path, 0); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: CompressPath = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCompressPathDoesNotAliasInput(t *testing.T) {
	path := []Cell{{0, 0}, {1, 0}}
	out := CompressPath(path, 0)
	out[0] = Cell{9, 9}
	if path[0] != (Cell{0, 0}) {
		t.Fatal("CompressPath returned the input slice")
	}
}

func TestCompressPathTolerance(t *testing.T) {
	// A one-cell jog disappears once the tolerance exceeds it
	path := []Cell{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {3, 1}, {4, 1}, {5, 1}, {6, 1}}
	if got := CompressPath(path, 0); len(got) != 4 {
		t.Fatalf("zero tolerance kept %v", got)
	}
	if got := CompressPath(path, 1); !reflect.DeepEqual(got, []Cell{{0, 0}, {6, 1}}) {
		t.Fatalf("tolerance 1 kept %v", got)
	}
}
