package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/paulmach/orb"
)

const obstacleFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [1, 1]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Polygon",
      "coordinates": [[[3, 3], [5, 3], [5, 5], [3, 5], [3, 3]]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Polygon",
      "coordinates": [[[3.5, 3.5], [4.5, 3.5], [4.5, 4.5], [3.5, 4.5], [3.5, 3.5]]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[0, 0], [9, 9]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "MultiPoint", "coordinates": [[8, 8], [20, 20], [1, 1]]}}
  ]
}`

func sortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}

func TestParseObstacleGeoJSON(t *testing.T) {
	cells, err := ParseObstacleGeoJSON([]byte(obstacleFixture), 10)
	if err != nil {
		t.Fatalf("ParseObstacleGeoJSON: %v", err)
	}

	// One point, one 3x3 block, one multipoint cell; duplicates and off-grid points dropped
	if len(cells) != 11 {
		t.Fatalf("got %d cells: %v", len(cells), cells)
	}
	set := make(map[Cell]bool)
	for _, c := range cells {
		set[c] = true
	}
	for _, want := range []Cell{{1, 1}, {3, 3}, {4, 4}, {5, 5}, {8, 8}} {
		if !set[want] {
			t.Fatalf("missing obstacle %s in %v", want, cells)
		}
	}
}

func TestParseObstacleGeoJSONClipsToGrid(t *testing.T) {
	cells, err := ParseObstacleGeoJSON([]byte(obstacleFixture), 5)
	if err != nil {
		t.Fatalf("ParseObstacleGeoJSON: %v", err)
	}
	sortCells(cells)
	want := []Cell{{1, 1}, {3, 3}, {4, 3}, {3, 4}, {4, 4}}
	if len(cells) != len(want) {
		t.Fatalf("cells = %v, want %v", cells, want)
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Fatalf("cells = %v, want %v", cells, want)
		}
	}
}

func TestParseObstacleGeoJSONInvalid(t *testing.T) {
	if _, err := ParseObstacleGeoJSON([]byte("not json"), 10); err == nil {
		t.Fatal("invalid input should fail")
	}
}

func TestLoadObstacleFilesSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "reef.geojson"), []byte(obstacleFixture), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.geojson"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	cells, err := LoadObstacleFiles(dir, 10)
	if err != nil {
		t.Fatalf("LoadObstacleFiles: %v", err)
	}
	if len(cells) != 11 {
		t.Fatalf("loaded %d cells, want 11", len(cells))
	}
}

func TestMergeObstacleRegions(t *testing.T) {
	outer := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	inner := orb.Polygon{{{2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}}}
	apart := orb.Polygon{{{20, 20}, {22, 20}, {22, 22}, {20, 22}, {20, 20}}}
	overlapping := orb.Polygon{{{8, 8}, {12, 8}, {12, 12}, {8, 12}, {8, 8}}}

	got := MergeObstacleRegions([]orb.Polygon{inner, outer, apart, overlapping})
	if len(got) != 3 {
		t.Fatalf("kept %d polygons, want 3", len(got))
	}
	for _, p := range got {
		if p.Bound() == inner.Bound() {
			t.Fatal("contained polygon was kept")
		}
	}

	if got := MergeObstacleRegions([]orb.Polygon{inner}); len(got) != 1 {
		t.Fatal("single polygon should pass through")
	}
}

func TestMergeAndFilterCells(t *testing.T) {
	merged := mergeCells([]Cell{{1, 1}, {2, 2}}, []Cell{{2, 2}, {3, 3}, {3, 3}})
	if len(merged) != 3 || merged[2] != (Cell{3, 3}) {
		t.Fatalf("merged = %v", merged)
	}
	kept := withoutCells([]Cell{{1, 1}, {2, 2}, {3, 3}}, []Cell{{2, 2}})
	if len(kept) != 2 || kept[1] != (Cell{3, 3}) {
		t.Fatalf("kept = %v", kept)
	}
}
