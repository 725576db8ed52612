package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// LoadObstacleFiles rasterises every *.geojson file in dir onto the grid.
// Files that fail to read or parse are skipped with a warning.
func LoadObstacleFiles(dir string, gridSize int) ([]Cell, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, err
	}

	log.Printf("Loading obstacle regions from %d GeoJSON files...\n", len(files))

	seen := make(map[Cell]bool)
	var all []Cell
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		cells, err := ParseObstacleGeoJSON(data, gridSize)
		if err != nil {
			log.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}

		added := 0
		for _, c := range cells {
			if !seen[c] {
				seen[c] = true
				all = append(all, c)
				added++
			}
		}
		log.Printf("   ✅ Loaded %d obstacle cells from %s\n", added, filepath.Base(file))
	}

	log.Printf("Total obstacle cells loaded: %d\n", len(all))
	return all, nil
}

// ParseObstacleGeoJSON converts a FeatureCollection in grid coordinates into obstacle cells.
// Points mark single cells; polygons mark every cell whose centre lies inside.
func ParseObstacleGeoJSON(data []byte, gridSize int) ([]Cell, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature collection: %w", err)
	}

	world := NewGridWorld(gridSize, nil)
	seen := make(map[Cell]bool)
	var cells []Cell
	add := func(c Cell) {
		if world.InBounds(c) && !seen[c] {
			seen[c] = true
			cells = append(cells, c)
		}
	}

	var polygons []orb.Polygon
	for _, feature := range fc.Features {
		switch g := feature.Geometry.(type) {
		case orb.Point:
			add(pointCell(g))
		case orb.MultiPoint:
			for _, p := range g {
				add(pointCell(p))
			}
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		default:
			if feature.Geometry != nil {
				log.Printf("⚠️  Ignoring unsupported geometry %s\n", feature.Geometry.GeoJSONType())
			}
		}
	}

	for _, poly := range MergeObstacleRegions(polygons) {
		rasterize(world, poly, add)
	}
	return cells, nil
}

// rasterize adds every grid cell whose centre lies inside poly
func rasterize(world *GridWorld, poly orb.Polygon, add func(Cell)) {
	bound := poly.Bound()
	minX := clampInt(int(math.Floor(bound.Min[0])), 0, world.Size()-1)
	maxX := clampInt(int(math.Ceil(bound.Max[0])), 0, world.Size()-1)
	minY := clampInt(int(math.Floor(bound.Min[1])), 0, world.Size()-1)
	maxY := clampInt(int(math.Ceil(bound.Max[1])), 0, world.Size()-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			c := Cell{X: x, Y: y}
			if planar.PolygonContains(poly, cellPoint(c)) {
				add(c)
			}
		}
	}
}

func pointCell(p orb.Point) Cell {
	return Cell{X: int(math.Round(p[0])), Y: int(math.Round(p[1]))}
}
