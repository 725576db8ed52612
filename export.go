package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb/geojson"
)

// RunRecord is a scenario together with one strategy's result, as stored on disk
type RunRecord struct {
	Strategy     Strategy     `json:"strategy"`
	Connectivity Connectivity `json:"connectivity"`
	Scenario     Scenario     `json:"scenario"`
	Result       RunResult    `json:"result"`
	Metrics      Metrics      `json:"metrics"`
}

// RunFeatureCollection renders a run as GeoJSON in grid coordinates
func RunFeatureCollection(rec RunRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	start := geojson.NewFeature(cellPoint(rec.Scenario.Start))
	start.Properties["kind"] = "start"
	fc.Append(start)

	if len(rec.Result.Path) > 1 {
		path := geojson.NewFeature(cellsToLineString(rec.Result.Path))
		path.Properties["kind"] = "path"
		path.Properties["strategy"] = rec.Strategy.String()
		path.Properties["terminal"] = string(rec.Result.Terminal)
		path.Properties["cells"] = len(rec.Result.Path)
		fc.Append(path)

		waypoints := geojson.NewFeature(cellsToLineString(CompressPath(rec.Result.Path, 0)))
		waypoints.Properties["kind"] = "waypoints"
		fc.Append(waypoints)
	}

	appendCells := func(kind string, cells []Cell) {
		if len(cells) == 0 {
			return
		}
		f := geojson.NewFeature(cellsToMultiPoint(cells))
		f.Properties["kind"] = kind
		f.Properties["count"] = len(cells)
		fc.Append(f)
	}
	appendCells("collected", rec.Result.Collected)
	appendCells("remaining", rec.Result.Remaining)
	appendCells("dropped", rec.Result.Dropped)
	appendCells("obstacles", rec.Scenario.Obstacles)

	return fc
}

// SaveGeoJSON writes the run's feature collection to filename
func SaveGeoJSON(rec RunRecord, filename string) error {
	data, err := RunFeatureCollection(rec).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal geojson: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	log.Printf("💾 GeoJSON saved to %s (%s)\n", filename, humanize.Bytes(uint64(len(data))))
	return nil
}

// SaveRunRecord serializes a run to a JSON file
func SaveRunRecord(rec RunRecord, filename string) error {
	log.Printf("💾 Saving run to %s...\n", filename)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	log.Printf("   ✅ Run saved (%s)\n", humanize.Bytes(uint64(len(data))))
	return nil
}

// LoadRunRecord reads a run written by SaveRunRecord
func LoadRunRecord(filename string) (RunRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to read file: %w", err)
	}

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return RunRecord{}, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return rec, nil
}
