package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
)

// envColumns maps every accepted header (buoy export or English alias) to a field setter
var envColumns = map[string]func(*EnvParams, float64){
	"풍속(m/s)":                 func(e *EnvParams, v float64) { e.WindSpeed = v },
	"wind_speed":              func(e *EnvParams, v float64) { e.WindSpeed = v },
	"풍향(deg)":                 func(e *EnvParams, v float64) { e.WindDirection = v },
	"wind_direction":          func(e *EnvParams, v float64) { e.WindDirection = v },
	"GUST풍속(m/s)":             func(e *EnvParams, v float64) { e.GustSpeed = v },
	"gust_speed":              func(e *EnvParams, v float64) { e.GustSpeed = v },
	"최대파고(m)":                 func(e *EnvParams, v float64) { e.MaxWaveHeight = v },
	"max_wave_height":         func(e *EnvParams, v float64) { e.MaxWaveHeight = v },
	"유의파고(m)":                 func(e *EnvParams, v float64) { e.SignificantWaveHeight = v },
	"significant_wave_height": func(e *EnvParams, v float64) { e.SignificantWaveHeight = v },
	"평균파고(m)":                 func(e *EnvParams, v float64) { e.MeanWaveHeight = v },
	"mean_wave_height":        func(e *EnvParams, v float64) { e.MeanWaveHeight = v },
	"파주기(sec)":                func(e *EnvParams, v float64) { e.WavePeriod = v },
	"wave_period":             func(e *EnvParams, v float64) { e.WavePeriod = v },
	"파향(deg)":                 func(e *EnvParams, v float64) { e.WaveDirection = v },
	"wave_direction":          func(e *EnvParams, v float64) { e.WaveDirection = v },
}

// LoadEnvRecords reads environmental observations from a CSV file
func LoadEnvRecords(path string) ([]EnvParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open env data: %w", err)
	}
	defer f.Close()

	records, err := ParseEnvRecords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	log.Printf("📂 Loaded %d environmental rows from %s\n", len(records), path)
	return records, nil
}

// ParseEnvRecords decodes CSV rows. Unknown columns are ignored; absent, empty,
// NaN or unparsable values become zero.
func ParseEnvRecords(r io.Reader) ([]EnvParams, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	setters := make([]func(*EnvParams, float64), len(header))
	matched := 0
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if set, ok := envColumns[name]; ok {
			setters[i] = set
			matched++
		}
	}
	if matched == 0 {
		log.Println("⚠️  No environmental columns recognised; every row defaults to calm conditions")
	}

	var records []EnvParams
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		var env EnvParams
		for i, raw := range row {
			if i >= len(setters) || setters[i] == nil {
				continue
			}
			setters[i](&env, parseEnvValue(raw))
		}
		records = append(records, env)
	}
	return records, nil
}

func parseEnvValue(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
