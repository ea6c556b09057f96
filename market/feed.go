package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
)

// Bar CSV layout: time,open,high,low,close,volume with an optional header
// row. Timestamps are RFC3339 or plain dates (2006-01-02).
//
// All loading happens before a run starts; the engine itself never touches
// the filesystem.

// LoadCSV reads one symbol's bars from a CSV file. The symbol is taken from
// the file name (base name without extension).
func LoadCSV(path string) (*BarSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer f.Close()

	return readBars(symbolFromPath(path), f)
}

// LoadXZ reads bars from an xz-compressed CSV (name.csv.xz).
func LoadXZ(path string) (*BarSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("load bars: xz %s: %w", path, err)
	}
	return readBars(symbolFromPath(path), r)
}

// LoadZip extracts a zip archive of per-symbol CSV files (the daily-quotes
// bundle layout) and returns a series per symbol.
func LoadZip(path string) (map[string]*BarSeries, error) {
	dir, err := os.MkdirTemp("", "daytrader-bars-*")
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(path, dir); err != nil {
		return nil, fmt.Errorf("load bars: unzip %s: %w", path, err)
	}

	out := make(map[string]*BarSeries)
	walk := func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(p), ".csv") {
			return nil
		}
		s, err := LoadCSV(p)
		if err != nil {
			return err
		}
		out[s.Symbol()] = s
		return nil
	}
	if err := filepath.Walk(dir, walk); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("load bars: no CSV files in %s", path)
	}
	return out, nil
}

// LoadFile dispatches on extension: .csv, .csv.xz / .xz.
func LoadFile(path string) (*BarSeries, error) {
	if strings.HasSuffix(path, ".xz") {
		return LoadXZ(path)
	}
	return LoadCSV(path)
}

func symbolFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".xz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readBars(symbol string, r io.Reader) (*BarSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []Bar
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load bars %s: %w", symbol, err)
		}
		line++
		if line == 1 && isHeader(row) {
			continue
		}
		b, err := parseBar(row)
		if err != nil {
			return nil, fmt.Errorf("load bars %s line %d: %w", symbol, line, err)
		}
		bars = append(bars, b)
	}
	return NewBarSeries(symbol, bars)
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "time")
}

func parseBar(row []string) (Bar, error) {
	if len(row) < 6 {
		return Bar{}, fmt.Errorf("need 6 columns time,open,high,low,close,volume, got %d", len(row))
	}

	ts := strings.TrimSpace(row[0])
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		if t, err = time.Parse("2006-01-02", ts); err != nil {
			return Bar{}, fmt.Errorf("bad time %q", row[0])
		}
	}

	var px [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad price %q", row[i+1])
		}
		px[i] = v
	}

	vol, err := strconv.ParseInt(strings.TrimSpace(row[5]), 10, 64)
	if err != nil {
		return Bar{}, fmt.Errorf("bad volume %q", row[5])
	}

	return Bar{Time: t, Open: px[0], High: px[1], Low: px[2], Close: px[3], Volume: vol}, nil
}
