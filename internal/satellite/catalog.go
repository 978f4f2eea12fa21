// Package satellite resolves satellite imagery for the monitored zone by
// date. There is no ingestion pipeline: scenes are static files on disk laid
// out one directory per day, and lookup is pure path resolution plus an
// existence check. The Catalog interface keeps consumers independent of how
// scenes are stored.
package satellite

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"firebay/internal/types"
)

// Scene file names inside a day directory.
const (
	rgbFileName     = "rgb.png"
	thermalFileName = "thermal.png"
)

// dateLayout is the day-directory naming convention.
const dateLayout = "2006-01-02"

// lookupConcurrencyLimit bounds concurrent stat calls in range lookups.
const lookupConcurrencyLimit = 8

// maxRangeDays caps the length of a range lookup.
const maxRangeDays = 92

// ScenePaths reports the resolved file paths for one day's imagery and
// whether each file actually exists on disk. A missing file is reported,
// not an error: days without imagery are normal.
type ScenePaths struct {
	Date             string `json:"date"`
	RGBPath          string `json:"rgb_path"`
	ThermalPath      string `json:"thermal_path"`
	RGBAvailable     bool   `json:"rgb_available"`
	ThermalAvailable bool   `json:"thermal_available"`
}

// Available reports whether any imagery exists for the day.
func (s ScenePaths) Available() bool {
	return s.RGBAvailable || s.ThermalAvailable
}

// Catalog resolves imagery by date.
type Catalog interface {
	Lookup(ctx context.Context, date time.Time) (ScenePaths, error)
	LookupRange(ctx context.Context, start, end time.Time) ([]ScenePaths, error)
}

// DirCatalog is a Catalog over a scenes directory: <root>/<YYYY-MM-DD>/rgb.png
// and <root>/<YYYY-MM-DD>/thermal.png.
type DirCatalog struct {
	root string
}

// NewDirCatalog creates a catalog rooted at dir.
func NewDirCatalog(dir string) *DirCatalog {
	return &DirCatalog{root: dir}
}

// Lookup resolves the scene paths for one day.
func (c *DirCatalog) Lookup(ctx context.Context, date time.Time) (ScenePaths, error) {
	if err := ctx.Err(); err != nil {
		return ScenePaths{}, err
	}

	day := date.UTC().Format(dateLayout)
	rgb := filepath.Join(c.root, day, rgbFileName)
	thermal := filepath.Join(c.root, day, thermalFileName)

	return ScenePaths{
		Date:             day,
		RGBPath:          rgb,
		ThermalPath:      thermal,
		RGBAvailable:     fileExists(rgb),
		ThermalAvailable: fileExists(thermal),
	}, nil
}

// LookupRange resolves scene paths for every day in [start, end], both ends
// inclusive, checking days concurrently with a bounded fan-out. Results come
// back in chronological order.
func (c *DirCatalog) LookupRange(ctx context.Context, start, end time.Time) ([]ScenePaths, error) {
	start = start.UTC().Truncate(24 * time.Hour)
	end = end.UTC().Truncate(24 * time.Hour)

	if end.Before(start) {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidRange,
			"end date must not be before start date",
			nil,
		)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxRangeDays {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidRange,
			"requested range is too long",
			nil,
			map[string]any{"max_days": maxRangeDays, "requested_days": days},
		)
	}

	results := make([]ScenePaths, days)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrencyLimit)

	for i := 0; i < days; i++ {
		i := i
		g.Go(func() error {
			scene, err := c.Lookup(gCtx, start.AddDate(0, 0, i))
			if err != nil {
				return err
			}
			results[i] = scene
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// CheckRoot verifies the scenes directory exists and is readable. Used as a
// health probe.
func (c *DirCatalog) CheckRoot(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(c.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "stat", Path: c.root, Err: os.ErrInvalid}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
