// Command pollen prints the current DWD pollen-load forecast as JSON.
//
// Usage:
//
//	pollen -r 50            # Brandenburg und Berlin
//	pollen -r 90 -p 92      # Hessen, Rhein-Main
//	pollen --list           # list all known regions
//	pollen -r 50 -o out.json --no-cache
//
// All output is JSON on stdout (or the -o file); failures produce a JSON
// error object and a non-zero exit code. Logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/dwd-pollen/internal/adapter/dwd"
	"github.com/couchcryptid/dwd-pollen/internal/cache"
	"github.com/couchcryptid/dwd-pollen/internal/client"
	"github.com/couchcryptid/dwd-pollen/internal/config"
	"github.com/couchcryptid/dwd-pollen/internal/domain"
	"github.com/couchcryptid/dwd-pollen/internal/observability"
)

type options struct {
	regionID     int
	partregionID int
	outputPath   string
	noCache      bool
	listRegions  bool
}

func parseFlags() options {
	var opts options
	flag.IntVar(&opts.regionID, "region", -1, "region ID")
	flag.IntVar(&opts.regionID, "r", -1, "region ID (shorthand)")
	flag.IntVar(&opts.partregionID, "partregion", -1, "partregion ID")
	flag.IntVar(&opts.partregionID, "p", -1, "partregion ID (shorthand)")
	flag.StringVar(&opts.outputPath, "output", "", "output file (default stdout)")
	flag.StringVar(&opts.outputPath, "o", "", "output file (shorthand)")
	flag.BoolVar(&opts.noCache, "no-cache", false, "bypass the cache and force a data update")
	flag.BoolVar(&opts.listRegions, "list", false, "list all known regions")
	flag.BoolVar(&opts.listRegions, "l", false, "list all known regions (shorthand)")
	flag.Parse()
	return opts
}

func main() {
	os.Exit(run(parseFlags()))
}

func run(opts options) int {
	// The region listing is static reference data; it never touches the
	// network or the cache.
	if opts.listRegions {
		return emitRegionList(opts.outputPath)
	}

	if opts.regionID < 0 {
		return emitError(opts.outputPath, "missing required argument: region", 0)
	}

	cfg, err := config.Load()
	if err != nil {
		return emitError(opts.outputPath, err.Error(), 500)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	cachePath := cfg.CachePath
	if cachePath == "" {
		if cachePath, err = cache.DefaultPath(); err != nil {
			return emitError(opts.outputPath, fmt.Sprintf("resolve cache path: %v", err), 500)
		}
	}

	transport := dwd.NewClient(cfg.APIURL, cfg.FetchTimeout, metrics, logger)
	snapshots := cache.NewManager(cachePath, cfg.CacheDuration, logger)
	api := client.New(transport, snapshots, logger, metrics, cfg.RetryCount, cfg.RetryDelay)

	ctx := context.Background()
	if err := api.Update(ctx, opts.noCache); err != nil {
		// A failed initial update is not fatal yet; Get forces one more
		// attempt before giving up.
		logger.Warn("initial update failed", "error", err)
	}

	region, err := api.Get(ctx, opts.regionID, opts.partregionID)
	if err != nil {
		if errors.Is(err, domain.ErrRegionNotFound) {
			return emitError(opts.outputPath, err.Error(), 404)
		}
		return emitError(opts.outputPath, err.Error(), 500)
	}

	if err := emitJSON(opts.outputPath, region); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type regionListEntry struct {
	RegionID     int    `json:"region_id"`
	PartregionID int    `json:"partregion_id"`
	Name         string `json:"name"`
}

func emitRegionList(outputPath string) int {
	known := domain.KnownRegions()
	entries := make([]regionListEntry, 0, len(known))
	for _, r := range known {
		entries = append(entries, regionListEntry{
			RegionID:     r.RegionID,
			PartregionID: r.PartregionID,
			Name:         r.DisplayName(),
		})
	}
	if err := emitJSON(outputPath, map[string]any{"regions": entries}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func emitError(outputPath, msg string, code int) int {
	body := map[string]any{
		"status": "error",
		"error":  msg,
	}
	if code != 0 {
		body["code"] = code
	}
	if err := emitJSON(outputPath, body); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return 1
}

func emitJSON(outputPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
