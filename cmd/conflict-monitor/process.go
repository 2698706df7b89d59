// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/conflict-monitor/internal/archive"
	"github.com/pdiddy/conflict-monitor/internal/fetch"
	"github.com/pdiddy/conflict-monitor/internal/pipeline"
	"github.com/pdiddy/conflict-monitor/internal/secrets"
	"github.com/pdiddy/conflict-monitor/pkg/types"
)

const (
	defaultDownloadTimeout = 30 * time.Second
	defaultListingTimeout  = 10 * time.Second
	defaultUserAgent       = "conflict-monitor/0.1"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Fetch the latest snapshots and validate them",
	Long: `Process lists available snapshot files, selects the most recent ones,
downloads each, and validates it. Snapshots that fail validation are written
to the quarantine directory together with an error report; the rest are
accepted. Each file is independent: a fetch or parse failure on one never
aborts the batch.

With --dir, snapshots are read from a local directory instead of the remote
listing.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("listing-url", "", "remote listing endpoint (JSON array of {name, download_url})")
	processCmd.Flags().String("dir", "", "process date-named *.json files from a local directory instead")
	processCmd.Flags().Int("latest", 7, "number of most recent snapshots to process")
	processCmd.Flags().String("quarantine-dir", "quarantine", "directory for failing snapshots and error reports")
	processCmd.Flags().String("archive-dir", "archive", "directory for the run-history database")
	processCmd.Flags().String("summary", "", "write a YAML run summary to this path")
	processCmd.Flags().Duration("timeout", 0, "content download timeout (default 30s)")
	processCmd.Flags().Duration("listing-timeout", 0, "listing request timeout (default 10s)")
	processCmd.Flags().String("api-token", "", "bearer token for the listing API (default: .secrets/listing-api-token)")
	processCmd.Flags().Bool("flag-all-duplicates", false, "flag every occurrence of a duplicated unit id, not just repeats")
	processCmd.Flags().StringSlice("fatal-codes", nil, "warning codes that force a snapshot to fail (e.g. COUNT_MISMATCH)")
	processCmd.Flags().Bool("no-archive", false, "skip recording the run in the archive")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	listingURL, _ := cmd.Flags().GetString("listing-url")
	if listingURL == "" {
		listingURL = viper.GetString("fetch.listing_url")
	}
	dir, _ := cmd.Flags().GetString("dir")
	if listingURL == "" && dir == "" {
		return fmt.Errorf("provide --listing-url (or fetch.listing_url in the config file) or --dir")
	}

	latest, _ := cmd.Flags().GetInt("latest")
	quarantineDir, _ := cmd.Flags().GetString("quarantine-dir")
	archiveDir, _ := cmd.Flags().GetString("archive-dir")
	summaryPath, _ := cmd.Flags().GetString("summary")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultDownloadTimeout
	}
	listingTimeout, _ := cmd.Flags().GetDuration("listing-timeout")
	if listingTimeout == 0 {
		listingTimeout = defaultListingTimeout
	}
	apiToken, _ := cmd.Flags().GetString("api-token")
	flagAll, _ := cmd.Flags().GetBool("flag-all-duplicates")
	fatalCodes, _ := cmd.Flags().GetStringSlice("fatal-codes")
	noArchive, _ := cmd.Flags().GetBool("no-archive")

	pipeCfg := types.PipelineConfig{
		QuarantineDir: quarantineDir,
		SummaryPath:   summaryPath,
		Validation: types.ValidationConfig{
			FlagAllDuplicates: flagAll,
			FatalCodes:        fatalCodes,
		},
	}

	ctx := context.Background()

	var files []fetch.File
	var src pipeline.Source
	if dir != "" {
		local := fetch.DirSource{Dir: dir}
		listed, err := local.List()
		if err != nil {
			return err
		}
		files = listed
		src = local
	} else {
		client := fetch.NewClient(types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: defaultUserAgent,
			},
			ListingURL:     listingURL,
			APIToken:       secrets.Token(loadedSecrets, "listing-api-token", apiToken),
			MaxFiles:       latest,
			ListingTimeout: listingTimeout,
		})
		listed, err := client.List(ctx)
		if err != nil {
			return fmt.Errorf("listing snapshots: %w", err)
		}
		files = client.Latest(listed)
		src = client
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stdout, "No snapshot files found.")
		return nil
	}
	if dir != "" && latest > 0 && len(files) > latest {
		files = files[:latest]
	}

	result := pipeline.ProcessFiles(ctx, files, src, pipeCfg, os.Stdout)

	if !noArchive {
		store, err := archive.Open(types.ArchiveConfig{ArchiveDir: archiveDir})
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer store.Close()
		if _, err := store.RecordRun(result); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
	}

	if len(result.WriteErrors) > 0 {
		return fmt.Errorf("%d quarantine or summary write(s) failed", len(result.WriteErrors))
	}
	return nil
}
