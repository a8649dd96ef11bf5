package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	fasync "github.com/fieldagent/fieldagent/internal/sync"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export operation records and stored configs as JSONL",
	Long: `backup writes the full ledger (operation records plus stored configs) as
JSONL to stdout, a file, or the configured S3 bucket. With --follow it keeps
running and re-exports on the configured interval.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		upload, _ := cmd.Flags().GetBool("upload")
		follow, _ := cmd.Flags().GetBool("follow")

		destinations, err := backupDestinations(cmd.Context(), output, upload)
		if err != nil {
			return err
		}

		if follow {
			interval := cfg.BackupInterval
			if interval <= 0 {
				interval = 3 * time.Minute
			}
			sched := fasync.NewScheduler(records, configs, destinations, interval, logger)
			sched.Start()
			defer sched.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			<-ctx.Done()
			return nil
		}

		var buf bytes.Buffer
		if err := fasync.ExportJSONL(records, configs, &buf); err != nil {
			return err
		}
		if len(destinations) == 0 {
			_, err := os.Stdout.Write(buf.Bytes())
			return err
		}
		for _, dest := range destinations {
			if err := dest.Write(cmd.Context(), buf.Bytes()); err != nil {
				return err
			}
		}
		return nil
	},
}

// fileDestination writes the export to a local path.
type fileDestination struct {
	path string
}

func (d *fileDestination) Write(_ context.Context, data []byte) error {
	return os.WriteFile(d.path, data, 0o644)
}

func backupDestinations(ctx context.Context, output string, upload bool) ([]fasync.Destination, error) {
	var destinations []fasync.Destination
	if output != "" {
		destinations = append(destinations, &fileDestination{path: output})
	}
	if upload {
		if cfg.BackupS3Bucket == "" {
			return nil, fmt.Errorf("--upload requires FIELDAGENT_BACKUP_S3_BUCKET (or backup_s3_bucket in the settings file)")
		}
		s3dest, err := fasync.NewS3Destination(ctx, cfg.BackupS3Bucket, cfg.BackupS3Key, cfg.BackupS3Region, cfg.BackupS3Endpoint)
		if err != nil {
			return nil, err
		}
		destinations = append(destinations, s3dest)
	}
	return destinations, nil
}

func init() {
	backupCmd.Flags().String("output", "", "write the export to this file")
	backupCmd.Flags().Bool("upload", false, "upload the export to the configured S3 bucket")
	backupCmd.Flags().Bool("follow", false, "keep running and export on the configured interval")
}
