package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"confattach/config"
	"confattach/internal/attachments"
	"confattach/internal/confluence"
	"confattach/internal/models"
	"confattach/internal/s3client"
	"confattach/pkg/utils"
)

var errMissingPageID = errors.New("Missing required argument <page_id>")

type downloadFlags struct {
	noImages   bool
	noDiagrams bool
	publish    bool
	prefix     string
	archive    bool
}

func (f *downloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noImages, "no-images", false, "Skip image attachments")
	cmd.Flags().BoolVar(&f.noDiagrams, "no-diagrams", false, "Skip draw.io diagram attachments")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Upload downloaded files to the configured S3 bucket")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Key prefix in the S3 bucket (used with --publish)")
	cmd.Flags().BoolVar(&f.archive, "archive", false, "Publish the batch as a single zip archive")
}

func (f downloadFlags) filterOptions() attachments.FilterOptions {
	return attachments.FilterOptions{Images: !f.noImages, Diagrams: !f.noDiagrams}
}

func runDownload(cmd *cobra.Command, cfg *config.Config, args []string, flags downloadFlags) error {
	if cfg.PersonalToken == "" {
		return &usageError{config.ErrMissingToken}
	}
	if len(args) < 1 {
		return &usageError{errMissingPageID}
	}
	if cfg.ConfluenceURL == "" {
		return &usageError{config.ErrMissingURL}
	}
	if flags.publish {
		if err := cfg.RequireS3(); err != nil {
			return &usageError{err}
		}
	}

	pageID := args[0]
	outputDir := "."
	if len(args) > 1 {
		outputDir = args[1]
	}

	ctx, cancel := withTimeout(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fetching attachments for page %s...\n", pageID)

	client := confluence.NewClient(cfg.ConfluenceURL, cfg.PersonalToken,
		confluence.WithTimeout(cfg.HTTPTimeout),
		confluence.WithPageLimit(cfg.PageLimit),
	)
	fetcher := attachments.NewFetcher(attachments.NewCatalog(client), client)

	results, err := fetcher.DownloadFiltered(ctx, pageID, outputDir, flags.filterOptions())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No attachments found.")
		return nil
	}

	printResults(out, results)

	summary := models.Summarize(results)
	if flags.publish && summary.Downloaded > 0 {
		publisher, err := s3client.New(cfg)
		if err != nil {
			return err
		}
		published, err := publisher.PublishResults(ctx, pageID, outputDir, results,
			s3client.PublishOptions{Prefix: flags.prefix, Archive: flags.archive})
		if err != nil {
			return err
		}
		if err := utils.WriteJSON(out, published); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\nDownload complete! %d downloaded, %d skipped, %d failed\n",
		summary.Downloaded, summary.Skipped, summary.Errors)
	if summary.Errors > 0 {
		return fmt.Errorf("%d attachment(s) failed to download", summary.Errors)
	}
	return nil
}

func printResults(w io.Writer, results []models.DownloadResult) {
	for _, r := range results {
		switch r.Status {
		case models.StatusSuccess:
			var size int64
			if r.FileSize != nil {
				size = *r.FileSize
			}
			fmt.Fprintf(w, "Saved %s (%d bytes) to %s\n", r.Title, size, r.OutputPath)
		case models.StatusSkipped:
			fmt.Fprintf(w, "Skipping %s: %s\n", r.Title, r.Reason)
		case models.StatusError:
			fmt.Fprintf(w, "Failed %s: %s\n", r.Title, r.Error)
		}
	}
}
