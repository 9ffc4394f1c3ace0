package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dedupe-cli/internal/fetcher"
	"github.com/sells-group/dedupe-cli/internal/importer"
)

var (
	importWorkspace string
	importURL       string
	importLatin1    bool
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a contact export (CSV or XLSX) into the store",
	Long:  "Loads contacts from a local export file or a remote URL (http, https, or ftp). Remote exports are downloaded to a temp file first so XLSX parsing can seek.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" && importURL == "" {
			return eris.New("an export file or --url is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if importURL != "" {
			path, err = downloadExport(cmd, importURL)
			if err != nil {
				return err
			}
			defer os.Remove(path) //nolint:errcheck
		}

		workspace := importWorkspace
		if workspace == "" {
			workspace = cfg.Match.Workspace
		}

		stats, err := importer.New(st).ImportFile(ctx, path, importer.Options{
			WorkspaceID: workspace,
			BatchSize:   cfg.Import.BatchSize,
			Workers:     cfg.Import.Workers,
			Latin1:      importLatin1 || cfg.Import.Latin1,
		})
		if err != nil {
			return eris.Wrap(err, "import")
		}

		zap.L().Info("import complete",
			zap.String("workspace", workspace),
			zap.Int64("rows", stats.Rows),
			zap.Int64("imported", stats.Imported),
			zap.Int64("skipped", stats.Skipped),
		)
		return nil
	},
}

// downloadExport fetches a remote export into a temp file, keeping the
// source extension so the importer can route by file type.
func downloadExport(cmd *cobra.Command, rawURL string) (string, error) {
	ext := filepath.Ext(rawURL)
	if ext == "" {
		ext = ".csv"
	}
	tmp, err := os.CreateTemp("", "dedupe-export-*"+ext)
	if err != nil {
		return "", eris.Wrap(err, "import: create temp file")
	}
	if err := tmp.Close(); err != nil {
		return "", eris.Wrap(err, "import: close temp file")
	}

	var f fetcher.Fetcher
	if strings.HasPrefix(rawURL, "ftp://") {
		f = fetcher.NewFTPFetcher(fetcher.FTPOptions{
			User:     cfg.Import.FTPUser,
			Password: cfg.Import.FTPPassword,
		})
	} else {
		f = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}

	n, err := f.DownloadToFile(cmd.Context(), rawURL, tmp.Name())
	if err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", err
	}
	zap.L().Debug("downloaded export",
		zap.String("url", rawURL),
		zap.Int64("bytes", n),
	)
	return tmp.Name(), nil
}

func init() {
	importCmd.Flags().StringVar(&importWorkspace, "workspace", "", "target workspace (default from config)")
	importCmd.Flags().StringVar(&importURL, "url", "", "remote export URL (http, https, or ftp)")
	importCmd.Flags().BoolVar(&importLatin1, "latin1", false, "decode CSV input as ISO 8859-1")
	rootCmd.AddCommand(importCmd)
}
