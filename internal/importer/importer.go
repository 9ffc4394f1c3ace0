package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/dedupe-cli/internal/fetcher"
	"github.com/sells-group/dedupe-cli/internal/model"
	"github.com/sells-group/dedupe-cli/internal/store"
)

// Options configures an import run.
type Options struct {
	WorkspaceID string
	BatchSize   int  // rows per store write,  default 500
	Workers     int  // concurrent store writers, default 4
	Latin1      bool // decode CSV input as ISO 8859-1
}

// Stats summarizes an import run.
type Stats struct {
	Rows     int64
	Imported int64
	Skipped  int64
}

// Importer loads export rows into a store.
type Importer struct {
	store store.Store
	log   *zap.Logger
}

// New creates an Importer writing to the given store.
func New(st store.Store) *Importer {
	return &Importer{
		store: st,
		log:   zap.L().With(zap.String("component", "importer")),
	}
}

// ImportFile imports a local CSV or XLSX export, routed by file extension.
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (Stats, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := openFile(path)
		if err != nil {
			return Stats{}, err
		}
		defer f.Close() //nolint:errcheck
		rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{TrimSpace: true, Latin1: opts.Latin1})
		return im.Run(ctx, rowCh, errCh, opts)
	case ".xlsx":
		rowCh, errCh := fetcher.StreamXLSX(ctx, path, fetcher.XLSXOptions{})
		return im.Run(ctx, rowCh, errCh, opts)
	default:
		return Stats{}, eris.Errorf("importer: unsupported file type %q", ext)
	}
}

// Run consumes rows (header first) and writes contacts to the store in
// concurrent batches. Rows carrying none of the matchable fields are
// skipped and counted, not failed: exports routinely contain blank
// trailing rows.
func (im *Importer) Run(ctx context.Context, rowCh <-chan []string, errCh <-chan error, opts Options) (Stats, error) {
	// The producer blocks once the row buffer fills; aborting without
	// consuming the channel would leak its goroutine.
	drain := func() {
		for range rowCh {
		}
	}

	if opts.WorkspaceID == "" {
		drain()
		return Stats{}, eris.New("importer: workspace id is required")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	header, ok := <-rowCh
	if !ok {
		if err := <-errCh; err != nil {
			return Stats{}, err
		}
		return Stats{}, eris.New("importer: empty input")
	}
	cm, err := mapHeader(header)
	if err != nil {
		drain()
		return Stats{}, err
	}

	var (
		stats Stats
		mu    sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	flush := func(batch []model.Contact) {
		g.Go(func() error {
			n, err := im.store.CreateContacts(gctx, batch)
			if err != nil {
				return eris.Wrap(err, "importer: write batch")
			}
			mu.Lock()
			stats.Imported += n
			mu.Unlock()
			return nil
		})
	}

	batch := make([]model.Contact, 0, opts.BatchSize)
	for row := range rowCh {
		stats.Rows++
		c, ok := im.parseRow(row, cm, opts.WorkspaceID)
		if !ok {
			stats.Skipped++
			continue
		}
		batch = append(batch, c)
		if len(batch) >= opts.BatchSize {
			flush(batch)
			batch = make([]model.Contact, 0, opts.BatchSize)
		}
	}
	if len(batch) > 0 {
		flush(batch)
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := <-errCh; err != nil {
		return stats, err
	}

	im.log.Info("import complete",
		zap.String("workspace", opts.WorkspaceID),
		zap.Int64("rows", stats.Rows),
		zap.Int64("imported", stats.Imported),
		zap.Int64("skipped", stats.Skipped),
	)
	return stats, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: open file")
	}
	return f, nil
}

// parseRow maps a source row onto a Contact. Rows without an ID column
// get a generated UUID so re-imports of ID-less exports create fresh
// records rather than colliding.
func (im *Importer) parseRow(row []string, cm columnMap, workspaceID string) (model.Contact, bool) {
	c := model.Contact{
		ID:            cell(row, cm.id),
		WorkspaceID:   workspaceID,
		FirstName:     cell(row, cm.firstName),
		LastName:      cell(row, cm.lastName),
		Email:         cell(row, cm.email),
		Phone:         cell(row, cm.phone),
		Company:       cell(row, cm.company),
		CompanyDomain: cell(row, cm.companyDomain),
		ProfileURL:    cell(row, cm.profileURL),
	}

	if c.FirstName == "" && c.LastName == "" && c.Email == "" && c.Phone == "" && c.ProfileURL == "" {
		return model.Contact{}, false
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, true
}
