package feedsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cjb-incidents/core/feed"
	"cjb-incidents/core/incidents"
)

var ErrSourceMissing = errors.New("feedsync: excel workbook not found")

// Exporter turns the incident workbook into the bulk JSON feed.
type Exporter struct {
	excelPath  string
	outputPath string
	now        func() time.Time
}

func NewExporter(excelPath, outputPath string) *Exporter {
	if outputPath == "" {
		outputPath = "data.json"
	}
	return &Exporter{excelPath: excelPath, outputPath: outputPath, now: time.Now}
}

func (e *Exporter) ExcelPath() string {
	if e == nil {
		return ""
	}
	return e.excelPath
}

func (e *Exporter) OutputPath() string { return e.outputPath }

// Name and Fetch let the exporter serve as a feed.Source.
func (e *Exporter) Name() string { return "excel" }

// Fetch fails with feed.ErrEmptyFile on a header-only workbook so a cascade
// moves on to the next source.
func (e *Exporter) Fetch(ctx context.Context) (feed.Snapshot, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return feed.Snapshot{}, err
	}
	if snap.Count == 0 {
		return feed.Snapshot{}, fmt.Errorf("%w: %s", feed.ErrEmptyFile, filepath.Base(e.excelPath))
	}
	return snap, nil
}

func (e *Exporter) SourceExists() bool {
	if e == nil || e.excelPath == "" {
		return false
	}
	info, err := os.Stat(e.excelPath)
	return err == nil && !info.IsDir()
}

// Snapshot reads the first sheet of the workbook. A workbook with a header
// and no data rows yields an empty snapshot, not an error.
func (e *Exporter) Snapshot(ctx context.Context) (feed.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return feed.Snapshot{}, err
	}
	if !e.SourceExists() {
		return feed.Snapshot{}, fmt.Errorf("%w: %s", ErrSourceMissing, e.excelPath)
	}
	rows, err := feed.ParseWorkbookFile(e.excelPath)
	if err != nil && !feed.IsEmpty(err) {
		return feed.Snapshot{}, fmt.Errorf("read %s: %w", filepath.Base(e.excelPath), err)
	}
	if rows == nil {
		rows = []incidents.RawRow{}
	}
	return feed.NewSnapshot(rows, e.now()), nil
}

// Export writes the snapshot to the output path through a temp file and
// rename so readers never see a partial document.
func (e *Exporter) Export(ctx context.Context) (feed.Snapshot, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return feed.Snapshot{}, err
	}
	if err := writeSnapshot(e.outputPath, snap); err != nil {
		return feed.Snapshot{}, err
	}
	return snap, nil
}

func writeSnapshot(path string, snap feed.Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := snap.Encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
