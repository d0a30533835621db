package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"cjb-incidents/config"
	"cjb-incidents/core/utils"
)

var (
	ErrManualUploadRequired = errors.New("feed: no source answered, upload a file manually")
	ErrAllSourcesFailed     = errors.New("feed: all sources failed")
)

// Source produces a feed snapshot.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Snapshot, error)
}

// HTTPSource fetches a snapshot document from a URL: the published data.json
// or the feed service's /api/incidentes endpoint.
type HTTPSource struct {
	name   string
	url    string
	client *retryablehttp.Client
}

func NewHTTPSource(name, url string, retries int, logger *utils.Logger) *HTTPSource {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.Logger = retryLogger{logger.With("source", name)}
	return &HTTPSource{name: name, url: url, client: client}
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := s.client.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Snapshot{}, fmt.Errorf("%s: unexpected status %d", s.url, resp.StatusCode)
	}
	snap, err := DecodeSnapshot(resp.Body)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.Count == 0 {
		return Snapshot{}, ErrEmptyFile
	}
	return snap, nil
}

// FileSource reads a local CSV, Excel or JSON file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Fetch(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		return Snapshot{}, err
	}
	rows, err := ParsePath(s.Path)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(rows, info.ModTime()), nil
}

// Result names the source that answered.
type Result struct {
	Source   string
	Snapshot Snapshot
}

// Cascade tries sources in order, each under its own short timeout, and
// returns the first usable snapshot.
type Cascade struct {
	sources      []Source
	timeout      time.Duration
	manualUpload bool
	logger       *utils.Logger
}

func NewCascade(timeout time.Duration, manualUpload bool, logger *utils.Logger, sources ...Source) *Cascade {
	return &Cascade{sources: sources, timeout: timeout, manualUpload: manualUpload, logger: logger}
}

// NewCascadeFromConfig builds remote JSON, then local service, from cfg.
func NewCascadeFromConfig(cfg *config.AppConfig, logger *utils.Logger) *Cascade {
	var sources []Source
	if cfg.Feed.RemoteURL != "" {
		sources = append(sources, NewHTTPSource("remote", cfg.Feed.RemoteURL, cfg.Feed.Retries, logger))
	}
	if cfg.Feed.LocalURL != "" {
		sources = append(sources, NewHTTPSource("local", cfg.Feed.LocalURL, cfg.Feed.Retries, logger))
	}
	return NewCascade(cfg.FeedTimeout(), cfg.Feed.ShowManualUpload, logger, sources...)
}

func (c *Cascade) Sources() []string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return names
}

func (c *Cascade) Fetch(ctx context.Context) (Result, error) {
	var errs []error
	for _, src := range c.sources {
		snap, err := c.fetchOne(ctx, src)
		if err == nil {
			c.logger.Printf("feed: loaded %d rows from %s", snap.Count, src.Name())
			return Result{Source: src.Name(), Snapshot: snap}, nil
		}
		c.logger.Printf("feed: source %s unavailable: %v", src.Name(), err)
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	cause := ErrAllSourcesFailed
	if c.manualUpload {
		cause = ErrManualUploadRequired
	}
	if len(errs) == 0 {
		return Result{}, cause
	}
	return Result{}, fmt.Errorf("%w: %w", cause, errors.Join(errs...))
}

func (c *Cascade) fetchOne(ctx context.Context, src Source) (Snapshot, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return src.Fetch(ctx)
}

// retryLogger routes retryablehttp's leveled logging into utils.Logger.
type retryLogger struct {
	l *utils.Logger
}

func (r retryLogger) Error(msg string, kv ...interface{}) { r.l.Errorf("%s %v", msg, kv) }
func (r retryLogger) Info(msg string, kv ...interface{})  { r.l.Debugf("%s %v", msg, kv) }
func (r retryLogger) Debug(msg string, kv ...interface{}) { r.l.Debugf("%s %v", msg, kv) }
func (r retryLogger) Warn(msg string, kv ...interface{})  { r.l.Printf("%s %v", msg, kv) }
