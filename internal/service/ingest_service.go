package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/observability"
	"catalog/internal/repository"
	"catalog/internal/source"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// IngestTimestampLayout formats the created_at/updated_at value appended to each row.
	IngestTimestampLayout = "2006-01-02 15:04:05"

	ingestTempPattern = "processed-products-*.csv"
	ctxCheckInterval  = 1024
)

var errSourceRead = errors.New("read source")

// IngestReport summarises one bulk ingestion run.
type IngestReport struct {
	Location   string    `json:"location"`
	Source     string    `json:"source"`
	AdminID    uint      `json:"admin_id"`
	Rows       int64     `json:"rows"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// IngestService bulk-loads products from an external CSV, owned by the admin.
type IngestService struct {
	products   repository.ProductRepository
	identities *IdentityResolver
	sources    source.Opener
	tempDir    string
	timeout    time.Duration
	now        func() time.Time
	remove     func(string) error
}

// NewIngestService returns an IngestService writing temp files under tempDir
// (os.TempDir when empty). A zero timeout leaves the caller's deadline alone.
func NewIngestService(
	products repository.ProductRepository,
	identities *IdentityResolver,
	sources source.Opener,
	tempDir string,
	timeout time.Duration,
) *IngestService {
	return &IngestService{
		products:   products,
		identities: identities,
		sources:    sources,
		tempDir:    tempDir,
		timeout:    timeout,
		now:        time.Now,
		remove:     os.Remove,
	}
}

// Ingest streams location through the row transform into a temp file and
// bulk-loads it in one COPY. The temp file is removed on every path.
func (s *IngestService) Ingest(ctx context.Context, location string) (report *IngestReport, err error) {
	begin := time.Now()
	started := s.now()
	scheme := source.Scheme(location)

	ctx, span := observability.StartSpan(ctx, "ingest", "run", attribute.String("ingest.source", scheme))
	var rows int64
	defer func() {
		observability.RecordIngest(scheme, rows, begin, err)
		observability.EndSpan(span, err)
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	src, err := s.sources.Open(ctx, location)
	if err != nil {
		return nil, models.NewSourceUnavailableError(location, err)
	}
	defer src.Close()

	admin, err := s.identities.ResolveAdministrative(ctx)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.tempDir, ingestTempPattern)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("create temp file: %w", err))
	}
	defer s.cleanup(ctx, tmp)

	lines, err := TransformRows(ctx, tmp, src, admin.ID, started.UTC().Format(IngestTimestampLayout))
	if err != nil {
		if errors.Is(err, errSourceRead) {
			return nil, models.NewSourceUnavailableError(location, err)
		}
		return nil, models.NewInternalError(err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("rewind temp file: %w", err))
	}
	rows, err = s.products.BulkLoad(ctx, tmp)
	if err != nil {
		return nil, err
	}

	report = &IngestReport{
		Location:   location,
		Source:     scheme,
		AdminID:    admin.ID,
		Rows:       rows,
		StartedAt:  started,
		DurationMS: time.Since(begin).Milliseconds(),
	}
	middleware.Logger.InfoContext(ctx, "Bulk product ingestion completed",
		slog.String("source", scheme),
		slog.Uint64("admin_id", uint64(admin.ID)),
		slog.Int64("lines", lines),
		slog.Int64("rows", rows),
		slog.Int64("duration_ms", report.DurationMS),
	)
	return report, nil
}

func (s *IngestService) cleanup(ctx context.Context, f *os.File) {
	_ = f.Close()
	if err := s.remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		observability.TempFileCleanupFailures.Inc()
		middleware.Logger.WarnContext(ctx, "Failed to remove ingest temp file",
			slog.String("path", f.Name()),
			slog.String("error", err.Error()),
		)
	}
}

// TransformRows copies src to dst, replacing the header line with the product
// column list and appending ",<adminID>,<ts>,<ts>" to every non-blank row.
// It returns the number of rows written. Memory use is bounded by the longest line.
func TransformRows(ctx context.Context, dst io.Writer, src io.Reader, adminID uint, ts string) (int64, error) {
	r := bufio.NewReader(src)
	w := bufio.NewWriter(dst)
	suffix := "," + strconv.FormatUint(uint64(adminID), 10) + "," + ts + "," + ts + "\n"

	if _, err := w.WriteString(strings.Join(models.ProductColumns, ",") + "\n"); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	var written int64
	header := true
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return written, fmt.Errorf("%w: %w", errSourceRead, readErr)
		}

		if line != "" {
			row := strings.TrimRight(line, "\r\n")
			switch {
			case header:
				header = false
			case strings.TrimSpace(row) != "":
				if _, err := w.WriteString(row); err != nil {
					return written, fmt.Errorf("write row: %w", err)
				}
				if _, err := w.WriteString(suffix); err != nil {
					return written, fmt.Errorf("write row: %w", err)
				}
				written++
				if written%ctxCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return written, fmt.Errorf("%w: %w", errSourceRead, err)
					}
				}
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("flush temp file: %w", err)
	}
	return written, nil
}
