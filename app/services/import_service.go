package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/queue"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

const (
	UploadedPrefix = "uploaded/"
	ParsedPrefix   = "parsed/"
	csvContentType = "text/csv"
)

// ImportService hands out upload URLs for product CSV files and turns
// uploaded files into Ingest Messages on the queue.
type ImportService struct {
	disk  storage.Disk // nil when no import bucket is configured
	queue queue.Driver
	ttl   time.Duration
	newID IDFunc
}

func NewImportService(disk storage.Disk, q queue.Driver, ttl time.Duration) *ImportService {
	return &ImportService{disk: disk, queue: q, ttl: ttl, newID: newUUID}
}

func (s *ImportService) WithIDFunc(f IDFunc) *ImportService {
	s.newID = f
	return s
}

// SignedUploadURL returns a presigned PUT URL for uploaded/<fileName>.
func (s *ImportService) SignedUploadURL(ctx context.Context, fileName string) (string, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return "", apperr.NotFound("File Name is missing!")
	}
	if s.disk == nil {
		return "", apperr.Upstream("presign upload", errors.New("import bucket is not configured"))
	}

	u, err := s.disk.PresignPut(ctx, UploadedPrefix+fileName, csvContentType, s.ttl)
	if err != nil {
		return "", apperr.Upstream("presign upload", err)
	}

	logger.WithCtx(ctx).Info("upload url issued", "key", UploadedPrefix+fileName, "ttl", s.ttl.String())
	return u, nil
}

// ParseResult reports what ParseFile did with one object.
type ParseResult struct {
	Key       string
	Sent      int
	MovedTo   string
	Skipped   bool
	FailedRow int // 1-based data row that aborted parsing, 0 if none
}

// ParseFile streams the CSV object at key, sends one Ingest Message per row
// and finally moves the object from uploaded/ to parsed/.
//
// A row that cannot be normalised or sent aborts the rest of the file and
// the object stays in uploaded/. Rows sent before the failure stay on the
// queue.
func (s *ImportService) ParseFile(ctx context.Context, key string) (ParseResult, error) {
	res := ParseResult{Key: key}
	log := logger.WithCtx(ctx).With("key", key)

	if s.disk == nil {
		return res, apperr.NotFound("Import bucket is not configured")
	}
	if !strings.HasPrefix(key, UploadedPrefix) {
		log.Info("import: object outside uploaded/, ignored")
		res.Skipped = true
		return res, nil
	}

	rc, err := s.disk.GetStream(ctx, key)
	if err != nil {
		return res, apperr.Upstream("open object", err)
	}
	defer rc.Close()

	sent, row, err := s.sendRows(ctx, rc)
	res.Sent = sent
	if err != nil {
		res.FailedRow = row
		log.Error("import: parsing aborted", "row", row, "sent", sent, "error", err)
		return res, err
	}

	res.MovedTo = ParsedPrefix + strings.TrimPrefix(key, UploadedPrefix)
	if err := s.disk.Move(ctx, key, res.MovedTo); err != nil {
		res.MovedTo = ""
		return res, apperr.Upstream("relocate object", err)
	}

	log.Info("import: file processed", "rows", sent, "moved_to", res.MovedTo)
	return res, nil
}

// sendRows returns the number of rows sent and, on failure, the 1-based data
// row that failed.
func (s *ImportService) sendRows(ctx context.Context, r io.Reader) (int, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, apperr.Malformed("read csv header", err)
	}
	columns := normaliseHeader(header)

	sent := 0
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return sent, 0, nil
		}
		if err != nil {
			metrics.IngestRows.WithLabelValues("invalid").Inc()
			return sent, row, apperr.Malformed("read csv row", err)
		}
		if blank(record) {
			continue
		}

		msg, err := s.toMessage(columns, record)
		if err != nil {
			metrics.IngestRows.WithLabelValues("invalid").Inc()
			return sent, row, apperr.Malformed(fmt.Sprintf("row %d", row), err)
		}

		body, err := json.Marshal(msg)
		if err != nil {
			return sent, row, apperr.Malformed(fmt.Sprintf("row %d", row), err)
		}
		if err := s.queue.Send(ctx, body); err != nil {
			return sent, row, apperr.Upstream("send ingest message", err)
		}

		metrics.IngestRows.WithLabelValues("sent").Inc()
		sent++
	}
}

func (s *ImportService) toMessage(columns []string, record []string) (models.IngestMessage, error) {
	fields := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(record) && col != "" {
			fields[col] = strings.TrimSpace(record[i])
		}
	}

	msg := models.IngestMessage{
		ID:          fields["id"],
		Name:        fields["name"],
		Description: fields["description"],
	}
	if msg.ID == "" {
		msg.ID = s.newID()
	}

	if raw := fields["price"]; raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return msg, fmt.Errorf("price %q: %w", raw, err)
		}
		msg.Price = json.Number(strconv.FormatFloat(price, 'f', -1, 64))
	} else {
		msg.Price = "0"
	}

	if raw := fields["count"]; raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return msg, fmt.Errorf("count %q: %w", raw, err)
		}
		msg.Count = json.Number(strconv.Itoa(count))
	} else {
		msg.Count = "0"
	}

	return msg, nil
}

func normaliseHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// HandleEvent parses every object named in an S3 notification, in order.
// It stops at the first failure.
func (s *ImportService) HandleEvent(ctx context.Context, ev events.S3Event) ([]ParseResult, error) {
	if s.disk == nil {
		return nil, apperr.NotFound("Import bucket is not configured")
	}

	results := make([]ParseResult, 0, len(ev.Records))
	for _, rec := range ev.Records {
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			key = rec.S3.Object.Key
		}

		logger.WithCtx(ctx).Info("import: object created",
			"bucket", rec.S3.Bucket.Name, "key", key, "size", rec.S3.Object.Size)

		res, err := s.ParseFile(ctx, key)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
