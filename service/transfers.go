package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emzola/shelflog/clients"
	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/data/dto"
	"github.com/gabriel-vasile/mimetype"
)

// maxImportBytes bounds the size of an import file.
const maxImportBytes = 32 << 20

type transfers interface {
	ImportBooks(ctx context.Context, r io.Reader) (ImportReport, error)
	BackupBooks(ctx context.Context) (string, error)
}

// Uploader puts objects into object storage. *manager.Uploader satisfies it.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// ImportReport summarises an import run.
type ImportReport struct {
	Inserted int             `json:"inserted"`
	Failed   int             `json:"failed"`
	Failures []ImportFailure `json:"failures,omitempty"`
}

// ImportFailure describes a book that could not be imported.
type ImportFailure struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// ImportBooks service reads a JSON document of books and adds each one. The
// document is either an array of add-book bodies or a listing envelope
// ({"count": n, "books": [...]}) such as a backup. Every book is validated
// like a regular add; invalid books are reported and skipped.
func (s *service) ImportBooks(ctx context.Context, r io.Reader) (ImportReport, error) {
	var report ImportReport
	buffer, err := io.ReadAll(io.LimitReader(r, maxImportBytes))
	if err != nil {
		return report, err
	}
	// Check whether Mime type is supported
	mtype := mimetype.Detect(buffer)
	if !isJSON(mtype) {
		return report, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mtype.String())
	}
	bodies, err := decodeImport(buffer)
	if err != nil {
		return report, err
	}
	for i, body := range bodies {
		_, err := s.AddBook(ctx, body)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				return report, err
			}
			report.Failed++
			report.Failures = append(report.Failures, ImportFailure{Index: i, Title: body.Title, Reason: err.Error()})
			continue
		}
		report.Inserted++
	}
	s.logger.PrintInfo("import finished", map[string]string{
		"inserted": fmt.Sprint(report.Inserted),
		"failed":   fmt.Sprint(report.Failed),
	})
	return report, nil
}

func decodeImport(buffer []byte) ([]dto.CreateBookRequestBody, error) {
	trimmed := bytes.TrimSpace(buffer)
	var bodies []dto.CreateBookRequestBody
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &bodies); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return bodies, nil
	}
	var envelope struct {
		Books *[]dto.CreateBookRequestBody `json:"books"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if envelope.Books == nil {
		return nil, fmt.Errorf("%w: document has no books array", ErrBadRequest)
	}
	return *envelope.Books, nil
}

// BackupBooks service uploads a JSON snapshot of every book to the configured
// S3 bucket and returns the object key. The snapshot can be re-imported.
func (s *service) BackupBooks(ctx context.Context) (string, error) {
	if !s.config.BackupEnabled() {
		return "", fmt.Errorf("%w: s3 bucket and region are required", ErrNotConfigured)
	}
	books, err := s.ListAllBooks(ctx)
	if err != nil {
		return "", err
	}
	snapshot := dto.ListBooksResponse{Count: len(books), Books: make([]data.Book, 0, len(books))}
	for _, b := range books {
		snapshot.Books = append(snapshot.Books, *b)
	}
	buffer, err := json.MarshalIndent(snapshot, "", "\t")
	if err != nil {
		return "", err
	}
	if s.uploader == nil {
		s3Client, err := clients.NewS3Client(s.config)
		if err != nil {
			return "", err
		}
		s.uploader = manager.NewUploader(s3Client)
	}
	key := "backups/shelflog-" + s.now().UTC().Format("20060102T150405Z") + ".json"
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buffer),
		ContentLength: int64(len(buffer)),
		ContentType:   aws.String(mimetype.Detect(buffer).String()),
	})
	if err != nil {
		return "", err
	}
	s.logger.PrintInfo("backup uploaded", map[string]string{"bucket": s.config.S3.Bucket, "key": key, "books": fmt.Sprint(len(books))})
	return key, nil
}
