package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/data/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
}

func (u *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	u.input = input
	b, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	u.body = b
	return &manager.UploadOutput{}, nil
}

func TestImportBooksArray(t *testing.T) {
	s, store, _ := newTestService(t)
	doc := `[
		{"title": "Dune", "author": "Herbert", "notes": ["first", "second"]},
		{"title": "", "author": "Nobody"},
		{"title": "Emma", "author": "Austen", "status": "completed", "category": "Classics"}
	]`
	report, err := s.ImportBooks(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Failures[0].Index)

	books, err := store.GetAllBooks(context.Background(), data.Filters{})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Len(t, books[0].Notes, 2)
	assert.Equal(t, "Classics", books[1].Category)
}

func TestImportBooksEnvelope(t *testing.T) {
	s, store, _ := newTestService(t)
	doc := `{"count": 1, "books": [{"id": "abc", "title": "Dune", "author": "Herbert", "category": "General",
		"status": "reading", "notes": [{"id": "n1", "content": "kept", "createdAt": "2024-01-01T00:00:00Z"}],
		"createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-01T00:00:00Z"}]}`
	report, err := s.ImportBooks(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)

	books, _ := store.GetAllBooks(context.Background(), data.Filters{})
	require.Len(t, books, 1)
	assert.NotEqual(t, "abc", books[0].ID)
	require.Len(t, books[0].Notes, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), books[0].Notes[0].CreatedAt.UTC())
}

func TestImportBooksRejectsInput(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.ImportBooks(context.Background(), strings.NewReader("title,author\nDune,Herbert\n"))
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	_, err = s.ImportBooks(context.Background(), strings.NewReader(`{"count": 0}`))
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestBackupBooks(t *testing.T) {
	s, _, _ := newTestService(t)
	s.config.S3.Bucket = "shelflog-backups"
	s.config.S3.Region = "eu-west-1"
	s.now = func() time.Time { return time.Date(2024, 3, 2, 10, 4, 5, 0, time.UTC) }
	uploader := &fakeUploader{}
	s.uploader = uploader
	_, err := s.AddBook(context.Background(), dto.CreateBookRequestBody{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	key, err := s.BackupBooks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "backups/shelflog-20240302T100405Z.json", key)
	require.NotNil(t, uploader.input)
	assert.Equal(t, "shelflog-backups", *uploader.input.Bucket)
	assert.Equal(t, key, *uploader.input.Key)
	assert.Contains(t, *uploader.input.ContentType, "application/json")

	var snapshot dto.ListBooksResponse
	require.NoError(t, json.Unmarshal(uploader.body, &snapshot))
	assert.Equal(t, 1, snapshot.Count)
	assert.Equal(t, "Dune", snapshot.Books[0].Title)
}

func TestBackupBooksNotConfigured(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.BackupBooks(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
