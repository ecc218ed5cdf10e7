package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
)

// sniffLen is how much content http.DetectContentType looks at.
const sniffLen = 512

// StatementUploader sends bank statements to the backend. A successful
// upload re-resolves the session so the statement prerequisite is met.
type StatementUploader struct {
	API      API
	Resolver *Resolver
	Holder   *SessionHolder
}

// Upload sends the PDF read from r under name.
func (u *StatementUploader) Upload(ctx context.Context, name string, r io.Reader) (*domain.Session, error) {
	l := slogx.FromContext(ctx)

	if u.Holder.Session() == nil {
		return nil, domain.ErrNoSession
	}

	// 1. Only PDFs
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if http.DetectContentType(head) != "application/pdf" {
		return nil, &domain.FlowError{Kind: domain.ErrNotPDF, Message: "Please select a PDF file"}
	}

	// 2. Upload
	if name == "" {
		name = "statement.pdf"
	}
	if _, err := u.API.UploadStatement(ctx, filepath.Base(name), br); err != nil {
		l.Warn("statement upload failed", slog.Any("error", err))
		return nil, failure(domain.ErrUploadFailed, err, "Upload failed")
	}
	l.Info("statement uploaded", slog.String("file", filepath.Base(name)))

	// 3. Refresh user and statements together
	return u.Resolver.Resolve(ctx)
}
