package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"school-site-console/app/server/storage"
)

type formFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

// readFormFile pulls one optional file out of a multipart form. Returns nil
// without error when the field was not sent or is empty, which every caller
// treats as "leave the current asset alone".
func readFormFile(c echo.Context, field string) (*formFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read form file %s: %w", field, err)
	}
	if fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open form file %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read form file %s: %w", field, err)
	}

	return &formFile{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

// normalizeNewlines maps CRLF to LF before content hits the database.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// thumbnailURL derives the resized-render URL for a stored asset URL, nil in
// and nil out.
func thumbnailURL(raw *string) *string {
	if raw == nil {
		return nil
	}

	t := storage.ToThumbnailURL(*raw, storage.ThumbnailWidth, storage.ThumbnailQuality)
	return &t
}
