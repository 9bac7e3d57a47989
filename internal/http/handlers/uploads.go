package handlers

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brosora6/sora-sub000/internal/utils"
)

const (
	maxSideProof = 1400
	maxSideMenu  = 1200
	profileSize  = 600
	jpegQuality  = 85
)

type fileReadErrorKind string

const (
	fileReadErrMissing     fileReadErrorKind = "missing"
	fileReadErrReadFailed  fileReadErrorKind = "read_failed"
	fileReadErrTooLarge    fileReadErrorKind = "too_large"
	fileReadErrInvalidType fileReadErrorKind = "invalid_type"
)

type fileReadError struct {
	Kind    fileReadErrorKind
	Message string
	Err     error
}

func readFileBytes(r *http.Request, field string, validateType bool, maxBytes int64) ([]byte, string, *fileReadError) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", &fileReadError{Kind: fileReadErrMissing, Message: "File is required", Err: err}
	}
	defer file.Close()

	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	maxSizeMB := maxBytes / (1024 * 1024)
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	data, readErr := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if readErr != nil {
		return nil, "", &fileReadError{Kind: fileReadErrReadFailed, Message: "Failed to read file", Err: readErr}
	}
	if int64(len(data)) > maxBytes {
		return nil, "", &fileReadError{Kind: fileReadErrTooLarge, Message: fmt.Sprintf("File size must be less than %dMB.", maxSizeMB)}
	}

	ct := strings.TrimSpace(header.Header.Get("Content-Type"))
	if ct == "" {
		ct = utils.DetectContentType(data)
	}
	ctLower := strings.ToLower(ct)
	if validateType && !utils.ValidateImageContentType(ctLower) {
		return nil, ctLower, &fileReadError{Kind: fileReadErrInvalidType, Message: "Invalid file type. Please upload an image file."}
	}

	return data, ctLower, nil
}

func randomSuffix8() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}

func objectKey(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d-%d-%s.jpg", prefix, id, time.Now().UnixMilli(), randomSuffix8())
}

// storeJpegFitInside normalizes an upload and writes it to the public store,
// returning the persisted public URL.
func (h *Handler) storeJpegFitInside(ctx context.Context, key string, data []byte, maxSide int) (string, error) {
	encoded, _, err := utils.EncodeJpegFitInside(data, maxSide, jpegQuality)
	if err != nil {
		return "", err
	}
	return h.Store.Put(ctx, key, encoded, "image/jpeg")
}

func (h *Handler) storeJpegCoverSquare(ctx context.Context, key string, data []byte, size int) (string, error) {
	encoded, _, err := utils.EncodeJpegCoverSquare(data, size, jpegQuality)
	if err != nil {
		return "", err
	}
	return h.Store.Put(ctx, key, encoded, "image/jpeg")
}
