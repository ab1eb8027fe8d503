package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ErrInvalidImage marks image payloads the decoder refuses.
var ErrInvalidImage = errors.New("invalid image data")

const thumbnailSize = 400

// ImageStore writes uploaded images below a media root and hands back
// media-relative paths for storage on the models.
type ImageStore struct {
	root string
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{root: root}
}

// ParseDataURI splits a "data:image/<ext>;base64,<payload>" string into the
// decoded payload and the extension taken from the media type.
func ParseDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:image") {
		return nil, "", fmt.Errorf("%w: expected a data:image URI", ErrInvalidImage)
	}

	head, payload, found := strings.Cut(uri, ";base64,")
	if !found {
		return nil, "", fmt.Errorf("%w: missing base64 payload", ErrInvalidImage)
	}
	ext := head[strings.LastIndex(head, "/")+1:]

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return data, ext, nil
}

// SaveDataURI decodes a base64 data URI and stores it under <root>/<kind>/.
// The stored file holds the decoded bytes as-is.
func (s *ImageStore) SaveDataURI(uri string, kind string) (string, error) {
	data, ext, err := ParseDataURI(uri)
	if err != nil {
		return "", err
	}
	return s.save(data, ext, kind)
}

// SaveUpload stores a multipart file upload under <root>/<kind>/.
func (s *ImageStore) SaveUpload(file multipart.File, header *multipart.FileHeader, kind string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if ext == "" {
		switch http.DetectContentType(data) {
		case "image/jpeg":
			ext = "jpg"
		case "image/png":
			ext = "png"
		case "image/gif":
			ext = "gif"
		case "image/webp":
			ext = "webp"
		default:
			ext = "jpg"
		}
	}

	return s.save(data, ext, kind)
}

func (s *ImageStore) save(data []byte, ext string, kind string) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: payload is not a decodable image", ErrInvalidImage)
	}

	dir := filepath.Join(s.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	name := uuid.New().String()
	filename := name + "." + ext
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	// Thumbnail for the HTML pages; the original stays untouched
	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(dir, name+"_thumb.jpg")); err != nil {
		slog.Warn("failed to write thumbnail", "file", filename, "error", err)
	}

	return kind + "/" + filename, nil
}

// Remove deletes a stored image and its thumbnail. Best effort, missing
// files are not an error.
func (s *ImageStore) Remove(relPath string) {
	if relPath == "" {
		return
	}
	full := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove image", "path", relPath, "error", err)
	}
	ext := filepath.Ext(full)
	os.Remove(strings.TrimSuffix(full, ext) + "_thumb.jpg")
}
