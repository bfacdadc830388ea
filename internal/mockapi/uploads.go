package mockapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidFileFormat = errors.New("invalid file format. only .jpg, .jpeg, .png, .webp are allowed")
	ErrFileSizeExceeded  = errors.New("file size exceeds limit")
)

const MaxFileSize = 5 * 1024 * 1024 // 5MB

// UploadsURLPrefix is the public path uploaded files are served under
const UploadsURLPrefix = "/uploads"

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

func validateImage(fh *multipart.FileHeader) error {
	if fh.Size > MaxFileSize {
		return ErrFileSizeExceeded
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(fh.Filename))] {
		return ErrInvalidFileFormat
	}
	return nil
}

// saveProductImage stores fh under uploadsDir/products/<productID>/ and returns its public URL
func saveProductImage(uploadsDir, productID string, fh *multipart.FileHeader) (string, error) {
	dir := filepath.Join(uploadsDir, "products", productID)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	fileName := filepath.Base(fh.Filename)
	filePath := filepath.Join(dir, fileName)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file on server: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path.Join(UploadsURLPrefix, "products", productID, fileName), nil
}

// removeUpload deletes the file behind a public upload URL. Missing files are ignored.
func removeUpload(uploadsDir, url string) error {
	rel := strings.TrimPrefix(url, UploadsURLPrefix+"/")
	if rel == url || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(uploadsDir, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// reconcileImages keeps the current images the client listed, in their current order
func reconcileImages(current, keep []string) (kept, dropped []string) {
	wanted := make(map[string]bool, len(keep))
	for _, k := range keep {
		wanted[k] = true
	}
	kept = []string{}
	for _, img := range current {
		if wanted[img] {
			kept = append(kept, img)
		} else {
			dropped = append(dropped, img)
		}
	}
	return kept, dropped
}
