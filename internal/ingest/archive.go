package ingest

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ArchiveItem is one embedded PDF streamed out of a .zip or .tar.gz
// archive, per the archive ingester collaborator contract (spec §6).
type ArchiveItem struct {
	Filename string
	Bytes    []byte
}

// IsArchivePath reports whether path names a supported archive container
// by extension.
func IsArchivePath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".zip") || strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz")
}

// ErrArchiveTooLarge is returned when an embedded entry exceeds maxSizeBytes.
type ErrArchiveTooLarge struct {
	Filename string
	Size     int64
}

func (e *ErrArchiveTooLarge) Error() string {
	return fmt.Sprintf("archive entry %s exceeds size cap (%d bytes)", e.Filename, e.Size)
}

// ExtractArchiveStreaming yields (filename, bytes) for each embedded .pdf
// in the archive at path, up to maxSizeBytes per entry (0 means
// unlimited, per the max_archive_size_mb=0 configuration default in §6).
// Non-PDF entries are skipped silently.
func ExtractArchiveStreaming(path string, data []byte, maxSizeBytes int64, fn func(ArchiveItem) error) error {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(data, maxSizeBytes, fn)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTarGz(data, maxSizeBytes, fn)
	default:
		return fmt.Errorf("unsupported archive type: %s", path)
	}
}

func extractZip(data []byte, maxSizeBytes int64, fn func(ArchiveItem) error) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isPDFName(f.Name) {
			continue
		}
		if maxSizeBytes > 0 && int64(f.UncompressedSize64) > maxSizeBytes {
			return &ErrArchiveTooLarge{Filename: f.Name, Size: int64(f.UncompressedSize64)}
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read zip entry %s: %w", f.Name, err)
		}
		if err := fn(ArchiveItem{Filename: f.Name, Bytes: b}); err != nil {
			return err
		}
	}
	return nil
}

func extractTarGz(data []byte, maxSizeBytes int64, fn func(ArchiveItem) error) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !isPDFName(hdr.Name) {
			continue
		}
		if maxSizeBytes > 0 && hdr.Size > maxSizeBytes {
			return &ErrArchiveTooLarge{Filename: hdr.Name, Size: hdr.Size}
		}
		b, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("read tar entry %s: %w", hdr.Name, err)
		}
		if err := fn(ArchiveItem{Filename: hdr.Name, Bytes: b}); err != nil {
			return err
		}
	}
}

func isPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
