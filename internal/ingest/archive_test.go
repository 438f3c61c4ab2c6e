package ingest

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"testing"
)

func buildTestZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := f.Write(data); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

func buildTestTarGz(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, data := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(data))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header %s: %v", name, err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatalf("write tar entry %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	return buf.Bytes()
}

func TestExtractArchiveStreamingZipSkipsNonPDF(t *testing.T) {
	data := buildTestZip(t, map[string][]byte{
		"paper.pdf":    []byte("%PDF-1.4 fake paper contents"),
		"readme.txt":   []byte("not a pdf"),
		"appendix.pdf": []byte("%PDF-1.4 fake appendix contents"),
	})

	var got []ArchiveItem
	err := ExtractArchiveStreaming("bundle.zip", data, 0, func(item ArchiveItem) error {
		got = append(got, item)
		return nil
	})
	if err != nil {
		t.Fatalf("ExtractArchiveStreaming returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 PDF entries, got %d: %+v", len(got), got)
	}
	for _, item := range got {
		if item.Filename != "paper.pdf" && item.Filename != "appendix.pdf" {
			t.Fatalf("unexpected filename %q in results", item.Filename)
		}
	}
}

func TestExtractArchiveStreamingZipEnforcesSizeCap(t *testing.T) {
	data := buildTestZip(t, map[string][]byte{
		"big.pdf": []byte("0123456789"),
	})

	err := ExtractArchiveStreaming("bundle.zip", data, 4, func(ArchiveItem) error { return nil })
	if err == nil {
		t.Fatalf("expected an error for an entry exceeding the size cap")
	}
	tooLarge, ok := err.(*ErrArchiveTooLarge)
	if !ok {
		t.Fatalf("expected *ErrArchiveTooLarge, got %T: %v", err, err)
	}
	if tooLarge.Filename != "big.pdf" {
		t.Fatalf("Filename = %q, want %q", tooLarge.Filename, "big.pdf")
	}
}

func TestExtractArchiveStreamingTarGz(t *testing.T) {
	data := buildTestTarGz(t, map[string][]byte{
		"paper.pdf": []byte("%PDF-1.4 fake paper contents"),
		"notes.md":  []byte("not a pdf"),
	})

	var got []ArchiveItem
	err := ExtractArchiveStreaming("bundle.tar.gz", data, 0, func(item ArchiveItem) error {
		got = append(got, item)
		return nil
	})
	if err != nil {
		t.Fatalf("ExtractArchiveStreaming returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 PDF entry, got %d: %+v", len(got), got)
	}
	if got[0].Filename != "paper.pdf" {
		t.Fatalf("Filename = %q, want %q", got[0].Filename, "paper.pdf")
	}
}

func TestIsArchivePath(t *testing.T) {
	cases := map[string]bool{
		"paper.zip":      true,
		"paper.tar.gz":   true,
		"paper.tgz":      true,
		"paper.pdf":      false,
		"paper.ZIP":      true,
		"archive.TAR.GZ": true,
	}
	for path, want := range cases {
		if got := IsArchivePath(path); got != want {
			t.Errorf("IsArchivePath(%q) = %v, want %v", path, got, want)
		}
	}
}
