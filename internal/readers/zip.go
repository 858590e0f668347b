package readers

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chunkstream/internal/model"

	kflate "github.com/klauspost/compress/flate"
)

func init() {
	// klauspost/compress's flate implementation is a drop-in, faster
	// decompressor for the deflate method archive/zip already knows how to
	// read; registering it speeds up every zip extraction in this package.
	zip.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return kflate.NewReader(r)
	})
}

// Archive safety limits: a hostile or malformed zip must not be
// able to exhaust memory or disk via decompression bombs or escape its
// extraction directory via path traversal.
const (
	MaxZipFileSize      = 100 * 1024 * 1024  // per-entry uncompressed size
	MaxExtractedSize    = 1024 * 1024 * 1024 // whole-archive uncompressed size
	MaxZipFileCount     = 1000
	MaxCompressionRatio = 100
)

// ZipReader extracts every supported member of a zip archive and
// concatenates their text, delegating each member's decoding to the reader
// registered for its extension.
type ZipReader struct {
	registry *Registry
}

// NewZipReader constructs a ZipReader that dispatches archive members back
// through registry.
func NewZipReader(registry *Registry) *ZipReader {
	return &ZipReader{registry: registry}
}

func (z *ZipReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

func (z *ZipReader) Extract(ctx context.Context, path string) (model.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return model.RawContent{}, err
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: opening zip %s: %w", path, err)
	}
	defer reader.Close()

	if len(reader.File) > MaxZipFileCount {
		return model.RawContent{}, fmt.Errorf("readers: zip %s has %d entries, exceeds limit of %d", path, len(reader.File), MaxZipFileCount)
	}

	tmpDir, err := os.MkdirTemp("", "chunkstream-zip-*")
	if err != nil {
		return model.RawContent{}, fmt.Errorf("readers: creating extraction dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var totalExtracted int64
	var b strings.Builder

	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return model.RawContent{}, err
		}
		if entry.FileInfo().IsDir() {
			continue
		}

		destPath, err := safeJoin(tmpDir, entry.Name)
		if err != nil {
			return model.RawContent{}, fmt.Errorf("readers: zip %s: %w", path, err)
		}

		if entry.UncompressedSize64 > MaxZipFileSize {
			return model.RawContent{}, fmt.Errorf("readers: zip entry %s exceeds per-file size limit", entry.Name)
		}
		if entry.CompressedSize64 > 0 {
			ratio := float64(entry.UncompressedSize64) / float64(entry.CompressedSize64)
			if ratio > MaxCompressionRatio {
				return model.RawContent{}, fmt.Errorf("readers: zip entry %s exceeds compression ratio limit", entry.Name)
			}
		}

		totalExtracted += int64(entry.UncompressedSize64)
		if totalExtracted > MaxExtractedSize {
			return model.RawContent{}, fmt.Errorf("readers: zip %s exceeds total extraction limit", path)
		}

		reader, err := z.registry.ReaderFor(entry.Name)
		if err != nil {
			continue // unsupported member format, skip silently
		}

		if err := extractEntry(entry, destPath); err != nil {
			return model.RawContent{}, fmt.Errorf("readers: extracting %s: %w", entry.Name, err)
		}

		content, err := reader.Extract(ctx, destPath)
		if err != nil {
			continue // one bad member doesn't fail the whole archive
		}
		b.WriteString(content.Text)
		b.WriteString("\n\n")
	}

	info, _ := os.Stat(path)
	var size int64
	if info != nil {
		size = info.Size()
	}

	return model.RawContent{
		Text: strings.TrimSpace(b.String()),
		Hints: model.SourceHints{
			FileName: filepath.Base(path),
			Size:     size,
			FileType: "application/zip",
		},
	}, nil
}

// safeJoin joins dir with name, rejecting entries that would escape dir via
// ".." path traversal or an absolute path.
func safeJoin(dir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.Join(dir, name))
	if !strings.HasPrefix(cleaned, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q escapes extraction directory", name)
	}
	return cleaned, nil
}

func extractEntry(entry *zip.File, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, io.LimitReader(src, MaxZipFileSize+1))
	return err
}
