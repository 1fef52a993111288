package exifscan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkarlsen/divelog/internal/entities"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true,
	".png": true, ".tif": true, ".tiff": true,
	".dng": true, ".nef": true, ".cr2": true, ".cr3": true,
	".arw": true, ".orf": true, ".raf": true, ".rw2": true,
	".heic": true, ".heif": true,
}

// Processed derivatives rather than camera originals.
var processedExtensions = map[string]bool{
	".tif": true, ".tiff": true, ".png": true,
}

// Scanner walks directories, resolves metadata for every image file found
// and produces ScannedPhoto records. Per-file metadata failures degrade to
// records with empty fields; only unreadable paths are errors.
type Scanner struct {
	resolver *FusionResolver
}

func NewScanner(resolver *FusionResolver) *Scanner {
	return &Scanner{resolver: resolver}
}

// ScanPaths scans a mix of files and directories. Directories recurse
// synchronously; filesystems surfaced here are acyclic, so no cycle
// detection is needed.
func (s *Scanner) ScanPaths(paths []string) ([]entities.ScannedPhoto, error) {
	var photos []entities.ScannedPhoto
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if isImageFile(path) {
				photos = append(photos, s.scanFile(path, info.Size()))
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isImageFile(p) {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			photos = append(photos, s.scanFile(p, fi.Size()))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return photos, nil
}

func (s *Scanner) scanFile(path string, size int64) entities.ScannedPhoto {
	photo := s.resolver.Resolve(path)
	photo.FilePath = path
	photo.FileName = filepath.Base(path)
	photo.FileSizeBytes = size
	photo.Processed = processedExtensions[strings.ToLower(filepath.Ext(path))]
	return photo
}

func isImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}
