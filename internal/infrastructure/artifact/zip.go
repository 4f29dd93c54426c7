// Package artifact packages code directories into zip archives and reads
// them back for upload.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zip"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// ArchiveName is the file name of the archive inside its temp directory.
const ArchiveName = "function.zip"

// ZipStore implements ports.ArtifactStore with zip archives written to a
// temporary directory.
type ZipStore struct {
	tempDir   string
	logger    ports.Logger
	mu        sync.Mutex
	generated map[string]string
}

// Option configures a ZipStore.
type Option func(*ZipStore)

// WithTempDir sets the parent directory for archives. Defaults to os.TempDir.
func WithTempDir(dir string) Option {
	return func(s *ZipStore) { s.tempDir = dir }
}

// NewZipStore creates a ZipStore.
func NewZipStore(logger ports.Logger, opts ...Option) *ZipStore {
	s := &ZipStore{logger: logger, generated: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ArtifactStore = (*ZipStore)(nil)

// Package archives every regular file below source. Entry names are relative
// to source and use forward slashes. A source that already is a .zip file is
// returned unchanged.
func (s *ZipStore) Package(ctx context.Context, source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", classify(err, source)
	}
	if !info.IsDir() {
		if strings.EqualFold(filepath.Ext(source), ".zip") {
			return source, nil
		}
		return "", function.NewError(function.ErrCodeArtifactUnreadable,
			"code artifacts path must be a directory or a .zip file", nil,
			map[string]interface{}{"path": source})
	}

	dir, err := os.MkdirTemp(s.tempDir, "lambda-deploy-*")
	if err != nil {
		return "", function.NewError(function.ErrCodeInternal, "create archive directory", err, nil)
	}
	archive := filepath.Join(dir, ArchiveName)

	files, err := s.write(ctx, source, archive)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}

	s.mu.Lock()
	s.generated[archive] = dir
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug(ctx, "code artifacts archived", "source", source, "archive", archive, "files", files)
	}
	return archive, nil
}

// Release removes the temp directory of an archive Package generated.
func (s *ZipStore) Release(ctx context.Context, archive string) error {
	s.mu.Lock()
	dir, ok := s.generated[archive]
	delete(s.generated, archive)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if err := os.RemoveAll(dir); err != nil {
		return function.NewError(function.ErrCodeInternal, "remove archive directory", err, map[string]interface{}{"path": dir})
	}
	if s.logger != nil {
		s.logger.Debug(ctx, "code archive removed", "archive", archive)
	}
	return nil
}

func (s *ZipStore) write(ctx context.Context, source, archive string) (files int, err error) {
	out, err := os.Create(archive)
	if err != nil {
		return 0, function.NewError(function.ErrCodeInternal, "create archive", err, map[string]interface{}{"path": archive})
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = function.NewError(function.ErrCodeInternal, "close archive", closeErr, map[string]interface{}{"path": archive})
		}
	}()

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(source, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return classify(walkErr, path)
		}
		if err := ctx.Err(); err != nil {
			return function.NewError(function.ErrCodeCancelled, "packaging cancelled", err, nil)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return function.NewError(function.ErrCodeInternal, "resolve archive entry", err, map[string]interface{}{"path": path})
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		files++
		return nil
	})
	if walkErr != nil {
		_ = zw.Close()
		return files, walkErr
	}
	if err := zw.Close(); err != nil {
		return files, function.NewError(function.ErrCodeInternal, "finalize archive", err, map[string]interface{}{"path": archive})
	}
	return files, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return classify(err, path)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return function.NewError(function.ErrCodeInternal, "build archive header", err, map[string]interface{}{"path": path})
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return function.NewError(function.ErrCodeInternal, "write archive entry", err, map[string]interface{}{"path": path})
	}

	f, err := os.Open(path)
	if err != nil {
		return classify(err, path)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return function.NewError(function.ErrCodeArtifactUnreadable, fmt.Sprintf("read %s", name), err, map[string]interface{}{"path": path})
	}
	return nil
}

// ReadArtifact returns the archive bytes at path.
func (s *ZipStore) ReadArtifact(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, function.NewError(function.ErrCodeCancelled, "read cancelled", err, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classify(err, path)
	}
	return data, nil
}

func classify(err error, path string) error {
	meta := map[string]interface{}{"path": path}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return function.NewError(function.ErrCodeArtifactNotFound, "code artifact not found: "+path, err, meta)
	case errors.Is(err, fs.ErrPermission):
		return function.NewError(function.ErrCodeArtifactPermission, "permission denied reading code artifact: "+path, err, meta)
	default:
		return function.NewError(function.ErrCodeArtifactUnreadable, "cannot read code artifact: "+path, err, meta)
	}
}
