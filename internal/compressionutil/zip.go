package compression

import (
	"context"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/fsutil"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// WriteZip writes every source (file or directory, recursively) into a zip
// archive on w and returns the number of entries written. Paths in skip are
// left out.
func WriteZip(ctx context.Context, fsys afero.Fs, w io.Writer, sources []string, skip ...string) (int, error) {
	zipWriter := zip.NewWriter(w)
	excluded := newPathSet(skip)
	count := 0

	for _, src := range sources {
		base := filepath.Dir(src)
		err := afero.Walk(fsys, src, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return apperrors.FromIO(err)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if excluded.has(path) {
				return nil
			}

			name, err := fsutil.MemberName(base, path)
			if err != nil {
				return apperrors.IO(path, err)
			}
			if name == "." || !(info.IsDir() || info.Mode().IsRegular()) {
				return nil
			}

			header, err := zip.FileInfoHeader(info)
			if err != nil {
				return apperrors.IO(path, err)
			}
			header.Name = name
			if info.IsDir() {
				header.Name += "/"
				header.Method = zip.Store
			} else {
				header.Method = zip.Deflate
			}

			zipEntry, err := zipWriter.CreateHeader(header)
			if err != nil {
				return apperrors.IO(path, err)
			}
			count++

			if info.IsDir() {
				return nil
			}

			file, err := fsutil.OpenFile(fsys, path)
			if err != nil {
				return err
			}
			defer file.Close()

			if _, err := io.Copy(zipEntry, file); err != nil {
				return apperrors.IO(path, err)
			}
			return nil
		})
		if err != nil {
			return count, err
		}
	}

	if err := zipWriter.Close(); err != nil {
		return count, apperrors.IO("", err)
	}
	return count, nil
}

// ExtractZIP unpacks the zip archive held in r into dst. name is only used to
// label errors. On failure the returned Extraction still lists what was
// written.
func ExtractZIP(ctx context.Context, fsys afero.Fs, r io.ReaderAt, size int64, name, dst string, overwrite bool) (*Extraction, error) {
	x := &Extraction{}
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return x, apperrors.FromZip(name, err)
	}

	for _, f := range zipReader.File {
		if err := ctx.Err(); err != nil {
			return x, err
		}

		target, err := fsutil.ScopedJoin(fsys, dst, f.Name)
		if err != nil {
			return x, apperrors.InvalidZipArchive(name, err.Error())
		}

		if f.FileInfo().IsDir() {
			if err := x.mkdirAll(fsys, target); err != nil {
				return x, err
			}
		} else if err := x.extractZipEntry(fsys, f, name, target, overwrite); err != nil {
			return x, err
		}
		x.Paths = append(x.Paths, target)
	}

	return x, nil
}

func (x *Extraction) extractZipEntry(fsys afero.Fs, f *zip.File, name, target string, overwrite bool) error {
	zippedFile, err := f.Open()
	if err != nil {
		return apperrors.FromZip(name, err)
	}
	defer zippedFile.Close()

	return x.writeFile(fsys, target, f.Mode().Perm(), overwrite, zippedFile, func(err error) error {
		return apperrors.FromZip(name, err)
	})
}
