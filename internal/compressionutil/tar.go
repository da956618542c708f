package compression

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/fsutil"
	"github.com/deploymenttheory/go-crunch/internal/logger"
	"github.com/spf13/afero"
)

// WriteTar writes every source (file or directory, recursively) into a tar
// stream on w. Member names are relative to each source's parent directory.
// Paths in skip, such as the archive being written, are left out. It returns
// the number of members written.
func WriteTar(ctx context.Context, fsys afero.Fs, w io.Writer, sources []string, skip ...string) (int, error) {
	tw := tar.NewWriter(w)
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
			if name == "." {
				return nil
			}

			link := ""
			if info.Mode()&os.ModeSymlink != 0 {
				reader, ok := fsys.(afero.LinkReader)
				if !ok {
					return nil
				}
				if link, err = reader.ReadlinkIfPossible(path); err != nil {
					return apperrors.FromIO(err)
				}
			}

			hdr, err := tar.FileInfoHeader(info, link)
			if err != nil {
				return apperrors.IO(path, err)
			}
			hdr.Name = name
			if info.IsDir() {
				hdr.Name += "/"
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return apperrors.IO(path, err)
			}
			count++

			if !info.Mode().IsRegular() {
				return nil
			}

			file, err := fsutil.OpenFile(fsys, path)
			if err != nil {
				return err
			}
			defer file.Close()

			if _, err := io.Copy(tw, file); err != nil {
				return apperrors.IO(path, err)
			}
			return nil
		})
		if err != nil {
			return count, err
		}
	}

	if err := tw.Close(); err != nil {
		return count, apperrors.IO("", err)
	}
	return count, nil
}

// ExtractTar unpacks a tar stream into dst. On failure the returned
// Extraction still lists what was written so the caller can roll it back.
func ExtractTar(ctx context.Context, fsys afero.Fs, r io.Reader, dst string, overwrite bool) (*Extraction, error) {
	tr := tar.NewReader(r)
	x := &Extraction{}

	for {
		if err := ctx.Err(); err != nil {
			return x, err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return x, &apperrors.Error{Kind: apperrors.KindIOError, Reason: "corrupt tar stream", Err: err}
		}

		target, err := fsutil.ScopedJoin(fsys, dst, hdr.Name)
		if err != nil {
			return x, &apperrors.Error{Kind: apperrors.KindIOError, Name: hdr.Name, Reason: "unsafe tar member", Err: err}
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := x.mkdirAll(fsys, target); err != nil {
				return x, err
			}

		case tar.TypeReg:
			if err := x.writeFile(fsys, target, hdr.FileInfo().Mode(), overwrite, tr, tarCopyError(target)); err != nil {
				return x, err
			}

		case tar.TypeLink:
			if err := x.extractHardLink(fsys, hdr, dst, target, overwrite); err != nil {
				return x, err
			}

		case tar.TypeSymlink:
			linker, ok := fsys.(afero.Linker)
			if !ok {
				logger.LogWarn("Skipping symlink, filesystem cannot create links", map[string]interface{}{
					"member": hdr.Name,
					"target": hdr.Linkname,
				})
				continue
			}
			resolved := filepath.Join(filepath.Dir(filepath.FromSlash(hdr.Name)), hdr.Linkname)
			if _, err := fsutil.SecureJoin(dst, resolved); err != nil || filepath.IsAbs(hdr.Linkname) {
				return x, &apperrors.Error{Kind: apperrors.KindIOError, Name: hdr.Name, Reason: "symlink points outside the destination"}
			}
			if err := x.mkdirAll(fsys, filepath.Dir(target)); err != nil {
				return x, err
			}
			if err := linker.SymlinkIfPossible(hdr.Linkname, target); err != nil {
				return x, apperrors.FromIO(err)
			}
			x.Created = append(x.Created, target)

		default:
			logger.LogWarn("Skipping unsupported tar member", map[string]interface{}{
				"member": hdr.Name,
				"type":   string(hdr.Typeflag),
			})
			continue
		}

		x.Paths = append(x.Paths, target)
	}

	return x, nil
}

// extractHardLink copies the content of an already extracted member. Link
// names are relative to the archive root, not to the member.
func (x *Extraction) extractHardLink(fsys afero.Fs, hdr *tar.Header, dst, target string, overwrite bool) error {
	source, err := fsutil.ScopedJoin(fsys, dst, hdr.Linkname)
	if err != nil {
		return &apperrors.Error{Kind: apperrors.KindIOError, Name: hdr.Name, Reason: "hard link points outside the destination", Err: err}
	}

	info, err := fsys.Stat(source)
	if err != nil || !info.Mode().IsRegular() {
		return &apperrors.Error{Kind: apperrors.KindIOError, Name: hdr.Name, Reason: "hard link to '" + hdr.Linkname + "' which is not an extracted file"}
	}

	in, err := fsutil.OpenFile(fsys, source)
	if err != nil {
		return err
	}
	defer in.Close()

	mode := hdr.FileInfo().Mode()
	if mode.Perm() == 0 {
		mode = info.Mode()
	}
	return x.writeFile(fsys, target, mode, overwrite, in, tarCopyError(target))
}

func tarCopyError(target string) func(error) error {
	return func(err error) error {
		return apperrors.IO(target, err)
	}
}
