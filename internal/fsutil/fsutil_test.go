package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureJoin(t *testing.T) {
	tests := []struct {
		name    string
		member  string
		want    string
		wantErr bool
	}{
		{"plain file", "a.txt", filepath.Join("/out", "a.txt"), false},
		{"nested", "dir/sub/a.txt", filepath.Join("/out", "dir", "sub", "a.txt"), false},
		{"inner dotdot stays inside", "dir/../a.txt", filepath.Join("/out", "a.txt"), false},
		{"escapes with dotdot", "../a.txt", "", true},
		{"bare dotdot", "..", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"dotdot-prefixed name is fine", "..hidden", filepath.Join("/out", "..hidden"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SecureJoin("/out", tt.member)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScopedJoin(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/out/dir", 0755))

	got, err := ScopedJoin(fsys, "/out", "dir/a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "dir", "a.txt"), got)

	_, err = ScopedJoin(fsys, "/out", "../a.txt")
	assert.Error(t, err)
}

func TestScopedJoinFollowsLinksInsideRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	require.NoError(t, os.Symlink("/etc", filepath.Join(root, "evil")))

	got, err := ScopedJoin(afero.NewOsFs(), root, "evil/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "etc", "passwd"), got)
}

func TestExpandHome(t *testing.T) {
	home, err := GetHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "backups"), ExpandHome("~/backups"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
}

func TestMemberName(t *testing.T) {
	name, err := MemberName("/data", "/data/site/index.html")
	require.NoError(t, err)
	assert.Equal(t, "site/index.html", name)

	name, err = MemberName("/data", "/data")
	require.NoError(t, err)
	assert.Equal(t, ".", name)
}

func TestCreateFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/existing", []byte("old"), 0644))

	_, err := CreateFile(fsys, "/existing", false)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	f, err := CreateFile(fsys, "/existing", true)
	require.NoError(t, err)
	_, err = f.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := afero.ReadFile(fsys, "/existing")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	f, err = CreateFile(fsys, "/fresh", false)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, FileExists(fsys, "/fresh"))
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(afero.NewMemMapFs(), "/missing")
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestCreateDir(t *testing.T) {
	fsys := afero.NewMemMapFs()

	require.NoError(t, CreateDirIfNotExists(fsys, "/a/b/c"))
	assert.True(t, DirExists(fsys, "/a/b/c"))
	require.NoError(t, CreateDirIfNotExists(fsys, "/a/b/c"), "existing directory is not an error")

	require.NoError(t, afero.WriteFile(fsys, "/blocker", []byte("x"), 0644))
	err := CreateDirIfNotExists(fsys, "/blocker")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}
