package attachments

import (
	"os"
	"path/filepath"
)

// PathResolver maps a caller-supplied output path to the path written to.
type PathResolver interface {
	Resolve(path string) string
}

type IdentityResolver struct{}

func (IdentityResolver) Resolve(path string) string { return path }

// MountResolver redirects relative paths under Mount when the mount
// directory exists and, if Workdir is set, the process runs from Workdir.
// Absolute paths are returned unchanged.
type MountResolver struct {
	Mount   string
	Workdir string

	stat  func(string) (os.FileInfo, error)
	getwd func() (string, error)
}

func NewMountResolver(mount, workdir string) *MountResolver {
	return &MountResolver{Mount: mount, Workdir: workdir, stat: os.Stat, getwd: os.Getwd}
}

func (r *MountResolver) Resolve(path string) string {
	if filepath.IsAbs(path) || r.Mount == "" {
		return path
	}
	info, err := r.stat(r.Mount)
	if err != nil || !info.IsDir() {
		return path
	}
	if r.Workdir != "" {
		cwd, err := r.getwd()
		if err != nil || filepath.Clean(cwd) != filepath.Clean(r.Workdir) {
			return path
		}
	}
	return filepath.Join(r.Mount, path)
}

// NewPathResolver returns a MountResolver when mount is set and an identity
// resolver otherwise.
func NewPathResolver(mount, workdir string) PathResolver {
	if mount == "" {
		return IdentityResolver{}
	}
	return NewMountResolver(mount, workdir)
}
