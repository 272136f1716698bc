package fileserver

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/escuela9/portal/core"
)

// localStore persists artifacts on the local filesystem under a single root
// directory and serves them back under a public URL prefix (echo Static).
type localStore struct {
	root      string
	urlPrefix string
}

var _ core.FileStore = (*localStore)(nil)

func NewLocalStore(conf *core.Config) *localStore {
	return &localStore{
		root:      conf.Uploads.Root,
		urlPrefix: strings.TrimSuffix(conf.Uploads.URLPrefix, "/"),
	}
}

func (st *localStore) Save(_ context.Context, name string, content io.Reader) (string, error) {
	dest := filepath.Join(st.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", errors.Wrap(err, "creating artifact directory")
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrap(err, "creating artifact file")
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(f, content); err != nil {
		return "", errors.Wrap(err, "writing artifact file")
	}
	return st.urlPrefix + "/" + path.Clean(filepath.ToSlash(name)), nil
}

func (st *localStore) Open(_ context.Context, publicPath string) (io.ReadCloser, error) {
	rel, err := st.relPath(publicPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(st.root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrFileNotFound
		}
		return nil, errors.Wrap(err, "opening artifact file")
	}
	return f, nil
}

func (st *localStore) Delete(_ context.Context, publicPath string) error {
	rel, err := st.relPath(publicPath)
	if err != nil {
		return err
	}
	if err = os.Remove(filepath.Join(st.root, rel)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing artifact file")
	}
	return nil
}

// relPath maps a stored public path back to a path under root, refusing
// anything that escapes it.
func (st *localStore) relPath(publicPath string) (string, error) {
	p := strings.TrimPrefix(publicPath, st.urlPrefix)
	p = path.Clean("/" + p) // no ".." escapes
	return filepath.FromSlash(strings.TrimPrefix(p, "/")), nil
}
