package fileserver

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"path"
	"sync"

	"github.com/escuela9/portal/core"
)

// memoryStore keeps artifacts in memory; used by tests and dev tooling.
type memoryStore struct {
	sync.RWMutex
	urlPrefix string
	files     map[string][]byte // public path -> content
}

var _ core.FileStore = (*memoryStore)(nil)

func NewMemoryStore() *memoryStore {
	return &memoryStore{
		urlPrefix: "/uploads",
		files:     make(map[string][]byte),
	}
}

func (st *memoryStore) Save(_ context.Context, name string, content io.Reader) (string, error) {
	data, err := ioutil.ReadAll(content)
	if err != nil {
		return "", err
	}

	st.Lock()
	defer st.Unlock()
	publicPath := st.urlPrefix + "/" + path.Clean(name)
	st.files[publicPath] = data
	return publicPath, nil
}

func (st *memoryStore) Open(_ context.Context, publicPath string) (io.ReadCloser, error) {
	st.RLock()
	defer st.RUnlock()

	data, ok := st.files[publicPath]
	if !ok {
		return nil, core.ErrFileNotFound
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

func (st *memoryStore) Delete(_ context.Context, publicPath string) error {
	st.Lock()
	defer st.Unlock()
	delete(st.files, publicPath)
	return nil
}

// Len reports how many artifacts are currently stored.
func (st *memoryStore) Len() int {
	st.RLock()
	defer st.RUnlock()
	return len(st.files)
}
