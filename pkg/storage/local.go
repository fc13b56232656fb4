package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agriconnect-ug/agriconnect/config"
)

// localDisk stores photos on the local filesystem. The kernel mounts a
// file server on /storage/* pointing at root, so URL() links resolve.
type localDisk struct {
	root      string // absolute directory holding all keys
	publicURL string // prefix for URL(), no trailing slash
}

func newLocalDisk() *localDisk {
	root := config.Get("STORAGE_LOCAL_ROOT", "storage")
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	return &localDisk{
		root:      root,
		publicURL: strings.TrimRight(config.Get("STORAGE_URL", "http://localhost:8080/storage"), "/"),
	}
}

// resolve maps a key onto an absolute path, refusing keys that would
// escape the root.
func (d *localDisk) resolve(key string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(key))
	if full != d.root && !strings.HasPrefix(full, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("storage/local: key %q escapes the disk root", key)
	}
	return full, nil
}

func (d *localDisk) Put(key string, content []byte) error {
	return d.PutStream(key, bytes.NewReader(content))
}

// PutStream writes to a temp file in the target directory and renames it
// into place, so a crashed upload never leaves a half-written photo
// visible to the file server.
func (d *localDisk) PutStream(key string, r io.Reader) error {
	full, err := d.resolve(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("storage/local: temp for %s: %w", key, err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage/local: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage/local: finalize %s: %w", key, err)
	}
	return nil
}

func (d *localDisk) Get(key string) ([]byte, error) {
	full, err := d.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("storage/local: get %s: %w", key, err)
	}
	return data, nil
}

func (d *localDisk) GetStream(key string) (io.ReadCloser, error) {
	full, err := d.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("storage/local: open %s: %w", key, err)
	}
	return f, nil
}

func (d *localDisk) Exists(key string) bool {
	full, err := d.resolve(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

func (d *localDisk) Size(key string) (int64, error) {
	full, err := d.resolve(key)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, fmt.Errorf("storage/local: size %s: %w", key, err)
	}
	return info.Size(), nil
}

func (d *localDisk) Delete(key string) error {
	full, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", key, err)
	}
	return nil
}

func (d *localDisk) DeletePrefix(prefix string) error {
	full, err := d.resolve(prefix)
	if err != nil {
		return err
	}
	if full == d.root {
		return fmt.Errorf("storage/local: refusing to delete the disk root")
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("storage/local: delete prefix %s: %w", prefix, err)
	}
	return nil
}

func (d *localDisk) URL(key string) string {
	return d.publicURL + "/" + strings.TrimLeft(key, "/")
}
