package storage

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk string
)

// Connect boots the disks. The local disk always exists; the s3 disk only
// when S3_BUCKET is set, and a broken S3 config downgrades to a warning so
// the marketplace still runs on local storage.
func Connect() {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.Get("STORAGE_DISK", "local")
	disks["local"] = newLocalDisk()

	if config.Get("S3_BUCKET", "") != "" {
		d, err := newS3Disk()
		if err != nil {
			logger.Warn("s3 disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}
}

// Use returns the named disk ("local" or "s3"). Asking for a disk that
// never booted is a programming error, hence the panic.
func Use(name string) Disk {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("storage: unknown disk %q", name))
	}
	return d
}

// RegisterDisk plugs in a custom Disk, e.g. an in-memory one for tests.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

// LocalRoot returns the absolute root directory of the local disk, used
// to mount the /storage/* file server.
func LocalRoot() string {
	managerMu.RLock()
	defer managerMu.RUnlock()
	if d, ok := disks["local"].(*localDisk); ok {
		return d.root
	}
	return ""
}

// KeyFor maps a public URL back to the key that produced it, or false
// when the URL did not come from the default disk. Lets callers delete a
// photo knowing only the URL stored on the listing row.
func KeyFor(url string) (string, bool) {
	base := active().URL("")
	if base == "" || !strings.HasPrefix(url, base) {
		return "", false
	}
	key := strings.TrimPrefix(url, base)
	if key == "" {
		return "", false
	}
	return key, true
}

// Default-disk helpers. STORAGE_DISK picks which driver they hit.

func active() Disk {
	managerMu.RLock()
	name := defaultDisk
	managerMu.RUnlock()
	return Use(name)
}

// Put writes content under key on the default disk.
func Put(key string, content []byte) error { return active().Put(key, content) }

// PutStream writes from r under key on the default disk.
func PutStream(key string, r io.Reader) error { return active().PutStream(key, r) }

// Get returns the content under key on the default disk.
func Get(key string) ([]byte, error) { return active().Get(key) }

// GetStream opens the content under key on the default disk.
func GetStream(key string) (io.ReadCloser, error) { return active().GetStream(key) }

// Exists reports whether key holds content on the default disk.
func Exists(key string) bool { return active().Exists(key) }

// Size returns the byte size under key on the default disk.
func Size(key string) (int64, error) { return active().Size(key) }

// Delete removes key from the default disk.
func Delete(key string) error { return active().Delete(key) }

// DeletePrefix removes every key under prefix on the default disk.
func DeletePrefix(prefix string) error { return active().DeletePrefix(prefix) }

// URL returns the public URL for key on the default disk.
func URL(key string) string { return active().URL(key) }
