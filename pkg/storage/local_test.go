package storage

import (
	"bytes"
	"testing"
)

func tempDisk(t *testing.T) *localDisk {
	t.Helper()
	t.Setenv("STORAGE_LOCAL_ROOT", t.TempDir())
	t.Setenv("STORAGE_URL", "http://localhost:8080/storage")
	return newLocalDisk()
}

func TestLocalPutGetDelete(t *testing.T) {
	d := tempDisk(t)
	key := "listings/farmer_7/photo.jpg"

	if err := d.PutStream(key, bytes.NewReader([]byte("jpegdata"))); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !d.Exists(key) {
		t.Fatal("expected key to exist after put")
	}

	got, err := d.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "jpegdata" {
		t.Errorf("expected stored bytes back, got %q", got)
	}

	size, err := d.Size(key)
	if err != nil || size != int64(len("jpegdata")) {
		t.Errorf("expected size %d, got %d (err=%v)", len("jpegdata"), size, err)
	}

	if err := d.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if d.Exists(key) {
		t.Error("expected key gone after delete")
	}
	if err := d.Delete(key); err != nil {
		t.Errorf("deleting an absent key should be nil, got %v", err)
	}
}

func TestLocalDeletePrefix(t *testing.T) {
	d := tempDisk(t)
	keys := []string{
		"listings/farmer_7/a.jpg",
		"listings/farmer_7/b.jpg",
		"listings/farmer_8/c.jpg",
	}
	for _, k := range keys {
		if err := d.Put(k, []byte("x")); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}

	if err := d.DeletePrefix("listings/farmer_7"); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}

	if d.Exists("listings/farmer_7/a.jpg") || d.Exists("listings/farmer_7/b.jpg") {
		t.Error("expected farmer_7 keys gone")
	}
	if !d.Exists("listings/farmer_8/c.jpg") {
		t.Error("expected farmer_8 key untouched")
	}
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	d := tempDisk(t)

	if err := d.Put("../outside.txt", []byte("x")); err == nil {
		t.Error("expected error for key escaping the root")
	}
	if _, err := d.Get("../../etc/passwd"); err == nil {
		t.Error("expected error for read escaping the root")
	}
	if err := d.DeletePrefix(".."); err == nil {
		t.Error("expected error for prefix escaping the root")
	}
}

func TestLocalURL(t *testing.T) {
	d := tempDisk(t)
	got := d.URL("listings/farmer_7/photo.jpg")
	want := "http://localhost:8080/storage/listings/farmer_7/photo.jpg"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestKeyFor(t *testing.T) {
	d := tempDisk(t)
	RegisterDisk("local", d)
	managerMu.Lock()
	defaultDisk = "local"
	managerMu.Unlock()

	url := d.URL("listings/farmer_7/photo.jpg")
	key, ok := KeyFor(url)
	if !ok || key != "listings/farmer_7/photo.jpg" {
		t.Errorf("expected key back from url, got %q (ok=%v)", key, ok)
	}

	if _, ok := KeyFor("https://elsewhere.example.com/x.jpg"); ok {
		t.Error("expected foreign URL to report !ok")
	}
	if _, ok := KeyFor(""); ok {
		t.Error("expected empty URL to report !ok")
	}
}
