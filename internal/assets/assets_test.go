package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bramblefox/mcstats-companion/internal/player"
)

const testKeyStr = "aaaaaaaa-bbbb-1ccc-8ddd-eeeeeeeeeeee"

func testKey(t *testing.T) player.Key {
	t.Helper()
	key, err := player.ParseKey(testKeyStr)
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	return key
}

// stubResolver returns a fixed name.
type stubResolver struct {
	name *string
}

func (r *stubResolver) Resolve(ctx context.Context, key player.Key) *string {
	return r.name
}

func TestFetchAll_Renderer(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	f := New(Config{RendererURL: srv.URL, DownloadsPerSecond: 1000}, nil)
	dest := filepath.Join(t.TempDir(), "out")

	if err := f.FetchAll(context.Background(), testKey(t), dest); err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	for _, name := range []string{AvatarFile, BodyFile, SkinFile} {
		data, err := os.ReadFile(filepath.Join(dest, name))
		if err != nil {
			t.Errorf("%s not written: %v", name, err)
			continue
		}
		if string(data) != "png-bytes" {
			t.Errorf("%s content = %q", name, data)
		}
	}

	if len(paths) != 3 {
		t.Fatalf("requests = %d, want 3", len(paths))
	}
	for _, p := range paths {
		if !strings.Contains(p, testKeyStr) {
			t.Errorf("renderer path %q does not contain the hyphenated key", p)
		}
	}
}

func TestFetchAll_DownloadFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/renders/body/") {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	f := New(Config{RendererURL: srv.URL, DownloadsPerSecond: 1000}, nil)
	dest := filepath.Join(t.TempDir(), "out")

	if err := f.FetchAll(context.Background(), testKey(t), dest); err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dest, AvatarFile)); err != nil {
		t.Errorf("avatar should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, BodyFile)); err == nil {
		t.Error("failed body download should not leave a file")
	}
}

func TestFetchAll_SkinServer(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/profiles/Steve" {
			w.Write([]byte(`{"skinHash":"abc123"}`))
			return
		}
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	name := "Steve"
	f := New(Config{SkinServer: srv.URL, DownloadsPerSecond: 1000}, &stubResolver{name: &name})
	dest := filepath.Join(t.TempDir(), "out")

	if err := f.FetchAll(context.Background(), testKey(t), dest); err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	if paths[0] != "/profiles/Steve" {
		t.Errorf("first request = %q, want profile lookup", paths[0])
	}
	found := false
	for _, p := range paths[1:] {
		if strings.Contains(p, "abc123") {
			found = true
		}
	}
	if !found {
		t.Error("asset URLs should be derived from the skin hash")
	}
}

func TestFetchAll_SkinServerProfileFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	name := "Steve"
	f := New(Config{SkinServer: srv.URL, DownloadsPerSecond: 1000}, &stubResolver{name: &name})

	err := f.FetchAll(context.Background(), testKey(t), filepath.Join(t.TempDir(), "out"))
	if err == nil {
		t.Error("profile lookup failure should fail the pipeline")
	}
}

func TestFetchAll_SkinServerNoName(t *testing.T) {
	f := New(Config{SkinServer: "http://unused.invalid"}, &stubResolver{name: nil})

	err := f.FetchAll(context.Background(), testKey(t), filepath.Join(t.TempDir(), "out"))
	if err == nil {
		t.Error("unresolvable name should fail the skin-service strategy")
	}
}

func TestDefaultSkin_Deterministic(t *testing.T) {
	key := testKey(t)
	first := DefaultSkin(key)
	for i := 0; i < 5; i++ {
		if got := DefaultSkin(key); got != first {
			t.Fatalf("DefaultSkin not stable: %q then %q", first, got)
		}
	}
	if first != fallbackSteve && first != fallbackAlex {
		t.Errorf("DefaultSkin = %q, want one of the canonical fallbacks", first)
	}

	other, err := player.ParseKey("bbbbbbbb-cccc-1ddd-8eee-ffffffffffff")
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	// Not all keys share one fallback; this pair is known to differ.
	if DefaultSkin(key) == DefaultSkin(other) {
		t.Logf("both keys map to %s; acceptable but worth noting", first)
	}
}

func TestDownloadResult_OK(t *testing.T) {
	if (DownloadResult{Status: http.StatusOK}).OK() != true {
		t.Error("200 with no error should be OK")
	}
	if (DownloadResult{Status: http.StatusNotFound}).OK() {
		t.Error("404 should not be OK")
	}
	if (DownloadResult{Status: http.StatusOK, Err: context.Canceled}).OK() {
		t.Error("error should not be OK")
	}
}
