package export

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/imagedata"
)

func withImage(name, data string) dish.Dish {
	img := imagedata.Image{MIMEType: imagedata.PNGMIMEType, Data: []byte(data)}
	return dish.Dish{ID: name, Name: name, Image: &img, Status: dish.StatusReady}
}

func readArchive(t *testing.T, buf []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		t.Fatal(err)
	}
	zr.RegisterDecompressor(zipMethodZstd, zstd.ZipDecompressor())
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = string(b)
	}
	return out
}

func TestWriteArchive(t *testing.T) {
	for _, useZstd := range []bool{false, true} {
		var buf bytes.Buffer
		dishes := []dish.Dish{
			withImage("Tomato Soup", "soup"),
			{ID: "x", Name: "No Image Yet"},
			withImage("Lemon Tart", "tart"),
			withImage("tomato  soup", "soup2"),
			withImage("Tomato Soup", "soup3"),
		}
		n, err := WriteArchive(&buf, dishes, Options{Zstd: useZstd})
		if err != nil {
			t.Fatalf("zstd=%v WriteArchive() error = %v", useZstd, err)
		}
		if n != 4 {
			t.Errorf("zstd=%v wrote %d files, want 4", useZstd, n)
		}

		files := readArchive(t, buf.Bytes())
		want := map[string]string{
			"tomato-soup.png":   "soup",
			"lemon-tart.png":    "tart",
			"tomato-soup-2.png": "soup2",
			"tomato-soup-3.png": "soup3",
		}
		if len(files) != len(want) {
			names := make([]string, 0, len(files))
			for k := range files {
				names = append(names, k)
			}
			sort.Strings(names)
			t.Fatalf("zstd=%v files = %v", useZstd, names)
		}
		for name, data := range want {
			if files[name] != data {
				t.Errorf("zstd=%v %s = %q, want %q", useZstd, name, files[name], data)
			}
		}
	}
}

func TestNameSetAvoidsExistingSuffix(t *testing.T) {
	s := newNameSet()
	got := []string{s.claim("soup-2"), s.claim("soup"), s.claim("soup")}
	want := []string{"soup-2.png", "soup.png", "soup-3.png"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("claim %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWriteArchiveEmpty(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteArchive(&buf, nil, Options{})
	if err != nil || n != 0 {
		t.Errorf("WriteArchive() = %d, %v", n, err)
	}
	if len(readArchive(t, buf.Bytes())) != 0 {
		t.Error("expected empty archive")
	}
}
