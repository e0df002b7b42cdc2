package chd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	chderrors "github.com/tamirms/chd/errors"
)

func writeTestFile(t *testing.T, keys [][]byte) (string, *Function) {
	t.Helper()
	f := buildTestFunction(t, keys)
	path := filepath.Join(t.TempDir(), "keys.chd")
	if err := WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, f
}

func TestFileRoundTrip(t *testing.T) {
	keys := generateRandomKeys(newTestRNG(t), 3000, 16)
	path, f := writeTestFile(t, keys)

	stat, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if stat.Size() != fileSize(f.DumpSize()) {
		t.Errorf("file size = %d, want %d", stat.Size(), fileSize(f.DumpSize()))
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, k := range keys {
		if loaded.Hash(k) != f.Hash(k) {
			t.Fatalf("Hash(%x) differs after file round trip", k)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, EncodeFile(f)) {
		t.Error("WriteFile and EncodeFile produced different bytes")
	}
}

func TestFileLayout(t *testing.T) {
	f := buildTestFunction(t, numberedKeys(50))
	data := EncodeFile(f)

	if string(data[0:4]) != "CHDF" {
		t.Errorf("magic bytes = %q, want \"CHDF\"", data[0:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != version {
		t.Errorf("version = %d, want %d", v, version)
	}
	if n := binary.LittleEndian.Uint32(data[8:12]); int(n) != f.DumpSize() {
		t.Errorf("NumWords = %d, want %d", n, f.DumpSize())
	}
	if seed := binary.LittleEndian.Uint32(data[headerSize:]); seed != f.Seed() {
		t.Errorf("first dump word = %d, want seed %d", seed, f.Seed())
	}
	for i, b := range data[12:headerSize] {
		if b != 0 {
			t.Errorf("reserved header byte %d = %#x", 12+i, b)
		}
	}
}

func TestDecodeFileErrors(t *testing.T) {
	f := buildTestFunction(t, numberedKeys(200))
	good := EncodeFile(f)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"empty", func(d []byte) []byte { return nil }, chderrors.ErrTruncatedFile},
		{"header_only", func(d []byte) []byte { return d[:headerSize] }, chderrors.ErrTruncatedFile},
		{"missing_footer_byte", func(d []byte) []byte { return d[:len(d)-1] }, chderrors.ErrTruncatedFile},
		{"trailing_byte", func(d []byte) []byte { return append(d, 0) }, chderrors.ErrCorruptedDump},
		{"bad_magic", func(d []byte) []byte { d[0] ^= 0xFF; return d }, chderrors.ErrInvalidMagic},
		{"bad_version", func(d []byte) []byte { d[4] = 9; return d }, chderrors.ErrInvalidVersion},
		{"body_flip", func(d []byte) []byte { d[headerSize+13] ^= 0x10; return d }, chderrors.ErrChecksumFailed},
		{"checksum_flip", func(d []byte) []byte { d[len(d)-footerSize] ^= 1; return d }, chderrors.ErrChecksumFailed},
		{"word_count_grown", func(d []byte) []byte {
			n := binary.LittleEndian.Uint32(d[8:12])
			binary.LittleEndian.PutUint32(d[8:12], n+1)
			return d
		}, chderrors.ErrTruncatedFile},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.mutate(bytes.Clone(good))
			if _, err := DecodeFile(data); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestReadFileErrors(t *testing.T) {
	t.Run("nonexistent", func(t *testing.T) {
		if _, err := ReadFile("/nonexistent/path/to/keys.chd"); err == nil {
			t.Error("expected error for non-existent file path")
		}
	})

	t.Run("empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.chd")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFile(path); !errors.Is(err, chderrors.ErrTruncatedFile) {
			t.Errorf("err = %v, want ErrTruncatedFile", err)
		}
	})

	t.Run("corrupted_body", func(t *testing.T) {
		path, _ := writeTestFile(t, numberedKeys(100))
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		data[headerSize+20] ^= 0xFF
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFile(path); !errors.Is(err, chderrors.ErrChecksumFailed) {
			t.Errorf("err = %v, want ErrChecksumFailed", err)
		}
	})
}

func TestWriteFileBadPath(t *testing.T) {
	f := buildTestFunction(t, numberedKeys(10))
	if err := WriteFile(filepath.Join(t.TempDir(), "missing", "keys.chd"), f); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
