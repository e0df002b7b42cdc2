package chd

import (
	"context"
	"errors"
	"io"
	"testing"
)

func readAll(t *testing.T, src KeySource) []string {
	t.Helper()
	var out []string
	for {
		k, err := src.Read()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		out = append(out, string(k))
	}
}

func TestLineKeySource(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"empty", "", nil},
		{"single_no_newline", "a", []string{"a"}},
		{"trailing_newline", "a\nb\n", []string{"a", "b"}},
		{"no_trailing_newline", "a\nb", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"empty_line", "a\n\nb\n", []string{"a", "", "b"}},
		{"only_newline", "\n", []string{""}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := NewLineKeySource([]byte(tc.data))
			if src.NumKeys() != uint32(len(tc.want)) {
				t.Fatalf("NumKeys() = %d, want %d", src.NumKeys(), len(tc.want))
			}
			for pass := range 2 {
				src.Rewind()
				got := readAll(t, src)
				if len(got) != len(tc.want) {
					t.Fatalf("pass %d: got %q, want %q", pass, got, tc.want)
				}
				for i := range got {
					if got[i] != tc.want[i] {
						t.Fatalf("pass %d: key %d = %q, want %q", pass, i, got[i], tc.want[i])
					}
				}
			}
		})
	}
}

func TestSliceKeySource(t *testing.T) {
	keys := numberedKeys(5)
	src := NewSliceKeySource(keys)
	if src.NumKeys() != 5 {
		t.Fatalf("NumKeys() = %d, want 5", src.NumKeys())
	}
	first := readAll(t, src)
	src.Rewind()
	second := readAll(t, src)
	if len(first) != 5 || len(second) != 5 || first[4] != "KEY-4" || second[0] != "KEY-0" {
		t.Errorf("passes = %q / %q", first, second)
	}
}

func TestBuildFromLineKeySource(t *testing.T) {
	var data []byte
	for _, k := range numberedKeys(1000) {
		data = append(data, k...)
		data = append(data, '\n')
	}
	f, err := Build(context.Background(), NewLineKeySource(data), WithSeed(7))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	requireBijection(t, f, numberedKeys(1000))
}
