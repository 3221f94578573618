package verify

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDecodeLossy_ValidUTF8Unchanged(t *testing.T) {
	cases := []string{
		"",
		"plain ascii",
		"mixed – ünïcode ✓",
		"日本語テキスト",
	}

	for _, c := range cases {
		if got := DecodeLossy([]byte(c)); got != c {
			t.Errorf("DecodeLossy(%q) = %q, want input unchanged", c, got)
		}
	}
}

func TestDecodeLossy_InvalidBytesReplaced(t *testing.T) {
	got := DecodeLossy([]byte{'a', 0xFF, 'b'})
	if got != "a�b" {
		t.Errorf("Expected single replacement rune, got %q", got)
	}

	// Every invalid byte becomes a replacement rune; decoding never drops
	// content silently.
	got = DecodeLossy([]byte{0x80, 0x80, 0x80})
	if got != strings.Repeat("�", 3) {
		t.Errorf("Expected three replacement runes, got %q", got)
	}
}

func TestDecodeLossy_TruncatedSequenceAtEnd(t *testing.T) {
	// 0xE2 0x82 is a truncated 3-byte sequence
	got := DecodeLossy([]byte{'x', 0xE2, 0x82})
	if !utf8.ValidString(got) {
		t.Fatalf("Decoded text must be valid UTF-8, got %q", got)
	}
	if got != "x�" {
		t.Errorf("Expected truncated sequence collapsed to one replacement rune, got %q", got)
	}
}

func TestDecodeLossy_MaximalInvalidSequences(t *testing.T) {
	// A maximal invalid sequence becomes exactly one replacement rune,
	// however many bytes it spans.
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"truncated 3-byte prefix before text", []byte("\xE2\x82Hello"), "�Hello"},
		{"truncated 4-byte prefix", []byte{0xF0, 0x9F, 0x92}, "�"},
		{"bad second byte splits the sequence", []byte{0xF0, 0x80}, "��"},
		{"surrogate lead rejected byte by byte", []byte{0xED, 0xA0, 0x80}, "���"},
		{"overlong lead", []byte{0xC0, 0xAF}, "��"},
		{"invalid run between valid runes", []byte("a\xE2\x82b\xE2\x82c"), "a�b�c"},
	}

	for _, c := range cases {
		if got := DecodeLossy(c.in); got != c.want {
			t.Errorf("%s: DecodeLossy(% X) = %q, want %q", c.name, c.in, got, c.want)
		}
	}
}

func TestDecodeLossy_NeverErrorsOnArbitraryBytes(t *testing.T) {
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = byte(i)
	}

	got := DecodeLossy(buf)
	if !utf8.ValidString(got) {
		t.Error("Decoded text must always be valid UTF-8")
	}
	if len(got) == 0 {
		t.Error("Decoded text must not be empty for non-empty input")
	}
}
