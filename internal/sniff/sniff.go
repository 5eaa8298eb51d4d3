// Package sniff detects the encoding and delimiter convention of a raw
// export file and yields a clean Unicode text stream.
package sniff

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies the detected source byte encoding.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF16LE     Encoding = "utf-16le"
	EncodingUTF16BE     Encoding = "utf-16be"
	EncodingWindows1252 Encoding = "windows-1252"
)

// DefaultDelimiter is used when the file carries no sep= directive.
const DefaultDelimiter = ';'

// Source is a normalized export: decoded text plus the structural hints
// the record parser needs.
type Source struct {
	Text          string
	Delimiter     rune
	SkipFirstLine bool // first line is a sep= directive, not data
	Encoding      Encoding
}

// File reads and normalizes an export file. An unreadable file is a fatal
// precondition for the whole run.
func File(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("reading source file: %w", err)
	}
	return Detect(data)
}

// Detect decodes raw export bytes into a Source. Encoding candidates, in
// order: UTF-16 with BOM (either endianness), UTF-8 (BOM stripped), valid
// UTF-8, otherwise a single-byte Western code page.
func Detect(data []byte) (Source, error) {
	text, enc, err := decode(data)
	if err != nil {
		return Source{}, err
	}

	src := Source{Text: text, Delimiter: DefaultDelimiter, Encoding: enc}
	if delim, ok := sepDirective(text); ok {
		src.Delimiter = delim
		src.SkipFirstLine = true
	}
	return src, nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func decode(data []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		enc := EncodingUTF16LE
		if data[0] == 0xFE {
			enc = EncodingUTF16BE
		}
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		decoded, err := dec.Bytes(data)
		if err != nil {
			return "", enc, fmt.Errorf("decoding UTF-16 source: %w", err)
		}
		return string(decoded), enc, nil

	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), EncodingUTF8, nil

	case utf8.Valid(data):
		return string(data), EncodingUTF8, nil

	default:
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", EncodingWindows1252, fmt.Errorf("decoding Windows-1252 source: %w", err)
		}
		return string(decoded), EncodingWindows1252, nil
	}
}

// sepDirective recognizes the "sep=<char>" convention some spreadsheet
// exports place on the first line.
func sepDirective(text string) (rune, bool) {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimRight(line, "\r")

	rest, ok := cutPrefixFold(line, "sep=")
	if !ok {
		return 0, false
	}
	delim, size := utf8.DecodeRuneInString(rest)
	if delim == utf8.RuneError || size != len(rest) {
		return 0, false
	}
	return delim, true
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
