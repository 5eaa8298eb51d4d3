package sniff

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utf16leBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, 2+len(units)*2)
	out = append(out, 0xFF, 0xFE)
	for _, u := range units {
		out = binary.LittleEndian.AppendUint16(out, u)
	}
	return out
}

func utf16beBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, 2+len(units)*2)
	out = append(out, 0xFE, 0xFF)
	for _, u := range units {
		out = binary.BigEndian.AppendUint16(out, u)
	}
	return out
}

func TestDetect_UTF8(t *testing.T) {
	src, err := Detect([]byte("Date;Amount\n05.01.2024;-12,34\n"))
	require.NoError(t, err)

	assert.Equal(t, EncodingUTF8, src.Encoding)
	assert.Equal(t, ';', src.Delimiter)
	assert.False(t, src.SkipFirstLine)
	assert.Equal(t, "Date;Amount\n05.01.2024;-12,34\n", src.Text)
}

func TestDetect_UTF8BOMStripped(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date;Amount\n")...)

	src, err := Detect(data)
	require.NoError(t, err)

	assert.Equal(t, EncodingUTF8, src.Encoding)
	assert.Equal(t, "Date;Amount\n", src.Text)
}

func TestDetect_UTF16LE(t *testing.T) {
	src, err := Detect(utf16leBytes("Date;Note\n05.01.2024;Bäckerei\n"))
	require.NoError(t, err)

	assert.Equal(t, EncodingUTF16LE, src.Encoding)
	assert.Equal(t, "Date;Note\n05.01.2024;Bäckerei\n", src.Text)
}

func TestDetect_UTF16BE(t *testing.T) {
	src, err := Detect(utf16beBytes("Date;Note\n05.01.2024;Rücklage\n"))
	require.NoError(t, err)

	assert.Equal(t, EncodingUTF16BE, src.Encoding)
	assert.Equal(t, "Date;Note\n05.01.2024;Rücklage\n", src.Text)
}

func TestDetect_Windows1252Fallback(t *testing.T) {
	// "für" in cp1252: the 0xFC byte is not valid UTF-8.
	data := []byte{'f', 0xFC, 'r', ';', '1'}

	src, err := Detect(data)
	require.NoError(t, err)

	assert.Equal(t, EncodingWindows1252, src.Encoding)
	assert.Equal(t, "für;1", src.Text)
}

func TestDetect_SepDirective(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		delim     rune
		skipFirst bool
	}{
		{"comma", "sep=,\nDate,Amount\n", ',', true},
		{"tab", "sep=\t\nDate\tAmount\n", '\t', true},
		{"pipe", "sep=|\nDate|Amount\n", '|', true},
		{"uppercase", "SEP=,\nDate,Amount\n", ',', true},
		{"crlf", "sep=,\r\nDate,Amount\r\n", ',', true},
		{"absent", "Date;Amount\n", ';', false},
		{"in data not directive", "separator;Amount\n", ';', false},
		{"too long", "sep=,,\nDate;Amount\n", ';', false},
		{"empty", "sep=\nDate;Amount\n", ';', false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Detect([]byte(tt.text))
			require.NoError(t, err)

			assert.Equal(t, tt.delim, src.Delimiter)
			assert.Equal(t, tt.skipFirst, src.SkipFirstLine)
		})
	}
}

func TestDetect_SepDirectiveAfterBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("sep=,\nDate,Amount\n")...)

	src, err := Detect(data)
	require.NoError(t, err)

	assert.Equal(t, ',', src.Delimiter)
	assert.True(t, src.SkipFirstLine)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, utf16leBytes("sep=,\nDate,Amount\n"), 0o644))

	src, err := File(path)
	require.NoError(t, err)

	assert.Equal(t, EncodingUTF16LE, src.Encoding)
	assert.Equal(t, ',', src.Delimiter)
	assert.True(t, src.SkipFirstLine)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading source file")
}
