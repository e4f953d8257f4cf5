// Package encoding converts model text written in legacy encodings to UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoding errors.
var (
	ErrUnknownEncoding = errors.New("unknown text encoding")
	ErrInvalidUTF8     = errors.New("invalid UTF-8 text")
)

// Names of the supported encodings. Empty is treated as UTF-8.
const (
	UTF8        = "utf-8"
	EUCKR       = "euc-kr"
	ShiftJIS    = "shift_jis"
	Windows1252 = "windows-1252"
	ISO88591    = "iso-8859-1"
)

// Supported returns the names accepted by Decode.
func Supported() []string {
	return []string{UTF8, EUCKR, ShiftJIS, Windows1252, ISO88591}
}

// Lookup returns the x/text encoding for name.
// UTF-8 lookups strip a leading byte order mark.
func Lookup(name string) (encoding.Encoding, error) {
	switch normalizeName(name) {
	case "", UTF8, "utf8":
		return unicode.UTF8BOM, nil
	case EUCKR, "euckr", "cp949":
		return korean.EUCKR, nil
	case ShiftJIS, "sjis", "shift-jis":
		return japanese.ShiftJIS, nil
	case Windows1252, "cp1252":
		return charmap.Windows1252, nil
	case ISO88591, "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// Decode converts data in the named encoding to a UTF-8 string.
func Decode(data []byte, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}

	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding %s text: %w", name, err)
	}

	// The UTF-8 decoder replaces bad sequences instead of failing.
	if enc == unicode.UTF8BOM && !utf8.Valid(data[bomLen(data):]) {
		return "", ErrInvalidUTF8
	}

	return string(result), nil
}

func bomLen(data []byte) int {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return 3
	}
	return 0
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
