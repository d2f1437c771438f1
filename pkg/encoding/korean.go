// Package encoding decodes the legacy Korean file names that palettes and
// sprites keep when copied straight out of game archives.
package encoding

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EUCKRToUTF8 converts EUC-KR encoded bytes to a UTF-8 string.
// Returns the input unchanged if it does not decode.
func EUCKRToUTF8(data []byte) string {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToEUCKR converts a UTF-8 string to EUC-KR bytes.
// Returns the input unchanged if it cannot be encoded.
func UTF8ToEUCKR(s string) []byte {
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// DisplayName returns s as readable UTF-8. Valid UTF-8 is returned as is;
// anything else is taken to be EUC-KR.
func DisplayName(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return EUCKRToUTF8([]byte(s))
}

// BaseName returns the file name of path without its extension, decoded
// for display.
func BaseName(path string) string {
	base := filepath.Base(path)
	return DisplayName(strings.TrimSuffix(base, filepath.Ext(base)))
}
