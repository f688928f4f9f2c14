// Package encoding decodes uploaded bank statements to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotText is returned for uploads that are not a delimited text export,
// such as a spreadsheet or a PDF statement.
var ErrNotText = errors.New("statement is not a text export")

// Charset names the encoding a statement was read as.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO8859_9   Charset = "ISO-8859-9"
)

const peekSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	magicZip = []byte("PK\x03\x04")
	magicPDF = []byte("%PDF-")
)

// Decode returns a reader yielding the statement as UTF-8 and the charset it
// was read as.
//
// US bank exports are UTF-8, sometimes with a BOM, or Windows-1252. CGD
// exports are Windows-1252. Other 8-bit input is read as Windows-1252, a
// superset of Latin-1 for printable text.
func Decode(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, peekSize)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("peek statement: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, UTF8, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), UTF16LE, nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), UTF16BE, nil
	}

	if bytes.HasPrefix(buf, magicZip) || bytes.HasPrefix(buf, magicPDF) || bytes.IndexByte(buf, 0) >= 0 {
		return nil, "", ErrNotText
	}

	if utf8.Valid(trimPartialRune(buf, err == nil)) {
		return br, UTF8, nil
	}

	// Short Portuguese exports are often guessed as Latin-5, which agrees with
	// Windows-1252 on every accented letter the language uses.
	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil && Charset(res.Charset) == ISO8859_9 {
		return transform.NewReader(br, charmap.ISO8859_9.NewDecoder()), ISO8859_9, nil
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}

// trimPartialRune drops a multi-byte sequence cut off at the end of a full
// peek window, so a long UTF-8 statement is not misread as 8-bit.
func trimPartialRune(buf []byte, truncated bool) []byte {
	if !truncated {
		return buf
	}

	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		b := buf[len(buf)-i]
		if b < utf8.RuneSelf {
			return buf
		}

		if utf8.RuneStart(b) {
			if !utf8.FullRune(buf[len(buf)-i:]) {
				return buf[:len(buf)-i]
			}

			return buf
		}
	}

	return buf
}
