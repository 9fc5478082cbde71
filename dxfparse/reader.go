// Package dxfparse is a minimal ASCII DXF text-to-AST parser. It plays the
// role the import core treats as an external upstream collaborator: it
// knows nothing about units, styles, or block inheritance, and only
// produces the [dxfcore.DxfData] shape the core consumes.
package dxfparse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Pair is one (group-code, value) record from a DXF text stream.
type Pair struct {
	Code  int
	Value string
}

// Reader scans an ASCII DXF stream into group-code/value pairs, applying
// legacy $DWGCODEPAGE-driven text decoding the same way a Shift-JIS JWW
// stream is decoded to UTF-8: best-effort, falling back to the raw bytes
// on failure.
type Reader struct {
	sc       *bufio.Scanner
	decoder  *encoding.Decoder
	exhausted bool
}

// NewReader wraps r. codepage is the DXF $DWGCODEPAGE header value (e.g.
// "ANSI_932" for Shift-JIS, "ANSI_1252" for Latin-1); an empty string
// disables legacy re-decoding and treats the stream as already UTF-8/ASCII.
func NewReader(r io.Reader, codepage string) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	return &Reader{sc: sc, decoder: decoderForCodepage(codepage)}
}

// decoderForCodepage maps a handful of common DXF $DWGCODEPAGE values to
// x/text decoders. Unrecognized codepages fall back to nil (no re-decode).
func decoderForCodepage(codepage string) *encoding.Decoder {
	switch strings.ToUpper(codepage) {
	case "":
		return nil
	case "ANSI_932":
		return japanese.ShiftJIS.NewDecoder()
	case "ANSI_1252":
		return charmap.Windows1252.NewDecoder()
	case "ANSI_1251":
		return charmap.Windows1251.NewDecoder()
	default:
		if enc, err := ianaindex.IANA.Encoding(codepage); err == nil && enc != nil {
			return enc.NewDecoder()
		}
		return nil
	}
}

// Next reads the next (code, value) pair. It returns io.EOF once the
// stream is exhausted.
func (r *Reader) Next() (Pair, error) {
	if r.exhausted {
		return Pair{}, io.EOF
	}
	if !r.sc.Scan() {
		r.exhausted = true
		return Pair{}, io.EOF
	}
	codeLine := strings.TrimSpace(r.sc.Text())
	if !r.sc.Scan() {
		r.exhausted = true
		return Pair{}, io.EOF
	}
	value := strings.TrimRight(r.sc.Text(), "\r")

	code, err := strconv.Atoi(codeLine)
	if err != nil {
		return Pair{}, fmt.Errorf("dxfparse: malformed group code %q: %w", codeLine, err)
	}

	if r.decoder != nil && code >= 1 && code <= 9 {
		value = r.decodeLegacy(value)
	}

	return Pair{Code: code, Value: value}, nil
}

func (r *Reader) decodeLegacy(s string) string {
	out, _, err := transform.String(r.decoder, s)
	if err != nil {
		return s
	}
	return out
}
