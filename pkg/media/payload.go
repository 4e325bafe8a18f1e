// Package media turns provider payloads (hex text, base64 text or URLs)
// into files on disk.
//
// Files are named <prefix>_<YYYYMMDD-HHMMSS>.<ext>, where the extension is
// sniffed from the leading bytes unless the caller forces one, and are
// written atomically: a crash or a failed download never leaves a partial
// file at the final path.
package media

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
)

// Encoding is how a payload carries its bytes.
type Encoding string

const (
	EncodingHex    Encoding = "hex"
	EncodingBase64 Encoding = "base64"
	EncodingURL    Encoding = "url"
)

// Payload is raw media as returned by the provider.
type Payload struct {
	Encoding Encoding
	Data     string
}

// Hex wraps hex text.
func Hex(s string) Payload { return Payload{Encoding: EncodingHex, Data: s} }

// Base64 wraps base64 text, optionally with a data URI prefix.
func Base64(s string) Payload { return Payload{Encoding: EncodingBase64, Data: s} }

// URL wraps a download link.
func URL(s string) Payload { return Payload{Encoding: EncodingURL, Data: s} }

// ForOutputFormat wraps an audio field returned for the given output_format:
// a URL for "url", hex text otherwise.
func ForOutputFormat(format minimax.OutputFormat, data string) Payload {
	if format == minimax.OutputFormatURL {
		return URL(data)
	}
	return Hex(data)
}

// Detect classifies free-form payload text: http(s) links are URLs, text
// made only of an even number of hex digits is hex, and anything else is
// base64.
func Detect(s string) Payload {
	t := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://"):
		return URL(t)
	case isHex(t):
		return Hex(t)
	default:
		return Base64(t)
	}
}

func isHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

var errEmpty = errors.New("empty payload")

// Decode returns the bytes of a hex or base64 payload. Whitespace is
// ignored. URL payloads cannot be decoded locally; use a Materializer.
func (p Payload) Decode() ([]byte, error) {
	data := stripSpace(p.Data)
	switch p.Encoding {
	case EncodingHex:
		if data == "" {
			return nil, &minimax.DecodeError{Encoding: "hex", Err: errEmpty}
		}
		b, err := hex.DecodeString(data)
		if err != nil {
			return nil, &minimax.DecodeError{Encoding: "hex", Err: err}
		}
		return b, nil
	case EncodingBase64:
		if i := strings.Index(data, ";base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
			data = data[i+len(";base64,"):]
		}
		if data == "" {
			return nil, &minimax.DecodeError{Encoding: "base64", Err: errEmpty}
		}
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			var rawErr error
			if b, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "=")); rawErr != nil {
				return nil, &minimax.DecodeError{Encoding: "base64", Err: err}
			}
		}
		return b, nil
	case EncodingURL:
		return nil, &minimax.DecodeError{Encoding: "url", Err: errors.New("url payloads must be fetched")}
	default:
		return nil, &minimax.DecodeError{Encoding: string(p.Encoding), Err: errors.New("unknown encoding")}
	}
}

func stripSpace(s string) string {
	if !strings.ContainsAny(s, " \t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
