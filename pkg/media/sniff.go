package media

import "bytes"

// SniffLen is the number of leading bytes DetectFormat needs.
const SniffLen = 12

// DetectFormat returns the file extension (without dot) implied by the
// magic bytes of b, or "bin" when nothing matches. Inputs shorter than
// SniffLen always give "bin".
func DetectFormat(b []byte) string {
	if len(b) < SniffLen {
		return "bin"
	}
	switch {
	case bytes.HasPrefix(b, []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")):
		return "wav"
	case bytes.HasPrefix(b, []byte("ID3")):
		return "mp3"
	case bytes.HasPrefix(b, []byte("fLaC")):
		return "flac"
	case bytes.HasPrefix(b, []byte("OggS")):
		return "ogg"
	case bytes.Equal(b[4:8], []byte("ftyp")):
		return "m4a"
	case b[0] == 0xFF && b[1]&0xF6 == 0xF0:
		// ADTS: sync word plus layer bits 00.
		return "aac"
	case b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		// MPEG audio frame sync.
		return "mp3"
	default:
		return "bin"
	}
}
