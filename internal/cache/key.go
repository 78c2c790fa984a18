package cache

import (
	"crypto/md5" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// hexDigestLen is the length of the hex-encoded digest in a cache key.
const hexDigestLen = 2 * md5.Size

// DeriveKey maps a text and voice label to a unique, filesystem-safe
// cache key. The key is the voice label followed by the 32-character
// lowercase hex MD5 digest of the text's UTF-8 bytes, e.g.
// "Robert_00a2653ac5f77063bc4ea2fee87318d3". The full digest is always
// encoded, so leading zero bytes never shorten the key.
//
// The voice label is a human-readable namespace prefix: the same text
// under two labels yields two distinct keys, since two voices speaking
// the same words are different artifacts.
func DeriveKey(text, voice string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}
	if !utf8.ValidString(text) {
		return "", ErrInvalidText
	}
	if !validVoiceLabel(voice) {
		return "", ErrInvalidVoice
	}

	sum := md5.Sum([]byte(text)) //nolint:gosec
	return voice + "_" + hex.EncodeToString(sum[:]), nil
}

// validVoiceLabel reports whether a label can be embedded in a filename.
func validVoiceLabel(voice string) bool {
	if voice == "" {
		return false
	}
	if strings.ContainsAny(voice, "/\\\x00") {
		return false
	}
	return voice != "." && voice != ".."
}
