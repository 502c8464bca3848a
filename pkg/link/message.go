package link

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Delimiter separates message text from its checksum.
const Delimiter = '|'

// Checksum calculates the checksum of message text.
func Checksum(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// EncodeMessage appends the checksum to text.
func EncodeMessage(text string) string {
	return text + string(Delimiter) + Checksum(text)
}

// DecodeMessage splits a payload into text and checksum at the last delimiter.
func DecodeMessage(payload string) (text, checksum string, err error) {
	pos := strings.LastIndexByte(payload, Delimiter)
	if pos < 0 {
		return payload, "", ErrNoChecksum
	}
	return payload[:pos], payload[pos+1:], nil
}

// VerifyMessage checks text against the checksum.
func VerifyMessage(text, checksum string) bool {
	return Checksum(text) == checksum
}

// ValidateText checks text can be carried in a message.
func ValidateText(text string) error {
	if strings.ContainsAny(text, "\n\x00") || strings.HasPrefix(text, SignalNACK) {
		return ErrInvalidText
	}
	return nil
}
