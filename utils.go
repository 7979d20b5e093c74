package websocket

import (
	"crypto/sha1"
	"encoding/base64"
	"hash"
	"io"
	"sync"
)

var uidKey = []byte("258EAFA5-E914-47DA-95CA-C5AB0DC85B11")

var shaPool = sync.Pool{
	New: func() interface{} {
		return sha1.New()
	},
}

// ComputeAcceptKey derives the Sec-WebSocket-Accept value for a
// Sec-WebSocket-Key: base64(SHA-1(key + GUID)).
//
//	ComputeAcceptKey("dGhlIHNhbXBsZSBub25jZQ==") // "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
func ComputeAcceptKey(key string) string {
	return string(computeAcceptKey([]byte(key)))
}

func computeAcceptKey(challengeKeys []byte) []byte {
	h := shaPool.Get().(hash.Hash)
	defer shaPool.Put(h)

	h.Reset()
	h.Write(challengeKeys)
	h.Write(uidKey)
	return []byte(base64.StdEncoding.EncodeToString(h.Sum(nil)))
}

// NewKey reads 16 bytes from r and returns them base64 encoded, ready to be
// sent as Sec-WebSocket-Key.
func NewKey(r io.Reader) (string, error) {
	b := make([]byte, challengeKeySize)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func isValidChallengeKeys(s []byte) bool {

	if len(s) == 0 {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(string(s))

	return err == nil && len(decoded) == challengeKeySize
}

func newMaskKey(r io.Reader) ([]byte, error) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
