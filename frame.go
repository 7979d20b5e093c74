package websocket

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

const (
	finBit = byte(1 << 7)
	rsv1   = byte(1 << 6)
	rsv2   = byte(1 << 5)
	rsv3   = byte(1 << 4)
	mask   = byte(1 << 7)
)

const (
	maxControlPayloadSize = 125
	maxFramePayloadSize   = 32 << 20
)

type Frame struct {
	isFin       bool
	rsv1        bool
	rsv2        bool
	rsv3        bool
	mask        bool
	frameType   frameTypeCode
	payloadSize int64
	maskKey     []byte
	payload     []byte
}

var framePool = sync.Pool{
	New: func() interface{} {
		return newFrame()
	},
}

func newFrame() *Frame {
	return &Frame{
		frameType: codeUnknown,
		maskKey:   make([]byte, 4),
	}
}

func AcquireFrame() *Frame {
	return framePool.Get().(*Frame)
}

func ReleaseFrame(f *Frame) {
	f.Reset()
	framePool.Put(f)
}

// Reset clears the frame. The payload is dropped, not zeroed, since it may
// belong to the caller.
func (f *Frame) Reset() {
	f.isFin = false
	f.rsv1 = false
	f.rsv2 = false
	f.rsv3 = false
	f.mask = false
	f.frameType = codeUnknown
	f.payloadSize = 0
	for i := range f.maskKey {
		f.maskKey[i] = 0
	}
	f.payload = nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("isFin: %v, rsv1: %v, rsv2: %v, rsv3: %v, mask: %v, frameType: %v, payloadSize: %v", f.isFin, f.rsv1, f.rsv2, f.rsv3, f.mask, f.frameType.String(), f.payloadSize)
}

func (f *Frame) IsFin() bool {
	return f.isFin
}

func (f *Frame) IsMasked() bool {
	return f.mask
}

func (f *Frame) HasReservedBits() bool {
	return f.rsv1 || f.rsv2 || f.rsv3
}

func (f *Frame) GetFrameType() frameTypeCode {
	return f.frameType
}

func (f *Frame) GetPayload() []byte {
	return f.payload
}

func (f *Frame) IsPing() bool {
	return f.frameType == codePing
}

func (f *Frame) IsPong() bool {
	return f.frameType == codePong
}

func (f *Frame) IsClose() bool {
	return f.frameType == codeClose
}

func (f *Frame) IsContinuation() bool {
	return f.frameType == codeContinuation
}

func (f *Frame) IsData() bool {
	return f.frameType == codeText || f.frameType == codeBinary
}

func (f *Frame) IsControl() bool {
	return f.IsPing() || f.IsPong() || f.IsClose()
}

func (f *Frame) SetFrameType(frameType frameTypeCode) {
	f.frameType = frameType
}

func (f *Frame) SetPayload(payload []byte) {
	f.payload = payload
}

func (f *Frame) SetPayloadSize(payloadSize int64) {
	f.payloadSize = payloadSize
}

func (f *Frame) SetFin() {
	f.isFin = true
}

// SetMask marks the frame as masked with the given 4 byte key.
func (f *Frame) SetMask(key []byte) {
	f.mask = true
	copy(f.maskKey, key)
}

func (f *Frame) SetStatus(status StatusCode) {
	f.payload = make([]byte, 2)
	binary.BigEndian.PutUint16(f.payload, uint16(status))
	f.payloadSize = 2
}

// Status returns the close code carried by a close frame.
func (f *Frame) Status() StatusCode {
	if len(f.payload) < 2 {
		return StatusNoStatusReceived
	}
	return StatusCode(binary.BigEndian.Uint16(f.payload))
}

func (f *Frame) WriteTo(wr io.Writer) (int64, error) {

	var n int64

	header := make([]byte, 2, 14)

	if f.isFin {
		header[0] |= finBit
	}

	if f.rsv1 {
		header[0] |= rsv1
	}

	if f.rsv2 {
		header[0] |= rsv2
	}

	if f.rsv3 {
		header[0] |= rsv3
	}

	header[0] |= byte(f.frameType)

	if f.mask {
		header[1] |= mask
	}

	switch {
	case f.payloadSize > 65535:
		header[1] |= 127
		header = binary.BigEndian.AppendUint64(header, uint64(f.payloadSize))
	case f.payloadSize > 125:
		header[1] |= 126
		header = binary.BigEndian.AppendUint16(header, uint16(f.payloadSize))
	default:
		header[1] |= byte(f.payloadSize)
	}

	if f.mask {
		header = append(header, f.maskKey...)
	}

	ni, err := wr.Write(header)
	n += int64(ni)

	if err != nil {
		return n, err
	}

	if len(f.payload) > 0 {
		payload := f.payload

		// the caller's buffer is left untouched
		if f.mask {
			payload = make([]byte, len(f.payload))
			copy(payload, f.payload)
			maskBytes(f.maskKey, payload)
		}

		ni, err = wr.Write(payload)
		n += int64(ni)

		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func (f *Frame) UnMask() {
	maskBytes(f.maskKey, f.payload)
}

func maskBytes(key, b []byte) {
	for i := range b {
		b[i] ^= key[i&3]
	}
}

func (f *Frame) ReadFrom(r io.Reader) (int64, error) {
	var n int64

	header := make([]byte, 2)

	ni, err := io.ReadFull(r, header)
	n += int64(ni)

	if err != nil {
		return n, err
	}

	f.isFin = header[0]&finBit == finBit
	f.rsv1 = header[0]&rsv1 == rsv1
	f.rsv2 = header[0]&rsv2 == rsv2
	f.rsv3 = header[0]&rsv3 == rsv3
	f.frameType = frameTypeCode(header[0] & 0x0F)
	f.mask = header[1]&mask == mask
	f.payloadSize = int64(header[1] & 127)

	switch f.payloadSize {
	case 126:
		payloadSizeBytes := make([]byte, 2)
		ni, err = io.ReadFull(r, payloadSizeBytes)
		n += int64(ni)

		if err != nil {
			return n, err
		}

		f.payloadSize = int64(binary.BigEndian.Uint16(payloadSizeBytes))

	case 127:
		payloadSizeBytes := make([]byte, 8)
		ni, err = io.ReadFull(r, payloadSizeBytes)
		n += int64(ni)

		if err != nil {
			return n, err
		}

		f.payloadSize = int64(binary.BigEndian.Uint64(payloadSizeBytes))
	}

	if f.payloadSize < 0 || f.payloadSize > maxFramePayloadSize {
		return n, ErrFrameTooLarge
	}

	if f.mask {
		ni, err = io.ReadFull(r, f.maskKey)
		n += int64(ni)

		if err != nil {
			return n, err
		}
	}

	f.payload = make([]byte, f.payloadSize)

	ni, err = io.ReadFull(r, f.payload)
	n += int64(ni)

	if err != nil {
		return n, err
	}

	if f.mask {
		f.UnMask()
	}

	return n, nil
}
