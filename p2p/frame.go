// Package p2p implements the wire protocol and peer transport layer
// described in spec.md §4.7: length-prefixed framing, a priority-ordered
// message taxonomy, connection lifecycle management and block sync
// sessions, carried over a go-libp2p host.
package p2p

// frame.go – length-prefixed message framing (§4.7/§6). Every message on
// the wire is a big-endian uint32 length prefix followed by that many bytes
// of payload, capped at max_frame_bytes (default 4 MiB) so a malicious peer
// cannot force unbounded buffering.

import (
	"encoding/binary"
	"io"

	"archivechain/core"
)

const frameHeaderLen = 4

// DefaultMaxFrameBytes mirrors core.Config's default (§6).
const DefaultMaxFrameBytes = 4 << 20

// WriteFrame writes a length-prefixed payload to w. It fails if payload
// exceeds maxFrameBytes.
func WriteFrame(w io.Writer, payload []byte, maxFrameBytes uint32) error {
	if uint32(len(payload)) > maxFrameBytes {
		return core.ErrValidation("WriteFrame", "payload exceeds max_frame_bytes")
	}
	var hdr [frameHeaderLen]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return core.ErrProtocolf("WriteFrame", "write frame header: "+err.Error())
	}
	if _, err := w.Write(payload); err != nil {
		return core.ErrProtocolf("WriteFrame", "write frame body: "+err.Error())
	}
	return nil
}

// ReadFrame reads one length-prefixed payload from r, rejecting any frame
// whose declared length exceeds maxFrameBytes before allocating a buffer
// for it.
func ReadFrame(r io.Reader, maxFrameBytes uint32) ([]byte, error) {
	var hdr [frameHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, core.ErrProtocolf("ReadFrame", "read frame header: "+err.Error())
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > maxFrameBytes {
		return nil, core.ErrProtocolf("ReadFrame", "frame exceeds max_frame_bytes")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, core.ErrProtocolf("ReadFrame", "read frame body: "+err.Error())
	}
	return buf, nil
}
