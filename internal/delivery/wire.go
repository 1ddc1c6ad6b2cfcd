// Package delivery implements the Delivery Surface: the blocking batch
// read of audit/stall events and the non-blocking write of verdicts
// back into the Stall Table, plus the wire codec and io_uring
// transport for the external character-device collaborator.
package delivery

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ehrlich-b/sentryd/internal/event"
)

// headerLen is the fixed event header size: request_id(8)
// + tid(4) + event_type(2) + hook_id(2) + report_flags(2) +
// payload_len(2).
const headerLen = 8 + 4 + 2 + 2 + 2 + 2

// HeaderLen exposes the fixed header size so a caller walking a batch
// of concatenated wire events (e.g. a test harness) can advance past
// each event without re-deriving the layout.
const HeaderLen = headerLen

// EncodeEvent serializes ev as a header followed by its kind-specific
// payload and inline NUL-terminated path bytes, all host-endian
// integers, using a hand-written layout (binary.NativeEndian.PutUint*
// into a byte slice) rather than a generated codec.
func EncodeEvent(ev *event.Event) ([]byte, error) {
	body, err := encodePayload(ev.Kind, ev.Payload)
	if err != nil {
		return nil, err
	}
	if len(body) > 0xFFFF {
		return nil, fmt.Errorf("delivery: payload too large: %d bytes", len(body))
	}

	buf := make([]byte, headerLen+len(body))
	binary.NativeEndian.PutUint64(buf[0:8], ev.RequestID)
	binary.NativeEndian.PutUint32(buf[8:12], ev.TID)
	binary.NativeEndian.PutUint16(buf[12:14], uint16(ev.Kind))
	binary.NativeEndian.PutUint16(buf[14:16], ev.HookID)
	binary.NativeEndian.PutUint16(buf[16:18], uint16(ev.Flags))
	binary.NativeEndian.PutUint16(buf[18:20], uint16(len(body)))
	copy(buf[headerLen:], body)
	return buf, nil
}

// DecodedHeader is the fixed portion of a parsed wire event.
type DecodedHeader struct {
	RequestID   uint64
	TID         uint32
	Kind        event.Kind
	HookID      uint16
	ReportFlags event.ReportFlag
	PayloadLen  uint16
}

// DecodeHeader parses the fixed header at the start of buf. Splitting
// this from full payload decode lets a router inspect request_id/Kind
// without materializing a typed payload it may not need.
func DecodeHeader(buf []byte) (DecodedHeader, error) {
	if len(buf) < headerLen {
		return DecodedHeader{}, fmt.Errorf("delivery: short header: %d bytes", len(buf))
	}
	return DecodedHeader{
		RequestID:   binary.NativeEndian.Uint64(buf[0:8]),
		TID:         binary.NativeEndian.Uint32(buf[8:12]),
		Kind:        event.Kind(binary.NativeEndian.Uint16(buf[12:14])),
		HookID:      binary.NativeEndian.Uint16(buf[14:16]),
		ReportFlags: event.ReportFlag(binary.NativeEndian.Uint16(buf[16:18])),
		PayloadLen:  binary.NativeEndian.Uint16(buf[18:20]),
	}, nil
}

func encodePayload(kind event.Kind, p event.Payload) ([]byte, error) {
	var buf bytes.Buffer
	switch v := p.(type) {
	case *event.ExecPayload:
		appendCString(&buf, v.Path)
	case *event.UnlinkPayload:
		appendBool(&buf, v.IsDir)
		appendCString(&buf, v.Path)
	case *event.RenamePayload:
		appendCString(&buf, v.OldPath)
		appendCString(&buf, v.NewPath)
	case *event.SetattrPayload:
		appendUint32(&buf, uint32(v.Mask))
		appendUint32(&buf, v.Mode)
		appendUint32(&buf, v.UID)
		appendUint32(&buf, v.GID)
		appendUint64(&buf, v.Size)
		appendCString(&buf, v.Path)
	case *event.MkdirPayload:
		appendUint32(&buf, v.Mode)
		appendCString(&buf, v.Path)
	case *event.CreatePayload:
		appendUint32(&buf, v.Mode)
		appendCString(&buf, v.Path)
	case *event.LinkPayload:
		appendCString(&buf, v.OldPath)
		appendCString(&buf, v.NewPath)
	case *event.SymlinkPayload:
		appendCString(&buf, v.Target)
		appendCString(&buf, v.LinkPath)
	case *event.OpenClosePayload:
		appendUint32(&buf, v.Flags)
		appendBool(&buf, v.Writable)
		appendBool(&buf, v.NoNotify)
		appendBool(&buf, v.IsRegular)
		appendCString(&buf, v.Path)
	case *event.MmapPayload:
		appendUint32(&buf, v.Prot)
		appendUint32(&buf, v.Flags)
		appendBool(&buf, v.IsLdso)
		appendBool(&buf, v.IsSelfExec)
		appendCString(&buf, v.Path)
	case *event.PtracePayload:
		appendUint8(&buf, uint8(v.Mode))
		appendUint32(&buf, v.ChildTID)
		appendBool(&buf, v.ChildIsAgent)
	case *event.SignalPayload:
		appendUint32(&buf, uint32(v.Signo))
		appendUint32(&buf, v.TargetTID)
	case *event.CloneExitPayload:
		appendUint32(&buf, v.ParentPID)
		appendUint32(&buf, v.ChildPID)
		appendUint32(&buf, v.ThreadGroupID)
		appendBool(&buf, v.IsThread)
		appendBool(&buf, v.FromKprobe)
	case *event.TaskFreePayload:
		appendUint32(&buf, v.PID)
	default:
		return nil, fmt.Errorf("delivery: unknown payload type for kind %s", kind)
	}
	return buf.Bytes(), nil
}

func appendCString(buf *bytes.Buffer, s []byte) {
	buf.Write(s)
	buf.WriteByte(0)
}

func appendUint8(buf *bytes.Buffer, v uint8) { buf.WriteByte(v) }

func appendBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func appendUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.NativeEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func appendUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.NativeEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

// responseLen is the fixed Response wire size:
// request_id(8) + response(4) + continuation_timeout_ms(4).
const responseLen = 8 + 4 + 4

// Wire response codes.
const (
	WireAllow    uint32 = 0
	WireDeny     uint32 = 1
	WireContinue uint32 = 2
)

// WireResponse is the decoded form of a Response wire message.
type WireResponse struct {
	RequestID  uint64
	Response   uint32
	ContinueMS uint32
}

// EncodeResponse serializes r as a fixed-size Response wire message.
func EncodeResponse(r WireResponse) []byte {
	buf := make([]byte, responseLen)
	binary.NativeEndian.PutUint64(buf[0:8], r.RequestID)
	binary.NativeEndian.PutUint32(buf[8:12], r.Response)
	binary.NativeEndian.PutUint32(buf[12:16], r.ContinueMS)
	return buf
}

// DecodeResponse parses a single Response wire message from buf.
func DecodeResponse(buf []byte) (WireResponse, error) {
	if len(buf) < responseLen {
		return WireResponse{}, fmt.Errorf("delivery: short response: %d bytes", len(buf))
	}
	return WireResponse{
		RequestID:  binary.NativeEndian.Uint64(buf[0:8]),
		Response:   binary.NativeEndian.Uint32(buf[8:12]),
		ContinueMS: binary.NativeEndian.Uint32(buf[12:16]),
	}, nil
}
