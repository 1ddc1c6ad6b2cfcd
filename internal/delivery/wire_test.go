package delivery

import (
	"testing"

	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEventHeader(t *testing.T) {
	ev := &event.Event{
		RequestID: 7,
		TID:       42,
		Kind:      event.Exec,
		HookID:    3,
		Flags:     event.FlagAudit | event.FlagStall,
		Payload:   &event.ExecPayload{Path: []byte("/bin/sh")},
	}

	buf, err := EncodeEvent(ev)
	require.NoError(t, err)

	hdr, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(7), hdr.RequestID)
	require.Equal(t, uint32(42), hdr.TID)
	require.Equal(t, event.Exec, hdr.Kind)
	require.Equal(t, uint16(3), hdr.HookID)
	require.Equal(t, event.FlagAudit|event.FlagStall, hdr.ReportFlags)
	require.Equal(t, len(buf)-HeaderLen, int(hdr.PayloadLen))
}

func TestEncodeEventPayloadsForEveryKind(t *testing.T) {
	cases := []struct {
		kind    event.Kind
		payload event.Payload
	}{
		{event.Exec, &event.ExecPayload{Path: []byte("/bin/sh")}},
		{event.Unlink, &event.UnlinkPayload{Path: []byte("/tmp/a"), IsDir: false}},
		{event.Rename, &event.RenamePayload{OldPath: []byte("/a"), NewPath: []byte("/b")}},
		{event.Setattr, &event.SetattrPayload{Path: []byte("/a"), Mask: event.AttrMode, Mode: 0644}},
		{event.Mkdir, &event.MkdirPayload{Path: []byte("/d"), Mode: 0755}},
		{event.Create, &event.CreatePayload{Path: []byte("/f"), Mode: 0644}},
		{event.Link, &event.LinkPayload{OldPath: []byte("/a"), NewPath: []byte("/b")}},
		{event.Symlink, &event.SymlinkPayload{Target: []byte("/a"), LinkPath: []byte("/b")}},
		{event.Open, &event.OpenClosePayload{Path: []byte("/a"), IsRegular: true}},
		{event.Mmap, &event.MmapPayload{Path: []byte("/lib.so"), Prot: event.ProtExec}},
		{event.Ptrace, &event.PtracePayload{Mode: event.PtraceAttach, ChildTID: 9}},
		{event.Signal, &event.SignalPayload{Signo: 9, TargetTID: 9}},
		{event.Clone, &event.CloneExitPayload{ParentPID: 1, ChildPID: 2}},
		{event.TaskFree, &event.TaskFreePayload{PID: 5}},
	}

	for _, tc := range cases {
		ev := &event.Event{Kind: tc.kind, Payload: tc.payload}
		buf, err := EncodeEvent(ev)
		require.NoError(t, err, tc.kind.String())
		require.Greater(t, len(buf), HeaderLen, tc.kind.String())
	}
}

func TestEncodeResponseRoundTrip(t *testing.T) {
	r := WireResponse{RequestID: 99, Response: WireContinue, ContinueMS: 1500}
	buf := EncodeResponse(r)
	decoded, err := DecodeResponse(buf)
	require.NoError(t, err)
	require.Equal(t, r, decoded)
}

func TestDecodeResponseShortBuffer(t *testing.T) {
	_, err := DecodeResponse([]byte{1, 2, 3})
	require.Error(t, err)
}
