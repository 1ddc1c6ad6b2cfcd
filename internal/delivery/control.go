package delivery

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ehrlich-b/sentryd/internal/config"
)

// Control request flag bits: which sub-settings a
// configure() call carries.
const (
	CtrlStallModeSet    uint32 = 1 << 0
	CtrlDefaultTimeout  uint32 = 1 << 1
	CtrlContinueTimeout uint32 = 1 << 2
	CtrlDefaultDeny     uint32 = 1 << 3
)

// controlRequestLen is the fixed wire size of a ControlRequest:
// flags(4) + stall_mode(1) + stall_timeout_ms(4) + continue_timeout_ms(4)
// + default_deny(1).
const controlRequestLen = 4 + 1 + 4 + 4 + 1

// ControlRequest is the decoded form of a configure() control request
//. Only fields selected by a bit in Flags are applied;
// the rest are ignored. Authorization ("only privileged callers may
// mutate config") is enforced by the caller before reaching here — the
// core has no notion of caller identity.
type ControlRequest struct {
	Flags             uint32
	StallMode         bool
	StallTimeoutMS    uint32
	ContinueTimeoutMS uint32
	DefaultDeny       bool
}

// EncodeControlRequest serializes req.
func EncodeControlRequest(req ControlRequest) []byte {
	buf := make([]byte, controlRequestLen)
	binary.NativeEndian.PutUint32(buf[0:4], req.Flags)
	buf[4] = boolByte(req.StallMode)
	binary.NativeEndian.PutUint32(buf[5:9], req.StallTimeoutMS)
	binary.NativeEndian.PutUint32(buf[9:13], req.ContinueTimeoutMS)
	buf[13] = boolByte(req.DefaultDeny)
	return buf
}

// DecodeControlRequest parses a ControlRequest from buf.
func DecodeControlRequest(buf []byte) (ControlRequest, error) {
	if len(buf) < controlRequestLen {
		return ControlRequest{}, fmt.Errorf("delivery: short control request: %d bytes", len(buf))
	}
	return ControlRequest{
		Flags:             binary.NativeEndian.Uint32(buf[0:4]),
		StallMode:         buf[4] != 0,
		StallTimeoutMS:    binary.NativeEndian.Uint32(buf[5:9]),
		ContinueTimeoutMS: binary.NativeEndian.Uint32(buf[9:13]),
		DefaultDeny:       buf[13] != 0,
	}, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// Configure applies req to cfgMgr. Values are clamped into their valid
// ranges by config.Manager.Update rather than rejected.
// When the request selects STALL_MODE_SET and it actually flips the
// mode, every cache registered via OnStallModeFlush is flushed before
// the new config becomes visible to readers.
func Configure(cfgMgr *config.Manager, req ControlRequest) config.Config {
	return cfgMgr.Update(func(c *config.Config) {
		if req.Flags&CtrlStallModeSet != 0 {
			c.StallMode = req.StallMode
		}
		if req.Flags&CtrlDefaultTimeout != 0 {
			c.StallTimeout = time.Duration(req.StallTimeoutMS) * time.Millisecond
		}
		if req.Flags&CtrlContinueTimeout != 0 {
			c.ContinueTimeout = time.Duration(req.ContinueTimeoutMS) * time.Millisecond
		}
		if req.Flags&CtrlDefaultDeny != 0 {
			c.DenyOnTimeout = req.DefaultDeny
		}
	})
}
