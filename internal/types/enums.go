package types

import (
	"fmt"
	"strings"
)

// Mode is the persisted heater recommendation. It is a closed set; any other
// stored value is treated as corruption by the state store adapters.
type Mode string

const (
	ModeCold Mode = "COLD"
	ModeWarm Mode = "WARM"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeCold || m == ModeWarm
}

// ParseMode converts a stored string into a Mode. Unknown values return an
// AppError with ErrCodeStateCorrupt so callers never silently default.
func ParseMode(raw string) (Mode, error) {
	m := Mode(raw)
	if !m.Valid() {
		return "", NewAppError(ErrCodeStateCorrupt, fmt.Sprintf("unrecognized stored mode %q", raw), nil)
	}
	return m, nil
}

// InvocationMode selects which path a single run takes.
type InvocationMode string

const (
	InvocationNormal        InvocationMode = "NORMAL"
	InvocationStatus        InvocationMode = "STATUS"
	InvocationTestSMSOnly   InvocationMode = "TEST_SMS_ONLY"
	InvocationSimulatedCold InvocationMode = "SIMULATED_COLD"
	InvocationSimulatedWarm InvocationMode = "SIMULATED_WARM"
)

// invocationAliases maps the older scheduler payload names onto the current
// invocation modes.
var invocationAliases = map[string]InvocationMode{
	"TEST":           InvocationStatus,
	"TEST_COLD":      InvocationSimulatedCold,
	"TEST_WARM":      InvocationSimulatedWarm,
	"SIMULATED-COLD": InvocationSimulatedCold,
	"SIMULATED-WARM": InvocationSimulatedWarm,
}

// ParseInvocationMode normalizes a requested mode. Empty input means NORMAL.
// Matching is case-insensitive.
func ParseInvocationMode(raw string) (InvocationMode, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return InvocationNormal, nil
	}
	switch m := InvocationMode(s); m {
	case InvocationNormal, InvocationStatus, InvocationTestSMSOnly,
		InvocationSimulatedCold, InvocationSimulatedWarm:
		return m, nil
	}
	if m, ok := invocationAliases[s]; ok {
		return m, nil
	}
	return "", NewAppError(ErrCodeValidationInvalidMode, fmt.Sprintf("unknown invocation mode %q", raw), nil)
}

// IsDiagnostic reports whether the mode is read-only with respect to the
// persisted record.
func (m InvocationMode) IsDiagnostic() bool {
	return m != InvocationNormal
}

// AlertKind identifies which notification a run produced.
type AlertKind string

const (
	AlertFreeze    AlertKind = "freeze"
	AlertWarmClear AlertKind = "warm_clear"
	AlertStatus    AlertKind = "status"
	AlertTestSMS   AlertKind = "test_sms"
)

// Channel identifies a notification delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)
