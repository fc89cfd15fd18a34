package domain

// CapabilityKind is the device's current ability to perform biometric
// authentication, as reported by the platform capability probe. It must be
// re-queried on every authentication attempt because hardware and
// enrollment status can change between app launches.
type CapabilityKind string

const (
	CapabilityAvailable   CapabilityKind = "available"
	CapabilityNoHardware  CapabilityKind = "no_hardware"
	CapabilityUnavailable CapabilityKind = "unavailable"
	CapabilityNotEnrolled CapabilityKind = "not_enrolled"
	CapabilityUnknown     CapabilityKind = "unknown"
)

// Platform capability codes understood by CapabilityFromCode. These mirror
// the androidx BiometricManager constants the native adapters report.
const (
	CodeSuccess        = 0
	CodeNoHardware     = 12
	CodeHWUnavailable  = 1
	CodeNoneEnrolled   = 11
	CodeSecurityUpdate = 15
	CodeUnsupported    = -2
	CodeStatusUnknown  = -1
)

// CapabilityFromCode maps a platform-reported capability code to a
// CapabilityKind. The mapping is total: unrecognized codes map to
// CapabilityUnknown rather than failing.
func CapabilityFromCode(code int) CapabilityKind {
	switch code {
	case CodeSuccess:
		return CapabilityAvailable
	case CodeNoHardware:
		return CapabilityNoHardware
	case CodeHWUnavailable, CodeSecurityUpdate, CodeUnsupported:
		return CapabilityUnavailable
	case CodeNoneEnrolled:
		return CapabilityNotEnrolled
	default:
		return CapabilityUnknown
	}
}

// DisplayName returns the human-readable label shown in settings screens.
func (k CapabilityKind) DisplayName() string {
	switch k {
	case CapabilityAvailable:
		return "Biometric"
	case CapabilityNoHardware:
		return "Not Available"
	case CapabilityUnavailable:
		return "Unavailable"
	case CapabilityNotEnrolled:
		return "Not Enrolled"
	default:
		return "Unknown"
	}
}
