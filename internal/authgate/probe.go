package authgate

import "github.com/openclaw/companion/internal/domain"

// CodeProbe adapts raw platform capability codes to the probe contract.
// Platform adapters construct one from whatever their capability query
// reports; the code-to-kind mapping is total, so unrecognized codes
// degrade to Unknown instead of failing.
type CodeProbe struct {
	BiometricCode        int
	DeviceCredentialCode int
}

func (p CodeProbe) Biometric() domain.CapabilityKind {
	return domain.CapabilityFromCode(p.BiometricCode)
}

func (p CodeProbe) DeviceCredential() domain.CapabilityKind {
	return domain.CapabilityFromCode(p.DeviceCredentialCode)
}

// StaticProbe returns fixed capability kinds. Useful for tests and for
// platforms that resolve capabilities once per attempt on their side.
type StaticProbe struct {
	Bio  domain.CapabilityKind
	Cred domain.CapabilityKind
}

func (p StaticProbe) Biometric() domain.CapabilityKind        { return p.Bio }
func (p StaticProbe) DeviceCredential() domain.CapabilityKind { return p.Cred }
