package inference

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// Classful boundaries on the 32-bit address value
const (
	classABoundary uint32 = 0x80000000
	classBBoundary uint32 = 0xC0000000
	classCBoundary uint32 = 0xE0000000

	classAMask uint32 = 0xFF000000
	classBMask uint32 = 0xFFFF0000
	classCMask uint32 = 0xFFFFFF00

	// hostOctet isolates the last octet when looking for a gateway
	hostOctet uint32 = 0x000000FF
)

// ClassMask returns the classful mask for v. Addresses at or above the
// class C boundary have no aggregate.
func ClassMask(v uint32) (uint32, bool) {
	switch {
	case v < classABoundary:
		return classAMask, true
	case v < classBBoundary:
		return classBMask, true
	case v < classCBoundary:
		return classCMask, true
	default:
		return 0, false
	}
}

// Aggregate returns the dotted network and mask of addr's classful network
func Aggregate(addr string) (network, mask string, ok bool) {
	v, err := toUint32(addr)
	if err != nil {
		return "", "", false
	}
	m, ok := ClassMask(v)
	if !ok {
		return "", "", false
	}
	return fromUint32(v & m), fromUint32(m), true
}

// IsGateway reports whether addr ends in .1
func IsGateway(addr string) bool {
	v, err := toUint32(addr)
	if err != nil {
		return false
	}
	return v&hostOctet == 1
}

// SyntheticGateway returns the .1 address of addr's /24
func SyntheticGateway(addr string) (string, error) {
	v, err := toUint32(addr)
	if err != nil {
		return "", err
	}
	return fromUint32(v&classCMask + 1), nil
}

func toUint32(addr string) (uint32, error) {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return 0, err
	}
	if !ip.Is4() {
		return 0, fmt.Errorf("not an IPv4 address: %s", addr)
	}
	b := ip.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

func fromUint32(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b).String()
}
