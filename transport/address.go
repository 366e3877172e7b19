// Package transport implements the network transport layer for the media
// pipeline: socket lifecycle, addressing, and the wire packet envelope that
// carries RTP and signalling payloads between pipeline nodes.
package transport

import (
	"errors"
	"fmt"
	"net"
)

// AddressKind discriminates the address tagged union.
type AddressKind byte

const (
	// AddressAuto lets the transport resolve the concrete family at bind time.
	AddressAuto AddressKind = iota
	// AddressIPv4 is a 4-byte IPv4 host.
	AddressIPv4
	// AddressIPv6 is a 16-byte IPv6 host.
	AddressIPv6
)

// Address is a tagged union over {IPv4, IPv6, Auto}. Equality compares both
// the tag and the bytes, so an IPv4 address never equals an IPv6 address
// even if one is the mapped form of the other.
type Address struct {
	Kind AddressKind
	IP   net.IP
	Port uint16
}

// NewAddress builds an Address from a net.IP, inferring the kind from
// ip.To4(): any address with an IPv4 form, including a 16-byte
// IPv4-mapped one, is IPv4; everything else is IPv6.
func NewAddress(ip net.IP, port uint16) Address {
	kind := AddressIPv6
	if v4 := ip.To4(); v4 != nil {
		kind = AddressIPv4
		ip = v4
	}
	return Address{Kind: kind, IP: ip, Port: port}
}

// ParseAddress parses a "host:port" string into an Address.
func ParseAddress(s string) (Address, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Address{}, fmt.Errorf("transport: parse address %q: %w", s, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return Address{}, fmt.Errorf("transport: invalid host %q", host)
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return Address{}, fmt.Errorf("transport: invalid port %q", portStr)
	}
	return NewAddress(ip, uint16(port)), nil
}

// Equal reports whether two addresses carry the same tag and bytes.
func (a Address) Equal(other Address) bool {
	if a.Kind != other.Kind || a.Port != other.Port {
		return false
	}
	return a.IP.Equal(other.IP)
}

// String renders the address as "host:port".
func (a Address) String() string {
	return net.JoinHostPort(a.IP.String(), fmt.Sprintf("%d", a.Port))
}

// ToNetAddr converts the Address into a *net.UDPAddr for use with the
// standard library networking primitives.
func (a Address) ToNetAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: a.IP, Port: int(a.Port)}
}

// FromNetAddr converts a net.Addr (as returned by PacketConn.ReadFrom) into
// an Address, rejecting anything that isn't IP-based.
func FromNetAddr(addr net.Addr) (Address, error) {
	udp, ok := addr.(*net.UDPAddr)
	if !ok {
		host, portStr, err := net.SplitHostPort(addr.String())
		if err != nil {
			return Address{}, errors.New("transport: address has no host:port form")
		}
		ip := net.ParseIP(host)
		if ip == nil {
			return Address{}, errors.New("transport: address host is not an IP")
		}
		var port int
		fmt.Sscanf(portStr, "%d", &port)
		return NewAddress(ip, uint16(port)), nil
	}
	return NewAddress(udp.IP, uint16(udp.Port)), nil
}

// IsZero reports whether the address carries no usable IP.
func (a Address) IsZero() bool {
	return len(a.IP) == 0 || a.IP.IsUnspecified()
}
