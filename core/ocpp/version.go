package ocpp

import "fmt"

// Version identifies an OCPP protocol version.
type Version int

const (
	V12 Version = iota + 1
	V15
)

// String returns the dotted version number.
func (v Version) String() string {
	switch v {
	case V12:
		return "1.2"
	case V15:
		return "1.5"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	switch string(b) {
	case "1.2":
		*v = V12
	case "1.5":
		*v = V15
	default:
		return fmt.Errorf("unknown ocpp version %q", string(b))
	}
	return nil
}

// Namespace returns the SOAP namespace of the charge point service.
func (v Version) Namespace() string {
	switch v {
	case V12:
		return "urn://Ocpp/Cp/2010/08/"
	default:
		return "urn://Ocpp/Cp/2012/06/"
	}
}
