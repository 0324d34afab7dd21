package models

import (
	"fmt"
	"strings"
)

// PortMapping is one parsed entry from a spec's ports list.
type PortMapping struct {
	// HostIP is the bind address, empty for all interfaces.
	HostIP string

	// HostPort is the published port, empty for a dynamically assigned one.
	HostPort string

	// ContainerPort is the port inside the container.
	ContainerPort string

	// Protocol is "tcp" unless the entry says otherwise ("53/udp").
	Protocol string
}

// ParsePort parses one ports entry. Accepted forms:
//
//	"8000"                  container port only, dynamic host port
//	"8000:8000"             host:container
//	"127.0.0.1:8000:8000"   ip:host:container
//
// A "/udp" (or other protocol) suffix on the container port is honored.
func ParsePort(entry string) (PortMapping, error) {
	mapping := PortMapping{Protocol: "tcp"}

	rest := entry
	if idx := strings.LastIndex(rest, "/"); idx >= 0 {
		mapping.Protocol = rest[idx+1:]
		rest = rest[:idx]
	}
	if rest == "" || mapping.Protocol == "" {
		return PortMapping{}, fmt.Errorf("invalid port specification: %q", entry)
	}

	parts := strings.Split(rest, ":")
	switch len(parts) {
	case 1:
		mapping.ContainerPort = parts[0]
	case 2:
		mapping.HostPort = parts[0]
		mapping.ContainerPort = parts[1]
	case 3:
		mapping.HostIP = parts[0]
		mapping.HostPort = parts[1]
		mapping.ContainerPort = parts[2]
	default:
		return PortMapping{}, fmt.Errorf("invalid port specification: %q", entry)
	}

	if mapping.ContainerPort == "" {
		return PortMapping{}, fmt.Errorf("invalid port specification: %q", entry)
	}
	return mapping, nil
}

// ParsePorts parses every entry of a spec's ports list.
func ParsePorts(entries []string) ([]PortMapping, error) {
	mappings := make([]PortMapping, 0, len(entries))
	for _, entry := range entries {
		m, err := ParsePort(entry)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}
