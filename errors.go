package pmsensor

import "github.com/joomcode/errorx"

var (
	Errors = errorx.NewNamespace("pmsensor")

	// PortUnavailable open failed, device absent or busy. Retry later
	PortUnavailable = Errors.NewType("port_unavailable", errorx.Temporary())
	// LinkInvalidated open link broke. Link reopens by itself
	LinkInvalidated = Errors.NewType("link_invalidated", errorx.Temporary())

	// only for debug logging, never returned
	decodeDiscarded = Errors.NewType("decode_discarded")
)
