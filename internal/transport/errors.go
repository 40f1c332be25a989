package transport

import "errors"

// ErrNotSupported marks operations spec.md §6/§7 explicitly withholds
// from connectionless transports: named-connection aliasing on a UDP
// server, and any lookup that depends on it.
var ErrNotSupported = errors.New("transport: operation not supported")
