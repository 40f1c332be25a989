// Package rtrdemo re-expresses the RPKI-to-Router protocol's PDUs
// declaratively on top of pkg/template, as a worked example of the
// engine driving a real wire format end to end: header version/type/
// session fields, a length-prefixed PDU placeholder, and bodies ranging
// from fixed-width counters to variable-length prefix records.
//
// Every message here shares the same header shape:
//
//	0          8          16         24        31
//	.-------------------------------------------.
//	| Protocol |   PDU    |                     |
//	| Version  |   Type   |     Session ID      |
//	+-------------------------------------------+
//	|                                           |
//	|                 Length                    |
//	|                                           |
//	`-------------------------------------------'
//
// Length counts the whole PDU including this 8-byte header, so the
// PDU placeholder's expression is "length-8".
package rtrdemo

import "github.com/mellowdrifter/ptscript/pkg/template"

// PDU type codes, as assigned by RFC 8210.
const (
	TypeSerialNotify  = 0
	TypeSerialQuery   = 1
	TypeResetQuery    = 2
	TypeCacheResponse = 3
	TypeIPv4Prefix    = 4
	TypeIPv6Prefix    = 6
	TypeEndOfData     = 7
	TypeCacheReset    = 8
	TypeErrorReport   = 10
)

const protocolVersion = 1

// newHeader builds the protocol shared by every RTR message: a fixed
// version, a fixed type code for this message kind, a session ID left
// for the caller to override, and the length/PDU pair.
func newHeader(name string, pduType uint8) *template.Protocol {
	p := template.NewProtocol(name)
	must(p.Add(template.NewUInt(template.Lit(1), "version", protocolVersion)))
	must(p.Add(template.NewUInt(template.Lit(1), "pduType", pduType)))
	must(p.Add(template.NewUInt(template.Lit(2), "sessionId", 0)))
	must(p.Add(template.NewUInt(template.Lit(4), "length", nil)))
	pdu, err := template.NewPDU("length-8")
	must(err)
	must(p.Add(pdu))
	return p
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// SerialNotify announces a new serial number to a client.
var SerialNotify = template.NewMessageTemplate("SerialNotify", newHeader("SerialNotify", TypeSerialNotify),
	template.NewUInt(template.Lit(4), "serial", nil),
)

// SerialQuery asks the cache for updates since serial.
var SerialQuery = template.NewMessageTemplate("SerialQuery", newHeader("SerialQuery", TypeSerialQuery),
	template.NewUInt(template.Lit(4), "serial", nil),
)

// ResetQuery asks the cache to restart a full transfer. It has no body.
var ResetQuery = template.NewMessageTemplate("ResetQuery", newHeader("ResetQuery", TypeResetQuery))

// CacheResponse precedes a full or partial transfer. It has no body.
var CacheResponse = template.NewMessageTemplate("CacheResponse", newHeader("CacheResponse", TypeCacheResponse))

// CacheReset tells the client to discard its cache and reissue a Reset Query.
var CacheReset = template.NewMessageTemplate("CacheReset", newHeader("CacheReset", TypeCacheReset))

// IPv4Prefix announces or withdraws a ROA for an IPv4 prefix.
var IPv4Prefix = template.NewMessageTemplate("IPv4Prefix", newHeader("IPv4Prefix", TypeIPv4Prefix),
	template.NewUInt(template.Lit(1), "flags", 1),
	template.NewUInt(template.Lit(1), "prefixLength", nil),
	template.NewUInt(template.Lit(1), "maxLength", nil),
	template.NewUInt(template.Lit(1), "zero", 0),
	template.NewChar(template.Lit(4), "prefix", nil),
	template.NewUInt(template.Lit(4), "asn", nil),
)

// IPv6Prefix announces or withdraws a ROA for an IPv6 prefix.
var IPv6Prefix = template.NewMessageTemplate("IPv6Prefix", newHeader("IPv6Prefix", TypeIPv6Prefix),
	template.NewUInt(template.Lit(1), "flags", 1),
	template.NewUInt(template.Lit(1), "prefixLength", nil),
	template.NewUInt(template.Lit(1), "maxLength", nil),
	template.NewUInt(template.Lit(1), "zero", 0),
	template.NewChar(template.Lit(16), "prefix", nil),
	template.NewUInt(template.Lit(4), "asn", nil),
)

// EndOfData closes out a transfer with the serial the client is now
// caught up to and the cache's refresh/retry/expire timers.
var EndOfData = template.NewMessageTemplate("EndOfData", newHeader("EndOfData", TypeEndOfData),
	template.NewUInt(template.Lit(4), "serial", nil),
	template.NewUInt(template.Lit(4), "refresh", 3600),
	template.NewUInt(template.Lit(4), "retry", 600),
	template.NewUInt(template.Lit(4), "expire", 7200),
)

// ErrorReport carries an error code plus the offending PDU and a
// diagnostic message, each itself length-prefixed within the body —
// demonstrating a nested dynamic-length Struct inside a MessageTemplate.
var errorReportPDUField = template.NewStruct("EncapsulatedPDU", "erroneousPDU").
	Add(template.NewUInt(template.Lit(4), "length", 0)).
	Add(template.NewList(template.Ref("length"), "bytes").Add(template.NewUInt(template.Lit(1), "", 0)))

var errorReportTextField = template.NewStruct("ErrorText", "errorText").
	Add(template.NewUInt(template.Lit(4), "length", 0)).
	Add(template.NewChar(template.Ref("length"), "text", ""))

var ErrorReport = template.NewMessageTemplate("ErrorReport", newErrorReportHeader(),
	errorReportPDUField,
	errorReportTextField,
)

// newErrorReportHeader mirrors newHeader but with the session field
// repurposed (per RFC 8210) as the error code.
func newErrorReportHeader() *template.Protocol {
	p := template.NewProtocol("ErrorReport")
	must(p.Add(template.NewUInt(template.Lit(1), "version", protocolVersion)))
	must(p.Add(template.NewUInt(template.Lit(1), "pduType", TypeErrorReport)))
	must(p.Add(template.NewUInt(template.Lit(2), "errorCode", nil)))
	must(p.Add(template.NewUInt(template.Lit(4), "length", nil)))
	pdu, err := template.NewPDU("length-8")
	must(err)
	must(p.Add(pdu))
	return p
}
