package rtrdemo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mellowdrifter/ptscript/pkg/template"
)

func TestSerialNotifyRoundTrip(t *testing.T) {
	msg, err := SerialNotify.Encode(template.Params{"serial": 42})
	require.NoError(t, err)
	require.Equal(t, []byte{
		protocolVersion, TypeSerialNotify, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x0c,
		0x00, 0x00, 0x00, 42,
	}, msg.Raw)

	redecoded, err := SerialNotify.Decode(msg.Raw)
	require.NoError(t, err)
	serial, err := redecoded.Body.Field("serial")
	require.NoError(t, err)
	v, _ := serial.Int()
	require.Equal(t, uint64(42), v)
}

func TestResetQueryHasNoBody(t *testing.T) {
	msg, err := ResetQuery.Encode(template.Params{})
	require.NoError(t, err)
	require.Equal(t, []byte{protocolVersion, TypeResetQuery, 0, 0, 0, 0, 0, 8}, msg.Raw)
}

func TestIPv4PrefixEncode(t *testing.T) {
	msg, err := IPv4Prefix.Encode(template.Params{
		"prefixLength": 24,
		"maxLength":    24,
		"prefix":       []byte{10, 0, 0, 0},
		"asn":          65000,
	})
	require.NoError(t, err)
	require.Len(t, msg.Raw, 20)

	redecoded, err := IPv4Prefix.Decode(msg.Raw)
	require.NoError(t, err)
	asn, err := redecoded.Body.Field("asn")
	require.NoError(t, err)
	v, _ := asn.Int()
	require.Equal(t, uint64(65000), v)
}

func TestErrorReportNestedLengths(t *testing.T) {
	msg, err := ErrorReport.Encode(template.Params{
		"_header":              template.Params{"errorCode": 2},
		"erroneousPDU.length":  0,
		"errorText.length":     5,
		"errorText.text":       "oops!",
	})
	require.NoError(t, err)

	redecoded, err := ErrorReport.Decode(msg.Raw)
	require.NoError(t, err)
	textField, err := redecoded.Body.Field("errorText")
	require.NoError(t, err)
	text, err := textField.Field("text")
	require.NoError(t, err)
	ascii, err := text.ASCII()
	require.NoError(t, err)
	require.Equal(t, "oops!", ascii)
}
