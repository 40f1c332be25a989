package template

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildS1Template(t *testing.T) *MessageTemplate {
	t.Helper()
	return NewMessageTemplate("demo", buildS1Protocol(t),
		NewUInt(Lit(2), "field_1", 1),
		NewUInt(Lit(2), "field_2", 2),
	)
}

func TestEncodeS1HeaderAndTwoBodyFields(t *testing.T) {
	tpl := buildS1Template(t)
	msg, err := tpl.Encode(Params{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x05, 0x00, 0x08, 0x00, 0x01, 0x00, 0x02}, msg.Raw)

	msgID, err := msg.Header.Field("msgId")
	require.NoError(t, err)
	v, _ := msgID.Int()
	require.Equal(t, uint64(5), v)

	length, err := msg.Header.Field("length")
	require.NoError(t, err)
	lv, _ := length.Int()
	require.Equal(t, uint64(8), lv)
}

func TestDecodeS2Override(t *testing.T) {
	tpl := buildS1Template(t)
	raw := []byte{0x00, 0x05, 0x00, 0x08, 0xca, 0xfe, 0xba, 0xbe}
	msg, err := tpl.Decode(raw)
	require.NoError(t, err)

	f1, err := msg.Body.Field("field_1")
	require.NoError(t, err)
	h1, _ := f1.Hex()
	require.Equal(t, "0xcafe", h1)

	f2, err := msg.Body.Field("field_2")
	require.NoError(t, err)
	h2, _ := f2.Hex()
	require.Equal(t, "0xbabe", h2)
}

func TestValidateWithPattern(t *testing.T) {
	// S5: field_2 default '0xbabe'; validating decode(0xcafe0002) against
	// '(0|2)' passes, against '(0|3)' fails.
	tpl := NewMessageTemplate("demo", buildS1Protocol(t),
		NewUInt(Lit(2), "field_1", "0xcafe"),
		NewUInt(Lit(2), "field_2", "0xbabe"),
	)
	raw := []byte{0x00, 0x05, 0x00, 0x08, 0xca, 0xfe, 0x00, 0x02}
	msg, err := tpl.Decode(raw)
	require.NoError(t, err)

	errs := tpl.Validate(msg, Params{"field_2": "(0|2)"})
	require.Empty(t, errs)

	errs = tpl.Validate(msg, Params{"field_2": "(0|3)"})
	require.Len(t, errs, 1)
}

func TestEncodeRejectsUnknownTopLevelKey(t *testing.T) {
	tpl := buildS1Template(t)
	_, err := tpl.Encode(Params{"not_a_field": 1})
	require.ErrorIs(t, err, ErrUnknownParameter)
}

func TestRoundTripEncodeDecode(t *testing.T) {
	tpl := buildS1Template(t)
	msg, err := tpl.Encode(Params{"field_1": 7, "field_2": 9})
	require.NoError(t, err)

	redecoded, err := tpl.Decode(msg.Raw)
	require.NoError(t, err)

	f1, err := redecoded.Body.Field("field_1")
	require.NoError(t, err)
	v1, _ := f1.Int()
	require.Equal(t, uint64(7), v1)

	f2, err := redecoded.Body.Field("field_2")
	require.NoError(t, err)
	v2, _ := f2.Int()
	require.Equal(t, uint64(9), v2)
}

func TestLengthExactness(t *testing.T) {
	tpl := buildS1Template(t)
	msg, err := tpl.Encode(Params{"field_1": 100, "field_2": 200})
	require.NoError(t, err)
	headerLen, err := tpl.protocol.HeaderLength()
	require.NoError(t, err)
	require.Len(t, msg.Raw, headerLen+4)
}

func TestMessageStringPrettyPrint(t *testing.T) {
	tpl := buildS1Template(t)
	msg, err := tpl.Encode(Params{"field_1": 1, "field_2": 2})
	require.NoError(t, err)
	s := msg.String()
	require.Contains(t, s, "demo:")
	require.Contains(t, s, "field_1 = 0x1")
	require.Contains(t, s, "field_2 = 0x2")
}
