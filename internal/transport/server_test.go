package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mellowdrifter/ptscript/pkg/template"
)

func demoTemplate(t *testing.T) (*template.Protocol, *template.MessageTemplate) {
	t.Helper()
	p := template.NewProtocol("demo")
	require.NoError(t, p.Add(template.NewUInt(template.Lit(2), "msgId", 5)))
	require.NoError(t, p.Add(template.NewUInt(template.Lit(2), "length", nil)))
	pdu, err := template.NewPDU("length-4")
	require.NoError(t, err)
	require.NoError(t, p.Add(pdu))
	tpl := template.NewMessageTemplate("demo", p,
		template.NewUInt(template.Lit(2), "field_1", 1),
		template.NewUInt(template.Lit(2), "field_2", 2),
	)
	return p, tpl
}

func TestServerClientRoundTrip(t *testing.T) {
	logger := zap.NewNop().Sugar()
	srv := NewServer(logger, time.Second)
	require.NoError(t, srv.Start("127.0.0.1:0"))
	defer srv.Stop(time.Second)

	addr := srv.listener.Addr().String()
	client, err := Dial("tcp", addr, time.Second, time.Second)
	require.NoError(t, err)
	defer client.Close()

	acceptErr := make(chan error, 1)
	go func() {
		_, err := srv.AcceptConnection("", time.Second)
		acceptErr <- err
	}()

	protocol, tpl := demoTemplate(t)
	msg, err := tpl.Encode(template.Params{"field_1": 42, "field_2": 7})
	require.NoError(t, err)
	require.NoError(t, client.Send(msg.Raw))

	require.NoError(t, <-acceptErr)

	conn, ok := srv.Connection("")
	require.True(t, ok)

	got, err := conn.ReadMessage(protocol, tpl, "1")
	require.NoError(t, err)

	f1, err := got.Body.Field("field_1")
	require.NoError(t, err)
	v1, _ := f1.Int()
	require.Equal(t, uint64(42), v1)
}

func TestCloseConnectionRemovesFromCache(t *testing.T) {
	logger := zap.NewNop().Sugar()
	srv := NewServer(logger, time.Second)
	require.NoError(t, srv.Start("127.0.0.1:0"))
	defer srv.Stop(time.Second)

	addr := srv.listener.Addr().String()
	client, err := Dial("tcp", addr, time.Second, time.Second)
	require.NoError(t, err)
	defer client.Close()

	alias, err := srv.AcceptConnection("primary", time.Second)
	require.NoError(t, err)
	require.Equal(t, "primary", alias)
	require.Equal(t, 1, srv.ConnectionCount())

	require.NoError(t, srv.CloseConnection(alias))
	require.Equal(t, 0, srv.ConnectionCount())
}
