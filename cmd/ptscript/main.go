// ptscript runs a demo server that speaks the RTR-as-template protocol
// defined in internal/rtrdemo, to exercise pkg/template and
// pkg/framing against a real socket end to end.
package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mellowdrifter/ptscript/internal/config"
	"github.com/mellowdrifter/ptscript/internal/logging"
	"github.com/mellowdrifter/ptscript/internal/rtrdemo"
	"github.com/mellowdrifter/ptscript/internal/transport"
	"github.com/mellowdrifter/ptscript/pkg/template"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := logging.New(cfg.LogLevel)

	logger.Info("Starting ptscript daemon...")

	srv := transport.NewServer(logger, cfg.DefaultTimeout)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}

	go serveResetQueries(srv, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Infof("Signal received: %s, shutting down gracefully...", sig)

	shutdownTimeout := 5 * time.Second
	if err := srv.Stop(shutdownTimeout); err != nil {
		logger.Errorf("Shutdown error: %v", err)
	} else {
		logger.Info("Daemon shut down cleanly")
	}
}

// serveResetQueries answers the first Reset Query on each accepted
// connection with an empty cache response followed by an End of Data
// PDU, the minimum viable RTR handshake, demonstrating a scenario
// driving internal/transport and internal/rtrdemo together.
func serveResetQueries(srv *transport.Server, logger interface{ Infof(string, ...any) }) {
	serial := uint32(1)
	for {
		alias, err := srv.AcceptConnection("", 30*time.Second)
		if err != nil {
			var te interface{ Timeout() bool }
			if errors.As(err, &te) && te.Timeout() {
				continue
			}
			return
		}
		conn, ok := srv.Connection(alias)
		if !ok {
			continue
		}
		go handleOneClient(conn, serial)
	}
}

func handleOneClient(conn *transport.Connection, serial uint32) {
	protocol := rtrdemo.ResetQuery.Protocol()
	_, err := conn.ReadMessage(protocol, rtrdemo.ResetQuery, "30")
	if err != nil {
		conn.Close()
		return
	}

	resp, err := rtrdemo.CacheResponse.Encode(template.Params{})
	if err != nil || conn.Send(resp.Raw) != nil {
		conn.Close()
		return
	}

	eod, err := rtrdemo.EndOfData.Encode(template.Params{"serial": serial})
	if err != nil || conn.Send(eod.Raw) != nil {
		conn.Close()
		return
	}
}
