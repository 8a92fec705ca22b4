package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thetafeed/theta-go/bridge"
	"github.com/thetafeed/theta-go/stream"
)

// bridgeCmd re-publishes stream events to WebSocket clients.
// Usage: theta bridge --oi
var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Re-publish stream events over WebSocket",
	Long: `Subscribe to Terminal streams and re-publish every event as JSON to
WebSocket clients. Defaults to the full-market trade stream; --oi adds the
open interest firehose. Clients connect to ws://<addr><path>.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		s := newStreamSession()
		if err := s.Connect(ctx); err != nil {
			return err
		}
		go func() {
			<-ctx.Done()
			s.Close()
		}()

		if !bridgeNoTrades {
			if err := subscribeVerified(ctx, s, "full trade stream", s.ReqFullTradeStreamOption); err != nil {
				return err
			}
		}
		if bridgeOI {
			if err := subscribeVerified(ctx, s, "open interest stream", s.ReqFullOpenInterestStream); err != nil {
				return err
			}
		}

		bc := bridge.DefaultConfig()
		bc.Path = cfg.Bridge.Path
		bc.MaxClients = cfg.Bridge.MaxClients
		bc.SendBuffer = cfg.Bridge.SendBuffer
		srv := bridge.NewServer(
			bridge.WithConfig(bc),
			bridge.WithLogger(&logger),
			bridge.WithMetrics(wsMetrics),
		)

		addr := cfg.Bridge.Addr
		if bridgeAddr != "" {
			addr = bridgeAddr
		}
		serveErr := make(chan error, 1)
		go func() { serveErr <- srv.Serve(ctx, addr) }()

		var streamErr error
		for m := range s.Events() {
			srv.Broadcast(m)
			if m.Type == stream.MsgStreamDead && ctx.Err() == nil {
				streamErr = fmt.Errorf("stream died: %v", m.Err)
			}
		}

		// The session is gone either way; shut the server down and surface
		// whichever failure came first.
		cancel()
		err := <-serveErr
		if streamErr != nil {
			return streamErr
		}
		return err
	},
}

// subscribeVerified runs one subscription and fails unless the Terminal
// acks it.
func subscribeVerified(ctx context.Context, s *stream.Session, name string, req func() (int, error)) error {
	id, err := req()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	verdict, err := s.Verify(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if verdict != stream.Subscribed {
		return fmt.Errorf("%s rejected: %s", name, verdict)
	}
	logger.Info().Str("stream", name).Int("id", id).Msg("subscribed")
	return nil
}

var (
	bridgeAddr     string
	bridgeOI       bool
	bridgeNoTrades bool
)

func init() {
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.Flags().StringVar(&bridgeAddr, "addr", "", "listen address (overrides config)")
	bridgeCmd.Flags().BoolVar(&bridgeOI, "oi", false, "also subscribe to the open interest firehose")
	bridgeCmd.Flags().BoolVar(&bridgeNoTrades, "no-trades", false, "skip the full trade stream subscription")
}
