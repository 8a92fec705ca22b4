package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/stream"
)

// streamCmd groups the live stream watch commands.
var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Watch live streams",
}

// streamTradesCmd watches a trade stream, one contract or the firehose.
// Usage: theta stream trades AAPL --exp 20221216 --strike 150 --right C
// Usage: theta stream trades --full
var streamTradesCmd = &cobra.Command{
	Use:   "trades [root]",
	Short: "Watch option trades",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watch(cmd, args, func(s *stream.Session, root string) (int, error) {
			if streamFull {
				return s.ReqFullTradeStreamOption()
			}
			c, err := streamOptionFlags(root)
			if err != nil {
				return 0, err
			}
			return s.ReqTradeStreamOption(root, c.exp, c.strike, c.right)
		})
	},
}

// streamQuotesCmd watches top-of-book quotes for one option contract.
// Usage: theta stream quotes AAPL --exp 20221216 --strike 150 --right C
var streamQuotesCmd = &cobra.Command{
	Use:   "quotes <root>",
	Short: "Watch option quotes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watch(cmd, args, func(s *stream.Session, root string) (int, error) {
			c, err := streamOptionFlags(root)
			if err != nil {
				return 0, err
			}
			return s.ReqQuoteStreamOption(root, c.exp, c.strike, c.right)
		})
	},
}

// streamOpenInterestCmd watches the open interest firehose.
// Usage: theta stream open-interest
var streamOpenInterestCmd = &cobra.Command{
	Use:   "open-interest",
	Short: "Watch the open interest firehose",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watch(cmd, nil, func(s *stream.Session, _ string) (int, error) {
			return s.ReqFullOpenInterestStream()
		})
	},
}

var (
	streamExp    string
	streamStrike string
	streamRight  string
	streamFull   bool
)

func streamOptionFlags(root string) (optionContract, error) {
	var c optionContract
	if root == "" {
		return c, fmt.Errorf("provide a root symbol or use --full")
	}
	if streamExp == "" || streamStrike == "" || streamRight == "" {
		return c, fmt.Errorf("contract streams need --exp, --strike, and --right")
	}
	var err error
	if c.exp, err = parseDate(streamExp); err != nil {
		return c, err
	}
	if c.strike, err = parseStrike(streamStrike); err != nil {
		return c, err
	}
	if c.right, err = theta.ParseRight(streamRight); err != nil {
		return c, err
	}
	return c, nil
}

// watch connects a session, runs one subscription, and prints events until
// interrupted or the stream dies.
func watch(cmd *cobra.Command, args []string, subscribe func(*stream.Session, string) (int, error)) error {
	ctx := cmd.Context()
	root := ""
	if len(args) > 0 {
		root = args[0]
	}

	s := newStreamSession()
	if err := s.Connect(ctx); err != nil {
		return err
	}
	defer s.Close()

	id, err := subscribe(s, root)
	if err != nil {
		return err
	}
	verdict, err := s.Verify(ctx, id)
	if err != nil {
		return err
	}
	if verdict != stream.Subscribed {
		return fmt.Errorf("subscription %d rejected: %s", id, verdict)
	}
	fmt.Fprintf(os.Stderr, "subscribed (id=%d), watching...\n", id)

	// Close the socket when interrupted; the receiver then emits STREAM_DEAD
	// and the events channel closes.
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	w := newWatchPrinter()
	for m := range s.Events() {
		if m.Type == stream.MsgStreamDead {
			if ctx.Err() != nil {
				fmt.Fprintln(os.Stderr, "\ndisconnected")
				return nil
			}
			return fmt.Errorf("stream died: %v", m.Err)
		}
		w.print(m)
	}
	return nil
}

// watchPrinter renders events one per line, coloring prices green or red
// against the previous print for the same contract.
type watchPrinter struct {
	lastTrade map[string]float64
	lastMid   map[string]float64

	up   *color.Color
	down *color.Color
	dim  *color.Color
}

func newWatchPrinter() *watchPrinter {
	return &watchPrinter{
		lastTrade: make(map[string]float64),
		lastMid:   make(map[string]float64),
		up:        color.New(color.FgGreen),
		down:      color.New(color.FgRed),
		dim:       color.New(color.Faint),
	}
}

func (w *watchPrinter) print(m stream.Msg) {
	switch m.Type {
	case stream.MsgTrade:
		key := m.Contract.String()
		c := w.pick(w.lastTrade[key], m.Trade.Price)
		w.lastTrade[key] = m.Trade.Price
		fmt.Printf("%s  %-28s %s x%-6d %s %s\n",
			msClock(m.Trade.MsOfDay), key,
			c.Sprintf("%.2f", m.Trade.Price), m.Trade.Size,
			m.Trade.Exchange, w.dim.Sprint(m.Trade.Condition))
	case stream.MsgQuote:
		key := m.Contract.String()
		mid := m.Quote.Mid()
		c := w.pick(w.lastMid[key], mid)
		w.lastMid[key] = mid
		fmt.Printf("%s  %-28s %.2f x%-6d | %.2f x%-6d mid %s\n",
			msClock(m.Quote.MsOfDay), key,
			m.Quote.Bid, m.Quote.BidSize, m.Quote.Ask, m.Quote.AskSize,
			c.Sprintf("%.3f", mid))
	case stream.MsgOpenInterest:
		fmt.Printf("%s  %-28s oi %d\n",
			m.OpenInterest.Date.Format("2006-01-02"), m.Contract, m.OpenInterest.OpenInterest)
	case stream.MsgOHLCVC:
		fmt.Printf("%s  %-28s o %.2f h %.2f l %.2f c %.2f v %d\n",
			msClock(m.OHLCVC.MsOfDay), m.Contract,
			m.OHLCVC.Open, m.OHLCVC.High, m.OHLCVC.Low, m.OHLCVC.Close, m.OHLCVC.Volume)
	case stream.MsgStart:
		fmt.Fprintf(os.Stderr, "tape open %s\n", m.Date.Format("2006-01-02"))
	case stream.MsgStop:
		fmt.Fprintf(os.Stderr, "tape closed %s\n", m.Date.Format("2006-01-02"))
	case stream.MsgDisconnected:
		fmt.Fprintln(os.Stderr, w.down.Sprint("terminal lost its upstream connection"))
	case stream.MsgReconnected:
		fmt.Fprintln(os.Stderr, w.up.Sprint("terminal reconnected upstream"))
	case stream.MsgError:
		fmt.Fprintf(os.Stderr, "stream error: %v\n", m.Err)
	}
}

func (w *watchPrinter) pick(prev, cur float64) *color.Color {
	switch {
	case prev == 0 || cur == prev:
		return w.dim
	case cur > prev:
		return w.up
	default:
		return w.down
	}
}

func init() {
	rootCmd.AddCommand(streamCmd)
	streamCmd.AddCommand(streamTradesCmd)
	streamCmd.AddCommand(streamQuotesCmd)
	streamCmd.AddCommand(streamOpenInterestCmd)

	streamCmd.PersistentFlags().StringVar(&streamExp, "exp", "", "option expiration (YYYYMMDD)")
	streamCmd.PersistentFlags().StringVar(&streamStrike, "strike", "", "option strike in USD")
	streamCmd.PersistentFlags().StringVar(&streamRight, "right", "", "option right (C or P)")
	streamTradesCmd.Flags().BoolVar(&streamFull, "full", false, "subscribe to the full-market firehose")
}
