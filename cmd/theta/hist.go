package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/client"
	"github.com/thetafeed/theta-go/rest"
	"github.com/thetafeed/theta-go/tick"
)

// histCmd groups the historical data commands.
var histCmd = &cobra.Command{
	Use:   "hist",
	Short: "Historical data",
}

// histOptionCmd fetches a historical option series.
// Usage: theta hist option AAPL --exp 20221216 --strike 150 --right C --start 20221201 --end 20221216
var histOptionCmd = &cobra.Command{
	Use:   "option <root>",
	Short: "Fetch a historical option series",
	Long: `Fetch a historical series for one option contract. --req selects the
series type (EOD, QUOTE, OHLC, TRADE, GREEKS, ...); --interval downsamples
intraday data.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := theta.ParseOptionReq(histReq)
		if err != nil {
			return err
		}
		contract, err := optionFlags()
		if err != nil {
			return err
		}
		start, end, ivl, err := rangeFlags()
		if err != nil {
			return err
		}

		var table *tick.Table
		if histREST {
			rc, err := newRESTClient()
			if err != nil {
				return err
			}
			table, err = rc.HistOption(cmd.Context(), req, rest.HistParams{
				Root: args[0], Exp: contract.exp, Strike: contract.strike, Right: contract.right,
				Start: start, End: end, Interval: ivl, RTH: histRTH,
			})
			if err != nil {
				return err
			}
		} else {
			err = client.WithSession(cmd.Context(), func(c *client.Client) error {
				var err error
				table, err = c.HistOption(cmd.Context(), client.HistOptionRequest{
					Req: req, Root: args[0], Exp: contract.exp, Strike: contract.strike,
					Right: contract.right, Start: start, End: end, Interval: ivl, RTH: histRTH,
				})
				return err
			}, controlOptions()...)
			if err != nil {
				return err
			}
		}

		printTable(table)
		return nil
	},
}

// histStockCmd fetches a historical stock series.
// Usage: theta hist stock AAPL --req OHLC --start 20221201 --end 20221216 --interval 1m
var histStockCmd = &cobra.Command{
	Use:   "stock <root>",
	Short: "Fetch a historical stock series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := theta.ParseStockReq(histReq)
		if err != nil {
			return err
		}
		start, end, ivl, err := rangeFlags()
		if err != nil {
			return err
		}

		var table *tick.Table
		if histREST {
			rc, err := newRESTClient()
			if err != nil {
				return err
			}
			table, err = rc.HistStock(cmd.Context(), req, rest.HistParams{
				Root: args[0], Start: start, End: end, Interval: ivl, RTH: histRTH,
			})
			if err != nil {
				return err
			}
		} else {
			err = client.WithSession(cmd.Context(), func(c *client.Client) error {
				var err error
				table, err = c.HistStock(cmd.Context(), client.HistStockRequest{
					Req: req, Root: args[0], Start: start, End: end, Interval: ivl, RTH: histRTH,
				})
				return err
			}, controlOptions()...)
			if err != nil {
				return err
			}
		}

		printTable(table)
		return nil
	},
}

var (
	histReq      string
	histExp      string
	histStrike   string
	histRight    string
	histStart    string
	histEnd      string
	histInterval string
	histRTH      bool
	histREST     bool
)

// optionContract holds the parsed option identity flags.
type optionContract struct {
	exp    time.Time
	strike theta.Strike
	right  theta.Right
}

// optionFlags parses --exp, --strike, and --right.
func optionFlags() (optionContract, error) {
	var c optionContract
	if histExp == "" || histStrike == "" || histRight == "" {
		return c, fmt.Errorf("option requests need --exp, --strike, and --right")
	}
	var err error
	if c.exp, err = parseDate(histExp); err != nil {
		return c, err
	}
	if c.strike, err = parseStrike(histStrike); err != nil {
		return c, err
	}
	if c.right, err = theta.ParseRight(histRight); err != nil {
		return c, err
	}
	return c, nil
}

// rangeFlags parses --start, --end, and --interval.
func rangeFlags() (start, end time.Time, ivl time.Duration, err error) {
	if histStart == "" || histEnd == "" {
		return start, end, 0, fmt.Errorf("historical requests need --start and --end")
	}
	if start, err = parseDate(histStart); err != nil {
		return
	}
	if end, err = parseDate(histEnd); err != nil {
		return
	}
	ivl, err = parseInterval(histInterval)
	return
}

func init() {
	rootCmd.AddCommand(histCmd)
	histCmd.AddCommand(histOptionCmd)
	histCmd.AddCommand(histStockCmd)

	histCmd.PersistentFlags().StringVar(&histReq, "req", "EOD", "request type (EOD, QUOTE, OHLC, TRADE, ...)")
	histCmd.PersistentFlags().StringVar(&histExp, "exp", "", "option expiration (YYYYMMDD)")
	histCmd.PersistentFlags().StringVar(&histStrike, "strike", "", "option strike in USD")
	histCmd.PersistentFlags().StringVar(&histRight, "right", "", "option right (C or P)")
	histCmd.PersistentFlags().StringVar(&histStart, "start", "", "range start (YYYYMMDD)")
	histCmd.PersistentFlags().StringVar(&histEnd, "end", "", "range end (YYYYMMDD)")
	histCmd.PersistentFlags().StringVar(&histInterval, "interval", "", "bar interval (1m, 5m, 1h) or milliseconds; empty for ticks")
	histCmd.PersistentFlags().BoolVar(&histRTH, "rth", false, "regular trading hours only")
	histCmd.PersistentFlags().BoolVar(&histREST, "rest", false, "use the REST transport instead of the control socket")
}
