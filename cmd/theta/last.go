package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/client"
)

// lastCmd groups the point-in-time snapshot commands.
var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Most recent tick for a contract",
}

// lastOptionCmd fetches the most recent tick of an option contract.
// Usage: theta last option AAPL --req QUOTE --exp 20221216 --strike 150 --right C
var lastOptionCmd = &cobra.Command{
	Use:   "option <root>",
	Short: "Fetch the most recent option tick",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := theta.ParseOptionReq(lastReq)
		if err != nil {
			return err
		}
		contract, err := lastOptionFlags()
		if err != nil {
			return err
		}
		return client.WithSession(cmd.Context(), func(c *client.Client) error {
			table, err := c.LastOption(cmd.Context(), client.LastOptionRequest{
				Req: req, Root: args[0], Exp: contract.exp, Strike: contract.strike, Right: contract.right,
			})
			if err != nil {
				return err
			}
			printTable(table)
			return nil
		}, controlOptions()...)
	},
}

// lastStockCmd fetches the most recent tick of a stock.
// Usage: theta last stock AAPL --req QUOTE
var lastStockCmd = &cobra.Command{
	Use:   "stock <root>",
	Short: "Fetch the most recent stock tick",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := theta.ParseStockReq(lastReq)
		if err != nil {
			return err
		}
		return client.WithSession(cmd.Context(), func(c *client.Client) error {
			table, err := c.LastStock(cmd.Context(), client.LastStockRequest{Req: req, Root: args[0]})
			if err != nil {
				return err
			}
			printTable(table)
			return nil
		}, controlOptions()...)
	},
}

// atTimeCmd groups the at-time snapshot commands.
var atTimeCmd = &cobra.Command{
	Use:   "at-time",
	Short: "Data in effect at a time-of-day over a date range",
}

// atTimeOptionCmd fetches option data in effect at a time-of-day.
// Usage: theta at-time option AAPL --req QUOTE --exp 20221216 --strike 150 --right C \
//          --start 20221201 --end 20221216 --at 10h30m
var atTimeOptionCmd = &cobra.Command{
	Use:   "option <root>",
	Short: "Fetch the option data in effect at a time-of-day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := theta.ParseOptionReq(lastReq)
		if err != nil {
			return err
		}
		contract, err := lastOptionFlags()
		if err != nil {
			return err
		}
		start, end, at, err := atTimeFlags()
		if err != nil {
			return err
		}
		return client.WithSession(cmd.Context(), func(c *client.Client) error {
			table, err := c.OptionAtTime(cmd.Context(), client.AtTimeOptionRequest{
				Req: req, Root: args[0], Exp: contract.exp, Strike: contract.strike, Right: contract.right,
				Start: start, End: end, TimeOfDay: at, RTH: lastRTH,
			})
			if err != nil {
				return err
			}
			printTable(table)
			return nil
		}, controlOptions()...)
	},
}

// atTimeStockCmd fetches stock data in effect at a time-of-day.
var atTimeStockCmd = &cobra.Command{
	Use:   "stock <root>",
	Short: "Fetch the stock data in effect at a time-of-day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := theta.ParseStockReq(lastReq)
		if err != nil {
			return err
		}
		start, end, at, err := atTimeFlags()
		if err != nil {
			return err
		}
		return client.WithSession(cmd.Context(), func(c *client.Client) error {
			table, err := c.StockAtTime(cmd.Context(), client.AtTimeStockRequest{
				Req: req, Root: args[0], Start: start, End: end, TimeOfDay: at, RTH: lastRTH,
			})
			if err != nil {
				return err
			}
			printTable(table)
			return nil
		}, controlOptions()...)
	},
}

var (
	lastReq    string
	lastExp    string
	lastStrike string
	lastRight  string
	lastStart  string
	lastEnd    string
	lastAt     string
	lastRTH    bool
)

func lastOptionFlags() (optionContract, error) {
	var c optionContract
	if lastExp == "" || lastStrike == "" || lastRight == "" {
		return c, fmt.Errorf("option requests need --exp, --strike, and --right")
	}
	var err error
	if c.exp, err = parseDate(lastExp); err != nil {
		return c, err
	}
	if c.strike, err = parseStrike(lastStrike); err != nil {
		return c, err
	}
	if c.right, err = theta.ParseRight(lastRight); err != nil {
		return c, err
	}
	return c, nil
}

func atTimeFlags() (start, end time.Time, at time.Duration, err error) {
	if lastStart == "" || lastEnd == "" || lastAt == "" {
		return start, end, 0, fmt.Errorf("at-time requests need --start, --end, and --at")
	}
	if start, err = parseDate(lastStart); err != nil {
		return
	}
	if end, err = parseDate(lastEnd); err != nil {
		return
	}
	at, err = time.ParseDuration(lastAt)
	if err != nil {
		err = fmt.Errorf("time-of-day %q: %w", lastAt, err)
	}
	return
}

func init() {
	rootCmd.AddCommand(lastCmd)
	rootCmd.AddCommand(atTimeCmd)
	lastCmd.AddCommand(lastOptionCmd)
	lastCmd.AddCommand(lastStockCmd)
	atTimeCmd.AddCommand(atTimeOptionCmd)
	atTimeCmd.AddCommand(atTimeStockCmd)

	for _, cmd := range []*cobra.Command{lastCmd, atTimeCmd} {
		cmd.PersistentFlags().StringVar(&lastReq, "req", "QUOTE", "request type (QUOTE, TRADE, OHLC, ...)")
		cmd.PersistentFlags().StringVar(&lastExp, "exp", "", "option expiration (YYYYMMDD)")
		cmd.PersistentFlags().StringVar(&lastStrike, "strike", "", "option strike in USD")
		cmd.PersistentFlags().StringVar(&lastRight, "right", "", "option right (C or P)")
	}
	atTimeCmd.PersistentFlags().StringVar(&lastStart, "start", "", "range start (YYYYMMDD)")
	atTimeCmd.PersistentFlags().StringVar(&lastEnd, "end", "", "range end (YYYYMMDD)")
	atTimeCmd.PersistentFlags().StringVar(&lastAt, "at", "", "time of day from midnight ET (10h30m)")
	atTimeCmd.PersistentFlags().BoolVar(&lastRTH, "rth", false, "regular trading hours only")
}
