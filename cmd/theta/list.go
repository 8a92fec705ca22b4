package main

import (
	"fmt"

	"github.com/spf13/cobra"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/client"
)

// listCmd groups the instrument listing commands.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Instrument listings",
}

// listRootsCmd lists the roots available for a security type.
// Usage: theta list roots --sec OPTION
var listRootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "List roots for a security type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sec, err := theta.ParseSecurityType(listSec)
		if err != nil {
			return err
		}
		return client.WithSession(cmd.Context(), func(c *client.Client) error {
			roots, err := c.Roots(cmd.Context(), sec)
			if err != nil {
				return err
			}
			for _, r := range roots {
				fmt.Println(r)
			}
			return nil
		}, controlOptions()...)
	},
}

// listExpirationsCmd lists the expirations for an option root.
// Usage: theta list expirations AAPL
var listExpirationsCmd = &cobra.Command{
	Use:   "expirations <root>",
	Short: "List option expirations for a root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.WithSession(cmd.Context(), func(c *client.Client) error {
			exps, err := c.Expirations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDates(exps)
			return nil
		}, controlOptions()...)
	},
}

// listStrikesCmd lists the strike grid for a root and expiration.
// Usage: theta list strikes AAPL --exp 20221216
var listStrikesCmd = &cobra.Command{
	Use:   "strikes <root>",
	Short: "List the strike grid for a root and expiration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listExp == "" {
			return fmt.Errorf("strike listings need --exp")
		}
		exp, err := parseDate(listExp)
		if err != nil {
			return err
		}
		return client.WithSession(cmd.Context(), func(c *client.Client) error {
			strikes, err := c.Strikes(cmd.Context(), args[0], exp, nil)
			if err != nil {
				return err
			}
			for _, s := range strikes {
				fmt.Println(s)
			}
			return nil
		}, controlOptions()...)
	},
}

// listDatesCmd lists the dates with stored data for a contract.
// Usage: theta list dates AAPL --req QUOTE --exp 20221216 --strike 150 --right C
// Usage: theta list dates AAPL --stock --req TRADE
var listDatesCmd = &cobra.Command{
	Use:   "dates <root>",
	Short: "List dates with stored data for a contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.WithSession(cmd.Context(), func(c *client.Client) error {
			if listStock {
				req, err := theta.ParseStockReq(listReq)
				if err != nil {
					return err
				}
				dates, err := c.StockDates(cmd.Context(), client.DatesStockRequest{Req: req, Root: args[0]})
				if err != nil {
					return err
				}
				printDates(dates)
				return nil
			}

			req, err := theta.ParseOptionReq(listReq)
			if err != nil {
				return err
			}
			if listExp == "" || listStrike == "" || listRight == "" {
				return fmt.Errorf("option date listings need --exp, --strike, and --right")
			}
			exp, err := parseDate(listExp)
			if err != nil {
				return err
			}
			strike, err := parseStrike(listStrike)
			if err != nil {
				return err
			}
			right, err := theta.ParseRight(listRight)
			if err != nil {
				return err
			}
			dates, err := c.OptionDates(cmd.Context(), client.DatesOptionRequest{
				Req: req, Root: args[0], Exp: exp, Strike: strike, Right: right,
			})
			if err != nil {
				return err
			}
			printDates(dates)
			return nil
		}, controlOptions()...)
	},
}

var (
	listSec    string
	listExp    string
	listStrike string
	listRight  string
	listReq    string
	listStock  bool
)

// controlOptions builds the standard control-socket options from the
// loaded config.
func controlOptions() []client.Option {
	return []client.Option{
		client.WithHost(cfg.Terminal.Host),
		client.WithPort(cfg.Terminal.ControlPort),
		client.WithLogger(&logger),
		client.WithMetrics(requestMetrics),
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listRootsCmd)
	listCmd.AddCommand(listExpirationsCmd)
	listCmd.AddCommand(listStrikesCmd)
	listCmd.AddCommand(listDatesCmd)

	listRootsCmd.Flags().StringVar(&listSec, "sec", "OPTION", "security type (OPTION, STOCK, ...)")
	listStrikesCmd.Flags().StringVar(&listExp, "exp", "", "option expiration (YYYYMMDD)")
	listDatesCmd.Flags().StringVar(&listReq, "req", "QUOTE", "request type the dates apply to")
	listDatesCmd.Flags().StringVar(&listExp, "exp", "", "option expiration (YYYYMMDD)")
	listDatesCmd.Flags().StringVar(&listStrike, "strike", "", "option strike in USD")
	listDatesCmd.Flags().StringVar(&listRight, "right", "", "option right (C or P)")
	listDatesCmd.Flags().BoolVar(&listStock, "stock", false, "list stock dates instead of option dates")
}
