package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thetafeed/theta-go/client"
	"github.com/thetafeed/theta-go/terminal"
)

// terminalCmd groups the Terminal process commands.
var terminalCmd = &cobra.Command{
	Use:   "terminal",
	Short: "Manage the Theta Terminal process",
}

// terminalDownloadCmd fetches the latest Terminal distribution.
// Usage: theta terminal download
var terminalDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the latest Terminal jar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := filepath.Join(cfg.Terminal.Dir, terminal.JarName)
		logger.Info().Str("dest", dest).Msg("downloading terminal")
		if err := terminal.Download(cmd.Context(), dest); err != nil {
			return err
		}
		fmt.Println("downloaded", dest)
		return nil
	},
}

// terminalStartCmd launches the Terminal and supervises it in the
// foreground until interrupted.
// Usage: theta terminal start
var terminalStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Launch and supervise the Terminal",
	Long: `Launch the Terminal jar and supervise it in the foreground. Credentials
come from THETA_USERNAME and THETA_PASSWORD (or a .env file); a Terminal
provisioned with a creds file needs neither. Ctrl+C stops the Terminal
gracefully.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		opts := []terminal.Option{
			terminal.WithDir(cfg.Terminal.Dir),
			terminal.WithJavaPath(cfg.Terminal.JavaPath),
			terminal.WithJVMMem(cfg.Terminal.JVMMemGB),
			terminal.WithLogger(&logger),
		}
		if u, p := os.Getenv("THETA_USERNAME"), os.Getenv("THETA_PASSWORD"); u != "" {
			opts = append(opts, terminal.WithCreds(u, p))
		}

		proc := terminal.New(opts...)
		if err := proc.Start(ctx); err != nil {
			return err
		}
		if err := proc.WaitReady(ctx); err != nil {
			stopCtx, cancel := shutdownContext()
			defer cancel()
			_ = proc.Stop(stopCtx)
			return err
		}
		logger.Info().Int("control", cfg.Terminal.ControlPort).Msg("terminal ready")

		select {
		case <-ctx.Done():
			stopCtx, cancel := shutdownContext()
			defer cancel()
			return proc.Stop(stopCtx)
		case err := <-waitChan(proc):
			if err != nil {
				return fmt.Errorf("terminal exited: %w", err)
			}
			return nil
		}
	},
}

// terminalStatusCmd probes the Terminal's three ports.
// Usage: theta terminal status
var terminalStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the Terminal's ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := terminal.Check(cfg.Terminal.Host,
			cfg.Terminal.ControlPort, cfg.Terminal.StreamPort, cfg.Terminal.RESTPort,
			2*time.Second)
		fmt.Printf("control (%d): %s\n", cfg.Terminal.ControlPort, upDown(st.Control))
		fmt.Printf("stream  (%d): %s\n", cfg.Terminal.StreamPort, upDown(st.Stream))
		fmt.Printf("rest    (%d): %s\n", cfg.Terminal.RESTPort, upDown(st.REST))
		if !st.Control {
			return fmt.Errorf("terminal is not reachable")
		}
		return nil
	},
}

// terminalStopCmd asks a running Terminal to exit over the control socket.
// Usage: theta terminal stop
var terminalStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask a running Terminal to exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// A single dial attempt: if nothing is listening there is nothing to
		// stop.
		cc := client.DefaultConfig()
		cc.Host = cfg.Terminal.Host
		cc.Port = cfg.Terminal.ControlPort
		cc.ConnectAttempts = 1

		c := client.NewClient(client.WithConfig(cc), client.WithLogger(&logger))
		if err := c.Connect(cmd.Context()); err != nil {
			return fmt.Errorf("no terminal to stop: %w", err)
		}
		if err := c.Kill(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("terminal stopping")
		return nil
	},
}

// loginCmd prompts for credentials and writes the Terminal's creds file.
// Usage: theta login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store Terminal credentials",
	Long: `Prompt for the Theta Data account email and password and write them to
the creds file in the Terminal directory. The Terminal reads the file on
startup, so "theta terminal start" needs no environment variables after
this.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rd := bufio.NewReader(os.Stdin)
		fmt.Print("Email: ")
		user, err := rd.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}
		user = strings.TrimSpace(user)
		if user == "" {
			return fmt.Errorf("email is required")
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to read a password from a non-terminal stdin")
		}
		fmt.Print("Password: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		path, err := terminal.WriteCreds(cfg.Terminal.Dir, user, string(pw))
		if err != nil {
			return err
		}
		fmt.Println("credentials written to", path)
		return nil
	},
}

// shutdownContext gives Stop its own deadline: the command context is
// already cancelled by the time we get here.
func shutdownContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// waitChan adapts Process.Wait to a channel for select.
func waitChan(p *terminal.Process) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- p.Wait() }()
	return ch
}

func upDown(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}

func init() {
	rootCmd.AddCommand(terminalCmd)
	rootCmd.AddCommand(loginCmd)
	terminalCmd.AddCommand(terminalDownloadCmd)
	terminalCmd.AddCommand(terminalStartCmd)
	terminalCmd.AddCommand(terminalStatusCmd)
	terminalCmd.AddCommand(terminalStopCmd)
}
