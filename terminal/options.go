package terminal

import (
	"time"

	"github.com/rs/zerolog"
)

// Config holds Terminal supervisor settings.
type Config struct {
	// Dir is the working directory holding the jar and the creds file.
	Dir string
	// JarName is the distribution jar inside Dir.
	JarName string
	// JavaPath is the JVM binary; resolved through PATH by default.
	JavaPath string
	// JVMMemGB caps the JVM heap with -Xmx when positive.
	JVMMemGB int

	// Username and Password are passed on the command line when set.
	// Terminals provisioned with a creds file don't need them.
	Username string
	Password string

	// Host and ports probed for readiness and status.
	Host        string
	ControlPort int
	StreamPort  int
	RESTPort    int

	// ReadyTimeout bounds WaitReady. The Terminal authenticates upstream
	// before it listens, so the first start can take a while.
	ReadyTimeout time.Duration
	// ProbeInterval is the delay between readiness probes.
	ProbeInterval time.Duration
	// StopGrace is how long Stop waits after an interrupt before killing.
	StopGrace time.Duration
}

// DefaultConfig returns settings for a Terminal on the local machine.
func DefaultConfig() *Config {
	return &Config{
		Dir:           ".",
		JarName:       JarName,
		JavaPath:      "java",
		Host:          "127.0.0.1",
		ControlPort:   11000,
		StreamPort:    10000,
		RESTPort:      25510,
		ReadyTimeout:  60 * time.Second,
		ProbeInterval: 250 * time.Millisecond,
		StopGrace:     5 * time.Second,
	}
}

// Option configures a Process.
type Option func(*Process)

// WithConfig replaces the whole configuration.
func WithConfig(cfg *Config) Option {
	return func(p *Process) {
		if cfg != nil {
			p.cfg = cfg
		}
	}
}

// WithDir sets the working directory for the jar and creds file.
func WithDir(dir string) Option {
	return func(p *Process) {
		p.cfg.Dir = dir
	}
}

// WithJavaPath sets the JVM binary to launch.
func WithJavaPath(path string) Option {
	return func(p *Process) {
		p.cfg.JavaPath = path
	}
}

// WithJVMMem caps the JVM heap in gigabytes.
func WithJVMMem(gb int) Option {
	return func(p *Process) {
		p.cfg.JVMMemGB = gb
	}
}

// WithCreds passes credentials on the Terminal command line.
func WithCreds(username, password string) Option {
	return func(p *Process) {
		p.cfg.Username = username
		p.cfg.Password = password
	}
}

// WithLogger sets the logger the Terminal's output is piped into.
func WithLogger(log *zerolog.Logger) Option {
	return func(p *Process) {
		if log != nil {
			p.log = *log
		}
	}
}
