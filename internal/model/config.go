package model

import "time"

// Config carries everything a run needs. Values come from defaults,
// then an optional ini file, then command line flags.
type Config struct {
	ProxyType         string `ini:"type"`
	InputFile         string `ini:"file"`
	OutputFile        string `ini:"output"`
	OutputFormat      string `ini:"format"` // txt, json or csv
	MaxTasks          int    `ini:"max_tasks"`
	TimeoutSeconds    int    `ini:"timeout"`
	MaxRetries        int    `ini:"retries"`     // extra attempts after a timeout
	RetryDelaySeconds int    `ini:"retry_delay"` // wait between timed-out attempts
	ProbeTarget       string `ini:"probe_target"`
	ShowDead          bool   `ini:"show_dead"`
	Verbose           bool   `ini:"verbose"`
}

// DefaultConfig returns the documented defaults: 5s per attempt, one
// retry after a timeout with a 3s delay, 50 concurrent checks, and the
// ipify endpoint as probe target.
func DefaultConfig() Config {
	return Config{
		ProxyType:         string(ProtocolSOCKS5),
		OutputFormat:      "txt",
		MaxTasks:          50,
		TimeoutSeconds:    5,
		MaxRetries:        1,
		RetryDelaySeconds: 3,
		ProbeTarget:       "api.ipify.org:443",
	}
}

// Timeout is the per-attempt deadline.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay is the pause between a timed-out attempt and the next one.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// Protocol returns the parsed proxy type. Call Validate first.
func (c Config) Protocol() Protocol {
	p, _ := ParseProtocol(c.ProxyType)
	return p
}
