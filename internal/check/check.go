// Package check audits a glrhs setup: configuration, plugin API, websocket
// endpoint, popout socket and event journal.
package check

import (
	"context"
	"fmt"
	"net"

	"github.com/kastheco/glrhs/config"
	"github.com/kastheco/glrhs/config/journal"
	"github.com/kastheco/glrhs/model"
)

// Status is the outcome of one probe.
type Status int

const (
	StatusOK   Status = iota // probe passed
	StatusWarn               // optional feature unavailable
	StatusFail               // the client cannot work like this
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Glyph is the one-character marker used in reports.
func (s Status) Glyph() string {
	switch s {
	case StatusOK:
		return "✓"
	case StatusWarn:
		return "⊘"
	default:
		return "✗"
	}
}

// Result is one probe's outcome.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report is the complete audit.
type Report struct {
	Results []Result
}

// Summary returns how many probes did not fail out of how many ran.
func (r Report) Summary() (ok, total int) {
	for _, res := range r.Results {
		if res.Status != StatusFail {
			ok++
		}
	}
	return ok, len(r.Results)
}

// Healthy reports whether no probe failed.
func (r Report) Healthy() bool {
	ok, total := r.Summary()
	return ok == total
}

// Probe checks one thing. A failing optional probe is reported as a warning.
type Probe struct {
	Name     string
	Optional bool
	Run      func(ctx context.Context) (detail string, err error)
}

// Run executes probes in order. Later probes still run after a failure.
func Run(ctx context.Context, probes []Probe) Report {
	var report Report
	for _, p := range probes {
		detail, err := p.Run(ctx)
		res := Result{Name: p.Name, Status: StatusOK, Detail: detail}
		if err != nil {
			res.Status = StatusFail
			if p.Optional {
				res.Status = StatusWarn
			}
			res.Detail = err.Error()
		}
		report.Results = append(report.Results, res)
	}
	return report
}

// Connector is the part of the plugin API the audit talks to.
type Connector interface {
	GetConnected(ctx context.Context, reminder bool) (*model.ConnectedData, error)
}

// DialFunc opens a connection to the popout socket.
type DialFunc func(ctx context.Context, path string) error

// DialUnix dials path and closes the connection right away.
func DialUnix(ctx context.Context, path string) error {
	var d net.Dialer
	c, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return err
	}
	return c.Close()
}

// Probes returns the standard audit for cfg. api may be nil when the config is
// too broken to build a client; the API probe then fails.
func Probes(cfg *config.Config, api Connector, dial DialFunc) []Probe {
	return []Probe{
		{
			Name: "config",
			Run: func(context.Context) (string, error) {
				if err := cfg.Validate(); err != nil {
					return "", err
				}
				return cfg.ServerHost() + " " + cfg.PluginID, nil
			},
		},
		{
			Name: "plugin api",
			Run: func(ctx context.Context) (string, error) {
				if api == nil {
					return "", fmt.Errorf("no client for %s", cfg.APIBaseURL())
				}
				data, err := api.GetConnected(ctx, false)
				if err != nil {
					return "", err
				}
				if data == nil || !data.Connected {
					return "reachable, gitlab account not connected", nil
				}
				return "connected as @" + data.GitlabUsername, nil
			},
		},
		{
			Name: "websocket",
			Run: func(context.Context) (string, error) {
				return cfg.WebSocketURL()
			},
		},
		{
			Name:     "popout socket",
			Optional: true,
			Run: func(ctx context.Context) (string, error) {
				if cfg.PopoutSocket == "" {
					return "", fmt.Errorf("popouts disabled")
				}
				if err := dial(ctx, cfg.PopoutSocket); err != nil {
					return "", fmt.Errorf("no main window on %s", cfg.PopoutSocket)
				}
				return "main window listening on " + cfg.PopoutSocket, nil
			},
		},
		{
			Name:     "journal",
			Optional: true,
			Run: func(context.Context) (string, error) {
				if cfg.JournalPath == "" {
					return "", fmt.Errorf("journal disabled")
				}
				j, err := journal.Open(cfg.JournalPath)
				if err != nil {
					return "", err
				}
				if err := j.Close(); err != nil {
					return "", err
				}
				return cfg.JournalPath, nil
			},
		},
	}
}
