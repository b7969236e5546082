package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/support-portal/pkg/client"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "supportctl",
		Usage: "Terminal client for the support portal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://127.0.0.1:5000", Usage: "API base URL", Sources: cli.EnvVars("SUPPORTCTL_SERVER")},
			&cli.StringFlag{Name: "state", Usage: "session state file (default ~/.supportctl/session.json)", Sources: cli.EnvVars("SUPPORTCTL_STATE")},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
			&cli.BoolFlag{Name: "verbose", Usage: "log requests to stderr"},
		},
		Commands: []*cli.Command{
			registerCommand(),
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			ticketsCommand(),
			contactCommand(),
			demoCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// app bundles what every command needs.
type app struct {
	client *client.Client
	state  *stateStore
	log    *zap.Logger
	json   bool
}

func newApp(c *cli.Command) (*app, error) {
	log := zap.NewNop()
	if c.Bool("verbose") {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		built, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		log = built
	}

	state, err := openStateStore(c.String("state"))
	if err != nil {
		return nil, err
	}
	api, err := client.New(c.String("server"))
	if err != nil {
		return nil, err
	}
	if err := state.restore(api); err != nil {
		log.Warn("ignoring unreadable session state", zap.String("path", state.path), zap.Error(err))
	}
	log.Debug("client ready", zap.String("server", c.String("server")), zap.String("state", state.path))

	return &app{client: api, state: state, log: log, json: c.Bool("json")}, nil
}

// persist saves the jar after a call that may have rotated the session cookie.
func (a *app) persist() error {
	if err := a.state.save(a.client); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.log.Debug("session state saved", zap.String("path", a.state.path))
	return nil
}

func (a *app) close() {
	_ = a.log.Sync()
}
