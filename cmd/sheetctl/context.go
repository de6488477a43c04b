package main

import (
	"errors"
	"fmt"

	"sheetd/internal/config"
	"sheetd/internal/ipc"
)

// commandContext resolves configuration lazily and hands out daemon
// connections to subcommands.
type commandContext struct {
	socketFlag *string
	configFlag *string

	cfg *config.Config
}

func newCommandContext(socketFlag, configFlag *string) *commandContext {
	return &commandContext{socketFlag: socketFlag, configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, _, _, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) socketPath() (string, error) {
	if *c.socketFlag != "" {
		return *c.socketFlag, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.SocketPath, nil
}

// dial connects to the daemon socket. Callers close the returned client.
func (c *commandContext) dial() (*ipc.Client, error) {
	socket, err := c.socketPath()
	if err != nil {
		return nil, err
	}
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, fmt.Errorf("connect to sheetd at %s (is the daemon running?): %w", socket, err)
	}
	return client, nil
}

// opError converts an in-band operation failure into a command error.
type opStatus interface {
	Failed() bool
	Err() string
	Kind() string
}

func opError(result opStatus) error {
	if !result.Failed() {
		return nil
	}
	if result.Kind() != "" {
		return fmt.Errorf("%s (%s)", result.Err(), result.Kind())
	}
	return errors.New(result.Err())
}
