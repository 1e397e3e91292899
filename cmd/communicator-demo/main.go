// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Communicator-demo connects to a chat server, lists the channels the
// account belongs to, and tails the real-time event stream. It doubles
// as a smoke test for the full engine surface: handles, connect,
// subscribe, stream requests, and polling.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/communicator/engine"
	"github.com/bureau-foundation/communicator/lib/version"
	"github.com/bureau-foundation/communicator/platform"
)

// demoConfig is the yaml config file's shape. Flags override fields.
type demoConfig struct {
	Server   string `yaml:"server"`
	Token    string `yaml:"token"`
	LoginID  string `yaml:"login_id"`
	Password string `yaml:"password"`
	TeamID   string `yaml:"team_id"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var server string
	var token string
	var teamID string
	var pollInterval time.Duration
	var duration time.Duration
	var showVersion bool

	pflag.StringVar(&configPath, "config", "", "path to yaml config file")
	pflag.StringVar(&server, "server", "", "chat server base URL (overrides config)")
	pflag.StringVar(&token, "token", "", "personal access token (overrides config)")
	pflag.StringVar(&teamID, "team", "", "team scope (overrides config)")
	pflag.DurationVar(&pollInterval, "poll-interval", 250*time.Millisecond, "event poll cadence")
	pflag.DurationVar(&duration, "duration", 0, "stop after this long (0 means run until interrupted)")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("communicator-demo %s\n", version.Full())
		return nil
	}

	var config demoConfig
	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &config); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}
	if server != "" {
		config.Server = server
	}
	if token != "" {
		config.Token = token
	}
	if teamID != "" {
		config.TeamID = teamID
	}
	if config.Server == "" {
		return fmt.Errorf("a server URL is required (--server or config file)")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.New(logger)
	eng.Init()
	defer eng.Cleanup(context.Background())

	handle, err := eng.CreatePlatform(platform.Options{Logger: logger})
	if err != nil {
		return err
	}
	p, err := eng.Platform(handle)
	if err != nil {
		return err
	}
	defer eng.DestroyPlatform(context.Background(), handle)

	info, err := p.Connect(ctx, platform.ConnectConfig{
		Server: config.Server,
		Credentials: platform.Credentials{
			Token:    config.Token,
			LoginID:  config.LoginID,
			Password: config.Password,
		},
		TeamID: config.TeamID,
	})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	fmt.Printf("connected to %s as %s (%s)\n", info.ServerURL, info.Username, info.UserID)

	client, err := p.Client()
	if err != nil {
		return err
	}
	if config.TeamID == "" {
		teams, err := client.MyTeams(ctx)
		if err != nil {
			return fmt.Errorf("listing teams: %w", err)
		}
		if len(teams) == 0 {
			return fmt.Errorf("account belongs to no teams; supply --team")
		}
		if err := p.SetTeamID(teams[0].ID); err != nil {
			return err
		}
		fmt.Printf("using team %q\n", teams[0].DisplayName)
	}

	channels, err := client.MyChannels(ctx)
	if err != nil {
		return fmt.Errorf("listing channels: %w", err)
	}
	fmt.Printf("member of %d channels:\n", len(channels))
	for _, channel := range channels {
		fmt.Printf("  [%s] %s\n", channel.Type, channel.DisplayName)
	}

	if err := p.SubscribeEvents(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	seq, err := p.RequestAllStatuses()
	if err != nil {
		return fmt.Errorf("requesting statuses: %w", err)
	}
	fmt.Printf("requested all statuses (seq %d), polling for events...\n", seq)

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return shutdown(p)
		case <-ticker.C:
			for {
				event, ok := p.PollEvent()
				if !ok {
					break
				}
				printEvent(event)
			}
			if !p.IsConnected() {
				return fmt.Errorf("connection lost")
			}
		}
	}
}

func shutdown(p *platform.Platform) error {
	_ = p.UnsubscribeEvents()
	return p.Disconnect(context.Background())
}

func printEvent(event platform.Event) {
	switch event.Type {
	case platform.EventMessagePosted:
		fmt.Printf("[%s] message in %s from %s: %s\n",
			event.Type, event.Post.ChannelID, event.Post.UserID, event.Post.Message)
	case platform.EventStatusesReply:
		fmt.Printf("[%s] seq %d: %d statuses\n", event.Type, event.SeqReply, len(event.Statuses))
		for userID, status := range event.Statuses {
			fmt.Printf("  %s: %s\n", userID, status)
		}
	case platform.EventTyping:
		fmt.Printf("[%s] %s is typing in %s\n", event.Type, event.UserID, event.ChannelID)
	case platform.EventStatusChanged:
		fmt.Printf("[%s] %s is now %s\n", event.Type, event.UserID, event.Status)
	default:
		fmt.Printf("[%s] %+v\n", event.Type, event)
	}
}
