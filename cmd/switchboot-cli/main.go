// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Switchboot-cli is the privileged-elevation bridge for switchboot.
// One binary fills three roles:
//
//   - Broker (the default): runs unprivileged, makes sure the service
//     side is up, connects to it, and bridges a line-oriented stdio
//     protocol to the encrypted channel. The parent process writes
//     one JSON argv array per line and reads one {"code","message"}
//     object per line. The broker-listen command is the inverted
//     form: it hosts the endpoint and bridges stdio to an elevated
//     helper that dials back in via connect.
//
//   - Service: runs elevated under the Windows service control
//     manager, listens on the named endpoint, and executes commands
//     on behalf of the broker. The serve command runs the same
//     listener standalone for development and non-Windows use, and
//     the connect command is the dial-back form for an externally
//     elevated helper.
//
//   - Manager: installs, starts, stops, and removes the service
//     registration (install grants every local user the right to
//     start the service, so the broker needs no elevation).
//
// Both sides must be the same installation: the connecting side
// proves its executable path and binary digest inside the encrypted
// channel before any command is served.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/moooozi/switchboot/ipc"
	"github.com/moooozi/switchboot/lib/config"
	"github.com/moooozi/switchboot/lib/process"
	"github.com/moooozi/switchboot/lib/secret"
	"github.com/moooozi/switchboot/lib/version"
	"github.com/moooozi/switchboot/transport"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		keyFile     string
		showVersion bool
	)
	pflag.StringVar(&configPath, "config", "", "path to the YAML config file (default $"+config.EnvVar+")")
	pflag.StringVar(&keyFile, "key-file", "", "path to a hex-encoded 256-bit channel key (overrides the config)")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Println(version.Full())
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if keyFile != "" {
		cfg.Endpoint.KeyFile = keyFile
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	command := "broker"
	if args := pflag.Args(); len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "broker":
		return runBroker(cfg, logger)
	case "broker-listen":
		return runBrokerListen(cfg, logger)
	case "serve":
		return runServe(cfg, logger)
	case "connect":
		return runConnect(cfg, logger)
	case "service":
		return runService(cfg, logger)
	case "install":
		return installService(cfg, logger)
	case "uninstall":
		return uninstallService(cfg, logger)
	case "start":
		return startService(cfg, logger)
	case "stop":
		return stopService(cfg, logger)
	case "import-key":
		return runImportKey(cfg)
	case "version":
		fmt.Println(version.Full())
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// channelCipher builds the channel cipher from the configured key
// file, or the compiled-in key when none is configured.
func channelCipher(cfg config.Config) (*transport.Cipher, error) {
	if cfg.Endpoint.KeyFile == "" {
		return transport.NewCipher(transport.DefaultKey())
	}
	key, err := secret.ReadKeyHex(cfg.Endpoint.KeyFile, transport.KeySize)
	if err != nil {
		return nil, err
	}
	defer key.Close()
	return transport.NewCipher(key.Bytes())
}

// commandRegistry builds the dispatcher for the elevated side.
func commandRegistry() *ipc.Registry {
	registry := ipc.NewRegistry()
	registry.Handle("ping", func(context.Context, []string) (any, error) {
		return "pong", nil
	})
	registry.Handle("version", func(context.Context, []string) (any, error) {
		return version.Info(), nil
	})
	return registry
}

// listenerWorker adapts the transport listener to the service state
// machine's worker contract.
type listenerWorker struct {
	*transport.Listener
}

func (w listenerWorker) Run(ctx context.Context) error {
	return w.Serve(ctx)
}

// newWorker assembles the elevated side: cipher, identity check, and
// the listener serving the command registry.
func newWorker(cfg config.Config, logger *slog.Logger) (listenerWorker, error) {
	cipher, err := channelCipher(cfg)
	if err != nil {
		return listenerWorker{}, err
	}
	identity, err := transport.LocalIdentity()
	if err != nil {
		return listenerWorker{}, err
	}
	registry := commandRegistry()

	listener := transport.NewListener(transport.ListenerConfig{
		Endpoint:     cfg.Endpoint.Name,
		Cipher:       cipher,
		MaxFrameSize: cfg.Endpoint.MaxFrameSize,
		Policy: transport.Policy{
			MaxIdle:          cfg.Listener.MaxIdle.Std(),
			WaitForNewClient: cfg.Listener.WaitForNewClient,
		},
		Expected: &identity,
		Handler: func(ctx context.Context, conn *transport.Conn) {
			ipc.ServeConn(ctx, conn, registry, logger)
		},
		Logger: logger,
	})
	return listenerWorker{listener}, nil
}

// runServe runs the elevated listener in the foreground, outside any
// service manager.
func runServe(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker, err := newWorker(cfg, logger)
	if err != nil {
		return err
	}
	return worker.Run(ctx)
}

// runConnect is the dial-back elevated form: launched with elevated
// rights by an external prompt, it connects out to the unprivileged
// side's endpoint, proves its identity, and serves commands over the
// dialed connection until the peer disconnects.
func runConnect(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cipher, err := channelCipher(cfg)
	if err != nil {
		return err
	}
	identity, err := transport.LocalIdentity()
	if err != nil {
		return err
	}

	conn, err := transport.Dial(ctx, transport.DialConfig{
		Endpoint:     cfg.Endpoint.Name,
		Cipher:       cipher,
		MaxFrameSize: cfg.Endpoint.MaxFrameSize,
		Attempts:     cfg.Broker.ConnectAttempts,
		RetryDelay:   cfg.Broker.ConnectRetryDelay.Std(),
		Identity:     &identity,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	ipc.ServeConn(ctx, conn, commandRegistry(), logger)
	return nil
}

// runBroker makes sure the service side is available, connects, and
// bridges stdio until EOF.
func runBroker(cfg config.Config, logger *slog.Logger) error {
	if err := ensureService(cfg, logger); err != nil {
		return err
	}
	defer releaseService(cfg, logger)

	cipher, err := channelCipher(cfg)
	if err != nil {
		return err
	}
	identity, err := transport.LocalIdentity()
	if err != nil {
		return err
	}

	conn, err := transport.Dial(context.Background(), transport.DialConfig{
		Endpoint:     cfg.Endpoint.Name,
		Cipher:       cipher,
		MaxFrameSize: cfg.Endpoint.MaxFrameSize,
		Attempts:     cfg.Broker.ConnectAttempts,
		RetryDelay:   cfg.Broker.ConnectRetryDelay.Std(),
		Identity:     &identity,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	return ipc.NewBroker(ipc.NewClient(conn), os.Stdin, os.Stdout, logger).Run()
}

// runBrokerListen hosts the stdio bridge as the listening side. This
// is the arrangement without a service registration: an externally
// elevated helper runs the connect command, dials back in, proves its
// identity, and executes the commands. The listener's idle window
// bounds how long the helper gets to appear.
func runBrokerListen(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cipher, err := channelCipher(cfg)
	if err != nil {
		return err
	}
	identity, err := transport.LocalIdentity()
	if err != nil {
		return err
	}

	// The handler runs in the Serve goroutine, so these are settled
	// before Serve returns.
	served := false
	var sessionErr error
	listener := transport.NewListener(transport.ListenerConfig{
		Endpoint:     cfg.Endpoint.Name,
		Cipher:       cipher,
		MaxFrameSize: cfg.Endpoint.MaxFrameSize,
		Policy: transport.Policy{
			MaxIdle:          cfg.Listener.MaxIdle.Std(),
			WaitForNewClient: false,
		},
		Expected: &identity,
		Handler: func(_ context.Context, conn *transport.Conn) {
			served = true
			sessionErr = ipc.NewBroker(ipc.NewClient(conn), os.Stdin, os.Stdout, logger).Run()
		},
		Logger: logger,
	})

	if err := listener.Serve(ctx); err != nil {
		return err
	}
	if !served {
		return fmt.Errorf("elevated helper never connected to %s", cfg.Endpoint.Name)
	}
	return sessionErr
}

// runImportKey prompts for a channel key and stores it at the
// configured key file path.
func runImportKey(cfg config.Config) error {
	if cfg.Endpoint.KeyFile == "" {
		return fmt.Errorf("no key file configured; set endpoint.key_file or pass --key-file")
	}
	key, err := secret.PromptKeyHex("channel key (64 hex digits): ", transport.KeySize)
	if err != nil {
		return err
	}
	defer key.Close()

	encoded := []byte(hex.EncodeToString(key.Bytes()))
	defer secret.Zero(encoded)
	if err := os.WriteFile(cfg.Endpoint.KeyFile, encoded, 0o600); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}
	fmt.Printf("key stored at %s\n", cfg.Endpoint.KeyFile)
	return nil
}
