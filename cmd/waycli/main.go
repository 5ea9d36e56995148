package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/waylis/waycli/internal/cli"
	"github.com/waylis/waycli/internal/config"
	"github.com/waylis/waycli/internal/events"
	"github.com/waylis/waycli/internal/logging"
	"github.com/waylis/waycli/internal/settings"
	"github.com/waylis/waycli/internal/state"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "chat":
		cmdChat()
	case "status":
		cmdStatus()
	case "onboard":
		cli.RunOnboard()
	case "logout":
		cmdLogout()
	case "version", "--version", "-v":
		fmt.Println(cli.TitleStyle.Render(
			fmt.Sprintf("  %s waycli v%s", cli.Logo, cli.Version),
		))
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	dim := cli.DimStyle.Render
	fmt.Println()
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("  %s waycli", cli.Logo)) + dim(" — Terminal client for Waylis apps"))
	fmt.Println()
	fmt.Println("  " + cli.BoldStyle.Render("Usage"))
	fmt.Println()
	fmt.Printf("    waycli %-10s %s\n", "chat", dim("Interactive chat"))
	fmt.Printf("    waycli %-10s %s\n", "status", dim("Show configuration and server state"))
	fmt.Printf("    waycli %-10s %s\n", "onboard", dim("Initialize setup"))
	fmt.Printf("    waycli %-10s %s\n", "logout", dim("Invalidate the server session"))
	fmt.Printf("    waycli %-10s %s\n", "version", dim("Show version"))
	fmt.Println()
	fmt.Println("  " + cli.BoldStyle.Render("Flags"))
	fmt.Println()
	fmt.Printf("    %-17s %s\n", "--server, -s URL", dim("Override the server URL"))
	fmt.Printf("    %-17s %s\n", "--token, -t TOKEN", dim("Identity token, spent on first auth"))
	fmt.Println()
}

// --- chat command ---

func cmdChat() {
	cfg := mustLoadConfig()
	applyFlags(cfg)
	redirectLogs(cfg)

	store := settings.NewStore(config.DataDir())
	cli.ApplyAccent(store.Settings().AccentColor)

	app := state.NewApp(cfg, store)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Establish the session before the stream connects; the identity
	// token, if any, is spent here.
	if err := app.API.Auth(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrStyle.Render("  Error: "+err.Error()))
		fmt.Fprintln(os.Stderr, cli.DimStyle.Render("  Is the server at "+cfg.ServerURL+" running?"))
		os.Exit(1)
	}

	stream := events.NewStream(app.API)
	if err := cli.RunChat(ctx, app, stream); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// --- status command ---

func cmdStatus() {
	cfg := mustLoadConfig()
	applyFlags(cfg)
	setupLogs(cfg, os.Stderr, true)
	cli.RunStatus(context.Background(), cfg)
}

// --- logout command ---

func cmdLogout() {
	cfg := mustLoadConfig()
	applyFlags(cfg)
	setupLogs(cfg, os.Stderr, true)

	app := state.NewApp(cfg, settings.NewStore(config.DataDir()))
	if err := app.API.Logout(context.Background()); err != nil {
		fmt.Println()
		fmt.Println(cli.ErrStyle.Render("  Error: " + err.Error()))
		os.Exit(1)
	}
	fmt.Println()
	fmt.Println("  " + cli.OkStyle.Render("✓") + " Logged out")
	fmt.Println()
}

// --- helpers ---

// applyFlags overrides resolved config with command-line flags, the
// highest-precedence source.
func applyFlags(cfg *config.Config) {
	for i := 2; i < len(os.Args)-1; i++ {
		switch os.Args[i] {
		case "--server", "-s":
			cfg.ServerURL = os.Args[i+1]
		case "--token", "-t":
			cfg.IdentityToken = os.Args[i+1]
		}
	}
}

// redirectLogs sends diagnostics to a file so they never write over
// the TUI.
func redirectLogs(cfg *config.Config) {
	logPath := filepath.Join(config.DataDir(), "waycli.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.SetDefault(slog.New(logging.NewHandler(io.Discard, nil)))
		return
	}
	setupLogs(cfg, f, false)
}

func setupLogs(cfg *config.Config, w io.Writer, color bool) {
	slog.SetDefault(slog.New(logging.NewHandler(w, &logging.Options{
		Level: logging.ParseLevel(cfg.LogLevel),
		Color: color,
	})))
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
	}
	return cfg
}
