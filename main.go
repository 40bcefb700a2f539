// Command tile2048 plays the 2048 sliding-tile puzzle.
//
// It supports four modes:
//  1. "play" (default) – a line-oriented game on stdin/stdout
//  2. "tui" – a full-screen terminal game driven by the arrow keys
//  3. "serve" – the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  4. "mcp" – an MCP stdio server that reuses an external API or spins up an internal one
//
// Global flags pick the variant and its overrides; serve flags control host/port
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/tile2048/api"
	"github.com/wricardo/tile2048/game/config"
	"github.com/wricardo/tile2048/game/console"
	"github.com/wricardo/tile2048/game/engine"
	"github.com/wricardo/tile2048/game/service"
	"github.com/wricardo/tile2048/game/session"
	"github.com/wricardo/tile2048/telemetry"
	"github.com/wricardo/tile2048/transport/mcp"
	"github.com/wricardo/tile2048/transport/websocket"
	"github.com/wricardo/tile2048/ui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "tile2048"
)

const (
	defaultPort       = 8080
	defaultAPIURL     = "http://localhost:8080"
	sessionMaxAge     = 24 * time.Hour
	cleanupInterval   = time.Hour
	shutdownTimeout   = 10 * time.Second
	apiProbeTimeout   = 2 * time.Second
	ngrokEnabledEnv   = "NGROK_ENABLED"
	ngrokAuthTokenEnv = "NGROK_AUTHTOKEN"
	ngrokDomainEnv    = "NGROK_DOMAIN"
)

// options are the global flags shared by every mode
type options struct {
	configDir string
	variant   string
	size      int
	target    int
	seed      uint64
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		}
	} else {
		log.Debug("Loaded environment variables from .env file")
	}

	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newRootCommand builds the CLI: global flags on the root, one subcommand per mode
func newRootCommand() *cli.Command {
	var shutdownTelemetry func(context.Context) error

	return &cli.Command{
		Name:    AppName,
		Usage:   "slide tiles, merge equal neighbours, reach the winning tile",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory with extra .json/.yaml variants",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:  "variant",
				Usage: "variant to play",
				Value: config.DefaultVariant,
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "override the board size (2-8)",
			},
			&cli.IntFlag{
				Name:  "target",
				Usage: "override the winning tile (a power of two)",
			},
			&cli.UintFlag{
				Name:  "seed",
				Usage: "random seed; 0 picks a random one",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
				log.SetReportCaller(true)
			}

			if telemetry.Enabled() {
				shutdown, err := telemetry.Setup(ctx, Version)
				if err != nil {
					return ctx, fmt.Errorf("failed to set up telemetry: %w", err)
				}
				shutdownTelemetry = shutdown
				log.Debug("OpenTelemetry tracing enabled")
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if shutdownTelemetry == nil {
				return nil
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return shutdownTelemetry(shutdownCtx)
		},
		Action: runPlay,
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "play on stdin/stdout, one direction per line",
				Action: runPlay,
			},
			{
				Name:   "tui",
				Usage:  "play full screen with the arrow keys",
				Action: runTUI,
			},
			{
				Name:  "serve",
				Usage: "run the HTTP server with REST API, WebSocket, and MCP endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "host",
						Usage: "HTTP server host",
						Value: "localhost",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "HTTP server port",
						Value: defaultPort,
					},
					&cli.BoolFlag{
						Name:    "ngrok",
						Usage:   "expose the server through an ngrok tunnel",
						Sources: cli.EnvVars(ngrokEnabledEnv),
					},
					&cli.StringFlag{
						Name:    "ngrok-auth",
						Usage:   "ngrok auth token",
						Sources: cli.EnvVars(ngrokAuthTokenEnv),
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "custom ngrok domain",
						Sources: cli.EnvVars(ngrokDomainEnv),
					},
				},
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server backed by the REST API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Usage:   "REST API to reuse; an internal server starts when it is unreachable",
						Value:   defaultAPIURL,
						Sources: cli.EnvVars("TILE2048_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
		},
	}
}

func optionsFromCommand(cmd *cli.Command) options {
	return options{
		configDir: cmd.String("config-dir"),
		variant:   cmd.String("variant"),
		size:      int(cmd.Int("size")),
		target:    int(cmd.Int("target")),
		seed:      uint64(cmd.Uint("seed")),
	}
}

// newConfigManager loads the variants and makes the selected one, with its
// overrides applied, the default for new games
func newConfigManager(opts options) (*config.Manager, *engine.GameConfig, error) {
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	base, err := configManager.LoadConfig(opts.variant)
	if err != nil {
		return nil, nil, err
	}

	selected, err := config.ApplyOverrides(base, opts.size, opts.target)
	if err != nil {
		return nil, nil, err
	}
	if selected != base {
		if err := configManager.Register(selected.Name, selected); err != nil {
			return nil, nil, err
		}
	}

	if err := configManager.SetDefault(selected.Name); err != nil {
		return nil, nil, err
	}
	return configManager, selected, nil
}

// newEngine starts a single local game of the selected variant
func newEngine(opts options) (*engine.GameEngine, error) {
	_, selected, err := newConfigManager(opts)
	if err != nil {
		return nil, err
	}
	return engine.NewEngine(selected, engine.NewRandomSource(opts.seed))
}

// initializeServices wires session/config managers and the game service
func initializeServices(opts options) (service.GameService, *session.Manager, error) {
	configManager, selected, err := newConfigManager(opts)
	if err != nil {
		return nil, nil, err
	}

	sessionManager := session.NewManagerWithRandom(session.SeededRandom(opts.seed))
	gameService := service.NewGameService(sessionManager, configManager)

	log.WithFields(log.Fields{
		"variant": selected.Name,
		"size":    selected.GridSize,
		"target":  selected.WinValue,
	}).Info("Game service ready")

	return gameService, sessionManager, nil
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)
	eng, err := newEngine(opts)
	if err != nil {
		return err
	}

	phase, err := console.NewGame(eng, os.Stdin, os.Stdout).Run(ctx)
	log.WithFields(log.Fields{
		"phase":    phase,
		"max_tile": eng.MaxTile(),
	}).Debug("Game finished")
	return err
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)
	eng, err := newEngine(opts)
	if err != nil {
		return err
	}

	screen, err := ui.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Close()

	return ui.NewApp(screen, eng).Run(ctx)
}

// newHandler mounts the REST API at the root and the MCP endpoint at /mcp. The
// MCP tools call back into the API at baseURL.
func newHandler(gameService service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub))
	mainRouter.Handle("/mcp", mcp.NewClient(baseURL))
	return mainRouter
}

// runServe starts the HTTP server and, when enabled, an ngrok tunnel serving
// the same handler. It returns after SIGINT/SIGTERM and a graceful shutdown.
func runServe(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)
	gameService, sessionManager, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessionCleanupRoutine(ctx, sessionManager, cleanupInterval, sessionMaxAge)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := net.JoinHostPort(cmd.String("host"), strconv.Itoa(int(cmd.Int("port"))))
	handler := newHandler(gameService, hub, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, handler, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"))
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Info("Server stopped")
	return nil
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, handler http.Handler, authToken, domain string) {
	if authToken == "" {
		log.Warnf("Ngrok enabled but no auth token provided (use --ngrok-auth or %s)", ngrokAuthTokenEnv)
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Infof("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Errorf("Failed to start ngrok tunnel: %v", err)
		return
	}

	// Close the tunnel on shutdown so http.Serve returns
	stopClose := context.AfterFunc(ctx, func() {
		if err := tun.Close(); err != nil {
			log.Errorf("Failed to close ngrok tunnel: %v", err)
		}
	})
	defer stopClose()

	ngrokURL := tun.URL()
	log.Infof("Ngrok tunnel established: %s", ngrokURL)
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Errorf("Ngrok server error: %v", err)
	}
	log.Info("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge, until ctx is done
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Infof("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// apiReachable reports whether a REST API answers its health check at baseURL
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, apiProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalServer serves the REST API on a random loopback port and
// returns its base URL. The server stops when ctx is done.
func startInternalServer(ctx context.Context, gameService service.GameService) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Internal HTTP server error: %v", err)
		}
	}()
	context.AfterFunc(ctx, func() { httpServer.Close() })

	baseURL := "http://" + listener.Addr().String()
	log.Infof("Started internal HTTP server on %s for MCP stdio", baseURL)
	return baseURL, nil
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// it answers, otherwise it starts an internal one on a loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := cmd.String("api-url")
	log.Infof("Checking for external API server at %s...", baseURL)

	if apiReachable(ctx, baseURL) {
		log.Infof("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Info("No external API server found, starting internal HTTP server")

		gameService, _, err := initializeServices(optionsFromCommand(cmd))
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		baseURL, err = startInternalServer(ctx, gameService)
		if err != nil {
			return err
		}
	}

	log.Info("MCP stdio server ready")
	return server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())
}
