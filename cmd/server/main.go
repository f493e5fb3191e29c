package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/compasshq/compass-mcp/internal/config"
	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/domain/outcome"
	"github.com/compasshq/compass-mcp/internal/domain/question"
	"github.com/compasshq/compass-mcp/internal/engine"
	"github.com/compasshq/compass-mcp/internal/mcp"
	"github.com/compasshq/compass-mcp/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := setupLogging(cfg)
	defer closeLog()

	db, err := openDatabase(cfg.DB.Path)
	if err != nil {
		logger.Error("database setup failed", "path", cfg.DB.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	eng, err := newEngine(cfg.Engine)
	if err != nil {
		logger.Error("failed to configure engine", "error", err)
		os.Exit(1)
	}

	decisionRepo := sqlite.NewDecisionRepository(db)
	nodeRepo := sqlite.NewNodeRepository(db)
	navRepo := sqlite.NewNavigationRepository(db)
	outcomeRepo := sqlite.NewOutcomeRepository(db)
	eventRepo := sqlite.NewEventRepository(db)
	searchRepo := sqlite.NewSearchRepository(db)

	// One keyed mutex shared by the decision service and the calibrator,
	// so outcome logging serializes with other mutations on a decision.
	locks := decision.NewKeyedMutex()

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Decisions: decision.NewService(decisionRepo, nodeRepo, navRepo, eventRepo, eng, locks, logger).Tune(question.Tuning{
				QuestionCap:          cfg.Engine.QuestionCap,
				DiminishingWindow:    cfg.Engine.DiminishingWindow,
				DiminishingThreshold: cfg.Engine.DiminishingThreshold,
			}),
			Outcomes:  outcome.NewCalibrator(outcomeRepo, nodeRepo, decisionRepo, eventRepo, locks, logger),
			Events:    event.NewService(eventRepo, logger),
			Search:    searchRepo,
		},
		Resolver:      &apiKeyResolver{db: db},
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		serveStdio(logger, mcpServer)
		return
	}
	serveHTTP(logger, mcpServer, fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
}

// setupLogging picks the log destination. Stdio mode must keep stdout
// clean for JSON-RPC, so logs go to stderr unless a file path is set.
func setupLogging(cfg config.Config) (*slog.Logger, func()) {
	out := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		out = os.Stderr
	}
	closer := func() {}
	if cfg.Log.Path != "" {
		if w, err := openLogFile(cfg.Log.Path); err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			out = w
			closer = func() { _ = w.file.Close() }
		}
	}
	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	level, ok := levels[cfg.Log.Level]
	if !ok {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closer
}

func openDatabase(path string) (*sqlite.DB, error) {
	if path != ":memory:" && path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newEngine(settings engine.Settings) (decision.Engine, error) {
	switch settings.Provider {
	case "", "heuristic":
		return engine.NewHeuristic(), nil
	default:
		return nil, fmt.Errorf("unknown engine provider %q", settings.Provider)
	}
}

func serveStdio(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func serveHTTP(logger *slog.Logger, mcpServer *sdkmcp.Server, addr string) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/mcp/", mcpHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

const (
	logSizeLimit = 6 * 1024 * 1024
	logSizeKeep  = 5 * 1024 * 1024
)

// cappedLogFile keeps a log file under logSizeLimit by discarding the
// oldest portion once the limit is crossed.
type cappedLogFile struct {
	mu   sync.Mutex
	file *os.File
}

func openLogFile(path string) (*cappedLogFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &cappedLogFile{file: file}
	if err := w.trim(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *cappedLogFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.trim()
}

func (w *cappedLogFile) trim() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() <= logSizeLimit {
		return nil
	}

	// Keep the newest tail of the log.
	tail := make([]byte, logSizeKeep)
	if _, err := w.file.Seek(info.Size()-logSizeKeep, io.SeekStart); err != nil {
		return err
	}
	n, err := w.file.Read(tail)
	if err != nil && err != io.EOF {
		return err
	}

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(tail[:n]); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}

type apiKeyResolver struct {
	db *sqlite.DB
}

func (r *apiKeyResolver) ResolveTenant(ctx context.Context, token string) (string, error) {
	sum := sha256.Sum256([]byte(token))
	var tenantID string
	err := r.db.QueryRowContext(ctx,
		`SELECT tenant_id FROM api_keys WHERE key_hash = ?`,
		hex.EncodeToString(sum[:])).Scan(&tenantID)
	if err != nil || tenantID == "" {
		return "", fmt.Errorf("unauthorized: invalid token")
	}
	return tenantID, nil
}
