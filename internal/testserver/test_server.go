// Package testserver assembles a full in-memory compass stack behind an
// httptest server for functional tests.
package testserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/domain/outcome"
	"github.com/compasshq/compass-mcp/internal/engine"
	"github.com/compasshq/compass-mcp/internal/mcp"
	"github.com/compasshq/compass-mcp/internal/sqlite"
	"github.com/compasshq/compass-mcp/internal/transport"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Token    string
	TenantID string
}

// New builds the whole stack on a shared-cache in-memory database named
// after the test, seeds one API key, and tears everything down on cleanup.
func New(t *testing.T, token, tenantID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	decisionRepo := sqlite.NewDecisionRepository(db)
	nodeRepo := sqlite.NewNodeRepository(db)
	eventRepo := sqlite.NewEventRepository(db)

	locks := decision.NewKeyedMutex()
	handler := mcp.NewHandler(
		decision.NewService(decisionRepo, nodeRepo, sqlite.NewNavigationRepository(db), eventRepo, engine.NewHeuristic(), locks, nil),
		outcome.NewCalibrator(sqlite.NewOutcomeRepository(db), nodeRepo, decisionRepo, eventRepo, locks, nil),
		event.NewService(eventRepo, nil),
		sqlite.NewSearchRepository(db),
	)

	ts := &TestServer{
		Server:   httptest.NewServer(transport.NewServer(handler, transport.AuthMiddleware(keyResolver{db}))),
		DB:       db,
		Token:    token,
		TenantID: tenantID,
	}
	require.NoError(t, ts.AddAPIKey(token, tenantID))

	t.Cleanup(func() {
		ts.Server.Close()
		_ = db.Close()
	})
	return ts
}

// AddAPIKey registers an extra token, e.g. for a second tenant.
func (ts *TestServer) AddAPIKey(token, tenantID string) error {
	_, err := ts.DB.Exec(
		`INSERT INTO api_keys (key_hash, tenant_id, created_at) VALUES (?, ?, ?)`,
		keyHash(token), tenantID, time.Now(),
	)
	return err
}

type keyResolver struct {
	db *sqlite.DB
}

func (r keyResolver) ResolveTenant(ctx context.Context, token string) (string, error) {
	var tenantID string
	err := r.db.QueryRowContext(ctx,
		`SELECT tenant_id FROM api_keys WHERE key_hash = ?`, keyHash(token)).Scan(&tenantID)
	if err != nil || tenantID == "" {
		return "", transport.ErrUnauthorized
	}
	return tenantID, nil
}

func keyHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
