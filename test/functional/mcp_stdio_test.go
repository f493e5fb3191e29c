package functional_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// stdioSession wraps an MCP client session for stdio transport testing
type stdioSession struct {
	session *sdkmcp.ClientSession
	cancel  context.CancelFunc
}

func newStdioSession(t *testing.T) *stdioSession {
	t.Helper()
	return newStdioSessionWithEnv(t, nil)
}

func newStdioSessionWithEnv(t *testing.T, extraEnv []string) *stdioSession {
	t.Helper()

	// Find the binary
	binaryPath := "./bin/compass"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/compass"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("Server binary not found. Run 'make build' first.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = append(os.Environ(),
		"COMPASS_TRANSPORT_MODE=stdio",
		"COMPASS_DB_PATH=:memory:",
		"COMPASS_AUTH_ENABLED=false",
	)
	if len(extraEnv) > 0 {
		cmd.Env = append(cmd.Env, extraEnv...)
	}

	transport := &sdkmcp.CommandTransport{Command: cmd}

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}

	t.Cleanup(func() {
		session.Close()
		cancel()
	})

	return &stdioSession{session: session, cancel: cancel}
}

func (s *stdioSession) callTool(t *testing.T, name string, args map[string]any) json.RawMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed", name)
	require.False(t, result.IsError, "Tool %s returned error", name)
	require.NotEmpty(t, result.Content, "Tool %s returned no content", name)

	for _, content := range result.Content {
		if textContent, ok := content.(*sdkmcp.TextContent); ok {
			return json.RawMessage(textContent.Text)
		}
	}
	t.Fatalf("Tool %s returned no text content", name)
	return nil
}

func TestStdioFunctional_ClarifyRoundTrip(t *testing.T) {
	s := newStdioSession(t)

	createResp := s.callTool(t, "create_decision", map[string]any{
		"situation_text": "take the startup offer or stay at the current job",
		"situation_type": "career",
	})
	var created struct {
		Decision struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"decision"`
		Root struct {
			ID    string `json:"id"`
			Phase string `json:"phase"`
		} `json:"root"`
		FirstQuestion *struct {
			ID string `json:"id"`
		} `json:"first_question"`
	}
	require.NoError(t, json.Unmarshal(createResp, &created))
	require.Equal(t, "active", created.Decision.Status)
	require.Equal(t, "clarify", created.Root.Phase)
	require.NotNil(t, created.FirstQuestion)

	answerResp := s.callTool(t, "submit_answer", map[string]any{
		"node_id":     created.Root.ID,
		"question_id": created.FirstQuestion.ID,
		"answer":      "whether to take the startup offer",
	})
	var answered struct {
		NextQuestion *struct {
			ID string `json:"id"`
		} `json:"next_question"`
		ReadyForOptions bool    `json:"ready_for_options"`
		Progress        float64 `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(answerResp, &answered))
	require.False(t, answered.ReadyForOptions)
	require.NotNil(t, answered.NextQuestion)
	require.Greater(t, answered.Progress, 0.0)

	listResp := s.callTool(t, "list_decisions", nil)
	require.Contains(t, string(listResp), created.Decision.ID)
}

func TestStdioFunctional_ActiveNodeAndEvents(t *testing.T) {
	s := newStdioSession(t)

	createResp := s.callTool(t, "create_decision", map[string]any{
		"situation_text": "renew the lease or move",
	})
	var created struct {
		Decision struct {
			ID string `json:"id"`
		} `json:"decision"`
		Root struct {
			ID string `json:"id"`
		} `json:"root"`
	}
	require.NoError(t, json.Unmarshal(createResp, &created))

	activeResp := s.callTool(t, "get_active_node", map[string]any{
		"decision_id": created.Decision.ID,
	})
	var active struct {
		Node struct {
			ID string `json:"id"`
		} `json:"node"`
		CurrentQuestion *struct {
			ID string `json:"id"`
		} `json:"current_question"`
	}
	require.NoError(t, json.Unmarshal(activeResp, &active))
	require.Equal(t, created.Root.ID, active.Node.ID)
	require.NotNil(t, active.CurrentQuestion)

	eventsResp := s.callTool(t, "get_recent_events", map[string]any{
		"decision_id": created.Decision.ID,
	})
	require.Contains(t, string(eventsResp), "decision_created")
}

func TestStdioFunctional_MCPProtocolCompliance(t *testing.T) {
	s := newStdioSession(t)

	// Verify server info from initialization
	initResult := s.session.InitializeResult()
	require.NotNil(t, initResult)
	require.NotNil(t, initResult.ServerInfo)
	require.Equal(t, "compass", initResult.ServerInfo.Name)
	require.Equal(t, "0.1.0", initResult.ServerInfo.Version)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tools, err := s.session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Greater(t, len(tools.Tools), 15, "should have at least 16 tools")

	toolMap := make(map[string]*sdkmcp.Tool)
	for _, tool := range tools.Tools {
		toolMap[tool.Name] = tool
	}

	require.Contains(t, toolMap, "create_decision")
	require.Contains(t, toolMap, "submit_answer")
	require.Contains(t, toolMap, "generate_options")
	require.Contains(t, toolMap, "choose_option")
	require.Contains(t, toolMap, "create_branch")
	require.Contains(t, toolMap, "log_outcome")
	require.NotEmpty(t, toolMap["create_decision"].Description)
}

func TestStdioFunctional_LogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "compass.log")
	s := newStdioSessionWithEnv(t, []string{
		"COMPASS_LOG_PATH=" + logPath,
		"COMPASS_LOG_LEVEL=debug",
	})

	_ = s.callTool(t, "list_decisions", nil)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logPath)
		if err != nil {
			return false
		}
		text := string(data)
		return strings.Contains(text, `msg="mcp traffic"`) &&
			strings.Contains(text, "stage=request") &&
			strings.Contains(text, "stage=response")
	}, 5*time.Second, 100*time.Millisecond)
}

func TestStdioFunctional_DocumentationResources(t *testing.T) {
	s := newStdioSession(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resources, err := s.session.ListResources(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, resources.Resources)

	uris := make(map[string]*sdkmcp.Resource, len(resources.Resources))
	for _, r := range resources.Resources {
		uris[r.URI] = r
	}

	expected := []string{
		"compass://docs/index",
		"compass://docs/concepts",
		"compass://docs/workflows/clarify-loop",
		"compass://docs/workflows/branching",
		"compass://docs/workflows/outcomes",
	}
	for _, uri := range expected {
		r, ok := uris[uri]
		require.True(t, ok, "missing expected doc resource: %s", uri)
		require.NotEmpty(t, r.Name)
		require.Equal(t, "text/markdown", r.MIMEType)
		require.Greater(t, r.Size, int64(0))
	}

	read, err := s.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "compass://docs/index"})
	require.NoError(t, err)
	require.NotEmpty(t, read.Contents)
	require.Equal(t, "compass://docs/index", read.Contents[0].URI)
	require.Equal(t, "text/markdown", read.Contents[0].MIMEType)
	require.Contains(t, read.Contents[0].Text, "Agent Docs Index")
}
