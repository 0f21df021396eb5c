package command

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/sessiongate/internal/devapi"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// testCLI runs the CLI against an in-process dev API with its own config
// file path and session directory.
type testCLI struct {
	t          *testing.T
	api        *devapi.Server
	apiURL     string
	configPath string
	sessionDir string
	backend    string

	mu    sync.Mutex
	inbox []string // reset tokens, oldest first
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()

	dir := t.TempDir()
	tc := &testCLI{
		t:          t,
		configPath: filepath.Join(dir, "cli.yaml"),
		sessionDir: filepath.Join(dir, "session"),
		backend:    "bbolt",
	}

	cfg := devapi.DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	api, err := devapi.New(cfg,
		devapi.WithLogger(logger.Nop()),
		devapi.WithResetSink(func(_, tok string) {
			tc.mu.Lock()
			tc.inbox = append(tc.inbox, tok)
			tc.mu.Unlock()
		}),
	)
	require.NoError(t, err)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	tc.api = api
	tc.apiURL = srv.URL
	return tc
}

// lastResetToken returns the newest reset token the dev API sent.
func (tc *testCLI) lastResetToken() string {
	tc.t.Helper()
	tc.mu.Lock()
	defer tc.mu.Unlock()
	require.NotEmpty(tc.t, tc.inbox, "no reset token was sent")
	return tc.inbox[len(tc.inbox)-1]
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes one CLI invocation. stdin feeds prompts; an empty stdin
// runs with --no-input.
func (tc *testCLI) run(stdin string, args ...string) result {
	tc.t.Helper()

	var out, errOut bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &errOut

	full := []string{
		"sessiongate",
		"--config", tc.configPath,
		"--api-url", tc.apiURL,
		"--session-backend", tc.backend,
		"--session-dir", tc.sessionDir,
		"--log-level", "error",
	}
	if stdin == "" {
		full = append(full, "--no-input")
	}
	full = append(full, args...)

	err := app.Run(full)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

// signup registers an account through the CLI.
func (tc *testCLI) signup(name, email, password string) {
	tc.t.Helper()
	res := tc.run("", "signup",
		"--name", name,
		"--email", email,
		"--password", password,
		"--confirm-password", password,
	)
	require.NoError(tc.t, res.err, res.stderr)
}

// login signs in through the CLI.
func (tc *testCLI) login(identifier, password string) {
	tc.t.Helper()
	res := tc.run("", "login", "--user", identifier, "--password", password)
	require.NoError(tc.t, res.err, res.stderr)
}
