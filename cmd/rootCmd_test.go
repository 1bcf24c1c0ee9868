package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// writeTemp creates a temp file with content and returns its path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func requireFileContent(t *testing.T, path, want string) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want, string(b))
}

func requireFileContainsAll(t *testing.T, path string, subs ...string) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, sub := range subs {
		require.Contains(t, string(b), sub)
	}
}

// writeProject lays out hosts.yml and scrolls/<name>/main.yml under a temp
// dir and returns the project root.
func writeProject(t *testing.T, hostsYAML string, scrolls map[string]string) string {
	t.Helper()
	root := t.TempDir()
	writeTemp(t, root, "hosts.yml", hostsYAML)
	for name, body := range scrolls {
		writeTemp(t, root, filepath.Join("scrolls", name, "main.yml"), body)
	}
	return root
}

// resetConfig clears global configuration so tests don't leak state.
func resetConfig() {
	viper.Reset()
	viper.SetEnvPrefix("ARGUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("log", "LOG")
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetContext(context.Background())
	cfgProjectPath = ""
	cfgPcap = false
	cfgPcapDir = "."
	cfgForks = 0
	cfgTimeout = 0
	cfgConnTimeout = 0
	cfgKnownHosts = ""
	cfgStrictHost = false
	cfgReportPath = ""
	cfgMetricsPath = ""
	cfgNoop = false
	cfgLog = ""
}

// testContext returns a context carrying a debug-level JSON logger that
// writes into buf.
func testContext(buf *bytes.Buffer) context.Context {
	logger := zerolog.New(zerolog.SyncWriter(buf)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

// fakeClient scripts per-command output and status for one host and records
// every command it is asked to run, in order.
type fakeClient struct {
	mu       sync.Mutex
	commands []string
	status   map[string]int
	output   map[string]string
	startErr map[string]error
	hang     map[string]bool
	newErr   error
	sftp     *fakeSFTP
	sftpErr  error
	closed   bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		status:   map[string]int{},
		output:   map[string]string{},
		startErr: map[string]error{},
		hang:     map[string]bool{},
		sftp:     newFakeSFTP(),
	}
}

func (c *fakeClient) NewSession() (session, error) {
	if c.newErr != nil {
		return nil, c.newErr
	}
	return &fakeSession{client: c, done: make(chan struct{})}, nil
}

func (c *fakeClient) NewSFTP() (sftpClient, error) {
	if c.sftpErr != nil {
		return nil, c.sftpErr
	}
	return c.sftp, nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) ran() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.commands...)
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeSession struct {
	client    *fakeClient
	cmd       string
	out       bytes.Buffer
	done      chan struct{}
	closeOnce sync.Once
}

func (s *fakeSession) StdoutPipe() (io.Reader, error) { return &s.out, nil }

func (s *fakeSession) Start(cmd string) error {
	c := s.client
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, cmd)
	s.cmd = cmd
	if err := c.startErr[cmd]; err != nil {
		return err
	}
	s.out.WriteString(c.output[cmd])
	return nil
}

func (s *fakeSession) Wait() (int, error) {
	c := s.client
	c.mu.Lock()
	hang := c.hang[s.cmd]
	status := c.status[s.cmd]
	c.mu.Unlock()
	if hang {
		<-s.done
		return -1, io.EOF
	}
	return status, nil
}

func (s *fakeSession) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

type fakeFile struct {
	bytes.Buffer
	closed   bool
	writeErr error
}

func (f *fakeFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.Buffer.Write(p)
}

func (f *fakeFile) Close() error {
	f.closed = true
	return nil
}

type fakeSFTP struct {
	mu        sync.Mutex
	files     map[string]*fakeFile
	createErr error
	writeErr  error
	closed    bool
}

func newFakeSFTP() *fakeSFTP { return &fakeSFTP{files: map[string]*fakeFile{}} }

func (s *fakeSFTP) Create(path string) (io.WriteCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	f := &fakeFile{writeErr: s.writeErr}
	s.files[path] = f
	return f, nil
}

func (s *fakeSFTP) Close() error {
	s.closed = true
	return nil
}

// stubDial routes dialHostFunc to the given per-host fakes. Hosts listed in
// fail get that error instead.
func stubDial(t *testing.T, clients map[string]*fakeClient, fail map[string]error) *int {
	t.Helper()
	orig := dialHostFunc
	t.Cleanup(func() { dialHostFunc = orig })
	var mu sync.Mutex
	calls := 0
	dialHostFunc = func(ctx context.Context, h host, opts dialOptions) (hostClient, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		if err, ok := fail[h.Host]; ok {
			return nil, &hostError{Host: h.Host, State: stateDialing, Err: err}
		}
		c, ok := clients[h.Host]
		if !ok {
			return nil, &hostError{Host: h.Host, State: stateDialing, Err: errors.New("no such host")}
		}
		return c, nil
	}
	return &calls
}

const twoScrollHosts = `
scrolls: [base, app]
hosts:
  - host: h1
  - host: h2
    user: deploy
`

var twoScrolls = map[string]string{
	"base": `
- name: base-one
  task_exec:
    Bash: {command: "echo base1"}
- name: base-two
  task_exec:
    Bash: {command: "echo base2"}
`,
	"app": `
- name: app-one
  task_exec:
    Bash: {command: "echo app1"}
`,
}

func TestRootExecute_Success(t *testing.T) {
	resetConfig()
	h1, h2 := newFakeClient(), newFakeClient()
	calls := stubDial(t, map[string]*fakeClient{"h1": h1, "h2": h2}, nil)

	root := writeProject(t, twoScrollHosts, twoScrolls)
	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"--project-path", root})

	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 2, *calls)
	want := []string{"echo app1", "echo base1", "echo base2"}
	require.Equal(t, want, h1.ran())
	require.Equal(t, want, h2.ran())
	require.True(t, h1.isClosed())
	require.True(t, h2.isClosed())
	require.Contains(t, stderr.String(), "--- app-one ---")
}

func TestRootExecute_HostFailureIsNonZero(t *testing.T) {
	resetConfig()
	good := newFakeClient()
	stubDial(t, map[string]*fakeClient{"h1": good}, map[string]error{"h2": errors.New("connection refused")})

	root := writeProject(t, twoScrollHosts, twoScrolls)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"-p", root})

	err := rootCmd.Execute()
	require.Error(t, err)
	require.True(t, errors.Is(err, errHostsFailed))
	require.Contains(t, err.Error(), "1 of 2")
	require.Len(t, good.ran(), 3)
}

func TestRootExecute_ParseErrorContactsNoHost(t *testing.T) {
	resetConfig()
	calls := stubDial(t, map[string]*fakeClient{}, nil)
	root := writeProject(t, twoScrollHosts, map[string]string{
		"base": twoScrolls["base"],
		"app":  "- name: [broken",
	})
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--project-path", root})

	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load project")
	require.Equal(t, 0, *calls)
}

func TestRootExecute_RequiresProjectPath(t *testing.T) {
	resetConfig()
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "--project-path is required")
}

func TestRootExecute_Noop_PrintsPlanWithoutDialing(t *testing.T) {
	resetConfig()
	calls := stubDial(t, map[string]*fakeClient{}, nil)
	root := writeProject(t, twoScrollHosts, twoScrolls)
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"-p", root, "--noop"})

	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 0, *calls)
	out := stdout.String()
	require.Contains(t, out, "Host h2 (deploy@h2:22)")
	require.Less(t, strings.Index(out, "Scroll app"), strings.Index(out, "Scroll base"))
}

func TestRootExecute_WritesReportAndMetrics(t *testing.T) {
	resetConfig()
	h1, h2 := newFakeClient(), newFakeClient()
	h2.status["echo app1"] = 3
	stubDial(t, map[string]*fakeClient{"h1": h1, "h2": h2}, nil)

	root := writeProject(t, twoScrollHosts, twoScrolls)
	out := t.TempDir()
	reportPath := filepath.Join(out, "reports", "run.yaml")
	metricsPath := filepath.Join(out, "argus.prom")
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"-p", root, "--report", reportPath, "--metrics-file", metricsPath})

	require.NoError(t, rootCmd.Execute())

	b, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	require.Contains(t, string(b), "success: true")
	require.Contains(t, string(b), "status: failed")
	require.Contains(t, string(b), "exit_status: 3")

	m, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(m), `argus_tasks_total{host="h2",kind="Bash",result="exit_3",scroll="app"} 1`)
	require.Contains(t, string(m), `argus_hosts_total{failed_in="",state="DONE"} 2`)
}

func TestRootExecute_AgentModeRunsSSHAdd(t *testing.T) {
	resetConfig()
	stubDial(t, map[string]*fakeClient{"h1": newFakeClient()}, nil)
	orig := sshAddFunc
	t.Cleanup(func() { sshAddFunc = orig })
	var added []string
	sshAddFunc = func(ctx context.Context, keyPath string) error {
		added = append(added, keyPath)
		return nil
	}
	root := writeProject(t, `
pubkey_path: /keys/id_ed25519.pub
scrolls: []
hosts:
  - host: h1
`, nil)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"-p", root})

	require.NoError(t, rootCmd.Execute())
	require.Equal(t, []string{"/keys/id_ed25519.pub"}, added)
}

func TestRootExecute_CmdTimeoutFlagReachesTasks(t *testing.T) {
	resetConfig()
	h1 := newFakeClient()
	h1.hang["sleep 100"] = true
	stubDial(t, map[string]*fakeClient{"h1": h1}, nil)
	root := writeProject(t, `
scrolls: [slow]
hosts:
  - host: h1
`, map[string]string{"slow": `
- name: slow
  task_exec:
    Bash: {command: "sleep 100"}
- name: never
  task_exec:
    Bash: {command: "echo never"}
`})
	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"-p", root, "--cmd-timeout", "50ms"})

	start := time.Now()
	require.NoError(t, rootCmd.Execute())
	require.Less(t, time.Since(start), 5*time.Second)
	require.Equal(t, []string{"sleep 100"}, h1.ran())
	require.Contains(t, stderr.String(), "deadline exceeded")
}

func TestRootExecute_PcapRejectsSharedAddress(t *testing.T) {
	resetConfig()
	calls := stubDial(t, map[string]*fakeClient{}, nil)
	origCap := openCaptureFunc
	t.Cleanup(func() { openCaptureFunc = origCap })
	opened := 0
	openCaptureFunc = func(address, dir string) (packetRecorder, error) {
		opened++
		return nil, errNoCaptureDevice
	}

	root := writeProject(t, `
scrolls: []
hosts:
  - host: 10.0.0.5
    port: 22
  - host: 10.0.0.5
    port: 2222
`, nil)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"-p", root, "--pcap", "--pcap-dir", t.TempDir()})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "share address 10.0.0.5")
	require.Equal(t, 0, *calls)
	require.Equal(t, 0, opened)
}

func TestCheckCaptureTargets(t *testing.T) {
	require.NoError(t, checkCaptureTargets([]host{{Host: "a"}, {Host: "b", Port: 2222}}))
	err := checkCaptureTargets([]host{{Host: "a"}, {Host: "b"}, {Host: "a", Port: 2200}})
	require.ErrorContains(t, err, "hosts[0] and hosts[2]")
}
