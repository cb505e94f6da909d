package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(name string) error { f.calls = append(f.calls, name); return nil }

func (f *fakeExec) isLoggedIn() bool                        { return f.loggedIn }
func (f *fakeExec) Signup(ctx context.Context) error        { return f.record("signup") }
func (f *fakeExec) VerifyOTP(ctx context.Context) error     { return f.record("verify") }
func (f *fakeExec) Login(ctx context.Context) error         { return f.record("login") }
func (f *fakeExec) Logout(ctx context.Context) error        { return f.record("logout") }
func (f *fakeExec) ForgotPassword(ctx context.Context) error { return f.record("forgot") }
func (f *fakeExec) ResetPassword(ctx context.Context) error  { return f.record("reset") }
func (f *fakeExec) ShowProfile(ctx context.Context) error    { return f.record("profile") }
func (f *fakeExec) EditProfile(ctx context.Context) error    { return f.record("edit") }
func (f *fakeExec) ChangePassword(ctx context.Context) error { return f.record("password") }
func (f *fakeExec) UploadAvatar(ctx context.Context) error   { return f.record("avatar") }

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	orig := printlnFn
	t.Cleanup(func() { printlnFn = orig })

	var lines []string
	printlnFn = func(args ...any) {
		parts := make([]string, len(args))
		for i, a := range args {
			if s, ok := a.(string); ok {
				parts[i] = s
			}
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return &lines
}

func runLines(t *testing.T, f *fakeExec, lines ...string) {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), f, func() string { return "guest" }, scanner)
}

func TestREPL_DispatchesCommands(t *testing.T) {
	capturePrintln(t)
	f := &fakeExec{}

	runLines(t, f, "signup", "verify", "login", "forgot", "reset", "exit")

	require.Equal(t, []string{"signup", "verify", "login", "forgot", "reset"}, f.calls)
}

func TestREPL_AuthedCommands(t *testing.T) {
	capturePrintln(t)
	f := &fakeExec{loggedIn: true}

	runLines(t, f, "profile", "whoami", "edit", "password", "avatar", "logout", "quit")

	require.Equal(t, []string{"profile", "profile", "edit", "password", "avatar", "logout"}, f.calls)
}

func TestREPL_HelpDependsOnAuthState(t *testing.T) {
	lines := capturePrintln(t)
	f := &fakeExec{}
	runLines(t, f, "help", "exit")
	require.Contains(t, strings.Join(*lines, "\n"), "signup, verify, login")

	*lines = (*lines)[:0]
	f.loggedIn = true
	runLines(t, f, "help", "exit")
	require.Contains(t, strings.Join(*lines, "\n"), "profile, edit, password")
}

func TestREPL_UnknownAndBlankLines(t *testing.T) {
	lines := capturePrintln(t)
	f := &fakeExec{}

	runLines(t, f, "", "   ", "frobnicate", "exit")

	require.Empty(t, f.calls)
	require.Contains(t, strings.Join(*lines, "\n"), "Unknown command:")
}

func TestREPL_ExitsOnEOF(t *testing.T) {
	capturePrintln(t)
	f := &fakeExec{}
	runLines(t, f, "login")
	require.Equal(t, []string{"login"}, f.calls)
}
