// SPDX-License-Identifier: MPL-2.0

package envfix

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// fakeEnv is an in-memory process environment.
type fakeEnv map[string]string

func (e fakeEnv) get(k string) string { return e[k] }

func (e fakeEnv) set(k, v string) error {
	e[k] = v
	return nil
}

func dump(vars ...string) string {
	return "Welcome to zsh!\n\x1b[1;32m" + delimiter + "\x1b[0m" +
		strings.Join(vars, "\n") + "\n" + delimiter + "bye\n"
}

func staticQuery(out string, err error) QueryFunc {
	return func(context.Context, string) (string, error) { return out, err }
}

func testOptions(env fakeEnv, q QueryFunc) Options {
	return Options{
		GOOS:        "darwin",
		Getenv:      env.get,
		Setenv:      env.set,
		Interactive: func() bool { return false },
		Query:       q,
	}
}

func TestNormalize_AddsShellEntries(t *testing.T) {
	t.Parallel()

	env := fakeEnv{"PATH": "/usr/bin:/bin", "HOME": "/Users/ada", "EDITOR": "vi"}
	q := staticQuery(dump(
		"PATH=/Users/ada/.asdf/shims:/opt/homebrew/bin:/usr/bin:/bin",
		"HOME=/Users/ada",
		"EDITOR=nvim",
	), nil)

	if err := Normalize(context.Background(), testOptions(env, q)); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := "/Users/ada/.asdf/shims:/opt/homebrew/bin:/usr/bin:/bin"
	if env["PATH"] != want {
		t.Errorf("PATH = %q, want %q", env["PATH"], want)
	}
	if env["EDITOR"] != "vi" {
		t.Errorf("EDITOR was modified to %q; only PATH may change", env["EDITOR"])
	}
}

func TestNormalize_KeepsLaunchEntriesAndExtras(t *testing.T) {
	t.Parallel()

	env := fakeEnv{"PATH": "/usr/bin:/Applications/Tool.app/bin"}
	q := staticQuery(dump("PATH=/usr/local/bin:/usr/bin", "HOME=/Users/ada"), nil)

	opts := testOptions(env, q)
	opts.Extra = []string{"$HOME/.asdf/shims", "~/.asdf/bin", "/usr/local/bin"}

	if err := Normalize(context.Background(), opts); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := "/usr/local/bin:/usr/bin:/Applications/Tool.app/bin:/Users/ada/.asdf/shims:/Users/ada/.asdf/bin"
	if env["PATH"] != want {
		t.Errorf("PATH = %q, want %q", env["PATH"], want)
	}
}

func TestNormalize_Skips(t *testing.T) {
	t.Parallel()

	called := false
	q := func(context.Context, string) (string, error) {
		called = true
		return "", nil
	}

	tests := []struct {
		name string
		mod  func(*Options)
	}{
		{"windows", func(o *Options) { o.GOOS = "windows" }},
		{"interactive terminal", func(o *Options) { o.Interactive = func() bool { return true } }},
	}
	for _, tt := range tests {
		env := fakeEnv{"PATH": "/usr/bin"}
		opts := testOptions(env, q)
		tt.mod(&opts)
		if err := Normalize(context.Background(), opts); err != nil {
			t.Errorf("%s: Normalize() error = %v", tt.name, err)
		}
		if env["PATH"] != "/usr/bin" {
			t.Errorf("%s: PATH changed to %q", tt.name, env["PATH"])
		}
	}
	if called {
		t.Error("shell should not be queried when skipping")
	}
}

func TestNormalize_ForceOverridesTerminal(t *testing.T) {
	t.Parallel()

	env := fakeEnv{"PATH": "/usr/bin"}
	opts := testOptions(env, staticQuery(dump("PATH=/opt/bin:/usr/bin"), nil))
	opts.Interactive = func() bool { return true }
	opts.Force = true

	if err := Normalize(context.Background(), opts); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if env["PATH"] != "/opt/bin:/usr/bin" {
		t.Errorf("PATH = %q", env["PATH"])
	}
}

func TestNormalize_FailureLeavesEnvironment(t *testing.T) {
	t.Parallel()

	boom := errors.New("exec: \"/bin/nosuchshell\": file not found")
	tests := []struct {
		name    string
		query   QueryFunc
		wantOp  string
		wantErr error
	}{
		{"query fails", staticQuery("", boom), "query shell", boom},
		{"profile exits early", staticQuery("oops", nil), "parse shell output", ErrNoDelimitedOutput},
		{"no PATH", staticQuery(dump("HOME=/Users/ada"), nil), "parse shell output", ErrNoPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := fakeEnv{"PATH": "/usr/bin"}
			err := Normalize(context.Background(), testOptions(env, tt.query))

			var fe *FixupError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *FixupError", err)
			}
			if fe.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", fe.Op, tt.wantOp)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v does not wrap %v", err, tt.wantErr)
			}
			if env["PATH"] != "/usr/bin" {
				t.Errorf("PATH modified on failure: %q", env["PATH"])
			}
		})
	}
}

func TestNormalize_SetenvFailure(t *testing.T) {
	t.Parallel()

	env := fakeEnv{"PATH": "/usr/bin"}
	opts := testOptions(env, staticQuery(dump("PATH=/opt/bin"), nil))
	opts.Setenv = func(string, string) error { return errors.New("read-only") }

	var fe *FixupError
	if err := Normalize(context.Background(), opts); !errors.As(err, &fe) || fe.Op != "set PATH" {
		t.Fatalf("Normalize() error = %v, want set PATH FixupError", err)
	}
}

func TestNormalize_TimeoutReachesQuery(t *testing.T) {
	t.Parallel()

	env := fakeEnv{"PATH": "/usr/bin"}
	opts := testOptions(env, func(ctx context.Context, _ string) (string, error) {
		if _, ok := ctx.Deadline(); !ok {
			return "", errors.New("no deadline")
		}
		return dump("PATH=/usr/bin"), nil
	})
	if err := Normalize(context.Background(), opts); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
}

func TestDiagnose_DoesNotWrite(t *testing.T) {
	t.Parallel()

	env := fakeEnv{"PATH": "/usr/bin"}
	opts := testOptions(env, staticQuery(dump("PATH=/opt/bin:/usr/bin"), nil))
	opts.Setenv = func(string, string) error {
		t.Error("Diagnose must not write PATH")
		return nil
	}

	report, err := Diagnose(context.Background(), opts)
	if err != nil {
		t.Fatalf("Diagnose() error = %v", err)
	}
	if !report.Changed() {
		t.Error("expected a change")
	}
	if len(report.Added) != 1 || report.Added[0] != "/opt/bin" {
		t.Errorf("Added = %v", report.Added)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	dirs := rapid.SampledFrom([]string{
		"/usr/bin", "/bin", "/usr/local/bin", "/opt/homebrew/bin",
		"/Users/ada/.asdf/shims", "/Users/ada/.asdf/bin", "/usr/bin/", "",
	})

	rapid.Check(t, func(t *rapid.T) {
		current := rapid.SliceOf(dirs).Draw(t, "current")
		shellPath := rapid.SliceOfN(dirs, 1, -1).Draw(t, "shell")
		extra := rapid.SliceOf(dirs).Draw(t, "extra")

		if strings.Join(shellPath, "") == "" {
			shellPath = append(shellPath, "/usr/bin")
		}

		env := fakeEnv{"PATH": strings.Join(current, ":")}
		opts := testOptions(env, staticQuery(dump("PATH="+strings.Join(shellPath, ":")), nil))
		opts.Extra = extra

		if err := Normalize(context.Background(), opts); err != nil {
			t.Fatalf("first Normalize() error = %v", err)
		}
		once := env["PATH"]

		if err := Normalize(context.Background(), opts); err != nil {
			t.Fatalf("second Normalize() error = %v", err)
		}
		if env["PATH"] != once {
			t.Fatalf("not idempotent: %q then %q", once, env["PATH"])
		}
	})
}

func TestParseShellEnv(t *testing.T) {
	t.Parallel()

	out := "motd\n" + delimiter + "PATH=/a:/b\nFUNC=() {  echo\n}\n 9BAD=x\nEMPTY=\nURL=a=b\n" + delimiter
	env, err := parseShellEnv(out)
	if err != nil {
		t.Fatalf("parseShellEnv() error = %v", err)
	}
	if env["PATH"] != "/a:/b" {
		t.Errorf("PATH = %q", env["PATH"])
	}
	if v, ok := env["EMPTY"]; !ok || v != "" {
		t.Errorf("EMPTY = %q, %v", v, ok)
	}
	if env["URL"] != "a=b" {
		t.Errorf("URL = %q", env["URL"])
	}
	if _, ok := env[" 9BAD"]; ok {
		t.Error("invalid key accepted")
	}
}

func TestLoginShellScript(t *testing.T) {
	t.Parallel()

	script := loginShellScript()
	if strings.Count(script, delimiter) != 2 {
		t.Errorf("script should print the delimiter twice: %s", script)
	}
	if !strings.Contains(script, "env;") {
		t.Errorf("script should dump env: %s", script)
	}
}
