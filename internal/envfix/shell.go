// SPDX-License-Identifier: MPL-2.0

package envfix

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"mvdan.cc/sh/v3/syntax"
)

const delimiter = "_SHELL_ENV_DELIMITER_"

var envKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QueryFunc runs shell as an interactive login shell and returns its raw
// output, which must contain the delimited env dump.
type QueryFunc func(ctx context.Context, shell string) (string, error)

// loginShellScript prints the environment between two delimiters so that
// anything the profile echoes (banners, prompts) can be discarded.
func loginShellScript() string {
	quoted, err := syntax.Quote(delimiter, syntax.LangPOSIX)
	if err != nil {
		// The delimiter is a plain word; Quote cannot fail on it.
		quoted = delimiter
	}
	return fmt.Sprintf("printf '%%s' %s; env; printf '%%s' %s; exit", quoted, quoted)
}

// QueryLoginShell is the default QueryFunc.
func QueryLoginShell(ctx context.Context, shell string) (string, error) {
	cmd := exec.CommandContext(ctx, shell, "-ilc", loginShellScript())
	// oh-my-zsh would otherwise prompt for an update and block.
	cmd.Env = append(os.Environ(), "DISABLE_AUTO_UPDATE=true")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		// Some profiles return non-zero after printing a usable dump.
		if strings.Count(stdout.String(), delimiter) >= 2 {
			return stdout.String(), nil
		}
		return "", err
	}
	return stdout.String(), nil
}

// parseShellEnv extracts KEY=VALUE pairs from the delimited section of the
// login shell output. Continuation lines of multi-line values are ignored.
func parseShellEnv(out string) (map[string]string, error) {
	parts := strings.Split(ansi.Strip(out), delimiter)
	if len(parts) < 3 {
		return nil, ErrNoDelimitedOutput
	}

	env := make(map[string]string)
	for _, line := range strings.Split(parts[1], "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok || !envKey.MatchString(key) {
			continue
		}
		env[key] = value
	}
	return env, nil
}
