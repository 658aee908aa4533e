package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/rescale/rescale-analyses/internal/actions"
)

// promptLine prints label and reads one trimmed line from r.
// def is returned for an empty answer.
func promptLine(r *bufio.Reader, w io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	input, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

// promptSecret reads a secret from the terminal without echo.
// It fails when stdin is not a terminal.
func promptSecret(w io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%s required but stdin is not a terminal", strings.ToLower(label))
	}
	fmt.Fprintf(w, "%s: ", label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// detectViewport classifies the terminal attached to stdout.
// Output that is not a terminal is treated as wide.
func detectViewport(narrowBelow int) actions.Viewport {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return actions.Wide
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return actions.Wide
	}
	return actions.ViewportForWidth(width, narrowBelow)
}
