package users

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are seams over golang.org/x/term so tests can
// stand in for a real terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// promptPassword prints a prompt to w and reads a password from in. A
// terminal is read without echo; anything else is read as one whole line
// with only the line ending removed, so inner and trailing spaces are kept.
func promptPassword(in io.Reader, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}

	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
