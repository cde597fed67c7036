package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ccoveille/go-safecast"
	"golang.org/x/term"
)

// readSecret prompts for a secret without echo when stdin is a terminal.
// Otherwise a single line is read from in.
func readSecret(prompt string, in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, prompt)

	if f, ok := in.(*os.File); ok {
		fd, err := safecast.ToInt(uint64(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("invalid file descriptor: %w", err)
		}
		if term.IsTerminal(fd) {
			secret, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			if err != nil {
				return "", fmt.Errorf("failed to read secret: %w", err)
			}
			return string(secret), nil
		}
	}

	line, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return line, nil
}

// readLine reads up to the next newline without buffering past it,
// so consecutive prompts can share one reader.
func readLine(in io.Reader) (string, error) {
	var (
		sb  strings.Builder
		buf [1]byte
	)
	for {
		n, err := in.Read(buf[:])
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(sb.String(), "\r"), nil
}
