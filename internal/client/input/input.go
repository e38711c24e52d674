// Package input reads interactive input for the vcalc command-line tools:
// plain prompts, secrets without echo, and vectors typed as number lists.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the x/term calls.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	return readLine(reader)
}

// GetSecret prints prompt to w and reads a secret. On a terminal the secret
// is read from stdin without echo; otherwise it is the next line of reader,
// so secrets can be piped in.
func GetSecret(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return readLine(reader)
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// ParseVector parses numbers separated by commas and/or blanks, such as
// "1, 2.5 -3e2". An empty string is the empty vector.
func ParseVector(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", f, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// GetVectors reads one vector per line from reader until EOF or a line
// holding only ".". Blank lines are empty vectors.
func GetVectors(reader *bufio.Reader) ([][]float64, error) {
	var vectors [][]float64
	for n := 1; ; n++ {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return vectors, err
		}
		eof := err != nil
		line = strings.TrimRight(line, "\r\n")
		if line == "." || (eof && line == "") {
			return vectors, nil
		}
		v, perr := ParseVector(line)
		if perr != nil {
			return vectors, fmt.Errorf("line %d: %w", n, perr)
		}
		vectors = append(vectors, v)
		if eof {
			return vectors, nil
		}
	}
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
