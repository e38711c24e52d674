package credentials

import (
	"bufio"
	"errors"
	"io"
	"sort"
	"strings"
)

const header = "# vcalc client database\n# format: login:secret\n\n"

const cutset = " \t\r"

// maxLineLength bounds a single line. Longer lines are skipped as malformed.
const maxLineLength = 64 * 1024

// Parse reads credential lines from r. Later lines for the same login
// replace earlier ones. The number of malformed lines skipped is returned
// alongside the entries.
func Parse(r io.Reader) (map[string]string, int, error) {
	entries := make(map[string]string)
	skipped := 0

	br := bufio.NewReaderSize(r, maxLineLength)
	for {
		raw, isPrefix, err := br.ReadLine()
		if isPrefix {
			for isPrefix && err == nil {
				_, isPrefix, err = br.ReadLine()
			}
			skipped++
		} else if err == nil && !parseLine(entries, string(raw)) {
			skipped++
		}
		if errors.Is(err, io.EOF) {
			return entries, skipped, nil
		}
		if err != nil {
			return nil, skipped, err
		}
	}
}

// parseLine stores one login:secret line in entries. Blank lines and
// comments are accepted and ignored; it reports false for malformed lines.
func parseLine(entries map[string]string, line string) bool {
	line = strings.Trim(line, cutset)
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}
	login, secret, ok := strings.Cut(line, ":")
	login = strings.Trim(login, cutset)
	secret = strings.Trim(secret, cutset)
	if !ok || login == "" || secret == "" {
		return false
	}
	entries[login] = secret
	return true
}

// Format renders entries in file form: the fixed header followed by one
// line per login in lexical order.
func Format(entries map[string]string) []byte {
	logins := make([]string, 0, len(entries))
	for login := range entries {
		logins = append(logins, login)
	}
	sort.Strings(logins)

	var b strings.Builder
	b.WriteString(header)
	for _, login := range logins {
		b.WriteString(login)
		b.WriteByte(':')
		b.WriteString(entries[login])
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func validLogin(login string) bool {
	return login != "" &&
		strings.Trim(login, cutset) == login &&
		!strings.HasPrefix(login, "#") &&
		!strings.ContainsAny(login, ":\n")
}

func validSecret(secret string) bool {
	return secret != "" &&
		strings.Trim(secret, cutset) == secret &&
		!strings.ContainsRune(secret, '\n')
}
