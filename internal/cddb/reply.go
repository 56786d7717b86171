package cddb

import (
	"strconv"
	"strings"
)

// reply is a CDDB response split into its status line and data lines.
type reply struct {
	Code int
	// Text is the status line after the code.
	Text string
	// Lines holds the data lines up to, not including, the terminating ".".
	Lines []string
	// Terminated is set when a lone "." line was seen.
	Terminated bool
	// Body is the raw reply text.
	Body string
}

// Fields returns the whitespace-separated tokens of the status text.
func (r reply) Fields() []string {
	return strings.Fields(r.Text)
}

// parseReply splits body into a status line and data lines. The first token
// of the status line must be a three-digit code.
func parseReply(command string, body []byte) (reply, error) {
	text := string(body)
	if strings.TrimSpace(text) == "" {
		return reply{}, parseErrorf(command, "empty reply")
	}

	lines := strings.Split(text, "\n")
	status := strings.TrimRight(lines[0], "\r")
	fields := strings.Fields(status)
	if len(fields) == 0 || len(fields[0]) != 3 {
		return reply{}, parseErrorf(command, "status line %q has no status code", truncate(status, 80))
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil || code < 100 {
		return reply{}, parseErrorf(command, "status line %q has no status code", truncate(status, 80))
	}

	r := reply{Code: code, Text: restAfterFields(status, 1), Body: text}
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "." {
			r.Terminated = true
			break
		}
		r.Lines = append(r.Lines, line)
	}
	// A trailing newline leaves one empty element that is not a data line.
	if !r.Terminated && len(r.Lines) > 0 && r.Lines[len(r.Lines)-1] == "" {
		r.Lines = r.Lines[:len(r.Lines)-1]
	}
	return r, nil
}

// restAfterFields returns the text of line following the first n
// whitespace-separated fields, with surrounding space removed.
func restAfterFields(line string, n int) string {
	rest := strings.TrimLeft(line, " \t")
	for range n {
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			return ""
		}
		rest = strings.TrimLeft(rest[idx:], " \t")
	}
	return strings.TrimRight(rest, " \t\r\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
