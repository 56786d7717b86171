package cddb

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"cdmeta/internal/disc/discid"
)

const (
	xmcdMarker   = "# xmcd"
	crlfEndOfRec = "\r\n.\r\n"
	lfEndOfRec   = "\n.\n"
	maxProtoTag  = "max proto:"
)

// Candidate is one disc listed in a query reply.
type Candidate struct {
	Category string    `json:"category"`
	DiscID   discid.ID `json:"disc_id"`
	Title    string    `json:"title"`
}

// QueryOutcome is the interpretation of a query reply. Match is only set
// when Exact is true.
type QueryOutcome struct {
	Code       int         `json:"code"`
	Exact      bool        `json:"exact"`
	Match      Candidate   `json:"match"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Record is a raw xmcd block as returned by a read. Data never aliases the
// HTTP reply buffer.
type Record struct {
	Category string    `json:"category,omitempty"`
	DiscID   discid.ID `json:"disc_id"`
	Data     []byte    `json:"-"`
}

// Len returns the size of the block in bytes.
func (r Record) Len() int {
	return len(r.Data)
}

// Site is one mirror from a sites reply.
type Site struct {
	Host        string `json:"host"`
	Protocol    string `json:"protocol,omitempty"`
	Port        int    `json:"port"`
	Address     string `json:"address,omitempty"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	Description string `json:"description"`
}

// parseStat extracts the maximum protocol level from a stat reply.
func parseStat(r reply) (int, error) {
	if r.Code != 210 {
		return 0, &ServerError{Code: r.Code, Text: r.Text}
	}
	idx := strings.Index(r.Body, maxProtoTag)
	if idx < 0 {
		return 0, parseErrorf("stat", "no %q in reply", maxProtoTag)
	}
	fields := strings.Fields(r.Body[idx+len(maxProtoTag):])
	if len(fields) == 0 {
		return 0, parseErrorf("stat", "missing value after %q", maxProtoTag)
	}
	level, err := strconv.Atoi(fields[0])
	if err != nil || level < 1 {
		return 0, parseErrorf("stat", "invalid protocol level %q", fields[0])
	}
	return level, nil
}

// parseQuery interprets a query reply. 202 and 211 return ErrNoMatch along
// with whatever candidates were listed.
func parseQuery(r reply) (QueryOutcome, error) {
	out := QueryOutcome{Code: r.Code}
	switch r.Code {
	case 200:
		match, err := parseCandidate(r.Text)
		if err != nil {
			return out, err
		}
		out.Exact = true
		out.Match = match
		out.Candidates = []Candidate{match}
		return out, nil
	case 202:
		return out, ErrNoMatch
	case 210:
		if len(r.Lines) == 0 {
			return out, parseErrorf("query", "exact match list is empty")
		}
		match, err := parseCandidate(r.Lines[0])
		if err != nil {
			return out, err
		}
		out.Exact = true
		out.Match = match
		out.Candidates = append([]Candidate{match}, lenientCandidates(r.Lines[1:])...)
		return out, nil
	case 211:
		out.Candidates = lenientCandidates(r.Lines)
		return out, ErrNoMatch
	default:
		return out, &ServerError{Code: r.Code, Text: r.Text}
	}
}

// parseCandidate reads "<category> <discid> <title...>". The title is the
// remainder of the line starting at its first token.
func parseCandidate(line string) (Candidate, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Candidate{}, parseErrorf("query", "candidate %q lacks category and disc id", truncate(line, 80))
	}
	category, err := normalizeCategory(fields[0])
	if err != nil {
		return Candidate{}, err
	}
	id, err := discid.Parse(fields[1])
	if err != nil {
		return Candidate{}, parseErrorf("query", "candidate %q: %v", truncate(line, 80), err)
	}
	return Candidate{
		Category: category,
		DiscID:   id,
		Title:    restAfterFields(line, 2),
	}, nil
}

func lenientCandidates(lines []string) []Candidate {
	var out []Candidate
	for _, line := range lines {
		if c, err := parseCandidate(line); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// parseRead extracts the xmcd block from a read reply. The block runs from
// the "# xmcd" marker through the line ending of its last line; the "."
// terminator is not included.
func parseRead(r reply) (Record, error) {
	switch r.Code {
	case 210:
	case 400:
		return Record{}, ErrNotFound
	default:
		return Record{}, &ServerError{Code: r.Code, Text: r.Text}
	}

	fields := r.Fields()
	if len(fields) < 2 {
		return Record{}, parseErrorf("read", "status line %q lacks category and disc id", truncate(r.Text, 80))
	}
	category, err := normalizeCategory(fields[0])
	if err != nil {
		return Record{}, err
	}
	id, err := discid.Parse(fields[1])
	if err != nil {
		return Record{}, parseErrorf("read", "status line: %v", err)
	}

	body := []byte(r.Body)
	start := bytes.Index(body, []byte(xmcdMarker))
	if start < 0 {
		return Record{}, parseErrorf("read", "reply is not an xmcd database entry")
	}
	var end int
	if idx := bytes.Index(body[start:], []byte(crlfEndOfRec)); idx >= 0 {
		end = start + idx + 2
	} else if idx := bytes.Index(body[start:], []byte(lfEndOfRec)); idx >= 0 {
		end = start + idx + 1
	} else {
		return Record{}, parseErrorf("read", "xmcd entry is not terminated")
	}

	data := make([]byte, end-start)
	copy(data, body[start:end])
	return Record{Category: category, DiscID: id, Data: data}, nil
}

// parseSites reads a sites reply. Level 3+ lines are
// "host protocol port address lat long description"; older servers send
// "host port lat long description".
func parseSites(r reply) ([]Site, error) {
	switch r.Code {
	case 210:
	case 401:
		return nil, ErrNoSites
	default:
		return nil, &ServerError{Code: r.Code, Text: r.Text}
	}
	sites := make([]Site, 0, len(r.Lines))
	for _, line := range r.Lines {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		if port, err := strconv.Atoi(fields[1]); err == nil {
			sites = append(sites, Site{
				Host:        fields[0],
				Port:        port,
				Latitude:    fields[2],
				Longitude:   fields[3],
				Description: restAfterFields(line, 4),
			})
			continue
		}
		if len(fields) < 6 {
			continue
		}
		port, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		sites = append(sites, Site{
			Host:        fields[0],
			Protocol:    fields[1],
			Port:        port,
			Address:     fields[3],
			Latitude:    fields[4],
			Longitude:   fields[5],
			Description: restAfterFields(line, 6),
		})
	}
	if len(sites) == 0 {
		return nil, parseErrorf("sites", "no usable site lines")
	}
	return sites, nil
}

// normalizeCategory folds case and rejects values that cannot be placed in
// a command.
func normalizeCategory(value string) (string, error) {
	value = cases.Fold().String(strings.TrimSpace(value))
	if value == "" {
		return "", parseErrorf("", "empty category")
	}
	if strings.ContainsAny(value, "+&?#%/ \t\r\n") {
		return "", parseErrorf("", "category %q contains reserved characters", value)
	}
	return value, nil
}
