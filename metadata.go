package cordsearch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Metadata is the enriched record returned for a search hit, sourced
// from the CORD-19 metadata.csv sidecar table.
type Metadata struct {
	CordUID     string
	Title       string
	URL         string
	PublishTime string
	Author      string // "<surname> et al." derived from the authors column
}

// metaOffset is what the engine actually keeps in memory per
// cord_uid: only enough to seek back into the CSV file on demand. Full
// field values are never cached, so the metadata table's memory
// footprint stays proportional to the row count, not its content.
type metaOffset struct {
	Offset int64
	Length int64
}

// MetadataIndex maps cord_uid to its byte range in metadata.csv, and
// caches the header's column-index layout so repeated lookups don't
// re-parse the header row every time.
type MetadataIndex struct {
	path    string
	offsets map[string]metaOffset
	cols    map[string]int
}

// loadMetadataIndex streams metadata.csv once, recording each row's
// byte offset and length keyed by its first occurrence of cord_uid
// (later duplicate cord_uids are ignored, matching the original's
// first-wins behavior).
func loadMetadataIndex(path string) (*MetadataIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &MetadataIndex{path: path, offsets: map[string]metaOffset{}}, nil
		}
		return nil, fmt.Errorf("open metadata.csv: %w", err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 256*1024)
	headerLine, err := readLine(br)
	if err != nil {
		return nil, fmt.Errorf("read metadata.csv header: %w", err)
	}
	cols := columnIndex(splitCSVRow(headerLine))
	uidCol, ok := cols["cord_uid"]
	if !ok {
		return nil, fmt.Errorf("metadata.csv: %w: missing cord_uid column", ErrCorruption)
	}

	mi := &MetadataIndex{path: path, offsets: make(map[string]metaOffset), cols: cols}
	var pos int64 = int64(len(headerLine)) + 1

	for {
		line, err := readLine(br)
		if err != nil {
			break // EOF
		}
		rowLen := int64(len(line)) + 1
		fields := splitCSVRow(line)
		if uidCol < len(fields) {
			uid := fields[uidCol]
			if uid != "" {
				if _, exists := mi.offsets[uid]; !exists {
					mi.offsets[uid] = metaOffset{Offset: pos, Length: rowLen}
				}
			}
		}
		pos += rowLen
	}
	return mi, nil
}

// readLine reads one line without the trailing newline. It does not
// handle embedded newlines inside quoted CSV fields: byte-offset
// arithmetic assumes exactly one physical line per row, a known
// limitation inherited from the source format.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func columnIndex(fields []string) map[string]int {
	m := make(map[string]int, len(fields))
	for i, f := range fields {
		m[f] = i
	}
	return m
}

// splitCSVRow parses one CSV row with a minimal, non-RFC-strict
// reader: fields are comma-separated, a double-quoted field may
// contain commas, and a literal double quote inside a quoted field is
// written as two consecutive quotes ("").
func splitCSVRow(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	i := 0
	n := len(line)
	for i < n {
		c := line[i]
		switch {
		case inQuotes:
			if c == '"' {
				if i+1 < n && line[i+1] == '"' {
					cur.WriteByte('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			cur.WriteByte(c)
			i++
		case c == '"':
			inQuotes = true
			i++
		case c == ',':
			fields = append(fields, cur.String())
			cur.Reset()
			i++
		default:
			cur.WriteByte(c)
			i++
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// Fetch re-opens metadata.csv, seeks to the stored offset for uid, and
// parses just that row, resolving column positions from the cached
// header layout. This keeps the file handle scope to a single query
// (no persistent handle held across requests) while avoiding the
// original implementation's documented inefficiency of re-reading the
// header on every call.
func (mi *MetadataIndex) Fetch(uid string) (Metadata, bool, error) {
	off, ok := mi.offsets[uid]
	if !ok {
		return Metadata{}, false, nil
	}
	f, err := os.Open(mi.path)
	if err != nil {
		return Metadata{}, false, fmt.Errorf("open metadata.csv: %w", err)
	}
	defer f.Close()

	// off.Length assumes a trailing newline after the row; the file's
	// very last row may not have one, so ReadAt legitimately returns
	// io.EOF with n one byte short. Any other error is fatal.
	buf := make([]byte, off.Length)
	n, err := f.ReadAt(buf, off.Offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return Metadata{}, false, fmt.Errorf("read metadata row: %w", err)
	}
	line := strings.TrimRight(string(buf[:n]), "\r\n")
	fields := splitCSVRow(line)

	get := func(col string) string {
		idx, ok := mi.cols[col]
		if !ok || idx >= len(fields) {
			return ""
		}
		return fields[idx]
	}

	return Metadata{
		CordUID:     uid,
		Title:       get("title"),
		URL:         firstBeforeSemicolon(get("url")),
		PublishTime: get("publish_time"),
		Author:      firstAuthorEtAl(get("authors")),
	}, true, nil
}

// firstBeforeSemicolon returns only the text before the first `;` in a
// multi-valued field like url, matching spec's stated rule.
func firstBeforeSemicolon(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

// firstAuthorEtAl derives a "<Surname> et al." citation from a
// semicolon-separated authors field: takes the first author, strips
// trailing commas and whitespace, unwraps a parenthesized romanized
// name if present, then extracts the surname as the text before the
// first comma or, absent a comma, the last whitespace-separated token.
func firstAuthorEtAl(authors string) string {
	if authors == "" {
		return ""
	}
	first := authors
	if i := strings.IndexByte(authors, ';'); i >= 0 {
		first = authors[:i]
	}
	first = trimCopy(first)
	if first == "" {
		return ""
	}

	if i := strings.IndexByte(first, '('); i >= 0 {
		if j := strings.IndexByte(first[i:], ')'); j >= 0 {
			inner := trimCopy(first[i+1 : i+j])
			if inner != "" {
				first = inner
			} else {
				first = trimCopy(first[:i])
			}
		}
	}

	var surname string
	if i := strings.IndexByte(first, ','); i >= 0 {
		surname = trimCopy(first[:i])
	} else {
		fields := strings.Fields(first)
		if len(fields) == 0 {
			return ""
		}
		surname = fields[len(fields)-1]
	}
	surname = strings.TrimRight(surname, ", ")
	if surname == "" {
		return ""
	}
	return surname + " et al."
}

func trimCopy(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ","))
}
