package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads an uploaded CSV file row by row. It strips a UTF-8 BOM,
// rejects non-UTF-8 content and maps each record onto the header names, so
// column order in the file does not matter.
type CSVParser struct {
	delimiter  rune
	reader     *csv.Reader
	headers    []string
	headerMap  map[string]int
	currentRow int
}

// ParserOption configures the parser
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// NewCSVParser creates a parser over r and validates the encoding
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter: ',',
		headerMap: make(map[string]int),
	}
	for _, opt := range opts {
		opt(parser)
	}

	buffered := bufio.NewReader(r)
	if head, err := buffered.Peek(3); err == nil || err == io.EOF {
		// UTF-8 BOM: 0xEF 0xBB 0xBF
		if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
			_, _ = buffered.Discard(3)
		}
	} else {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if err := validateUTF8(buffered); err != nil {
		return nil, err
	}

	parser.reader = csv.NewReader(buffered)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = true
	parser.reader.TrimLeadingSpace = true
	parser.reader.FieldsPerRecord = -1
	return parser, nil
}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if len(content) == checkSize {
		// the window may end mid-rune; drop the trailing partial sequence
		// so a multibyte character on the boundary is not a false reject
		for i := 0; i < utf8.UTFMax && len(content) > 0; i++ {
			r, size := utf8.DecodeLastRune(content)
			if r != utf8.RuneError || size != 1 {
				break
			}
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader reads the header row and indexes the column names
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, name := range record {
		name = strings.TrimSpace(name)
		p.headers[i] = name
		p.headerMap[name] = i
	}
	if len(p.headers) == 0 {
		return ErrMissingHeader
	}
	p.currentRow = 1
	return nil
}

// RequireHeaders checks that all named columns are present
func (p *CSVParser) RequireHeaders(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := p.headerMap[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// Headers returns the parsed column names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// Row is one parsed data row
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value of a column, empty when absent
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// IsEmpty reports whether every column is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row; io.EOF signals the end of the file
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
	}
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// ReadAll reads every remaining data row, skipping fully blank lines
func (p *CSVParser) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}
