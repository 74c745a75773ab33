package tabinspect

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"
)

// utf8BOM is stripped from the first header cell of delimited files
const utf8BOM = "\ufeff"

// parser reads one input format into a header and raw string records
type parser struct {
	fileType    FileType
	compression CompressionType
	name        string
}

// newParser creates a new parser
func newParser(fileType FileType, compression CompressionType, name string) *parser {
	return &parser{
		fileType:    fileType,
		compression: compression,
		name:        name,
	}
}

// parse decompresses reader and parses its content into a Dataset
func (p *parser) parse(ctx context.Context, reader io.Reader) (*Dataset, error) {
	decompressed, cleanup, err := newDecompressedReader(reader, p.compression)
	if err != nil {
		return nil, fmt.Errorf("failed to create decompressed reader: %w", err)
	}
	defer func() {
		_ = cleanup() // Ignore close error on a read-only stream
	}()

	var (
		header  []string
		records [][]string
	)
	switch p.fileType {
	case FileTypeCSV:
		header, records, err = p.parseDelimited(decompressed, csvDelimiter, "CSV")
	case FileTypeTSV:
		header, records, err = p.parseDelimited(decompressed, tsvDelimiter, "TSV")
	case FileTypeLTSV:
		header, records, err = p.parseLTSV(decompressed)
	case FileTypeParquet:
		header, records, err = p.parseParquet(ctx, decompressed)
	case FileTypeXLSX:
		header, records, err = p.parseXLSX(decompressed)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	return newDatasetFromStrings(p.name, header, records)
}

// parseDelimited parses CSV or TSV data
func (p *parser) parseDelimited(reader io.Reader, delimiter rune, fileTypeName string) ([]string, [][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read %s: %w", ErrInvalidData, fileTypeName, err)
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty %s data", ErrEmptyData, fileTypeName)
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	return header, records[1:], nil
}

// parseLTSV parses LTSV data. Columns are ordered by first appearance.
func (p *parser) parseLTSV(reader io.Reader) ([]string, [][]string, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read LTSV: %w", err)
	}

	var (
		header  []string
		seen    = make(map[string]bool)
		records []map[string]string
	)
	for line := range strings.SplitSeq(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		recordMap := make(map[string]string)
		for pair := range strings.SplitSeq(line, "\t") {
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			recordMap[key] = strings.TrimSpace(kv[1])
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
		if len(recordMap) > 0 {
			records = append(records, recordMap)
		}
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: no valid LTSV records found", ErrEmptyData)
	}

	rows := make([][]string, 0, len(records))
	for _, recordMap := range records {
		row := make([]string, len(header))
		for i, key := range header {
			row[i] = recordMap[key]
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// parseParquet parses Parquet data. Parquet requires random access, so the
// whole stream is read into memory first.
func (p *parser) parseParquet(ctx context.Context, reader io.Reader) ([]string, [][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: empty parquet file", ErrEmptyData)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create parquet reader: %w", ErrInvalidData, err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer table.Release()

	schema := table.Schema()
	header := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	records := make([][]string, 0, table.NumRows())
	for tableReader.Next() {
		batch := tableReader.Record()
		for i := range int(batch.NumRows()) {
			row := make([]string, batch.NumCols())
			for j, col := range batch.Columns() {
				row[j] = extractValueFromArrowArray(col, i)
			}
			records = append(records, row)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading table records: %w", err)
	}

	return header, records, nil
}

// extractValueFromArrowArray renders a single arrow cell as the string form
// the column inference understands. Nulls become empty strings.
func extractValueFromArrowArray(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return ""
	}

	switch a := arr.(type) {
	case *array.Boolean:
		if a.Value(i) {
			return "1"
		}
		return "0"
	case *array.Date32:
		return a.Value(i).ToTime().UTC().Format(time.DateOnly)
	case *array.Date64:
		return a.Value(i).ToTime().UTC().Format(time.DateOnly)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC().Format(time.RFC3339Nano)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	default:
		return arr.ValueStr(i)
	}
}

// parseXLSX parses the first sheet of an XLSX workbook
func (p *parser) parseXLSX(reader io.Reader) ([]string, [][]string, error) {
	xlsxFile, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open workbook: %w", ErrInvalidData, err)
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, nil, fmt.Errorf("%w: no sheets found in workbook", ErrEmptyData)
	}

	sheetName := sheetNames[0]
	rows, err := xlsxFile.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %s is empty", ErrEmptyData, sheetName)
	}

	header, records := convertXLSXRows(rows)
	return header, records, nil
}

// convertXLSXRows converts XLSX rows to header and records.
// First row becomes the header, remaining rows are padded to the header width.
func convertXLSXRows(rows [][]string) ([]string, [][]string) {
	header := make([]string, len(rows[0]))
	copy(header, rows[0])

	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make([]string, len(header))
		for j := range header {
			if j < len(row) {
				record[j] = row[j]
			}
		}
		records = append(records, record)
	}
	return header, records
}
