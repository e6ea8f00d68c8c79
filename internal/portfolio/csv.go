package portfolio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// utf8BOM keeps Excel from mangling Korean names in exported files.
const utf8BOM = "\xEF\xBB\xBF"

var csvHeader = []string{"symbol", "name", "market", "currency", "avgPrice", "quantity"}

// RowError reports one rejected import row. Valid rows around it are
// still imported.
type RowError struct {
	Row     int    `json:"row"` // 1-based, header excluded
	Line    string `json:"line"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ExportCSV renders holdings as RFC4180 CSV with a UTF-8 BOM and CRLF
// line endings.
func ExportCSV(holdings []Item) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, item := range holdings {
		record := []string{
			item.Symbol,
			item.Name,
			string(item.Market),
			string(item.Currency),
			strconv.FormatFloat(item.AvgPrice, 'f', -1, 64),
			strconv.FormatInt(item.Quantity, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportCSV parses an exported file back into holdings. Malformed rows
// are collected as RowErrors instead of aborting the import; IDs are
// left empty for the repository to assign.
func ImportCSV(data []byte) ([]Item, []RowError) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // 행별로 검증한다
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, []RowError{{Row: 0, Message: fmt.Sprintf("invalid csv: %v", err)}}
	}
	if len(records) == 0 {
		return []Item{}, nil
	}

	if isHeaderRow(records[0]) {
		records = records[1:]
	}

	items := make([]Item, 0, len(records))
	var rowErrs []RowError
	for i, record := range records {
		item, err := parseRow(record)
		if err != nil {
			rowErrs = append(rowErrs, RowError{
				Row:     i + 1,
				Line:    strings.Join(record, ","),
				Message: err.Error(),
			})
			continue
		}
		items = append(items, item)
	}
	return items, rowErrs
}

func isHeaderRow(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "symbol")
}

func parseRow(record []string) (Item, error) {
	if len(record) != len(csvHeader) {
		return Item{}, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(record))
	}

	symbol := strings.ToUpper(strings.TrimSpace(record[0]))
	if symbol == "" {
		return Item{}, fmt.Errorf("symbol is empty")
	}

	mkt := stock.Market(strings.ToUpper(strings.TrimSpace(record[2])))
	switch mkt {
	case stock.MarketKRX, stock.MarketNYSE, stock.MarketNASDAQ:
	default:
		return Item{}, fmt.Errorf("unknown market %q", record[2])
	}

	cur := stock.Currency(strings.ToUpper(strings.TrimSpace(record[3])))
	if cur != stock.CurrencyKRW && cur != stock.CurrencyUSD {
		return Item{}, fmt.Errorf("unknown currency %q", record[3])
	}

	avgPrice, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	if err != nil || avgPrice <= 0 {
		return Item{}, fmt.Errorf("avgPrice must be a positive number, got %q", record[4])
	}

	quantity, err := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
	if err != nil || quantity <= 0 {
		return Item{}, fmt.Errorf("quantity must be a positive integer, got %q", record[5])
	}

	return Item{
		Symbol:   symbol,
		Name:     strings.TrimSpace(record[1]),
		Market:   mkt,
		Currency: cur,
		AvgPrice: avgPrice,
		Quantity: quantity,
	}, nil
}
