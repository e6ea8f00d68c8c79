package portfolio

import (
	"bytes"
	"strings"
	"testing"
)

func TestExportCSVFormat(t *testing.T) {
	holdings := []Item{
		krwHolding("005930", 70000, 5),
		usdHolding("AAPL", 185.5, 10),
	}
	holdings[0].Name = "삼성전자"
	holdings[1].Name = "Apple Inc."

	data, err := ExportCSV(holdings)
	if err != nil {
		t.Fatalf("ExportCSV() failed: %v", err)
	}

	if !bytes.HasPrefix(data, []byte("\xEF\xBB\xBF")) {
		t.Error("Export missing UTF-8 BOM")
	}
	if !bytes.Contains(data, []byte("\r\n")) {
		t.Error("Export missing CRLF line endings")
	}

	text := string(data)
	if !strings.Contains(text, "symbol,name,market,currency,avgPrice,quantity") {
		t.Errorf("Header row missing: %q", text)
	}
	if !strings.Contains(text, "005930,삼성전자,KRX,KRW,70000,5") {
		t.Errorf("KRW row missing: %q", text)
	}
	if !strings.Contains(text, "AAPL,Apple Inc.,NASDAQ,USD,185.5,10") {
		t.Errorf("USD row missing: %q", text)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	original := []Item{
		krwHolding("005930", 70350.5, 5),
		usdHolding("AAPL", 185.5, 10),
		krwHolding("069500", 32415, 100),
	}
	original[0].Name = "삼성전자"
	original[2].Name = "KODEX 200"

	data, err := ExportCSV(original)
	if err != nil {
		t.Fatalf("ExportCSV() failed: %v", err)
	}

	parsed, rowErrs := ImportCSV(data)
	if len(rowErrs) != 0 {
		t.Fatalf("Round-trip produced row errors: %v", rowErrs)
	}
	if len(parsed) != len(original) {
		t.Fatalf("len(parsed) = %d, want %d", len(parsed), len(original))
	}

	bySymbol := make(map[string]Item, len(parsed))
	for _, item := range parsed {
		bySymbol[item.Symbol] = item
	}
	for _, want := range original {
		got, ok := bySymbol[want.Symbol]
		if !ok {
			t.Errorf("Symbol %s lost in round trip", want.Symbol)
			continue
		}
		if got.Name != want.Name || got.Market != want.Market || got.Currency != want.Currency ||
			got.AvgPrice != want.AvgPrice || got.Quantity != want.Quantity {
			t.Errorf("Round trip mismatch for %s: got %+v, want %+v", want.Symbol, got, want)
		}
	}
}

func TestImportCSVCollectsRowErrors(t *testing.T) {
	csvData := strings.Join([]string{
		"symbol,name,market,currency,avgPrice,quantity",
		"005930,삼성전자,KRX,KRW,70000,5",
		",missing symbol,KRX,KRW,1000,1",
		"AAPL,Apple,LSE,USD,185.5,10",
		"MSFT,Microsoft,NASDAQ,EUR,411,3",
		"GOOG,Alphabet,NASDAQ,USD,-5,2",
		"AMZN,Amazon,NASDAQ,USD,180,2.5",
		"TSLA,Tesla,NASDAQ,USD,250,4",
	}, "\r\n")

	items, rowErrs := ImportCSV([]byte(csvData))

	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2 valid rows, got %+v", len(items), items)
	}
	if len(rowErrs) != 5 {
		t.Fatalf("len(rowErrs) = %d, want 5: %+v", len(rowErrs), rowErrs)
	}

	// 행 번호는 헤더 제외 1부터
	if rowErrs[0].Row != 2 {
		t.Errorf("First error row = %d, want 2", rowErrs[0].Row)
	}
	if !strings.Contains(rowErrs[1].Message, "market") {
		t.Errorf("Expected market error, got %q", rowErrs[1].Message)
	}
}

func TestImportCSVWithoutHeader(t *testing.T) {
	items, rowErrs := ImportCSV([]byte("005930,삼성전자,KRX,KRW,70000,5\r\n"))
	if len(rowErrs) != 0 {
		t.Fatalf("rowErrs = %v, want none", rowErrs)
	}
	if len(items) != 1 || items[0].Symbol != "005930" {
		t.Errorf("items = %+v, want single holding", items)
	}
}

func TestImportCSVNormalizesSymbolCase(t *testing.T) {
	items, _ := ImportCSV([]byte("aapl,Apple,NASDAQ,USD,185.5,10\r\n"))
	if len(items) != 1 || items[0].Symbol != "AAPL" {
		t.Errorf("items = %+v, want uppercased AAPL", items)
	}
}

func TestImportCSVEmptyInput(t *testing.T) {
	items, rowErrs := ImportCSV([]byte("\xEF\xBB\xBF"))
	if len(items) != 0 || len(rowErrs) != 0 {
		t.Errorf("items=%v errs=%v, want both empty", items, rowErrs)
	}
}

func TestImportCSVQuotedNameWithComma(t *testing.T) {
	items, rowErrs := ImportCSV([]byte("BRK-B,\"Berkshire Hathaway, Class B\",NYSE,USD,400,1\r\n"))
	if len(rowErrs) != 0 {
		t.Fatalf("rowErrs = %v", rowErrs)
	}
	if items[0].Name != "Berkshire Hathaway, Class B" {
		t.Errorf("Name = %q, quoting not honored", items[0].Name)
	}
}
