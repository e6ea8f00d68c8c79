package naver

import (
	"context"
	"net/http"
	"testing"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

func TestSearch(t *testing.T) {
	body := `{"items":[
		{"code":"005930","name":"삼성전자","typeCode":"stock","typeName":"코스피"},
		{"code":"035420","name":"NAVER","typeCode":"stock","typeName":"코스닥"},
		{"code":"069500","name":"KODEX 200","typeCode":"etf","typeName":"ETF"},
		{"code":"KS11","name":"코스피지수","typeCode":"index","typeName":"지수"},
		{"code":"AAPL","name":"애플","typeCode":"stock","typeName":"나스닥"}
	],"totalCount":5}`

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ac" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("target") != "stock" {
			t.Errorf("Expected target=stock, got %s", r.URL.Query().Get("target"))
		}
		w.Write([]byte(body))
	}))

	results, err := client.Search(context.Background(), "삼성")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}

	// Indices and foreign listings are dropped
	if len(results) != 3 {
		t.Fatalf("Got %d results, want 3", len(results))
	}

	if results[0].Symbol != "005930" || results[0].AssetType != stock.AssetStock {
		t.Errorf("First result = %s/%s, want 005930/stock", results[0].Symbol, results[0].AssetType)
	}
	if results[2].AssetType != stock.AssetETF {
		t.Errorf("ETF item classified as %s, want etf", results[2].AssetType)
	}
}

func TestSearchEmpty(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[],"totalCount":0}`))
	}))

	results, err := client.Search(context.Background(), "없는종목")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty results, got %d", len(results))
	}
}
