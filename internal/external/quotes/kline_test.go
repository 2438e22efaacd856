package quotes

import (
	"testing"
)

func TestParseKlines(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{
			name: "valid rows",
			body: `{"data":{"code":"600001","klines":[
				"2024-01-02,10.50,10.80,10.90,10.40,123456",
				"2024-01-03,10.80,10.70,10.95,10.60,98765,1.07"
			]}}`,
			want: 2,
		},
		{
			name: "empty data",
			body: `{"data":{"code":"600001","klines":[]}}`,
			want: 0,
		},
		{
			name: "null data",
			body: `{"data":null}`,
			want: 0,
		},
		{
			name:    "short row",
			body:    `{"data":{"klines":["2024-01-02,10.50,10.80"]}}`,
			wantErr: true,
		},
		{
			name:    "non-numeric price",
			body:    `{"data":{"klines":["2024-01-02,abc,10.80,10.90,10.40,123456"]}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `jQuery123({"data":{}})`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKlines([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseKlines() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != tt.want {
				t.Fatalf("parseKlines() got %d bars, want %d", len(got), tt.want)
			}
			for _, b := range got {
				if b.Date.IsZero() {
					t.Error("parseKlines() bar date is zero")
				}
				if b.High < b.Low {
					t.Errorf("parseKlines() high %v below low %v", b.High, b.Low)
				}
			}
		})
	}
}

func TestParseKlinesFieldOrder(t *testing.T) {
	body := `{"data":{"klines":["2024-01-02,10.50,10.80,10.90,10.40,123456"]}}`
	bars, err := parseKlines([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	b := bars[0]
	// Provider order is date,open,close,high,low,volume.
	if b.Open != 10.50 || b.Close != 10.80 || b.High != 10.90 || b.Low != 10.40 || b.Volume != 123456 {
		t.Errorf("parseKlines() mis-mapped fields: %+v", b)
	}
}

func TestSecID(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"600001", "1.600001"},
		{"000001", "0.000001"},
		{"300750", "0.300750"},
	}
	for _, tt := range tests {
		if got := secID(tt.code); got != tt.want {
			t.Errorf("secID(%s) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestParseSnapshot(t *testing.T) {
	body := `{"data":{"total":3,"diff":[
		{"f12":"600001","f14":"Alpha","f20":5000000000},
		{"f12":"000002","f14":"Beta","f20":"-"},
		{"f12":"","f14":"ghost","f20":1}
	]}}`

	stocks, total, err := parseSnapshot([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(stocks) != 2 {
		t.Fatalf("got %d stocks, want 2", len(stocks))
	}
	if stocks[0].MarketCap != 5e9 {
		t.Errorf("market cap = %v, want 5e9", stocks[0].MarketCap)
	}
	if stocks[1].MarketCap != 0 {
		t.Errorf("suspended market cap = %v, want 0", stocks[1].MarketCap)
	}
}
