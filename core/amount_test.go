package core

import (
	"strconv"
	"testing"
)

func TestToStroops(t *testing.T) {
	tests := []struct {
		name    string
		xlm     string
		want    int64
		wantErr bool
	}{
		{name: "one lumen", xlm: "1", want: 10_000_000},
		{name: "zero", xlm: "0", want: 0},
		{name: "seven decimals", xlm: "0.0000001", want: 1},
		{name: "fixed format", xlm: "1.0000000", want: 10_000_000},
		{name: "large", xlm: "100", want: 1_000_000_000},
		{name: "fractional", xlm: "2.5", want: 25_000_000},
		{name: "too precise", xlm: "0.00000001", wantErr: true},
		{name: "garbage", xlm: "abc", wantErr: true},
		{name: "empty", xlm: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToStroops(tt.xlm)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToStroops(%q) err = %v, wantErr %v", tt.xlm, err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("ToStroops(%q) = %d, want %d", tt.xlm, got, tt.want)
			}
		})
	}
}

func TestFromStroops(t *testing.T) {
	tests := []struct {
		stroops string
		want    string
		wantErr bool
	}{
		{stroops: "", want: "0"},
		{stroops: "0", want: "0.0000000"},
		{stroops: "1", want: "0.0000001"},
		{stroops: "10000000", want: "1.0000000"},
		{stroops: "25000000", want: "2.5000000"},
		{stroops: "1000000000", want: "100.0000000"},
		{stroops: "not a number", wantErr: true},
	}

	for _, tt := range tests {
		got, err := FromStroops(tt.stroops)
		if (err != nil) != tt.wantErr {
			t.Fatalf("FromStroops(%q) err = %v, wantErr %v", tt.stroops, err, tt.wantErr)
		}

		if got != tt.want {
			t.Errorf("FromStroops(%q) = %q, want %q", tt.stroops, got, tt.want)
		}
	}
}

func TestStroopRoundTrip(t *testing.T) {
	for _, x := range []int64{0, 1, 7, 10_000_000, 10_000_001, 123_456_789, 1_000_000_000_000} {
		xlm, err := FromStroops(strconv.FormatInt(x, 10))
		if err != nil {
			t.Fatalf("round trip %d: %v", x, err)
		}

		got, err := ToStroops(xlm)
		if err != nil {
			t.Fatalf("round trip %d: %v", x, err)
		}

		if got != x {
			t.Errorf("round trip %d = %d", x, got)
		}
	}
}

func TestHasEnoughBalance(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		amount  int64
		want    bool
	}{
		{name: "plenty", balance: 1_000_000_000, amount: 10_000_000, want: true},
		{name: "equal", balance: 10_000_000, amount: 10_000_000, want: true},
		{name: "short by one", balance: 9_999_999, amount: 10_000_000, want: false},
		{name: "zero balance", balance: 0, amount: 1, want: false},
		{name: "zero amount", balance: 0, amount: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasEnoughBalance(tt.balance, tt.amount); got != tt.want {
				t.Errorf("HasEnoughBalance(%d, %d) = %v, want %v", tt.balance, tt.amount, got, tt.want)
			}
		})
	}
}
