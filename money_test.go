package profitbot

import "testing"

func TestMoney_Arithmetic(t *testing.T) {
	revenue := M(800, "KGS")
	cost := M(d("968"), "KGS")

	profit := revenue.Sub(cost)
	if !profit.Equal(M(-168, "KGS")) {
		t.Errorf("profit = %s, want -168.00", profit.Fixed())
	}
	if !profit.IsNegative() {
		t.Errorf("profit should be negative")
	}
	if got := revenue.Add(revenue).Fixed(); got != "1600.00" {
		t.Errorf("sum = %s, want 1600.00", got)
	}
}

func TestMoney_Convert(t *testing.T) {
	cost := M(d("5.50"), "USD")
	converted := cost.Convert(d("88"), "KGS")
	if converted.Currency() != "KGS" {
		t.Errorf("currency = %s, want KGS", converted.Currency())
	}
	if !converted.Equal(M(484, "KGS")) {
		t.Errorf("converted = %s, want 484.00", converted.Fixed())
	}
}

func TestMoney_MulInt(t *testing.T) {
	if got := M(d("484"), "KGS").MulInt(2); !got.Equal(M(968, "KGS")) {
		t.Errorf("484*2 = %s, want 968.00", got.Fixed())
	}
}

func TestMoney_String(t *testing.T) {
	if got := M(d("5.50"), "USD").String(); got != "$5.50" {
		t.Errorf("String() = %q, want $5.50", got)
	}
	if got := M(d("5.50"), "USD").Fixed(); got != "5.50" {
		t.Errorf("Fixed() = %q, want 5.50", got)
	}
}

func TestMoney_WeakCurrency(t *testing.T) {
	sum := M(0, "").Add(M(10, "KGS"))
	if sum.Currency() != "KGS" {
		t.Errorf("currency = %q, want KGS", sum.Currency())
	}
}

func TestMarginOf(t *testing.T) {
	tests := []struct {
		profit, revenue string
		want            Percent
	}{
		{"-168", "800", -21.0},
		{"280", "550", 50.909090909},
		{"0", "0", 0}, // zero revenue is a zero margin, by definition
		{"100", "0", 0},
	}
	for _, tt := range tests {
		got := MarginOf(M(d(tt.profit), "KGS"), M(d(tt.revenue), "KGS"))
		if !got.Equal(tt.want) {
			t.Errorf("MarginOf(%s, %s) = %s, want %s", tt.profit, tt.revenue, got, tt.want)
		}
	}
}

func TestPercent_String(t *testing.T) {
	if got := Percent(-21).String(); got != "-21.0%" {
		t.Errorf("String() = %q, want -21.0%%", got)
	}
	if got := Percent(50.909).String(); got != "50.9%" {
		t.Errorf("String() = %q, want 50.9%%", got)
	}
}
