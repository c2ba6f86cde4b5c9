package domain

import "testing"

func TestCandleDirection(t *testing.T) {
	c := Candle{Open: 100, Close: 101}
	if c.Direction() != 1 {
		t.Error("close above open must be +1")
	}
	c.Close = 99
	if c.Direction() != -1 {
		t.Error("close below open must be -1")
	}
	c.Close = 100
	if c.Direction() != 0 {
		t.Error("doji must be 0")
	}
}

func TestCandleIndicator(t *testing.T) {
	c := Candle{}
	if _, ok := c.Indicator(IndicatorATR14); ok {
		t.Error("nil indicator map must report absent")
	}
	c.SetIndicator(IndicatorATR14, 2.5)
	v, ok := c.Indicator(IndicatorATR14)
	if !ok || v != 2.5 {
		t.Errorf("got %v/%v, want 2.5/true", v, ok)
	}

	if c.IndicatorTrue(IndicatorBBExpansion) {
		t.Error("absent flag indicator must read false")
	}
	c.SetIndicator(IndicatorBBExpansion, 1)
	if !c.IndicatorTrue(IndicatorBBExpansion) {
		t.Error("flag set to 1 must read true")
	}
}
