package marketdata

import (
	"testing"
	"time"

	"github.com/nseweekly/engine/internal/domain"
)

func dayAt(y int, m time.Month, d int, o, h, l, c, v float64) domain.DailyBar {
	return domain.DailyBar{
		Symbol: "X", Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Open: o, High: h, Low: l, Close: c, Volume: v,
	}
}

func TestResampleWeekly_AggregatesMondayToFriday(t *testing.T) {
	// 2026-07-27 is a Monday.
	bars := []domain.DailyBar{
		dayAt(2026, 7, 27, 100, 105, 99, 102, 1000),
		dayAt(2026, 7, 28, 102, 108, 101, 106, 1200),
		dayAt(2026, 7, 29, 106, 107, 103, 104, 900),
		dayAt(2026, 7, 30, 104, 110, 103, 109, 1500),
		dayAt(2026, 7, 31, 109, 112, 107, 111, 1100),
	}
	weeks := ResampleWeekly("X", bars)
	if len(weeks) != 1 {
		t.Fatalf("expected 1 complete week, got %d", len(weeks))
	}
	w := weeks[0]
	if w.Open != 100 || w.Close != 111 {
		t.Errorf("open/close = %.2f/%.2f, want 100/111", w.Open, w.Close)
	}
	if w.High != 112 || w.Low != 99 {
		t.Errorf("high/low = %.2f/%.2f, want 112/99", w.High, w.Low)
	}
	wantVolume := 1000.0 + 1200 + 900 + 1500 + 1100
	if w.Volume != wantVolume {
		t.Errorf("volume = %.2f, want %.2f", w.Volume, wantVolume)
	}
}

func TestResampleWeekly_DropsPartialFinalWeek(t *testing.T) {
	bars := []domain.DailyBar{
		dayAt(2026, 7, 27, 100, 105, 99, 102, 1000),
		dayAt(2026, 7, 28, 102, 108, 101, 106, 1200),
		dayAt(2026, 7, 29, 106, 107, 103, 104, 900), // Wednesday: week incomplete
	}
	weeks := ResampleWeekly("X", bars)
	if len(weeks) != 0 {
		t.Errorf("expected the partial final week to be dropped, got %d weeks", len(weeks))
	}
}
