package core

import (
	"math"
	"testing"
	"time"
)

func TestMonthlyBar_Gap(t *testing.T) {
	tests := []struct {
		name string
		bar  MonthlyBar
		want bool
	}{
		{"observed", MonthlyBar{Time: time.Now(), Open: 10, Close: 11}, false},
		{"zero close is still observed", MonthlyBar{Close: 0}, false},
		{"gap", MonthlyBar{Open: math.NaN(), Close: math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bar.Gap(); got != tt.want {
				t.Errorf("Gap() = %v, want %v", got, tt.want)
			}
		})
	}
}
