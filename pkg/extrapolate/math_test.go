package extrapolate

import (
	"errors"
	"testing"
)

func TestLCMTable(t *testing.T) {
	cases := []struct {
		in   []int64
		want int64
	}{
		{[]int64{8, 12}, 24},
		{[]int64{1, 3}, 3},
		{[]int64{20, 4}, 20},
		{[]int64{11, 11}, 11},
		{[]int64{5, 7}, 35},
		{[]int64{3, 4}, 12},
		{[]int64{9}, 9},
		{[]int64{4, 0}, 0},
		{[]int64{3733, 3797, 3907, 3911}, 216_585_717_533_677},
	}
	for _, tc := range cases {
		got, err := LCM(tc.in...)
		if err != nil {
			t.Fatalf("LCM(%v): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("LCM(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestLCMProperties(t *testing.T) {
	for a := 1; a <= 30; a++ {
		for b := 1; b <= 30; b++ {
			l, err := LCM(a, b)
			if err != nil {
				t.Fatalf("LCM(%d, %d): %v", a, b, err)
			}
			if l%a != 0 || l%b != 0 {
				t.Fatalf("LCM(%d, %d) = %d is not a common multiple", a, b, l)
			}
			for m := 1; m < l; m++ {
				if m%a == 0 && m%b == 0 {
					t.Fatalf("LCM(%d, %d) = %d but %d is smaller", a, b, l, m)
				}
			}
			if GCD(a, b)*l != a*b {
				t.Fatalf("GCD(%d, %d)*LCM != a*b", a, b)
			}
		}
	}
}

func TestGCD(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{12, 8, 4},
		{7, 5, 1},
		{0, 9, 9},
		{-12, 18, 6},
	}
	for _, tc := range cases {
		if got := GCD(tc.a, tc.b); got != tc.want {
			t.Fatalf("GCD(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
	if got := GCD[uint8](200, 150); got != 50 {
		t.Fatalf("GCD[uint8](200, 150) = %d, want 50", got)
	}
}

func TestLCMPanicsWithoutArguments(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	LCM[int]()
}

func TestLCMOverflow(t *testing.T) {
	if got, err := LCM[int64](1<<40, 3<<40); err != nil || got != 3<<40 {
		t.Fatalf("LCM(1<<40, 3<<40) = %d, %v", got, err)
	}
	if _, err := LCM[int64](1<<62-1, 1<<61-1); !errors.Is(err, ErrHorizonExceeded) {
		t.Fatalf("expected overflow error, got %v", err)
	}
	if _, err := LCM[uint8](16, 17); !errors.Is(err, ErrHorizonExceeded) {
		t.Fatalf("expected uint8 overflow error, got %v", err)
	}
	if got, err := LCM(-4, 6); err != nil || got != 12 {
		t.Fatalf("LCM(-4, 6) = %d, %v", got, err)
	}
}
