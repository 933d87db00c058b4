package orders

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNumberFormat(t *testing.T) {
	fixed := time.UnixMilli(1755693000000)
	gen := &NumberGenerator{
		now:    func() time.Time { return fixed },
		suffix: func() string { return "ab3z" },
	}

	number := gen.Next()
	if !strings.HasPrefix(number, "ORD-") {
		t.Fatalf("expected ORD- prefix, got %q", number)
	}
	if !strings.HasSuffix(number, "-AB3Z") {
		t.Fatalf("expected uppercased suffix, got %q", number)
	}
	if number != strings.ToUpper(number) {
		t.Fatalf("expected fully uppercase number, got %q", number)
	}
}

func TestNumberSameMillisecondDiffersBySuffix(t *testing.T) {
	fixed := time.UnixMilli(1755693000000)
	calls := 0
	gen := &NumberGenerator{
		now: func() time.Time { return fixed },
		suffix: func() string {
			calls++
			return fmt.Sprintf("%04d", calls)
		},
	}

	first := gen.Next()
	second := gen.Next()
	if first == second {
		t.Fatalf("expected distinct numbers in the same millisecond, got %q twice", first)
	}
}

func TestNumberRandomSuffixLength(t *testing.T) {
	gen := NewNumberGenerator()
	for i := 0; i < 20; i++ {
		number := gen.Next()
		parts := strings.Split(number, "-")
		if len(parts) != 3 {
			t.Fatalf("expected ORD-<stamp>-<suffix>, got %q", number)
		}
		if len(parts[2]) != numberSuffixLen {
			t.Fatalf("expected %d-char suffix, got %q", numberSuffixLen, parts[2])
		}
	}
}
