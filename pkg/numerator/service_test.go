package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64 // Simulates sys_sequences: one value per key
	calls  int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.values == nil {
		m.values = make(map[string]int64)
	}
	key, _ := args[0].(string)

	// Strict passes (key); cached passes (key, increment).
	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.values[key] += increment
	return &mockRow{val: m.values[key]}
}

func (m *mockQuerier) value(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("TEST")
	period := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEST-2024-00001" {
		t.Errorf("expected TEST-2024-00001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEST-2024-00002" {
		t.Errorf("expected TEST-2024-00002, got %s", num)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("ORD")
	period := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	opts := &Options{
		Strategy:  StrategyCached,
		RangeSize: 10,
	}

	// First call allocates the range 1..10: DB jumps to 10, number is 1.
	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ORD-2024-00001" {
		t.Errorf("expected ORD-2024-00001, got %s", num)
	}
	if got := q.value("ORD_2024"); got != 10 {
		t.Errorf("expected DB value to be 10, got %d", got)
	}

	// Second call is served from memory, no DB change.
	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ORD-2024-00002" {
		t.Errorf("expected ORD-2024-00002, got %s", num)
	}
	if got := q.value("ORD_2024"); got != 10 {
		t.Errorf("expected DB value to stay 10, got %d", got)
	}

	// Exhaust the range; the next call reserves 11..20.
	for i := 0; i < 8; i++ {
		_, _ = svc.GetNextNumber(ctx, cfg, opts, period)
	}

	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ORD-2024-00011" {
		t.Errorf("expected ORD-2024-00011, got %s", num)
	}
	if got := q.value("ORD_2024"); got != 20 {
		t.Errorf("expected DB value to be 20, got %d", got)
	}
}

func TestBuildKey_Scoping(t *testing.T) {
	svc := New(&mockQuerier{})
	period := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "global yearly",
			cfg:  Config{Prefix: "SAL", ResetPeriod: "year"},
			want: "SAL_2024",
		},
		{
			name: "scoped yearly",
			cfg:  Config{Prefix: "SAL", Scope: "branch-1", ResetPeriod: "year"},
			want: "SAL_branch-1_2024",
		},
		{
			name: "monthly reset",
			cfg:  Config{Prefix: "RET", ResetPeriod: "month"},
			want: "RET_2024_03",
		},
		{
			name: "no reset",
			cfg:  Config{Prefix: "DOC"},
			want: "DOC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.buildKey(tt.cfg, period)
			if got != tt.want {
				t.Errorf("buildKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetNextNumber_ScopesAreIndependent(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	period := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	opts := &Options{Strategy: StrategyCached, RangeSize: 5}

	a := DefaultConfig("SAL").WithScope("branch-a")
	b := DefaultConfig("SAL").WithScope("branch-b")

	numA, err := svc.GetNextNumber(ctx, a, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	numB, err := svc.GetNextNumber(ctx, b, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Each scope gets its own cached range starting at 1.
	if numA != "SAL-2024-00001" {
		t.Errorf("expected SAL-2024-00001 for scope a, got %s", numA)
	}
	if numB != "SAL-2024-00001" {
		t.Errorf("expected SAL-2024-00001 for scope b, got %s", numB)
	}
	if q.calls != 2 {
		t.Errorf("expected 2 range allocations, got %d", q.calls)
	}

	// Advancing one scope does not bleed into the other.
	numA, err = svc.GetNextNumber(ctx, a, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if numA != "SAL-2024-00002" {
		t.Errorf("expected SAL-2024-00002 for scope a, got %s", numA)
	}
	if got := q.value("SAL_branch-b_2024"); got != 5 {
		t.Errorf("expected scope b range to stay at 5, got %d", got)
	}
}

func TestFormatNumber(t *testing.T) {
	svc := New(&mockQuerier{})
	period := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  Config
		num  int64
		want string
	}{
		{"with year", Config{Prefix: "INV", IncludeYear: true, PadWidth: 5}, 42, "INV-2024-00042"},
		{"without year", Config{Prefix: "INV", PadWidth: 5}, 42, "INV-00042"},
		{"default padding", Config{Prefix: "INV", IncludeYear: true}, 7, "INV-2024-00007"},
		{"wide number", Config{Prefix: "INV", IncludeYear: true, PadWidth: 3}, 12345, "INV-2024-12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.formatNumber(tt.cfg, period, tt.num)
			if got != tt.want {
				t.Errorf("formatNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"INV-2024-00042", 42},
		{"INV-00042", 42},
		{"RET-2024-00007", 7},
		{"garbage", -1},
		{"INV-2024-", -1},
		{"INV-2024-00x42", -1},
		{"", -1},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
