package wmbuspipe

import (
	"io"
	"testing"
	"time"
)

// BenchmarkClassify measures classification of a typical telegram line
func BenchmarkClassify(b *testing.B) {
	line := "T1;1;1;2019-11-11 10:00:00.000;-62;-71;12345678;0x2e4493157856341233037a2a0000002f2f0c1427048502046d32371f1502fd1700002f2f"

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, ok := Classify(line); !ok {
			b.Fatal("telegram not recognized")
		}
	}
}

// BenchmarkClassifyMiss measures the worst case, a line scanned for every marker
func BenchmarkClassifyMiss(b *testing.B) {
	line := "rtl_wmbus: T1 packet decoder: preamble found but frame length is out of range"

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, ok := Classify(line); ok {
			b.Fatal("noise recognized as telegram")
		}
	}
}

// BenchmarkFilterProcess measures the per-line cost of the read loop body
func BenchmarkFilterProcess(b *testing.B) {
	raw := "C1;1;1;2019-11-11 10:00:00.000;-62;-71;12345678;0x2e44\n"
	start := time.Unix(0, 0)
	f := NewFilter(io.Discard, DefaultRateWindow, start, WithFilterMetrics(NewMetrics()))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := f.Process(raw, start.Add(time.Duration(i)*time.Millisecond)); err != nil {
			b.Fatal(err)
		}
	}
}
