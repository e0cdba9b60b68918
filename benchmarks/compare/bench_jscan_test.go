//go:build jscan

package compare_test

import (
	"testing"

	"github.com/romshark/jscan"
)

// jscan walks the document without decoding values, a floor for what any
// scanner-backed loader could cost.
func Benchmark_Scan_jscan_Export(b *testing.B) {
	src := string(exportJSON(b, exportRecords))
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var n int
		err := jscan.Scan(jscan.Options{}, src, func(*jscan.Iterator) (exit bool) {
			n++
			return false
		})
		if err.IsErr() {
			b.Fatal(err)
		}
		if n == 0 {
			b.Fatal("scanned nothing")
		}
	}
}
