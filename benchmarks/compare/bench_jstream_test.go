//go:build jstream

package compare_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/bcicen/jstream"
)

// jstream streams array elements without materializing the whole document,
// the closest external analog to chunked array reads.
func Benchmark_Stream_jstream_Export(b *testing.B) {
	data := exportJSON(b, exportRecords)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec := jstream.NewDecoder(bytes.NewReader(data), 1)
		var n int
		for mv := range dec.Stream() {
			if _, ok := mv.Value.(map[string]any); !ok {
				b.Fatalf("element %d is %T, want object", n, mv.Value)
			}
			n++
		}
		if err := dec.Err(); err != nil && !errors.Is(err, io.EOF) {
			b.Fatal(err)
		}
		if n != exportRecords {
			b.Fatalf("streamed %d records, want %d", n, exportRecords)
		}
	}
}
