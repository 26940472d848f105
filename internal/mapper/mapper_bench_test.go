package mapper

import (
	"encoding/json"
	"testing"
)

// BenchmarkParse benchmarks mapping the full citypage fixture.
func BenchmarkParse(b *testing.B) {
	data := loadFixture(b, "s0000635_e.xml")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(data)
	}
}

// BenchmarkParseAndEncode benchmarks the default output path: map, then encode as JSON.
func BenchmarkParseAndEncode(b *testing.B) {
	data := loadFixture(b, "s0000635_e.xml")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cc, err := Parse(data)
		if err != nil {
			b.Fatal(err)
		}
		_, _ = json.Marshal(cc)
	}
}
