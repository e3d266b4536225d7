package depparse

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	depruntime "github.com/jward/depparse/internal/runtime"
	"github.com/jward/depparse/scripts"
)

// benchCorpus builds n right-branching sentences of length 1..maxLen with
// gold heads i -> i+1.
func benchCorpus(n, maxLen int) ([][]Token, [][]int) {
	sentences := make([][]Token, n)
	heads := make([][]int, n)
	for i := range n {
		length := i%maxLen + 1
		sentences[i] = make([]Token, length)
		heads[i] = make([]int, length)
		for j := range length {
			sentences[i][j] = Token(fmt.Sprintf("w%d", j))
			heads[i][j] = j
		}
	}
	return sentences, heads
}

// BenchmarkParseBatch measures a full gold-oracle session at several batch
// sizes over 256 sentences.
func BenchmarkParseBatch(b *testing.B) {
	sentences, heads := benchCorpus(256, 20)
	oracle := NewGoldOracle(heads...)
	ctx := context.Background()

	for _, size := range []int{1, 16, 64, 256} {
		b.Run(fmt.Sprintf("batch=%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := ParseBatch(ctx, sentences, oracle, size); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkParseBatch_Workers measures the parallel apply path.
func BenchmarkParseBatch_Workers(b *testing.B) {
	sentences, heads := benchCorpus(256, 20)
	oracle := NewGoldOracle(heads...)
	ctx := context.Background()

	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			p := NewBatchParser(oracle, WithBatchSize(256), WithWorkers(workers))
			for i := 0; i < b.N; i++ {
				if _, err := p.Parse(ctx, sentences); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkScriptOracle_Baseline measures one Risor evaluation per
// configuration with the embedded baseline script.
func BenchmarkScriptOracle_Baseline(b *testing.B) {
	sentences, _ := benchCorpus(16, 10)
	oracle := NewScriptOracle(depruntime.OracleScriptPath("baseline"), WithScriptsFS(scripts.FS))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseBatch(ctx, sentences, oracle, 16); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEngine_ParseSentences measures parse plus commit into a fresh
// treebank.
func BenchmarkEngine_ParseSentences(b *testing.B) {
	sentences, heads := benchCorpus(128, 20)
	oracle := NewGoldOracle(heads...)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		e, err := New(filepath.Join(b.TempDir(), "bench.db"))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		if _, err := e.ParseSentences(ctx, oracle, sentences); err != nil {
			e.Close()
			b.Fatal(err)
		}

		b.StopTimer()
		e.Close()
		b.StartTimer()
	}
}
