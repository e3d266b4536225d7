package store

import (
	"crypto/sha256"
	"fmt"
)

// ComputeSentenceHash computes a deterministic hash of a sentence's token
// forms and the oracle that parses it. Reparsing with a different oracle
// yields a different hash.
func ComputeSentenceHash(oracle string, forms []string) string {
	h := sha256.New()
	fmt.Fprintf(h, "oracle:%s\n", oracle)
	fmt.Fprintf(h, "tokens:%d\n", len(forms))
	for i, f := range forms {
		// Length-prefixed so ["a b"] and ["a", "b"] differ.
		fmt.Fprintf(h, "token:%d:%d:%s\n", i+1, len(f), f)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
