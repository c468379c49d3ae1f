package embedding

import (
	"hash/fnv"
	"strings"
)

// BERT special token IDs shared by sentence-transformer vocabularies.
const (
	clsTokenID = 101
	sepTokenID = 102
)

// Tokenizer produces the input_ids, attention_mask and token_type_ids slices
// a BERT-style encoder expects, padded to maxTokens.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// HashTokenizer assigns each whitespace-separated word a token ID derived
// from its hash. It carries no real vocabulary, but identical text always
// yields identical inputs, which is what embedding lookups need.
type HashTokenizer struct{}

// Tokenize wraps the hashed word IDs in CLS/SEP markers and pads to maxTokens.
func (HashTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}

	ids := make([]int64, 0, maxTokens)
	ids = append(ids, clsTokenID)
	for _, word := range strings.Fields(text) {
		if len(ids) >= maxTokens-1 {
			break
		}
		// Offset past the reserved special-token range.
		ids = append(ids, 1000+int64(HashString(word)%29000))
	}
	if len(ids) < maxTokens {
		ids = append(ids, sepTokenID)
	}

	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)
	for i, id := range ids {
		inputIDs[i] = id
		attentionMask[i] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// HashString returns a stable non-negative FNV-1a hash of s.
func HashString(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() & 0x7fffffff)
}
