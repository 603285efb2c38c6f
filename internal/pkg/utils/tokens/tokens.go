package tokens

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	once  sync.Once
	codec tokenizer.Codec
)

// Estimate returns the approximate token count of text under the cl100k
// encoding. Returns 0 when the tokenizer is unavailable; the estimate is
// informational and never blocks a run.
func Estimate(text string) int {
	once.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})
	if codec == nil || text == "" {
		return 0
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}
