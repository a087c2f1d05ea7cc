package extract

import (
	"context"

	"github.com/caseflow/casepipe/constants"
)

// Outcome is the result of running the cascade over one file. The cascade
// never returns an error to its caller: Failed is true exactly when no
// strategy produced text, and Detail carries the last strategy error only
// when the final attempted strategy failed with an error and no text was
// recovered. A strategy that simply returned empty text leaves Detail
// empty.
type Outcome struct {
	Text   string
	Failed bool
	Detail string
}

// A strategy turns raw bytes into text. Returning empty text without an
// error means "nothing found here, try the next one".
type strategy struct {
	name string
	fn   func(ctx context.Context, data []byte) (string, error)
}

// TextExtractor is what the ingestion coordinator depends on.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, format constants.Format) Outcome
}
