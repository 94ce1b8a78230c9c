package errcoll

import (
	"context"
	"fmt"
	"io"
	"time"
)

// WriterErrorCollector is an [Interface] implementation that writes errors to
// a writer, usually stderr.
type WriterErrorCollector struct {
	w io.Writer
}

// NewWriterErrorCollector returns a new properly initialized
// *WriterErrorCollector.  w must not be nil.
func NewWriterErrorCollector(w io.Writer) (c *WriterErrorCollector) {
	return &WriterErrorCollector{
		w: w,
	}
}

// type check
var _ Interface = (*WriterErrorCollector)(nil)

// Collect implements the [Interface] interface for *WriterErrorCollector.
func (c *WriterErrorCollector) Collect(_ context.Context, err error) {
	// Depth 3 skips caller itself, Collect, and the package-level Collect
	// helper.
	_, _ = fmt.Fprintf(c.w, "%s: %s: caught error: %s\n", time.Now(), caller(3), err)
}
