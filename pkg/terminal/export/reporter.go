package export

import (
	"encoding/json"
	"io"
	"os"
)

// Reporter writes stage outputs as JSON documents the workflow engine
// (or an operator) consumes from stdout.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (r *Reporter) Handle(v any) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
