package domain

type BatchType string

const (
	BatchTypeRateLimited BatchType = "rate_limited"
	BatchTypeStandard    BatchType = "standard"
)

// Batch is one dispatch unit handed to the external workflow engine.
// Batches are derived deterministically from the filtered catalogue and
// are never persisted on their own.
type Batch struct {
	ID          string
	Type        BatchType
	Collectors  []CollectorDef
	RateLimited bool
}

func (b Batch) CollectorNames() []string {
	names := make([]string, 0, len(b.Collectors))
	for _, c := range b.Collectors {
		names = append(names, c.Name)
	}
	return names
}
