package domain

type CatalogueSource string

const (
	CatalogueSourceRemote   CatalogueSource = "remote"
	CatalogueSourceEmbedded CatalogueSource = "embedded"
)

// CollectorDef describes one entry of the collector catalogue.
type CollectorDef struct {
	Name            string
	Category        string
	Priority        int // 1 (highest) .. 5
	QuotaLimitedAPI bool
}

// Catalogue is the resolved collector set together with its origin, so
// a fallback to the embedded set is a value rather than a caught error.
type Catalogue struct {
	Collectors []CollectorDef
	Source     CatalogueSource
}
