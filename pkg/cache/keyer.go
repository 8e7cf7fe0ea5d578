package cache

// Keyer derives cache keys. Keys embed a hash of every option that changes
// the cached value, so option changes never serve stale entries.
type Keyer interface {
	// HTTPKey keys a fetched remote resource.
	HTTPKey(namespace, key string) string

	// GraphKey keys a flow graph built from the dataset with the given digest.
	GraphKey(datasetHash string, opts GraphKeyOpts) string

	// ArtifactKey keys a rendered artifact of the given content.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts are the inputs to flow.Build besides the records.
type GraphKeyOpts struct {
	Year           string  `json:"year"`
	Origin         string  `json:"origin"`
	Asylum         string  `json:"asylum"`
	MinValue       float64 `json:"min_value"`
	DisablePruning bool    `json:"disable_pruning"`
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Kind   string  `json:"kind"`
	Format string  `json:"format"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Title  string  `json:"title,omitempty"`

	// Filters is the normalized selection shown inside flow artifacts.
	Filters string `json:"filters,omitempty"`
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) GraphKey(datasetHash string, opts GraphKeyOpts) string {
	return hashKey("graph", datasetHash, opts)
}

func (DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", contentHash, opts)
}

var _ Keyer = DefaultKeyer{}
