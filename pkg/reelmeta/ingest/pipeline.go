package ingest

// Pipeline orchestrates the text side of a run:
// script → scenes with keywords, full text → categories
type Pipeline struct {
	segmenter *Segmenter
	taxonomy  *Taxonomy
}

// NewPipeline creates an ingestion pipeline with the given components
func NewPipeline(segmenter *Segmenter, taxonomy *Taxonomy) *Pipeline {
	return &Pipeline{
		segmenter: segmenter,
		taxonomy:  taxonomy,
	}
}

// ProcessedScript is a script after segmentation and classification
type ProcessedScript struct {
	Scenes     []Scene
	Categories []string
	Language   string
}

// Process segments script and classifies its full text. The language is
// detected on the whole script with fallback as the default.
func (p *Pipeline) Process(script, fallback string) (ProcessedScript, error) {
	scenes, err := p.segmenter.Segment(script)
	if err != nil {
		return ProcessedScript{}, err
	}
	return ProcessedScript{
		Scenes:     scenes,
		Categories: p.taxonomy.Classify(script),
		Language:   DetectLanguage(script, fallback),
	}, nil
}

// Segmenter returns the pipeline's segmenter
func (p *Pipeline) Segmenter() *Segmenter { return p.segmenter }

// Taxonomy returns the pipeline's taxonomy
func (p *Pipeline) Taxonomy() *Taxonomy { return p.taxonomy }
