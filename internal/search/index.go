// Package search maintains the full-text title index that backs the search
// path of job listing queries. The index holds only titles keyed by natural
// job_id; filtering, ordering, and pagination stay in the record store.
package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/jackgladowsky/tierjobs/pkg/models"
)

// Index wraps a Bleve search index over job titles.
type Index struct {
	index bleve.Index
}

type titleDoc struct {
	Title string
}

// Open opens or creates the index at path. An empty path yields an in-memory
// index, rebuilt from the store on startup.
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Close closes the index
func (i *Index) Close() error {
	return i.index.Close()
}

// IndexJob adds or replaces a job title in the index.
func (i *Index) IndexJob(jobID, title string) error {
	return i.index.Index(jobID, titleDoc{Title: title})
}

// Delete removes a job from the index.
func (i *Index) Delete(jobID string) error {
	return i.index.Delete(jobID)
}

// Reindex replaces the index contents for the given jobs in one batch, used
// to rebuild in-memory indexes from the store on startup.
func (i *Index) Reindex(jobs []models.Job) error {
	batch := i.index.NewBatch()
	for _, j := range jobs {
		if err := batch.Index(j.JobID, titleDoc{Title: j.Title}); err != nil {
			return fmt.Errorf("batch index %s: %w", j.JobID, err)
		}
	}

	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	return nil
}

// searchPageSize bounds one trip to the index. Matches are drained page by
// page, so the candidate set is always complete.
const searchPageSize = 1000

// MatchTitlePrefix returns every job_id whose title matches all words of the
// term as a prefix. Relevance scores are discarded; ranking belongs to the
// caller.
func (i *Index) MatchTitlePrefix(term string) ([]string, error) {
	tokens := strings.Fields(strings.ToLower(term))
	if len(tokens) == 0 {
		return nil, nil
	}

	parts := make([]query.Query, 0, len(tokens))
	for _, tok := range tokens {
		pq := bleve.NewPrefixQuery(tok)
		pq.SetField("Title")
		parts = append(parts, pq)
	}
	conj := bleve.NewConjunctionQuery(parts...)

	ids := make([]string, 0)
	for from := 0; ; from += searchPageSize {
		req := bleve.NewSearchRequestOptions(conj, searchPageSize, from, false)
		res, err := i.index.Search(req)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		for _, hit := range res.Hits {
			ids = append(ids, hit.ID)
		}
		if len(res.Hits) == 0 || uint64(len(ids)) >= res.Total {
			break
		}
	}

	return ids, nil
}

// Count returns the number of indexed titles.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}
