package lostfound

import (
	"context"
	"time"

	"campus_desk_backend/internal/platform/elasticsearch"
)

// SearchIndex keeps a full-text index of lost and found items.
type SearchIndex interface {
	Put(ctx context.Context, e Entry) error
	// Search returns the listing keys of the best matches for text.
	Search(ctx context.Context, text string, size int) ([]string, error)
	Sync(ctx context.Context, entries []Entry, refresh string) (elasticsearch.BulkReport, error)
}

// Document is the indexed form of an entry. Its id is the entry's listing key.
type Document struct {
	Source                 string    `json:"source"`
	ItemID                 string    `json:"item_id"`
	Status                 string    `json:"status"`
	ItemName               string    `json:"item_name"`
	ItemType               string    `json:"item_type"`
	Brand                  string    `json:"brand,omitempty"`
	Model                  string    `json:"model,omitempty"`
	PrimaryColor           string    `json:"primary_color,omitempty"`
	SecondaryColor         string    `json:"secondary_color,omitempty"`
	SerialNumber           string    `json:"serial_number,omitempty"`
	Location               string    `json:"location"`
	DistinguishingFeatures string    `json:"distinguishing_features,omitempty"`
	Description            string    `json:"description,omitempty"`
	ListingDate            time.Time `json:"listing_date"`
}

// ToDocument converts an entry into its index document.
func ToDocument(e Entry) Document {
	d := e.details()
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return Document{
		Source:                 string(e.Source),
		ItemID:                 e.ID().String(),
		Status:                 e.ListingStatus(),
		ItemName:               d.ItemName,
		ItemType:               d.ItemType,
		Brand:                  deref(d.Brand),
		Model:                  deref(d.Model),
		PrimaryColor:           deref(d.PrimaryColor),
		SecondaryColor:         deref(d.SecondaryColor),
		SerialNumber:           deref(d.SerialNumber),
		Location:               e.Location(),
		DistinguishingFeatures: deref(d.DistinguishingFeatures),
		Description:            deref(d.Description),
		ListingDate:            e.ListingDate(),
	}
}

var searchFields = []string{
	"item_name^3", "item_type^2", "brand", "model", "serial_number",
	"primary_color", "secondary_color", "location", "distinguishing_features", "description",
}

type esIndex struct {
	indexer *elasticsearch.Indexer
}

// NewSearchIndex wraps an Elasticsearch indexer. A nil indexer yields a nil index, which
// the service treats as "search disabled".
func NewSearchIndex(indexer *elasticsearch.Indexer) SearchIndex {
	if indexer == nil {
		return nil
	}
	return &esIndex{indexer: indexer}
}

func (ix *esIndex) Put(ctx context.Context, e Entry) error {
	return ix.indexer.Put(ctx, e.ListingKey(), ToDocument(e))
}

func (ix *esIndex) Search(ctx context.Context, text string, size int) ([]string, error) {
	return ix.indexer.SearchIDs(ctx, text, searchFields, size)
}

func (ix *esIndex) Sync(ctx context.Context, entries []Entry, refresh string) (elasticsearch.BulkReport, error) {
	docs := make([]elasticsearch.Document, len(entries))
	for i, e := range entries {
		docs[i] = elasticsearch.Document{ID: e.ListingKey(), Body: ToDocument(e)}
	}
	return ix.indexer.Bulk(ctx, docs, refresh)
}
