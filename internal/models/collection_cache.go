package models

import (
	"encoding/json"
	"time"
)

// CollectionKind names what a cached collection holds
type CollectionKind string

const (
	CollectionKindDataset  CollectionKind = "dataset"
	CollectionKindComments CollectionKind = "comments"
)

// CachedCollection is a record in the collection_cache table
type CachedCollection struct {
	SubjectID    string          `json:"subject_id"`
	Kind         CollectionKind  `json:"kind"`
	UpdateDate   time.Time       `json:"update_date"`
	JSONResponse json.RawMessage `json:"json_response"`
}

// FreshOn reports whether the record was written on the same UTC day as now.
func (c *CachedCollection) FreshOn(now time.Time) bool {
	if c == nil || c.UpdateDate.IsZero() {
		return false
	}
	return c.UpdateDate.UTC().Format("2006-01-02") == now.UTC().Format("2006-01-02")
}
