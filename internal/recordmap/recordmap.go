// Package recordmap turns resolved content rows into the document-graph wire
// format: { kind: { id: { role, value } } }.
package recordmap

import "github.com/damoang/notion-gateway/internal/notionfmt"

// RoleReader is the only role the gateway hands out
const RoleReader = "reader"

// SystemActor stands in for a missing created_by / last_edited_by
const SystemActor = "system"

// Record wraps an entity with its visibility role
type Record[V any] struct {
	Role  string `json:"role"`
	Value V      `json:"value"`
}

// Table is one kind bucket keyed by entity id
type Table[V any] map[string]Record[V]

// RecordMap is the wire graph. All buckets are always present, empty or not.
type RecordMap struct {
	Block          Table[BlockValue]          `json:"block"`
	Collection     Table[CollectionValue]     `json:"collection"`
	CollectionView Table[CollectionViewValue] `json:"collection_view"`
	NotionUser     Table[UserValue]           `json:"notion_user"`
	Space          Table[SpaceValue]          `json:"space"`
}

// New returns a record map with every bucket allocated
func New() *RecordMap {
	return &RecordMap{
		Block:          Table[BlockValue]{},
		Collection:     Table[CollectionValue]{},
		CollectionView: Table[CollectionViewValue]{},
		NotionUser:     Table[UserValue]{},
		Space:          Table[SpaceValue]{},
	}
}

// Merge copies other's records into m, overwriting on id collision
func (m *RecordMap) Merge(other *RecordMap) {
	if other == nil {
		return
	}
	mergeTable(m.Block, other.Block)
	mergeTable(m.Collection, other.Collection)
	mergeTable(m.CollectionView, other.CollectionView)
	mergeTable(m.NotionUser, other.NotionUser)
	mergeTable(m.Space, other.Space)
}

func mergeTable[V any](dst, src Table[V]) {
	for id, rec := range src {
		dst[id] = rec
	}
}

// Len counts records across all buckets
func (m *RecordMap) Len() int {
	return len(m.Block) + len(m.Collection) + len(m.CollectionView) + len(m.NotionUser) + len(m.Space)
}

type BlockValue struct {
	ParentID          *string        `json:"parent_id"`
	Properties        map[string]any `json:"properties"`
	Format            map[string]any `json:"format"`
	ID                string         `json:"id"`
	Type              string         `json:"type"`
	ParentTable       string         `json:"parent_table"`
	CreatedByTable    string         `json:"created_by_table"`
	CreatedByID       string         `json:"created_by_id"`
	LastEditedByTable string         `json:"last_edited_by_table"`
	LastEditedByID    string         `json:"last_edited_by_id"`
	SpaceID           string         `json:"space_id"`
	Content           []string       `json:"content"`
	CreatedTime       int64          `json:"created_time"`
	LastEditedTime    int64          `json:"last_edited_time"`
	Version           int            `json:"version"`
	Alive             bool           `json:"alive"`
}

type CollectionValue struct {
	ParentID       *string            `json:"parent_id"`
	Icon           *string            `json:"icon"`
	Cover          *string            `json:"cover"`
	Schema         map[string]any     `json:"schema"`
	ID             string             `json:"id"`
	ParentTable    string             `json:"parent_table"`
	Name           notionfmt.RichText `json:"name"`
	Description    notionfmt.RichText `json:"description"`
	CreatedTime    int64              `json:"created_time"`
	LastEditedTime int64              `json:"last_edited_time"`
	Version        int                `json:"version"`
	Alive          bool               `json:"alive"`
}

type CollectionViewValue struct {
	Format      map[string]any `json:"format"`
	Query2      map[string]any `json:"query2"`
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	ParentID    string         `json:"parent_id"`
	ParentTable string         `json:"parent_table"`
	PageSort    []string       `json:"page_sort"`
	Version     int            `json:"version"`
	Alive       bool           `json:"alive"`
}

type UserValue struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	ProfilePhoto string `json:"profile_photo"`
	Version      int    `json:"version"`
}

type SpaceValue struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Domain    string   `json:"domain"`
	Icon      string   `json:"icon"`
	Pages     []string `json:"pages"`
	CreatedAt int64    `json:"created_time"`
	Version   int      `json:"version"`
}
