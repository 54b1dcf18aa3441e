package domain

import "encoding/json"

// Block types that carry graph semantics
const (
	BlockTypePage               = "page"
	BlockTypeCollectionViewPage = "collection_view_page"
	BlockTypeText               = "text"
)

// Parent tables a block may hang off
const (
	ParentTableSpace      = "space"
	ParentTableBlock      = "block"
	ParentTableCollection = "collection"
)

// Block represents a content node row. Properties, Format and Content are
// persisted as JSON text and decoded lazily by the record map assembler.
type Block struct {
	ParentID       *string `gorm:"column:parent_id;size:64;index:idx_blocks_parent" json:"parent_id"`
	CreatedBy      *string `gorm:"column:created_by;size:64" json:"created_by"`
	LastEditedBy   *string `gorm:"column:last_edited_by;size:64" json:"last_edited_by"`
	ID             string  `gorm:"column:id;primaryKey;size:64" json:"id"`
	TenantID       string  `gorm:"column:tenant_id;primaryKey;size:64;index:idx_blocks_parent" json:"tenant_id"`
	ParentTable    string  `gorm:"column:parent_table;size:20;default:block" json:"parent_table"`
	Type           string  `gorm:"column:type;size:50;index" json:"type"`
	Properties     string  `gorm:"column:properties;type:text" json:"properties"`
	Format         string  `gorm:"column:format;type:text" json:"format"`
	Content        string  `gorm:"column:content;type:text" json:"content"`
	CreatedTime    int64   `gorm:"column:created_time" json:"created_time"`
	LastEditedTime int64   `gorm:"column:last_edited_time;index" json:"last_edited_time"`
	Alive          int     `gorm:"column:alive" json:"alive"`
	Version        int     `gorm:"column:version;default:1" json:"version"`
}

func (Block) TableName() string {
	return "blocks"
}

// NodeID implements Node
func (b *Block) NodeID() string { return b.ID }

func (*Block) nodeKind() Kind { return KindBlock }

// IsAlive reports whether the block has not been tombstoned
func (b *Block) IsAlive() bool {
	return b.Alive == 1
}

// ChildIDs decodes the content column. Malformed content yields no children;
// the assembler reports the same defect when the block is rendered.
func (b *Block) ChildIDs() []string {
	if b.Content == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(b.Content), &ids); err != nil {
		return nil
	}
	return ids
}
