package domain

// Collection is a schema-defined container of member pages.
// Name, Schema and Description are JSON text columns.
type Collection struct {
	ParentID       *string `gorm:"column:parent_id;size:64" json:"parent_id"`
	Icon           *string `gorm:"column:icon;size:500" json:"icon"`
	Cover          *string `gorm:"column:cover;size:500" json:"cover"`
	ID             string  `gorm:"column:id;primaryKey;size:64" json:"id"`
	TenantID       string  `gorm:"column:tenant_id;primaryKey;size:64" json:"tenant_id"`
	Name           string  `gorm:"column:name;type:text" json:"name"`
	Schema         string  `gorm:"column:schema;type:text" json:"schema"`
	Description    string  `gorm:"column:description;type:text" json:"description"`
	CreatedTime    int64   `gorm:"column:created_time" json:"created_time"`
	LastEditedTime int64   `gorm:"column:last_edited_time" json:"last_edited_time"`
	Version        int     `gorm:"column:version;default:1" json:"version"`
}

func (Collection) TableName() string {
	return "collections"
}

// NodeID implements Node
func (c *Collection) NodeID() string { return c.ID }

func (*Collection) nodeKind() Kind { return KindCollection }

// CollectionView is a saved presentation over a collection's members
type CollectionView struct {
	Type         *string `gorm:"column:type;size:30" json:"type"`
	Name         *string `gorm:"column:name;size:255" json:"name"`
	ID           string  `gorm:"column:id;primaryKey;size:64" json:"id"`
	TenantID     string  `gorm:"column:tenant_id;primaryKey;size:64" json:"tenant_id"`
	CollectionID string  `gorm:"column:collection_id;size:64;index" json:"collection_id"`
	Format       string  `gorm:"column:format;type:text" json:"format"`
	Query2       string  `gorm:"column:query2;type:text" json:"query2"`
	PageSort     string  `gorm:"column:page_sort;type:text" json:"page_sort"`
	Version      int     `gorm:"column:version;default:1" json:"version"`
}

func (CollectionView) TableName() string {
	return "collection_views"
}

// NodeID implements Node
func (v *CollectionView) NodeID() string { return v.ID }

func (*CollectionView) nodeKind() Kind { return KindCollectionView }
