package domain

// Kind names a record map bucket
type Kind string

const (
	KindBlock          Kind = "block"
	KindCollection     Kind = "collection"
	KindCollectionView Kind = "collection_view"
	KindNotionUser     Kind = "notion_user"
	KindSpace          Kind = "space"
)

// Node is the closed set of content rows the record map assembler accepts:
// *Block, *Collection and *CollectionView.
type Node interface {
	NodeID() string
	nodeKind() Kind
}

// KindOf returns the bucket a node is emitted under
func KindOf(n Node) Kind {
	return n.nodeKind()
}
