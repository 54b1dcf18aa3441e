package recordmap

import (
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/notionfmt"
)

// Defaults applied when a persisted column is missing or malformed
const (
	DefaultViewType  = "table"
	DefaultViewName  = "Default View"
	DefaultTitle     = "Untitled"
	placeholderEmail = "user@example.com"
)

// ParseErrorFunc receives every column that fell back to its default.
// field is the column name, e.g. "properties".
type ParseErrorFunc func(kind domain.Kind, id, field string, err error)

// Assembler builds record maps. It never fails: a column that cannot be
// decoded is replaced by its default and reported to the ParseErrorFunc.
type Assembler struct {
	onParseError ParseErrorFunc
}

// NewAssembler returns an Assembler. onParseError may be nil.
func NewAssembler(onParseError ParseErrorFunc) *Assembler {
	return &Assembler{onParseError: onParseError}
}

// Assemble places each node under its kind bucket
func (a *Assembler) Assemble(nodes ...domain.Node) *RecordMap {
	rm := New()
	for _, n := range nodes {
		switch v := n.(type) {
		case *domain.Block:
			rm.Block[v.ID] = a.Block(v)
		case *domain.Collection:
			rm.Collection[v.ID] = a.Collection(v)
		case *domain.CollectionView:
			rm.CollectionView[v.ID] = a.View(v)
		}
	}
	return rm
}

func (a *Assembler) Block(b *domain.Block) Record[BlockValue] {
	parentTable := b.ParentTable
	if parentTable == "" {
		parentTable = domain.ParentTableBlock
	}
	return Record[BlockValue]{
		Role: RoleReader,
		Value: BlockValue{
			ID:                b.ID,
			Version:           version(b.Version),
			Type:              b.Type,
			Properties:        parseField(a, domain.KindBlock, b.ID, "properties", b.Properties, map[string]any{}),
			Format:            parseField(a, domain.KindBlock, b.ID, "format", b.Format, map[string]any{}),
			Content:           parseField(a, domain.KindBlock, b.ID, "content", b.Content, []string{}),
			ParentID:          b.ParentID,
			ParentTable:       parentTable,
			Alive:             b.IsAlive(),
			CreatedTime:       b.CreatedTime,
			LastEditedTime:    b.LastEditedTime,
			CreatedByTable:    string(domain.KindNotionUser),
			CreatedByID:       actor(b.CreatedBy),
			LastEditedByTable: string(domain.KindNotionUser),
			LastEditedByID:    actor(b.LastEditedBy),
			SpaceID:           b.TenantID,
		},
	}
}

func (a *Assembler) Collection(c *domain.Collection) Record[CollectionValue] {
	return Record[CollectionValue]{
		Role: RoleReader,
		Value: CollectionValue{
			ID:             c.ID,
			Version:        version(c.Version),
			Name:           parseField(a, domain.KindCollection, c.ID, "name", c.Name, notionfmt.ToRichText(DefaultTitle)),
			Schema:         parseField(a, domain.KindCollection, c.ID, "schema", c.Schema, map[string]any{}),
			Description:    parseField(a, domain.KindCollection, c.ID, "description", c.Description, notionfmt.RichText{}),
			Icon:           c.Icon,
			Cover:          c.Cover,
			ParentID:       c.ParentID,
			ParentTable:    domain.ParentTableBlock,
			Alive:          true,
			CreatedTime:    c.CreatedTime,
			LastEditedTime: c.LastEditedTime,
		},
	}
}

func (a *Assembler) View(v *domain.CollectionView) Record[CollectionViewValue] {
	return Record[CollectionViewValue]{
		Role: RoleReader,
		Value: CollectionViewValue{
			ID:          v.ID,
			Version:     version(v.Version),
			Type:        orDefault(v.Type, DefaultViewType),
			Name:        orDefault(v.Name, DefaultViewName),
			Format:      parseField(a, domain.KindCollectionView, v.ID, "format", v.Format, map[string]any{}),
			Query2:      parseField(a, domain.KindCollectionView, v.ID, "query2", v.Query2, map[string]any{}),
			PageSort:    parseField(a, domain.KindCollectionView, v.ID, "page_sort", v.PageSort, []string{}),
			ParentID:    v.CollectionID,
			ParentTable: domain.ParentTableCollection,
			Alive:       true,
		},
	}
}

// Users builds placeholder profiles; the gateway keeps no user directory
func (a *Assembler) Users(ids []string) Table[UserValue] {
	users := make(Table[UserValue], len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		users[id] = Record[UserValue]{
			Role: RoleReader,
			Value: UserValue{
				ID:           id,
				Version:      1,
				Email:        placeholderEmail,
				GivenName:    "User",
				FamilyName:   "Name",
				ProfilePhoto: "",
			},
		}
	}
	return users
}

// Space describes a tenant as the space that owns its blocks
func (a *Assembler) Space(t *domain.Tenant) Record[SpaceValue] {
	pages := []string{}
	if t.RootPageID != "" {
		pages = append(pages, t.RootPageID)
	}
	name := t.Title
	if name == "" {
		name = t.Subdomain
	}
	var created int64
	if !t.CreatedAt.IsZero() {
		created = t.CreatedAt.UnixMilli()
	}
	return Record[SpaceValue]{
		Role: RoleReader,
		Value: SpaceValue{
			ID:        t.ID,
			Version:   1,
			Name:      name,
			Domain:    t.Subdomain,
			Icon:      t.AvatarURL,
			Pages:     pages,
			CreatedAt: created,
		},
	}
}

// parseField is SafeParse plus the report. Methods cannot be generic, hence
// the receiver as first argument.
func parseField[T any](a *Assembler, kind domain.Kind, id, field, raw string, def T) T {
	v, err := notionfmt.SafeParse(raw, def)
	if err != nil && a.onParseError != nil {
		a.onParseError(kind, id, field, err)
	}
	return v
}

func version(v int) int {
	if v <= 0 {
		return 1
	}
	return v
}

func actor(id *string) string {
	if id == nil || *id == "" {
		return SystemActor
	}
	return *id
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
