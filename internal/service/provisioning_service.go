package service

import (
	"encoding/json"
	"time"

	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/notionfmt"
	"github.com/google/uuid"
)

const (
	defaultTheme       = "heo"
	defaultAuthor      = "Author"
	defaultTenantTitle = "Default"
	defaultViewType    = "table"
	defaultViewName    = "All Posts"
	welcomePostTitle   = "Welcome to your new site"
	welcomePostSlug    = "welcome"
)

// selectOption is one choice of a select property
type selectOption struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Color string `json:"color"`
}

// schemaProperty describes one column of a collection schema
type schemaProperty struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Options []selectOption `json:"options,omitempty"`
}

// defaultBlogSchema 블로그 컬렉션 기본 스키마
func defaultBlogSchema() map[string]schemaProperty {
	return map[string]schemaProperty{
		"title": {Name: "Name", Type: "title"},
		"status": {Name: "Status", Type: "select", Options: []selectOption{
			{ID: "pub", Value: "Published", Color: "green"},
			{ID: "draft", Value: "Draft", Color: "yellow"},
			{ID: "inv", Value: "Invisible", Color: "red"},
		}},
		"type": {Name: "Type", Type: "select", Options: []selectOption{
			{ID: "post", Value: "Post", Color: "blue"},
			{ID: "page", Value: "Page", Color: "purple"},
			{ID: "notice", Value: "Notice", Color: "orange"},
		}},
		"slug":     {Name: "Slug", Type: "text"},
		"date":     {Name: "Date", Type: "date"},
		"tags":     {Name: "Tags", Type: "multi_select"},
		"category": {Name: "Category", Type: "select"},
		"summary":  {Name: "Summary", Type: "text"},
		"password": {Name: "Password", Type: "text"},
	}
}

// tenantContent is the initial content of a freshly provisioned tenant
type tenantContent struct {
	blocks      []domain.Block
	collections []domain.Collection
	views       []domain.CollectionView
}

// provisionContent builds the root collection_view_page, its blog
// collection, a default table view and one published welcome post.
func provisionContent(tenantID, rootPageID, title string, now time.Time) (*tenantContent, error) {
	collectionID := uuid.New().String()
	viewID := uuid.New().String()
	postID := uuid.New().String()
	ts := now.UnixMilli()

	rootProps, err := marshalString(map[string]notionfmt.RichText{"title": notionfmt.ToRichText(title)})
	if err != nil {
		return nil, err
	}
	rootContent, err := marshalString([]string{collectionID})
	if err != nil {
		return nil, err
	}
	schema, err := marshalString(defaultBlogSchema())
	if err != nil {
		return nil, err
	}
	name, err := marshalString(notionfmt.ToRichText(title))
	if err != nil {
		return nil, err
	}
	postProps, err := marshalString(map[string]notionfmt.RichText{
		"title":  notionfmt.ToRichText(welcomePostTitle),
		"status": notionfmt.ToRichText("Published"),
		"type":   notionfmt.ToRichText("Post"),
		"slug":   notionfmt.ToRichText(welcomePostSlug),
		"date":   notionfmt.ToRichText(now.UTC().Format(time.RFC3339)),
	})
	if err != nil {
		return nil, err
	}
	pageSort, err := marshalString([]string{postID})
	if err != nil {
		return nil, err
	}

	viewType, viewName := defaultViewType, defaultViewName
	return &tenantContent{
		blocks: []domain.Block{
			{
				ID:             rootPageID,
				TenantID:       tenantID,
				ParentTable:    domain.ParentTableSpace,
				Type:           domain.BlockTypeCollectionViewPage,
				Properties:     rootProps,
				Format:         "{}",
				Content:        rootContent,
				CreatedTime:    ts,
				LastEditedTime: ts,
				Alive:          1,
				Version:        1,
			},
			{
				ID:             postID,
				TenantID:       tenantID,
				ParentID:       &collectionID,
				ParentTable:    domain.ParentTableCollection,
				Type:           domain.BlockTypePage,
				Properties:     postProps,
				Format:         "{}",
				Content:        "[]",
				CreatedTime:    ts,
				LastEditedTime: ts,
				Alive:          1,
				Version:        1,
			},
		},
		collections: []domain.Collection{{
			ID:             collectionID,
			TenantID:       tenantID,
			ParentID:       &rootPageID,
			Name:           name,
			Schema:         schema,
			Description:    "[]",
			CreatedTime:    ts,
			LastEditedTime: ts,
			Version:        1,
		}},
		views: []domain.CollectionView{{
			ID:           viewID,
			TenantID:     tenantID,
			CollectionID: collectionID,
			Type:         &viewType,
			Name:         &viewName,
			Format:       "{}",
			Query2:       "{}",
			PageSort:     pageSort,
			Version:      1,
		}},
	}, nil
}

func marshalString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
