package sheets

import (
	"strings"
	"time"

	"github.com/edgard/sysblokbot/internal/database"
	"github.com/edgard/sysblokbot/internal/trello"
)

// Registry sheet columns.
const (
	colDate = iota
	colTitle
	colRubrics
	colAuthors
	colEditors
	colIllustrators
	colGoogleDoc
	colCover
	colTrelloLink
	colMain
	colArchive
	colVKTags
	colTGTags
	registryColumns
)

const (
	registryDateLayout = "02.01.2006"
	registryListSep    = ", "
	registryYes        = "TRUE"
	registryNo         = "FALSE"
)

// RegistryPost is a row of the posts registry sheet.
type RegistryPost struct {
	Due          *time.Time
	Title        string
	Rubrics      []string
	Authors      []string
	Editors      []string
	Illustrators []string
	GoogleDoc    string
	Cover        string
	TrelloLink   string
	IsMain       bool
	IsArchive    bool
	VKTags       []string
	TGTags       []string
}

// NewRegistryPost builds a registry row from a validated card. The title
// falls back to the card name when the title field is empty. Rubrics are
// the card's non-service labels; tags come from the rubrics with the same
// names.
func NewRegistryPost(card trello.Card, fields trello.CardCustomFields, isMain, isArchive bool, rubrics []database.Rubric) RegistryPost {
	post := RegistryPost{
		Due:          card.Due,
		Title:        card.Name,
		Authors:      fields.Authors,
		Editors:      fields.Editors,
		Illustrators: fields.Illustrators,
		TrelloLink:   card.Link(),
		IsMain:       isMain,
		IsArchive:    isArchive,
	}
	if fields.Title != nil && *fields.Title != "" {
		post.Title = *fields.Title
	}
	if fields.GoogleDoc != nil {
		post.GoogleDoc = *fields.GoogleDoc
	}
	if fields.Cover != nil {
		post.Cover = *fields.Cover
	}

	byName := make(map[string]database.Rubric, len(rubrics))
	for _, r := range rubrics {
		byName[r.Name] = r
	}
	for _, label := range card.RubricLabels() {
		post.Rubrics = append(post.Rubrics, label.Name)
		r, ok := byName[label.Name]
		if !ok {
			continue
		}
		if r.VKTag != "" {
			post.VKTags = append(post.VKTags, r.VKTag)
		}
		if r.TGTag != "" {
			post.TGTags = append(post.TGTags, r.TGTag)
		}
	}

	return post
}

// Row renders the post as registry sheet cells.
func (p RegistryPost) Row() []string {
	row := make([]string, registryColumns)
	if p.Due != nil {
		row[colDate] = p.Due.Format(registryDateLayout)
	}
	row[colTitle] = p.Title
	row[colRubrics] = strings.Join(p.Rubrics, registryListSep)
	row[colAuthors] = strings.Join(p.Authors, registryListSep)
	row[colEditors] = strings.Join(p.Editors, registryListSep)
	row[colIllustrators] = strings.Join(p.Illustrators, registryListSep)
	row[colGoogleDoc] = p.GoogleDoc
	row[colCover] = p.Cover
	row[colTrelloLink] = p.TrelloLink
	row[colMain] = yesNo(p.IsMain)
	row[colArchive] = yesNo(p.IsArchive)
	row[colVKTags] = strings.Join(p.VKTags, " ")
	row[colTGTags] = strings.Join(p.TGTags, " ")
	return row
}

func yesNo(b bool) string {
	if b {
		return registryYes
	}
	return registryNo
}
