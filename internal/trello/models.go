package trello

import (
	"fmt"
	"time"
)

// LabelColorBlack marks service labels (main post, archive) that do not denote a rubric.
const LabelColorBlack = "black"

// Board is a Trello board.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Label is a board label. Color is empty for colourless labels.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// List is a board column.
type List struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

// Member is a board member.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

func (m Member) String() string {
	if m.FullName == "" {
		return "@" + m.Username
	}
	return fmt.Sprintf("%s (@%s)", m.FullName, m.Username)
}

// Card is a board card. List and Members are resolved by the client after decoding.
type Card struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	ShortURL  string     `json:"shortUrl"`
	Labels    []Label    `json:"labels"`
	Due       *time.Time `json:"due"`
	ListID    string     `json:"idList"`
	MemberIDs []string   `json:"idMembers"`
	Closed    bool       `json:"closed"`

	List    *List    `json:"-"`
	Members []Member `json:"-"`
}

// Link returns the shortest available card link.
func (c Card) Link() string {
	if c.ShortURL != "" {
		return c.ShortURL
	}
	return c.URL
}

// LabelNames returns the names of all card labels in board order.
func (c Card) LabelNames() []string {
	names := make([]string, 0, len(c.Labels))
	for _, l := range c.Labels {
		names = append(names, l.Name)
	}
	return names
}

// HasLabel reports whether the card carries a label with the given name.
func (c Card) HasLabel(name string) bool {
	for _, l := range c.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// RubricLabels returns the labels that are not black service labels.
func (c Card) RubricLabels() []Label {
	var labels []Label
	for _, l := range c.Labels {
		if l.Color != LabelColorBlack {
			labels = append(labels, l)
		}
	}
	return labels
}

func (c Card) String() string {
	return fmt.Sprintf("Card<%s %q>", c.ID, c.Name)
}

// CustomFieldType is a custom field definition of a board.
type CustomFieldType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CustomFieldValue holds the raw value of a custom field item. Exactly one
// member is set, depending on the field type.
type CustomFieldValue struct {
	Text    string `json:"text"`
	Number  string `json:"number"`
	Date    string `json:"date"`
	Checked string `json:"checked"`
}

// CustomField is a custom field item attached to a card.
type CustomField struct {
	ID      string           `json:"id"`
	TypeID  string           `json:"idCustomField"`
	IDValue string           `json:"idValue"`
	Value   CustomFieldValue `json:"value"`
}

// String flattens the field value to text.
func (f CustomField) String() string {
	switch {
	case f.Value.Text != "":
		return f.Value.Text
	case f.Value.Number != "":
		return f.Value.Number
	case f.Value.Date != "":
		return f.Value.Date
	case f.Value.Checked != "":
		return f.Value.Checked
	default:
		return f.IDValue
	}
}

// CardCustomFields are the editorial custom fields of a single card.
// Nil pointers mean the field is not filled in.
type CardCustomFields struct {
	CardID       string
	Authors      []string
	Editors      []string
	Illustrators []string
	GoogleDoc    *string
	Title        *string
	Cover        *string
}

// ActionCreateCard records the creation of a card.
type ActionCreateCard struct {
	ID            string
	Date          time.Time
	CardID        string
	CardName      string
	ListID        string
	ListName      string
	MemberCreator Member
}

// ActionUpdateCard records an update of a card. ListBefore and ListAfter
// are set only when the card was moved between lists.
type ActionUpdateCard struct {
	ID            string
	Date          time.Time
	CardID        string
	CardName      string
	ListBefore    *List
	ListAfter     *List
	Old           map[string]any
	MemberCreator Member
}

type ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// action is the wire form of card actions.
type action struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Date time.Time `json:"date"`
	Data struct {
		Card       ref            `json:"card"`
		List       *List          `json:"list"`
		ListBefore *List          `json:"listBefore"`
		ListAfter  *List          `json:"listAfter"`
		Old        map[string]any `json:"old"`
	} `json:"data"`
	MemberCreator Member `json:"memberCreator"`
}

func (a action) toCreateCard() ActionCreateCard {
	res := ActionCreateCard{
		ID:            a.ID,
		Date:          a.Date,
		CardID:        a.Data.Card.ID,
		CardName:      a.Data.Card.Name,
		MemberCreator: a.MemberCreator,
	}
	if a.Data.List != nil {
		res.ListID = a.Data.List.ID
		res.ListName = a.Data.List.Name
	}
	return res
}

func (a action) toUpdateCard() ActionUpdateCard {
	return ActionUpdateCard{
		ID:            a.ID,
		Date:          a.Date,
		CardID:        a.Data.Card.ID,
		CardName:      a.Data.Card.Name,
		ListBefore:    a.Data.ListBefore,
		ListAfter:     a.Data.ListAfter,
		Old:           a.Data.Old,
		MemberCreator: a.MemberCreator,
	}
}
