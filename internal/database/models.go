package database

import "time"

// Rubric is a publication rubric. Name matches the Trello label of the rubric;
// the tags are appended to posts on the corresponding social network.
type Rubric struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	VKTag     string    `db:"vk_tag"`
	TGTag     string    `db:"tg_tag"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BotString is an editable bot text keyed by a stable id.
type BotString struct {
	ID        string    `db:"id"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
