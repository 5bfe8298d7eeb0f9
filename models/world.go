package models

// Room is a named location. Lifeforms reference rooms by name only.
type Room struct {
	Name     string `json:"name"`
	Contents string `json:"contents,omitempty"`
}

// Occupant is what a client needs to draw another entity in its room.
type Occupant struct {
	Coords [2]int `json:"coords"`
	Sprite string `json:"sprite"`
}
