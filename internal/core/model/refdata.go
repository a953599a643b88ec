package model

import "fmt"

// Tag is a shared topic keyword referenced by accounts and studies. Tags are created
// lazily (find-or-create by title) and owned by no single aggregate.
type Tag struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Zone is a shared region entry referenced by accounts and studies. Zones are seeded
// reference data; they are looked up, never created by user flows.
type Zone struct {
	ID        int64  `json:"id"`
	City      string `json:"city"`
	LocalName string `json:"local_name"`
	Province  string `json:"province"`
}

// String renders the zone the way it is shown in pickers: "Seoul(서울)/none".
func (z Zone) String() string {
	return fmt.Sprintf("%s(%s)/%s", z.City, z.LocalName, z.Province)
}
