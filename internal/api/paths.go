package api

import "fmt"

// TopStoriesPath lists the ranked top story ids.
const TopStoriesPath = "topstories.json"

// ItemPath returns the path of a single item (story, comment, job, ...).
func ItemPath(id int) string {
	return fmt.Sprintf("item/%d.json", id)
}
