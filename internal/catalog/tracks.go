package catalog

import "github.com/tidwall/gjson"

// ParseTracks normalizes a search response body. Missing or non-string
// fields become empty strings; a missing item list yields an empty slice.
func ParseTracks(body []byte) []Track {
	items := gjson.GetBytes(body, "tracks.items")
	tracks := make([]Track, 0, len(items.Array()))

	items.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		tracks = append(tracks, Track{
			ID:      stringField(item, "id"),
			Name:    stringField(item, "name"),
			Artists: artistNames(item.Get("artists")),
			Artwork: stringField(item, "album.images.0.url"),
		})
		return true
	})
	return tracks
}

func stringField(item gjson.Result, path string) string {
	v := item.Get(path)
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}

func artistNames(artists gjson.Result) []string {
	names := make([]string, 0, len(artists.Array()))
	artists.ForEach(func(_, artist gjson.Result) bool {
		names = append(names, stringField(artist, "name"))
		return true
	})
	return names
}
