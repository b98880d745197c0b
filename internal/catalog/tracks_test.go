package catalog

import (
	"encoding/json"
	"testing"
)

func TestParseTracksDefaults(t *testing.T) {
	body := `{"tracks":{"items":[
		{"id":"a","name":"Full","artists":[{"name":"X"},{"name":"Y"}],"album":{"images":[{"url":"https://img/1"}]}},
		{"id":"b"},
		{"id":3,"name":null,"artists":[{"id":"no-name"}],"album":{"images":[]}},
		"not an object"
	]}}`

	tracks := ParseTracks([]byte(body))

	if len(tracks) != 3 {
		t.Fatalf("Expected 3 tracks, got %d", len(tracks))
	}

	tests := []struct {
		idx     int
		id      string
		name    string
		artists []string
		artwork string
	}{
		{0, "a", "Full", []string{"X", "Y"}, "https://img/1"},
		{1, "b", "", []string{}, ""},
		{2, "", "", []string{""}, ""},
	}

	for _, tt := range tests {
		got := tracks[tt.idx]
		if got.ID != tt.id {
			t.Errorf("Track %d: expected id %q, got %q", tt.idx, tt.id, got.ID)
		}
		if got.Name != tt.name {
			t.Errorf("Track %d: expected name %q, got %q", tt.idx, tt.name, got.Name)
		}
		if got.Artwork != tt.artwork {
			t.Errorf("Track %d: expected artwork %q, got %q", tt.idx, tt.artwork, got.Artwork)
		}
		if len(got.Artists) != len(tt.artists) {
			t.Errorf("Track %d: expected artists %v, got %v", tt.idx, tt.artists, got.Artists)
			continue
		}
		for i := range tt.artists {
			if got.Artists[i] != tt.artists[i] {
				t.Errorf("Track %d: expected artists %v, got %v", tt.idx, tt.artists, got.Artists)
			}
		}
	}
}

func TestParseTracksNeverNull(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"tracks":{}}`,
		`{"tracks":{"items":[]}}`,
		`not json`,
		``,
	}

	for _, body := range bodies {
		tracks := ParseTracks([]byte(body))
		out, err := json.Marshal(tracks)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(out) != "[]" {
			t.Errorf("ParseTracks(%q) marshaled to %s, want []", body, out)
		}
	}
}

func TestParseTracksArtistsNeverNull(t *testing.T) {
	tracks := ParseTracks([]byte(`{"tracks":{"items":[{"id":"a"}]}}`))

	out, _ := json.Marshal(tracks[0])
	want := `{"id":"a","name":"","artists":[],"artwork":""}`
	if string(out) != want {
		t.Errorf("Expected %s, got %s", want, out)
	}
}
