package services

import "testing"

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"versioned upload",
			"https://res.cloudinary.com/demo/image/upload/v1712345/games/cover/elden.jpg",
			"games/cover/elden",
		},
		{
			"no version segment",
			"https://res.cloudinary.com/demo/image/upload/uploads/clip.mp4",
			"uploads/clip",
		},
		{
			"nested folder",
			"https://res.cloudinary.com/demo/video/upload/v99/games/screenshots/a/b.png",
			"games/screenshots/a/b",
		},
		{"not cloudinary", "https://example.com/upload/v1/a.jpg", ""},
		{"no upload segment", "https://res.cloudinary.com/demo/image/a.jpg", ""},
		{"no extension", "https://res.cloudinary.com/demo/image/upload/v1/abc", ""},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PublicIDFromURL(tc.url); got != tc.want {
				t.Errorf("PublicIDFromURL(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestDiffRemoved(t *testing.T) {
	a := "https://res.cloudinary.com/demo/image/upload/v1/uploads/a.jpg"
	b := "https://res.cloudinary.com/demo/image/upload/v1/uploads/b.jpg"
	c := "https://res.cloudinary.com/demo/image/upload/v1/uploads/c.jpg"

	removed := DiffRemoved([]string{a, b, c}, []string{b})
	if len(removed) != 2 {
		t.Fatalf("got %d removed, want 2: %v", len(removed), removed)
	}
	if removed[0] != a || removed[1] != c {
		t.Errorf("removed = %v, want [%s %s]", removed, a, c)
	}

	// Same asset under a different version is not a removal.
	aV2 := "https://res.cloudinary.com/demo/image/upload/v2/uploads/a.jpg"
	if got := DiffRemoved([]string{a}, []string{aV2}); len(got) != 0 {
		t.Errorf("version change treated as removal: %v", got)
	}

	if got := DiffRemoved(nil, []string{a}); len(got) != 0 {
		t.Errorf("empty old set should remove nothing: %v", got)
	}
}

func TestIsYouTubeURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=abc",
		"https://youtu.be/abc",
		"youtube.com/watch?v=abc",
		"http://youtu.be/x",
	}
	for _, u := range valid {
		if !IsYouTubeURL(u) {
			t.Errorf("IsYouTubeURL(%q) = false, want true", u)
		}
	}

	invalid := []string{"", "https://vimeo.com/123", "https://example.com/youtube.com"}
	for _, u := range invalid {
		if IsYouTubeURL(u) {
			t.Errorf("IsYouTubeURL(%q) = true, want false", u)
		}
	}
}

func TestCollectGameMedia(t *testing.T) {
	got := CollectGameMedia(" cover.jpg ", []string{"s1.jpg", "", "s2.jpg"})
	want := []string{"cover.jpg", "s1.jpg", "s2.jpg"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := CollectGameMedia("", nil); len(got) != 0 {
		t.Errorf("empty inputs should yield no media: %v", got)
	}
}
