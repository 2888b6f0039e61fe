package services

import (
	"testing"

	"monitormate/internal/domain/models"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	c := NewCategorizer()

	tests := []struct {
		name        string
		packageName string
		appName     string
		want        models.Category
	}{
		// Exact package matches
		{"whatsapp package", "com.whatsapp", "WhatsApp", models.CategoryCommunication},
		{"instagram package", "com.instagram.android", "Instagram", models.CategorySocial},
		{"netflix package", "com.netflix.mediaclient", "Netflix", models.CategoryEntertainment},
		{"spotify package", "com.spotify.music", "Spotify", models.CategoryMusic},

		// Exact package wins over keyword rules
		{"youtube is entertainment not video keyword", "com.google.android.youtube", "YouTube", models.CategoryEntertainment},

		// Keyword matching on package
		{"facebook keyword in package", "com.example.facebookclone", "Some App", models.CategorySocial},
		{"music keyword in package", "org.example.musicbox", "MusicBox", models.CategoryMusic},

		// Keyword matching on app name
		{"chat keyword in name", "org.example.foo", "SuperChat", models.CategorySocial},
		{"weather keyword in name", "org.example.bar", "Local Weather", models.CategoryWeather},

		// Pattern fallbacks
		{"game pattern in package", "com.example.randomgame", "Random", models.CategoryGames},
		{"android system pattern", "com.android.settings", "Settings", models.CategorySystem},
		{"google system pattern", "com.google.android.gsf", "Services Framework", models.CategorySystem},

		// Edge cases
		{"empty package", "", "Some App", models.CategoryOther},
		{"unknown app", "org.example.unknown", "Mystery", models.CategoryOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := c.Categorize(tt.packageName, tt.appName); got != tt.want {
				t.Errorf("Categorize(%q, %q) = %s, want %s", tt.packageName, tt.appName, got, tt.want)
			}
		})
	}
}

func TestCategorizeRuleOrder(t *testing.T) {
	t.Parallel()

	c := NewCategorizer()

	// "chat" is a keyword of both Social and Communication; Social is
	// declared first and must win.
	if got := c.Categorize("org.example.chatapp", ""); got != models.CategorySocial {
		t.Errorf("Categorize chat keyword = %s, want %s", got, models.CategorySocial)
	}
}

func TestGroupByCategory(t *testing.T) {
	t.Parallel()

	c := NewCategorizer()

	apps := []models.NormalizedApp{
		{PackageName: "com.whatsapp", Name: "WhatsApp"},
		{PackageName: "org.telegram.messenger", Name: "Telegram"},
		{PackageName: "com.spotify.music", Name: "Spotify"},
		{PackageName: "org.example.unknown", Name: "Mystery"},
	}

	grouped := c.GroupByCategory(apps)

	if len(grouped[models.CategoryCommunication]) != 2 {
		t.Errorf("Communication group has %d apps, want 2", len(grouped[models.CategoryCommunication]))
	}
	if len(grouped[models.CategoryMusic]) != 1 {
		t.Errorf("Music group has %d apps, want 1", len(grouped[models.CategoryMusic]))
	}
	if len(grouped[models.CategoryOther]) != 1 {
		t.Errorf("Other group has %d apps, want 1", len(grouped[models.CategoryOther]))
	}
	if _, ok := grouped[models.CategoryGames]; ok {
		t.Error("empty categories must be omitted from grouping")
	}
}

func TestCategoryStats(t *testing.T) {
	t.Parallel()

	c := NewCategorizer()

	apps := []models.NormalizedApp{
		{PackageName: "com.whatsapp"},
		{PackageName: "org.telegram.messenger"},
		{PackageName: "com.spotify.music"},
	}

	stats := c.CategoryStats(apps)

	if len(stats) != len(models.AllCategories) {
		t.Fatalf("stats has %d categories, want %d", len(stats), len(models.AllCategories))
	}

	comm := stats[models.CategoryCommunication]
	if comm.Count != 2 || comm.Percentage != 67 {
		t.Errorf("Communication = {%d, %d%%}, want {2, 67%%}", comm.Count, comm.Percentage)
	}
	music := stats[models.CategoryMusic]
	if music.Count != 1 || music.Percentage != 33 {
		t.Errorf("Music = {%d, %d%%}, want {1, 33%%}", music.Count, music.Percentage)
	}
	if games := stats[models.CategoryGames]; games.Count != 0 || games.Percentage != 0 {
		t.Errorf("Games = {%d, %d%%}, want {0, 0%%}", games.Count, games.Percentage)
	}
}

func TestCategoryStatsEmpty(t *testing.T) {
	t.Parallel()

	stats := NewCategorizer().CategoryStats(nil)
	for category, stat := range stats {
		if stat.Count != 0 || stat.Percentage != 0 {
			t.Errorf("%s = {%d, %d%%}, want zeros", category, stat.Count, stat.Percentage)
		}
	}
}

func TestIsHighRiskCategory(t *testing.T) {
	t.Parallel()

	c := NewCategorizer()

	if !c.IsHighRiskCategory("com.whatsapp", "WhatsApp") {
		t.Error("Communication apps must be high risk")
	}
	if c.IsHighRiskCategory("com.spotify.music", "Spotify") {
		t.Error("Music apps must not be high risk")
	}
}
