package services

import (
	"math"
	"strings"

	"monitormate/internal/domain/models"
)

// categoryRule binds one category to its exact-match package identifiers
// and its substring keywords.
type categoryRule struct {
	category models.Category
	packages []string
	keywords []string
}

// Categorizer classifies apps into functional categories from their package
// identifier and display name. Classification is pure and deterministic:
// rules are scanned in a fixed declaration order, exact package matches
// before keyword matches.
type Categorizer struct {
	rules      []categoryRule
	packageSet map[string]models.Category
}

// NewCategorizer creates a new categorizer
func NewCategorizer() *Categorizer {
	c := &Categorizer{}
	c.initCategoryRules()

	c.packageSet = make(map[string]models.Category)
	for _, rule := range c.rules {
		for _, pkg := range rule.packages {
			if _, ok := c.packageSet[pkg]; !ok {
				c.packageSet[pkg] = rule.category
			}
		}
	}
	return c
}

// initCategoryRules initializes the classification rule table. Rule order
// is load-bearing: the first matching rule wins.
func (c *Categorizer) initCategoryRules() {
	c.rules = []categoryRule{
		{
			category: models.CategorySocial,
			packages: []string{
				"com.facebook.katana",
				"com.facebook.lite",
				"com.instagram.android",
				"com.twitter.android",
				"com.snapchat.android",
				"com.zhiliaoapp.musically",
				"com.linkedin.android",
				"com.pinterest",
				"com.reddit.frontpage",
				"com.tumblr",
				"com.discord",
				"com.vk.im",
				"com.sina.weibo",
				"com.tencent.mm",
				"jp.naver.line.android",
				"com.clubhouseapp",
				"com.twitter.android.lite",
				"com.facebook.mlite",
			},
			keywords: []string{
				"facebook", "instagram", "twitter", "snapchat", "tiktok",
				"linkedin", "pinterest", "reddit", "tumblr", "discord",
				"social", "chat", "messenger", "community", "network",
			},
		},
		{
			category: models.CategoryCommunication,
			packages: []string{
				"com.whatsapp",
				"com.whatsapp.w4b",
				"org.telegram.messenger",
				"org.telegram.plus",
				"com.viber.voip",
				"com.skype.raider",
				"us.zoom.videomeetings",
				"com.microsoft.teams",
				"com.google.android.apps.tachyon",
				"com.google.android.talk",
				"com.facebook.orca",
				"com.facebook.mlite",
				"com.imo.android.imoim",
				"kik.android",
				"com.textnow.wrapper",
				"com.wire",
				"com.threema.app",
				"com.signal.android",
			},
			keywords: []string{
				"whatsapp", "telegram", "messenger", "viber", "skype",
				"zoom", "teams", "duo", "hangouts", "chat", "call",
				"video", "voice", "communication", "meeting",
			},
		},
		{
			category: models.CategoryEntertainment,
			packages: []string{
				"com.netflix.mediaclient",
				"com.amazon.avod.thirdpartyclient",
				"com.disney.disneyplus",
				"com.hulu.plus",
				"com.hbo.hbonow",
				"com.google.android.youtube",
				"com.google.android.apps.youtube.music",
				"com.google.android.youtube.tv",
				"com.amazon.amazonvideo.livingroom",
				"tv.twitch.android.app",
				"com.crunchyroll.crunchyroid",
				"com.plexapp.android",
				"air.tv.douyu.android",
				"tv.danmaku.bili",
				"com.ss.android.ugc.aweme",
			},
			keywords: []string{
				"netflix", "prime", "disney", "hulu", "hbo", "youtube",
				"twitch", "video", "streaming", "movie", "tv", "show",
				"entertainment", "media", "watch", "player",
			},
		},
		{
			category: models.CategoryMusic,
			packages: []string{
				"com.spotify.music",
				"com.apple.android.music",
				"com.amazon.mp3",
				"com.google.android.music",
				"com.pandora.android",
				"fm.last.android",
				"com.soundcloud.android",
				"com.shazam.android",
				"deezer.android.app",
				"com.aspiro.tidal",
				"com.clearchannel.iheartradio.controller",
				"tunein.player",
				"com.audible.application",
				"com.bambuna.podcastaddict",
				"au.com.shiftyjelly.pocketcasts",
			},
			keywords: []string{
				"spotify", "music", "audio", "song", "playlist", "radio",
				"podcast", "sound", "player", "streaming", "tune",
			},
		},
		{
			category: models.CategoryProductivity,
			packages: []string{
				"com.google.android.gm",
				"com.microsoft.office.outlook",
				"com.google.android.apps.docs.editors.docs",
				"com.google.android.apps.docs.editors.sheets",
				"com.google.android.apps.docs.editors.slides",
				"com.microsoft.office.word",
				"com.microsoft.office.excel",
				"com.microsoft.office.powerpoint",
				"com.dropbox.android",
				"com.google.android.apps.docs",
				"com.microsoft.skydrive",
				"com.evernote",
				"com.todoist",
				"com.any.do",
				"com.trello",
				"com.asana.app",
				"com.slack",
				"com.notion.id",
				"com.adobe.reader",
			},
			keywords: []string{
				"office", "document", "word", "excel", "powerpoint",
				"gmail", "email", "drive", "dropbox", "cloud",
				"productivity", "work", "task", "note", "calendar",
			},
		},
		{
			category: models.CategoryGames,
			packages: []string{
				"com.king.candycrushsaga",
				"com.supercell.clashofclans",
				"com.supercell.clashroyale",
				"com.supercell.boombeach",
				"com.supercell.hayday",
				"com.miHoYo.GenshinImpact",
				"com.roblox.client",
				"com.ea.games.fifa_mobile",
				"com.nianticlabs.pokemongo",
				"com.activision.callofduty.shooter",
				"com.pubg.imobile",
				"com.garena.game.fctw",
				"com.mojang.minecraftpe",
				"com.epicgames.fortnite",
				"com.gameloft.android.ANMP.GloftA8HM",
				"com.rovio.angrybirds",
			},
			keywords: []string{
				"game", "play", "gaming", "clash", "candy", "minecraft",
				"pokemon", "pubg", "fortnite", "mobile", "arcade",
				"puzzle", "strategy", "action", "adventure", "simulation",
			},
		},
		{
			category: models.CategoryShopping,
			packages: []string{
				"com.amazon.mShop.android.shopping",
				"com.ebay.mobile",
				"com.contextlogic.wish",
				"com.alibaba.aliexpresshd",
				"com.etsy.android",
				"com.walmart.android",
				"com.target.ui",
				"com.zappos.android",
				"com.booking",
				"com.airbnb.android",
				"com.ubercab",
				"com.lyft",
				"com.doordash.app",
				"com.grubhub.android",
				"com.ubereats",
			},
			keywords: []string{
				"shop", "buy", "store", "market", "retail", "commerce",
				"amazon", "ebay", "wish", "shopping", "purchase", "order",
			},
		},
		{
			category: models.CategoryFinance,
			packages: []string{
				"com.paypal.android.p2pmobile",
				"com.venmo",
				"com.square.cash",
				"com.coinbase.android",
				"com.robinhood.android",
				"com.chase.sig.android",
				"com.bankofamerica.digitalwallet",
				"com.wellsfargo.mobile.android",
				"com.usaa.mobile.android.usaa",
				"com.mint",
				"personal.finance.app",
				"com.americanexpress.android.acctsvcs.us",
			},
			keywords: []string{
				"bank", "finance", "money", "pay", "wallet", "credit",
				"debit", "loan", "investment", "trading", "budget",
			},
		},
		{
			category: models.CategoryHealthFitness,
			packages: []string{
				"com.fitbit.FitbitMobile",
				"com.myfitnesspal.android",
				"com.nike.plusone",
				"com.strava",
				"com.google.android.apps.fitness",
				"com.samsung.shealth",
				"com.apple.Health",
				"com.endomondo.android",
				"com.runtastic.android",
				"com.calm.android",
				"com.headspace.android",
				"com.fatsecret.android",
			},
			keywords: []string{
				"health", "fitness", "workout", "exercise", "run",
				"step", "calorie", "weight", "diet", "meditation",
				"sleep", "wellness", "tracker",
			},
		},
		{
			category: models.CategoryPhotoVideo,
			packages: []string{
				"com.google.android.apps.photos",
				"com.adobe.lrmobile",
				"com.vsco.cam",
				"com.camerasideas.instashot",
				"com.nexstreaming.app.kinemasterfree",
				"com.adobe.photoshopmix",
				"com.canva.editor",
				"com.picsart.studio",
				"com.niksoftware.snapseed",
				"flipagram.android",
				"com.faceu.alishanghalf",
			},
			keywords: []string{
				"photo", "camera", "image", "picture", "edit",
				"filter", "video", "record", "capture", "gallery",
			},
		},
		{
			category: models.CategoryNavigation,
			packages: []string{
				"com.google.android.apps.maps",
				"com.waze",
				"com.apple.Maps",
				"com.here.app.maps",
				"com.mapquest.android.ace",
				"com.sygic.aura",
				"com.garmin.android.apps.navigon",
			},
			keywords: []string{
				"maps", "navigation", "gps", "direction", "route",
				"location", "travel", "drive", "traffic",
			},
		},
		{
			category: models.CategoryNews,
			packages: []string{
				"com.google.android.apps.magazines",
				"flipboard.app",
				"com.cnn.mobile.android.phone",
				"com.foxnews.android",
				"com.nytimes.android",
				"com.washingtonpost.rainbow",
				"com.bbcnews.v2",
				"com.reuters.android",
				"com.linkedin.android.pulse",
			},
			keywords: []string{
				"news", "media", "article", "paper", "journal",
				"press", "report", "current", "events", "breaking",
			},
		},
		{
			category: models.CategoryWeather,
			packages: []string{
				"com.weather.Weather",
				"com.accuweather.android",
				"com.weather.underground.android",
				"com.weatherbug.android",
				"com.yahoo.mobile.client.android.weather",
			},
			keywords: []string{
				"weather", "forecast", "temperature", "rain",
				"storm", "climate", "humidity", "wind",
			},
		},
		{
			category: models.CategoryUtilities,
			packages: []string{
				"com.cleanmaster.mguard",
				"com.iobit.mobilecare",
				"com.cleanmaster.security",
				"com.antivirus",
				"com.speedtest.android",
				"com.farproc.wifi.analyzer",
				"com.google.android.keep",
				"com.estrongs.android.pop",
				"com.flashlight",
			},
			keywords: []string{
				"utility", "tool", "cleaner", "optimizer", "battery",
				"security", "antivirus", "scanner", "flashlight",
				"calculator", "converter", "manager",
			},
		},
		{
			category: models.CategorySystem,
			packages: []string{
				"com.android.vending",
				"com.android.settings",
				"com.google.android.gms",
				"com.android.systemui",
				"com.google.android.webview",
				"com.android.chrome",
				"com.sec.android.app.launcher",
				"com.miui.home",
				"com.huawei.android.launcher",
			},
			keywords: []string{
				"system", "android", "google", "launcher", "setting",
				"service", "framework", "core", "webview",
			},
		},
	}
}

// Categorize classifies an app from its package identifier and display
// name. An empty package name always yields Other.
func (c *Categorizer) Categorize(packageName, appName string) models.Category {
	if packageName == "" {
		return models.CategoryOther
	}

	lowerPackage := strings.ToLower(packageName)
	lowerName := strings.ToLower(appName)

	if category, ok := c.packageSet[packageName]; ok {
		return category
	}

	for _, rule := range c.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowerPackage, keyword) || strings.Contains(lowerName, keyword) {
				return rule.category
			}
		}
	}

	// Common pattern fallbacks
	if strings.Contains(lowerPackage, "game") || strings.Contains(lowerPackage, "play") {
		return models.CategoryGames
	}
	if strings.Contains(lowerPackage, "com.android") || strings.Contains(lowerPackage, "com.google.android") {
		return models.CategorySystem
	}

	return models.CategoryOther
}

// AppsByCategory returns the apps classified into the given category.
func (c *Categorizer) AppsByCategory(apps []models.NormalizedApp, category models.Category) []models.NormalizedApp {
	matched := []models.NormalizedApp{}
	for _, app := range apps {
		if c.Categorize(app.PackageName, app.Name) == category {
			matched = append(matched, app)
		}
	}
	return matched
}

// GroupByCategory groups apps by category. Categories with no apps are
// omitted from the result.
func (c *Categorizer) GroupByCategory(apps []models.NormalizedApp) map[models.Category][]models.NormalizedApp {
	grouped := make(map[models.Category][]models.NormalizedApp)
	for _, app := range apps {
		category := c.Categorize(app.PackageName, app.Name)
		grouped[category] = append(grouped[category], app)
	}
	return grouped
}

// CategoryStats computes per-category counts and percentages over an app
// collection. Percentages are 0 for an empty collection.
func (c *Categorizer) CategoryStats(apps []models.NormalizedApp) map[models.Category]models.CategoryStat {
	stats := make(map[models.Category]models.CategoryStat, len(models.AllCategories))
	total := len(apps)

	counts := make(map[models.Category]int)
	for _, app := range apps {
		counts[c.Categorize(app.PackageName, app.Name)]++
	}

	for _, category := range models.AllCategories {
		count := counts[category]
		percentage := 0
		if total > 0 {
			percentage = int(math.Round(float64(count) / float64(total) * 100))
		}
		stats[category] = models.CategoryStat{Count: count, Percentage: percentage}
	}
	return stats
}

// IsHighRiskCategory reports whether the app classifies into a category
// that typically holds sensitive personal or financial data.
func (c *Categorizer) IsHighRiskCategory(packageName, appName string) bool {
	return c.Categorize(packageName, appName).IsHighRisk()
}
