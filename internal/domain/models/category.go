package models

// Category is a coarse functional classification of an app. The labels are
// user-visible and must be preserved exactly.
type Category string

const (
	CategorySocial        Category = "Social"
	CategoryCommunication Category = "Communication"
	CategoryEntertainment Category = "Entertainment"
	CategoryProductivity  Category = "Productivity"
	CategoryShopping      Category = "Shopping"
	CategoryFinance       Category = "Finance"
	CategoryHealthFitness Category = "Health & Fitness"
	CategoryEducation     Category = "Education"
	CategoryNews          Category = "News"
	CategoryTravel        Category = "Travel"
	CategoryFoodDrink     Category = "Food & Drink"
	CategoryPhotoVideo    Category = "Photo & Video"
	CategoryMusic         Category = "Music"
	CategoryGames         Category = "Games"
	CategoryUtilities     Category = "Utilities"
	CategoryBusiness      Category = "Business"
	CategoryLifestyle     Category = "Lifestyle"
	CategoryWeather       Category = "Weather"
	CategorySports        Category = "Sports"
	CategoryBooks         Category = "Books"
	CategoryMedical       Category = "Medical"
	CategoryNavigation    Category = "Navigation"
	CategorySystem        Category = "System"
	CategoryOther         Category = "Other"
)

// AllCategories lists every category in catalog order.
var AllCategories = []Category{
	CategorySocial,
	CategoryCommunication,
	CategoryEntertainment,
	CategoryProductivity,
	CategoryShopping,
	CategoryFinance,
	CategoryHealthFitness,
	CategoryEducation,
	CategoryNews,
	CategoryTravel,
	CategoryFoodDrink,
	CategoryPhotoVideo,
	CategoryMusic,
	CategoryGames,
	CategoryUtilities,
	CategoryBusiness,
	CategoryLifestyle,
	CategoryWeather,
	CategorySports,
	CategoryBooks,
	CategoryMedical,
	CategoryNavigation,
	CategorySystem,
	CategoryOther,
}

// HighRiskCategories are categories whose apps typically hold sensitive
// personal or financial data.
var HighRiskCategories = map[Category]bool{
	CategorySocial:        true,
	CategoryCommunication: true,
	CategoryFinance:       true,
	CategoryHealthFitness: true,
}

// CategoryColors maps each category to its display color token.
var CategoryColors = map[Category]string{
	CategorySocial:        "#3B82F6",
	CategoryCommunication: "#10B981",
	CategoryEntertainment: "#F59E0B",
	CategoryProductivity:  "#8B5CF6",
	CategoryShopping:      "#EF4444",
	CategoryFinance:       "#059669",
	CategoryHealthFitness: "#EC4899",
	CategoryEducation:     "#6366F1",
	CategoryNews:          "#374151",
	CategoryTravel:        "#06B6D4",
	CategoryFoodDrink:     "#F97316",
	CategoryPhotoVideo:    "#84CC16",
	CategoryMusic:         "#A855F7",
	CategoryGames:         "#22C55E",
	CategoryUtilities:     "#64748B",
	CategoryBusiness:      "#0F172A",
	CategoryLifestyle:     "#BE185D",
	CategoryWeather:       "#0EA5E9",
	CategorySports:        "#DC2626",
	CategoryBooks:         "#7C2D12",
	CategoryMedical:       "#DC2626",
	CategoryNavigation:    "#059669",
	CategorySystem:        "#6B7280",
	CategoryOther:         "#9CA3AF",
}

// Color returns the display color token for the category, falling back to
// the Other color for unknown values.
func (c Category) Color() string {
	if color, ok := CategoryColors[c]; ok {
		return color
	}
	return CategoryColors[CategoryOther]
}

// IsHighRisk reports whether the category typically holds sensitive data.
func (c Category) IsHighRisk() bool {
	return HighRiskCategories[c]
}
