// Package types contains read shapes shared by the service, the HTTP API and
// the CLI.
package types

// LoadState is the leaderboard loader lifecycle.
type LoadState string

// Loader states.
const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateLoaded  LoadState = "loaded"
	StateErrored LoadState = "errored"
)

// Row is one rendered leaderboard line.
type Row struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	Time   string `json:"time"`
	Trophy string `json:"trophy,omitempty"`
	Video  string `json:"video,omitempty"`
}

// CategoryOption is a selectable per-game category.
type CategoryOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Snapshot is the current state of one leaderboard view.
type Snapshot struct {
	SessionID        string           `json:"sessionId,omitempty"`
	State            LoadState        `json:"state"`
	Error            string           `json:"error,omitempty"`
	GameID           string           `json:"gameId,omitempty"`
	ActiveCategoryID string           `json:"activeCategoryId,omitempty"`
	Categories       []CategoryOption `json:"categories"`
	NoCategories     bool             `json:"noCategories"`
	Page             int              `json:"page"`
	PageSize         int              `json:"pageSize"`
	Total            int              `json:"total"`
	HasNext          bool             `json:"hasNext"`
	HasPrev          bool             `json:"hasPrev"`
	Rows             []Row            `json:"rows"`
	Video            *string          `json:"video,omitempty"`
}

// GameCard is a catalog entry ready for display.
type GameCard struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Cover       string `json:"cover"`
	Background  string `json:"background,omitempty"`
	ReleaseYear string `json:"releaseYear,omitempty"`
	Weblink     string `json:"weblink,omitempty"`
	RunCount    int    `json:"runCount,omitempty"`
}

// GamePage is the accumulated catalog listing.
type GamePage struct {
	Games   []GameCard `json:"games"`
	Offset  int        `json:"offset"`
	HasMore bool       `json:"hasMore"`
	Error   string     `json:"error,omitempty"`
}

// Carousel is the popular-games rotator position.
type Carousel struct {
	Index   int        `json:"index"`
	Current *GameCard  `json:"current,omitempty"`
	Games   []GameCard `json:"games"`
	Error   string     `json:"error,omitempty"`
}

// Home bundles the landing page data.
type Home struct {
	Catalog GamePage `json:"catalog"`
	Popular Carousel `json:"popular"`
}

// Redirect tells the host where to navigate after a form submission.
type Redirect struct {
	Redirect string `json:"redirect"`
}
