package domain

// Category is a named class of server-side state change. It is used both as
// an idle subscription filter and as the dispatch key for reloads.
type Category int

const (
	CategoryPlayer Category = iota
	CategoryOptions
	CategoryQueue
	CategoryStoredPlaylist
)

// AllCategories lists every category in subscription order
var AllCategories = []Category{CategoryPlayer, CategoryOptions, CategoryQueue, CategoryStoredPlaylist}

// Subsystem returns the server's idle subsystem name for the category
func (c Category) Subsystem() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryOptions:
		return "options"
	case CategoryQueue:
		return "playlist"
	case CategoryStoredPlaylist:
		return "stored_playlist"
	default:
		return ""
	}
}

func (c Category) String() string {
	switch c {
	case CategoryQueue:
		return "queue"
	case CategoryStoredPlaylist:
		return "stored-playlist"
	default:
		return c.Subsystem()
	}
}

// CategoryFromSubsystem resolves an idle subsystem name. Subsystems the
// client does not track (mixer, database, output, ...) report ok=false.
func CategoryFromSubsystem(name string) (Category, bool) {
	for _, c := range AllCategories {
		if c.Subsystem() == name {
			return c, true
		}
	}
	return 0, false
}

// CategorySet is a set over the closed set of categories
type CategorySet struct {
	members [4]bool // indexed by Category
}

// NewCategorySet builds a set holding the given categories
func NewCategorySet(cats ...Category) CategorySet {
	var s CategorySet
	for _, c := range cats {
		s.Add(c)
	}
	return s
}

// Add inserts c into the set
func (s *CategorySet) Add(c Category) {
	if c >= 0 && int(c) < len(s.members) {
		s.members[c] = true
	}
}

// Union adds every member of other to s
func (s *CategorySet) Union(other CategorySet) {
	for _, c := range other.Categories() {
		s.Add(c)
	}
}

// Has reports whether c is a member
func (s CategorySet) Has(c Category) bool {
	return c >= 0 && int(c) < len(s.members) && s.members[c]
}

// Empty reports whether the set has no members
func (s CategorySet) Empty() bool {
	return len(s.Categories()) == 0
}

// Categories returns the members in subscription order
func (s CategorySet) Categories() []Category {
	var out []Category
	for _, c := range AllCategories {
		if s.members[c] {
			out = append(out, c)
		}
	}
	return out
}
