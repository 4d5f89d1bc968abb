package pet

// Item is a cosmetic the pet can own.
type Item struct {
	ID          string
	Name        string
	Price       int // XP cost; zero means the item is granted on reaching UnlockLevel
	UnlockLevel int // minimum pet level before the item is available
}

// Catalog lists every cosmetic hat.
var Catalog = []Item{
	{ID: "leaf", Name: "Leaf Sprout", Price: 0, UnlockLevel: 2},
	{ID: "cap", Name: "Baseball Cap", Price: 40, UnlockLevel: 1},
	{ID: "beanie", Name: "Cozy Beanie", Price: 60, UnlockLevel: 1},
	{ID: "bow", Name: "Ribbon Bow", Price: 80, UnlockLevel: 2},
	{ID: "flower", Name: "Flower Crown", Price: 0, UnlockLevel: 5},
	{ID: "tophat", Name: "Top Hat", Price: 150, UnlockLevel: 4},
	{ID: "wizard", Name: "Wizard Hat", Price: 250, UnlockLevel: 7},
	{ID: "crown", Name: "Golden Crown", Price: 0, UnlockLevel: 10},
}

// Lookup finds a catalogue item by id.
func Lookup(id string) (Item, bool) {
	for _, item := range Catalog {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// UnlockedAt returns the free items granted at or below the given level.
func UnlockedAt(level int) []Item {
	var items []Item
	for _, item := range Catalog {
		if item.Price == 0 && item.UnlockLevel <= level {
			items = append(items, item)
		}
	}
	return items
}

// Available returns the purchasable items for a pet of the given level.
func Available(level int) []Item {
	var items []Item
	for _, item := range Catalog {
		if item.Price > 0 && item.UnlockLevel <= level {
			items = append(items, item)
		}
	}
	return items
}
