package physics

import "strings"

// Category is a collision group bit. A body belongs to exactly one
// category and carries a mask of the categories it may touch.
type Category uint16

const (
	CategoryTerrain    Category = 1 << iota // static height fields
	CategoryVehicle                         // player and AI aircraft
	CategoryProjectile                      // rockets, bullets
	CategoryProp                            // loose dynamic props

	CategoryNone Category = 0
	CategoryAll  Category = CategoryTerrain | CategoryVehicle | CategoryProjectile | CategoryProp
)

// collisionPolicy lists, per category, the categories it collides with.
// Terrain tiles never collide with each other; projectiles ignore
// vehicles so a launcher cannot hit its own airframe on spawn.
var collisionPolicy = map[Category]Category{
	CategoryTerrain:    CategoryVehicle | CategoryProjectile | CategoryProp,
	CategoryVehicle:    CategoryTerrain | CategoryVehicle | CategoryProp,
	CategoryProjectile: CategoryTerrain | CategoryProp,
	CategoryProp:       CategoryTerrain | CategoryVehicle | CategoryProjectile | CategoryProp,
}

// MaskFor returns the collision mask for a single category.
func MaskFor(c Category) Category {
	return collisionPolicy[c]
}

// Collides reports whether two bodies with the given groups and masks
// generate contacts. Both sides have to accept the other.
func Collides(groupA, maskA, groupB, maskB Category) bool {
	return maskA&groupB != 0 && maskB&groupA != 0
}

func (c Category) String() string {
	if c == CategoryNone {
		return "none"
	}
	var parts []string
	for _, n := range []struct {
		bit  Category
		name string
	}{
		{CategoryTerrain, "terrain"},
		{CategoryVehicle, "vehicle"},
		{CategoryProjectile, "projectile"},
		{CategoryProp, "prop"},
	} {
		if c&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
