package model

// Tile is one kind of terrain on a village map
type Tile int

const (
	TileDeepWater Tile = iota
	TileWater
	TileSand
	TileGrass
	TileTree
	TilePath
	TileBuilding
	TilePort
)

// Passable reports whether a character can stand on this tile.
// The port is passable; stepping onto it signals a world-map transition.
func (t Tile) Passable() bool {
	switch t {
	case TileSand, TileGrass, TilePath, TilePort:
		return true
	default:
		return false
	}
}

// Position is a cell on a tile grid
type Position struct {
	X int // 0-indexed from the left
	Y int // 0-indexed from the top
}

// TileMap is a fixed rectangular grid of tiles for one map region
type TileMap struct {
	Region string
	Tiles  [][]Tile // row-major: Tiles[y][x]
}

// InBounds reports whether the position lies on the grid
func (m *TileMap) InBounds(pos Position) bool {
	if pos.Y < 0 || pos.Y >= len(m.Tiles) {
		return false
	}
	return pos.X >= 0 && pos.X < len(m.Tiles[pos.Y])
}

// At returns the tile at the given position.
// Out-of-bounds positions read as deep water.
func (m *TileMap) At(pos Position) Tile {
	if !m.InBounds(pos) {
		return TileDeepWater
	}
	return m.Tiles[pos.Y][pos.X]
}

// WindmillVillage is the 15x15 starting map in the East Blue.
// Legend: 0 deep water, 1 water, 2 sand, 3 grass, 4 tree, 5 path,
// 6 building, 7 port (the pier at the bottom).
func WindmillVillage() *TileMap {
	grid := [][]Tile{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
		{0, 1, 1, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 0},
		{0, 1, 2, 2, 4, 3, 3, 4, 3, 2, 2, 1, 1, 1, 0},
		{0, 1, 2, 3, 4, 4, 3, 4, 4, 3, 2, 1, 1, 1, 0},
		{0, 1, 2, 3, 3, 3, 5, 3, 3, 3, 2, 2, 1, 1, 0},
		{0, 1, 2, 4, 3, 3, 5, 3, 3, 4, 3, 2, 1, 1, 0},
		{0, 1, 2, 4, 3, 3, 5, 3, 3, 4, 3, 2, 1, 1, 0},
		{0, 1, 2, 3, 3, 3, 5, 3, 3, 3, 3, 2, 1, 1, 0},
		{0, 1, 2, 2, 3, 4, 5, 4, 3, 3, 2, 2, 1, 1, 0},
		{0, 1, 1, 2, 2, 4, 5, 4, 2, 2, 2, 1, 1, 1, 0},
		{0, 1, 1, 1, 2, 2, 5, 2, 2, 1, 1, 1, 1, 1, 0},
		{0, 1, 1, 1, 1, 1, 7, 1, 1, 1, 1, 1, 1, 1, 0},
		{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	return &TileMap{Region: StartingRegion, Tiles: grid}
}
