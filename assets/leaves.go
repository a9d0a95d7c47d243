// Package assets loads images for the leaf layers.
package assets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/leaffall/systems"
)

// autumn colors for placeholder leaves, cycled by slot.
var autumn = []rl.Color{
	{R: 196, G: 78, B: 32, A: 255},
	{R: 222, G: 142, B: 38, A: 255},
	{R: 168, G: 44, B: 30, A: 255},
	{R: 142, G: 98, B: 40, A: 255},
	{R: 210, G: 176, B: 64, A: 255},
}

// LeafImagePath returns the image for a palette slot. Slot 0 (the smallest
// class) uses the highest-numbered image.
func LeafImagePath(dir string, slot int) string {
	return filepath.Join(dir, fmt.Sprintf("leaf%d.png", systems.LeafSizeClasses-1-slot))
}

// LeafAtlas owns the leaf textures. TextureIDs handed to the simulation
// index into it.
type LeafAtlas struct {
	textures     []rl.Texture2D
	palette      systems.LeafPalette
	placeholders int
}

// LoadLeafAtlas loads every leaf image from dir. Missing or unreadable images
// are replaced with generated placeholders. Requires an open raylib window.
func LoadLeafAtlas(dir string) *LeafAtlas {
	a := &LeafAtlas{textures: make([]rl.Texture2D, 0, systems.LeafSizeClasses)}

	for slot := 0; slot < systems.LeafSizeClasses; slot++ {
		path := LeafImagePath(dir, slot)
		tex, err := loadTexture(path)
		if err != nil {
			slog.Warn("leaf image unavailable, using placeholder", "path", path, "error", err)
			tex = placeholderTexture(slot)
			a.placeholders++
		}
		a.palette[slot] = systems.TextureID(len(a.textures))
		a.textures = append(a.textures, tex)
	}

	slog.Info("leaf atlas loaded", "dir", dir, "textures", len(a.textures), "placeholders", a.placeholders)
	return a
}

func loadTexture(path string) (rl.Texture2D, error) {
	if _, err := os.Stat(path); err != nil {
		return rl.Texture2D{}, err
	}
	tex := rl.LoadTexture(path)
	if tex.ID == 0 {
		return rl.Texture2D{}, fmt.Errorf("decoding %s", path)
	}
	return tex, nil
}

// placeholderTexture generates a solid square sized by slot.
func placeholderTexture(slot int) rl.Texture2D {
	size := int32(4 + slot)
	img := rl.GenImageColor(int(size), int(size), autumn[slot%len(autumn)])
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	return tex
}

// Palette returns the size-indexed texture handles.
func (a *LeafAtlas) Palette() systems.LeafPalette {
	return a.palette
}

// Texture resolves a handle.
func (a *LeafAtlas) Texture(id systems.TextureID) (rl.Texture2D, bool) {
	if int(id) >= len(a.textures) {
		return rl.Texture2D{}, false
	}
	return a.textures[id], true
}

// Placeholders returns how many slots fell back to generated images.
func (a *LeafAtlas) Placeholders() int {
	return a.placeholders
}

// Unload frees all textures.
func (a *LeafAtlas) Unload() {
	for _, tex := range a.textures {
		rl.UnloadTexture(tex)
	}
	a.textures = nil
}
