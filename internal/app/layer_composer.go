package app

import "strings"

// layerOverlay is a block drawn over the base view starting at Row.
type layerOverlay struct {
	Row   int
	Block string
}

// composeLayers replaces whole lines of base with each overlay in order.
// Rows outside the base are dropped.
func composeLayers(base string, overlays ...layerOverlay) string {
	if base == "" || len(overlays) == 0 {
		return base
	}
	lines := strings.Split(base, "\n")
	for _, overlay := range overlays {
		if overlay.Row < 0 || overlay.Block == "" {
			continue
		}
		for i, line := range strings.Split(overlay.Block, "\n") {
			target := overlay.Row + i
			if target >= len(lines) {
				break
			}
			lines[target] = line
		}
	}
	return strings.Join(lines, "\n")
}
