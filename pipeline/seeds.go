package pipeline

import (
	"bufio"
	"errors"
	"strings"
)

// ErrUnrelatedRequest is returned when seed generation produced no usable mod
// names, which is how the generator signals that a theme has nothing to do
// with Minecraft mods.
var ErrUnrelatedRequest = errors.New("request is not related to Minecraft mods")

const unrelatedMarker = "N/A"

// ParseSeeds splits generator output into mod names: one per line, trimmed,
// blank lines dropped, order kept.
func ParseSeeds(text string) ([]string, error) {
	if strings.TrimSpace(text) == unrelatedMarker {
		return nil, ErrUnrelatedRequest
	}

	var seeds []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			seeds = append(seeds, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return nil, ErrUnrelatedRequest
	}
	return seeds, nil
}
