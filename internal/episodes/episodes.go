// Package episodes parses episode selections and discovers episodes on disk.
package episodes

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidSelection reports a malformed episode selection string.
var ErrInvalidSelection = errors.New("invalid episode selection")

// maxRangeSpan bounds how many episodes a single range may expand to.
const maxRangeSpan = 10000

// Selection is the parsed form of an episode argument.
type Selection struct {
	All      bool
	Episodes []int
}

// Parse interprets "all", a single number, a range ("1-5"), a comma list, or a
// mix ("1-3,5,7-9"). Numbers are returned sorted without duplicates.
func Parse(arg string) (Selection, error) {
	arg = strings.TrimSpace(arg)
	if arg == "all" {
		return Selection{All: true}, nil
	}

	var episodes []int
	for _, item := range strings.Split(arg, ",") {
		item = strings.TrimSpace(item)
		if strings.Contains(item, "-") {
			parts := strings.Split(item, "-")
			if len(parts) != 2 || !isDigits(parts[0]) || !isDigits(parts[1]) {
				return Selection{}, fmt.Errorf("%w: invalid episode range: %s", ErrInvalidSelection, item)
			}
			start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
			if err != nil {
				return Selection{}, fmt.Errorf("%w: invalid episode range: %s", ErrInvalidSelection, item)
			}
			end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return Selection{}, fmt.Errorf("%w: invalid episode range: %s", ErrInvalidSelection, item)
			}
			if start > end {
				return Selection{}, fmt.Errorf("%w: invalid episode range (start > end): %s", ErrInvalidSelection, item)
			}
			if end-start >= maxRangeSpan {
				return Selection{}, fmt.Errorf("%w: episode range too large: %s", ErrInvalidSelection, item)
			}
			for ep := start; ep <= end; ep++ {
				episodes = append(episodes, ep)
			}
			continue
		}
		if !isDigits(item) {
			return Selection{}, fmt.Errorf("%w: invalid episode number: %s", ErrInvalidSelection, item)
		}
		ep, err := strconv.Atoi(item)
		if err != nil {
			return Selection{}, fmt.Errorf("%w: invalid episode number: %s", ErrInvalidSelection, item)
		}
		episodes = append(episodes, ep)
	}

	slices.Sort(episodes)
	return Selection{Episodes: slices.Compact(episodes)}, nil
}

func isDigits(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var leadingNumber = regexp.MustCompile(`\d+`)

// Discover walks dir recursively and returns the sorted set of episode numbers
// taken from the first run of digits in every .ass file name.
func Discover(dir string) ([]int, error) {
	seen := map[int]struct{}{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".ass") {
			return nil
		}
		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		match := leadingNumber.FindString(stem)
		if match == "" {
			return nil
		}
		if ep, convErr := strconv.Atoi(match); convErr == nil {
			seen[ep] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover episodes in %s: %w", dir, err)
	}
	episodes := make([]int, 0, len(seen))
	for ep := range seen {
		episodes = append(episodes, ep)
	}
	slices.Sort(episodes)
	return episodes, nil
}

// Format renders an episode number the way release file names use it.
func Format(ep int) string {
	return fmt.Sprintf("%02d", ep)
}

// Summary describes a sorted episode list compactly, e.g. "1-3, 5".
func Summary(episodes []int) string {
	if len(episodes) == 0 {
		return "none"
	}
	var parts []string
	start := episodes[0]
	prev := start
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, ep := range episodes[1:] {
		if ep == prev+1 {
			prev = ep
			continue
		}
		flush()
		start, prev = ep, ep
	}
	flush()
	return strings.Join(parts, ", ")
}
