// Package content serves the static course material: episode markdown
// files plus the per-episode "deep-learning" and "ai-prompts"
// supplements. It is read-only and keeps no state.
package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoas/go-funk"
)

// Content kinds addressable via the API.
const (
	KindEpisode      = "episode"
	KindDeepLearning = "deep-learning"
	KindAIPrompts    = "ai-prompts"
)

// ErrContentNotFound is returned when the requested kind, episode or
// file does not resolve to anything under the content root.
var ErrContentNotFound = errors.New("no such content")

// Result is either a single file's content or a directory listing,
// never both.
type Result struct {
	Content string
	Files   []string
	Listing bool
}

// Gateway resolves API content requests to files under a fixed root
// directory.
type Gateway struct {
	root string
}

func New(root string) *Gateway {
	return &Gateway{root: root}
}

// padEpisode zero-pads an episode number to two characters, matching
// the EPnn directory naming scheme.
func padEpisode(episode string) string {
	if len(episode) < 2 {
		return strings.Repeat("0", 2-len(episode)) + episode
	}

	return episode
}

// Resolve maps (kind, episode, file) to course material.
//
// For KindEpisode the episodes directory is scanned for the first entry
// whose name starts with "EP" plus the zero-padded episode number.
// For the supplement kinds an empty file name yields a listing of the
// episode's directory with the ".md" suffixes stripped; a missing
// directory yields an empty listing, not an error.
func (g *Gateway) Resolve(kind, episode, file string) (*Result, error) {
	switch kind {
	case KindEpisode:
		return g.resolveEpisode(episode)

	case KindDeepLearning, KindAIPrompts:
		return g.resolveSupplement(kind, episode, file)
	}

	return nil, ErrContentNotFound
}

func (g *Gateway) resolveEpisode(episode string) (*Result, error) {
	episodesDir := filepath.Join(g.root, "episodes")

	entries, err := os.ReadDir(episodesDir)
	if err != nil {
		return nil, ErrContentNotFound
	}

	prefix := "EP" + padEpisode(episode)
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			return g.readFile(filepath.Join(episodesDir, entry.Name()))
		}
	}

	return nil, ErrContentNotFound
}

func (g *Gateway) resolveSupplement(kind, episode, file string) (*Result, error) {
	episodeDir := filepath.Join(g.root, kind, "EP"+padEpisode(episode))

	if file != "" {
		return g.readFile(filepath.Join(episodeDir, file+".md"))
	}

	entries, err := os.ReadDir(episodeDir)
	if err != nil {
		return &Result{Files: []string{}, Listing: true}, nil
	}

	names := funk.Map(entries, func(entry os.DirEntry) string {
		return strings.TrimSuffix(entry.Name(), ".md")
	}).([]string)

	return &Result{Files: names, Listing: true}, nil
}

func (g *Gateway) readFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrContentNotFound
	}

	return &Result{Content: string(data)}, nil
}
