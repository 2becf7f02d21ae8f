package extractor

import (
	"strings"
)

// Profile lists extra selectors for a family of sites. Profile selectors run before the
// generic ones for every field they name.
type Profile struct {
	Name        string   `yaml:"name"`
	Hosts       []string `yaml:"hosts"`
	Title       []string `yaml:"title"`
	Content     []string `yaml:"content"`
	Author      []string `yaml:"author"`
	PublishDate []string `yaml:"publishDate"`
}

// Registry keeps site profiles in registration order.
type Registry struct {
	profiles []Profile
	index    map[string]int
}

// NewRegistry builds a registry holding the given profiles.
func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{index: map[string]int{}}
	for _, p := range profiles {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a profile by name.
func (r *Registry) Register(p Profile) {
	if r.index == nil {
		r.index = map[string]int{}
	}
	if i, ok := r.index[p.Name]; ok {
		r.profiles[i] = p
		return
	}
	r.index[p.Name] = len(r.profiles)
	r.profiles = append(r.profiles, p)
}

// Resolve returns the first profile with a host fragment contained in host.
func (r *Registry) Resolve(host string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}
	host = strings.ToLower(host)
	for _, p := range r.profiles {
		for _, h := range p.Hosts {
			if h != "" && strings.Contains(host, strings.ToLower(h)) {
				return p, true
			}
		}
	}
	return Profile{}, false
}
