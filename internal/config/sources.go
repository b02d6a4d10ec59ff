package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

// SourcesFile is the on-disk shape of the slot/source configuration.
type SourcesFile struct {
	Timezone    string              `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	NewsSources map[string]SlotFile `json:"news_sources" yaml:"news_sources"`
}

type SlotFile struct {
	Category string       `json:"category" yaml:"category"`
	Format   string       `json:"format,omitempty" yaml:"format,omitempty"`
	Sources  []SourceFile `json:"sources" yaml:"sources"`
}

// SourceFile is one source entry. The URL may be given as url, rss or api
// depending on the source type.
type SourceFile struct {
	Type            string `json:"type" yaml:"type"`
	Name            string `json:"name" yaml:"name"`
	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	RSS             string `json:"rss,omitempty" yaml:"rss,omitempty"`
	API             string `json:"api,omitempty" yaml:"api,omitempty"`
	Limit           int    `json:"limit,omitempty" yaml:"limit,omitempty"`
	MinScore        int    `json:"min_score,omitempty" yaml:"min_score,omitempty"`
	SectionSelector string `json:"section_selector,omitempty" yaml:"section_selector,omitempty"`
	ItemSelector    string `json:"item_selector,omitempty" yaml:"item_selector,omitempty"`
	MaxSections     int    `json:"max_sections,omitempty" yaml:"max_sections,omitempty"`
	PerSection      int    `json:"per_section,omitempty" yaml:"per_section,omitempty"`
}

// LoadSchedule reads the sources file at path. YAML is used for .yaml/.yml files,
// JSON otherwise. The file's timezone wins over defaultZone.
func LoadSchedule(path, defaultZone string) (*schedule.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources config: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ParseSchedule(data, ext == ".yaml" || ext == ".yml", defaultZone)
}

// ParseSchedule decodes a sources file and builds the schedule from it.
func ParseSchedule(data []byte, isYAML bool, defaultZone string) (*schedule.Schedule, error) {
	var f SourcesFile
	if isYAML {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse sources config: %w", err)
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse sources config: %w", err)
		}
	}

	zone := f.Timezone
	if zone == "" {
		zone = defaultZone
	}

	labels := make([]string, 0, len(f.NewsSources))
	for label := range f.NewsSources {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	slots := make([]schedule.TimeSlot, 0, len(labels))
	for _, label := range labels {
		sf := f.NewsSources[label]
		specs := make([]collector.SourceSpec, 0, len(sf.Sources))
		for i, src := range sf.Sources {
			spec, err := src.Spec()
			if err != nil {
				return nil, fmt.Errorf("slot %s source #%d: %w", label, i+1, err)
			}
			specs = append(specs, spec)
		}

		format := schedule.Format(strings.ToLower(sf.Format))
		switch format {
		case "", schedule.FormatThread, schedule.FormatHotIssue:
		default:
			return nil, fmt.Errorf("slot %s: unknown format %q", label, sf.Format)
		}

		slots = append(slots, schedule.TimeSlot{
			Label:    label,
			Category: sf.Category,
			Format:   format,
			Sources:  specs,
		})
	}

	return schedule.New(loadLocation(zone), slots)
}

// Spec converts the entry into its typed source declaration.
func (s SourceFile) Spec() (collector.SourceSpec, error) {
	url := firstNonEmpty(s.URL, s.RSS, s.API)
	name := s.Name
	if name == "" {
		name = s.Type
	}

	switch strings.ToLower(s.Type) {
	case "ranking", "naver":
		if url == "" {
			return nil, fmt.Errorf("%s: url is required", name)
		}
		return collector.RankingPageSpec{
			Name:            name,
			URL:             url,
			Limit:           s.Limit,
			SectionSelector: s.SectionSelector,
			ItemSelector:    s.ItemSelector,
			MaxSections:     s.MaxSections,
			PerSection:      s.PerSection,
		}, nil
	case "rss", "feed":
		if url == "" {
			return nil, fmt.Errorf("%s: rss url is required", name)
		}
		return collector.FeedSpec{Name: name, URL: url, Limit: s.Limit}, nil
	case "reddit":
		if url == "" {
			return nil, fmt.Errorf("%s: api url is required", name)
		}
		return collector.HotListingSpec{Name: name, URL: url, Limit: s.Limit, MinScore: s.MinScore}, nil
	case "hackernews", "hn":
		return collector.ForumSpec{Name: name, BaseURL: url, Limit: s.Limit, MinScore: s.MinScore}, nil
	default:
		return nil, fmt.Errorf("unknown source type %q", s.Type)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
