package feed

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// MediaTypes lists the content types the classifier recognises.
type MediaTypes struct {
	Audio               []string `yaml:"audio"`
	VideoDirect         []string `yaml:"video_direct"`
	VideoTranscode      []string `yaml:"video_transcode"`
	TranscodeExtensions []string `yaml:"transcode_extensions"`
}

func DefaultMediaTypes() MediaTypes {
	return MediaTypes{
		Audio:               []string{"audio/mpeg"},
		VideoDirect:         []string{"video/mp4"},
		VideoTranscode:      []string{"video/x-msvideo", "video/x-matroska"},
		TranscodeExtensions: []string{".mkv"},
	}
}

// LoadMediaTypes reads a YAML media type table. An empty path yields the
// defaults; sections missing from the file keep their default values.
func LoadMediaTypes(path string) (MediaTypes, error) {
	types := DefaultMediaTypes()
	if path == "" {
		return types, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return MediaTypes{}, fmt.Errorf("failed to read media types file: %w", err)
	}

	var override MediaTypes
	if err := yaml.Unmarshal(data, &override); err != nil {
		return MediaTypes{}, fmt.Errorf("failed to parse media types file: %w", err)
	}

	if override.Audio != nil {
		types.Audio = override.Audio
	}
	if override.VideoDirect != nil {
		types.VideoDirect = override.VideoDirect
	}
	if override.VideoTranscode != nil {
		types.VideoTranscode = override.VideoTranscode
	}
	if override.TranscodeExtensions != nil {
		types.TranscodeExtensions = override.TranscodeExtensions
	}

	types = types.normalize()
	if err := types.Validate(); err != nil {
		return MediaTypes{}, fmt.Errorf("invalid media types file %s: %w", path, err)
	}

	slog.Debug("Media types loaded", "path", path,
		"audio", types.Audio, "video_direct", types.VideoDirect,
		"video_transcode", types.VideoTranscode, "transcode_extensions", types.TranscodeExtensions)

	return types, nil
}

// Validate rejects tables where one content type belongs to more than one set,
// since such a file would be emitted once per matching rule.
func (m MediaTypes) Validate() error {
	sets := map[string][]string{
		"audio":           m.Audio,
		"video_direct":    m.VideoDirect,
		"video_transcode": m.VideoTranscode,
	}
	names := []string{"audio", "video_direct", "video_transcode"}

	for i, a := range names {
		for _, b := range names[i+1:] {
			if shared := lo.Intersect(sets[a], sets[b]); len(shared) > 0 {
				return fmt.Errorf("content types %v appear in both %s and %s", shared, a, b)
			}
		}
	}

	for _, ext := range m.TranscodeExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("transcode extension %q must start with a dot", ext)
		}
	}

	return nil
}

func (m MediaTypes) normalize() MediaTypes {
	clean := func(values []string) []string {
		return lo.Uniq(lo.Compact(lo.Map(values, func(v string, _ int) string {
			return strings.ToLower(strings.TrimSpace(v))
		})))
	}

	return MediaTypes{
		Audio:               clean(m.Audio),
		VideoDirect:         clean(m.VideoDirect),
		VideoTranscode:      clean(m.VideoTranscode),
		TranscodeExtensions: clean(m.TranscodeExtensions),
	}
}
