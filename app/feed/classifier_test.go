package feed

import (
	"testing"

	"github.com/lysyi3m/putcast/app/putio"
	"github.com/stretchr/testify/assert"
)

func kinds(decisions []Decision) []LinkKind {
	result := make([]LinkKind, 0, len(decisions))
	for _, d := range decisions {
		result = append(result, d.Kind)
	}
	return result
}

func TestClassify(t *testing.T) {
	classifier := NewClassifier(DefaultMediaTypes())

	audioOnly := MediaFlags{Audio: true}
	videoOnly := MediaFlags{Video: true}
	videoOriginal := MediaFlags{Video: true, PreferOriginal: true}
	both := MediaFlags{Audio: true, Video: true}

	tests := []struct {
		name     string
		file     putio.File
		flags    MediaFlags
		expected []LinkKind
	}{
		{"mp3 with audio enabled", putio.File{Name: "a.mp3", ContentType: "audio/mpeg"}, audioOnly, []LinkKind{DirectAudio}},
		{"mp3 with only video enabled", putio.File{Name: "a.mp3", ContentType: "audio/mpeg"}, videoOnly, []LinkKind{}},
		{"mp4 with video enabled", putio.File{Name: "v.mp4", ContentType: "video/mp4"}, videoOnly, []LinkKind{DirectVideo}},
		{"mp4 with only audio enabled", putio.File{Name: "v.mp4", ContentType: "video/mp4"}, audioOnly, []LinkKind{}},
		{"mkv with rendition", putio.File{Name: "m.mkv", ContentType: "video/x-matroska", IsMP4Available: true}, videoOnly, []LinkKind{TranscodedVideo}},
		{"mkv prefer original", putio.File{Name: "m.mkv", ContentType: "video/x-matroska", IsMP4Available: true}, videoOriginal, []LinkKind{OriginalVideo}},
		{"mkv prefer original without rendition", putio.File{Name: "m.mkv", ContentType: "video/x-matroska"}, videoOriginal, []LinkKind{OriginalVideo}},
		{"mkv without rendition", putio.File{Name: "m.mkv", ContentType: "video/x-matroska"}, videoOnly, []LinkKind{}},
		{"avi with rendition", putio.File{Name: "a.avi", ContentType: "video/x-msvideo", IsMP4Available: true}, videoOnly, []LinkKind{TranscodedVideo}},
		{"mkv extension with generic type", putio.File{Name: "Show.S01E01.MKV", ContentType: "application/octet-stream", IsMP4Available: true}, videoOnly, []LinkKind{TranscodedVideo}},
		{"unsupported type", putio.File{Name: "notes.txt", ContentType: "text/plain"}, both, []LinkKind{}},
		{"flags disabled", putio.File{Name: "a.mp3", ContentType: "audio/mpeg"}, MediaFlags{}, []LinkKind{}},
		{"directory", putio.File{Name: "dir", ContentType: putio.DirectoryContentType}, both, []LinkKind{}},
		{"content type case", putio.File{Name: "a.mp3", ContentType: "Audio/MPEG"}, audioOnly, []LinkKind{DirectAudio}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, kinds(classifier.Classify(tt.file, tt.flags)))
		})
	}
}

func TestClassifyCanMatchSeveralRules(t *testing.T) {
	classifier := NewClassifier(DefaultMediaTypes())

	// A direct-playable type whose name carries a transcode extension
	// qualifies for both video rules.
	file := putio.File{Name: "odd.mkv", ContentType: "video/mp4", IsMP4Available: true}
	assert.Equal(t, []LinkKind{DirectVideo, TranscodedVideo}, kinds(classifier.Classify(file, MediaFlags{Video: true})))
}

func TestDefaultMediaTypesAreDisjoint(t *testing.T) {
	types := DefaultMediaTypes()
	assert.NoError(t, types.Validate())

	classifier := NewClassifier(types)
	flags := MediaFlags{Audio: true, Video: true}
	for _, contentType := range append(append(types.Audio, types.VideoDirect...), types.VideoTranscode...) {
		file := putio.File{Name: "file", ContentType: contentType, IsMP4Available: true}
		assert.Len(t, classifier.Classify(file, flags), 1, "content type %s must match exactly one rule", contentType)
	}
}

func TestLinkKindString(t *testing.T) {
	assert.Equal(t, "direct_audio", DirectAudio.String())
	assert.Equal(t, "transcoded_video", TranscodedVideo.String())
	assert.Equal(t, "unknown", LinkKind(0).String())
	assert.True(t, TranscodedVideo.Transcoded())
	assert.False(t, OriginalVideo.Transcoded())
}
