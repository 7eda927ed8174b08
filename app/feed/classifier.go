package feed

import (
	"strings"

	"github.com/lysyi3m/putcast/app/putio"
	"github.com/samber/lo"
)

// LinkKind selects which download endpoint an entry links to.
type LinkKind int

const (
	// DirectAudio serves a supported audio file as-is.
	DirectAudio LinkKind = iota + 1
	// DirectVideo serves a video that plays without transcoding.
	DirectVideo
	// TranscodedVideo serves put.io's mp4 rendition.
	TranscodedVideo
	// OriginalVideo serves a transcode-class video in its original container
	// because the feed prefers originals.
	OriginalVideo
)

func (k LinkKind) String() string {
	switch k {
	case DirectAudio:
		return "direct_audio"
	case DirectVideo:
		return "direct_video"
	case TranscodedVideo:
		return "transcoded_video"
	case OriginalVideo:
		return "original_video"
	default:
		return "unknown"
	}
}

// Transcoded reports whether the link points at the mp4 rendition endpoint.
func (k LinkKind) Transcoded() bool {
	return k == TranscodedVideo
}

type Decision struct {
	Kind LinkKind
}

// MediaFlags are the per-feed media kinds and transcode policy.
type MediaFlags struct {
	Audio          bool
	Video          bool
	PreferOriginal bool
}

type Classifier struct {
	types MediaTypes
}

func NewClassifier(types MediaTypes) *Classifier {
	return &Classifier{types: types.normalize()}
}

// Classify returns every link the file qualifies for, in rule order. The
// result is empty when the file is skipped. Directories are never classified.
func (c *Classifier) Classify(file putio.File, flags MediaFlags) []Decision {
	if file.IsDir() {
		return nil
	}

	contentType := strings.ToLower(file.ContentType)
	var decisions []Decision

	if flags.Audio && lo.Contains(c.types.Audio, contentType) {
		decisions = append(decisions, Decision{Kind: DirectAudio})
	}

	if flags.Video && lo.Contains(c.types.VideoDirect, contentType) {
		decisions = append(decisions, Decision{Kind: DirectVideo})
	}

	if flags.Video && (lo.Contains(c.types.VideoTranscode, contentType) || c.hasTranscodeExtension(file.Name)) {
		switch {
		case flags.PreferOriginal:
			decisions = append(decisions, Decision{Kind: OriginalVideo})
		case file.IsMP4Available:
			decisions = append(decisions, Decision{Kind: TranscodedVideo})
		}
	}

	return decisions
}

func (c *Classifier) hasTranscodeExtension(name string) bool {
	lower := strings.ToLower(name)
	return lo.SomeBy(c.types.TranscodeExtensions, func(ext string) bool {
		return strings.HasSuffix(lower, ext)
	})
}
