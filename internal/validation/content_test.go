package validation

import (
	"testing"

	"circle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeContentURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    string
		url     string
		want    string
		invalid bool
	}{
		{name: "youtube watch", kind: models.SubmissionTypeVideo, url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{name: "short link", kind: models.SubmissionTypeVideo, url: "https://youtu.be/dQw4w9WgXcQ", want: "https://youtu.be/dQw4w9WgXcQ"},
		{name: "mobile youtube", kind: models.SubmissionTypeVideo, url: "http://m.youtube.com/watch?v=dQw4w9WgXcQ", want: "http://m.youtube.com/watch?v=dQw4w9WgXcQ"},
		{name: "missing scheme", kind: models.SubmissionTypeVideo, url: "youtube.com/watch?v=dQw4w9WgXcQ", want: "https://youtube.com/watch?v=dQw4w9WgXcQ"},
		{name: "uppercase host", kind: models.SubmissionTypeVideo, url: "https://WWW.YouTube.com/watch?v=dQw4w9WgXcQ", want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{name: "vimeo rejected for video", kind: models.SubmissionTypeVideo, url: "https://vimeo.com/123", invalid: true},
		{name: "twitch rejected for video", kind: models.SubmissionTypeVideo, url: "https://twitch.tv/someone", invalid: true},
		{name: "twitch for livestream", kind: models.SubmissionTypeLivestream, url: "https://www.twitch.tv/someone", want: "https://www.twitch.tv/someone"},
		{name: "youtube for livestream", kind: models.SubmissionTypeLivestream, url: "https://www.youtube.com/live/abcdefghijk", want: "https://www.youtube.com/live/abcdefghijk"},
		{name: "lookalike host", kind: models.SubmissionTypeVideo, url: "https://youtube.com.evil.example/watch?v=x", invalid: true},
		{name: "subdomain not listed", kind: models.SubmissionTypeVideo, url: "https://music.youtube.com/watch?v=x", invalid: true},
		{name: "bare host", kind: models.SubmissionTypeVideo, url: "https://youtube.com/", invalid: true},
		{name: "ftp scheme", kind: models.SubmissionTypeVideo, url: "ftp://youtube.com/watch?v=x", invalid: true},
		{name: "credentials", kind: models.SubmissionTypeVideo, url: "https://user@youtube.com/watch?v=x", invalid: true},
		{name: "empty", kind: models.SubmissionTypeVideo, url: "  ", invalid: true},
		{name: "unknown type", kind: "podcast", url: "https://youtube.com/watch?v=x", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeContentURL(tt.kind, tt.url)
			if tt.invalid {
				require.Error(t, err)
				assert.True(t, models.IsCode(err, models.CodeInvalidContent), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractYouTubeID(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":          "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?feature=x&v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                         "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":            "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":           "dQw4w9WgXcQ",
		"https://www.twitch.tv/someone":                        "",
		"https://youtu.be/short":                               "",
	}

	for in, want := range tests {
		assert.Equal(t, want, ExtractYouTubeID(in), in)
	}
}
