package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gif-pipeline/src/internal/config"
	"github.com/gif-pipeline/src/internal/transcode"
	"github.com/gif-pipeline/src/internal/videolist"
)

type fakeTranscoder struct {
	calls []string
	fail  bool
}

func (f *fakeTranscoder) ToGif(input, output string) error {
	f.calls = append(f.calls, output)
	if f.fail {
		return &transcode.TranscodeError{Input: input, Err: errors.New("ffmpeg exploded")}
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	return os.WriteFile(output, []byte("gif bytes"), 0644)
}

func convertConfig() config.Config {
	return config.Config{
		InputPath:     "videoList.json",
		ConvertedPath: "videoList_converted.json",
		VideoDir:      "videos",
		GifDir:        "gifs",
	}
}

// chdir is a stand-in for t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}

func writeList(t *testing.T, path, raw string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))
}

func newTestConverter(cfg config.Config, client *http.Client, tr GifTranscoder) *Converter {
	c := NewConverter(cfg, zap.NewNop())
	c.Client = client
	c.Transcoder = tr
	return c
}

func TestConvertRewritesEntryToGifPath(t *testing.T) {
	chdir(t, t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp4 bytes"))
	}))
	defer srv.Close()

	cfg := convertConfig()
	writeList(t, cfg.InputPath, `{"a":{"video":"`+srv.URL+`/y/clip.mp4"}}`)

	tr := &fakeTranscoder{}
	res, err := newTestConverter(cfg, srv.Client(), tr).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Converted)
	assert.Equal(t, 0, res.Skipped)

	// Raw download cached, GIF generated at the rewritten path.
	assert.FileExists(t, filepath.Join("videos", "clip.mp4"))
	assert.FileExists(t, filepath.Join("gifs", "clip.gif"))

	doc, err := videolist.Load(cfg.ConvertedPath)
	require.NoError(t, err)
	entries := videolist.Collect(doc)
	require.Len(t, entries, 1)
	assert.Equal(t, "gifs/clip.gif", videolist.Video(entries[0]))
}

func TestConvertSkipsNonMp4Entries(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := convertConfig()
	writeList(t, cfg.InputPath, `{"a":{"video":"gifs/already.gif"},"b":{"video":"https://x/page.html"}}`)

	tr := &fakeTranscoder{}
	res, err := newTestConverter(cfg, http.DefaultClient, tr).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Converted)
	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, tr.calls)
	assert.FileExists(t, cfg.ConvertedPath)
}

func TestConvertAlwaysRetranscodesExistingGif(t *testing.T) {
	chdir(t, t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp4 bytes"))
	}))
	defer srv.Close()

	cfg := convertConfig()
	writeList(t, cfg.InputPath, `{"a":{"video":"`+srv.URL+`/clip.mp4"}}`)

	require.NoError(t, os.MkdirAll("gifs", 0755))
	require.NoError(t, os.WriteFile(filepath.Join("gifs", "clip.gif"), []byte("stale"), 0644))

	tr := &fakeTranscoder{}
	_, err := newTestConverter(cfg, srv.Client(), tr).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, tr.calls, 1, "existing GIFs are regenerated, only downloads are cached")
}

func TestConvertFailsFastOnDownloadError(t *testing.T) {
	chdir(t, t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := convertConfig()
	writeList(t, cfg.InputPath, `{"a":{"video":"`+srv.URL+`/one.mp4"},"b":{"video":"`+srv.URL+`/two.mp4"}}`)

	tr := &fakeTranscoder{}
	_, err := newTestConverter(cfg, srv.Client(), tr).Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, tr.calls)
	assert.NoFileExists(t, cfg.ConvertedPath, "a failed run must not write output")
}

func TestConvertFailsFastOnTranscodeError(t *testing.T) {
	chdir(t, t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp4 bytes"))
	}))
	defer srv.Close()

	cfg := convertConfig()
	writeList(t, cfg.InputPath, `{"a":{"video":"`+srv.URL+`/clip.mp4"}}`)

	tr := &fakeTranscoder{fail: true}
	_, err := newTestConverter(cfg, srv.Client(), tr).Run(context.Background())

	var trErr *transcode.TranscodeError
	require.ErrorAs(t, err, &trErr)
	assert.NoFileExists(t, cfg.ConvertedPath)
}
