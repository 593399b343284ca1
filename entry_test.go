package ameblodoc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/ameblodoc"
	"github.com/fwojciec/ameblodoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	t.Parallel()

	t.Run("entries never share contents", func(t *testing.T) {
		t.Parallel()

		date := time.Date(2021, 3, 14, 10, 0, 0, 0, time.UTC)
		a := ameblodoc.NewEntry("a", "http://example.com/a", date)
		b := ameblodoc.NewEntry("b", "http://example.com/b", date)

		a.Contents = append(a.Contents, ameblodoc.TextBlock{Text: "only in a"})

		assert.Len(t, a.Contents, 1)
		assert.Empty(t, b.Contents)
		assert.NotNil(t, b.Contents)
	})

	t.Run("copies the given contents", func(t *testing.T) {
		t.Parallel()

		blocks := []ameblodoc.Block{ameblodoc.TextBlock{Text: "one"}}
		e := ameblodoc.NewEntry("t", "l", time.Now(), blocks...)

		blocks[0] = ameblodoc.TextBlock{Text: "changed"}

		assert.Equal(t, ameblodoc.TextBlock{Text: "one"}, e.Contents[0])
	})
}

func TestEntry_Validate(t *testing.T) {
	t.Parallel()

	date := time.Date(2021, 3, 14, 10, 0, 0, 0, time.UTC)

	assert.NoError(t, ameblodoc.NewEntry("title", "link", date).Validate())

	err := ameblodoc.NewEntry("", "link", date).Validate()
	assert.Equal(t, ameblodoc.EINVALID, ameblodoc.ErrorCode(err))

	err = ameblodoc.NewEntry("title", "link", time.Time{}).Validate()
	assert.Equal(t, ameblodoc.EINVALID, ameblodoc.ErrorCode(err))
}

func TestImageBlock_Render(t *testing.T) {
	t.Parallel()

	t.Run("embeds downloaded bytes", func(t *testing.T) {
		t.Parallel()

		var calls []string
		images := &mock.ImageFetcher{
			FetchImageFn: func(_ context.Context, url string) ([]byte, error) {
				assert.Equal(t, "http://img.example.com/a.png", url)
				return []byte("png!"), nil
			},
		}

		err := ameblodoc.ImageBlock{SourceURL: "http://img.example.com/a.png"}.
			Render(context.Background(), mock.RecordingDocument(&calls), images)

		require.NoError(t, err)
		assert.Equal(t, []string{"img:4"}, calls)
	})

	t.Run("swallows download failures", func(t *testing.T) {
		t.Parallel()

		var calls []string
		images := &mock.ImageFetcher{
			FetchImageFn: func(context.Context, string) ([]byte, error) {
				return nil, errors.New("HTTP 404")
			},
		}

		err := ameblodoc.ImageBlock{SourceURL: "http://img.example.com/missing.png"}.
			Render(context.Background(), mock.RecordingDocument(&calls), images)

		require.NoError(t, err)
		assert.Empty(t, calls)
	})

	t.Run("swallows unsupported formats", func(t *testing.T) {
		t.Parallel()

		doc := &mock.Document{
			AddPictureFn: func([]byte) error {
				return errors.New("unsupported image format")
			},
		}
		images := &mock.ImageFetcher{
			FetchImageFn: func(context.Context, string) ([]byte, error) {
				return []byte("not an image"), nil
			},
		}

		err := ameblodoc.ImageBlock{SourceURL: "http://img.example.com/a.svg"}.
			Render(context.Background(), doc, images)

		require.NoError(t, err)
	})
}

func TestTextBlock_Render(t *testing.T) {
	t.Parallel()

	var calls []string

	err := ameblodoc.TextBlock{Text: "hello"}.Render(context.Background(), mock.RecordingDocument(&calls), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"p:hello"}, calls)
}
