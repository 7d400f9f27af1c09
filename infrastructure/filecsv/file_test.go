package filecsv_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"video-api/domain/model"
	"video-api/infrastructure/filecsv"
)

func TestReadVideos(t *testing.T) {
	videos, err := filecsv.ReadVideos(strings.NewReader("id,name,views,likes\n1,intro,10,2\n2, \"a, b\",0,0\n"))
	require.NoError(t, err)
	assert.Equal(t, []model.Video{
		{ID: 1, Name: "intro", Views: 10, Likes: 2},
		{ID: 2, Name: "a, b", Views: 0, Likes: 0},
	}, videos)
}

func TestReadVideos_WithoutHeader(t *testing.T) {
	videos, err := filecsv.ReadVideos(strings.NewReader("7,clip,1,1\n"))
	require.NoError(t, err)
	assert.Len(t, videos, 1)
	assert.Equal(t, int64(7), videos[0].ID)
}

func TestReadVideos_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad_id":       "x,clip,1,1\n",
		"zero_id":      "0,clip,1,1\n",
		"long_name":    "1," + strings.Repeat("n", 101) + ",1,1\n",
		"bad_views":    "1,clip,many,1\n",
		"bad_likes":    "1,clip,1,\n",
		"wrong_fields": "1,clip,1\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := filecsv.ReadVideos(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestReadVideos_NameLengthCountsCharacters(t *testing.T) {
	name := strings.Repeat("動", model.VideoNameMaxLength)
	videos, err := filecsv.ReadVideos(strings.NewReader("1," + name + ",0,0\n"))
	require.NoError(t, err)
	assert.Equal(t, name, videos[0].Name)

	_, err = filecsv.ReadVideos(strings.NewReader("1," + name + "動,0,0\n"))
	assert.Error(t, err)
}

func TestNewFile(t *testing.T) {
	_, err := filecsv.NewFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "videos.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,a,0,0\n"), 0o644))
	file, err := filecsv.NewFile(path)
	require.NoError(t, err)
	defer file.Close()

	videos, err := filecsv.ReadVideos(file)
	require.NoError(t, err)
	assert.Len(t, videos, 1)
}
