package filecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"video-api/domain/model"
	"video-api/infrastructure/logger"
)

var videoHeader = []string{"id", "name", "views", "likes"}

func NewFile(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while open file")
		return nil, err
	}

	return file, nil
}

// ReadVideos parses rows of id,name,views,likes. A header row with exactly
// those column names is skipped.
func ReadVideos(r io.Reader) ([]model.Video, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(videoHeader)
	reader.TrimLeadingSpace = true

	var videos []model.Video
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && isHeader(record) {
			continue
		}

		video, err := parseVideo(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		videos = append(videos, video)
	}
	return videos, nil
}

func isHeader(record []string) bool {
	for i, col := range videoHeader {
		if !strings.EqualFold(strings.TrimSpace(record[i]), col) {
			return false
		}
	}
	return true
}

func parseVideo(record []string) (model.Video, error) {
	var (
		video model.Video
		err   error
	)
	if video.ID, err = strconv.ParseInt(record[0], 10, 64); err != nil || video.ID <= 0 {
		return video, fmt.Errorf("invalid id %q", record[0])
	}
	video.Name = record[1]
	if utf8.RuneCountInString(video.Name) > model.VideoNameMaxLength {
		return video, fmt.Errorf("invalid name for video %d", video.ID)
	}
	if video.Views, err = strconv.ParseInt(record[2], 10, 64); err != nil {
		return video, fmt.Errorf("invalid views %q", record[2])
	}
	if video.Likes, err = strconv.ParseInt(record[3], 10, 64); err != nil {
		return video, fmt.Errorf("invalid likes %q", record[3])
	}
	return video, nil
}
