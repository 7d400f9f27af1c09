package persistence

import (
	"strings"

	"video-api/domain/model"
)

// videoSetClause renders the present columns of changes as "col = <placeholder>"
// pairs. placeholder receives the 1-based argument position.
func videoSetClause(changes model.VideoChanges, placeholder func(n int) string) (string, []interface{}) {
	cols := changes.Columns()
	sets := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for i, col := range cols {
		sets = append(sets, col.Name+" = "+placeholder(i+1))
		args = append(args, col.Value)
	}
	return strings.Join(sets, ", "), args
}

// scanVideo reads id, name, views, likes from a single row.
func scanVideo(row interface{ Scan(dest ...interface{}) error }) (model.Video, error) {
	var v model.Video
	err := row.Scan(&v.ID, &v.Name, &v.Views, &v.Likes)
	return v, err
}
