package model

// VideoNameMaxLength bounds Video.Name in every store.
const VideoNameMaxLength = 100

// Video is the only persisted record. The id is chosen by the client on creation.
type Video struct {
	ID    int64  `json:"id"    bson:"_id"   gorm:"primaryKey;autoIncrement:false"`
	Name  string `json:"name"  bson:"name"  gorm:"type:varchar(100);not null"`
	Views int64  `json:"views" bson:"views" gorm:"not null"`
	Likes int64  `json:"likes" bson:"likes" gorm:"not null"`
}

func (Video) TableName() string {
	return "videos"
}

// VideoChanges is a partial update. Nil fields are not written.
type VideoChanges struct {
	Name  *string
	Views *int64
	Likes *int64
}

// VideoColumn is one column assignment of a partial update.
type VideoColumn struct {
	Name  string
	Value interface{}
}

func (c VideoChanges) Empty() bool {
	return c.Name == nil && c.Views == nil && c.Likes == nil
}

// Columns lists the present fields in a fixed order: name, views, likes.
func (c VideoChanges) Columns() []VideoColumn {
	var cols []VideoColumn
	if c.Name != nil {
		cols = append(cols, VideoColumn{Name: "name", Value: *c.Name})
	}
	if c.Views != nil {
		cols = append(cols, VideoColumn{Name: "views", Value: *c.Views})
	}
	if c.Likes != nil {
		cols = append(cols, VideoColumn{Name: "likes", Value: *c.Likes})
	}
	return cols
}
