package dto

import "video-api/domain/model"

// VideoPutRequest is the body of PUT /video/:id. Pointer fields distinguish an
// omitted field from an explicit zero value; all three are mandatory.
type VideoPutRequest struct {
	Name  *string `json:"name"  binding:"required,max=100"`
	Views *int64  `json:"views" binding:"required"`
	Likes *int64  `json:"likes" binding:"required"`
}

// ToModel builds the record to create. It must only be called on a validated request.
func (r VideoPutRequest) ToModel(id int64) model.Video {
	return model.Video{
		ID:    id,
		Name:  *r.Name,
		Views: *r.Views,
		Likes: *r.Likes,
	}
}

// VideoPatchRequest is the body of PATCH /video/:id. Nil fields (absent or null)
// leave the stored value untouched.
type VideoPatchRequest struct {
	Name  *string `json:"name"  binding:"omitempty,max=100"`
	Views *int64  `json:"views"`
	Likes *int64  `json:"likes"`
}

func (r VideoPatchRequest) Empty() bool {
	return r.Name == nil && r.Views == nil && r.Likes == nil
}

// Changes returns the partial update carried by the request.
func (r VideoPatchRequest) Changes() model.VideoChanges {
	return model.VideoChanges{Name: r.Name, Views: r.Views, Likes: r.Likes}
}

// VideoResponse is the wire shape of a video. Every endpoint that returns a
// video goes through NewVideoResponse.
type VideoResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Views int64  `json:"views"`
	Likes int64  `json:"likes"`
}

func NewVideoResponse(video model.Video) VideoResponse {
	return VideoResponse{
		ID:    video.ID,
		Name:  video.Name,
		Views: video.Views,
		Likes: video.Likes,
	}
}

// Res is the body of every error response.
type Res struct {
	Message string `json:"message"`
}
