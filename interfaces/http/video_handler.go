package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"video-api/domain/dto"
	"video-api/domain/repository"
	"video-api/infrastructure/logger"
	"video-api/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	MsgVideoIdInvalid  = "Video id is not valid"
	MsgVideoNotFound   = "Could not find video with that ID"
	MsgVideoExists     = "Video id taken, choose another id"
	MsgInternalFailure = "internal server error"
)

type IVideoHandler interface {
	GetVideo(ctx *gin.Context)
	PutVideo(ctx *gin.Context)
	PatchVideo(ctx *gin.Context)
	DeleteVideo(ctx *gin.Context)
}

type VideoHandler struct {
	videoUsecase usecase.IVideoUsecase
}

func NewVideoHandler(videoUsecase usecase.IVideoUsecase) IVideoHandler {
	return &VideoHandler{videoUsecase: videoUsecase}
}

func (h *VideoHandler) GetVideo(ctx *gin.Context) {
	id, ok := videoID(ctx)
	if !ok {
		return
	}

	video, err := h.videoUsecase.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, id, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewVideoResponse(video))
}

func (h *VideoHandler) PutVideo(ctx *gin.Context) {
	id, ok := videoID(ctx)
	if !ok {
		return
	}

	var req dto.VideoPutRequest
	if err := bindJSON(ctx, &req); err != nil {
		respondError(ctx, id, err)
		return
	}

	video, err := h.videoUsecase.Create(ctx.Request.Context(), id, req)
	if err != nil {
		respondError(ctx, id, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewVideoResponse(video))
}

func (h *VideoHandler) PatchVideo(ctx *gin.Context) {
	id, ok := videoID(ctx)
	if !ok {
		return
	}

	var req dto.VideoPatchRequest
	if err := bindJSON(ctx, &req); err != nil {
		respondError(ctx, id, err)
		return
	}

	video, err := h.videoUsecase.Patch(ctx.Request.Context(), id, req)
	if err != nil {
		respondError(ctx, id, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewVideoResponse(video))
}

func (h *VideoHandler) DeleteVideo(ctx *gin.Context) {
	id, ok := videoID(ctx)
	if !ok {
		return
	}

	if err := h.videoUsecase.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, id, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// videoID only accepts positive integers; anything else does not address a video.
func videoID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusNotFound, dto.Res{Message: MsgVideoIdInvalid})
		return 0, false
	}
	return id, true
}

// bindJSON treats an empty body as an empty object so the validator reports
// the first missing field instead of a decoding error.
func bindJSON(ctx *gin.Context, obj interface{}) error {
	err := ctx.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err != nil {
		return dto.NewBindError(err)
	}
	return nil
}

func respondError(ctx *gin.Context, id int64, err error) {
	var validationErr *dto.ValidationError
	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, dto.Res{Message: validationErr.Message})
	case errors.Is(err, repository.ErrVideoNotFound):
		ctx.JSON(http.StatusNotFound, dto.Res{Message: MsgVideoNotFound})
	case errors.Is(err, repository.ErrVideoExists):
		ctx.JSON(http.StatusConflict, dto.Res{Message: MsgVideoExists})
	default:
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": id,
			"method":   ctx.Request.Method,
		}).Error("Video request failed")
		ctx.JSON(http.StatusInternalServerError, dto.Res{Message: MsgInternalFailure})
	}
}
