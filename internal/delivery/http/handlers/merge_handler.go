package handlers

import (
	"context"
	"fmt"
	"mime/multipart"

	"video-merger/internal/pkg/logging"
	"video-merger/internal/usecases"
	consts "video-merger/pkg/constants"
	"video-merger/pkg/errors"
	"video-merger/pkg/helper"

	"github.com/gofiber/fiber/v2"
)

type MergeHandler struct {
	mergeService usecases.MergeService
}

func NewMergeHandler(mergeService usecases.MergeService) *MergeHandler {
	return &MergeHandler{mergeService: mergeService}
}

// MergeVideos
//
// @Summary      Merge Videos
// @Description  Concatenates the intro clip and the main clip into one MP4 and streams it back
// @Tags         Merge
// @Accept       multipart/form-data
// @Produce      video/mp4
// @Param        intro  formData  file  true  "Intro clip"
// @Param        main   formData  file  true  "Main clip"
// @Success      200    {file}    binary
// @Failure      400    {object}  dto.ErrorResponse "Missing or invalid upload"
// @Failure      413    {object}  dto.ErrorResponse "Upload too large"
// @Failure      500    {object}  dto.ErrorResponse "Probe or transcode failure"
// @Router       /merge-videos [post]
func (h *MergeHandler) MergeVideos(c *fiber.Ctx) error {
	intro, main, err := formFiles(c)
	if err != nil {
		return errors.HandleError(c, err)
	}

	rid := requestID(c)
	req, err := h.mergeService.Merge(logging.ContextWithRequestID(c.Context(), rid), intro, main)
	if err != nil {
		return errors.HandleError(c, err)
	}

	// The stream outlives the handler, so it must not hold the request ctx.
	delivery, err := h.mergeService.Deliver(logging.ContextWithRequestID(context.Background(), rid), req)
	if err != nil {
		return errors.HandleError(c, err)
	}

	c.Set(fiber.HeaderContentType, helper.GetMimeTypeFromExtension(req.OutputPath))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="merged-%s.mp4"`, req.ID))
	return c.SendStream(delivery, int(delivery.Size()))
}

// formFiles returns the intro and main parts. A missing part comes back nil
// and is rejected by the merge service.
func formFiles(c *fiber.Ctx) (*multipart.FileHeader, *multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, errors.ErrInvalidUpload("expected a multipart/form-data body with intro and main files", err)
	}

	intro, err := singleFile(form, consts.RoleIntro)
	if err != nil {
		return nil, nil, err
	}
	main, err := singleFile(form, consts.RoleMain)
	if err != nil {
		return nil, nil, err
	}
	return intro, main, nil
}

func singleFile(form *multipart.Form, field string) (*multipart.FileHeader, error) {
	files := form.File[field]
	switch len(files) {
	case 0:
		return nil, nil
	case 1:
		return files[0], nil
	default:
		return nil, errors.ErrInvalidUpload(fmt.Sprintf("exactly one %s file is allowed", field), nil)
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
