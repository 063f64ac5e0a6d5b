package handlers

import (
	"encoding/json"
	"net/http"

	"vidmorph/internal/providers/cloudinary"
)

type uploadRequest struct {
	VideoURL string `json:"videoUrl"`
}

type uploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// UploadsMirror forwards a staged upload into the media host and returns the
// mirrored asset's stable URL. Pure forwarding, no local state.
func (a *App) UploadsMirror(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.VideoURL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "videoUrl is required")
		return
	}

	result, err := a.Mirror.UploadVideoURL(r.Context(), req.VideoURL, cloudinary.FolderUploads)
	if err != nil {
		a.Logger.Error().Err(err).Msg("upload mirror failed")
		a.error(w, http.StatusInternalServerError, "upstream", err.Error())
		return
	}
	a.json(w, http.StatusOK, uploadResponse{URL: result.SecureURL, PublicID: result.PublicID})
}
