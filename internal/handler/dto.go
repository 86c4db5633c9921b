package handler

import (
	"strconv"
	"time"

	"github.com/msomdec/collage-studio/internal/domain"
	"github.com/msomdec/collage-studio/internal/service"
)

// userDTO is the wire shape of a user.
type userDTO struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

// assetDTO is the wire shape of a library asset.
type assetDTO struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toAssetDTO(a *domain.Asset) assetDTO {
	return assetDTO{
		ID:          a.ID,
		Filename:    a.Filename,
		ContentType: a.ContentType,
		Size:        a.Size,
		CreatedAt:   a.CreatedAt,
	}
}

// saveResultDTO is the wire shape of a settled save outcome.
type saveResultDTO struct {
	Saved bool   `json:"saved"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// pickerStateDTO is the wire shape of the observable picker state.
type pickerStateDTO struct {
	Count      int            `json:"count"`
	HasPreview bool           `json:"hasPreview"`
	LastSave   *saveResultDTO `json:"lastSave,omitempty"`
}

func toPickerStateDTO(snap service.Snapshot) pickerStateDTO {
	dto := pickerStateDTO{
		Count:      snap.Count,
		HasPreview: snap.Preview != nil,
	}
	if snap.LastSave != nil {
		dto.LastSave = &saveResultDTO{
			Saved: snap.LastSave.Saved(),
			ID:    snap.LastSave.ID,
			Error: snap.LastSave.Err,
		}
	}
	return dto
}

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}
